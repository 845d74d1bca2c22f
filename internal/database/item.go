package database

import (
	"context"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"inventorytracker/internal/model"
)

func (db Database) ItemsFindAll(ctx context.Context) ([]model.Item, error) {
	var is []model.Item
	cur, err := db.Collection(CollectionItems).Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "error getting cursor to find all Items")
	}
	if err = cur.All(ctx, &is); err != nil {
		return nil, errors.Wrap(err, "error getting all Items from cursor")
	}
	return is, nil
}

func (db Database) ItemInsert(ctx context.Context, i model.Item) error {
	_, err := db.Collection(CollectionItems).InsertOne(ctx, i)
	return errors.Wrapf(err, "error inserting Item: %+v", i)
}

// ItemUpdate sets the name and quantity of the Item keyed by itemID.
// Quantity here is the new total, not a delta.
func (db Database) ItemUpdate(ctx context.Context, itemID string, name string, quantity int) error {
	res, err := db.Collection(CollectionItems).UpdateOne(
		ctx,
		bson.M{"itemID": itemID},
		bson.M{"$set": bson.M{
			"name":     name,
			"quantity": quantity,
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating Item, itemID: %s, name: %s, quantity: %d",
			itemID, name, quantity)
	}
	if res.MatchedCount == 0 {
		return errors.Errorf("no Item matched when updating, itemID: %s", itemID)
	}
	return nil
}

func (db Database) ItemsCount(ctx context.Context) (int64, error) {
	n, err := db.Collection(CollectionItems).CountDocuments(ctx, bson.M{})
	return n, errors.Wrap(err, "error counting Items")
}
