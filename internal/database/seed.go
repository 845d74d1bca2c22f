package database

import (
	"context"
	"github.com/pkg/errors"
	"inventorytracker/internal/model"
)

var sampleItems = []model.Item{
	{ItemID: "ABC123", Name: "Rice Bag", Quantity: 5},
	{ItemID: "XYZ789", Name: "Sugar Packet", Quantity: 20},
	{ItemID: "DEF456", Name: "Wheat Flour", Quantity: 15},
	{ItemID: "GHI789", Name: "Cooking Oil", Quantity: 8},
	{ItemID: "JKL012", Name: "Salt Pack", Quantity: 25},
}

// ItemsSeed inserts the sample Items when the collection is empty.
// Returns whether anything was inserted.
func (db Database) ItemsSeed(ctx context.Context) (bool, error) {
	n, err := db.ItemsCount(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	docs := make([]interface{}, 0, len(sampleItems))
	for _, i := range sampleItems {
		docs = append(docs, i)
	}
	_, err = db.Collection(CollectionItems).InsertMany(ctx, docs)
	return err == nil, errors.Wrap(err, "error inserting sample Items")
}
