package database

import (
	"context"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"inventorytracker/internal/model"
)

func (db Database) InvoiceInsert(ctx context.Context, inv model.Invoice) error {
	_, err := db.Collection(CollectionInvoices).InsertOne(ctx, inv)
	return errors.Wrapf(err, "error inserting Invoice: %+v", inv)
}

func (db Database) InvoicesFindAll(ctx context.Context) ([]model.Invoice, error) {
	var invs []model.Invoice
	cur, err := db.Collection(CollectionInvoices).Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "error getting cursor to find all Invoices")
	}
	if err = cur.All(ctx, &invs); err != nil {
		return nil, errors.Wrap(err, "error getting all Invoices from cursor")
	}
	return invs, nil
}
