// Package reconcile merges spreadsheet delta rows into current stock levels.
// Both upload transport adapters feed the same engine.
package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inventorytracker/internal/model"
	"inventorytracker/internal/spreadsheet"
)

// RequiredColumns must all be present in an upload's header row.
var RequiredColumns = []string{"itemID", "name", "quantity"}

// Store is the collection access the engine needs. database.Database
// satisfies it; tests use an in-memory fake.
type Store interface {
	ItemsFindAll(ctx context.Context) ([]model.Item, error)
	ItemInsert(ctx context.Context, i model.Item) error
	ItemUpdate(ctx context.Context, itemID string, name string, quantity int) error
	InvoiceInsert(ctx context.Context, inv model.Invoice) error
}

// MissingColumnsError aborts the whole batch before any row is processed.
type MissingColumnsError struct {
	Columns []string
}

func (e MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}

// RowResult reports one accepted row: the quantity before and after the
// delta was applied, and whether the Item was created by this row.
type RowResult struct {
	ItemID      string `json:"itemID"`
	Name        string `json:"name"`
	OldQuantity int    `json:"oldQuantity"`
	NewQuantity int    `json:"newQuantity"`
	IsNew       bool   `json:"isNew"`
}

type Result struct {
	Updates  []RowResult
	NewItems []RowResult
	Errors   []string
}

// Processed is the number of rows that were applied.
func (r Result) Processed() int { return len(r.Updates) + len(r.NewItems) }

type Engine struct {
	Store Store
	Now   func() time.Time
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Reconcile applies the sheet's delta rows to the item collection.
//
// Items are loaded once at the start into a working set that is written back
// after every accepted row, so duplicate itemIDs within one batch accumulate
// sequentially. The invoice for a row is inserted before the item write and
// is not rolled back if that write fails: the invoice collection is a log of
// attempted deltas, not confirmed ones. Row failures never abort the batch.
func (e Engine) Reconcile(ctx context.Context, sheet *spreadsheet.Sheet) (Result, error) {
	res := Result{Updates: []RowResult{}, NewItems: []RowResult{}, Errors: []string{}}

	if missing := sheet.MissingColumns(RequiredColumns); len(missing) > 0 {
		return res, MissingColumnsError{Columns: missing}
	}

	existing, err := e.Store.ItemsFindAll(ctx)
	if err != nil {
		return res, errors.Wrap(err, "error loading Items for reconciliation")
	}
	working := make(map[string]model.Item, len(existing))
	for _, i := range existing {
		working[i.ItemID] = i
	}

	for _, row := range sheet.Rows() {
		itemID := row.Cell("itemID").String()
		name := row.Cell("name").String()
		quantity, err := row.Cell("quantity").Int()
		if err != nil || itemID == "" || name == "" || quantity < 0 {
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d: Invalid data", row.Number))
			continue
		}

		inv := model.Invoice{
			ItemID:    itemID,
			Quantity:  quantity,
			Timestamp: primitive.NewDateTimeFromTime(e.now()),
		}
		if err := e.Store.InvoiceInsert(ctx, inv); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d: %v", row.Number, err))
			continue
		}

		if current, ok := working[itemID]; ok {
			updated := model.Item{ItemID: itemID, Name: name, Quantity: current.Quantity + quantity}
			if err := e.Store.ItemUpdate(ctx, itemID, name, updated.Quantity); err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("Row %d: %v", row.Number, err))
				continue
			}
			working[itemID] = updated
			res.Updates = append(res.Updates, RowResult{
				ItemID:      itemID,
				Name:        name,
				OldQuantity: current.Quantity,
				NewQuantity: updated.Quantity,
			})
		} else {
			created := model.Item{ItemID: itemID, Name: name, Quantity: quantity}
			if err := e.Store.ItemInsert(ctx, created); err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("Row %d: %v", row.Number, err))
				continue
			}
			working[itemID] = created
			res.NewItems = append(res.NewItems, RowResult{
				ItemID:      itemID,
				Name:        name,
				NewQuantity: quantity,
				IsNew:       true,
			})
		}
	}
	return res, nil
}
