package reconcile

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inventorytracker/internal/model"
	"inventorytracker/internal/spreadsheet"
)

type fakeStore struct {
	items          []model.Item
	invoices       []model.Invoice
	failItemWrites bool
}

func (f *fakeStore) ItemsFindAll(context.Context) ([]model.Item, error) {
	return append([]model.Item(nil), f.items...), nil
}

func (f *fakeStore) ItemInsert(_ context.Context, i model.Item) error {
	if f.failItemWrites {
		return errors.New("item write refused")
	}
	f.items = append(f.items, i)
	return nil
}

func (f *fakeStore) ItemUpdate(_ context.Context, itemID string, name string, quantity int) error {
	if f.failItemWrites {
		return errors.New("item write refused")
	}
	for idx := range f.items {
		if f.items[idx].ItemID == itemID {
			f.items[idx].Name = name
			f.items[idx].Quantity = quantity
			return nil
		}
	}
	return errors.Errorf("no Item matched when updating, itemID: %s", itemID)
}

func (f *fakeStore) InvoiceInsert(_ context.Context, inv model.Invoice) error {
	f.invoices = append(f.invoices, inv)
	return nil
}

func (f *fakeStore) itemByID(itemID string) (model.Item, bool) {
	for _, i := range f.items {
		if i.ItemID == itemID {
			return i, true
		}
	}
	return model.Item{}, false
}

func buildSheet(t *testing.T, header []interface{}, rows ...[]interface{}) *spreadsheet.Sheet {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &rows[i]))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	sheet, err := spreadsheet.Parse(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	return sheet
}

var stockHeader = []interface{}{"itemID", "name", "quantity"}

func TestReconcile_NewItem(t *testing.T) {
	store := &fakeStore{}
	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	engine := Engine{Store: store, Now: func() time.Time { return now }}

	sheet := buildSheet(t, stockHeader, []interface{}{"ABC123", "Rice Bag", 3})
	res, err := engine.Reconcile(context.Background(), sheet)
	require.NoError(t, err)

	assert.Empty(t, res.Updates)
	assert.Empty(t, res.Errors)
	require.Len(t, res.NewItems, 1)
	assert.Equal(t, RowResult{
		ItemID:      "ABC123",
		Name:        "Rice Bag",
		OldQuantity: 0,
		NewQuantity: 3,
		IsNew:       true,
	}, res.NewItems[0])

	created, ok := store.itemByID("ABC123")
	require.True(t, ok)
	assert.Equal(t, 3, created.Quantity)

	require.Len(t, store.invoices, 1)
	assert.Equal(t, "ABC123", store.invoices[0].ItemID)
	assert.Equal(t, 3, store.invoices[0].Quantity)
	assert.Equal(t, primitive.NewDateTimeFromTime(now), store.invoices[0].Timestamp)
}

func TestReconcile_ExistingItemAccumulates(t *testing.T) {
	store := &fakeStore{items: []model.Item{{ItemID: "ABC123", Name: "Rice Bag", Quantity: 5}}}
	engine := Engine{Store: store}

	sheet := buildSheet(t, stockHeader, []interface{}{"ABC123", "Rice Bag", 3})
	res, err := engine.Reconcile(context.Background(), sheet)
	require.NoError(t, err)

	assert.Empty(t, res.NewItems)
	assert.Empty(t, res.Errors)
	require.Len(t, res.Updates, 1)
	assert.Equal(t, RowResult{
		ItemID:      "ABC123",
		Name:        "Rice Bag",
		OldQuantity: 5,
		NewQuantity: 8,
	}, res.Updates[0])
	assert.Equal(t, 1, res.Processed())

	updated, ok := store.itemByID("ABC123")
	require.True(t, ok)
	assert.Equal(t, 8, updated.Quantity)
	require.Len(t, store.invoices, 1)
	assert.Equal(t, 3, store.invoices[0].Quantity)
}

func TestReconcile_ResubmissionAccumulates(t *testing.T) {
	store := &fakeStore{items: []model.Item{{ItemID: "ABC123", Name: "Rice Bag", Quantity: 5}}}
	engine := Engine{Store: store}

	sheet := buildSheet(t, stockHeader, []interface{}{"ABC123", "Rice Bag", 3})
	_, err := engine.Reconcile(context.Background(), sheet)
	require.NoError(t, err)
	_, err = engine.Reconcile(context.Background(), sheet)
	require.NoError(t, err)

	updated, ok := store.itemByID("ABC123")
	require.True(t, ok)
	assert.Equal(t, 11, updated.Quantity)
	assert.Len(t, store.invoices, 2)
}

func TestReconcile_DuplicateItemIDAccumulatesSequentially(t *testing.T) {
	store := &fakeStore{items: []model.Item{{ItemID: "ABC123", Name: "Rice Bag", Quantity: 5}}}
	engine := Engine{Store: store}

	sheet := buildSheet(t, stockHeader,
		[]interface{}{"ABC123", "Rice Bag", 3},
		[]interface{}{"ABC123", "Rice Bag", 4},
	)
	res, err := engine.Reconcile(context.Background(), sheet)
	require.NoError(t, err)

	require.Len(t, res.Updates, 2)
	assert.Equal(t, 5, res.Updates[0].OldQuantity)
	assert.Equal(t, 8, res.Updates[0].NewQuantity)
	assert.Equal(t, 8, res.Updates[1].OldQuantity)
	assert.Equal(t, 12, res.Updates[1].NewQuantity)

	updated, ok := store.itemByID("ABC123")
	require.True(t, ok)
	assert.Equal(t, 12, updated.Quantity)
}

func TestReconcile_InvalidRows(t *testing.T) {
	store := &fakeStore{}
	engine := Engine{Store: store}

	sheet := buildSheet(t, stockHeader,
		[]interface{}{"", "Rice Bag", 3},
		[]interface{}{"ABC123", "", 3},
		[]interface{}{"ABC123", "Rice Bag", -1},
		[]interface{}{"ABC123", "Rice Bag", "many"},
	)
	res, err := engine.Reconcile(context.Background(), sheet)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Row 2: Invalid data",
		"Row 3: Invalid data",
		"Row 4: Invalid data",
		"Row 5: Invalid data",
	}, res.Errors)
	assert.Empty(t, res.Updates)
	assert.Empty(t, res.NewItems)
	assert.Empty(t, store.items)
	assert.Empty(t, store.invoices)
}

func TestReconcile_MixedBatchContinuesPastBadRows(t *testing.T) {
	store := &fakeStore{}
	engine := Engine{Store: store}

	sheet := buildSheet(t, stockHeader,
		[]interface{}{"ABC123", "Rice Bag", 3},
		[]interface{}{"", "", ""},
		[]interface{}{"XYZ789", "Sugar Packet", 7},
	)
	res, err := engine.Reconcile(context.Background(), sheet)
	require.NoError(t, err)

	assert.Equal(t, []string{"Row 3: Invalid data"}, res.Errors)
	assert.Len(t, res.NewItems, 2)
	assert.Equal(t, 2, res.Processed())
	assert.Len(t, store.invoices, 2)
}

func TestReconcile_MissingColumnsAbortsBatch(t *testing.T) {
	store := &fakeStore{items: []model.Item{{ItemID: "ABC123", Name: "Rice Bag", Quantity: 5}}}
	engine := Engine{Store: store}

	sheet := buildSheet(t, []interface{}{"itemID", "count"}, []interface{}{"ABC123", 3})
	_, err := engine.Reconcile(context.Background(), sheet)

	var missing MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"name", "quantity"}, missing.Columns)

	item, ok := store.itemByID("ABC123")
	require.True(t, ok)
	assert.Equal(t, 5, item.Quantity)
	assert.Empty(t, store.invoices)
}

func TestReconcile_InvoicePersistsWhenItemWriteFails(t *testing.T) {
	store := &fakeStore{failItemWrites: true}
	engine := Engine{Store: store}

	sheet := buildSheet(t, stockHeader, []interface{}{"ABC123", "Rice Bag", 3})
	res, err := engine.Reconcile(context.Background(), sheet)
	require.NoError(t, err)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Row 2:")
	assert.Empty(t, store.items)
	// The invoice went in before the item write and stays: it records the
	// attempted delta.
	assert.Len(t, store.invoices, 1)
}

func TestReconcile_ZeroQuantityIsValid(t *testing.T) {
	store := &fakeStore{}
	engine := Engine{Store: store}

	sheet := buildSheet(t, stockHeader, []interface{}{"ABC123", "Rice Bag", 0})
	res, err := engine.Reconcile(context.Background(), sheet)
	require.NoError(t, err)

	assert.Empty(t, res.Errors)
	require.Len(t, res.NewItems, 1)
	assert.Equal(t, 0, res.NewItems[0].NewQuantity)
}
