package server

import (
	"context"

	"inventorytracker/internal/model"
)

type Server struct {
	DB                Store
	Logger            logger
	UploadDir         string
	MaxUploadBytes    int64
	AllowedExtensions []string
}

// Store is the collection access handlers need. database.Database satisfies
// it; handler tests use an in-memory fake.
type Store interface {
	ItemsFindAll(ctx context.Context) ([]model.Item, error)
	ItemInsert(ctx context.Context, i model.Item) error
	ItemUpdate(ctx context.Context, itemID string, name string, quantity int) error
	InvoiceInsert(ctx context.Context, inv model.Invoice) error
	InvoicesFindAll(ctx context.Context) ([]model.Invoice, error)
}

type logger interface {
	Debug(v ...any)
	Info(v ...any)
	Error(v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
	Tracef(format string, v ...any)
}
