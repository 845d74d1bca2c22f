package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Invoice is one stock-movement event: the delta applied to an Item at a
// point in time, not the resulting total. Invoices are append-only.
type Invoice struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ItemID    string             `bson:"itemID" json:"itemID"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Timestamp primitive.DateTime `bson:"timestamp" json:"-"`
}

// TimestampISO formats the timestamp as the UTC wall time with millisecond
// precision and a literal Z appended. The Z is a marker, not an offset
// conversion; BSON datetimes are stored as UTC milliseconds already.
func (inv Invoice) TimestampISO() string {
	return inv.Timestamp.Time().UTC().Format("2006-01-02T15:04:05.000") + "Z"
}
