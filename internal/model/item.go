package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Item is one inventory-tracked product. ItemID is the business key;
// at most one Item exists per ItemID and Items are never deleted.
type Item struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ItemID   string             `bson:"itemID" json:"itemID"`
	Name     string             `bson:"name" json:"name"`
	Quantity int                `bson:"quantity" json:"quantity"`
}
