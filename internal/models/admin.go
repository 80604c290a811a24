package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Admin is a dashboard operator. Password holds the bcrypt hash only.
type Admin struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string        `bson:"email" json:"email"`
	Password  string        `bson:"password" json:"-"`
	Name      string        `bson:"name" json:"name"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updatedAt"`
}
