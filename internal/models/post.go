package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is appended to a post with an atomic $push, so concurrent
// commenters never overwrite each other.
type Comment struct {
	UserName  string    `bson:"userName" json:"userName"`
	Text      string    `bson:"text" json:"text"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// PetPost backs both the missing-pet and rescue-pet boards; the two live in
// separate collections but share the document shape. Body holds the
// description (missing) or details (rescue) text.
type PetPost struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Body      string             `bson:"body" json:"body"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	ImageType string             `bson:"imageType,omitempty" json:"imageType,omitempty"`
	Comments  []Comment          `bson:"comments" json:"comments"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
