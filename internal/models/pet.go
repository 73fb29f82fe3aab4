package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdoptionPost is a pet offered for adoption by its owner. Images are
// hosted URLs supplied by the client.
type AdoptionPost struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerName string             `bson:"ownerName" json:"ownerName"`
	Contact   string             `bson:"contact" json:"contact"`
	Address   string             `bson:"address" json:"address"`
	PetName   string             `bson:"petName" json:"petName"`
	PetBreed  string             `bson:"petBreed" json:"petBreed"`
	PetColor  string             `bson:"petColor" json:"petColor"`
	PetAge    string             `bson:"petAge" json:"petAge"`
	Images    []string           `bson:"images" json:"images"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// AdoptedPet tracks an adoption request. Status stays false until an admin
// confirms the adoption.
type AdoptedPet struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PetName   string             `bson:"petName,omitempty" json:"petName,omitempty"`
	PetBreed  string             `bson:"petBreed,omitempty" json:"petBreed,omitempty"`
	PetAge    string             `bson:"petAge,omitempty" json:"petAge,omitempty"`
	OwnerName string             `bson:"ownerName,omitempty" json:"ownerName,omitempty"`
	Contact   string             `bson:"contact,omitempty" json:"contact,omitempty"`
	UserEmail string             `bson:"userEmail,omitempty" json:"userEmail,omitempty"`
	Images    []string           `bson:"images,omitempty" json:"images,omitempty"`
	Status    bool               `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// Animal is a read-only reference record shown on the browse pages.
type Animal struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Species     string             `bson:"species,omitempty" json:"species,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
}
