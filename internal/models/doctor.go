package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Doctor is the public profile shown on the consultation page.
type Doctor struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Image          string             `bson:"image,omitempty" json:"image,omitempty"`
	Institution    string             `bson:"institution,omitempty" json:"institution,omitempty"`
	GraduationYear string             `bson:"graduationYear,omitempty" json:"graduationYear,omitempty"`
	Specialty      string             `bson:"specialty,omitempty" json:"specialty,omitempty"`
	Experience     string             `bson:"experience,omitempty" json:"experience,omitempty"`
}

// Prescription is written by a doctor after a consultation.
type Prescription struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DoctorID  string             `bson:"doctorId" json:"doctorId"`
	UserID    string             `bson:"userId" json:"userId"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
