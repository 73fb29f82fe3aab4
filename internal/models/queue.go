package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Queue entry statuses. An entry moves waiting -> accepted exactly once and
// never back.
const (
	QueueStatusWaiting  = "waiting"
	QueueStatusAccepted = "accepted"
)

// QueueEntry is a patient's consultation request, bound to one doctor from
// creation. AcceptedAt is set only by the accept transition.
type QueueEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DoctorID   string             `bson:"doctorId" json:"doctorId"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	PetName    string             `bson:"petName" json:"petName"`
	PetAge     string             `bson:"petAge" json:"petAge"`
	Problem    string             `bson:"problem" json:"problem"`
	Status     string             `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	AcceptedAt *time.Time         `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
}
