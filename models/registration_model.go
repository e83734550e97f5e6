package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RegistrationStatus string

const (
	StatusPending RegistrationStatus = "pending"
	StatusSuccess RegistrationStatus = "success"
	StatusFailed  RegistrationStatus = "failed"
)

// Terminal reports whether the status can no longer change.
func (s RegistrationStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

type Registration struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	Phone       string             `bson:"phone" json:"phone"`
	Location    string             `bson:"location" json:"location"`
	ProgramType string             `bson:"program_type" json:"program_type"`
	Amount      float64            `bson:"amount" json:"amount"`
	PaymentID   string             `bson:"payment_id" json:"payment_id"`
	Status      RegistrationStatus `bson:"status" json:"status"`
	PaidAt      *time.Time         `bson:"paid_at" json:"paid_at"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// RegistrationInput is the form a registrant submits before paying.
type RegistrationInput struct {
	Name        string  `json:"name" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       string  `json:"phone" validate:"required"`
	Location    string  `json:"location" validate:"required"`
	ProgramType string  `json:"programType" validate:"required"`
	Amount      float64 `json:"amount" validate:"gt=0"`
}
