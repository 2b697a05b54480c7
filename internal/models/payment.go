package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "Completed"
	PaymentPending   PaymentStatus = "Pending"
	PaymentFailed    PaymentStatus = "Failed"
)

type Payment struct {
	bun.BaseModel `bun:"table:payments"`

	ID            string        `bun:"id,pk" json:"id"`
	BookingID     string        `bun:"booking_id,notnull" json:"bookingId"`
	UserID        string        `bun:"user_id,notnull" json:"userId"`
	Amount        float64       `bun:"amount,notnull" json:"amount"`
	Method        string        `bun:"payment_method,notnull" json:"paymentMethod"`
	Status        PaymentStatus `bun:"payment_status,notnull" json:"paymentStatus"`
	TransactionID string        `bun:"transaction_id,notnull" json:"transactionId"`
	PaidAt        time.Time     `bun:"payment_time,notnull" json:"paymentTime"`
}
