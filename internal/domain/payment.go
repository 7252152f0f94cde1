package domain

import "time"

// PaymentStatus is the provider-reported state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentApproved  PaymentStatus = "approved"
	PaymentRejected  PaymentStatus = "rejected"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Terminal reports whether the status can no longer change.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentApproved || s == PaymentRejected || s == PaymentCancelled
}

// PaymentIntent is a PIX payment created at the provider.
type PaymentIntent struct {
	ID           string
	Status       PaymentStatus
	StatusDetail string
	Amount       float64
	QRCode       string
	QRCodeBase64 string
	TicketURL    string
	CreatedAt    time.Time
	ApprovedAt   *time.Time
}
