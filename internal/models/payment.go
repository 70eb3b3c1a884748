package models

import "time"

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentSuccess  PaymentStatus = "success"
	PaymentCanceled PaymentStatus = "canceled"
	PaymentFailed   PaymentStatus = "failed"
)

type PaymentMethod string

const (
	MethodYooKassa PaymentMethod = "yookassa"
	MethodPayPal   PaymentMethod = "paypal"
	MethodManual   PaymentMethod = "manual"
)

type Payment struct {
	PaymentID string
	UserID    int64
	Amount    float64
	Currency  string
	Method    PaymentMethod
	Status    PaymentStatus
	CreatedAt time.Time
}
