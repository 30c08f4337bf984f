package models

import "time"

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingActive    = "active"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

type Booking struct {
	BookingID     string    `json:"bookingid" bson:"bookingid"`
	UserID        string    `json:"userid" bson:"userid"`
	SlotID        string    `json:"slotid" bson:"slotid"`
	SlotName      string    `json:"slotName,omitempty" bson:"slotName,omitempty"`
	VehicleNumber string    `json:"vehicleNumber" bson:"vehicleNumber"`
	VehicleType   string    `json:"vehicleType" bson:"vehicleType"`
	StartTime     time.Time `json:"startTime" bson:"startTime"`
	EndTime       time.Time `json:"endTime" bson:"endTime"`
	Duration      int       `json:"duration" bson:"duration"`
	TotalPrice    float64   `json:"totalPrice" bson:"totalPrice"`
	Status        string    `json:"status" bson:"status"`
	PaymentStatus string    `json:"paymentStatus" bson:"paymentStatus"`
	PaymentRef    string    `json:"paymentRef,omitempty" bson:"paymentRef,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// IsTerminal reports whether the booking can no longer transition.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingCancelled || b.Status == BookingCompleted
}
