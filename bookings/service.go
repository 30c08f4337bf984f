package bookings

import (
	"context"
	"errors"
	"log"
	"time"

	"parkly/models"
	"parkly/pricing"
	"parkly/utils"
)

// Error signals mapped to HTTP statuses at the handler boundary.
var (
	ErrSlotNotFound     = errors.New("parking slot not found")
	ErrSlotInactive     = errors.New("parking slot is not active")
	ErrSlotFull         = errors.New("no available slots")
	ErrInvalidTimeRange = errors.New("end time must be after start time")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrNotAuthorized    = errors.New("not authorized for this booking")
	ErrAlreadyTerminal  = errors.New("booking is already cancelled or completed")
)

// SlotStore is the slice of slot persistence the booking path needs.
// Reserve and Release are conditional, single-document updates: Reserve
// fails with ErrSlotFull instead of ever driving availableSlots negative,
// and Release never raises it past totalSlots.
type SlotStore interface {
	Get(ctx context.Context, slotID string) (*models.ParkingSlot, error)
	Reserve(ctx context.Context, slotID string) (availableAfter int, err error)
	Release(ctx context.Context, slotID string) (availableAfter int, err error)
}

type BookingStore interface {
	Insert(ctx context.Context, b *models.Booking) error
	Get(ctx context.Context, bookingID string) (*models.Booking, error)
	SetStatus(ctx context.Context, bookingID, status string) (*models.Booking, error)
	SetPayment(ctx context.Context, bookingID, paymentStatus, paymentRef string) (*models.Booking, error)
	Overdue(ctx context.Context, now time.Time) ([]models.Booking, error)
}

// Notifier is a best-effort broadcast; delivery is not guaranteed and no
// error from it fails the booking mutation.
type Notifier interface {
	SlotUpdate(slotID string, availableSlots int)
	BookingUpdate(b *models.Booking)
}

type CreateRequest struct {
	UserID        string
	SlotID        string
	VehicleNumber string
	VehicleType   string
	StartTime     time.Time
	EndTime       time.Time
}

// Service owns the booking/availability contract. Stores and the notifier
// are injected so tests can run against in-memory fakes.
type Service struct {
	Slots    SlotStore
	Bookings BookingStore
	Notify   Notifier
	now      func() time.Time
}

func NewService(slots SlotStore, bookings BookingStore, notify Notifier) *Service {
	return &Service{Slots: slots, Bookings: bookings, Notify: notify, now: time.Now}
}

// Create reserves one space and records the booking. The capacity check and
// decrement are a single conditional store update, so two concurrent calls
// against a slot with one space left cannot both succeed.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Booking, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimeRange
	}

	slot, err := s.Slots.Get(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}
	if !slot.IsActive {
		return nil, ErrSlotInactive
	}

	availableAfter, err := s.Slots.Reserve(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}

	duration := pricing.DurationHours(req.StartTime, req.EndTime)
	booking := &models.Booking{
		BookingID:     "b" + utils.GetUUID(),
		UserID:        req.UserID,
		SlotID:        slot.SlotID,
		SlotName:      slot.Name,
		VehicleNumber: req.VehicleNumber,
		VehicleType:   req.VehicleType,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Duration:      duration,
		TotalPrice:    pricing.Round2(float64(duration) * slot.PricePerHour),
		Status:        models.BookingConfirmed,
		PaymentStatus: models.PaymentPending,
		CreatedAt:     s.now(),
		UpdatedAt:     s.now(),
	}

	if err := s.Bookings.Insert(ctx, booking); err != nil {
		// Hand the space back rather than leaving the two stores inconsistent.
		if _, relErr := s.Slots.Release(ctx, req.SlotID); relErr != nil {
			log.Printf("Failed to release slot %s after booking insert failure: %v", req.SlotID, relErr)
		}
		return nil, err
	}

	s.broadcast(booking, req.SlotID, availableAfter)
	return booking, nil
}

// Cancel releases the reserved space. Requester must own the booking or be
// an admin; terminal bookings stay untouched.
func (s *Service) Cancel(ctx context.Context, bookingID, requesterID string, isAdmin bool) (*models.Booking, error) {
	booking, err := s.authorize(ctx, bookingID, requesterID, isAdmin)
	if err != nil {
		return nil, err
	}
	if booking.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}

	updated, err := s.Bookings.SetStatus(ctx, bookingID, models.BookingCancelled)
	if err != nil {
		return nil, err
	}

	availableAfter, err := s.Slots.Release(ctx, booking.SlotID)
	if err != nil {
		log.Printf("Failed to release slot %s after cancelling booking %s: %v", booking.SlotID, bookingID, err)
	} else {
		s.broadcast(updated, booking.SlotID, availableAfter)
	}
	return updated, nil
}

// ConfirmPayment marks the booking paid. The space was already reserved by
// Create, so this never touches availability; replays with the same payment
// reference are no-ops. Terminal bookings stay terminal: a late callback
// must not revive a completed booking, or the reconciler would release its
// space a second time.
func (s *Service) ConfirmPayment(ctx context.Context, bookingID, requesterID string, isAdmin bool, paymentRef string) (*models.Booking, error) {
	booking, err := s.authorize(ctx, bookingID, requesterID, isAdmin)
	if err != nil {
		return nil, err
	}
	if booking.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}
	if booking.PaymentStatus == models.PaymentPaid {
		return booking, nil
	}

	updated, err := s.Bookings.SetPayment(ctx, bookingID, models.PaymentPaid, paymentRef)
	if err != nil {
		return nil, err
	}
	if s.Notify != nil {
		s.Notify.BookingUpdate(updated)
	}
	return updated, nil
}

// Complete transitions the booking to completed and frees its space: the
// spot is physically vacant from that point, same as a cancellation.
func (s *Service) Complete(ctx context.Context, bookingID, requesterID string, isAdmin bool) (*models.Booking, error) {
	booking, err := s.authorize(ctx, bookingID, requesterID, isAdmin)
	if err != nil {
		return nil, err
	}
	if booking.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}

	updated, err := s.Bookings.SetStatus(ctx, bookingID, models.BookingCompleted)
	if err != nil {
		return nil, err
	}

	availableAfter, err := s.Slots.Release(ctx, booking.SlotID)
	if err != nil {
		log.Printf("Failed to release slot %s after completing booking %s: %v", booking.SlotID, bookingID, err)
	} else {
		s.broadcast(updated, booking.SlotID, availableAfter)
	}
	return updated, nil
}

// ReconcileOverdue completes confirmed/active bookings whose end time has
// passed, releasing their spaces. Returns how many were transitioned.
func (s *Service) ReconcileOverdue(ctx context.Context) (int, error) {
	overdue, err := s.Bookings.Overdue(ctx, s.now())
	if err != nil {
		return 0, err
	}

	completed := 0
	for i := range overdue {
		b := overdue[i]
		updated, err := s.Bookings.SetStatus(ctx, b.BookingID, models.BookingCompleted)
		if err != nil {
			continue
		}
		completed++
		if after, err := s.Slots.Release(ctx, b.SlotID); err != nil {
			log.Printf("Failed to release slot %s after completing booking %s: %v", b.SlotID, b.BookingID, err)
		} else {
			s.broadcast(updated, b.SlotID, after)
		}
	}
	return completed, nil
}

func (s *Service) authorize(ctx context.Context, bookingID, requesterID string, isAdmin bool) (*models.Booking, error) {
	booking, err := s.Bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != requesterID && !isAdmin {
		return nil, ErrNotAuthorized
	}
	return booking, nil
}

func (s *Service) broadcast(b *models.Booking, slotID string, availableSlots int) {
	if s.Notify == nil {
		return
	}
	s.Notify.SlotUpdate(slotID, availableSlots)
	s.Notify.BookingUpdate(b)
}
