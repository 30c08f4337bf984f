package bookings

import (
	"context"
	"sync"
	"testing"
	"time"

	"parkly/models"
)

type fakeSlotStore struct {
	mu          sync.Mutex
	slots       map[string]*models.ParkingSlot
	failRelease bool
}

func newFakeSlotStore(slots ...*models.ParkingSlot) *fakeSlotStore {
	s := &fakeSlotStore{slots: make(map[string]*models.ParkingSlot)}
	for _, slot := range slots {
		s.slots[slot.SlotID] = slot
	}
	return s
}

func (s *fakeSlotStore) Get(_ context.Context, slotID string) (*models.ParkingSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[slotID]
	if !ok {
		return nil, ErrSlotNotFound
	}
	copied := *slot
	return &copied, nil
}

func (s *fakeSlotStore) Reserve(_ context.Context, slotID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[slotID]
	if !ok {
		return 0, ErrSlotNotFound
	}
	if !slot.IsActive || slot.AvailableSlots <= 0 {
		return 0, ErrSlotFull
	}
	slot.AvailableSlots--
	return slot.AvailableSlots, nil
}

func (s *fakeSlotStore) Release(_ context.Context, slotID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRelease {
		return 0, context.DeadlineExceeded
	}
	slot, ok := s.slots[slotID]
	if !ok {
		return 0, ErrSlotNotFound
	}
	if slot.AvailableSlots < slot.TotalSlots {
		slot.AvailableSlots++
	}
	return slot.AvailableSlots, nil
}

func (s *fakeSlotStore) available(slotID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[slotID].AvailableSlots
}

type fakeBookingStore struct {
	mu       sync.Mutex
	byID     map[string]*models.Booking
	failNext bool
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{byID: make(map[string]*models.Booking)}
}

func (s *fakeBookingStore) Insert(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext {
		s.failNext = false
		return context.DeadlineExceeded
	}
	copied := *b
	s.byID[b.BookingID] = &copied
	return nil
}

func (s *fakeBookingStore) Get(_ context.Context, bookingID string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (s *fakeBookingStore) SetStatus(_ context.Context, bookingID, status string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	b.Status = status
	copied := *b
	return &copied, nil
}

func (s *fakeBookingStore) SetPayment(_ context.Context, bookingID, paymentStatus, paymentRef string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	if b.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}
	b.PaymentStatus = paymentStatus
	b.PaymentRef = paymentRef
	b.Status = models.BookingConfirmed
	copied := *b
	return &copied, nil
}

func (s *fakeBookingStore) Overdue(_ context.Context, now time.Time) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.byID {
		if (b.Status == models.BookingConfirmed || b.Status == models.BookingActive) && b.EndTime.Before(now) {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	mu          sync.Mutex
	slotUpdates []int
}

func (n *fakeNotifier) SlotUpdate(_ string, availableSlots int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.slotUpdates = append(n.slotUpdates, availableSlots)
}

func (n *fakeNotifier) BookingUpdate(_ *models.Booking) {}

func testSlot(available, total int) *models.ParkingSlot {
	return &models.ParkingSlot{
		SlotID:         "p1",
		Name:           "Central Garage",
		TotalSlots:     total,
		AvailableSlots: available,
		PricePerHour:   50,
		IsActive:       true,
	}
}

func newTestService(slots *fakeSlotStore, store *fakeBookingStore) *Service {
	return NewService(slots, store, &fakeNotifier{})
}

func TestCreateBookingComputesPrice(t *testing.T) {
	slots := newFakeSlotStore(testSlot(10, 10))
	svc := newTestService(slots, newFakeBookingStore())

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	b, err := svc.Create(context.Background(), CreateRequest{
		UserID:        "u1",
		SlotID:        "p1",
		VehicleNumber: "KA01AB1234",
		StartTime:     start,
		EndTime:       start.Add(3 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if b.Duration != 3 {
		t.Errorf("expected duration 3, got %d", b.Duration)
	}
	if b.TotalPrice != 150 {
		t.Errorf("expected total price 150, got %v", b.TotalPrice)
	}
	if b.Status != models.BookingConfirmed {
		t.Errorf("expected status confirmed, got %s", b.Status)
	}
	if b.PaymentStatus != models.PaymentPending {
		t.Errorf("expected payment pending, got %s", b.PaymentStatus)
	}
	if got := slots.available("p1"); got != 9 {
		t.Errorf("expected 9 available slots, got %d", got)
	}
}

func TestCreateBookingRoundsPartialHoursUp(t *testing.T) {
	slots := newFakeSlotStore(testSlot(5, 5))
	svc := newTestService(slots, newFakeBookingStore())

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	b, err := svc.Create(context.Background(), CreateRequest{
		UserID:        "u1",
		SlotID:        "p1",
		VehicleNumber: "KA01AB1234",
		StartTime:     start,
		EndTime:       start.Add(90 * time.Minute),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if b.Duration != 2 {
		t.Errorf("expected 90 minutes to bill as 2 hours, got %d", b.Duration)
	}
	if b.TotalPrice != 100 {
		t.Errorf("expected total price 100, got %v", b.TotalPrice)
	}
}

func TestCreateBookingRejectsInvalidTimeRange(t *testing.T) {
	slots := newFakeSlotStore(testSlot(5, 5))
	svc := newTestService(slots, newFakeBookingStore())

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), CreateRequest{
		UserID:    "u1",
		SlotID:    "p1",
		StartTime: start,
		EndTime:   start.Add(-time.Hour),
	})
	if err != ErrInvalidTimeRange {
		t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
	}
	if got := slots.available("p1"); got != 5 {
		t.Errorf("availability changed on rejected booking: %d", got)
	}
}

func TestCreateBookingSlotFull(t *testing.T) {
	slots := newFakeSlotStore(testSlot(0, 5))
	svc := newTestService(slots, newFakeBookingStore())

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), CreateRequest{
		UserID:    "u1",
		SlotID:    "p1",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	if err != ErrSlotFull {
		t.Fatalf("expected ErrSlotFull, got %v", err)
	}
	if got := slots.available("p1"); got != 0 {
		t.Errorf("availability changed on full slot: %d", got)
	}
}

func TestCreateBookingInactiveSlot(t *testing.T) {
	slot := testSlot(5, 5)
	slot.IsActive = false
	svc := newTestService(newFakeSlotStore(slot), newFakeBookingStore())

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), CreateRequest{
		UserID:    "u1",
		SlotID:    "p1",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	if err != ErrSlotInactive {
		t.Fatalf("expected ErrSlotInactive, got %v", err)
	}
}

func TestConcurrentCreateLastSpace(t *testing.T) {
	slots := newFakeSlotStore(testSlot(1, 10))
	svc := newTestService(slots, newFakeBookingStore())

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	req := func(user string) CreateRequest {
		return CreateRequest{
			UserID:        user,
			SlotID:        "p1",
			VehicleNumber: "KA01AB1234",
			StartTime:     start,
			EndTime:       start.Add(time.Hour),
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), req("u"+string(rune('1'+i))))
		}(i)
	}
	wg.Wait()

	succeeded, conflicted := 0, 0
	for _, err := range errs {
		switch err {
		case nil:
			succeeded++
		case ErrSlotFull:
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || conflicted != 1 {
		t.Fatalf("expected exactly one success and one conflict, got %d/%d", succeeded, conflicted)
	}
	if got := slots.available("p1"); got != 0 {
		t.Errorf("expected 0 available slots, got %d", got)
	}
}

func TestCreateBookingReleasesOnInsertFailure(t *testing.T) {
	slots := newFakeSlotStore(testSlot(5, 5))
	store := newFakeBookingStore()
	store.failNext = true
	svc := newTestService(slots, store)

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), CreateRequest{
		UserID:    "u1",
		SlotID:    "p1",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	if err == nil {
		t.Fatal("expected insert failure to surface")
	}
	if got := slots.available("p1"); got != 5 {
		t.Errorf("reserved space not returned after insert failure: %d", got)
	}
}

func mustCreate(t *testing.T, svc *Service, userID string) *models.Booking {
	t.Helper()
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	b, err := svc.Create(context.Background(), CreateRequest{
		UserID:        userID,
		SlotID:        "p1",
		VehicleNumber: "KA01AB1234",
		StartTime:     start,
		EndTime:       start.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return b
}

func TestCancelReleasesSpace(t *testing.T) {
	slots := newFakeSlotStore(testSlot(5, 5))
	svc := newTestService(slots, newFakeBookingStore())
	b := mustCreate(t, svc, "u1")

	updated, err := svc.Cancel(context.Background(), b.BookingID, "u1", false)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if updated.Status != models.BookingCancelled {
		t.Errorf("expected cancelled, got %s", updated.Status)
	}
	if got := slots.available("p1"); got != 5 {
		t.Errorf("expected space returned, got %d available", got)
	}

	if _, err := svc.Cancel(context.Background(), b.BookingID, "u1", false); err != ErrAlreadyTerminal {
		t.Fatalf("expected ErrAlreadyTerminal on second cancel, got %v", err)
	}
	if got := slots.available("p1"); got != 5 {
		t.Errorf("second cancel changed availability: %d", got)
	}
}

func TestCancelRequiresOwnerOrAdmin(t *testing.T) {
	slots := newFakeSlotStore(testSlot(5, 5))
	svc := newTestService(slots, newFakeBookingStore())
	b := mustCreate(t, svc, "u1")

	if _, err := svc.Cancel(context.Background(), b.BookingID, "u2", false); err != ErrNotAuthorized {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	if _, err := svc.Cancel(context.Background(), b.BookingID, "u2", true); err != nil {
		t.Fatalf("admin cancel failed: %v", err)
	}
}

func TestConfirmPaymentLeavesAvailabilityAlone(t *testing.T) {
	slots := newFakeSlotStore(testSlot(5, 5))
	svc := newTestService(slots, newFakeBookingStore())
	b := mustCreate(t, svc, "u1")

	before := slots.available("p1")
	updated, err := svc.ConfirmPayment(context.Background(), b.BookingID, "u1", false, "pay_123")
	if err != nil {
		t.Fatalf("confirm payment failed: %v", err)
	}
	if updated.PaymentStatus != models.PaymentPaid {
		t.Errorf("expected paid, got %s", updated.PaymentStatus)
	}
	if got := slots.available("p1"); got != before {
		t.Errorf("payment confirmation changed availability: %d -> %d", before, got)
	}

	// replay is a no-op
	again, err := svc.ConfirmPayment(context.Background(), b.BookingID, "u1", false, "pay_456")
	if err != nil {
		t.Fatalf("replayed confirm failed: %v", err)
	}
	if again.PaymentRef != "pay_123" {
		t.Errorf("replay overwrote payment ref: %s", again.PaymentRef)
	}
	if got := slots.available("p1"); got != before {
		t.Errorf("replayed confirmation changed availability: %d", got)
	}
}

func TestLatePaymentCannotReviveCompletedBooking(t *testing.T) {
	slots := newFakeSlotStore(testSlot(5, 5))
	store := newFakeBookingStore()
	svc := newTestService(slots, store)

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	create := func(user string, hours int) *models.Booking {
		b, err := svc.Create(context.Background(), CreateRequest{
			UserID:        user,
			SlotID:        "p1",
			VehicleNumber: "KA01AB1234",
			StartTime:     start,
			EndTime:       start.Add(time.Duration(hours) * time.Hour),
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		return b
	}
	b1 := create("u1", 2)
	b2 := create("u2", 8)

	// b1 is overdue at 15:00, b2 still has hours left
	svc.now = func() time.Time { return start.Add(5 * time.Hour) }

	n, err := svc.ReconcileOverdue(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("expected 1 reconciled booking, got n=%d err=%v", n, err)
	}
	if got := slots.available("p1"); got != 4 {
		t.Fatalf("expected 4 available after reconcile, got %d", got)
	}

	// the gateway callback arrives after the reconciler already completed b1
	if _, err := svc.ConfirmPayment(context.Background(), b1.BookingID, "u1", false, "pay_late"); err != ErrAlreadyTerminal {
		t.Fatalf("expected ErrAlreadyTerminal for late payment, got %v", err)
	}

	got, err := store.Get(context.Background(), b1.BookingID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != models.BookingCompleted {
		t.Errorf("late payment revived booking: status %s", got.Status)
	}

	// nothing left to reconcile; b2's space must stay accounted for
	n, err = svc.ReconcileOverdue(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("expected clean second pass, got n=%d err=%v", n, err)
	}
	if got := slots.available("p1"); got != 4 {
		t.Errorf("expected 4 available (one live booking), got %d", got)
	}
	if live, _ := store.Get(context.Background(), b2.BookingID); live.Status != models.BookingConfirmed {
		t.Errorf("live booking disturbed: status %s", live.Status)
	}
}

func TestConfirmPaymentOnCancelledBooking(t *testing.T) {
	slots := newFakeSlotStore(testSlot(5, 5))
	svc := newTestService(slots, newFakeBookingStore())
	b := mustCreate(t, svc, "u1")

	if _, err := svc.Cancel(context.Background(), b.BookingID, "u1", false); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := svc.ConfirmPayment(context.Background(), b.BookingID, "u1", false, "pay_123"); err != ErrAlreadyTerminal {
		t.Fatalf("expected ErrAlreadyTerminal, got %v", err)
	}
}

func TestCompleteReleasesSpace(t *testing.T) {
	slots := newFakeSlotStore(testSlot(5, 5))
	svc := newTestService(slots, newFakeBookingStore())
	b := mustCreate(t, svc, "u1")

	updated, err := svc.Complete(context.Background(), b.BookingID, "u1", false)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if updated.Status != models.BookingCompleted {
		t.Errorf("expected completed, got %s", updated.Status)
	}
	if got := slots.available("p1"); got != 5 {
		t.Errorf("expected space returned, got %d available", got)
	}
}

func TestCancelSurvivesReleaseFailure(t *testing.T) {
	slots := newFakeSlotStore(testSlot(5, 5))
	svc := newTestService(slots, newFakeBookingStore())
	b := mustCreate(t, svc, "u1")

	slots.failRelease = true
	updated, err := svc.Cancel(context.Background(), b.BookingID, "u1", false)
	if err != nil {
		t.Fatalf("cancel should succeed despite release failure: %v", err)
	}
	if updated.Status != models.BookingCancelled {
		t.Errorf("expected cancelled, got %s", updated.Status)
	}
}

func TestReconcileOverdueCompletesAndReleases(t *testing.T) {
	slots := newFakeSlotStore(testSlot(5, 5))
	store := newFakeBookingStore()
	svc := newTestService(slots, store)
	b := mustCreate(t, svc, "u1")

	// jump past the booking's end time
	svc.now = func() time.Time {
		return time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	}

	n, err := svc.ReconcileOverdue(context.Background())
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 reconciled booking, got %d", n)
	}

	got, err := store.Get(context.Background(), b.BookingID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != models.BookingCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}
	if avail := slots.available("p1"); avail != 5 {
		t.Errorf("expected space returned, got %d available", avail)
	}

	// second pass finds nothing
	n, err = svc.ReconcileOverdue(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("expected clean second pass, got n=%d err=%v", n, err)
	}
}
