package mq

import (
	"context"
	"encoding/json"
	"log"

	"parkly/models"
	"parkly/notify"
	"parkly/rdx"
)

const bookingChannel = "booking-events"

// BookingEvent is the pubsub envelope for booking and availability changes.
type BookingEvent struct {
	Type           string          `json:"type"`
	SlotID         string          `json:"slotid,omitempty"`
	AvailableSlots int             `json:"availableSlots,omitempty"`
	Booking        *models.Booking `json:"booking,omitempty"`
}

// Emitter publishes booking events to Redis. It satisfies the booking
// service's notifier so API replicas share one event stream.
type Emitter struct{}

func NewEmitter() *Emitter {
	return &Emitter{}
}

func (e *Emitter) SlotUpdate(slotID string, availableSlots int) {
	e.publish(BookingEvent{
		Type:           "slot_update",
		SlotID:         slotID,
		AvailableSlots: availableSlots,
	})
}

func (e *Emitter) BookingUpdate(b *models.Booking) {
	e.publish(BookingEvent{
		Type:    "booking_update",
		SlotID:  b.SlotID,
		Booking: b,
	})
}

func (e *Emitter) publish(ev BookingEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[Emit] Failed to marshal event: %v", err)
		return
	}
	if err := rdx.Conn.Publish(context.Background(), bookingChannel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish event to Redis: %v", err)
	}
}

// StartBookingWorker subscribes to the booking channel and fans events out
// to the websocket hub. Runs until ctx is cancelled.
func StartBookingWorker(ctx context.Context, hub *notify.Hub) {
	sub := rdx.Conn.Subscribe(ctx, bookingChannel)
	ch := sub.Channel()

	log.Println("[BookingWorker] Listening for booking events...")

	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev BookingEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("[BookingWorker] Failed to parse event: %v", err)
					continue
				}
				hub.Broadcast(ev.SlotID, notify.Event{Type: ev.Type, Data: ev})
			}
		}
	}()
}
