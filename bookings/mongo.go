package bookings

import (
	"context"
	"time"

	"parkly/db"
	"parkly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSlotStore backs SlotStore with the parkingslots collection.
type MongoSlotStore struct {
	Coll *mongo.Collection
}

func NewMongoSlotStore() *MongoSlotStore {
	return &MongoSlotStore{Coll: db.SlotsCollection}
}

func (s *MongoSlotStore) Get(ctx context.Context, slotID string) (*models.ParkingSlot, error) {
	var slot models.ParkingSlot
	err := s.Coll.FindOne(ctx, bson.M{"slotid": slotID}).Decode(&slot)
	if err == mongo.ErrNoDocuments {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// Reserve decrements availableSlots in one conditional update so the
// capacity check and the write cannot race apart; a document with no free
// space simply does not match.
func (s *MongoSlotStore) Reserve(ctx context.Context, slotID string) (int, error) {
	res := s.Coll.FindOneAndUpdate(ctx,
		bson.M{"slotid": slotID, "isActive": true, "availableSlots": bson.M{"$gt": 0}},
		bson.M{
			"$inc": bson.M{"availableSlots": -1},
			"$set": bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.ParkingSlot
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, ErrSlotFull
		}
		return 0, err
	}
	return updated.AvailableSlots, nil
}

// Release increments availableSlots, capped at totalSlots via the filter.
func (s *MongoSlotStore) Release(ctx context.Context, slotID string) (int, error) {
	res := s.Coll.FindOneAndUpdate(ctx,
		bson.M{"slotid": slotID, "$expr": bson.M{"$lt": bson.A{"$availableSlots", "$totalSlots"}}},
		bson.M{
			"$inc": bson.M{"availableSlots": 1},
			"$set": bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.ParkingSlot
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			// already at capacity; report the current count
			slot, gerr := s.Get(ctx, slotID)
			if gerr != nil {
				return 0, gerr
			}
			return slot.AvailableSlots, nil
		}
		return 0, err
	}
	return updated.AvailableSlots, nil
}

// MongoBookingStore backs BookingStore with the bookings collection.
type MongoBookingStore struct {
	Coll *mongo.Collection
}

func NewMongoBookingStore() *MongoBookingStore {
	return &MongoBookingStore{Coll: db.BookingsCollection}
}

func (s *MongoBookingStore) Insert(ctx context.Context, b *models.Booking) error {
	_, err := s.Coll.InsertOne(ctx, b)
	return err
}

func (s *MongoBookingStore) Get(ctx context.Context, bookingID string) (*models.Booking, error) {
	var booking models.Booking
	err := s.Coll.FindOne(ctx, bson.M{"bookingid": bookingID}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s *MongoBookingStore) SetStatus(ctx context.Context, bookingID, status string) (*models.Booking, error) {
	res := s.Coll.FindOneAndUpdate(ctx,
		bson.M{"bookingid": bookingID},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Booking
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// SetPayment refuses to touch terminal bookings so a late gateway callback
// cannot flip a completed or cancelled booking back to confirmed.
func (s *MongoBookingStore) SetPayment(ctx context.Context, bookingID, paymentStatus, paymentRef string) (*models.Booking, error) {
	res := s.Coll.FindOneAndUpdate(ctx,
		bson.M{
			"bookingid": bookingID,
			"status":    bson.M{"$nin": bson.A{models.BookingCancelled, models.BookingCompleted}},
		},
		bson.M{"$set": bson.M{
			"paymentStatus": paymentStatus,
			"paymentRef":    paymentRef,
			"status":        models.BookingConfirmed,
			"updatedAt":     time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Booking
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			if _, gerr := s.Get(ctx, bookingID); gerr == nil {
				return nil, ErrAlreadyTerminal
			}
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func (s *MongoBookingStore) Overdue(ctx context.Context, now time.Time) ([]models.Booking, error) {
	cur, err := s.Coll.Find(ctx, bson.M{
		"status":  bson.M{"$in": bson.A{models.BookingConfirmed, models.BookingActive}},
		"endTime": bson.M{"$lt": now},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var overdue []models.Booking
	if err := cur.All(ctx, &overdue); err != nil {
		return nil, err
	}
	return overdue, nil
}
