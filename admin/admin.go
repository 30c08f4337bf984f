package admin

import (
	"context"
	"net/http"

	"parkly/db"
	"parkly/models"
	"parkly/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetDashboard returns platform-wide counts for the admin landing page.
func GetDashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := context.TODO()

	users, err := db.UserCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to count users")
		return
	}
	slots, err := db.SlotsCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to count slots")
		return
	}
	activeSlots, err := db.SlotsCollection.CountDocuments(ctx, bson.M{"isActive": true})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to count active slots")
		return
	}
	bookings, err := db.BookingsCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to count bookings")
		return
	}
	activeBookings, err := db.BookingsCollection.CountDocuments(ctx, bson.M{
		"status": bson.M{"$in": bson.A{models.BookingConfirmed, models.BookingActive}},
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to count active bookings")
		return
	}

	utils.SendResponse(w, http.StatusOK, utils.M{
		"totalUsers":     users,
		"totalSlots":     slots,
		"activeSlots":    activeSlots,
		"totalBookings":  bookings,
		"activeBookings": activeBookings,
	}, "Dashboard generated", nil)
}

// GetUsers lists registered users with credentials projected out.
func GetUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cursor, err := db.UserCollection.Find(context.TODO(), bson.M{},
		options.Find().
			SetProjection(bson.M{"password": 0, "refresh_token": 0}).
			SetSort(bson.M{"created_at": -1}),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	defer cursor.Close(context.TODO())

	users := []models.User{}
	if err := cursor.All(context.TODO(), &users); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode users")
		return
	}

	utils.SendResponse(w, http.StatusOK, users, "Users retrieved", nil)
}

// GetAllBookings lists every booking, newest first.
func GetAllBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cursor, err := db.BookingsCollection.Find(context.TODO(), bson.M{},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}
	defer cursor.Close(context.TODO())

	bookings := []models.Booking{}
	if err := cursor.All(context.TODO(), &bookings); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode bookings")
		return
	}

	utils.SendResponse(w, http.StatusOK, bookings, "Bookings retrieved", nil)
}

// GetSlotBookings lists bookings for one slot.
func GetSlotBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cursor, err := db.BookingsCollection.Find(context.TODO(),
		bson.M{"slotid": ps.ByName("id")},
		options.Find().SetSort(bson.M{"startTime": -1}),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}
	defer cursor.Close(context.TODO())

	bookings := []models.Booking{}
	if err := cursor.All(context.TODO(), &bookings); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode bookings")
		return
	}

	utils.SendResponse(w, http.StatusOK, bookings, "Slot bookings retrieved", nil)
}
