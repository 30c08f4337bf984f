package bookings

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"parkly/db"
	"parkly/models"
	"parkly/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Handlers wraps the booking service for the HTTP surface.
type Handlers struct {
	Svc *Service
}

func NewHandlers(svc *Service) *Handlers {
	return &Handlers{Svc: svc}
}

type createBookingInput struct {
	SlotID        string `json:"slotId"`
	VehicleNumber string `json:"vehicleNumber"`
	VehicleType   string `json:"vehicleType"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
}

func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input createBookingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.SlotID == "" || input.VehicleNumber == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	start, err := time.Parse(time.RFC3339, input.StartTime)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid start time")
		return
	}
	end, err := time.Parse(time.RFC3339, input.EndTime)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid end time")
		return
	}

	booking, err := h.Svc.Create(r.Context(), CreateRequest{
		UserID:        userID,
		SlotID:        input.SlotID,
		VehicleNumber: input.VehicleNumber,
		VehicleType:   input.VehicleType,
		StartTime:     start,
		EndTime:       end,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.SendResponse(w, http.StatusCreated, booking, "Booking created successfully", nil)
}

func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	booking, err := h.Svc.Cancel(r.Context(), ps.ByName("id"), userID, utils.IsAdmin(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.SendResponse(w, http.StatusOK, booking, "Booking cancelled", nil)
}

func (h *Handlers) ConfirmBookingPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		PaymentRef string `json:"paymentRef"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		input.PaymentRef = ""
	}

	booking, err := h.Svc.ConfirmPayment(r.Context(), ps.ByName("id"), userID, utils.IsAdmin(r), input.PaymentRef)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.SendResponse(w, http.StatusOK, booking, "Payment confirmed", nil)
}

func (h *Handlers) CompleteBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	booking, err := h.Svc.Complete(r.Context(), ps.ByName("id"), userID, utils.IsAdmin(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.SendResponse(w, http.StatusOK, booking, "Booking completed", nil)
}

func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	booking, err := h.Svc.Bookings.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if booking.UserID != userID && !utils.IsAdmin(r) {
		utils.RespondWithError(w, http.StatusForbidden, "Not authorized for this booking")
		return
	}

	utils.SendResponse(w, http.StatusOK, booking, "Booking retrieved", nil)
}

// GetMyBookings lists the requester's bookings, newest first.
func (h *Handlers) GetMyBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cursor, err := db.BookingsCollection.Find(context.TODO(),
		bson.M{"userid": userID},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		log.Printf("Failed to fetch bookings for %s: %v", userID, err)
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

// GetTodayBookings lists the requester's bookings overlapping today.
func (h *Handlers) GetTodayBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	cursor, err := db.BookingsCollection.Find(context.TODO(), bson.M{
		"userid":    userID,
		"startTime": bson.M{"$lt": dayEnd},
		"endTime":   bson.M{"$gte": dayStart},
	}, options.Find().SetSort(bson.M{"startTime": 1}))
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

	utils.SendResponse(w, http.StatusOK, bookings, "Today's bookings retrieved", nil)
}

// respondServiceError maps service sentinels onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch err {
	case ErrSlotNotFound, ErrBookingNotFound:
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case ErrSlotFull, ErrAlreadyTerminal:
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case ErrSlotInactive, ErrInvalidTimeRange:
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case ErrNotAuthorized:
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	default:
		log.Printf("Booking operation failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
