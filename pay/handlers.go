package pay

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"parkly/bookings"
	"parkly/db"
	"parkly/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// Handlers bridges the mock gateway to the booking service.
type Handlers struct {
	Svc *bookings.Service
}

func NewHandlers(svc *bookings.Service) *Handlers {
	return &Handlers{Svc: svc}
}

// Redis- and Mongo-backed steps behind vars so handler tests can stub them.
var (
	sessionBooking = SessionBooking
	claimOrder     = ClaimOrder
	releaseOrder   = ReleaseOrder
	recordPayment  = func(orderID, paymentID, bookingID, userID string, amount float64) {
		_, err := db.PaymentsCollection.InsertOne(context.TODO(), bson.M{
			"orderid":   orderID,
			"paymentid": paymentID,
			"bookingid": bookingID,
			"userid":    userID,
			"amount":    amount,
			"createdAt": time.Now(),
		})
		if err != nil {
			log.Printf("Failed to record payment %s: %v", paymentID, err)
		}
	}
)

// CreateSession opens a checkout session for one of the requester's bookings.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		BookingID string `json:"bookingId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.BookingID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing booking id")
		return
	}

	booking, err := h.Svc.Bookings.Get(r.Context(), input.BookingID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
		return
	}
	if booking.UserID != userID && !utils.IsAdmin(r) {
		utils.RespondWithError(w, http.StatusForbidden, "Not authorized for this booking")
		return
	}

	session, err := CreateSession(booking.BookingID, booking.TotalPrice)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create payment session")
		return
	}

	utils.SendResponse(w, http.StatusOK, session, "Payment session created", nil)
}

// VerifyPayment validates a gateway callback and confirms the booking.
// Claims the order first, so replaying the same callback is a no-op.
func (h *Handlers) VerifyPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		OrderID   string `json:"orderId"`
		PaymentID string `json:"paymentId"`
		Signature string `json:"signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.OrderID == "" || input.PaymentID == "" || input.Signature == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing payment fields")
		return
	}

	if !VerifySignature(input.OrderID, input.PaymentID, input.Signature) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payment signature")
		return
	}

	bookingID := sessionBooking(input.OrderID)
	if bookingID == "" {
		utils.RespondWithError(w, http.StatusNotFound, "Payment session not found or expired")
		return
	}

	if !claimOrder(input.OrderID) {
		booking, err := h.Svc.Bookings.Get(r.Context(), bookingID)
		if err != nil {
			utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
			return
		}
		utils.SendResponse(w, http.StatusOK, booking, "Payment already processed", nil)
		return
	}

	booking, err := h.Svc.ConfirmPayment(r.Context(), bookingID, userID, utils.IsAdmin(r), input.PaymentID)
	if err == nil {
		// Audit trail; the booking document stays the source of truth.
		recordPayment(input.OrderID, input.PaymentID, bookingID, userID, booking.TotalPrice)
	}
	if err != nil {
		// The claim must not outlive a failed confirmation or a legitimate
		// retry would be answered with "already processed".
		releaseOrder(input.OrderID)
		switch err {
		case bookings.ErrBookingNotFound:
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case bookings.ErrNotAuthorized:
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		case bookings.ErrAlreadyTerminal:
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to confirm payment")
		}
		return
	}

	utils.SendResponse(w, http.StatusOK, booking, "Payment verified", nil)
}
