package parking

import (
	"context"
	"net/http"
	"time"

	"parkly/db"
	"parkly/models"
	"parkly/pricing"
	"parkly/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetPriceQuote returns the advisory dynamic rate for a window on a slot.
// The booking itself is always charged duration * pricePerHour; this is the
// surge indicator clients display next to it.
func GetPriceQuote(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var slot models.ParkingSlot
	err := db.SlotsCollection.FindOne(context.TODO(), bson.M{"slotid": ps.ByName("id")}).Decode(&slot)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Parking slot not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch parking slot")
		return
	}

	q := r.URL.Query()
	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid start time")
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid end time")
		return
	}
	if !end.After(start) {
		utils.RespondWithError(w, http.StatusBadRequest, "End time must be after start time")
		return
	}

	quote := pricing.QuoteFor(slot.PricePerHour, start, end, slot.AvailableSlots, slot.TotalSlots)
	utils.SendResponse(w, http.StatusOK, quote, "Price quote generated", nil)
}
