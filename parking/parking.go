package parking

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"parkly/db"
	"parkly/models"
	"parkly/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultSearchRadius = 5000 // meters

type slotInput struct {
	Name           string                `json:"name"`
	Address        string                `json:"address"`
	Latitude       float64               `json:"latitude"`
	Longitude      float64               `json:"longitude"`
	TotalSlots     int                   `json:"totalSlots"`
	PricePerHour   float64               `json:"pricePerHour"`
	Amenities      []string              `json:"amenities"`
	OperatingHours models.OperatingHours `json:"operatingHours"`
	SlotDimensions models.SlotDimensions `json:"slotDimensions"`
}

// GetParkingSlots searches active slots, nearest first when lat/lng given.
// Query params: lat, lng, radius (m), availableOnly, maxPrice.
func GetParkingSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	filter := bson.M{"isActive": true}

	if q.Get("availableOnly") == "true" {
		filter["availableSlots"] = bson.M{"$gt": 0}
	}
	if p := q.Get("maxPrice"); p != "" {
		maxPrice, err := strconv.ParseFloat(p, 64)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid maxPrice")
			return
		}
		filter["pricePerHour"] = bson.M{"$lte": maxPrice}
	}
	if amenities := utils.SplitTags(q.Get("amenities")); len(amenities) > 0 {
		filter["amenities"] = bson.M{"$all": amenities}
	}

	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr != "" && lngStr != "" {
		lat, err1 := strconv.ParseFloat(latStr, 64)
		lng, err2 := strconv.ParseFloat(lngStr, 64)
		if err1 != nil || err2 != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid coordinates")
			return
		}
		radius := float64(defaultSearchRadius)
		if rad := q.Get("radius"); rad != "" {
			parsed, err := strconv.ParseFloat(rad, 64)
			if err != nil || parsed <= 0 {
				utils.RespondWithError(w, http.StatusBadRequest, "Invalid radius")
				return
			}
			radius = parsed
		}
		filter["location"] = bson.M{
			"$near": bson.M{
				"$geometry":    models.NewGeoPoint(lng, lat),
				"$maxDistance": radius,
			},
		}
	}

	cursor, err := db.SlotsCollection.Find(context.TODO(), filter)
	if err != nil {
		log.Printf("Failed to search parking slots: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch parking slots")
		return
	}
	defer cursor.Close(context.TODO())

	slots := []models.ParkingSlot{}
	if err := cursor.All(context.TODO(), &slots); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode parking slots")
		return
	}

	utils.SendResponse(w, http.StatusOK, slots, "Parking slots retrieved", nil)
}

func GetParkingSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

	// Deactivated slots stay visible to their owner and admins only.
	if !slot.IsActive && slot.Owner != utils.GetUserIDFromRequest(r) && !utils.IsAdmin(r) {
		utils.RespondWithError(w, http.StatusNotFound, "Parking slot not found")
		return
	}

	count, err := db.ReviewsCollection.CountDocuments(context.TODO(), bson.M{"slotid": slot.SlotID})
	if err == nil {
		slot.ReviewCount = int(count)
	}

	utils.SendResponse(w, http.StatusOK, slot, "Parking slot retrieved", nil)
}

// CreateParkingSlot registers a new location. Every space starts free.
func CreateParkingSlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input slotInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Name == "" || input.TotalSlots <= 0 || input.PricePerHour < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing or invalid fields")
		return
	}

	slot := models.ParkingSlot{
		SlotID:         "p" + utils.GenerateRandomDigitString(12),
		Name:           input.Name,
		Address:        input.Address,
		Location:       models.NewGeoPoint(input.Longitude, input.Latitude),
		TotalSlots:     input.TotalSlots,
		AvailableSlots: input.TotalSlots,
		PricePerHour:   input.PricePerHour,
		Amenities:      input.Amenities,
		Owner:          userID,
		IsActive:       true,
		OperatingHours: input.OperatingHours,
		SlotDimensions: input.SlotDimensions,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if _, err := db.SlotsCollection.InsertOne(context.TODO(), slot); err != nil {
		log.Printf("Failed to create parking slot: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create parking slot")
		return
	}

	utils.SendResponse(w, http.StatusCreated, slot, "Parking slot created", nil)
}

// UpdateParkingSlot applies a partial update. Changing totalSlots shifts
// availableSlots by the same difference, floored at zero.
func UpdateParkingSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	slotID := ps.ByName("id")
	var existing models.ParkingSlot
	err := db.SlotsCollection.FindOne(context.TODO(), bson.M{"slotid": slotID}).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Parking slot not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch parking slot")
		return
	}
	if existing.Owner != userID && !utils.IsAdmin(r) {
		utils.RespondWithError(w, http.StatusForbidden, "Not the owner of this parking slot")
		return
	}

	var input struct {
		Name           *string                `json:"name"`
		Address        *string                `json:"address"`
		TotalSlots     *int                   `json:"totalSlots"`
		PricePerHour   *float64               `json:"pricePerHour"`
		Amenities      *[]string              `json:"amenities"`
		IsActive       *bool                  `json:"isActive"`
		OperatingHours *models.OperatingHours `json:"operatingHours"`
		SlotDimensions *models.SlotDimensions `json:"slotDimensions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Address != nil {
		set["address"] = *input.Address
	}
	if input.PricePerHour != nil {
		if *input.PricePerHour < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Price cannot be negative")
			return
		}
		set["pricePerHour"] = *input.PricePerHour
	}
	if input.Amenities != nil {
		set["amenities"] = *input.Amenities
	}
	if input.IsActive != nil {
		set["isActive"] = *input.IsActive
	}
	if input.OperatingHours != nil {
		set["operatingHours"] = *input.OperatingHours
	}
	if input.SlotDimensions != nil {
		set["slotDimensions"] = *input.SlotDimensions
	}
	if input.TotalSlots != nil {
		if *input.TotalSlots <= 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Total slots must be positive")
			return
		}
		// Capacity change shifts the free count by the same amount, so
		// spaces held by live bookings stay accounted for.
		diff := *input.TotalSlots - existing.TotalSlots
		available := existing.AvailableSlots + diff
		if available < 0 {
			available = 0
		}
		set["totalSlots"] = *input.TotalSlots
		set["availableSlots"] = available
	}

	res := db.SlotsCollection.FindOneAndUpdate(context.TODO(),
		bson.M{"slotid": slotID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.ParkingSlot
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update parking slot")
		return
	}

	utils.SendResponse(w, http.StatusOK, updated, "Parking slot updated", nil)
}

func DeleteParkingSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	slotID := ps.ByName("id")
	var existing models.ParkingSlot
	err := db.SlotsCollection.FindOne(context.TODO(), bson.M{"slotid": slotID}).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Parking slot not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch parking slot")
		return
	}
	if existing.Owner != userID && !utils.IsAdmin(r) {
		utils.RespondWithError(w, http.StatusForbidden, "Not the owner of this parking slot")
		return
	}

	if _, err := db.SlotsCollection.DeleteOne(context.TODO(), bson.M{"slotid": slotID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete parking slot")
		return
	}

	utils.SendResponse(w, http.StatusOK, utils.M{"slotid": slotID}, "Parking slot deleted", nil)
}

// GetMySlots lists slots owned by the requester.
func GetMySlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cursor, err := db.SlotsCollection.Find(context.TODO(), bson.M{"owner": userID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch slots")
		return
	}
	defer cursor.Close(context.TODO())

	slots := []models.ParkingSlot{}
	if err := cursor.All(context.TODO(), &slots); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode slots")
		return
	}

	utils.SendResponse(w, http.StatusOK, slots, "Slots retrieved", nil)
}
