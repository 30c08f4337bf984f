package parking

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"parkly/db"
	"parkly/models"
	"parkly/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AddReview records a rating for a slot, one per user. A second submission
// overwrites the first.
func AddReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	slotID := ps.ByName("id")
	err := db.SlotsCollection.FindOne(context.TODO(), bson.M{"slotid": slotID}).Err()
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Parking slot not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch parking slot")
		return
	}

	var input struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Rating < 1 || input.Rating > 5 {
		utils.RespondWithError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	review := models.Review{
		ReviewID:  "r" + utils.GenerateRandomDigitString(10),
		SlotID:    slotID,
		UserID:    userID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now(),
	}

	_, err = db.ReviewsCollection.UpdateOne(context.TODO(),
		bson.M{"slotid": slotID, "userid": userID},
		bson.M{"$set": review},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save review")
		return
	}

	utils.SendResponse(w, http.StatusCreated, review, "Review saved", nil)
}

func GetReviews(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cursor, err := db.ReviewsCollection.Find(context.TODO(),
		bson.M{"slotid": ps.ByName("id")},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch reviews")
		return
	}
	defer cursor.Close(context.TODO())

	reviews := []models.Review{}
	if err := cursor.All(context.TODO(), &reviews); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode reviews")
		return
	}

	utils.SendResponse(w, http.StatusOK, reviews, "Reviews retrieved", nil)
}
