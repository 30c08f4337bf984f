package parking

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"parkly/db"
	"parkly/models"
	"parkly/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const slotPhotoDir = "./static/slotpic"

func processSlotPhoto(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open image file: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	uniqueID := utils.GenerateRandomString(16)
	fileName := uniqueID + ".jpg"
	thumbDir := filepath.Join(slotPhotoDir, "thumb")

	if err := utils.EnsureDir(slotPhotoDir); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := utils.EnsureDir(thumbDir); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	if err := imaging.Save(img, filepath.Join(slotPhotoDir, fileName)); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	thumb := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(thumbDir, fileName)); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return "/slotpic/" + fileName, nil
}

// UploadSlotPhotos attaches up to five photos to an owned slot.
func UploadSlotPhotos(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	slotID := ps.ByName("id")
	var slot models.ParkingSlot
	err := db.SlotsCollection.FindOne(context.TODO(), bson.M{"slotid": slotID}).Decode(&slot)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Parking slot not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch parking slot")
		return
	}
	if slot.Owner != userID && !utils.IsAdmin(r) {
		utils.RespondWithError(w, http.StatusForbidden, "Not the owner of this parking slot")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "No photos provided")
		return
	}
	if len(slot.Images)+len(files) > 5 {
		utils.RespondWithError(w, http.StatusBadRequest, "A slot can have at most 5 photos")
		return
	}

	var saved []string
	for _, file := range files {
		path, err := processSlotPhoto(file)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to process photo")
			return
		}
		saved = append(saved, path)
	}

	_, err = db.SlotsCollection.UpdateOne(context.TODO(),
		bson.M{"slotid": slotID},
		bson.M{
			"$push": bson.M{"images": bson.M{"$each": saved}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to attach photos")
		return
	}

	utils.SendResponse(w, http.StatusOK, utils.M{"images": saved}, "Photos uploaded", nil)
}
