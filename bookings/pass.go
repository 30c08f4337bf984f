package bookings

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"time"

	"parkly/models"
	"parkly/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

var passSecret = func() []byte {
	if s := os.Getenv("PASS_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("parkly-pass-secret")
}()

// PassPayload returns the signed QR string: bookingid|slotid|vehicle|signature.
// Gate scanners verify the HMAC offline before lifting the barrier.
func PassPayload(b *models.Booking) string {
	data := fmt.Sprintf("%s|%s|%s", b.BookingID, b.SlotID, b.VehicleNumber)
	h := hmac.New(sha256.New, passSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// VerifyPassPayload checks a scanned payload's signature.
func VerifyPassPayload(payload string) bool {
	idx := len(payload) - 1
	for ; idx >= 0; idx-- {
		if payload[idx] == '|' {
			break
		}
	}
	if idx <= 0 {
		return false
	}
	data, sig := payload[:idx], payload[idx+1:]
	h := hmac.New(sha256.New, passSecret)
	h.Write([]byte(data))
	expected := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig))
}

// PrintPass renders a PDF parking pass with an entry QR code for a paid booking.
func (h *Handlers) PrintPass(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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
	if booking.PaymentStatus != models.PaymentPaid {
		utils.RespondWithError(w, http.StatusConflict, "Booking is not paid")
		return
	}

	qrPNG, err := qrcode.Encode(PassPayload(booking), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Parking Pass")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Booking ID: %s", booking.BookingID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Location: %s", booking.SlotName))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Vehicle: %s (%s)", booking.VehicleNumber, booking.VehicleType))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("From: %s", booking.StartTime.Format(time.RFC1123)))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("To:   %s", booking.EndTime.Format(time.RFC1123)))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Paid: %.2f", booking.TotalPrice))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=pass-"+booking.BookingID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
