package bookings

import (
	"strings"
	"testing"

	"parkly/models"
)

func TestPassPayloadRoundTrip(t *testing.T) {
	b := &models.Booking{
		BookingID:     "b123",
		SlotID:        "p456",
		VehicleNumber: "KA01AB1234",
	}

	payload := PassPayload(b)
	if !strings.HasPrefix(payload, "b123|p456|KA01AB1234|") {
		t.Fatalf("unexpected payload shape: %s", payload)
	}
	if !VerifyPassPayload(payload) {
		t.Fatal("freshly signed payload rejected")
	}
}

func TestVerifyPassPayloadRejectsTampering(t *testing.T) {
	b := &models.Booking{BookingID: "b123", SlotID: "p456", VehicleNumber: "KA01AB1234"}
	payload := PassPayload(b)

	tampered := strings.Replace(payload, "KA01AB1234", "MH02CD5678", 1)
	if VerifyPassPayload(tampered) {
		t.Fatal("tampered payload accepted")
	}
	if VerifyPassPayload("no-separator") {
		t.Fatal("malformed payload accepted")
	}
	if VerifyPassPayload("") {
		t.Fatal("empty payload accepted")
	}
}
