package pay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"math"
	"os"
	"time"

	"parkly/globals"
	"parkly/rdx"
	"parkly/utils"
)

// Session is a mock gateway checkout for a booking. Amount is in minor
// currency units, the way real gateways take it.
type Session struct {
	OrderID   string `json:"orderId"`
	BookingID string `json:"bookingId"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	URL       string `json:"url"`
}

var gatewaySecret = func() []byte {
	if s := os.Getenv("PAYMENT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("parkly-gateway-secret")
}()

const sessionTTL = 30 * time.Minute

// CreateSession opens a mock checkout session for a booking amount.
func CreateSession(bookingID string, totalPrice float64) (Session, error) {
	s := Session{
		OrderID:   "order_" + utils.GetUUID(),
		BookingID: bookingID,
		Amount:    int64(math.Round(totalPrice * 100)),
		Currency:  "INR",
		URL:       checkoutBase() + "/checkout/" + bookingID,
	}
	if err := rdx.SetWithExpiry("paysession:"+s.OrderID, bookingID, sessionTTL); err != nil {
		return Session{}, err
	}
	return s, nil
}

func checkoutBase() string {
	if u := os.Getenv("CHECKOUT_URL"); u != "" {
		return u
	}
	return "http://localhost:5173"
}

// Sign produces the gateway signature over orderID|paymentID.
func Sign(orderID, paymentID string) string {
	h := hmac.New(sha256.New, gatewaySecret)
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature checks a callback signature in constant time.
func VerifySignature(orderID, paymentID, signature string) bool {
	expected := Sign(orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SessionBooking resolves an order back to its booking; empty when the
// session never existed or expired.
func SessionBooking(orderID string) string {
	bookingID, err := rdx.RdxGet("paysession:" + orderID)
	if err != nil {
		return ""
	}
	return bookingID
}

// ClaimOrder marks an order consumed so a replayed callback cannot confirm
// twice. Returns false when already claimed.
func ClaimOrder(orderID string) bool {
	ok, err := rdx.Conn.SetNX(globals.Ctx, "payclaim:"+orderID, "1", sessionTTL).Result()
	if err != nil {
		return false
	}
	return ok
}

// ReleaseOrder hands a claim back after a failed confirmation so the caller
// can retry instead of being told the payment was already processed.
func ReleaseOrder(orderID string) {
	if _, err := rdx.RdxDel("payclaim:" + orderID); err != nil {
		log.Printf("Failed to release payment claim %s: %v", orderID, err)
	}
}
