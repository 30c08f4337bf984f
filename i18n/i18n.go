package i18n

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"parkly/rdx"
	"parkly/utils"

	"github.com/julienschmidt/httprouter"
)

const cacheTTL = 24 * time.Hour

// locales holds the UI strings served to clients. English is the fallback.
var locales = map[string]map[string]string{
	"en": {
		"app_name":          "Parkly",
		"find_parking":      "Find Parking",
		"book_now":          "Book Now",
		"my_bookings":       "My Bookings",
		"cancel_booking":    "Cancel Booking",
		"available_slots":   "Available Slots",
		"price_per_hour":    "Price per hour",
		"total_price":       "Total Price",
		"payment_pending":   "Payment Pending",
		"payment_complete":  "Payment Complete",
		"booking_confirmed": "Booking Confirmed",
		"booking_cancelled": "Booking Cancelled",
		"no_slots":          "No parking slots available",
	},
	"hi": {
		"app_name":          "पार्कली",
		"find_parking":      "पार्किंग खोजें",
		"book_now":          "अभी बुक करें",
		"my_bookings":       "मेरी बुकिंग",
		"cancel_booking":    "बुकिंग रद्द करें",
		"available_slots":   "उपलब्ध स्लॉट",
		"price_per_hour":    "प्रति घंटा मूल्य",
		"total_price":       "कुल मूल्य",
		"payment_pending":   "भुगतान लंबित",
		"payment_complete":  "भुगतान पूर्ण",
		"booking_confirmed": "बुकिंग की पुष्टि",
		"booking_cancelled": "बुकिंग रद्द",
		"no_slots":          "कोई पार्किंग स्लॉट उपलब्ध नहीं",
	},
	"ta": {
		"app_name":          "பார்க்லி",
		"find_parking":      "வாகன நிறுத்தம் தேடு",
		"book_now":          "இப்போது முன்பதிவு",
		"my_bookings":       "என் முன்பதிவுகள்",
		"cancel_booking":    "முன்பதிவை ரத்து செய்",
		"available_slots":   "கிடைக்கும் இடங்கள்",
		"price_per_hour":    "மணிக்கு விலை",
		"total_price":       "மொத்த விலை",
		"payment_pending":   "கட்டணம் நிலுவையில்",
		"payment_complete":  "கட்டணம் முடிந்தது",
		"booking_confirmed": "முன்பதிவு உறுதி",
		"booking_cancelled": "முன்பதிவு ரத்து",
		"no_slots":          "இடங்கள் இல்லை",
	},
}

// Translations resolves the string table for a language, falling back to
// English for unknown codes.
func Translations(lang string) map[string]string {
	if t, ok := locales[lang]; ok {
		return t
	}
	return locales["en"]
}

// GetTranslations serves a locale's strings through a Redis read-through
// cache so repeated lookups skip the JSON encode.
func GetTranslations(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	lang := ps.ByName("lang")

	if cached, err := rdx.RdxGet("i18n:" + lang); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(cached))
		return
	}

	table := Translations(lang)
	data, err := json.Marshal(table)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to encode translations")
		return
	}

	if err := rdx.SetWithExpiry("i18n:"+lang, string(data), cacheTTL); err != nil {
		log.Printf("Failed to cache translations for %s: %v", lang, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
