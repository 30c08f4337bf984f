package bookings

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
)

type AnalyticsBucket struct {
	Label    string  `json:"label"`
	Bookings int     `json:"bookings"`
	Revenue  float64 `json:"revenue"`
}

type AnalyticsReport struct {
	Range          string            `json:"range"`
	From           time.Time         `json:"from"`
	To             time.Time         `json:"to"`
	TotalBookings  int               `json:"totalBookings"`
	TotalRevenue   float64           `json:"totalRevenue"`
	ActiveBookings int               `json:"activeBookings"`
	AveragePrice   float64           `json:"averagePrice"`
	Buckets        []AnalyticsBucket `json:"buckets"`
}

// AnalyticsWindow resolves a range keyword and anchor date into [from, to).
func AnalyticsWindow(rangeKey string, anchor time.Time) (from, to time.Time) {
	day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	switch rangeKey {
	case "week":
		// week starts on Monday
		offset := (int(day.Weekday()) + 6) % 7
		from = day.AddDate(0, 0, -offset)
		to = from.AddDate(0, 0, 7)
	case "month":
		from = time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		to = from.AddDate(0, 1, 0)
	default:
		from = day
		to = day.AddDate(0, 0, 1)
	}
	return from, to
}

// BuildAnalytics buckets bookings by start time: hourly for a day, daily for
// a week, weekly for a month. Cancelled bookings count toward volume but not
// revenue.
func BuildAnalytics(rangeKey string, from, to time.Time, bookings []models.Booking, now time.Time) AnalyticsReport {
	report := AnalyticsReport{Range: rangeKey, From: from, To: to}

	switch rangeKey {
	case "week":
		for d := 0; d < 7; d++ {
			report.Buckets = append(report.Buckets, AnalyticsBucket{
				Label: from.AddDate(0, 0, d).Format("Mon 02"),
			})
		}
	case "month":
		for w := from; w.Before(to); w = w.AddDate(0, 0, 7) {
			report.Buckets = append(report.Buckets, AnalyticsBucket{
				Label: "Week of " + w.Format("Jan 02"),
			})
		}
	default:
		for h := 0; h < 24; h++ {
			report.Buckets = append(report.Buckets, AnalyticsBucket{
				Label: time.Date(0, 1, 1, h, 0, 0, 0, time.UTC).Format("15:00"),
			})
		}
	}

	priced := 0
	for i := range bookings {
		b := bookings[i]
		idx := bucketIndex(rangeKey, from, b.StartTime)
		if idx < 0 || idx >= len(report.Buckets) {
			continue
		}

		report.TotalBookings++
		report.Buckets[idx].Bookings++

		if b.Status != models.BookingCancelled {
			report.TotalRevenue += b.TotalPrice
			report.Buckets[idx].Revenue = pricing.Round2(report.Buckets[idx].Revenue + b.TotalPrice)
			priced++
			report.AveragePrice += b.TotalPrice
		}

		if !b.IsTerminal() && b.StartTime.Before(now) && b.EndTime.After(now) {
			report.ActiveBookings++
		}
	}

	report.TotalRevenue = pricing.Round2(report.TotalRevenue)
	if priced > 0 {
		report.AveragePrice = pricing.Round2(report.AveragePrice / float64(priced))
	}
	return report
}

func bucketIndex(rangeKey string, from time.Time, at time.Time) int {
	// Before-window timestamps would otherwise truncate toward bucket 0.
	if at.Before(from) {
		return -1
	}
	switch rangeKey {
	case "week":
		return int(at.Sub(from).Hours() / 24)
	case "month":
		return int(at.Sub(from).Hours() / (24 * 7))
	default:
		if !at.Before(from.AddDate(0, 0, 1)) {
			return -1
		}
		return at.Hour()
	}
}

// GetAnalytics reports booking volume and revenue for the owner's slots, or
// the whole platform when no slots are owned and the requester is an admin.
func (h *Handlers) GetAnalytics(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if !utils.IsAdmin(r) {
		utils.RespondWithError(w, http.StatusForbidden, "Admin access required")
		return
	}

	rangeKey := r.URL.Query().Get("range")
	if rangeKey != "week" && rangeKey != "month" {
		rangeKey = "day"
	}

	anchor := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		anchor = parsed
	}

	from, to := AnalyticsWindow(rangeKey, anchor)

	// Scope to the requester's slots unless they own none.
	filter := bson.M{"startTime": bson.M{"$gte": from, "$lt": to}}
	slotIDs, err := ownedSlotIDs(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch slots")
		return
	}
	if len(slotIDs) > 0 {
		filter["slotid"] = bson.M{"$in": slotIDs}
	}

	cursor, err := db.BookingsCollection.Find(context.TODO(), filter)
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

	report := BuildAnalytics(rangeKey, from, to, bookings, time.Now())
	utils.SendResponse(w, http.StatusOK, report, "Analytics generated", nil)
}

func ownedSlotIDs(ctx context.Context, userID string) ([]string, error) {
	cursor, err := db.SlotsCollection.Find(ctx, bson.M{"owner": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var slots []models.ParkingSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(slots))
	for i := range slots {
		ids = append(ids, slots[i].SlotID)
	}
	return ids, nil
}
