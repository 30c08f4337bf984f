package models

import "time"

// GeoPoint is a GeoJSON point, [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

type OperatingHours struct {
	Open  string `json:"open" bson:"open"`
	Close string `json:"close" bson:"close"`
}

// SlotDimensions is informational filter data for vehicle matching; it is
// not validated against a real vehicle record.
type SlotDimensions struct {
	Length float64 `json:"length" bson:"length"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

type ParkingSlot struct {
	SlotID         string         `json:"slotid" bson:"slotid"`
	Name           string         `json:"name" bson:"name"`
	Address        string         `json:"address" bson:"address"`
	Location       GeoPoint       `json:"location" bson:"location"`
	TotalSlots     int            `json:"totalSlots" bson:"totalSlots"`
	AvailableSlots int            `json:"availableSlots" bson:"availableSlots"`
	PricePerHour   float64        `json:"pricePerHour" bson:"pricePerHour"`
	Amenities      []string       `json:"amenities" bson:"amenities"`
	Images         []string       `json:"images,omitempty" bson:"images,omitempty"`
	Owner          string         `json:"owner" bson:"owner"`
	IsActive       bool           `json:"isActive" bson:"isActive"`
	OperatingHours OperatingHours `json:"operatingHours" bson:"operatingHours"`
	SlotDimensions SlotDimensions `json:"slotDimensions" bson:"slotDimensions"`
	Distance       float64        `json:"distance,omitempty" bson:"distance,omitempty"`
	ReviewCount    int            `json:"reviewCount,omitempty" bson:"reviewCount,omitempty"`
	CreatedAt      time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt" bson:"updatedAt"`
}

type Review struct {
	ReviewID  string    `json:"reviewid" bson:"reviewid"`
	SlotID    string    `json:"slotid" bson:"slotid"`
	UserID    string    `json:"userid" bson:"userid"`
	Rating    int       `json:"rating" bson:"rating"`
	Comment   string    `json:"comment" bson:"comment"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
