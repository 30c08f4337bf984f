package db

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection     *mongo.Collection
	SlotsCollection    *mongo.Collection
	BookingsCollection *mongo.Collection
	ReviewsCollection  *mongo.Collection
	PaymentsCollection *mongo.Collection
	Client             *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	var err error
	Client, err = mongo.Connect(context.TODO(), options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("parklydb")
	UserCollection = database.Collection("users")
	SlotsCollection = database.Collection("parkingslots")
	BookingsCollection = database.Collection("bookings")
	ReviewsCollection = database.Collection("reviews")
	PaymentsCollection = database.Collection("payments")

	ensureIndexes()
}

// ensureIndexes creates the 2dsphere index proximity queries depend on.
func ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := SlotsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "location", Value: "2dsphere"}},
	})
	if err != nil {
		log.Printf("Failed to create location index: %v", err)
	}

	_, err = BookingsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "slotid", Value: 1}, {Key: "status", Value: 1}},
	})
	if err != nil {
		log.Printf("Failed to create booking index: %v", err)
	}
}
