package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection          *mongo.Collection
	ClubsCollection         *mongo.Collection
	EventsCollection        *mongo.Collection
	ResourcesCollection     *mongo.Collection
	BookingsCollection      *mongo.Collection
	NotificationsCollection *mongo.Collection
	Client                  *mongo.Client
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

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	Client, err = mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("campusdb")
	UserCollection = database.Collection("users")
	ClubsCollection = database.Collection("clubs")
	EventsCollection = database.Collection("events")
	ResourcesCollection = database.Collection("resources")
	BookingsCollection = database.Collection("bookings")
	NotificationsCollection = database.Collection("notifications")
}

// EnsureIndexes creates the unique and lookup indexes the handlers rely on.
// Email and club-name uniqueness are enforced here rather than in code.
func EnsureIndexes(ctx context.Context) error {
	_, err := UserCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("users_email_unique"),
		},
	})
	if err != nil {
		return err
	}

	_, err = ClubsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("clubs_name_unique"),
		},
	})
	if err != nil {
		return err
	}

	_, err = BookingsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "resourceid", Value: 1}, {Key: "starttime", Value: 1}},
			Options: options.Index().SetName("bookings_resource_start"),
		},
	})
	return err
}
