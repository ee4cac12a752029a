package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"studyroom/internal/app/user"
)

// Collection names used by the study application.
const (
	videoChatCollection = "video_chat"
	userCollection      = "user"
)

// videoChatDoc mirrors a video_chat document. start_date is written either as the raw
// string the host submitted or as a BSON datetime, so it is decoded lazily.
type videoChatDoc struct {
	ID        string        `bson:"id"`
	UserIDs   []string      `bson:"user_id"`
	StartDate bson.RawValue `bson:"start_date"`
}

type userDoc struct {
	ID    string `bson:"id"`
	Name  string `bson:"name"`
	Email string `bson:"email"`
}

// Mongo reads rooms and users from the study application's MongoDB database.
type Mongo struct {
	client *mongo.Client
	rooms  *mongo.Collection
	users  *mongo.Collection
}

// NewMongo connects to uri and verifies the connection with a ping.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(database)
	return &Mongo{
		client: client,
		rooms:  db.Collection(videoChatCollection),
		users:  db.Collection(userCollection),
	}, nil
}

func (m *Mongo) GetRoom(ctx context.Context, roomID string) (*Room, error) {
	var doc videoChatDoc

	err := m.rooms.FindOne(ctx, bson.M{"id": roomID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find video_chat %s: %w", roomID, err)
	}

	return &Room{
		ID:             doc.ID,
		StartDate:      rawStartDate(doc.StartDate),
		ParticipantIDs: doc.UserIDs,
	}, nil
}

func (m *Mongo) GetUser(ctx context.Context, userID string) (*user.User, error) {
	var doc userDoc

	err := m.users.FindOne(ctx, bson.M{"id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", userID, err)
	}

	return &user.User{ID: doc.ID, Name: doc.Name, Email: doc.Email}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// rawStartDate renders a start_date value as a string; unsupported types yield "",
// which the admission gate rejects.
func rawStartDate(v bson.RawValue) string {
	if s, ok := v.StringValueOK(); ok {
		return s
	}
	if t, ok := v.TimeOK(); ok {
		return t.UTC().Format(time.RFC3339)
	}
	return ""
}
