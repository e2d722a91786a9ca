package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vidlink-backend/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection    = "users"
	sessionsCollection = "sessions"
)

// MongoUserStore keeps users and login sessions in MongoDB.
type MongoUserStore struct {
	users    *mongo.Collection
	sessions *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{
		users:    db.Collection(usersCollection),
		sessions: db.Collection(sessionsCollection),
	}
}

// EnsureIndexes creates the unique and TTL indexes the store relies on.
func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "googleSub", Value: 1}},
			Options: options.Index().SetName("user_google_sub").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("user_username").SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	// expired sessions are removed by mongod
	_, err = s.sessions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetName("session_expiry").SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("create session index: %w", err)
	}
	return nil
}

func (s *MongoUserStore) UpsertGoogleUser(ctx context.Context, p models.GoogleProfile) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"email":     p.Email,
			"name":      p.Name,
			"picture":   p.Picture,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":       uuid.NewString(),
			"googleSub": p.Subject,
			"isAdmin":   false,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var u models.User
	if err := s.users.FindOneAndUpdate(ctx, bson.M{"googleSub": p.Subject}, update, opts).Decode(&u); err != nil {
		return nil, fmt.Errorf("upsert google user: %w", err)
	}
	return &u, nil
}

func (s *MongoUserStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var u models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoUserStore) SetUsername(ctx context.Context, id, username string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"username": username, "updatedAt": time.Now().UTC()}}

	var u models.User
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&u)
	switch {
	case mongo.IsDuplicateKeyError(err):
		return nil, ErrUsernameTaken
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	return &u, nil
}

func (s *MongoUserStore) CreateSession(ctx context.Context, sess models.Session) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.sessions.InsertOne(ctx, sess)
	return err
}

// GetSession returns ErrNotFound for unknown and expired tokens alike.
func (s *MongoUserStore) GetSession(ctx context.Context, token string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var sess models.Session
	err := s.sessions.FindOne(ctx, bson.M{"_id": token, "expiresAt": bson.M{"$gt": time.Now().UTC()}}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *MongoUserStore) DeleteSession(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.sessions.DeleteOne(ctx, bson.M{"_id": token})
	return err
}
