package db

import (
	"context"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InsertUser inserts a new user into the database
func (s *MongoStore) InsertUser(ctx context.Context, user models.User) error {
	now := time.Now()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true

	_, err := s.users.InsertOne(ctx, user)
	return err
}

// FindUserByUsername finds a user by their username
func (s *MongoStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return nil, notFound(err)
	}

	return &user, nil
}

// UpdateLastLogin updates the last login time for a user
func (s *MongoStore) UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	result, err := s.users.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_login": now, "updated_at": now}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return maintenance.ErrNotFound
	}
	return nil
}
