package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/vdsasi/NoteSharingApp/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository interface {
	Create(user *domain.User) error
	FindByID(id string) (*domain.User, error)
	FindByUsername(username string) (*domain.User, error)
	FindByEmail(email string) (*domain.User, error)
	FindByIDs(ids []string) ([]*domain.User, error)
	UpdatePassword(id, hashedPassword string) error
	Search(query string, limit int) ([]*domain.User, error)
	EmailExists(email string) (bool, error)
	UsernameExists(username string) (bool, error)
}

type userRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	col := db.Collection("users")
	col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &userRepository{col: col}
}

func (r *userRepository) Create(user *domain.User) error {
	return withRetry(func() error {
		_, err := r.col.InsertOne(context.Background(), user)
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

func (r *userRepository) FindByID(id string) (*domain.User, error) {
	return r.findOne(bson.M{"_id": id})
}

func (r *userRepository) FindByUsername(username string) (*domain.User, error) {
	return r.findOne(bson.M{"username": username})
}

func (r *userRepository) FindByEmail(email string) (*domain.User, error) {
	return r.findOne(bson.M{"email": email})
}

func (r *userRepository) findOne(filter bson.M) (*domain.User, error) {
	var user domain.User
	err := withRetry(func() error {
		err := r.col.FindOne(context.Background(), filter).Decode(&user)
		if err == mongo.ErrNoDocuments {
			return domain.ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(bson.M{"_id": bson.M{"$in": ids}}, int64(len(ids)))
}

func (r *userRepository) UpdatePassword(id, hashedPassword string) error {
	return withRetry(func() error {
		res, err := r.col.UpdateOne(
			context.Background(),
			bson.M{"_id": id},
			bson.M{"$set": bson.M{"password": hashedPassword, "updatedAt": time.Now()}},
		)
		if err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if res.MatchedCount == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// Search matches username or email by case-insensitive substring.
func (r *userRepository) Search(query string, limit int) ([]*domain.User, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": []bson.M{
		{"username": pattern},
		{"email": pattern},
	}}
	return r.find(filter, int64(limit))
}

func (r *userRepository) find(filter bson.M, limit int64) ([]*domain.User, error) {
	var users []*domain.User
	err := withRetry(func() error {
		ctx := context.Background()
		opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
		if limit > 0 {
			opts = opts.SetLimit(limit)
		}
		cursor, err := r.col.Find(ctx, filter, opts)
		if err != nil {
			return fmt.Errorf("failed to query users: %w", err)
		}
		defer cursor.Close(ctx)

		users = users[:0]
		for cursor.Next(ctx) {
			var user domain.User
			if err := cursor.Decode(&user); err != nil {
				return fmt.Errorf("failed to decode user: %w", err)
			}
			users = append(users, &user)
		}
		return cursor.Err()
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) EmailExists(email string) (bool, error) {
	return r.exists(bson.M{"email": email})
}

func (r *userRepository) UsernameExists(username string) (bool, error) {
	return r.exists(bson.M{"username": username})
}

func (r *userRepository) exists(filter bson.M) (bool, error) {
	var count int64
	err := withRetry(func() error {
		var err error
		count, err = r.col.CountDocuments(context.Background(), filter)
		return err
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
