package repository

import (
	"context"
	"fmt"

	"github.com/vdsasi/NoteSharingApp/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CollaboratorRepository interface {
	Add(collab *domain.Collaborator) error
	Remove(noteID, userID string) error
	Exists(noteID, userID string) (bool, error)
	ListUserIDs(noteID string) ([]string, error)
	NoteIDsForUser(userID string) ([]string, error)
	RemoveAllForNote(noteID string) error
}

type collaboratorRepository struct {
	col *mongo.Collection
}

func NewCollaboratorRepository(db *mongo.Database) CollaboratorRepository {
	col := db.Collection("collaborators")
	// The unique pair index makes duplicate grants a storage-level
	// conflict instead of a race.
	col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "noteId", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
	})
	return &collaboratorRepository{col: col}
}

func (r *collaboratorRepository) Add(collab *domain.Collaborator) error {
	return withRetry(func() error {
		_, err := r.col.InsertOne(context.Background(), collab)
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		if err != nil {
			return fmt.Errorf("failed to add collaborator: %w", err)
		}
		return nil
	})
}

func (r *collaboratorRepository) Remove(noteID, userID string) error {
	return withRetry(func() error {
		res, err := r.col.DeleteOne(context.Background(), bson.M{"noteId": noteID, "userId": userID})
		if err != nil {
			return fmt.Errorf("failed to remove collaborator: %w", err)
		}
		if res.DeletedCount == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *collaboratorRepository) Exists(noteID, userID string) (bool, error) {
	var count int64
	err := withRetry(func() error {
		var err error
		count, err = r.col.CountDocuments(context.Background(), bson.M{"noteId": noteID, "userId": userID})
		return err
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *collaboratorRepository) ListUserIDs(noteID string) ([]string, error) {
	return r.distinct(bson.M{"noteId": noteID}, "userId")
}

func (r *collaboratorRepository) NoteIDsForUser(userID string) ([]string, error) {
	return r.distinct(bson.M{"userId": userID}, "noteId")
}

// RemoveAllForNote is the cascade hook for permanent note deletion.
func (r *collaboratorRepository) RemoveAllForNote(noteID string) error {
	return withRetry(func() error {
		_, err := r.col.DeleteMany(context.Background(), bson.M{"noteId": noteID})
		if err != nil {
			return fmt.Errorf("failed to remove collaborators: %w", err)
		}
		return nil
	})
}

func (r *collaboratorRepository) distinct(filter bson.M, field string) ([]string, error) {
	var ids []string
	err := withRetry(func() error {
		values, err := r.col.Distinct(context.Background(), field, filter)
		if err != nil {
			return fmt.Errorf("failed to query collaborators: %w", err)
		}
		ids = ids[:0]
		for _, v := range values {
			if s, ok := v.(string); ok {
				ids = append(ids, s)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
