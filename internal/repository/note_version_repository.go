package repository

import (
	"context"
	"fmt"

	"github.com/vdsasi/NoteSharingApp/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NoteVersionRepository interface {
	Save(version *domain.NoteVersion) error
	ListByNote(noteID string) ([]*domain.NoteVersion, error)
}

type noteVersionRepository struct {
	col *mongo.Collection
}

func NewNoteVersionRepository(db *mongo.Database) NoteVersionRepository {
	col := db.Collection("note_versions")
	col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "noteId", Value: 1}, {Key: "versionedAt", Value: 1}},
	})
	return &noteVersionRepository{col: col}
}

func (r *noteVersionRepository) Save(version *domain.NoteVersion) error {
	return withRetry(func() error {
		_, err := r.col.InsertOne(context.Background(), version)
		if err != nil {
			return fmt.Errorf("failed to save version: %w", err)
		}
		return nil
	})
}

// ListByNote returns the append-only version log, oldest first.
func (r *noteVersionRepository) ListByNote(noteID string) ([]*domain.NoteVersion, error) {
	var versions []*domain.NoteVersion
	err := withRetry(func() error {
		ctx := context.Background()
		opts := options.Find().SetSort(bson.D{
			{Key: "versionedAt", Value: 1},
			{Key: "_id", Value: 1},
		})
		cursor, err := r.col.Find(ctx, bson.M{"noteId": noteID}, opts)
		if err != nil {
			return fmt.Errorf("failed to list versions: %w", err)
		}
		defer cursor.Close(ctx)

		versions = versions[:0]
		for cursor.Next(ctx) {
			var v domain.NoteVersion
			if err := cursor.Decode(&v); err != nil {
				return fmt.Errorf("failed to decode version: %w", err)
			}
			versions = append(versions, &v)
		}
		return cursor.Err()
	})
	if err != nil {
		return nil, err
	}
	return versions, nil
}
