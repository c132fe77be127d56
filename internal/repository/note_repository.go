package repository

import (
	"context"
	"fmt"

	"github.com/vdsasi/NoteSharingApp/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NoteRepository interface {
	Create(note *domain.Note) error
	FindByID(id string) (*domain.Note, error)
	Update(note *domain.Note) error
	List(ownerID string, sharedNoteIDs []string) ([]*domain.Note, error)
	ListTrashed(ownerID string) ([]*domain.Note, error)
	ListByTag(ownerID, tag string, sharedNoteIDs []string) ([]*domain.Note, error)
}

type noteRepository struct {
	col *mongo.Collection
}

func NewNoteRepository(db *mongo.Database) NoteRepository {
	col := db.Collection("notes")
	col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "trashed", Value: 1}},
	})
	return &noteRepository{col: col}
}

func (r *noteRepository) Create(note *domain.Note) error {
	return withRetry(func() error {
		_, err := r.col.InsertOne(context.Background(), note)
		if err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}
		return nil
	})
}

func (r *noteRepository) FindByID(id string) (*domain.Note, error) {
	var note domain.Note
	err := withRetry(func() error {
		err := r.col.FindOne(context.Background(), bson.M{"_id": id}).Decode(&note)
		if err == mongo.ErrNoDocuments {
			return domain.ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *noteRepository) Update(note *domain.Note) error {
	return withRetry(func() error {
		res, err := r.col.ReplaceOne(context.Background(), bson.M{"_id": note.ID}, note)
		if err != nil {
			return fmt.Errorf("failed to update note: %w", err)
		}
		if res.MatchedCount == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// accessFilter matches notes the user owns plus the explicitly shared ids.
func accessFilter(ownerID string, sharedNoteIDs []string) bson.M {
	or := []bson.M{{"ownerId": ownerID}}
	if len(sharedNoteIDs) > 0 {
		or = append(or, bson.M{"_id": bson.M{"$in": sharedNoteIDs}})
	}
	return bson.M{"$or": or}
}

func (r *noteRepository) List(ownerID string, sharedNoteIDs []string) ([]*domain.Note, error) {
	filter := accessFilter(ownerID, sharedNoteIDs)
	filter["trashed"] = false

	// Pinned first, most recently updated next; id breaks ties so the
	// order is deterministic.
	opts := options.Find().SetSort(bson.D{
		{Key: "pinned", Value: -1},
		{Key: "updatedAt", Value: -1},
		{Key: "_id", Value: 1},
	})
	return r.find(filter, opts)
}

func (r *noteRepository) ListTrashed(ownerID string) ([]*domain.Note, error) {
	filter := bson.M{"ownerId": ownerID, "trashed": true}
	opts := options.Find().SetSort(bson.D{
		{Key: "updatedAt", Value: -1},
		{Key: "_id", Value: 1},
	})
	return r.find(filter, opts)
}

func (r *noteRepository) ListByTag(ownerID, tag string, sharedNoteIDs []string) ([]*domain.Note, error) {
	filter := accessFilter(ownerID, sharedNoteIDs)
	filter["trashed"] = false
	filter["tags"] = tag

	opts := options.Find().SetSort(bson.D{
		{Key: "updatedAt", Value: -1},
		{Key: "_id", Value: 1},
	})
	return r.find(filter, opts)
}

func (r *noteRepository) find(filter bson.M, opts *options.FindOptions) ([]*domain.Note, error) {
	var notes []*domain.Note
	err := withRetry(func() error {
		ctx := context.Background()
		cursor, err := r.col.Find(ctx, filter, opts)
		if err != nil {
			return fmt.Errorf("failed to list notes: %w", err)
		}
		defer cursor.Close(ctx)

		notes = notes[:0]
		for cursor.Next(ctx) {
			var note domain.Note
			if err := cursor.Decode(&note); err != nil {
				return fmt.Errorf("failed to decode note: %w", err)
			}
			notes = append(notes, &note)
		}
		return cursor.Err()
	})
	if err != nil {
		return nil, err
	}
	return notes, nil
}
