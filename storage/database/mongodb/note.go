package mongodb

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/note"
)

type noteRepository struct {
	store store[note.Note]
}

var _ note.Repository = (*noteRepository)(nil)

func NewNoteRepository(d *DB) *noteRepository {
	return &noteRepository{store: newStore[note.Note](d, notesCollection, note.ErrNotFound)}
}

func (repo *noteRepository) CreateNote(ctx context.Context, n note.Note) (note.Note, error) {
	if err := repo.store.insert(ctx, n); err != nil {
		return note.Note{}, err
	}
	return n, nil
}

func (repo *noteRepository) QueryNotes(ctx context.Context, filter *note.QueryFilter, ordering []core.DBOrdering) ([]note.Note, error) {
	q := bson.M{}
	if len(filter.UserIDs) > 0 {
		q["user_id"] = in(filter.UserIDs)
	}
	if filter.Pinned != nil {
		q["pinned"] = *filter.Pinned
	}
	if filter.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		q["$or"] = bson.A{bson.M{"title": rx}, bson.M{"content": rx}}
	}
	return repo.store.find(ctx, q, ordering)
}

func (repo *noteRepository) GetNoteByID(ctx context.Context, id string) (note.Note, error) {
	return repo.store.get(ctx, id)
}

func (repo *noteRepository) UpdateNote(ctx context.Context, n note.Note) (note.Note, error) {
	if err := repo.store.replace(ctx, n.ID, n); err != nil {
		return note.Note{}, err
	}
	return n, nil
}

func (repo *noteRepository) DeleteNote(ctx context.Context, id string) error {
	return repo.store.delete(ctx, id)
}
