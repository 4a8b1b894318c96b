package inmemdb

import (
	"context"
	"strings"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/note"
)

type noteRow = note.Note

var noteFields = map[string]comparator[noteRow]{
	"title":      func(a, b *noteRow) int { return cmpString(a.Title, b.Title) },
	"pinned":     func(a, b *noteRow) int { return cmpBool(a.Pinned, b.Pinned) },
	"created_at": func(a, b *noteRow) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
	"updated_at": func(a, b *noteRow) int { return cmpTime(a.UpdatedAt, b.UpdatedAt) },
}

type noteRepository struct {
	db *table[noteRow]
}

var _ note.Repository = (*noteRepository)(nil)

func NewNoteRepository(db *DB) *noteRepository {
	return &noteRepository{db: db.notes}
}

func (repo *noteRepository) CreateNote(_ context.Context, n note.Note) (note.Note, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.rows[n.ID] = &n
	return n, nil
}

func (repo *noteRepository) QueryNotes(_ context.Context, filter *note.QueryFilter, ordering []core.DBOrdering) ([]note.Note, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	search := strings.ToLower(filter.Search)
	notes := repo.db.filter(func(n *note.Note) bool {
		if search != "" && !strings.Contains(strings.ToLower(n.Title), search) && !strings.Contains(strings.ToLower(n.Content), search) {
			return false
		}
		return (len(filter.UserIDs) == 0 || inSlice(filter.UserIDs, n.UserID)) &&
			(filter.Pinned == nil || n.Pinned == *filter.Pinned)
	})
	sortRows(notes, ordering, noteFields, func(a, b *noteRow) int { return cmpString(a.ID, b.ID) })
	return notes, nil
}

func (repo *noteRepository) GetNoteByID(_ context.Context, id string) (note.Note, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if n, ok := repo.db.rows[id]; ok {
		return *n, nil
	}
	return note.Note{}, note.ErrNotFound
}

func (repo *noteRepository) UpdateNote(_ context.Context, n note.Note) (note.Note, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[n.ID]; !ok {
		return note.Note{}, note.ErrNotFound
	}
	repo.db.rows[n.ID] = &n
	return n, nil
}

func (repo *noteRepository) DeleteNote(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[id]; !ok {
		return note.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}
