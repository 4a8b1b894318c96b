package inmemdb

import (
	"context"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/reflection"
)

type reflectionRow = reflection.Reflection

var reflectionFields = map[string]comparator[reflectionRow]{
	"created_at": func(a, b *reflectionRow) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
	"type":       func(a, b *reflectionRow) int { return cmpString(a.Type, b.Type) },
}

type reflectionRepository struct {
	db *table[reflectionRow]
}

var _ reflection.Repository = (*reflectionRepository)(nil)

func NewReflectionRepository(db *DB) *reflectionRepository {
	return &reflectionRepository{db: db.reflections}
}

func (repo *reflectionRepository) CreateReflection(_ context.Context, r reflection.Reflection) (reflection.Reflection, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.rows[r.ID] = &r
	return r, nil
}

func (repo *reflectionRepository) QueryReflections(_ context.Context, filter *reflection.QueryFilter, ordering []core.DBOrdering) ([]reflection.Reflection, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	refls := repo.db.filter(func(r *reflection.Reflection) bool {
		return (len(filter.UserIDs) == 0 || inSlice(filter.UserIDs, r.UserID)) &&
			(filter.Type == "" || r.Type == filter.Type)
	})
	sortRows(refls, ordering, reflectionFields, func(a, b *reflectionRow) int { return cmpString(a.ID, b.ID) })
	return refls, nil
}

func (repo *reflectionRepository) GetReflectionByID(_ context.Context, id string) (reflection.Reflection, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.rows[id]; ok {
		return *r, nil
	}
	return reflection.Reflection{}, reflection.ErrNotFound
}

func (repo *reflectionRepository) DeleteReflection(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[id]; !ok {
		return reflection.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}
