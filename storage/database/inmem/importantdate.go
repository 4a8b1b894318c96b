package inmemdb

import (
	"context"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/importantdate"
)

type importantDateRow = importantdate.ImportantDate

var importantDateFields = map[string]comparator[importantDateRow]{
	"date":       func(a, b *importantDateRow) int { return cmpTime(a.Date, b.Date) },
	"title":      func(a, b *importantDateRow) int { return cmpString(a.Title, b.Title) },
	"created_at": func(a, b *importantDateRow) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
}

type importantDateRepository struct {
	db *table[importantDateRow]
}

var _ importantdate.Repository = (*importantDateRepository)(nil)

func NewImportantDateRepository(db *DB) *importantDateRepository {
	return &importantDateRepository{db: db.importantDates}
}

func (repo *importantDateRepository) CreateImportantDate(_ context.Context, d importantdate.ImportantDate) (importantdate.ImportantDate, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.rows[d.ID] = &d
	return d, nil
}

func (repo *importantDateRepository) QueryImportantDates(_ context.Context, filter *importantdate.QueryFilter, ordering []core.DBOrdering) ([]importantdate.ImportantDate, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ds := repo.db.filter(filter.Matches)
	sortRows(ds, ordering, importantDateFields, func(a, b *importantDateRow) int { return cmpString(a.ID, b.ID) })
	return ds, nil
}

func (repo *importantDateRepository) GetImportantDateByID(_ context.Context, id string) (importantdate.ImportantDate, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if d, ok := repo.db.rows[id]; ok {
		return *d, nil
	}
	return importantdate.ImportantDate{}, importantdate.ErrNotFound
}

func (repo *importantDateRepository) UpdateImportantDate(_ context.Context, d importantdate.ImportantDate) (importantdate.ImportantDate, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[d.ID]; !ok {
		return importantdate.ImportantDate{}, importantdate.ErrNotFound
	}
	repo.db.rows[d.ID] = &d
	return d, nil
}

func (repo *importantDateRepository) DeleteImportantDate(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[id]; !ok {
		return importantdate.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}
