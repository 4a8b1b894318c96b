package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/importantdate"
)

type importantDateRepository struct {
	store store[importantdate.ImportantDate]
}

var _ importantdate.Repository = (*importantDateRepository)(nil)

func NewImportantDateRepository(d *DB) *importantDateRepository {
	return &importantDateRepository{store: newStore[importantdate.ImportantDate](d, importantDatesCollection, importantdate.ErrNotFound)}
}

func (repo *importantDateRepository) CreateImportantDate(ctx context.Context, d importantdate.ImportantDate) (importantdate.ImportantDate, error) {
	if err := repo.store.insert(ctx, d); err != nil {
		return importantdate.ImportantDate{}, err
	}
	return d, nil
}

// QueryImportantDates mirrors importantdate.QueryFilter.Matches. Unset owner fields are absent from the documents.
func (repo *importantDateRepository) QueryImportantDates(ctx context.Context, filter *importantdate.QueryFilter, ordering []core.DBOrdering) ([]importantdate.ImportantDate, error) {
	q := bson.M{}
	if !filter.From.IsZero() || !filter.To.IsZero() {
		rng := bson.M{}
		if !filter.From.IsZero() {
			rng["$gte"] = filter.From
		}
		if !filter.To.IsZero() {
			rng["$lt"] = filter.To
		}
		q["date"] = rng
	}
	if !filter.All {
		var visible bson.A
		if filter.Global {
			visible = append(visible, bson.M{"advisor_id": nil, "student_id": nil})
		}
		if len(filter.StudentIDs) > 0 {
			visible = append(visible, bson.M{"student_id": in(filter.StudentIDs)})
		}
		if len(filter.AdvisorIDs) > 0 {
			visible = append(visible, bson.M{"student_id": nil, "advisor_id": in(filter.AdvisorIDs)})
		}
		if len(visible) == 0 {
			return []importantdate.ImportantDate{}, nil
		}
		q["$or"] = visible
	}
	return repo.store.find(ctx, q, orDefault(ordering, core.DBOrdering{Field: "date", Ascending: true}))
}

func (repo *importantDateRepository) GetImportantDateByID(ctx context.Context, id string) (importantdate.ImportantDate, error) {
	return repo.store.get(ctx, id)
}

func (repo *importantDateRepository) UpdateImportantDate(ctx context.Context, d importantdate.ImportantDate) (importantdate.ImportantDate, error) {
	if err := repo.store.replace(ctx, d.ID, d); err != nil {
		return importantdate.ImportantDate{}, err
	}
	return d, nil
}

func (repo *importantDateRepository) DeleteImportantDate(ctx context.Context, id string) error {
	return repo.store.delete(ctx, id)
}
