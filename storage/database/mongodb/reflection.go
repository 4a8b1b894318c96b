package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/reflection"
)

type reflectionRepository struct {
	store store[reflection.Reflection]
}

var _ reflection.Repository = (*reflectionRepository)(nil)

func NewReflectionRepository(d *DB) *reflectionRepository {
	return &reflectionRepository{store: newStore[reflection.Reflection](d, reflectionsCollection, reflection.ErrNotFound)}
}

func (repo *reflectionRepository) CreateReflection(ctx context.Context, r reflection.Reflection) (reflection.Reflection, error) {
	if err := repo.store.insert(ctx, r); err != nil {
		return reflection.Reflection{}, err
	}
	return r, nil
}

func (repo *reflectionRepository) QueryReflections(ctx context.Context, filter *reflection.QueryFilter, ordering []core.DBOrdering) ([]reflection.Reflection, error) {
	q := bson.M{}
	if len(filter.UserIDs) > 0 {
		q["user_id"] = in(filter.UserIDs)
	}
	if filter.Type != "" {
		q["type"] = filter.Type
	}
	return repo.store.find(ctx, q, orDefault(ordering, core.DBOrdering{Field: "created_at"}))
}

func (repo *reflectionRepository) GetReflectionByID(ctx context.Context, id string) (reflection.Reflection, error) {
	return repo.store.get(ctx, id)
}

func (repo *reflectionRepository) DeleteReflection(ctx context.Context, id string) error {
	return repo.store.delete(ctx, id)
}
