package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/goal"
)

type goalRepository struct {
	store store[goal.Goal]
}

var _ goal.Repository = (*goalRepository)(nil)

func NewGoalRepository(d *DB) *goalRepository {
	return &goalRepository{store: newStore[goal.Goal](d, goalsCollection, goal.ErrNotFound)}
}

func (repo *goalRepository) CreateGoal(ctx context.Context, g goal.Goal) (goal.Goal, error) {
	if err := repo.store.insert(ctx, g); err != nil {
		return goal.Goal{}, err
	}
	return g, nil
}

func (repo *goalRepository) QueryGoals(ctx context.Context, filter *goal.QueryFilter, ordering []core.DBOrdering) ([]goal.Goal, error) {
	q := bson.M{}
	if len(filter.UserIDs) > 0 {
		q["user_id"] = in(filter.UserIDs)
	}
	if len(filter.Statuses) > 0 {
		q["status"] = in(filter.Statuses)
	}
	if filter.Category != "" {
		q["category"] = filter.Category
	}
	return repo.store.find(ctx, q, orDefault(ordering, core.DBOrdering{Field: "created_at"}))
}

func (repo *goalRepository) GetGoalByID(ctx context.Context, id string) (goal.Goal, error) {
	return repo.store.get(ctx, id)
}

func (repo *goalRepository) UpdateGoal(ctx context.Context, g goal.Goal) (goal.Goal, error) {
	if err := repo.store.replace(ctx, g.ID, g); err != nil {
		return goal.Goal{}, err
	}
	return g, nil
}

func (repo *goalRepository) DeleteGoal(ctx context.Context, id string) error {
	return repo.store.delete(ctx, id)
}
