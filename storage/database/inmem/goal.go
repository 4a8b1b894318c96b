package inmemdb

import (
	"context"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/goal"
)

type goalRow = goal.Goal

var goalFields = map[string]comparator[goalRow]{
	"title":       func(a, b *goalRow) int { return cmpString(a.Title, b.Title) },
	"target_date": func(a, b *goalRow) int { return cmpTime(a.TargetDate, b.TargetDate) },
	"status":      func(a, b *goalRow) int { return cmpString(a.Status, b.Status) },
	"created_at":  func(a, b *goalRow) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
	"updated_at":  func(a, b *goalRow) int { return cmpTime(a.UpdatedAt, b.UpdatedAt) },
}

type goalRepository struct {
	db *table[goalRow]
}

var _ goal.Repository = (*goalRepository)(nil)

func NewGoalRepository(db *DB) *goalRepository {
	return &goalRepository{db: db.goals}
}

func (repo *goalRepository) CreateGoal(_ context.Context, g goal.Goal) (goal.Goal, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.rows[g.ID] = &g
	return g, nil
}

func (repo *goalRepository) QueryGoals(_ context.Context, filter *goal.QueryFilter, ordering []core.DBOrdering) ([]goal.Goal, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	goals := repo.db.filter(func(g *goal.Goal) bool {
		return (len(filter.UserIDs) == 0 || inSlice(filter.UserIDs, g.UserID)) &&
			(len(filter.Statuses) == 0 || inSlice(filter.Statuses, g.Status)) &&
			(filter.Category == "" || g.Category == filter.Category)
	})
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	sortRows(goals, ordering, goalFields, func(a, b *goalRow) int { return cmpString(a.ID, b.ID) })
	return goals, nil
}

func (repo *goalRepository) GetGoalByID(_ context.Context, id string) (goal.Goal, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if g, ok := repo.db.rows[id]; ok {
		return *g, nil
	}
	return goal.Goal{}, goal.ErrNotFound
}

func (repo *goalRepository) UpdateGoal(_ context.Context, g goal.Goal) (goal.Goal, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[g.ID]; !ok {
		return goal.Goal{}, goal.ErrNotFound
	}
	repo.db.rows[g.ID] = &g
	return g, nil
}

func (repo *goalRepository) DeleteGoal(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[id]; !ok {
		return goal.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}
