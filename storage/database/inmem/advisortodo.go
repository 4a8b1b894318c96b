package inmemdb

import (
	"context"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/advisortodo"
)

type advisorTodoRow = advisortodo.Todo

var advisorTodoFields = map[string]comparator[advisorTodoRow]{
	"due_date":   func(a, b *advisorTodoRow) int { return cmpTime(a.DueDate, b.DueDate) },
	"completed":  func(a, b *advisorTodoRow) int { return cmpBool(a.Completed, b.Completed) },
	"created_at": func(a, b *advisorTodoRow) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
}

type advisorTodoRepository struct {
	db *table[advisorTodoRow]
}

var _ advisortodo.Repository = (*advisorTodoRepository)(nil)

func NewAdvisorTodoRepository(db *DB) *advisorTodoRepository {
	return &advisorTodoRepository{db: db.advisorTodos}
}

func (repo *advisorTodoRepository) CreateTodo(_ context.Context, td advisortodo.Todo) (advisortodo.Todo, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.rows[td.ID] = &td
	return td, nil
}

func (repo *advisorTodoRepository) QueryTodos(_ context.Context, filter *advisortodo.QueryFilter, ordering []core.DBOrdering) ([]advisortodo.Todo, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	todos := repo.db.filter(func(td *advisortodo.Todo) bool {
		return (filter.AdvisorID == "" || td.AdvisorID == filter.AdvisorID) &&
			(filter.StudentID == "" || td.StudentID == filter.StudentID) &&
			(filter.Completed == nil || td.Completed == *filter.Completed)
	})
	sortRows(todos, ordering, advisorTodoFields, func(a, b *advisorTodoRow) int { return cmpString(a.ID, b.ID) })
	return todos, nil
}

func (repo *advisorTodoRepository) GetTodoByID(_ context.Context, id string) (advisortodo.Todo, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if td, ok := repo.db.rows[id]; ok {
		return *td, nil
	}
	return advisortodo.Todo{}, advisortodo.ErrNotFound
}

func (repo *advisorTodoRepository) UpdateTodo(_ context.Context, td advisortodo.Todo) (advisortodo.Todo, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[td.ID]; !ok {
		return advisortodo.Todo{}, advisortodo.ErrNotFound
	}
	repo.db.rows[td.ID] = &td
	return td, nil
}

func (repo *advisorTodoRepository) DeleteTodo(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[id]; !ok {
		return advisortodo.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}
