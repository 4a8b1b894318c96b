package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/advisortodo"
)

type advisorTodoRepository struct {
	store store[advisortodo.Todo]
}

var _ advisortodo.Repository = (*advisorTodoRepository)(nil)

func NewAdvisorTodoRepository(d *DB) *advisorTodoRepository {
	return &advisorTodoRepository{store: newStore[advisortodo.Todo](d, advisorTodosCollection, advisortodo.ErrNotFound)}
}

func (repo *advisorTodoRepository) CreateTodo(ctx context.Context, td advisortodo.Todo) (advisortodo.Todo, error) {
	if err := repo.store.insert(ctx, td); err != nil {
		return advisortodo.Todo{}, err
	}
	return td, nil
}

func (repo *advisorTodoRepository) QueryTodos(ctx context.Context, filter *advisortodo.QueryFilter, ordering []core.DBOrdering) ([]advisortodo.Todo, error) {
	q := bson.M{}
	if filter.AdvisorID != "" {
		q["advisor_id"] = filter.AdvisorID
	}
	if filter.StudentID != "" {
		q["student_id"] = filter.StudentID
	}
	if filter.Completed != nil {
		q["completed"] = *filter.Completed
	}
	return repo.store.find(ctx, q, ordering)
}

func (repo *advisorTodoRepository) GetTodoByID(ctx context.Context, id string) (advisortodo.Todo, error) {
	return repo.store.get(ctx, id)
}

func (repo *advisorTodoRepository) UpdateTodo(ctx context.Context, td advisortodo.Todo) (advisortodo.Todo, error) {
	if err := repo.store.replace(ctx, td.ID, td); err != nil {
		return advisortodo.Todo{}, err
	}
	return td, nil
}

func (repo *advisorTodoRepository) DeleteTodo(ctx context.Context, id string) error {
	return repo.store.delete(ctx, id)
}
