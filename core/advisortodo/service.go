package advisortodo

import (
	"context"

	"github.com/google/uuid"

	"github.com/istudy/dashboard/core"
)

var ErrNotFound = core.NewNotFoundError("advisor todo")

type (
	Repository interface {
		CreateTodo(ctx context.Context, td Todo) (Todo, error)
		QueryTodos(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Todo, error)
		GetTodoByID(ctx context.Context, id string) (Todo, error)
		UpdateTodo(ctx context.Context, td Todo) (Todo, error)
		DeleteTodo(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, advisorID string, nt NewTodo) (Todo, error) {
	now := core.NowFunc().UTC()
	return svc.repo.CreateTodo(ctx, Todo{
		ID:        uuid.NewString(),
		AdvisorID: advisorID,
		Text:      nt.Text,
		DueDate:   nt.DueDate,
		StudentID: nt.StudentID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Todo, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	ordering = core.AllowedOrderings(ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "completed", Ascending: true}, {Field: "due_date", Ascending: true}}
	}
	return svc.repo.QueryTodos(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Todo, error) {
	return svc.repo.GetTodoByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ut UpdateTodo) (Todo, error) {
	td, err := svc.repo.GetTodoByID(ctx, id)
	if err != nil {
		return Todo{}, err
	}
	if ut.Text != nil {
		td.Text = core.CleanString(*ut.Text)
	}
	if ut.DueDate != nil {
		td.DueDate = *ut.DueDate
	}
	if ut.Completed != nil {
		td.Completed = *ut.Completed
	}
	if ut.StudentID != nil {
		td.StudentID = core.CleanString(*ut.StudentID)
	}
	td.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateTodo(ctx, td)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteTodo(ctx, id)
}
