package inmemdb

import (
	"context"
	"strings"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/user"
)

type userRow = user.User

var userFields = map[string]comparator[userRow]{
	"name":       func(a, b *userRow) int { return cmpString(a.Name, b.Name) },
	"email":      func(a, b *userRow) int { return cmpString(a.Email, b.Email) },
	"role":       func(a, b *userRow) int { return cmpString(a.Role, b.Role) },
	"created_at": func(a, b *userRow) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
	"last_login": func(a, b *userRow) int { return cmpTime(a.LastLogin, b.LastLogin) },
}

type userRepository struct {
	db *table[userRow]
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.users}
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, u := range repo.db.rows {
		if u.Email == usr.Email {
			return user.User{}, core.NewValidationError(nil, core.FieldError{Field: "email", Error: "email already exists"})
		}
	}
	repo.db.rows[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	search := strings.ToLower(filter.Search)
	users := repo.db.filter(func(u *user.User) bool {
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) && !strings.Contains(strings.ToLower(u.Email), search) {
			return false
		}
		if len(filter.Roles) > 0 && !inSlice(filter.Roles, u.Role) {
			return false
		}
		if filter.AdvisorID != "" && u.AdvisorID != filter.AdvisorID {
			return false
		}
		if len(filter.IDs) > 0 && !inSlice(filter.IDs, u.ID) {
			return false
		}
		return true
	})
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	sortRows(users, ordering, userFields, func(a, b *userRow) int { return cmpString(a.ID, b.ID) })
	return users, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.rows[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.rows {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.rows[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.rows, id)
	}
	return nil
}
