package mongodb

import (
	"context"
	"regexp"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/user"
	"github.com/istudy/dashboard/services/metrics"
)

var errDuplicateEmail = core.NewValidationError(nil, core.FieldError{Field: "email", Error: "email already exists"})

type userRepository struct {
	store store[user.User]
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(d *DB) *userRepository {
	return &userRepository{store: newStore[user.User](d, usersCollection, user.ErrNotFound)}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if err := repo.store.insert(ctx, usr); err != nil {
		if mongo.IsDuplicateKeyError(errors.Cause(err)) {
			return user.User{}, errDuplicateEmail
		}
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	q := bson.M{}
	if filter.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		q["$or"] = bson.A{bson.M{"name": rx}, bson.M{"email": rx}}
	}
	if len(filter.Roles) > 0 {
		q["role"] = in(filter.Roles)
	}
	if filter.AdvisorID != "" {
		q["advisor_id"] = filter.AdvisorID
	}
	if len(filter.IDs) > 0 {
		q["_id"] = in(filter.IDs)
	}
	return repo.store.find(ctx, q, orDefault(ordering, core.DBOrdering{Field: "created_at"}))
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.store.get(ctx, id)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.store.findOne(ctx, bson.M{"email": email})
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	if err := repo.store.replace(ctx, usr.ID, usr); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	timer := metrics.TrackDBOperation("delete_many", usersCollection)
	defer timer.ObserveDuration()

	_, err := repo.store.coll.DeleteMany(ctx, bson.M{"_id": in(ids)})
	return errors.Wrap(err, "deleting users")
}
