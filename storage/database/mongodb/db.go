// Package mongodb implements the repositories on top of a MongoDB database, one collection per resource.
package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/services/metrics"
)

// Collection names.
const (
	usersCollection          = "users"
	goalsCollection          = "goals"
	actionItemsCollection    = "actionItems"
	meetingsCollection       = "meetings"
	reflectionsCollection    = "reflections"
	importantDatesCollection = "importantDates"
	groupsCollection         = "projectGroups"
	advisorTodosCollection   = "advisorTodos"
	notesCollection          = "notes"
	calendlyEventsCollection = "calendlyEvents"
)

// Connect opens a client on conf.Database.URI and waits for the server to answer.
func Connect(ctx context.Context, conf *core.Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(conf.Database.URI).
		SetConnectTimeout(conf.Database.ConnectTimeout).
		SetAppName(conf.AppName)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	if err = ping(ctx, client, conf.Database.ConnectTimeout); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, client *mongo.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var err error
	for attempts := 1; ; attempts++ {
		if err = client.Ping(ctx, nil); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(err, "mongodb ping timeout")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
}

type DB struct {
	db *mongo.Database
}

func Open(client *mongo.Client, name string) *DB {
	return &DB{db: client.Database(name)}
}

// Drop removes the whole database. Used by tests.
func (d *DB) Drop(ctx context.Context) error {
	return d.db.Drop(ctx)
}

// EnsureIndexes creates the indexes backing the repository queries.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("user_email").SetUnique(true)},
			{Keys: bson.D{{Key: "advisor_id", Value: 1}, {Key: "role", Value: 1}}, Options: options.Index().SetName("user_advisor_role")},
		},
		goalsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "target_date", Value: 1}}, Options: options.Index().SetName("goal_user_target")},
		},
		actionItemsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("action_item_user_date")},
			{Keys: bson.D{{Key: "group_id", Value: 1}}, Options: options.Index().SetName("action_item_group")},
		},
		meetingsCollection: {
			{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "scheduled_date", Value: -1}}, Options: options.Index().SetName("meeting_student_date")},
			{Keys: bson.D{{Key: "advisor_id", Value: 1}, {Key: "scheduled_date", Value: -1}}, Options: options.Index().SetName("meeting_advisor_date")},
			{Keys: bson.D{{Key: "calendly_event_uri", Value: 1}}, Options: options.Index().SetName("meeting_calendly_event").SetSparse(true)},
		},
		reflectionsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("reflection_user_date")},
		},
		importantDatesCollection: {
			{Keys: bson.D{{Key: "date", Value: 1}}, Options: options.Index().SetName("important_date_date")},
		},
		groupsCollection: {
			{Keys: bson.D{{Key: "advisor_id", Value: 1}}, Options: options.Index().SetName("group_advisor")},
			{Keys: bson.D{{Key: "member_ids", Value: 1}}, Options: options.Index().SetName("group_members")},
		},
		advisorTodosCollection: {
			{Keys: bson.D{{Key: "advisor_id", Value: 1}, {Key: "due_date", Value: 1}}, Options: options.Index().SetName("todo_advisor_due")},
		},
		notesCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "pinned", Value: -1}, {Key: "updated_at", Value: -1}}, Options: options.Index().SetName("note_user_pinned")},
		},
		calendlyEventsCollection: {
			{Keys: bson.D{{Key: "received_at", Value: -1}}, Options: options.Index().SetName("calendly_event_received")},
		},
	}
	for coll, models := range indexes {
		if _, err := d.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", coll)
		}
	}
	return nil
}

// sortCollation orders strings case-insensitively, like the in-memory engine.
var sortCollation = &options.Collation{Locale: "en", Strength: 2}

// store holds the generic document operations shared by the repositories.
type store[T any] struct {
	coll     *mongo.Collection
	notFound error
}

func newStore[T any](d *DB, name string, notFound error) store[T] {
	return store[T]{coll: d.db.Collection(name), notFound: notFound}
}

func (s store[T]) insert(ctx context.Context, docs ...T) error {
	timer := metrics.TrackDBOperation("insert", s.coll.Name())
	defer timer.ObserveDuration()

	if len(docs) == 1 {
		_, err := s.coll.InsertOne(ctx, docs[0])
		return errors.Wrapf(err, "inserting into %s", s.coll.Name())
	}
	items := make([]interface{}, len(docs))
	for i := range docs {
		items[i] = docs[i]
	}
	_, err := s.coll.InsertMany(ctx, items)
	return errors.Wrapf(err, "inserting into %s", s.coll.Name())
}

func (s store[T]) find(ctx context.Context, filter bson.M, ordering []core.DBOrdering) ([]T, error) {
	timer := metrics.TrackDBOperation("find", s.coll.Name())
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(sortDoc(ordering)).SetCollation(sortCollation)
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s", s.coll.Name())
	}
	defer func() { _ = cursor.Close(ctx) }()

	docs := make([]T, 0)
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", s.coll.Name())
	}
	return docs, nil
}

func (s store[T]) findOne(ctx context.Context, filter bson.M) (T, error) {
	timer := metrics.TrackDBOperation("find_one", s.coll.Name())
	defer timer.ObserveDuration()

	var doc T
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return doc, s.notFound
		}
		return doc, errors.Wrapf(err, "fetching from %s", s.coll.Name())
	}
	return doc, nil
}

func (s store[T]) get(ctx context.Context, id string) (T, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s store[T]) replace(ctx context.Context, id string, doc T) error {
	timer := metrics.TrackDBOperation("replace", s.coll.Name())
	defer timer.ObserveDuration()

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return errors.Wrapf(err, "updating %s", s.coll.Name())
	}
	if res.MatchedCount == 0 {
		return s.notFound
	}
	return nil
}

func (s store[T]) delete(ctx context.Context, id string) error {
	timer := metrics.TrackDBOperation("delete", s.coll.Name())
	defer timer.ObserveDuration()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrapf(err, "deleting from %s", s.coll.Name())
	}
	if res.DeletedCount == 0 {
		return s.notFound
	}
	return nil
}

// sortDoc turns orderings into a sort document. _id always breaks ties.
func sortDoc(ordering []core.DBOrdering) bson.D {
	sort := make(bson.D, 0, len(ordering)+1)
	for _, ord := range ordering {
		dir := -1
		if ord.Ascending {
			dir = 1
		}
		sort = append(sort, bson.E{Key: ord.Field, Value: dir})
	}
	return append(sort, bson.E{Key: "_id", Value: 1})
}

// orDefault returns ordering, or def when it is empty.
func orDefault(ordering []core.DBOrdering, def ...core.DBOrdering) []core.DBOrdering {
	if len(ordering) == 0 {
		return def
	}
	return ordering
}

func in(ids []string) bson.M {
	return bson.M{"$in": ids}
}
