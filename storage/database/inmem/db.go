// Package inmemdb implements the repositories on top of mutex-guarded maps.
// It backs the test suite and local runs without a document database.
package inmemdb

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/istudy/dashboard/core"
)

type (
	DB struct {
		users          *table[userRow]
		goals          *table[goalRow]
		actionItems    *table[actionItemRow]
		meetings       *table[meetingRow]
		reflections    *table[reflectionRow]
		importantDates *table[importantDateRow]
		groups         *table[groupRow]
		advisorTodos   *table[advisorTodoRow]
		notes          *table[noteRow]
		calendlyEvents *table[calendlyEventRow]
	}

	table[T any] struct {
		rows  map[string]*T
		mutex sync.RWMutex
	}

	// comparator returns <0, 0 or >0 as a sorts before, with or after b.
	comparator[T any] func(a, b *T) int
)

func Open() *DB {
	return &DB{
		users:          newTable[userRow](),
		goals:          newTable[goalRow](),
		actionItems:    newTable[actionItemRow](),
		meetings:       newTable[meetingRow](),
		reflections:    newTable[reflectionRow](),
		importantDates: newTable[importantDateRow](),
		groups:         newTable[groupRow](),
		advisorTodos:   newTable[advisorTodoRow](),
		notes:          newTable[noteRow](),
		calendlyEvents: newTable[calendlyEventRow](),
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.users.reset()
	db.goals.reset()
	db.actionItems.reset()
	db.meetings.reset()
	db.reflections.reset()
	db.importantDates.reset()
	db.groups.reset()
	db.advisorTodos.reset()
	db.notes.reset()
	db.calendlyEvents.reset()
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func (t *table[T]) reset() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.rows = make(map[string]*T)
}

// filter returns copies of the rows matching keep. Callers hold the read lock.
func (t *table[T]) filter(keep func(*T) bool) []T {
	out := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		if keep == nil || keep(row) {
			out = append(out, *row)
		}
	}
	return out
}

// sortRows applies ordering using the comparators of the allowed fields.
// Unknown fields are skipped; fallback breaks ties so results are deterministic.
func sortRows[T any](rows []T, ordering []core.DBOrdering, fields map[string]comparator[T], fallback comparator[T]) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := &rows[i], &rows[j]
		for _, ord := range ordering {
			cmp, ok := fields[ord.Field]
			if !ok {
				continue
			}
			c := cmp(a, b)
			if !ord.Ascending {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return fallback != nil && fallback(a, b) < 0
	})
}

func cmpString(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func cmpTime(a, b time.Time) int {
	return a.Compare(b)
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func cmpInt(a, b int) int {
	return a - b
}

func inSlice(items []string, item string) bool {
	for _, i := range items {
		if i == item {
			return true
		}
	}
	return false
}
