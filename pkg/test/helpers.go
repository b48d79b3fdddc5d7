package test

import (
	"log"
	"sync"
	"time"

	"todoitems/internal/adapter/database/sqlite"
	"todoitems/internal/core/util"
)

// InitTestDB opens a migrated in-memory database. A single connection is
// used because every new connection to :memory: would see an empty schema.
func InitTestDB() *sqlite.DB {
	db, err := sqlite.NewDB(sqlite.Options{
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})

	if err != nil {
		log.Fatal(err)
	}

	return db
}

// NewClock returns a clock starting at start that advances by step on
// every reading.
func NewClock(start time.Time, step time.Duration) util.Clock {
	var mu sync.Mutex
	next := util.Normalize(start)

	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()

		now := next
		next = next.Add(step)

		return now
	}
}

// FixedClock always returns the same instant.
func FixedClock(at time.Time) util.Clock {
	at = util.Normalize(at)

	return func() time.Time {
		return at
	}
}
