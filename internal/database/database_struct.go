package database

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"gorm.io/gorm"
)

const defaultTimeout = 3 * time.Second

type Database struct {
	db      *gorm.DB
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

func NewDatabase(db *gorm.DB, timeout time.Duration) *Database {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Database{db: db, timeout: timeout, breaker: newBreaker()}
}

// run executes fn with a bounded deadline behind the circuit breaker and
// returns a wrapped repository error.
func (d *Database) run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	_, err := d.breaker.Execute(func() (interface{}, error) {
		return nil, fn(d.db.WithContext(ctx))
	})
	return WrapDBError(err)
}
