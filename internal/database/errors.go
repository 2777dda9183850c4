package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sony/gobreaker"
	"github.com/thereayou/matcha/pkg/logger"
	"gorm.io/gorm"
)

// pgDataException is the SQLSTATE class of values postgres refuses to store,
// e.g. 22021 for a NUL byte in text.
const pgDataException = "22"

// ErrUnavailable covers timeouts, cancelled callers, dropped connections and
// an open breaker.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrInvalidData    = errors.New("invalid data")
	ErrUnavailable    = errors.New("storage unavailable")
	ErrDatabase       = errors.New("database error")
)

var dbErrorRules = map[error]error{
	gorm.ErrRecordNotFound:       ErrRecordNotFound,
	gorm.ErrDuplicatedKey:        ErrDuplicateKey,
	context.DeadlineExceeded:     ErrUnavailable,
	context.Canceled:             ErrUnavailable,
	driver.ErrBadConn:            ErrUnavailable,
	gobreaker.ErrOpenState:       ErrUnavailable,
	gobreaker.ErrTooManyRequests: ErrUnavailable,
}

func wrapError(err error, rules map[error]error, defaultErr error) error {
	if err == nil {
		return nil
	}
	for source, target := range rules {
		if errors.Is(err, source) {
			return fmt.Errorf("%w: %v", target, err)
		}
	}
	if isDataException(err) {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fmt.Errorf("%w: %v", defaultErr, err)
}

// WrapDBError maps a gorm/driver error onto the repository sentinels.
func WrapDBError(err error) error {
	return wrapError(err, dbErrorRules, ErrDatabase)
}

func isDataException(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && len(pgErr.Code) == 5 && pgErr.Code[:2] == pgDataException
}

// isExpected reports errors that say nothing about storage health: missing
// rows, conflicts, rejected values and callers that went away.
func isExpected(err error) bool {
	return err == nil ||
		errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, context.Canceled) ||
		isDataException(err)
}

func newBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "postgres",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: isExpected,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "storage circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
}
