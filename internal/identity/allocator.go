package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"college/internal/metrics"
	"college/internal/store"
)

// ErrAllocationFailed is returned when no login id could be reserved. Callers
// must not persist an identity after this error.
var ErrAllocationFailed = errors.New("login id allocation failed")

// Allocator issues role-prefixed login ids from the id_counter table.
type Allocator struct {
	db *sql.DB
}

// NewAllocator creates an allocator.
func NewAllocator(db *sql.DB) *Allocator {
	return &Allocator{db: db}
}

// Allocate reserves the next sequence number for role's prefix and returns the
// formatted login id. The counter row is locked with SELECT ... FOR UPDATE for
// the whole read-increment-write, so concurrent callers for the same prefix are
// serialized and never share a number.
func (a *Allocator) Allocate(ctx context.Context, role Role) (string, error) {
	prefix := role.Prefix()
	if prefix == "" {
		return "", fmt.Errorf("%w: role %s has no prefix", ErrAllocationFailed, role)
	}

	var next int64
	err := store.InTx(ctx, a.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO id_counter (prefix, last_no)
			VALUES ($1, 0)
			ON CONFLICT (prefix) DO NOTHING
		`, prefix); err != nil {
			return err
		}

		var current int64
		if err := tx.QueryRowContext(ctx, `
			SELECT last_no FROM id_counter WHERE prefix = $1 FOR UPDATE
		`, prefix).Scan(&current); err != nil {
			return err
		}

		next = current + 1
		_, err := tx.ExecContext(ctx, `UPDATE id_counter SET last_no = $1 WHERE prefix = $2`, next, prefix)
		return err
	})
	if err != nil {
		metrics.LoginIDsAllocated.WithLabelValues(role.String(), "error").Inc()
		log.WithError(err).WithField("prefix", prefix).Error("login id allocation failed")
		return "", fmt.Errorf("%w: %v", ErrAllocationFailed, err)
	}

	metrics.LoginIDsAllocated.WithLabelValues(role.String(), "ok").Inc()
	return FormatLoginID(prefix, next), nil
}

// FormatLoginID renders prefix followed by the sequence zero-padded to six digits.
func FormatLoginID(prefix string, seq int64) string {
	return fmt.Sprintf("%s%06d", prefix, seq)
}
