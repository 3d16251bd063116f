// Package revocation is the durable record of token ids that must no longer be honored.
package revocation

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"college/internal/apperr"
	"college/internal/metrics"
)

const cachePrefix = "revoked:"

// Ledger stores revoked jtis in Postgres. An optional Redis client caches
// positive entries so hot revoked tokens skip the database; a cache miss always
// falls through to Postgres, which stays the source of truth.
type Ledger struct {
	db    *sql.DB
	cache *redis.Client
}

// NewLedger creates a ledger. cache may be nil.
func NewLedger(db *sql.DB, cache *redis.Client) *Ledger {
	return &Ledger{db: db, cache: cache}
}

// Revoke records jti as revoked. Re-revoking an id is a no-op. A zero expiresAt
// is stored as NULL and the entry is then never pruned.
func (l *Ledger) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := l.Consume(ctx, jti, expiresAt)
	return err
}

// Consume revokes jti and reports whether this call was the one that revoked
// it. Refresh rotation uses it so that of two concurrent requests presenting
// the same refresh token only one is granted a new pair.
func (l *Ledger) Consume(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	var exp any
	if !expiresAt.IsZero() {
		exp = expiresAt.UTC()
	}
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO token_blocklist (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, exp)
	if err != nil {
		log.WithError(err).WithField("jti", jti).Error("revoke token failed")
		return false, apperr.Storage("Failed to revoke token", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Storage("Failed to revoke token", err)
	}

	if l.cache != nil {
		var ttl time.Duration
		if !expiresAt.IsZero() {
			ttl = time.Until(expiresAt)
		}
		if ttl >= 0 {
			if err := l.cache.Set(ctx, cachePrefix+jti, "1", ttl).Err(); err != nil {
				log.WithError(err).WithField("jti", jti).Warn("revocation cache write failed")
			}
		}
	}
	return n == 1, nil
}

// IsRevoked reports whether any of ids is revoked. It fails closed: if the
// ledger cannot be read the ids are treated as revoked.
func (l *Ledger) IsRevoked(ctx context.Context, ids ...string) bool {
	ids = nonEmpty(ids)
	if len(ids) == 0 {
		return false
	}

	if l.cache != nil {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = cachePrefix + id
		}
		n, err := l.cache.Exists(ctx, keys...).Result()
		if err != nil {
			log.WithError(err).Debug("revocation cache read failed")
		} else if n > 0 {
			metrics.RevocationChecks.WithLabelValues("cache_hit").Inc()
			return true
		}
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}
	var revoked bool
	err := l.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM token_blocklist WHERE jti IN (`+strings.Join(placeholders, ", ")+`))`,
		args...,
	).Scan(&revoked)
	if err != nil {
		metrics.RevocationChecks.WithLabelValues("error").Inc()
		log.WithError(err).Error("revocation check failed, treating token as revoked")
		return true
	}
	if revoked {
		metrics.RevocationChecks.WithLabelValues("revoked").Inc()
	} else {
		metrics.RevocationChecks.WithLabelValues("clear").Inc()
	}
	return revoked
}

// Prune deletes entries whose tokens expired before the cutoff. Those tokens
// already fail expiry checks, so dropping them cannot resurrect a session.
func (l *Ledger) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := l.db.ExecContext(ctx, `
		DELETE FROM token_blocklist
		WHERE expires_at IS NOT NULL AND expires_at < $1
	`, before.UTC())
	if err != nil {
		return 0, apperr.Storage("Failed to prune revocation ledger", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	metrics.LedgerPruned.Add(float64(n))
	return n, nil
}

func nonEmpty(ids []string) []string {
	out := ids[:0:0]
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
