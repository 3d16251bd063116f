package board

import (
	"context"
	"database/sql"
	"time"

	log "github.com/sirupsen/logrus"

	"college/internal/apperr"
	"college/internal/store"
)

// Repository persists board posts in Postgres.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// ListNotices returns notices, newest first.
func (r *Repository) ListNotices(ctx context.Context) ([]Notice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT notice_id, title, content, created_at, posted_by
		FROM notices ORDER BY notice_id DESC
	`)
	if err != nil {
		return nil, storageErr("Failed to list notices", err)
	}
	out, err := store.CollectRows(rows, func(row store.Scanner) (Notice, error) {
		var n Notice
		err := row.Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt, &n.PostedBy)
		return n, err
	})
	if err != nil {
		return nil, storageErr("Failed to list notices", err)
	}
	return out, nil
}

// AddNotice inserts n and returns its id. A zero CreatedAt means now.
func (r *Repository) AddNotice(ctx context.Context, n Notice) (int64, error) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.now().UTC()
	}
	return r.insert(ctx, "Failed to add notice", `
		INSERT INTO notices (title, content, posted_by, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING notice_id
	`, n.Title, n.Content, n.PostedBy, n.CreatedAt)
}

// UpdateNotice applies a partial update and returns the affected row count.
func (r *Repository) UpdateNotice(ctx context.Context, id int64, p NoticePatch) (int64, error) {
	return r.exec(ctx, "Failed to update notice", `
		UPDATE notices
		SET title = COALESCE($1, title),
			content = COALESCE($2, content),
			posted_by = COALESCE($3, posted_by),
			created_at = COALESCE($4, created_at)
		WHERE notice_id = $5
	`, p.Title, p.Content, p.PostedBy, p.CreatedAt, id)
}

// DeleteNotice removes a notice.
func (r *Repository) DeleteNotice(ctx context.Context, id int64) (int64, error) {
	return r.exec(ctx, "Failed to delete notice", `DELETE FROM notices WHERE notice_id = $1`, id)
}

// ListEvents returns events, newest first.
func (r *Repository) ListEvents(ctx context.Context) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT event_id, title, content, last_date, posted_by, created_at
		FROM events ORDER BY event_id DESC
	`)
	if err != nil {
		return nil, storageErr("Failed to list events", err)
	}
	out, err := store.CollectRows(rows, func(row store.Scanner) (Event, error) {
		var e Event
		err := row.Scan(&e.ID, &e.Title, &e.Content, &e.LastDate, &e.PostedBy, &e.CreatedAt)
		return e, err
	})
	if err != nil {
		return nil, storageErr("Failed to list events", err)
	}
	return out, nil
}

// AddEvent inserts e and returns its id. A zero LastDate means now.
func (r *Repository) AddEvent(ctx context.Context, e Event) (int64, error) {
	if e.LastDate.IsZero() {
		e.LastDate = r.now().UTC()
	}
	return r.insert(ctx, "Failed to add event", `
		INSERT INTO events (title, content, last_date, posted_by)
		VALUES ($1, $2, $3, $4)
		RETURNING event_id
	`, e.Title, e.Content, e.LastDate, e.PostedBy)
}

// UpdateEvent applies a partial update and returns the affected row count.
func (r *Repository) UpdateEvent(ctx context.Context, id int64, p EventPatch) (int64, error) {
	return r.exec(ctx, "Failed to update event", `
		UPDATE events
		SET title = COALESCE($1, title),
			content = COALESCE($2, content),
			last_date = COALESCE($3, last_date),
			posted_by = COALESCE($4, posted_by)
		WHERE event_id = $5
	`, p.Title, p.Content, p.LastDate, p.PostedBy, id)
}

// DeleteEvent removes an event.
func (r *Repository) DeleteEvent(ctx context.Context, id int64) (int64, error) {
	return r.exec(ctx, "Failed to delete event", `DELETE FROM events WHERE event_id = $1`, id)
}

// ListJobs returns job postings, newest first.
func (r *Repository) ListJobs(ctx context.Context) ([]Job, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT job_id, title, description, company, apply_link, posted_by, created_at
		FROM job_updates ORDER BY job_id DESC
	`)
	if err != nil {
		return nil, storageErr("Failed to list jobs", err)
	}
	out, err := store.CollectRows(rows, func(row store.Scanner) (Job, error) {
		var j Job
		err := row.Scan(&j.ID, &j.Title, &j.Description, &j.Company, &j.ApplyLink, &j.PostedBy, &j.CreatedAt)
		return j, err
	})
	if err != nil {
		return nil, storageErr("Failed to list jobs", err)
	}
	return out, nil
}

// AddJob inserts j and returns its id.
func (r *Repository) AddJob(ctx context.Context, j Job) (int64, error) {
	return r.insert(ctx, "Failed to add job", `
		INSERT INTO job_updates (title, description, company, apply_link, posted_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING job_id
	`, j.Title, j.Description, j.Company, j.ApplyLink, j.PostedBy)
}

// UpdateJob applies a partial update and returns the affected row count.
func (r *Repository) UpdateJob(ctx context.Context, id int64, p JobPatch) (int64, error) {
	return r.exec(ctx, "Failed to update job", `
		UPDATE job_updates
		SET title = COALESCE($1, title),
			description = COALESCE($2, description),
			company = COALESCE($3, company),
			apply_link = COALESCE($4, apply_link),
			posted_by = COALESCE($5, posted_by)
		WHERE job_id = $6
	`, p.Title, p.Description, p.Company, p.ApplyLink, p.PostedBy, id)
}

// DeleteJob removes a job posting.
func (r *Repository) DeleteJob(ctx context.Context, id int64) (int64, error) {
	return r.exec(ctx, "Failed to delete job", `DELETE FROM job_updates WHERE job_id = $1`, id)
}

func (r *Repository) insert(ctx context.Context, msg, query string, args ...any) (int64, error) {
	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, storageErr(msg, err)
	}
	return id, nil
}

func (r *Repository) exec(ctx context.Context, msg, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storageErr(msg, err)
	}
	return res.RowsAffected()
}

func storageErr(msg string, err error) error {
	log.WithError(err).Error(msg)
	return apperr.Storage(msg, err)
}
