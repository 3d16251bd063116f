// Package board stores the notice board: notices, events and job postings.
package board

import "time"

// Notice is a general announcement.
type Notice struct {
	ID        int64     `json:"notice_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	PostedBy  string    `json:"posted_by"`
}

// NoticePatch is a partial notice update.
type NoticePatch struct {
	Title     *string
	Content   *string
	PostedBy  *string
	CreatedAt *time.Time
}

// Event is an announcement with a closing date.
type Event struct {
	ID        int64     `json:"event_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	LastDate  time.Time `json:"last_date"`
	PostedBy  string    `json:"posted_by"`
	CreatedAt time.Time `json:"created_at"`
}

// EventPatch is a partial event update.
type EventPatch struct {
	Title    *string
	Content  *string
	LastDate *time.Time
	PostedBy *string
}

// Job is a placement posting.
type Job struct {
	ID          int64     `json:"job_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Company     string    `json:"company"`
	ApplyLink   string    `json:"apply_link"`
	PostedBy    string    `json:"posted_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// JobPatch is a partial job update.
type JobPatch struct {
	Title       *string
	Description *string
	Company     *string
	ApplyLink   *string
	PostedBy    *string
}
