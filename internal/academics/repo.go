package academics

import (
	"context"
	"database/sql"

	log "github.com/sirupsen/logrus"

	"college/internal/apperr"
	"college/internal/store"
)

// Repository persists academic data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListPrograms returns every program, newest first.
func (r *Repository) ListPrograms(ctx context.Context) ([]Program, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT program_id, code, name, duration, level, description
		FROM programs ORDER BY program_id DESC
	`)
	if err != nil {
		return nil, storageErr("Failed to list programs", err)
	}
	out, err := store.CollectRows(rows, scanProgram)
	if err != nil {
		return nil, storageErr("Failed to list programs", err)
	}
	return out, nil
}

// AddProgram inserts p and returns its id.
func (r *Repository) AddProgram(ctx context.Context, p Program) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO programs (code, name, duration, level, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING program_id
	`, p.Code, p.Name, p.Duration, p.Level, p.Description).Scan(&id)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return 0, apperr.BadRequest("Program code already exists")
		}
		return 0, storageErr("Failed to add program", err)
	}
	return id, nil
}

// DeleteProgram removes a program and, by cascade, its subjects.
func (r *Repository) DeleteProgram(ctx context.Context, id int64) (int64, error) {
	return r.exec(ctx, "Failed to delete program", `DELETE FROM programs WHERE program_id = $1`, id)
}

// ListSubjects returns every subject, newest first.
func (r *Repository) ListSubjects(ctx context.Context) ([]Subject, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT subject_id, program_id, code, name, semester
		FROM subjects ORDER BY subject_id DESC
	`)
	if err != nil {
		return nil, storageErr("Failed to list subjects", err)
	}
	out, err := store.CollectRows(rows, scanSubject)
	if err != nil {
		return nil, storageErr("Failed to list subjects", err)
	}
	return out, nil
}

// SubjectsByProgram returns a program's subjects ordered by semester.
func (r *Repository) SubjectsByProgram(ctx context.Context, programID int64) ([]Subject, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT subject_id, program_id, code, name, semester
		FROM subjects WHERE program_id = $1
		ORDER BY semester, subject_id
	`, programID)
	if err != nil {
		return nil, storageErr("Failed to list subjects", err)
	}
	out, err := store.CollectRows(rows, scanSubject)
	if err != nil {
		return nil, storageErr("Failed to list subjects", err)
	}
	return out, nil
}

// AddSubject inserts s and returns its id.
func (r *Repository) AddSubject(ctx context.Context, s Subject) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO subjects (program_id, code, name, semester)
		VALUES ($1, $2, $3, $4)
		RETURNING subject_id
	`, s.ProgramID, s.Code, s.Name, s.Semester).Scan(&id)
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			return 0, apperr.BadRequest("Program does not exist")
		}
		return 0, storageErr("Failed to add subject", err)
	}
	return id, nil
}

// DeleteSubject removes a subject.
func (r *Repository) DeleteSubject(ctx context.Context, id int64) (int64, error) {
	return r.exec(ctx, "Failed to delete subject", `DELETE FROM subjects WHERE subject_id = $1`, id)
}

// AssignTeacher links a teacher to a subject and returns the mapping id.
func (r *Repository) AssignTeacher(ctx context.Context, teacherID, subjectID int64) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO subject_teachers (teacher_id, subject_id)
		VALUES ($1, $2)
		RETURNING id
	`, teacherID, subjectID).Scan(&id)
	switch {
	case err == nil:
		return id, nil
	case store.IsUniqueViolation(err):
		return 0, apperr.BadRequest("Teacher already assigned to subject")
	case store.IsForeignKeyViolation(err):
		return 0, apperr.BadRequest("Teacher or subject does not exist")
	default:
		return 0, storageErr("Failed to assign teacher", err)
	}
}

// ListSchedules returns every slot, latest start first.
func (r *Repository) ListSchedules(ctx context.Context) ([]Schedule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT schedule_id, subject_id, teacher_id, title, location, start_time, end_time
		FROM schedules ORDER BY start_time DESC
	`)
	if err != nil {
		return nil, storageErr("Failed to list schedules", err)
	}
	out, err := store.CollectRows(rows, scanSchedule)
	if err != nil {
		return nil, storageErr("Failed to list schedules", err)
	}
	return out, nil
}

// AddSchedule inserts s and returns its id.
func (r *Repository) AddSchedule(ctx context.Context, s Schedule) (int64, error) {
	if !s.EndTime.After(s.StartTime) {
		return 0, apperr.BadRequest("end_time must be after start_time")
	}
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO schedules (subject_id, teacher_id, title, location, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING schedule_id
	`, s.SubjectID, s.TeacherID, s.Title, s.Location, s.StartTime, s.EndTime).Scan(&id)
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			return 0, apperr.BadRequest("Subject or teacher does not exist")
		}
		return 0, storageErr("Failed to add schedule", err)
	}
	return id, nil
}

// UpdateSchedule applies a partial update and returns the affected row count.
func (r *Repository) UpdateSchedule(ctx context.Context, id int64, p SchedulePatch) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE schedules
		SET subject_id = COALESCE($1, subject_id),
			teacher_id = COALESCE($2, teacher_id),
			title = COALESCE($3, title),
			location = COALESCE($4, location),
			start_time = COALESCE($5, start_time),
			end_time = COALESCE($6, end_time)
		WHERE schedule_id = $7
	`, p.SubjectID, p.TeacherID, p.Title, p.Location, p.StartTime, p.EndTime, id)
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			return 0, apperr.BadRequest("Subject or teacher does not exist")
		}
		return 0, storageErr("Failed to update schedule", err)
	}
	return res.RowsAffected()
}

// DeleteSchedule removes a slot.
func (r *Repository) DeleteSchedule(ctx context.Context, id int64) (int64, error) {
	return r.exec(ctx, "Failed to delete schedule", `DELETE FROM schedules WHERE schedule_id = $1`, id)
}

func (r *Repository) exec(ctx context.Context, msg, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storageErr(msg, err)
	}
	return res.RowsAffected()
}

func scanProgram(row store.Scanner) (Program, error) {
	var p Program
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Duration, &p.Level, &p.Description)
	return p, err
}

func scanSubject(row store.Scanner) (Subject, error) {
	var s Subject
	err := row.Scan(&s.ID, &s.ProgramID, &s.Code, &s.Name, &s.Semester)
	return s, err
}

func scanSchedule(row store.Scanner) (Schedule, error) {
	var s Schedule
	err := row.Scan(&s.ID, &s.SubjectID, &s.TeacherID, &s.Title, &s.Location, &s.StartTime, &s.EndTime)
	return s, err
}

func storageErr(msg string, err error) error {
	log.WithError(err).Error(msg)
	return apperr.Storage(msg, err)
}
