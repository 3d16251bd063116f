package identity

import (
	"context"
	"database/sql"
	"errors"

	log "github.com/sirupsen/logrus"

	"college/internal/apperr"
	"college/internal/store"
)

// Store persists admins, teachers and students in their role tables.
type Store struct {
	db        *sql.DB
	passwords Passwords
}

// NewStore creates a credential store. A nil Passwords means PlainPasswords.
func NewStore(db *sql.DB, passwords Passwords) *Store {
	if passwords == nil {
		passwords = PlainPasswords{}
	}
	return &Store{db: db, passwords: passwords}
}

// Lookup returns the identity for loginID including its stored password, or nil.
// Storage errors are logged and reported as nil, same as an absent identity.
func (s *Store) Lookup(ctx context.Context, loginID string) *Identity {
	var (
		ident Identity
		err   error
	)
	switch RoleFromLogin(loginID) {
	case RoleAdmin:
		ident, err = scanAdmin(s.db.QueryRowContext(ctx, `
			SELECT admin_id, login_id, name, email, password
			FROM admins WHERE login_id = $1 LIMIT 1
		`, loginID))
	case RoleTeacher:
		ident, err = scanTeacher(s.db.QueryRowContext(ctx, `
			SELECT teacher_id, login_id, name, email, password, subject
			FROM teachers WHERE login_id = $1 LIMIT 1
		`, loginID), true)
	case RoleStudent:
		ident, err = scanStudent(s.db.QueryRowContext(ctx, `
			SELECT student_id, login_id, name, email, password, roll_no, semester, program_id
			FROM students WHERE login_id = $1 LIMIT 1
		`, loginID), true)
	default:
		return nil
	}
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.WithError(err).WithField("login_id", loginID).Error("credential lookup failed")
		}
		return nil
	}
	return &ident
}

// Verify returns the identity only when it exists and password matches.
func (s *Store) Verify(ctx context.Context, loginID, password string) *Identity {
	ident := s.Lookup(ctx, loginID)
	if ident == nil {
		return nil
	}
	if !s.passwords.Matches(ident.Password, password) {
		return nil
	}
	return ident
}

// Create inserts ident into its role table and returns the new numeric id.
func (s *Store) Create(ctx context.Context, ident Identity) (int64, error) {
	if RoleFromLogin(ident.LoginID) != ident.Role || ident.Role == RoleUnknown {
		return 0, apperr.BadRequest("login_id prefix does not match role")
	}
	hashed, err := s.passwords.Hash(ident.Password)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "Failed to hash password", err)
	}

	var (
		id  int64
		row *sql.Row
	)
	switch ident.Role {
	case RoleAdmin:
		row = s.db.QueryRowContext(ctx, `
			INSERT INTO admins (login_id, name, email, password)
			VALUES ($1, $2, $3, $4)
			RETURNING admin_id
		`, ident.LoginID, ident.Name, ident.Email, hashed)
	case RoleTeacher:
		var subject *string
		if ident.Teacher != nil {
			subject = ident.Teacher.Subject
		}
		row = s.db.QueryRowContext(ctx, `
			INSERT INTO teachers (login_id, name, email, password, subject)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING teacher_id
		`, ident.LoginID, ident.Name, ident.Email, hashed, subject)
	case RoleStudent:
		var p StudentProfile
		if ident.Student != nil {
			p = *ident.Student
		}
		row = s.db.QueryRowContext(ctx, `
			INSERT INTO students (login_id, name, email, password, roll_no, semester, program_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING student_id
		`, ident.LoginID, ident.Name, ident.Email, hashed, p.RollNo, p.Semester, p.ProgramID)
	}
	if err := row.Scan(&id); err != nil {
		if store.IsUniqueViolation(err) {
			return 0, apperr.BadRequest("login_id already exists")
		}
		return 0, storageErr("Failed to add "+ident.Role.String(), err)
	}
	return id, nil
}

// UpdateTeacher applies a partial update and returns the affected row count.
func (s *Store) UpdateTeacher(ctx context.Context, teacherID int64, p TeacherPatch) (int64, error) {
	password, err := s.hashOptional(p.Password)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE teachers
		SET name = COALESCE($1, name),
			email = COALESCE($2, email),
			password = COALESCE($3, password),
			subject = COALESCE($4, subject)
		WHERE teacher_id = $5
	`, p.Name, p.Email, password, p.Subject, teacherID)
	if err != nil {
		return 0, storageErr("Failed to update teacher", err)
	}
	return res.RowsAffected()
}

// UpdateStudent applies a partial update and returns the affected row count.
func (s *Store) UpdateStudent(ctx context.Context, studentID int64, p StudentPatch) (int64, error) {
	password, err := s.hashOptional(p.Password)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE students
		SET name = COALESCE($1, name),
			email = COALESCE($2, email),
			password = COALESCE($3, password),
			roll_no = COALESCE($4, roll_no),
			semester = COALESCE($5, semester),
			program_id = COALESCE($6, program_id)
		WHERE student_id = $7
	`, p.Name, p.Email, password, p.RollNo, p.Semester, p.ProgramID, studentID)
	if err != nil {
		return 0, storageErr("Failed to update student", err)
	}
	return res.RowsAffected()
}

// Delete hard-deletes an identity by numeric id and returns the affected row count.
func (s *Store) Delete(ctx context.Context, role Role, id int64) (int64, error) {
	var query string
	switch role {
	case RoleAdmin:
		query = `DELETE FROM admins WHERE admin_id = $1`
	case RoleTeacher:
		query = `DELETE FROM teachers WHERE teacher_id = $1`
	case RoleStudent:
		query = `DELETE FROM students WHERE student_id = $1`
	default:
		return 0, apperr.BadRequest("unknown role")
	}
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, storageErr("Failed to delete "+role.String(), err)
	}
	return res.RowsAffected()
}

// ListTeachers returns every teacher, newest first, without passwords.
func (s *Store) ListTeachers(ctx context.Context) ([]Identity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT teacher_id, login_id, name, email, subject
		FROM teachers ORDER BY teacher_id DESC
	`)
	if err != nil {
		return nil, storageErr("Failed to list teachers", err)
	}
	out, err := store.CollectRows(rows, scanPublicTeacher)
	if err != nil {
		return nil, storageErr("Failed to list teachers", err)
	}
	return out, nil
}

// ListTeachersForSubject returns the teachers assigned to a subject.
func (s *Store) ListTeachersForSubject(ctx context.Context, subjectID int64) ([]Identity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.teacher_id, t.login_id, t.name, t.email, t.subject
		FROM subject_teachers st
		JOIN teachers t ON t.teacher_id = st.teacher_id
		WHERE st.subject_id = $1
		ORDER BY t.teacher_id
	`, subjectID)
	if err != nil {
		return nil, storageErr("Failed to list teachers", err)
	}
	out, err := store.CollectRows(rows, scanPublicTeacher)
	if err != nil {
		return nil, storageErr("Failed to list teachers", err)
	}
	return out, nil
}

// ListStudents returns every student, newest first, without passwords.
func (s *Store) ListStudents(ctx context.Context) ([]Identity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT student_id, login_id, name, email, roll_no, semester, program_id
		FROM students ORDER BY student_id DESC
	`)
	if err != nil {
		return nil, storageErr("Failed to list students", err)
	}
	out, err := store.CollectRows(rows, func(row store.Scanner) (Identity, error) {
		return scanStudent(row, false)
	})
	if err != nil {
		return nil, storageErr("Failed to list students", err)
	}
	return out, nil
}

func (s *Store) hashOptional(password *string) (*string, error) {
	if password == nil {
		return nil, nil
	}
	hashed, err := s.passwords.Hash(*password)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Failed to hash password", err)
	}
	return &hashed, nil
}

func scanAdmin(row store.Scanner) (Identity, error) {
	ident := Identity{Role: RoleAdmin}
	err := row.Scan(&ident.NumericID, &ident.LoginID, &ident.Name, &ident.Email, &ident.Password)
	return ident, err
}

func scanTeacher(row store.Scanner, withPassword bool) (Identity, error) {
	ident := Identity{Role: RoleTeacher, Teacher: &TeacherProfile{}}
	dest := []any{&ident.NumericID, &ident.LoginID, &ident.Name, &ident.Email}
	if withPassword {
		dest = append(dest, &ident.Password)
	}
	dest = append(dest, &ident.Teacher.Subject)
	err := row.Scan(dest...)
	return ident, err
}

func scanPublicTeacher(row store.Scanner) (Identity, error) {
	return scanTeacher(row, false)
}

func scanStudent(row store.Scanner, withPassword bool) (Identity, error) {
	ident := Identity{Role: RoleStudent, Student: &StudentProfile{}}
	dest := []any{&ident.NumericID, &ident.LoginID, &ident.Name, &ident.Email}
	if withPassword {
		dest = append(dest, &ident.Password)
	}
	dest = append(dest, &ident.Student.RollNo, &ident.Student.Semester, &ident.Student.ProgramID)
	err := row.Scan(dest...)
	return ident, err
}

func storageErr(msg string, err error) error {
	log.WithError(err).Error(msg)
	return apperr.Storage(msg, err)
}
