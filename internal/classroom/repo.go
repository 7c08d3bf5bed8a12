package classroom

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository persists lecturers, class sessions and attendees in Postgres.
//
// Attendees are stored as independently keyed rows (course_id, matric_no)
// rather than an inline list on the class record, so marking attendance is a
// single idempotent insert with no read-modify-write window.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the tables when they do not exist yet. Statements run
// one at a time; pgx rejects multi-command prepared statements.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS lecturers (
			email         TEXT PRIMARY KEY,
			full_name     TEXT NOT NULL,
			phone_number  TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS classes (
			course_id      TEXT PRIMARY KEY,
			course_title   TEXT NOT NULL,
			course_code    TEXT NOT NULL,
			location_name  TEXT NOT NULL,
			class_date     TEXT NOT NULL,
			class_time     TEXT NOT NULL,
			note           TEXT NOT NULL DEFAULT '',
			lecturer_email TEXT NOT NULL REFERENCES lecturers (email),
			latitude       DOUBLE PRECISION NOT NULL,
			longitude      DOUBLE PRECISION NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS attendees (
			course_id TEXT NOT NULL REFERENCES classes (course_id),
			matric_no TEXT NOT NULL,
			name      TEXT NOT NULL,
			marked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (course_id, matric_no)
		)`,
	}
	for _, stmt := range ddl {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// RegisterLecturer writes a new lecturer record.
func (r *Repository) RegisterLecturer(ctx context.Context, l Lecturer) (Lecturer, error) {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO lecturers (email, full_name, phone_number, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
	`, l.Email, l.FullName, l.PhoneNumber, l.PasswordHash, l.CreatedAt)
	if err != nil {
		return Lecturer{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Lecturer{}, err
	}
	if n == 0 {
		return Lecturer{}, ErrDuplicateLecturer
	}
	return l, nil
}

// FindLecturerByEmail returns nil when no lecturer matches.
func (r *Repository) FindLecturerByEmail(ctx context.Context, email string) (*Lecturer, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT email, full_name, phone_number, password_hash, created_at
		FROM lecturers WHERE email = $1
	`, email)
	var l Lecturer
	if err := row.Scan(&l.Email, &l.FullName, &l.PhoneNumber, &l.PasswordHash, &l.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// CreateClass generates a course id, persists the session and returns it.
// The roster starts empty; attendees arrive as their own rows.
func (r *Repository) CreateClass(ctx context.Context, cs ClassSession) (ClassSession, error) {
	cs.CourseID = uuid.NewString()
	if cs.CreatedAt.IsZero() {
		cs.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO classes (course_id, course_title, course_code, location_name,
			class_date, class_time, note, lecturer_email, latitude, longitude, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, cs.CourseID, cs.CourseTitle, cs.CourseCode, cs.LocationName,
		cs.Date, cs.Time, cs.Note, cs.LecturerEmail, cs.Latitude, cs.Longitude, cs.CreatedAt)
	if err != nil {
		return ClassSession{}, err
	}
	return cs, nil
}

// ListClassesByLecturer returns the lecturer's sessions, newest first.
func (r *Repository) ListClassesByLecturer(ctx context.Context, email string) ([]ClassSession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT course_id, course_title, course_code, location_name,
			class_date, class_time, note, lecturer_email, latitude, longitude, created_at
		FROM classes WHERE lecturer_email = $1
		ORDER BY created_at DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []ClassSession
	for rows.Next() {
		var cs ClassSession
		if err := rows.Scan(&cs.CourseID, &cs.CourseTitle, &cs.CourseCode, &cs.LocationName,
			&cs.Date, &cs.Time, &cs.Note, &cs.LecturerEmail, &cs.Latitude, &cs.Longitude, &cs.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, cs)
	}
	return res, rows.Err()
}

// GetClassByID returns nil when no session matches.
func (r *Repository) GetClassByID(ctx context.Context, courseID string) (*ClassSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT course_id, course_title, course_code, location_name,
			class_date, class_time, note, lecturer_email, latitude, longitude, created_at
		FROM classes WHERE course_id = $1
	`, courseID)
	var cs ClassSession
	if err := row.Scan(&cs.CourseID, &cs.CourseTitle, &cs.CourseCode, &cs.LocationName,
		&cs.Date, &cs.Time, &cs.Note, &cs.LecturerEmail, &cs.Latitude, &cs.Longitude, &cs.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cs, nil
}

// AddAttendee appends one roster entry. Returns ErrAlreadyMarked when the
// matric number is already on the roster for this session.
func (r *Repository) AddAttendee(ctx context.Context, courseID string, a Attendee) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attendees (course_id, matric_no, name, marked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (course_id, matric_no) DO NOTHING
	`, courseID, a.MatricNo, a.Name, a.MarkedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyMarked
	}
	return nil
}

// ListAttendees returns the roster in marking order.
func (r *Repository) ListAttendees(ctx context.Context, courseID string) ([]Attendee, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, matric_no, marked_at
		FROM attendees WHERE course_id = $1
		ORDER BY marked_at, matric_no
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Attendee
	for rows.Next() {
		var a Attendee
		if err := rows.Scan(&a.Name, &a.MatricNo, &a.MarkedAt); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// LecturerStats returns dashboard counters for one lecturer.
func (r *Repository) LecturerStats(ctx context.Context, email string) (Stats, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT c.course_id), COUNT(a.matric_no)
		FROM classes c
		LEFT JOIN attendees a ON a.course_id = c.course_id
		WHERE c.lecturer_email = $1
	`, email)
	var s Stats
	if err := row.Scan(&s.Classes, &s.TotalAttendees); err != nil {
		return Stats{}, err
	}
	return s, nil
}
