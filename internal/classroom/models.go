package classroom

import (
	"errors"
	"time"
)

var (
	ErrDuplicateLecturer = errors.New("a lecturer with this email already exists")
	ErrSessionNotFound   = errors.New("class session not found")
	ErrAlreadyMarked     = errors.New("attendance already marked for this matric number")
)

// Lecturer is a registered account that can schedule classes.
type Lecturer struct {
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PhoneNumber  string    `json:"phone_number"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ClassSession is one scheduled, location-bound attendance event.
type ClassSession struct {
	CourseID      string    `json:"course_id"`
	CourseTitle   string    `json:"course_title"`
	CourseCode    string    `json:"course_code"`
	LocationName  string    `json:"location_name"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Note          string    `json:"note"`
	LecturerEmail string    `json:"lecturer_email"`
	Latitude      float64   `json:"lat"`
	Longitude     float64   `json:"lng"`
	CreatedAt     time.Time `json:"created_at"`
}

// Attendee is one roster entry. Within a session the matric number is the
// dedup key, stored upper-cased.
type Attendee struct {
	Name     string    `json:"name"`
	MatricNo string    `json:"matric_no"`
	MarkedAt time.Time `json:"timestamp"`
}

// Stats summarizes a lecturer's dashboard.
type Stats struct {
	Classes        int `json:"classes"`
	TotalAttendees int `json:"total_attendees"`
}
