package attendance

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"trackas/internal/classroom"
	"trackas/internal/geo"
)

var (
	// ErrInvalidCoordinate rejects positions outside the valid lat/lng range.
	ErrInvalidCoordinate = errors.New("invalid coordinates")
)

// OutOfRangeError reports a rejected submission together with the computed
// distance, so the surface can tell the student how far off they are.
type OutOfRangeError struct {
	DistanceMeters float64
	RadiusMeters   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("too far from venue: %.0fm away, radius %.0fm", e.DistanceMeters, e.RadiusMeters)
}

var submissions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "trackas_attendance_submissions_total",
	Help: "Attendance submissions by outcome.",
}, []string{"outcome"})

// Repository is the storage surface the service needs.
type Repository interface {
	GetClassByID(ctx context.Context, courseID string) (*classroom.ClassSession, error)
	AddAttendee(ctx context.Context, courseID string, a classroom.Attendee) error
	ListAttendees(ctx context.Context, courseID string) ([]classroom.Attendee, error)
}

// SubmitRequest carries one student check-in.
type SubmitRequest struct {
	CourseID string
	Name     string
	MatricNo string
	Lat      float64
	Lng      float64
}

// Service gates submissions on distance to the venue and keeps rosters
// duplicate-free.
type Service struct {
	repo         Repository
	radiusMeters float64
}

// NewService creates a service admitting students within radiusMeters of the venue.
func NewService(repo Repository, radiusMeters float64) *Service {
	if radiusMeters <= 0 {
		radiusMeters = 500
	}
	return &Service{repo: repo, radiusMeters: radiusMeters}
}

// Submit records one attendance mark. Venue coordinates always come from the
// stored class record; lat/lng in the join URL are never trusted.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (classroom.Attendee, error) {
	cls, err := s.repo.GetClassByID(ctx, req.CourseID)
	if err != nil {
		return classroom.Attendee{}, err
	}
	if cls == nil {
		submissions.WithLabelValues("not_found").Inc()
		return classroom.Attendee{}, classroom.ErrSessionNotFound
	}

	if !geo.ValidCoordinate(req.Lat, req.Lng) {
		submissions.WithLabelValues("invalid").Inc()
		return classroom.Attendee{}, ErrInvalidCoordinate
	}

	decision := geo.Admit(req.Lat, req.Lng, cls.Latitude, cls.Longitude, s.radiusMeters)
	if !decision.Admitted {
		submissions.WithLabelValues("out_of_range").Inc()
		return classroom.Attendee{}, &OutOfRangeError{
			DistanceMeters: decision.DistanceMeters,
			RadiusMeters:   s.radiusMeters,
		}
	}

	// Upper-casing is load-bearing: the matric number is the dedup key.
	att := classroom.Attendee{
		Name:     strings.ToUpper(strings.TrimSpace(req.Name)),
		MatricNo: strings.ToUpper(strings.TrimSpace(req.MatricNo)),
		MarkedAt: time.Now().UTC(),
	}
	if err := s.repo.AddAttendee(ctx, req.CourseID, att); err != nil {
		if errors.Is(err, classroom.ErrAlreadyMarked) {
			submissions.WithLabelValues("duplicate").Inc()
		}
		return classroom.Attendee{}, err
	}
	submissions.WithLabelValues("admitted").Inc()
	return att, nil
}

// Roster returns the ordered attendee list for a session.
func (s *Service) Roster(ctx context.Context, courseID string) ([]classroom.Attendee, error) {
	cls, err := s.repo.GetClassByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if cls == nil {
		return nil, classroom.ErrSessionNotFound
	}
	return s.repo.ListAttendees(ctx, courseID)
}

// ExportCSV renders the roster as CSV with a name,matric_no,timestamp header.
func (s *Service) ExportCSV(ctx context.Context, courseID string) ([]byte, error) {
	roster, err := s.Roster(ctx, courseID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"name", "matric_no", "timestamp"}); err != nil {
		return nil, err
	}
	for _, a := range roster {
		if err := w.Write([]string{a.Name, a.MatricNo, a.MarkedAt.UTC().Format(time.RFC3339)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
