package attendance

import (
	"context"
	"errors"
	"strings"
	"testing"

	"trackas/internal/classroom"
)

// fakeRepo keeps classes and rosters in memory with the same keyed-insert
// semantics as the Postgres repository.
type fakeRepo struct {
	classes map[string]classroom.ClassSession
	rosters map[string][]classroom.Attendee
	err     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		classes: make(map[string]classroom.ClassSession),
		rosters: make(map[string][]classroom.Attendee),
	}
}

func (f *fakeRepo) GetClassByID(_ context.Context, courseID string) (*classroom.ClassSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	cls, ok := f.classes[courseID]
	if !ok {
		return nil, nil
	}
	return &cls, nil
}

func (f *fakeRepo) AddAttendee(_ context.Context, courseID string, a classroom.Attendee) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.rosters[courseID] {
		if existing.MatricNo == a.MatricNo {
			return classroom.ErrAlreadyMarked
		}
	}
	f.rosters[courseID] = append(f.rosters[courseID], a)
	return nil
}

func (f *fakeRepo) ListAttendees(_ context.Context, courseID string) ([]classroom.Attendee, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rosters[courseID], nil
}

// Lagos venue used across the fixtures.
const venueLat, venueLng = 6.5244, 3.3792

func setup(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	repo.classes["c-1"] = classroom.ClassSession{
		CourseID:   "c-1",
		CourseCode: "CSC101",
		Latitude:   venueLat,
		Longitude:  venueLng,
	}
	return NewService(repo, 500), repo
}

func TestSubmitAdmitsNearbyStudent(t *testing.T) {
	svc, repo := setup(t)

	// ~10m east of the venue.
	att, err := svc.Submit(context.Background(), SubmitRequest{
		CourseID: "c-1", Name: "ada obi", MatricNo: "csc/20/001",
		Lat: venueLat, Lng: venueLng + 0.0001,
	})
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if att.Name != "ADA OBI" || att.MatricNo != "CSC/20/001" {
		t.Errorf("Submit() did not normalize to upper case: %+v", att)
	}
	if att.MarkedAt.IsZero() {
		t.Error("Submit() left MarkedAt zero")
	}
	if len(repo.rosters["c-1"]) != 1 {
		t.Errorf("roster length = %d, want 1", len(repo.rosters["c-1"]))
	}
}

func TestSubmitRejectsFarStudent(t *testing.T) {
	svc, repo := setup(t)

	// ~600m north of the venue.
	_, err := svc.Submit(context.Background(), SubmitRequest{
		CourseID: "c-1", Name: "Ada", MatricNo: "CSC/20/002",
		Lat: venueLat + 0.0054, Lng: venueLng,
	})
	var oor *OutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("Submit() error = %v, want OutOfRangeError", err)
	}
	if oor.DistanceMeters <= 500 {
		t.Errorf("distance = %v, want > 500", oor.DistanceMeters)
	}
	if len(repo.rosters["c-1"]) != 0 {
		t.Error("rejected submission must not touch the roster")
	}
}

func TestSubmitDuplicateMatricNo(t *testing.T) {
	svc, repo := setup(t)
	req := SubmitRequest{CourseID: "c-1", Name: "Ada", MatricNo: "csc/20/003", Lat: venueLat, Lng: venueLng}

	if _, err := svc.Submit(context.Background(), req); err != nil {
		t.Fatalf("first Submit() failed: %v", err)
	}

	// Same matric number in different case must hit the dedup key.
	req.MatricNo = "CSC/20/003"
	if _, err := svc.Submit(context.Background(), req); !errors.Is(err, classroom.ErrAlreadyMarked) {
		t.Errorf("second Submit() error = %v, want ErrAlreadyMarked", err)
	}
	if len(repo.rosters["c-1"]) != 1 {
		t.Errorf("roster length = %d, want 1", len(repo.rosters["c-1"]))
	}
}

func TestSubmitUnknownCourse(t *testing.T) {
	svc, repo := setup(t)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		CourseID: "nope", Name: "Ada", MatricNo: "CSC/20/004", Lat: venueLat, Lng: venueLng,
	})
	if !errors.Is(err, classroom.ErrSessionNotFound) {
		t.Errorf("Submit() error = %v, want ErrSessionNotFound", err)
	}
	for id, roster := range repo.rosters {
		if len(roster) != 0 {
			t.Errorf("unexpected write to roster %q", id)
		}
	}
}

func TestSubmitInvalidCoordinates(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		CourseID: "c-1", Name: "Ada", MatricNo: "CSC/20/005", Lat: 91, Lng: 0,
	})
	if !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("Submit() error = %v, want ErrInvalidCoordinate", err)
	}
}

func TestExportCSV(t *testing.T) {
	svc, _ := setup(t)

	if _, err := svc.Submit(context.Background(), SubmitRequest{
		CourseID: "c-1", Name: "Ada Obi", MatricNo: "CSC/20/006", Lat: venueLat, Lng: venueLng,
	}); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	out, err := svc.ExportCSV(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("ExportCSV() failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv has %d lines, want header + 1 row: %q", len(lines), out)
	}
	if lines[0] != "name,matric_no,timestamp" {
		t.Errorf("csv header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "ADA OBI,CSC/20/006,") {
		t.Errorf("csv row = %q", lines[1])
	}
	if strings.Count(string(out), "CSC/20/006") != 1 {
		t.Error("attendee must appear exactly once in the export")
	}
}

func TestExportCSVUnknownCourse(t *testing.T) {
	svc, _ := setup(t)
	if _, err := svc.ExportCSV(context.Background(), "nope"); !errors.Is(err, classroom.ErrSessionNotFound) {
		t.Errorf("ExportCSV() error = %v, want ErrSessionNotFound", err)
	}
}
