package joinlink

import (
	"bytes"
	"net/url"
	"testing"
)

func TestBuild(t *testing.T) {
	link, err := Build("https://track.example.com/join", "abc-123", 6.5244, 3.3792)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("Build() produced unparseable URL %q: %v", link, err)
	}
	q := u.Query()
	if got := q.Get("courseId"); got != "abc-123" {
		t.Errorf("courseId = %q", got)
	}
	if got := q.Get("lat"); got != "6.524400" {
		t.Errorf("lat = %q", got)
	}
	if got := q.Get("lng"); got != "3.379200" {
		t.Errorf("lng = %q", got)
	}
	if u.Host != "track.example.com" || u.Path != "/join" {
		t.Errorf("base mangled: %q", link)
	}
}

func TestBuildRequiresCourseID(t *testing.T) {
	if _, err := Build("https://track.example.com", "", 0, 0); err == nil {
		t.Error("Build() accepted empty course id")
	}
}

func TestRenderCode(t *testing.T) {
	png, err := RenderCode("https://track.example.com/join?courseId=abc-123")
	if err != nil {
		t.Fatalf("RenderCode() failed: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("RenderCode() did not return a PNG (got %d bytes)", len(png))
	}
}
