package geo

import (
	"math"
	"testing"
)

func TestDistanceSymmetric(t *testing.T) {
	pairs := [][4]float64{
		{6.5244, 3.3792, 6.4281, 3.4219},
		{51.5007, -0.1246, 48.8584, 2.2945},
		{-33.8688, 151.2093, 35.6762, 139.6503},
	}
	for _, p := range pairs {
		ab := Distance(p[0], p[1], p[2], p[3])
		ba := Distance(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-6 {
			t.Errorf("Distance not symmetric: %v vs %v for %v", ab, ba, p)
		}
	}
}

func TestDistanceZeroAtSamePoint(t *testing.T) {
	points := [][2]float64{{6.5244, 3.3792}, {0, 0}, {-90, 180}, {89.9, -179.9}}
	for _, p := range points {
		if d := Distance(p[0], p[1], p[0], p[1]); d != 0 {
			t.Errorf("Distance(p,p) = %v, want 0 for %v", d, p)
		}
	}
}

func TestDistanceOneDegreeLatitude(t *testing.T) {
	// One degree of latitude is ~111,195 m on the spherical model.
	const want = 111195.0
	got := Distance(6.5244, 3.3792, 7.5244, 3.3792)
	if math.Abs(got-want)/want > 0.001 {
		t.Errorf("one degree latitude = %v m, want within 0.1%% of %v", got, want)
	}
}

func TestAdmit(t *testing.T) {
	tests := []struct {
		name       string
		sLat, sLng float64
		radius     float64
		admitted   bool
	}{
		{name: "same point any radius", sLat: 6.5244, sLng: 3.3792, radius: 0, admitted: true},
		{name: "within radius", sLat: 6.5244, sLng: 3.3795, radius: 500, admitted: true},
		{name: "just outside", sLat: 6.5244, sLng: 3.3892, radius: 500, admitted: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Admit(tt.sLat, tt.sLng, 6.5244, 3.3792, tt.radius)
			if d.Admitted != tt.admitted {
				t.Errorf("Admit() = %+v, want admitted=%v", d, tt.admitted)
			}
			if d.DistanceMeters < 0 {
				t.Errorf("negative distance %v", d.DistanceMeters)
			}
		})
	}
}

func TestValidCoordinate(t *testing.T) {
	tests := []struct {
		lat, lng float64
		want     bool
	}{
		{6.5244, 3.3792, true},
		{90, 180, true},
		{-90, -180, true},
		{90.01, 0, false},
		{0, -180.5, false},
		{math.NaN(), 0, false},
		{0, math.Inf(1), false},
	}
	for _, tt := range tests {
		if got := ValidCoordinate(tt.lat, tt.lng); got != tt.want {
			t.Errorf("ValidCoordinate(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
		}
	}
}
