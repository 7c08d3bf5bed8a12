package joinlink

import (
	"errors"
	"net/url"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"
)

// Build returns the public join URL for a class session. The lat/lng params
// are a convenience hint for the join page; the server re-fetches the
// authoritative venue coordinates by course id before any distance check.
func Build(baseURL, courseID string, lat, lng float64) (string, error) {
	if courseID == "" {
		return "", errors.New("course id required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("courseId", courseID)
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', 6, 64))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// RenderCode encodes a URL as a QR PNG suitable for projecting or printing.
func RenderCode(link string) ([]byte, error) {
	return qrcode.Encode(link, qrcode.Medium, 256)
}
