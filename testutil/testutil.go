package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/signwise/auth"
	"github.com/danielhkuo/signwise/cliparse"
	"github.com/danielhkuo/signwise/db"
)

// SetupTestDB creates a fresh SQLite database file with the full schema.
// The file lives in t.TempDir and is removed with it.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "signwise.db")
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)

	conn, err := db.Open(db.DialectSQLite, dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseURL:        "file::memory:",
		DatabaseType:       db.DialectSQLite,
		InferenceURL:       "http://127.0.0.1:1",
		InferenceTimeout:   time.Second,
		DuplicateThreshold: 5,
		HashBits:           64,
		MaxUploadBytes:     1 << 20,
		IPHashSalt:         "test-ip-salt",
	}
}

// CreateTestSign inserts a sign and returns its ID
func CreateTestSign(t *testing.T, conn *sql.DB, classID int, name, category string) string {
	t.Helper()

	signID, _ := auth.GenerateID(12)
	_, err := conn.Exec(`
		INSERT INTO sign (id, class_id, name, category, description, rules, image_url, created_at)
		VALUES (?, ?, ?, ?, 'desc', 'rules', '/signs/test.svg', ?)
	`, signID, classID, name, category, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test sign: %v", err)
	}

	return signID
}

// CreateTestHash stores a perceptual hash for a visitor
func CreateTestHash(t *testing.T, conn *sql.DB, visitorID, hash string) {
	t.Helper()

	id, _ := auth.GenerateID(12)
	_, err := conn.Exec(`
		INSERT INTO image_hash (id, visitor_id, phash, created_at)
		VALUES (?, ?, ?, ?)
	`, id, visitorID, hash, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test hash: %v", err)
	}
}

// CreateTestRecognition records a recognition of signID for a visitor
func CreateTestRecognition(t *testing.T, conn *sql.DB, visitorID, signID string, at time.Time) {
	t.Helper()

	id, _ := auth.GenerateID(12)
	_, err := conn.Exec(`
		INSERT INTO recognition (id, visitor_id, sign_id, confidence, xp_earned, is_duplicate, created_at)
		VALUES (?, ?, ?, 0.9, 15, FALSE, ?)
	`, id, visitorID, signID, at.UTC())
	if err != nil {
		t.Fatalf("Failed to create test recognition: %v", err)
	}
}

// SampleImagePNG renders a deterministic PNG. Seeds 0-3 draw visually
// different shapes, so their perceptual hashes are far apart.
func SampleImagePNG(t *testing.T, seed int) []byte {
	t.Helper()

	const size = 64
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			var dark bool
			switch seed % 4 {
			case 0:
				dark = x < size/2
			case 1:
				dark = y < size/2
			case 2:
				dark = x+y < size
			default:
				dx, dy := x-size/2, y-size/2
				dark = dx*dx+dy*dy < (size/3)*(size/3)
			}
			v := uint8(200 + (x+y)%40)
			if dark {
				v = uint8(20 + (x+y)%40)
			}
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// MakeUploadRequest builds a multipart request with data in the given field
func MakeUploadRequest(t *testing.T, path, field, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		header := make(map[string][]string)
		header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename)}
		header["Content-Type"] = []string{contentType}
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatalf("Failed to create form part: %v", err)
		}
		part.Write(data)
	}
	mw.Close()

	req := httptest.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
