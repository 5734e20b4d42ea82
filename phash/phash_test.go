// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package phash

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
)

func TestHammingDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "a1b2c3d4e5f60718", "a1b2c3d4e5f60718", 0},
		{"one bit", "a1b2c3d4e5f60718", "a1b2c3d4e5f60719", 1},
		{"case insensitive", "AB12", "ab12", 0},
		{"mixed case one bit", "ABCDEF0123456789", "abcdef0123456788", 1},
		{"all bits", "ffffffffffffffff", "0000000000000000", 64},
		{"five bits", "0000000000000000", "000000000000001f", 5},
		{"length mismatch", "ab", "abcd", 64},
		{"empty first", "", "abcd", 64},
		{"empty second", "abcd", "", 64},
		{"both empty", "", "", 64},
		{"mismatch with junk", "zz", "abcd", 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HammingDistance(tt.a, tt.b)
			if err != nil {
				t.Fatalf("HammingDistance() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("HammingDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestHammingDistanceMalformed(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"non-hex in first", "zzb2c3d4e5f60718", "a1b2c3d4e5f60718"},
		{"non-hex in second", "a1b2c3d4e5f60718", "a1b2c3d4e5f6071g"},
		{"whitespace", "a1b2 3d4", "a1b2c3d4"},
		{"sign prefix", "-1", "01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := HammingDistance(tt.a, tt.b)
			if !errors.Is(err, ErrMalformedHash) {
				t.Errorf("HammingDistance() error = %v, want %v", err, ErrMalformedHash)
			}
		})
	}
}

func randomHash(r *rand.Rand) string {
	return fmt.Sprintf("%016x", r.Uint64())
}

func TestHammingDistanceProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		a := randomHash(r)
		b := randomHash(r)

		self, err := HammingDistance(a, a)
		if err != nil || self != 0 {
			t.Fatalf("distance(%s, %s) = %d, %v; want 0", a, a, self, err)
		}

		ab, err := HammingDistance(a, b)
		if err != nil {
			t.Fatalf("HammingDistance() error = %v", err)
		}
		ba, err := HammingDistance(b, a)
		if err != nil {
			t.Fatalf("HammingDistance() error = %v", err)
		}
		if ab != ba {
			t.Errorf("not symmetric: d(%s,%s)=%d d(%s,%s)=%d", a, b, ab, b, a, ba)
		}
		if ab < 0 || ab > DefaultBits {
			t.Errorf("distance %d out of range [0, %d]", ab, DefaultBits)
		}
	}
}

func TestDetectorSentinelUsesWidth(t *testing.T) {
	det, err := NewDetector(2, 16)
	if err != nil {
		t.Fatalf("NewDetector() error = %v", err)
	}
	got, err := det.Distance("ab", "abcd")
	if err != nil {
		t.Fatalf("Distance() error = %v", err)
	}
	if got != 16 {
		t.Errorf("Distance() = %d, want 16", got)
	}
}

func TestNewDetector(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		bits      int
		wantErr   bool
	}{
		{"default", DefaultThreshold, DefaultBits, false},
		{"zero threshold", 0, 64, false},
		{"threshold equals width", 64, 64, false},
		{"negative threshold", -1, 64, true},
		{"threshold above width", 65, 64, true},
		{"zero width", 0, 0, true},
		{"width not nibble aligned", 1, 30, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDetector(tt.threshold, tt.bits)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewDetector() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidDetector) {
				t.Errorf("NewDetector() error = %v, want %v", err, ErrInvalidDetector)
			}
		})
	}
}

func records(owner string, hashes ...string) []HashRecord {
	out := make([]HashRecord, len(hashes))
	for i, h := range hashes {
		out[i] = HashRecord{ID: fmt.Sprintf("rec-%d", i), OwnerID: owner, PHash: h}
	}
	return out
}

func TestCheckDuplicate(t *testing.T) {
	det := Default()

	tests := []struct {
		name         string
		query        string
		history      []HashRecord
		wantDup      bool
		wantMatch    string
		wantDistance int
	}{
		{
			name:         "exact repeat",
			query:        "a1b2c3d4e5f60718",
			history:      records("visitor", "a1b2c3d4e5f60718"),
			wantDup:      true,
			wantMatch:    "a1b2c3d4e5f60718",
			wantDistance: 0,
		},
		{
			name:         "near repeat at threshold",
			query:        "000000000000001f",
			history:      records("visitor", "0000000000000000"),
			wantDup:      true,
			wantMatch:    "0000000000000000",
			wantDistance: 5,
		},
		{
			name:         "just past threshold",
			query:        "000000000000003f",
			history:      records("visitor", "0000000000000000"),
			wantDup:      false,
			wantDistance: 6,
		},
		{
			name:         "distinct image",
			query:        "0000000000000000",
			history:      records("visitor", "ffffffffffffffff"),
			wantDup:      false,
			wantDistance: 64,
		},
		{
			name:  "multi-record scan",
			query: "0000000000000000",
			history: records("visitor",
				"fffff00000000000", // 20
				"0000000000000007", // 3
				"ffffffffff000000", // 40
			),
			wantDup:      true,
			wantMatch:    "0000000000000007",
			wantDistance: 3,
		},
		{
			name:         "no history",
			query:        "a1b2c3d4e5f60718",
			history:      nil,
			wantDup:      false,
			wantDistance: 64,
		},
		{
			name:         "empty query",
			query:        "",
			history:      records("visitor", "0000000000000000", ""),
			wantDup:      false,
			wantDistance: 64,
		},
		{
			name:         "stored hash of other width",
			query:        "0000000000000000",
			history:      records("visitor", "00000000"),
			wantDup:      false,
			wantDistance: 64,
		},
		{
			name:         "case differs",
			query:        "A1B2C3D4E5F60718",
			history:      records("visitor", "a1b2c3d4e5f60718"),
			wantDup:      true,
			wantMatch:    "a1b2c3d4e5f60718",
			wantDistance: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := det.CheckDuplicate("visitor", tt.query, tt.history)
			if err != nil {
				t.Fatalf("CheckDuplicate() error = %v", err)
			}
			if got.IsDuplicate != tt.wantDup {
				t.Errorf("IsDuplicate = %v, want %v", got.IsDuplicate, tt.wantDup)
			}
			if got.Match != tt.wantMatch {
				t.Errorf("Match = %q, want %q", got.Match, tt.wantMatch)
			}
			if got.Distance != tt.wantDistance {
				t.Errorf("Distance = %d, want %d", got.Distance, tt.wantDistance)
			}
		})
	}
}

func TestCheckDuplicateEmptyQuerySkipsComparison(t *testing.T) {
	// A malformed stored hash would error if it were compared.
	history := records("visitor", "not-a-hash-at-al")

	got, err := Default().CheckDuplicate("visitor", "", history)
	if err != nil {
		t.Fatalf("CheckDuplicate() error = %v", err)
	}
	if got.IsDuplicate || got.Compared != 0 {
		t.Errorf("got %+v, want no comparison", got)
	}
}

func TestCheckDuplicateIgnoresOtherOwners(t *testing.T) {
	history := []HashRecord{
		{ID: "theirs", OwnerID: "someone-else", PHash: "a1b2c3d4e5f60718"},
		{ID: "mine", OwnerID: "visitor", PHash: "ffffffffffffffff"},
	}

	got, err := Default().CheckDuplicate("visitor", "a1b2c3d4e5f60718", history)
	if err != nil {
		t.Fatalf("CheckDuplicate() error = %v", err)
	}
	if got.IsDuplicate {
		t.Errorf("matched another owner's hash: %+v", got)
	}
	if got.Compared != 1 {
		t.Errorf("Compared = %d, want 1", got.Compared)
	}
}

func TestCheckDuplicateMalformedPropagates(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		history []HashRecord
	}{
		{"malformed query", "zzzzzzzzzzzzzzzz", records("visitor", "0000000000000000")},
		{"malformed stored hash", "0000000000000000", records("visitor", "ffffffffffffffff", "00000000000000xx")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Default().CheckDuplicate("visitor", tt.query, tt.history)
			if !errors.Is(err, ErrMalformedHash) {
				t.Errorf("CheckDuplicate() error = %v, want %v", err, ErrMalformedHash)
			}
		})
	}
}

func TestCheckDuplicateReportsFirstMatch(t *testing.T) {
	history := records("visitor", "0000000000000001", "0000000000000000")

	got, err := Default().CheckDuplicate("visitor", "0000000000000000", history)
	if err != nil {
		t.Fatalf("CheckDuplicate() error = %v", err)
	}
	if got.MatchID != "rec-0" || got.Distance != 1 {
		t.Errorf("got %+v, want first record within threshold", got)
	}
}

func TestCheckDuplicateDoesNotMutateHistory(t *testing.T) {
	history := records("visitor", "0000000000000000", "ffffffffffffffff")
	snapshot := append([]HashRecord(nil), history...)

	if _, err := Default().CheckDuplicate("visitor", "0000000000000001", history); err != nil {
		t.Fatalf("CheckDuplicate() error = %v", err)
	}
	for i := range history {
		if history[i] != snapshot[i] {
			t.Errorf("history[%d] changed: %+v -> %+v", i, snapshot[i], history[i])
		}
	}
}

func TestCheckDuplicateConcurrent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	hashes := make([]string, 200)
	for i := range hashes {
		hashes[i] = randomHash(r)
	}
	history := records("visitor", hashes...)
	det := Default()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			query := hashes[idx*10]
			got, err := det.CheckDuplicate("visitor", query, history)
			if err != nil {
				t.Errorf("CheckDuplicate() error = %v", err)
				return
			}
			if !got.IsDuplicate {
				t.Errorf("expected %s to match its own record", query)
			}
		}(i)
	}
	wg.Wait()
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		hash    string
		wantErr bool
	}{
		{"valid lower", "a1b2c3d4e5f60718", false},
		{"valid upper", "A1B2C3D4E5F60718", false},
		{"too short", "a1b2", true},
		{"too long", "a1b2c3d4e5f607189", true},
		{"non-hex", "a1b2c3d4e5f6071g", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.hash, DefaultBits)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.hash, err, tt.wantErr)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  A1B2C3D4E5F60718\n"); got != "a1b2c3d4e5f60718" {
		t.Errorf("Normalize() = %q", got)
	}
}
