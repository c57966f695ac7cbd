package dates

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"2025-01-06", false},
		{"2024-02-29", false}, // leap day
		{"2025-02-29", true},  // not a leap year
		{"2025-13-01", true},
		{"2025-1-6", true}, // must be zero-padded
		{"06/01/2025", true},
		{"", true},
	}

	for _, tt := range tests {
		d, err := Parse(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) expected error, got %v", tt.input, d)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got := d.String(); got != tt.input {
			t.Errorf("Parse(%q).String() = %q", tt.input, got)
		}
	}
}

func TestAddDaysAcrossBoundaries(t *testing.T) {
	tests := []struct {
		start string
		days  int
		want  string
	}{
		{"2025-01-31", 1, "2025-02-01"},
		{"2024-02-28", 1, "2024-02-29"}, // leap year
		{"2025-02-28", 1, "2025-03-01"},
		{"2025-12-31", 1, "2026-01-01"},
		{"2025-03-10", -10, "2025-02-28"},
		{"2025-01-06", 83, "2025-03-30"},
	}

	for _, tt := range tests {
		got := MustParse(tt.start).AddDays(tt.days)
		if got.String() != tt.want {
			t.Errorf("%s + %d days = %s, want %s", tt.start, tt.days, got, tt.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	a := MustParse("2025-01-06")
	b := MustParse("2025-01-13")

	if got := DaysBetween(a, b); got != 7 {
		t.Errorf("DaysBetween = %d, want 7", got)
	}
	if got := DaysBetween(b, a); got != -7 {
		t.Errorf("reversed DaysBetween = %d, want -7", got)
	}
	if got := DaysBetween(a, a); got != 0 {
		t.Errorf("same-day DaysBetween = %d, want 0", got)
	}
}

func TestFromTimeTruncates(t *testing.T) {
	// 23:59 in a timezone west of UTC is already the next day in UTC.
	loc := time.FixedZone("WEST", -5*3600)
	instant := time.Date(2025, time.June, 1, 23, 30, 0, 0, loc)

	if got := FromTime(instant); got.String() != "2025-06-02" {
		t.Errorf("FromTime = %s, want 2025-06-02", got)
	}
}

func TestZeroDate(t *testing.T) {
	var d Date
	if !d.IsZero() {
		t.Error("zero value should report IsZero")
	}
	if MustParse("2025-01-06").IsZero() {
		t.Error("parsed date should not report IsZero")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	d := MustParse("2025-03-30")

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2025-03-30"` {
		t.Errorf("marshal = %s", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("round trip = %s, want %s", back, d)
	}
}

func TestUnmarshalRejectsNonStrings(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`20250330`), &d); err == nil {
		t.Error("expected error for numeric JSON")
	}
	if err := json.Unmarshal([]byte(`"30/03/2025"`), &d); err == nil {
		t.Error("expected error for wrong format")
	}
}
