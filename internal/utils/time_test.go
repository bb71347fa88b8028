package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{
			name:     "empty string returns local",
			timezone: "",
			wantErr:  false,
		},
		{
			name:     "Local returns local",
			timezone: "Local",
			wantErr:  false,
		},
		{
			name:     "valid timezone UTC",
			timezone: "UTC",
			wantErr:  false,
		},
		{
			name:     "valid timezone America/New_York",
			timezone: "America/New_York",
			wantErr:  false,
		},
		{
			name:     "invalid timezone",
			timezone: "Invalid/Timezone",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
			if got := ValidateTimezone(tt.timezone); got == tt.wantErr {
				t.Errorf("ValidateTimezone(%q) = %v", tt.timezone, got)
			}
		})
	}
}

func TestNowInTimezone(t *testing.T) {
	now, err := NowInTimezone("UTC")
	if err != nil {
		t.Fatalf("NowInTimezone() error = %v", err)
	}
	if now.Location() != time.UTC {
		t.Errorf("NowInTimezone(UTC) location = %v", now.Location())
	}
	if _, err := NowInTimezone("Nope/Nowhere"); err == nil {
		t.Error("NowInTimezone() should fail for an unknown zone")
	}
}

func TestUntilMidnight(t *testing.T) {
	loc := time.FixedZone("test", 2*60*60)
	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{
			name: "late evening",
			now:  time.Date(2024, 5, 1, 23, 30, 0, 0, loc),
			want: 30 * time.Minute,
		},
		{
			name: "exactly midnight waits a full day",
			now:  time.Date(2024, 5, 1, 0, 0, 0, 0, loc),
			want: 24 * time.Hour,
		},
		{
			name: "end of month",
			now:  time.Date(2024, 1, 31, 12, 0, 0, 0, loc),
			want: 12 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UntilMidnight(tt.now); got != tt.want {
				t.Errorf("UntilMidnight() = %v, want %v", got, tt.want)
			}
			if next := NextMidnight(tt.now); next.Hour() != 0 || next.Location() != loc {
				t.Errorf("NextMidnight() = %v", next)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	got, err := ExpandPath("~/.config/habitual")
	if err != nil {
		t.Fatalf("ExpandPath() error = %v", err)
	}
	if want := filepath.Join(home, ".config/habitual"); got != want {
		t.Errorf("ExpandPath() = %q, want %q", got, want)
	}

	got, _ = ExpandPath("/tmp/data")
	if got != "/tmp/data" {
		t.Errorf("ExpandPath() changed an absolute path: %q", got)
	}
}
