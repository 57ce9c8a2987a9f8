package duedate

import (
	"errors"
	"testing"
	"time"
)

func TestCompose_TableTests(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)

	tests := []struct {
		name    string
		date    string
		clock   string
		loc     *time.Location
		want    time.Time
		wantErr bool
	}{
		{
			name: "date only defaults to end of day",
			date: "2025-01-01",
			loc:  time.UTC,
			want: time.Date(2025, 1, 1, 23, 59, 59, 0, time.UTC),
		},
		{
			name: "date only in configured zone",
			date: "2025-01-01",
			loc:  moscow,
			want: time.Date(2025, 1, 1, 23, 59, 59, 0, moscow),
		},
		{
			name:  "date with HH:MM",
			date:  "2025-03-10",
			clock: "09:30",
			loc:   time.UTC,
			want:  time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "date with HH:MM:SS",
			date:  "2025-03-10",
			clock: "09:30:15",
			loc:   time.UTC,
			want:  time.Date(2025, 3, 10, 9, 30, 15, 0, time.UTC),
		},
		{
			name: "local datetime without zone",
			date: "2025-03-10T18:00",
			loc:  moscow,
			want: time.Date(2025, 3, 10, 18, 0, 0, 0, moscow),
		},
		{
			name:  "rfc3339 ignores clock",
			date:  "2025-03-10T18:00:00Z",
			clock: "09:00",
			loc:   moscow,
			want:  time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC),
		},
		{
			name: "nil location falls back to utc",
			date: "2025-01-01",
			want: time.Date(2025, 1, 1, 23, 59, 59, 0, time.UTC),
		},
		{
			name:    "empty date",
			date:    "  ",
			loc:     time.UTC,
			wantErr: true,
		},
		{
			name:    "garbage date",
			date:    "tomorrow",
			loc:     time.UTC,
			wantErr: true,
		},
		{
			name:    "invalid clock",
			date:    "2025-01-01",
			clock:   "25:99",
			loc:     time.UTC,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compose(tt.date, tt.clock, tt.loc)
			if tt.wantErr {
				if err == nil || !errors.Is(err, ErrInvalid) {
					t.Fatalf("Compose() error = %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Compose() unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Compose() = %v, want %v", got, tt.want)
			}
		})
	}
}
