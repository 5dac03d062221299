package model

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "normal date",
			input: "2020-01-02",
			want:  time.Date(2020, time.January, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "end of year",
			input: "2024-12-31",
			want:  time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "wrong separator",
			input:   "2020/01/02",
			wantErr: true,
		},
		{
			name:    "missing padding",
			input:   "2020-1-2",
			wantErr: true,
		},
		{
			name:    "month out of range",
			input:   "2020-13-02",
			wantErr: true,
		},
		{
			name:    "non-numeric",
			input:   "20xx-01-02",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDateMillis(t *testing.T) {
	got, err := DateMillis("2020-01-02")
	if err != nil {
		t.Fatalf("DateMillis failed: %v", err)
	}
	want := time.Date(2020, time.January, 2, 0, 0, 0, 0, time.UTC).UnixMilli()
	if got != want {
		t.Errorf("DateMillis = %d, want %d", got, want)
	}
}
