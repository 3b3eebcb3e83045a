package repository

import (
	"database/sql"
	"testing"
)

func TestDBTimeToISO(t *testing.T) {
	cases := []struct {
		name string
		in   sql.NullString
		want string // empty means nil expected
	}{
		{"valid", sql.NullString{String: "2026-03-15 08:30:00", Valid: true}, "2026-03-15T08:30:00Z"},
		{"null", sql.NullString{}, ""},
		{"empty", sql.NullString{String: "  ", Valid: true}, ""},
		{"zero value", sql.NullString{String: "0001-01-01 00:00:00", Valid: true}, ""},
		{"garbage", sql.NullString{String: "not a time", Valid: true}, ""},
	}
	for _, tc := range cases {
		got := dbTimeToISO(tc.in)
		if tc.want == "" {
			if got != nil {
				t.Errorf("%s: got %q, want nil", tc.name, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("%s: got nil, want %q", tc.name, tc.want)
			continue
		}
		if *got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, *got, tc.want)
		}
	}
}
