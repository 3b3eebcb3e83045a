package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/emran-niftyitsolution/tms-sub000/internal/seatgrid"
)

func TestGenerateLockRecords(t *testing.T) {
	positions := []seatgrid.Position{
		{Row: 0, Column: 0},
		{Row: 0, Column: 2},
		{Row: 3, Column: 1},
	}
	expires := time.Now().UTC().Add(5 * time.Minute)
	locks, err := GenerateLockRecords(42, 7, positions, expires)
	if err != nil {
		t.Fatalf("GenerateLockRecords: %v", err)
	}
	if len(locks) != len(positions) {
		t.Fatalf("got %d locks, want %d", len(locks), len(positions))
	}
	seen := make(map[string]bool)
	for i, l := range locks {
		if l.UserID != 42 || l.ScheduleID != 7 {
			t.Errorf("lock %d carries user=%d schedule=%d", i, l.UserID, l.ScheduleID)
		}
		if l.Position() != positions[i] {
			t.Errorf("lock %d position = %+v, want %+v", i, l.Position(), positions[i])
		}
		if !l.ExpiresAt.Equal(expires) {
			t.Errorf("lock %d expires at %v, want %v", i, l.ExpiresAt, expires)
		}
		if l.LockToken == "" {
			t.Errorf("lock %d has empty token", i)
		}
		if seen[l.LockToken] {
			t.Errorf("duplicate lock token %q", l.LockToken)
		}
		seen[l.LockToken] = true
	}
}

func TestGenerateLockRecordsEmpty(t *testing.T) {
	locks, err := GenerateLockRecords(1, 1, nil, time.Now())
	if err != nil {
		t.Fatalf("GenerateLockRecords: %v", err)
	}
	if len(locks) != 0 {
		t.Fatalf("got %d locks, want 0", len(locks))
	}
}

func TestIsDuplicateLock(t *testing.T) {
	if !IsDuplicateLock(errors.New("Error 1062: Duplicate entry '5-0-2' for key 'uniq_schedule_position'")) {
		t.Error("duplicate key error not detected")
	}
	if IsDuplicateLock(errors.New("Error 1213: Deadlock found")) {
		t.Error("unrelated error reported as duplicate")
	}
	if IsDuplicateLock(nil) {
		t.Error("nil error reported as duplicate")
	}
}
