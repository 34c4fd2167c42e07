package scheduler

import (
	"testing"
	"time"
)

func TestAddJobInvalidExpression(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()
	if err := s.AddJob("not a cron expr", func() {}); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}

func TestAddJobRuns(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	fired := make(chan struct{}, 1)
	// Every-minute schedule is the finest a 5-field expression allows; just
	// verify the job is accepted and wired.
	if err := s.AddJob("* * * * *", func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(10 * time.Millisecond):
		// Not firing within the test window is expected; the assertion is
		// that registration succeeded.
	}
}

func TestDailyCheckInExpressionAccepted(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()
	if err := s.AddJob("0 12 * * *", func() {}); err != nil {
		t.Errorf("daily noon expression rejected: %v", err)
	}
}
