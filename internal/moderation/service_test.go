package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/shinys129/OpUtilityBot/internal/clock"
	"github.com/shinys129/OpUtilityBot/internal/storage/memory"
)

func TestService_Ban(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	newSvc := func() *Service {
		return NewService(memory.New(), clock.NewFixed(now))
	}

	t.Run("records a permanent ban with an audit entry", func(t *testing.T) {
		svc := newSvc()

		ban, err := svc.Ban(context.Background(), BanInput{
			UserID:  "user-1",
			Reason:  "scamming trades",
			AdminID: "admin-1",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ban.ID == "" {
			t.Fatalf("expected a ban ID")
		}
		if !ban.ExpiresAt.IsZero() {
			t.Fatalf("expected a permanent ban, got expiry %v", ban.ExpiresAt)
		}

		banned, err := svc.IsBanned(context.Background(), "user-1")
		if err != nil {
			t.Fatalf("is banned failed: %v", err)
		}
		if !banned {
			t.Fatalf("expected user to be banned")
		}

		log, err := svc.AuditLog(context.Background(), 0)
		if err != nil {
			t.Fatalf("audit log failed: %v", err)
		}
		if len(log) != 1 {
			t.Fatalf("expected 1 audit entry, got %d", len(log))
		}
		if log[0].Action != "ban" || log[0].TargetUserID != "user-1" {
			t.Fatalf("unexpected audit entry %+v", log[0])
		}
	})

	t.Run("temporary ban carries an expiry", func(t *testing.T) {
		svc := newSvc()

		ban, err := svc.Ban(context.Background(), BanInput{
			UserID:   "user-1",
			Reason:   "cooldown",
			AdminID:  "admin-1",
			Duration: 24 * time.Hour,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ban.ExpiresAt != now.Add(24*time.Hour) {
			t.Fatalf("expected expiry %v, got %v", now.Add(24*time.Hour), ban.ExpiresAt)
		}
	})

	t.Run("requires a reason", func(t *testing.T) {
		svc := newSvc()

		_, err := svc.Ban(context.Background(), BanInput{UserID: "user-1", AdminID: "admin-1"})
		if err != ErrReasonRequired {
			t.Fatalf("expected ErrReasonRequired, got %v", err)
		}
	})

	t.Run("rejects a double ban", func(t *testing.T) {
		svc := newSvc()

		if _, err := svc.Ban(context.Background(), BanInput{UserID: "user-1", Reason: "first", AdminID: "admin-1"}); err != nil {
			t.Fatalf("first ban failed: %v", err)
		}
		_, err := svc.Ban(context.Background(), BanInput{UserID: "user-1", Reason: "second", AdminID: "admin-1"})
		if err != ErrAlreadyBanned {
			t.Fatalf("expected ErrAlreadyBanned, got %v", err)
		}
	})
}

func TestService_Unban(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	t.Run("lifts an active ban", func(t *testing.T) {
		svc := NewService(memory.New(), clock.NewFixed(now))

		if _, err := svc.Ban(context.Background(), BanInput{UserID: "user-1", Reason: "scamming", AdminID: "admin-1"}); err != nil {
			t.Fatalf("ban failed: %v", err)
		}
		if err := svc.Unban(context.Background(), "user-1", "admin-2"); err != nil {
			t.Fatalf("unban failed: %v", err)
		}

		banned, err := svc.IsBanned(context.Background(), "user-1")
		if err != nil {
			t.Fatalf("is banned failed: %v", err)
		}
		if banned {
			t.Fatalf("expected user to be unbanned")
		}

		log, err := svc.AuditLog(context.Background(), 0)
		if err != nil {
			t.Fatalf("audit log failed: %v", err)
		}
		if len(log) != 2 {
			t.Fatalf("expected ban and unban entries, got %d", len(log))
		}
	})

	t.Run("errors when no ban is active", func(t *testing.T) {
		svc := NewService(memory.New(), clock.NewFixed(now))

		if err := svc.Unban(context.Background(), "user-1", "admin-1"); err != ErrNotBanned {
			t.Fatalf("expected ErrNotBanned, got %v", err)
		}
	})
}

func TestService_Warn(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	svc := NewService(memory.New(), clock.NewFixed(now))

	if _, err := svc.Warn(context.Background(), "user-1", "", "admin-1"); err != ErrReasonRequired {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}

	if _, err := svc.Warn(context.Background(), "user-1", "spam in trade channel", "admin-1"); err != nil {
		t.Fatalf("warn failed: %v", err)
	}
	if _, err := svc.Warn(context.Background(), "user-1", "repeat spam", "admin-1"); err != nil {
		t.Fatalf("warn failed: %v", err)
	}

	warnings, err := svc.Warnings(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("warnings failed: %v", err)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(warnings))
	}

	// Warnings never block the flow.
	banned, err := svc.IsBanned(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("is banned failed: %v", err)
	}
	if banned {
		t.Fatalf("warned user must not count as banned")
	}
}
