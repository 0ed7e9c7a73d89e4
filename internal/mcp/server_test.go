package mcp

import (
	"context"
	"testing"
	"time"
)

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

// TestDateRange verifies defaults (last 30 days), explicit dates, and
// rejection of malformed input.
func TestDateRange(t *testing.T) {
	start, end, err := dateRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	startT, _ := time.Parse("2006-01-02", start)
	endT, _ := time.Parse("2006-01-02", end)
	if days := endT.Sub(startT).Hours() / 24; days < 29 || days > 31 {
		t.Errorf("default range = %.0f days, want ~30", days)
	}

	start, end, err = dateRange("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start != "2024-01-01" || end != "2024-01-31" {
		t.Errorf("range = %s..%s, want 2024-01-01..2024-01-31", start, end)
	}

	if _, _, err := dateRange("not-a-date", ""); err == nil {
		t.Error("expected error for invalid start date")
	}
	if _, _, err := dateRange("", "31/01/2024"); err == nil {
		t.Error("expected error for invalid end date")
	}
}
