package controllers

import (
	"testing"
	"time"
)

func TestQueryDay(t *testing.T) {
	t.Run("explicit date", func(t *testing.T) {
		got, err := queryDay("2026-08-30")
		if err != nil {
			t.Fatalf("queryDay: %v", err)
		}
		if got.Year() != 2026 || got.Month() != time.August || got.Day() != 30 {
			t.Errorf("queryDay = %v", got)
		}
	})

	t.Run("invalid date", func(t *testing.T) {
		if _, err := queryDay("30/08/2026"); err == nil {
			t.Fatal("expected parse error")
		}
	})

	t.Run("default is UTC today", func(t *testing.T) {
		got, err := queryDay("")
		if err != nil {
			t.Fatalf("queryDay: %v", err)
		}
		// Stored dates are UTC calendar midnights; a local-time default
		// would land on the wrong date near midnight.
		if got.Location() != time.UTC {
			t.Errorf("default day location = %v, want UTC", got.Location())
		}
		if d := time.Now().UTC().Sub(got); d < 0 || d > time.Minute {
			t.Errorf("default day drifted: %v", got)
		}
	})
}
