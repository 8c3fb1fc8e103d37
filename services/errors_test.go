package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestStageOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Stage
	}{
		{"direct stage error", NewStageError(StageConflict, "busy", nil), StageConflict},
		{"wrapped stage error", fmt.Errorf("outer: %w", NewStageError(StageNotFound, "gone", nil)), StageNotFound},
		{"untagged error", errors.New("boom"), StagePersistence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StageOf(tt.err); got != tt.want {
				t.Errorf("StageOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCallerMessage(t *testing.T) {
	inner := errors.New("pq: connection refused")
	err := NewStageError(StagePersistence, "failed to save meal", inner)

	if got := CallerMessage(err); got != "failed to save meal" {
		t.Errorf("CallerMessage = %q", got)
	}
	if got := CallerMessage(errors.New("raw")); got != "internal error" {
		t.Errorf("untagged CallerMessage = %q", got)
	}
	if !errors.Is(err, inner) {
		t.Error("StageError must unwrap to its cause")
	}
}
