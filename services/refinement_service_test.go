package services

import "testing"

// These paths must reject before any storage or completion-service access,
// so they run without either.

func TestRefineRejectsEmptyCorrection(t *testing.T) {
	svc := NewRefinementService(NewExtractionService(&fakeChat{}), NewMealLogService())

	_, _, err := svc.Refine("user-1", "group-1", "   ")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if StageOf(err) != StageValidation {
		t.Errorf("stage = %q, want %q", StageOf(err), StageValidation)
	}
}

func TestRefineRejectsEmptyGroupID(t *testing.T) {
	svc := NewRefinementService(NewExtractionService(&fakeChat{}), NewMealLogService())

	_, _, err := svc.Refine("user-1", "", "make it two servings")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if StageOf(err) != StageValidation {
		t.Errorf("stage = %q, want %q", StageOf(err), StageValidation)
	}
}
