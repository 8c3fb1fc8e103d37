package services

import (
	"strings"

	"backend/logger"
	"backend/models"

	"go.uber.org/zap"
)

// RefinementService drives one state transition per user correction:
// load history, append the correction, replay everything through the
// extraction client, persist the new assistant turn and rewritten rows.
type RefinementService struct {
	extraction *ExtractionService
	log        *MealLogService
}

func NewRefinementService(extraction *ExtractionService, log *MealLogService) *RefinementService {
	return &RefinementService{extraction: extraction, log: log}
}

// Refine applies one natural-language correction to an existing meal group
// and returns the complete updated analysis plus the grown history.
func (s *RefinementService) Refine(userID, groupID, correction string) (*models.MealAnalysis, []models.ConversationTurn, error) {
	correction = strings.TrimSpace(correction)
	if correction == "" {
		return nil, nil, NewStageError(StageValidation, "correction text must not be empty", nil)
	}
	if strings.TrimSpace(groupID) == "" {
		return nil, nil, NewStageError(StageValidation, "meal group id is required", nil)
	}

	entries, err := s.log.GroupEntries(userID, groupID)
	if err != nil {
		return nil, nil, err
	}

	// Histories are kept in lockstep across the group; any entry works.
	history, err := UnmarshalHistory(entries[0].CorrectionHistory)
	if err != nil {
		return nil, nil, NewStageError(StagePersistence, "stored correction history is unreadable", err)
	}
	version := entries[0].HistoryVersion

	history = append(history, models.ConversationTurn{Role: models.RoleUser, Content: correction})

	analysis, err := s.extraction.RefineAnalysis(history)
	if err != nil {
		return nil, nil, err
	}

	content, err := MarshalAnalysis(analysis)
	if err != nil {
		return nil, nil, NewStageError(StagePersistence, "failed to record refined analysis", err)
	}
	history = append(history, models.ConversationTurn{Role: models.RoleAssistant, Content: content})

	if err := s.log.RewriteGroup(userID, entries, analysis, history, version); err != nil {
		return nil, nil, err
	}

	logger.Info("meal group refined",
		zap.String("meal_group_id", groupID),
		zap.Int("history_turns", len(history)),
		zap.Int("foods", len(analysis.Foods)))
	return analysis, history, nil
}
