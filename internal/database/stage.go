package database

import "fmt"

// Stage represents the processing lifecycle of an article.
type Stage string

const (
	StagePending            Stage = "pending"
	StageTranslating        Stage = "translating"
	StageExtractingEntities Stage = "extracting_entities"
	StageProcessed          Stage = "processed"
	StageFailed             Stage = "failed"
)

// forward is the linear happy path; StageFailed is reachable from any
// non-terminal stage and has no successor.
var forward = map[Stage]Stage{
	StagePending:            StageTranslating,
	StageTranslating:        StageExtractingEntities,
	StageExtractingEntities: StageProcessed,
}

var allStages = []Stage{
	StagePending,
	StageTranslating,
	StageExtractingEntities,
	StageProcessed,
	StageFailed,
}

// ParseStage validates a stage string.
func ParseStage(s string) (Stage, error) {
	for _, stage := range allStages {
		if Stage(s) == stage {
			return stage, nil
		}
	}
	return "", fmt.Errorf("unknown stage: %q", s)
}

// Terminal reports whether no further transitions are allowed from s.
func (s Stage) Terminal() bool {
	return s == StageProcessed || s == StageFailed
}

// ValidTransition reports whether an article may move from one stage to
// another. Stages only move forward; failed is reachable from any
// non-terminal stage.
func ValidTransition(from, to Stage) bool {
	if from.Terminal() {
		return false
	}
	if to == StageFailed {
		return true
	}
	return forward[from] == to
}
