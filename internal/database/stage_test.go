package database

import "testing"

func TestValidTransitionForwardPath(t *testing.T) {
	path := []Stage{StagePending, StageTranslating, StageExtractingEntities, StageProcessed}
	for i := 0; i < len(path)-1; i++ {
		if !ValidTransition(path[i], path[i+1]) {
			t.Errorf("expected %s -> %s to be valid", path[i], path[i+1])
		}
	}
}

func TestValidTransitionFailedFromAnyNonTerminal(t *testing.T) {
	for _, from := range []Stage{StagePending, StageTranslating, StageExtractingEntities} {
		if !ValidTransition(from, StageFailed) {
			t.Errorf("expected %s -> failed to be valid", from)
		}
	}
}

func TestValidTransitionRejectsJumpsAndTerminals(t *testing.T) {
	invalid := []struct{ from, to Stage }{
		{StagePending, StageExtractingEntities},
		{StagePending, StageProcessed},
		{StageTranslating, StagePending},
		{StageProcessed, StageFailed},
		{StageFailed, StagePending},
		{StageProcessed, StageTranslating},
	}
	for _, tc := range invalid {
		if ValidTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be invalid", tc.from, tc.to)
		}
	}
}

func TestParseStage(t *testing.T) {
	if s, err := ParseStage("extracting_entities"); err != nil || s != StageExtractingEntities {
		t.Errorf("unexpected parse result: %v %v", s, err)
	}
	if _, err := ParseStage("summarizing"); err == nil {
		t.Error("expected error for unknown stage")
	}
}

func TestTerminal(t *testing.T) {
	if !StageProcessed.Terminal() || !StageFailed.Terminal() {
		t.Error("expected processed and failed to be terminal")
	}
	if StagePending.Terminal() {
		t.Error("expected pending to be non-terminal")
	}
}
