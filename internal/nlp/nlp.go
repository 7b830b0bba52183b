// Package nlp holds the request/response contracts for the external
// translation and entity-recognition inference services, and HTTP clients
// implementing them. The pipeline only depends on the two interfaces so tests
// can substitute deterministic fakes.
package nlp

import (
	"context"

	"github.com/projectsentinel/sentinel/internal/entity"
)

// TranslationResult is the translation service response.
type TranslationResult struct {
	TranslatedText   string  `json:"translated_text"`
	DetectedLanguage string  `json:"detected_language"`
	ProcessingTime   float64 `json:"processing_time"`
}

// ExtractionResult is the NER service response.
type ExtractionResult struct {
	Entities       []entity.Entity `json:"entities"`
	EntityCount    int             `json:"entity_count"`
	ProcessingTime float64         `json:"processing_time"`
}

// Translator translates text to English. A single failed attempt means the
// service is unavailable for this run; callers do not retry.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang string) (*TranslationResult, error)
}

// Extractor extracts named entities from English text, under the same
// no-retry contract as Translator.
type Extractor interface {
	ExtractEntities(ctx context.Context, text string) (*ExtractionResult, error)
}
