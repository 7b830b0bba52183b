// Package enrich drives the per-article enrichment pipeline: language
// detection, translation, entity extraction and merging, geocoding, and
// priority classification, with per-stage audit logging.
package enrich

import (
	"context"
	"fmt"
	"log"

	"github.com/projectsentinel/sentinel/internal/database"
	"github.com/projectsentinel/sentinel/internal/entity"
	"github.com/projectsentinel/sentinel/internal/gazetteer"
	"github.com/projectsentinel/sentinel/internal/language"
	"github.com/projectsentinel/sentinel/internal/nlp"
	"github.com/projectsentinel/sentinel/internal/priority"
)

// Result holds the results of an enrichment run over pending articles.
type Result struct {
	Processed int
	Failed    int
	Located   int
}

// Enricher runs the enrichment pipeline for individual articles. External
// service failures degrade the record and the pipeline continues; any other
// error is fatal for the current article only.
type Enricher struct {
	db         *database.DB
	translator nlp.Translator
	extractor  nlp.Extractor
}

// New creates a new enricher.
func New(db *database.DB, translator nlp.Translator, extractor nlp.Extractor) *Enricher {
	return &Enricher{db: db, translator: translator, extractor: extractor}
}

// ProcessPending enriches all pending articles, one at a time. A failed
// article does not stop the run.
func (e *Enricher) ProcessPending(ctx context.Context) *Result {
	articles, err := e.db.GetArticlesByStage(database.StagePending, 0)
	if err != nil {
		log.Printf("Error getting pending articles: %v", err)
		return &Result{}
	}

	if len(articles) == 0 {
		log.Println("No articles pending enrichment")
		return &Result{}
	}

	r := &Result{}
	for i := range articles {
		a := &articles[i]
		if err := e.ProcessArticle(ctx, a); err != nil {
			log.Printf("Error processing article %s: %v", a.ID, err)
			r.Failed++
			continue
		}
		r.Processed++
		if a.HasLocation() {
			r.Located++
		}
	}

	log.Printf("Enrichment complete: %d processed, %d failed, %d located",
		r.Processed, r.Failed, r.Located)
	return r
}

// ProcessArticle runs the full pipeline for one pending article. On return
// the persisted stage is either processed (possibly degraded) or failed with
// the error message stored under results.error. Panics inside the pipeline
// are treated like any other orchestration fault.
func (e *Enricher) ProcessArticle(ctx context.Context, a *database.Article) (err error) {
	if a.Stage != database.StagePending {
		return fmt.Errorf("article %s is in stage %s, not %s", a.ID, a.Stage, database.StagePending)
	}

	var results database.Results
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("enrichment fault: %v", r)
		}
		if err != nil {
			results.Error = err.Error()
			if failErr := e.db.FailArticle(a.ID, results); failErr != nil {
				log.Printf("Error marking article %s failed: %v", a.ID, failErr)
			}
			a.Stage = database.StageFailed
		}
	}()

	return e.run(ctx, a, &results)
}

func (e *Enricher) run(ctx context.Context, a *database.Article, results *database.Results) error {
	// Step 1: detect language on the raw text.
	lang := language.Detect(a.RawText)
	a.Language = lang
	if err := e.db.UpdateArticleLanguage(a.ID, lang); err != nil {
		return err
	}
	if err := e.db.UpdateArticleStage(a.ID, database.StagePending, database.StageTranslating); err != nil {
		return err
	}
	a.Stage = database.StageTranslating
	e.db.InsertProcessingLog(a.ID, database.OpTranslation, database.LogStarted,
		"Detected language: "+lang, nil)

	// Step 2: translate to English unless the text already is English.
	// A service failure is non-fatal: extraction falls back to the raw text.
	textForNER := a.RawText
	if lang != "en" {
		log.Printf("Translating article %s from %s to English", a.ID, lang)
		translation, err := e.translator.Translate(ctx, a.RawText, lang)
		if err != nil {
			log.Printf("Translation failed for article %s: %v", a.ID, err)
			e.db.InsertProcessingLog(a.ID, database.OpTranslation, database.LogFailed,
				"Translation service unavailable", nil)
		} else {
			results.Translation = translation
			if translation.TranslatedText != "" {
				textForNER = translation.TranslatedText
			}
			e.db.InsertProcessingLog(a.ID, database.OpTranslation, database.LogCompleted,
				"Translation successful", &translation.ProcessingTime)
		}
	} else {
		results.Translation = &nlp.TranslationResult{
			TranslatedText:   a.RawText,
			DetectedLanguage: "en",
			ProcessingTime:   0,
		}
	}

	// Step 3: named entity recognition on the best available text.
	if err := e.db.UpdateArticleStage(a.ID, database.StageTranslating, database.StageExtractingEntities); err != nil {
		return err
	}
	a.Stage = database.StageExtractingEntities
	e.db.InsertProcessingLog(a.ID, database.OpNER, database.LogStarted,
		"Starting entity extraction", nil)

	var entities []entity.Entity
	extraction, err := e.extractor.ExtractEntities(ctx, textForNER)
	if err != nil {
		log.Printf("Entity extraction failed for article %s: %v", a.ID, err)
		e.db.InsertProcessingLog(a.ID, database.OpNER, database.LogFailed,
			"NER service unavailable", nil)
	} else {
		extraction.Entities = entity.Merge(extraction.Entities)
		extraction.EntityCount = len(extraction.Entities)
		results.Entities = extraction
		entities = extraction.Entities

		a.EntityCount = extraction.EntityCount
		if err := e.db.UpdateArticleEntityCount(a.ID, extraction.EntityCount); err != nil {
			return err
		}
		e.db.InsertProcessingLog(a.ID, database.OpNER, database.LogCompleted,
			fmt.Sprintf("Extracted %d entities", extraction.EntityCount), &extraction.ProcessingTime)
	}

	// Geocoding sub-step: resolve the first LOCATION entity unless the
	// article already has a coordinate. A gazetteer miss is silently skipped.
	if !a.HasLocation() {
		if locations := entity.FilterGroup(entities, entity.GroupLocation); len(locations) > 0 {
			if pt, ok := gazetteer.Resolve(locations[0].Word); ok {
				if err := e.db.SetArticleLocation(a.ID, pt.Latitude, pt.Longitude); err != nil {
					return err
				}
				a.Latitude = &pt.Latitude
				a.Longitude = &pt.Longitude
				e.db.InsertProcessingLog(a.ID, database.OpGeocoding, database.LogCompleted,
					"Geocoded location: "+locations[0].Word, nil)
			}
		}
	}

	// Priority classification over whatever text and entities we ended up with.
	tier := priority.Classify(textForNER, entities)
	a.Priority = tier
	if err := e.db.UpdateArticlePriority(a.ID, tier); err != nil {
		return err
	}
	e.db.InsertProcessingLog(a.ID, database.OpPriority, database.LogCompleted,
		"Classified priority: "+priority.Label(tier), nil)

	// Final transition: processed even when both services degraded.
	if err := e.db.CompleteArticle(a.ID, *results); err != nil {
		return err
	}
	a.Stage = database.StageProcessed
	a.Results = *results
	return nil
}
