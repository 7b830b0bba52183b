package database

import "github.com/projectsentinel/sentinel/internal/nlp"

// Article is a collected news article and its enrichment state.
type Article struct {
	ID             string
	URL            string
	Title          string
	Source         *string
	RawText        string
	PublishedDate  *string
	Language       string
	Stage          Stage
	Priority       int
	EntityCount    int
	Latitude       *float64
	Longitude      *float64
	Results        Results
	ContentFetched bool
	CreatedAt      *string
	UpdatedAt      *string
}

// HasLocation reports whether the article carries a resolved coordinate.
func (a *Article) HasLocation() bool {
	return a.Latitude != nil && a.Longitude != nil
}

// Results holds the latest output of each pipeline stage. Fields are only
// ever set, never cleared, once a stage completes.
type Results struct {
	Translation *nlp.TranslationResult `json:"translation,omitempty"`
	Entities    *nlp.ExtractionResult  `json:"entities,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// Pipeline operations recorded in processing logs.
const (
	OpTranslation = "translation"
	OpNER         = "ner_extraction"
	OpGeocoding   = "geocoding"
	OpPriority    = "priority"
)

// Processing log statuses.
const (
	LogStarted   = "started"
	LogCompleted = "completed"
	LogFailed    = "failed"
)

// ProcessingLog is an append-only audit record of a pipeline operation.
type ProcessingLog struct {
	ID             int64
	ArticleID      string
	Operation      string
	Status         string
	Message        string
	ProcessingTime *float64
	CreatedAt      *string
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalArticles     int
	ProcessedArticles int
	PendingArticles   int
	FailedArticles    int
	LocatedArticles   int
	BySource          map[string]int
	ByPriority        map[int]int
	ByStage           map[string]int
}
