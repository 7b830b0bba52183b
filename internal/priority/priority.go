// Package priority classifies articles into intelligence priority tiers from
// keyword hits and entity counts.
package priority

import (
	"strings"

	"github.com/projectsentinel/sentinel/internal/entity"
)

// Priority tiers, 1 is the most urgent.
const (
	Critical = 1
	High     = 2
	Medium   = 3
	Low      = 4
)

var criticalKeywords = []string{
	"attack", "bomb", "explosion", "terrorist", "boko haram",
	"ambush", "kidnap", "hostage", "emergency", "crisis",
}

var highKeywords = []string{
	"military", "army", "security", "police", "operation",
	"conflict", "violence", "protest", "strike", "unrest",
}

// Phrases that force Critical on their own, regardless of keyword counts.
var criticalPhrases = []string{"boko haram", "terrorist"}

// Classify scores the best available text (translated when present, raw
// otherwise) plus the extracted entities. Each keyword counts at most once:
// matching is substring presence, not frequency. Ties resolve toward the
// more urgent tier by rule order.
func Classify(text string, entities []entity.Entity) int {
	lower := strings.ToLower(text)

	var criticalCount, highCount int
	for _, kw := range criticalKeywords {
		if strings.Contains(lower, kw) {
			criticalCount++
		}
	}
	for _, kw := range highKeywords {
		if strings.Contains(lower, kw) {
			highCount++
		}
	}

	persons := entity.CountGroup(entities, entity.GroupPerson)
	orgs := entity.CountGroup(entities, entity.GroupOrganization)

	switch {
	case criticalCount >= 2 || containsAny(lower, criticalPhrases):
		return Critical
	case criticalCount >= 1 || highCount >= 3:
		return High
	case highCount >= 1 || persons >= 3 || orgs >= 2:
		return Medium
	default:
		return Low
	}
}

// Label returns the display name for a priority tier.
func Label(p int) string {
	switch p {
	case Critical:
		return "Critical"
	case High:
		return "High"
	case Medium:
		return "Medium"
	case Low:
		return "Low"
	default:
		return "Unknown"
	}
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
