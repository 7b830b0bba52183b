// Package entity holds the named-entity model shared by the NER client and
// the enrichment pipeline, plus the merge pass that repairs token-split spans.
package entity

import "sort"

// Entity groups as reported by the NER service.
const (
	GroupPerson        = "PERSON"
	GroupLocation      = "LOCATION"
	GroupOrganization  = "ORGANIZATION"
	GroupMiscellaneous = "MISCELLANEOUS"
)

// Entity is a named-entity span extracted from article text.
type Entity struct {
	Word       string  `json:"word"`
	Group      string  `json:"entity_group"`
	Confidence float64 `json:"confidence"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
}

// Merge collapses adjacent entities of the same group that the token-based
// extractor split, then sorts the result by start offset. Two spans merge
// when the gap between them is at most 2 characters; the merged span joins
// the words with a space and averages the confidences. A single left-to-right
// pass: re-running Merge on already-merged output is a no-op.
func Merge(entities []Entity) []Entity {
	if len(entities) == 0 {
		return nil
	}

	var merged []Entity
	current := entities[0]

	for _, next := range entities[1:] {
		if current.Group == next.Group && current.End >= next.Start-2 {
			current.Word = current.Word + " " + next.Word
			current.End = next.End
			current.Confidence = (current.Confidence + next.Confidence) / 2
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Start < merged[j].Start
	})
	return merged
}

// FilterGroup returns the entities belonging to a single group, in order.
func FilterGroup(entities []Entity, group string) []Entity {
	var out []Entity
	for _, e := range entities {
		if e.Group == group {
			out = append(out, e)
		}
	}
	return out
}

// CountGroup counts the entities belonging to a single group.
func CountGroup(entities []Entity, group string) int {
	n := 0
	for _, e := range entities {
		if e.Group == group {
			n++
		}
	}
	return n
}
