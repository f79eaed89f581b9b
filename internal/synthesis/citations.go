package synthesis

import (
	"fmt"
	"strings"

	"github.com/scholarlabs/paperdex/internal/domain"
)

// ExtractCitations returns a citation entry for every context whose [n]
// marker literally appears in the answer text. The test is a substring
// match, so prose like "see [2] and [5]" yields exactly those two.
func ExtractCitations(answer string, contexts []domain.Context) []domain.Citation {
	var citations []domain.Citation
	for i, ctx := range contexts {
		marker := fmt.Sprintf("[%d]", i+1)
		if !strings.Contains(answer, marker) {
			continue
		}
		citations = append(citations, domain.Citation{
			Number:     i + 1,
			PaperTitle: orUnknown(ctx.Metadata.Title),
			Section:    orUnknown(ctx.Metadata.Section),
			Page:       orNA(ctx.Metadata.Page),
			PaperID:    ctx.Metadata.PaperID,
		})
	}
	return citations
}

// ParseStance reads the sentiment label out of a stance analysis. It
// first looks for an explicit "sentiment:" line (plain or bold), then
// falls back to scanning the opening of the text for polarity words.
// Unrecognized analyses default to Neutral.
func ParseStance(analysis string) string {
	lower := strings.ToLower(analysis)

	// Checked in fixed priority so an analysis mentioning several labels
	// always resolves the same way.
	labels := []struct{ needle, label string }{
		{"positive", "Positive"},
		{"negative", "Negative"},
		{"mixed", "Mixed"},
		{"neutral", "Neutral"},
	}
	for _, l := range labels {
		if strings.Contains(lower, "sentiment: "+l.needle) || strings.Contains(lower, "sentiment:** "+l.needle) {
			return l.label
		}
	}

	head := lower
	if len(head) > 500 {
		head = head[:500]
	}
	hasPositive := strings.Contains(head, "positive")
	hasNegative := strings.Contains(head, "negative")
	switch {
	case hasPositive && hasNegative:
		return "Mixed"
	case hasPositive:
		return "Positive"
	case hasNegative:
		return "Negative"
	default:
		return "Neutral"
	}
}
