package evidence

import (
	"strings"

	"asset-guardian/internal/types"
)

// SectorInferrer maps issuer metadata to a peer-table label.
type SectorInferrer interface {
	Infer(info types.IssuerInfo) string
}

type KeywordRule struct {
	Label    string
	Keywords []string
}

// KeywordSectorInferrer matches lower-cased issuer text against rules in order.
// Matching is plain substring search, so short keywords like "it" match inside words.
type KeywordSectorInferrer struct {
	Fields   []string
	Rules    []KeywordRule
	Fallback string
}

var DefaultKeywordInferrer = KeywordSectorInferrer{
	Fields: []string{"industry", "sector", "shortName", "longName"},
	Rules: []KeywordRule{
		{Label: "IT", Keywords: []string{"semiconductor", "software", "it", "electronic", "internet", "hardware", "display"}},
		{Label: "FINANCIAL", Keywords: []string{"bank", "insurance", "financial", "broker", "capital markets"}},
		{Label: "HEALTHCARE", Keywords: []string{"biotech", "pharmaceutical", "drug", "health", "medical"}},
	},
	Fallback: "BROAD",
}

func (k KeywordSectorInferrer) Infer(info types.IssuerInfo) string {
	parts := make([]string, 0, len(k.Fields))
	for _, f := range k.Fields {
		s, _ := info.Text(f)
		parts = append(parts, s)
	}
	text := strings.ToLower(strings.Join(parts, " "))
	for _, r := range k.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(text, kw) {
				return r.Label
			}
		}
	}
	return k.Fallback
}

// IssuerSectorInferrer reads the sector reported by the feed.
type IssuerSectorInferrer struct{}

func (IssuerSectorInferrer) Infer(info types.IssuerInfo) string {
	if s, ok := info.Text("sector"); ok {
		return s
	}
	if s, ok := info.Text("sectorKey"); ok {
		return s
	}
	return ""
}
