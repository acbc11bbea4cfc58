package types

import (
	"encoding/json"
	"time"
)

// ReportDateLayout formats the calendar day a report is cached under.
const ReportDateLayout = "2006-01-02"

// Report is the generated research note for one symbol on one calendar day.
type Report struct {
	Symbol    string          `json:"symbol"`
	Date      string          `json:"report_date"`
	RunID     string          `json:"run_id"`
	Provider  string          `json:"provider"`
	Content   string          `json:"content"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ReportDay returns the cache day for t in loc.
func ReportDay(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(ReportDateLayout)
}
