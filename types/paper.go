package types

import "time"

// Paper is a single record returned by the discovery service. It is
// immutable once fetched and identified by its entry ID.
type Paper struct {
	EntryID   string    `json:"entry_id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Authors   []string  `json:"authors"`
	Published time.Time `json:"published"`
	PDFURL    string    `json:"pdf_url"`
}
