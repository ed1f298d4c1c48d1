package types

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SearchPapersRequest struct {
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	UseDateFilter bool   `json:"use_date_filter"`
	StartYear     int    `json:"start_year"`
	EndYear       int    `json:"end_year"`
}

type SelectPaperRequest struct {
	EntryID string `json:"entry_id"`
}

type AskRequest struct {
	Question string `json:"question"`
}
