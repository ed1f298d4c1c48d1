package types

type DataResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

type SearchPapersResponse struct {
	Papers []Paper `json:"papers"`
}

type SelectPaperResponse struct {
	Paper   Paper  `json:"paper"`
	PDFPath string `json:"pdf_path"`
}

type AskResponse struct {
	Message Message `json:"message"`
}

type HistoryResponse struct {
	Paper    *Paper    `json:"paper,omitempty"`
	Messages []Message `json:"messages"`
}
