package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tieubaoca/arxchive-be/middleware"
	"github.com/tieubaoca/arxchive-be/repository"
	"github.com/tieubaoca/arxchive-be/service"
	"github.com/tieubaoca/arxchive-be/types"
)

// SearchHandler drives the discovery form: fetch papers by topic and
// date range, then bind one of them to the conversation.
type SearchHandler struct {
	arxiv    *service.ArxivService
	ingest   *service.IngestService
	sessions repository.SessionStore
}

func NewSearchHandler(arxiv *service.ArxivService, ingest *service.IngestService, sessions repository.SessionStore) *SearchHandler {
	return &SearchHandler{
		arxiv:    arxiv,
		ingest:   ingest,
		sessions: sessions,
	}
}

func (h *SearchHandler) HandleSearchPapers(c *gin.Context) {
	var req types.SearchPapersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Query is required",
		})
		return
	}

	startYear, endYear := req.StartYear, req.EndYear
	if !req.UseDateFilter {
		startYear = service.DefaultStartYear
		endYear = time.Now().Year()
	}

	sessionID := middleware.SessionID(c)
	state, err := h.sessions.Get(c, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}

	papers, err := h.arxiv.FetchPapers(c, req.Query, req.MaxResults, startYear, endYear)
	if err != nil {
		// Discovery failures degrade to an empty result list.
		log.Printf("paper discovery failed: %v", err)
		papers = nil
	}

	state.SearchParams = types.SearchParams{
		Query:      req.Query,
		MaxResults: req.MaxResults,
		StartYear:  startYear,
		EndYear:    endYear,
	}
	state.Papers = papers
	if err := h.sessions.Save(c, sessionID, state); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data: types.SearchPapersResponse{
			Papers: papers,
		},
	})
}

func (h *SearchHandler) HandleSelectPaper(c *gin.Context) {
	var req types.SelectPaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}

	sessionID := middleware.SessionID(c)
	state, err := h.sessions.Get(c, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}

	var paper *types.Paper
	for i := range state.Papers {
		if state.Papers[i].EntryID == req.EntryID {
			paper = &state.Papers[i]
			break
		}
	}
	if paper == nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  false,
			Message: "Paper not found in the current search results",
		})
		return
	}

	localPath, err := h.ingest.Ingest(c, state, paper)
	if err != nil {
		// Ingestion failure is reported inline; the search results
		// stay so the user can pick another paper.
		c.JSON(http.StatusBadGateway, types.DataResponse{
			Status:  false,
			Message: "Failed to ingest paper: " + err.Error(),
		})
		return
	}

	if err := h.sessions.Save(c, sessionID, state); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data: types.SelectPaperResponse{
			Paper:   *paper,
			PDFPath: localPath,
		},
	})
}
