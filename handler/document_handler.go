package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/tieubaoca/arxchive-be/types"
)

// DocumentHandler streams stored paper PDFs back to the client.
type DocumentHandler struct {
	filesDir string
}

func NewDocumentHandler(filesDir string) *DocumentHandler {
	return &DocumentHandler{
		filesDir: filesDir,
	}
}

func (h *DocumentHandler) ServeDocument(c *gin.Context) {
	requestedName := c.Query("file")
	if requestedName == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "File parameter is required",
		})
		return
	}

	// Reject path traversal and anything that is not a PDF.
	if filepath.Base(requestedName) != requestedName || filepath.Ext(requestedName) != ".pdf" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Only PDF files are allowed",
		})
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s", requestedName))
	c.File(filepath.Join(h.filesDir, requestedName))
}
