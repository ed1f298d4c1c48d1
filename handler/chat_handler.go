package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tieubaoca/arxchive-be/middleware"
	"github.com/tieubaoca/arxchive-be/repository"
	"github.com/tieubaoca/arxchive-be/service"
	"github.com/tieubaoca/arxchive-be/types"
)

type ChatHandler struct {
	chat     *service.ChatService
	ws       *service.WebSocketService
	sessions repository.SessionStore
}

func NewChatHandler(chat *service.ChatService, ws *service.WebSocketService, sessions repository.SessionStore) *ChatHandler {
	return &ChatHandler{
		chat:     chat,
		ws:       ws,
		sessions: sessions,
	}
}

func (h *ChatHandler) HandleAsk(c *gin.Context) {
	var req types.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}
	if req.Question == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Question is required",
		})
		return
	}

	message, err := h.chat.Ask(c, middleware.SessionID(c), req.Question)
	if err != nil {
		if errors.Is(err, service.ErrNoActivePaper) {
			c.JSON(http.StatusConflict, types.DataResponse{
				Status:  false,
				Message: err.Error(),
			})
			return
		}
		// The user turn is already recorded; retry is resubmitting.
		c.JSON(http.StatusBadGateway, types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data: types.AskResponse{
			Message: *message,
		},
	})
}

func (h *ChatHandler) HandleReset(c *gin.Context) {
	if err := h.chat.Reset(c, middleware.SessionID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
	})
}

func (h *ChatHandler) HandleHistory(c *gin.Context) {
	state, err := h.sessions.Get(c, middleware.SessionID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data: types.HistoryResponse{
			Paper:    state.CurrentPaper,
			Messages: state.Messages,
		},
	})
}

func (h *ChatHandler) HandleWebsocket(c *gin.Context) {
	h.ws.HandleChat(c.Writer, c.Request, middleware.SessionID(c))
}
