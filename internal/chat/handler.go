package chat

import (
	"errors"
	"log"
	"time"

	"companion-lite/internal/auth"

	"github.com/gin-gonic/gin"
)

// Handler handles chat HTTP requests
type Handler struct {
	svc          *Service
	historyLimit int
}

// NewHandler creates a new chat handler
func NewHandler(svc *Service, historyLimit int) *Handler {
	if historyLimit <= 0 {
		historyLimit = 200
	}
	return &Handler{svc: svc, historyLimit: historyLimit}
}

type sendRequest struct {
	Message string `json:"message" binding:"required"`
}

// Send handles POST /api/chat
func (h *Handler) Send(c *gin.Context) {
	ident, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(401, gin.H{"message": "Unauthorized"})
		return
	}
	if ident.Admin {
		c.JSON(403, gin.H{"message": "Admins cannot use chat."})
		return
	}

	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"message": "Message is required."})
		return
	}

	result, err := h.svc.PerformTurn(c.Request.Context(), ident.UserID, req.Message, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrMessageRequired):
			c.JSON(400, gin.H{"message": "Message is required."})
		case errors.Is(err, ErrUserNotFound):
			c.JSON(401, gin.H{"message": "User not found."})
		case errors.Is(err, ErrUserBlocked), errors.Is(err, ErrAdminNoChat):
			c.JSON(403, gin.H{"message": "Your account is blocked."})
		case errors.Is(err, ErrQuotaExceeded):
			c.JSON(429, gin.H{"message": "Daily message limit reached. Please come back tomorrow."})
		case errors.Is(err, ErrCompletionFailed):
			log.Printf("Chat completion error: %v", err)
			c.JSON(503, gin.H{"message": "AI is unavailable right now. Please try again soon."})
		default:
			log.Printf("Chat error: %v", err)
			c.JSON(500, gin.H{"message": "Something went wrong."})
		}
		return
	}

	c.JSON(200, result)
}

// History handles GET /api/chat/history
func (h *Handler) History(c *gin.Context) {
	ident, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(401, gin.H{"message": "Unauthorized"})
		return
	}
	if ident.Admin {
		c.JSON(403, gin.H{"message": "Admins do not have chat history."})
		return
	}

	messages, err := h.svc.GetHistory(ident.UserID, h.historyLimit)
	if err != nil {
		log.Printf("History error: %v", err)
		c.JSON(500, gin.H{"message": "Could not load chat history."})
		return
	}
	if messages == nil {
		messages = []Message{}
	}

	c.JSON(200, gin.H{"messages": messages})
}
