package admin

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"companion-lite/internal/quota"
	"companion-lite/internal/user"

	"github.com/gin-gonic/gin"
)

// Handler handles the administrative API
type Handler struct {
	users   *user.Storage
	tracker *quota.Tracker
}

// NewHandler creates a new admin handler
func NewHandler(users *user.Storage, tracker *quota.Tracker) *Handler {
	return &Handler{users: users, tracker: tracker}
}

// Overview returns site-wide usage numbers
func (h *Handler) Overview(c *gin.Context) {
	overview, err := h.tracker.GetOverview(time.Now())
	if err != nil {
		log.Printf("Admin overview error: %v", err)
		c.JSON(500, gin.H{"message": "Could not load admin overview."})
		return
	}

	c.JSON(200, overview)
}

// Usage returns per-day user message counts for the last week
func (h *Handler) Usage(c *gin.Context) {
	counts, err := h.tracker.GetDailyCounts(time.Now(), 7)
	if err != nil {
		log.Printf("Admin usage error: %v", err)
		c.JSON(500, gin.H{"message": "Could not load usage."})
		return
	}
	if counts == nil {
		counts = []quota.DailyCount{}
	}

	c.JSON(200, gin.H{"days": counts})
}

type userRow struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	MessagesUsedToday int       `json:"messagesUsedToday"`
	LastResetDate     time.Time `json:"lastResetDate"`
	IsBlocked         bool      `json:"isBlocked"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ListUsers returns all registered users, newest first
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.users.List()
	if err != nil {
		log.Printf("Admin users error: %v", err)
		c.JSON(500, gin.H{"message": "Could not load users."})
		return
	}

	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, userRow{
			ID:                u.ID,
			Email:             u.Email,
			MessagesUsedToday: u.MessagesUsedToday,
			LastResetDate:     u.LastResetDate,
			IsBlocked:         u.IsBlocked,
			CreatedAt:         u.CreatedAt,
		})
	}

	c.JSON(200, gin.H{"users": rows})
}

type blockRequest struct {
	IsBlocked *bool `json:"isBlocked" binding:"required"`
}

// SetBlocked handles PATCH /api/admin/users/:id/block
func (h *Handler) SetBlocked(c *gin.Context) {
	id := c.Param("id")

	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"message": "isBlocked is required."})
		return
	}

	u, err := h.users.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(404, gin.H{"message": "User not found."})
			return
		}
		log.Printf("Admin block error: %v", err)
		c.JSON(500, gin.H{"message": "Could not update user."})
		return
	}

	if err := h.users.SetBlocked(u.ID, *req.IsBlocked); err != nil {
		log.Printf("Admin block error: %v", err)
		c.JSON(500, gin.H{"message": "Could not update user."})
		return
	}

	c.JSON(200, gin.H{
		"user": gin.H{
			"id":                u.ID,
			"email":             u.Email,
			"isBlocked":         *req.IsBlocked,
			"messagesUsedToday": u.MessagesUsedToday,
		},
	})
}

// Health returns liveness status
func (h *Handler) Health(c *gin.Context) {
	if err := h.users.DB().Ping(); err != nil {
		c.JSON(503, gin.H{"status": "degraded"})
		return
	}
	c.JSON(200, gin.H{"status": "ok"})
}
