package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// Handler handles signup and login requests
type Handler struct {
	svc *Service
}

// NewHandler creates a new auth handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type googleRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// Signup registers a local account
func (h *Handler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"message": "A valid email and password are required."})
		return
	}

	session, err := h.svc.Signup(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrPasswordAuthDisabled):
			c.JSON(403, gin.H{"message": "Please continue with Google to sign up."})
		case errors.Is(err, ErrReservedEmail):
			c.JSON(400, gin.H{"message": "This email is reserved. Please use a different one."})
		case errors.Is(err, ErrEmailTaken):
			c.JSON(409, gin.H{"message": "Email already registered."})
		default:
			c.JSON(500, gin.H{"message": "Could not create account."})
		}
		return
	}

	c.JSON(201, session)
}

// Login authenticates email/password credentials
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"message": "A valid email and password are required."})
		return
	}

	session, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrPasswordAuthDisabled):
			c.JSON(403, gin.H{"message": "Please continue with Google to log in."})
		case errors.Is(err, ErrInvalidCredentials):
			c.JSON(401, gin.H{"message": "Invalid credentials."})
		case errors.Is(err, ErrGoogleOnlyAccount):
			c.JSON(403, gin.H{"message": "This account uses Google sign-in. Please continue with Google."})
		case errors.Is(err, ErrBlocked):
			c.JSON(403, gin.H{"message": "Your account is blocked."})
		default:
			c.JSON(500, gin.H{"message": "Could not log in."})
		}
		return
	}

	c.JSON(200, session)
}

// Google authenticates a Google ID token
func (h *Handler) Google(c *gin.Context) {
	var req googleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"message": "Missing Google credential."})
		return
	}

	session, err := h.svc.GoogleLogin(req.Credential)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailNotVerified):
			c.JSON(403, gin.H{"message": "Google email is not verified."})
		case errors.Is(err, ErrGmailOnly):
			c.JSON(403, gin.H{"message": "Please use a Gmail account."})
		case errors.Is(err, ErrReservedEmail):
			c.JSON(403, gin.H{"message": "This email is reserved."})
		case errors.Is(err, ErrBlocked):
			c.JSON(403, gin.H{"message": "Your account is blocked."})
		default:
			c.JSON(401, gin.H{"message": "Google authentication failed."})
		}
		return
	}

	c.JSON(200, session)
}
