package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/cyberportal/domain"
	"github.com/you/cyberportal/internal/http/middleware"
)

// AuthHandlers exposes the session lifecycle as portal routes. The
// handlers stay thin: validation here, everything else in the session
// store. A store operation that succeeds ends in a redirect written by
// the store's navigator; when no redirect was written the operation
// failed and the handler reports the queued failure notice.
type AuthHandlers struct{}

// NewAuthHandlers creates the auth page handlers.
func NewAuthHandlers() *AuthHandlers {
	return &AuthHandlers{}
}

// LoginRequest carries the login form.
type LoginRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
}

// RegisterRequest carries the registration form.
type RegisterRequest struct {
	Name     string `form:"name" json:"name" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Mobile   string `form:"mobile" json:"mobile" binding:"required"`
	Password string `form:"password" json:"password" binding:"required,min=6"`
}

// ForgotPasswordRequest carries the reset-request form.
type ForgotPasswordRequest struct {
	Email string `form:"email" json:"email" binding:"required,email"`
}

// LoginPage renders the login route.
func (h *AuthHandlers) LoginPage(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"page": "login"})
}

// Login handles the login form submission.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := middleware.Session(c).Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, domain.ErrOperationInFlight) {
		c.JSON(http.StatusConflict, gin.H{"error": "Another sign-in attempt is already in progress"})
		return
	}
	if c.Writer.Written() {
		return // redirected to the role landing page
	}
	respond(c, http.StatusUnauthorized, gin.H{"page": "login"})
}

// RegisterPage renders the registration route.
func (h *AuthHandlers) RegisterPage(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"page": "register"})
}

// Register handles the registration form submission.
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := middleware.Session(c).Register(c.Request.Context(), req.Name, req.Email, req.Mobile, req.Password)
	if errors.Is(err, domain.ErrOperationInFlight) {
		c.JSON(http.StatusConflict, gin.H{"error": "Another registration attempt is already in progress"})
		return
	}
	if c.Writer.Written() {
		return
	}
	respond(c, http.StatusUnprocessableEntity, gin.H{"page": "register"})
}

// ForgotPasswordPage renders the reset-request route.
func (h *AuthHandlers) ForgotPasswordPage(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"page": "forgot-password"})
}

// ForgotPassword handles the reset-request form submission.
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := middleware.Session(c).ForgotPassword(c.Request.Context(), req.Email)
	if errors.Is(err, domain.ErrOperationInFlight) {
		c.JSON(http.StatusConflict, gin.H{"error": "A reset request is already in progress"})
		return
	}
	if c.Writer.Written() {
		return
	}
	respond(c, http.StatusBadGateway, gin.H{"page": "forgot-password"})
}

// Logout clears the session and sends the visitor home.
func (h *AuthHandlers) Logout(c *gin.Context) {
	middleware.Session(c).Logout(c.Request.Context())
}
