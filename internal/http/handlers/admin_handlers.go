package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/cyberportal/domain"
	"github.com/you/cyberportal/internal/http/middleware"
	"github.com/you/cyberportal/internal/services"
)

// AdminHandlers serves the admin review screens and the three-step
// admin sign-in wizard.
type AdminHandlers struct {
	api domain.PortalAPI
}

// NewAdminHandlers creates the admin page handlers.
func NewAdminHandlers(api domain.PortalAPI) *AdminHandlers {
	return &AdminHandlers{api: api}
}

func (h *AdminHandlers) wizard(c *gin.Context) *services.Wizard {
	return services.NewWizard(middleware.Storage(c), h.api)
}

// WizardState reports the visitor's current sign-in step.
func (h *AdminHandlers) WizardState(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"step": h.wizard(c).State(c.Request.Context())})
}

// WizardBeginRequest carries the admin id step.
type WizardBeginRequest struct {
	Email string `form:"email" json:"email" binding:"required,email"`
}

// WizardBegin verifies the admin id and sends the OTP.
func (h *AdminHandlers) WizardBegin(c *gin.Context) {
	var req WizardBeginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.wizard(c).Begin(ctx, req.Email); err != nil {
		if errors.Is(err, domain.ErrWizardBadTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": "Sign-in already past this step"})
			return
		}
		log.Printf("ADMIN_OTP_SEND_FAILED: email=%s error=%v", req.Email, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send OTP"})
		return
	}

	middleware.Notifier(c).Success(ctx, "OTP sent to your registered email")
	respond(c, http.StatusOK, gin.H{"step": services.StateAwaitingOTP})
}

// WizardVerifyRequest carries the OTP step.
type WizardVerifyRequest struct {
	OTP string `form:"otp" json:"otp" binding:"required,len=6"`
}

// WizardVerifyOTP submits the six-digit code.
func (h *AdminHandlers) WizardVerifyOTP(c *gin.Context) {
	var req WizardVerifyRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter the complete 6-digit OTP"})
		return
	}

	ctx := c.Request.Context()
	if err := h.wizard(c).VerifyOTP(ctx, req.OTP); err != nil {
		if errors.Is(err, domain.ErrWizardBadTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": "No OTP is pending for this visitor"})
			return
		}
		log.Printf("ADMIN_OTP_VERIFY_FAILED: error=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "OTP verification failed"})
		return
	}

	middleware.Notifier(c).Success(ctx, "OTP verified successfully")
	respond(c, http.StatusOK, gin.H{"step": services.StateAwaitingPassword})
}

// WizardPasswordRequest carries the final password step.
type WizardPasswordRequest struct {
	Password string `form:"password" json:"password" binding:"required"`
}

// WizardComplete finishes the wizard with a normal session login for
// the admin id captured at the first step.
func (h *AdminHandlers) WizardComplete(c *gin.Context) {
	var req WizardPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	wizard := h.wizard(c)
	email, err := wizard.PendingLogin(ctx)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Verify your admin id and OTP first"})
		return
	}

	sess := middleware.Session(c)
	if err := sess.Login(ctx, email, req.Password); errors.Is(err, domain.ErrOperationInFlight) {
		c.JSON(http.StatusConflict, gin.H{"error": "Another sign-in attempt is already in progress"})
		return
	}

	if sess.IsAuthenticated(ctx) {
		if err := wizard.Reset(ctx); err != nil {
			log.Printf("WIZARD_RESET_FAILED: error=%v", err)
		}
	}
	if c.Writer.Written() {
		return // redirected to /admin
	}
	// Wrong password keeps the wizard at the password step.
	respond(c, http.StatusUnauthorized, gin.H{"step": services.StateAwaitingPassword})
}

// Dashboard renders the admin landing page with the analytics summary.
func (h *AdminHandlers) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	sess := middleware.Session(c)

	analytics, err := h.api.AdminAnalytics(ctx, sess.Token(ctx))
	if err != nil {
		log.Printf("ADMIN_ANALYTICS_FAILED: error=%v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load analytics"})
		return
	}

	respond(c, http.StatusOK, gin.H{
		"total":      analytics.TotalComplaints,
		"pending":    analytics.Pending,
		"resolved":   analytics.Resolved,
		"byCategory": analytics.ByCategory,
	})
}

// Cases lists complaints filtered by id, status and category.
func (h *AdminHandlers) Cases(c *gin.Context) {
	ctx := c.Request.Context()
	sess := middleware.Session(c)

	complaints, err := h.api.AdminComplaints(ctx, sess.Token(ctx), domain.ComplaintFilter{
		ComplaintID: c.Query("complainId"),
		Status:      c.Query("status"),
		Category:    c.Query("category"),
	})
	if err != nil {
		log.Printf("ADMIN_CASES_FAILED: error=%v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load cases"})
		return
	}

	out := make([]gin.H, 0, len(complaints))
	for _, cp := range complaints {
		out = append(out, gin.H{
			"caseId":   cp.ID,
			"category": cp.Category,
			"status":   cp.Status,
			"comment":  cp.Comment,
			"filedAt":  cp.CreatedAt,
		})
	}
	respond(c, http.StatusOK, gin.H{"cases": out})
}

// UpdateCaseRequest carries an admin status transition.
type UpdateCaseRequest struct {
	ComplaintID string `form:"complainId" json:"complainId" binding:"required"`
	Status      string `form:"status" json:"status" binding:"required"`
	Comment     string `form:"comment" json:"comment"`
}

// UpdateCase applies a status transition to a complaint.
func (h *AdminHandlers) UpdateCase(c *gin.Context) {
	var req UpdateCaseRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	sess := middleware.Session(c)
	updated, err := h.api.AdminUpdateComplaint(ctx, sess.Token(ctx), domain.ComplaintUpdate{
		ComplaintID: req.ComplaintID,
		Status:      req.Status,
		Comment:     req.Comment,
	})
	if err != nil {
		log.Printf("ADMIN_CASE_UPDATE_FAILED: caseId=%s error=%v", req.ComplaintID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to update case"})
		return
	}

	log.Printf("CASE_STATUS_UPDATED: caseId=%s status=%s", updated.ID, updated.Status)
	middleware.Notifier(c).Success(ctx, "Case updated successfully!")
	respond(c, http.StatusOK, gin.H{"caseId": updated.ID, "status": updated.Status, "comment": updated.Comment})
}
