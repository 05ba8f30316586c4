package handlers

import (
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/cyberportal/domain"
	"github.com/you/cyberportal/internal/http/middleware"
)

// PortalHandlers serves the signed-in user's pages: dashboard, profile,
// complaint filing, case status and the fact checker. Each one is a
// straight form-to-API binding with the visitor's bearer token
// attached.
type PortalHandlers struct {
	api domain.PortalAPI
}

// NewPortalHandlers creates the user page handlers.
func NewPortalHandlers(api domain.PortalAPI) *PortalHandlers {
	return &PortalHandlers{api: api}
}

// Dashboard renders the user landing page.
func (h *PortalHandlers) Dashboard(c *gin.Context) {
	sess := middleware.Session(c)
	data := gin.H{"page": "dashboard"}
	if account := sess.Account(); account != nil {
		data["user"] = gin.H{
			"id":    account.ID,
			"name":  account.Name,
			"email": account.Email,
			"phone": account.Phone,
		}
	}
	respond(c, http.StatusOK, data)
}

// Profile fetches the visitor's profile from the portal API.
func (h *PortalHandlers) Profile(c *gin.Context) {
	sess := middleware.Session(c)
	account, err := h.api.Profile(c.Request.Context(), sess.Token(c.Request.Context()))
	if err != nil {
		log.Printf("PROFILE_FETCH_FAILED: error=%v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load profile"})
		return
	}
	respond(c, http.StatusOK, gin.H{
		"id":    account.ID,
		"name":  account.Name,
		"email": account.Email,
		"phone": account.Phone,
	})
}

// UpdateProfileRequest carries the profile edit form.
type UpdateProfileRequest struct {
	Name  string `form:"name" json:"name" binding:"required"`
	Email string `form:"email" json:"email" binding:"required,email"`
	Phone string `form:"phone" json:"phone" binding:"required"`
}

// UpdateProfile forwards a profile edit to the portal API.
func (h *PortalHandlers) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := middleware.Session(c)
	account, err := h.api.UpdateProfile(c.Request.Context(), sess.Token(c.Request.Context()), req.Name, req.Email, req.Phone)
	if err != nil {
		log.Printf("PROFILE_UPDATE_FAILED: error=%v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to update profile"})
		return
	}

	middleware.Notifier(c).Success(c.Request.Context(), "Profile updated successfully!")
	respond(c, http.StatusOK, gin.H{
		"id":    account.ID,
		"name":  account.Name,
		"email": account.Email,
		"phone": account.Phone,
	})
}

// ReportCrimePage renders the complaint form.
func (h *PortalHandlers) ReportCrimePage(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"page": "report-crime"})
}

// ReportCrime forwards a new complaint (multipart, with the complaint
// document and an optional supporting document) to the portal API.
func (h *PortalHandlers) ReportCrime(c *gin.Context) {
	category := c.PostForm("category")
	approxDate := c.PostForm("approxDate")
	description := c.PostForm("description")
	if category == "" || description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category and description are required"})
		return
	}

	complaint, err := readAttachment(c, "complain")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "complaint document is required"})
		return
	}
	extraDoc, err := readAttachment(c, "extraDoc")
	if err != nil {
		extraDoc = domain.Attachment{} // supporting document is optional
	}

	sess := middleware.Session(c)
	filed, err := h.api.UploadComplaint(c.Request.Context(), sess.Token(c.Request.Context()), &domain.ComplaintUpload{
		Category:    category,
		ApproxDate:  approxDate,
		Description: description,
		Complaint:   complaint,
		ExtraDoc:    extraDoc,
	})
	if err != nil {
		log.Printf("COMPLAINT_UPLOAD_FAILED: category=%s error=%v", category, err)
		middleware.Notifier(c).Error(c.Request.Context(), "Failed to submit complaint. Please try again.")
		respond(c, http.StatusBadGateway, gin.H{"page": "report-crime"})
		return
	}

	middleware.Notifier(c).Success(c.Request.Context(), "Complaint submitted successfully!")
	respond(c, http.StatusCreated, gin.H{"caseId": filed.ID, "status": filed.Status})
}

// CaseStatus looks up a complaint by its case number.
func (h *PortalHandlers) CaseStatus(c *gin.Context) {
	caseID := c.Query("caseId")
	if caseID == "" {
		respond(c, http.StatusOK, gin.H{"page": "case-status"})
		return
	}

	sess := middleware.Session(c)
	complaint, err := h.api.ComplaintByID(c.Request.Context(), sess.Token(c.Request.Context()), caseID)
	if err != nil {
		log.Printf("CASE_LOOKUP_FAILED: caseId=%s error=%v", caseID, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
		return
	}

	respond(c, http.StatusOK, gin.H{
		"caseId":      complaint.ID,
		"category":    complaint.Category,
		"status":      complaint.Status,
		"comment":     complaint.Comment,
		"description": complaint.Description,
		"filedAt":     complaint.CreatedAt,
	})
}

// FactCheckerPage renders the fact checker form.
func (h *PortalHandlers) FactCheckerPage(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"page": "fact-checker"})
}

// FactCheckRequest carries the fact checker form.
type FactCheckRequest struct {
	Content string `form:"content" json:"content" binding:"required"`
}

// FactCheck submits content for verification.
func (h *PortalHandlers) FactCheck(c *gin.Context) {
	var req FactCheckRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := middleware.Session(c)
	result, err := h.api.FactCheck(c.Request.Context(), sess.Token(c.Request.Context()), req.Content)
	if err != nil {
		log.Printf("FACT_CHECK_FAILED: error=%v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Fact check failed. Please try again."})
		return
	}

	respond(c, http.StatusOK, gin.H{"safe": result.Safe, "reason": result.Reason})
}

func readAttachment(c *gin.Context, field string) (domain.Attachment, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return domain.Attachment{}, err
	}
	file, err := header.Open()
	if err != nil {
		return domain.Attachment{}, err
	}
	defer closeQuietly(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.Attachment{}, err
	}
	return domain.Attachment{Name: header.Filename, Data: data}, nil
}

func closeQuietly(f multipart.File) {
	_ = f.Close()
}
