package portalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/you/cyberportal/domain"
)

// Client talks to the remote complaint/auth API. It owns nothing but
// the wire contract: nested payload shapes are unwrapped here and the
// rest of the gateway only ever sees domain types and sentinel errors.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a portal API client. baseURL is the API root
// including the version prefix, e.g. "https://api.example.org/api/v1".
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type wireUser struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Phone string `json:"phone"`
}

func (u *wireUser) account() domain.Account {
	return domain.Account{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  domain.ParseRole(u.Role),
		Phone: u.Phone,
	}
}

type wireComplaint struct {
	ID          string    `json:"_id"`
	Category    string    `json:"category"`
	ApproxDate  string    `json:"approxDate"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (c *wireComplaint) complaint() domain.Complaint {
	return domain.Complaint{
		ID:          c.ID,
		Category:    c.Category,
		ApproxDate:  c.ApproxDate,
		Description: c.Description,
		Status:      c.Status,
		Comment:     c.Comment,
		CreatedAt:   c.CreatedAt,
	}
}

// Login implements domain.PortalAPI. The success payload nests the
// account and token one level down: {success, user: {user: {...}, token}}.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthPayload, error) {
	var resp struct {
		Success bool `json:"success"`
		User    struct {
			User  *wireUser `json:"user"`
			Token string    `json:"token"`
		} `json:"user"`
	}
	err := c.postJSON(ctx, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, domain.ErrInvalidCredentials
	}
	if resp.User.User == nil || resp.User.Token == "" {
		return nil, domain.ErrMalformedResponse
	}
	return &domain.AuthPayload{
		Account: resp.User.User.account(),
		Token:   resp.User.Token,
	}, nil
}

// Register implements domain.PortalAPI. A success response without the
// nested newUser record is treated as a failure, not papered over.
func (c *Client) Register(ctx context.Context, name, email, phone, password string) (*domain.AuthPayload, error) {
	var resp struct {
		Success bool `json:"success"`
		User    struct {
			NewUser *wireUser `json:"newUser"`
			Token   string    `json:"token"`
		} `json:"user"`
	}
	err := c.postJSON(ctx, "/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"phone":    phone,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, domain.ErrRegistrationRejected
	}
	if resp.User.NewUser == nil || resp.User.Token == "" {
		return nil, domain.ErrMalformedResponse
	}
	return &domain.AuthPayload{
		Account: resp.User.NewUser.account(),
		Token:   resp.User.Token,
	}, nil
}

// ForgotPassword implements domain.PortalAPI
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.postJSON(ctx, "/auth/forgot-password", "", map[string]string{"email": email}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return domain.ErrMalformedResponse
	}
	return nil
}

// Profile implements domain.PortalAPI
func (c *Client) Profile(ctx context.Context, token string) (*domain.Account, error) {
	var resp struct {
		Success bool      `json:"success"`
		User    *wireUser `json:"user"`
	}
	if err := c.getJSON(ctx, "/auth/", token, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.User == nil {
		return nil, domain.ErrMalformedResponse
	}
	account := resp.User.account()
	return &account, nil
}

// UpdateProfile implements domain.PortalAPI
func (c *Client) UpdateProfile(ctx context.Context, token, name, email, phone string) (*domain.Account, error) {
	var resp struct {
		Success bool      `json:"success"`
		User    *wireUser `json:"user"`
	}
	err := c.postJSON(ctx, "/auth/update", token, map[string]string{
		"name":  name,
		"email": email,
		"phone": phone,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.User == nil {
		return nil, domain.ErrMalformedResponse
	}
	account := resp.User.account()
	return &account, nil
}

// UploadComplaint implements domain.PortalAPI. The complaint and any
// supporting document are forwarded verbatim as multipart file parts.
func (c *Client) UploadComplaint(ctx context.Context, token string, up *domain.ComplaintUpload) (*domain.Complaint, error) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	if err := writeFilePart(form, "complain", up.Complaint); err != nil {
		return nil, err
	}
	if len(up.ExtraDoc.Data) > 0 {
		if err := writeFilePart(form, "extraDoc", up.ExtraDoc); err != nil {
			return nil, err
		}
	}
	for field, value := range map[string]string{
		"category":    up.Category,
		"approxDate":  up.ApproxDate,
		"description": up.Description,
	} {
		if err := form.WriteField(field, value); err != nil {
			return nil, fmt.Errorf("failed to build upload form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/complain/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var resp struct {
		Success   bool           `json:"success"`
		Complaint *wireComplaint `json:"complain"`
	}
	if err := c.do(req, token, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Complaint == nil {
		return nil, domain.ErrMalformedResponse
	}
	complaint := resp.Complaint.complaint()
	return &complaint, nil
}

// ComplaintByID implements domain.PortalAPI
func (c *Client) ComplaintByID(ctx context.Context, token, id string) (*domain.Complaint, error) {
	var resp struct {
		Success   bool           `json:"success"`
		Complaint *wireComplaint `json:"complain"`
	}
	err := c.getJSON(ctx, "/complain/getById/"+url.PathEscape(id), token, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.Complaint == nil {
		return nil, domain.ErrComplaintNotFound
	}
	complaint := resp.Complaint.complaint()
	return &complaint, nil
}

// FactCheck implements domain.PortalAPI
func (c *Client) FactCheck(ctx context.Context, token, content string) (*domain.FactCheckResult, error) {
	var resp struct {
		Success bool   `json:"success"`
		Safe    bool   `json:"safe"`
		Reason  string `json:"reason"`
	}
	if err := c.postJSON(ctx, "/factcheck", token, map[string]string{"content": content}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, domain.ErrMalformedResponse
	}
	return &domain.FactCheckResult{Safe: resp.Safe, Reason: resp.Reason}, nil
}

// AdminComplaints implements domain.PortalAPI
func (c *Client) AdminComplaints(ctx context.Context, token string, f domain.ComplaintFilter) ([]domain.Complaint, error) {
	q := url.Values{}
	q.Set("complainId", f.ComplaintID)
	q.Set("status", f.Status)
	q.Set("category", f.Category)

	var resp struct {
		Success    bool            `json:"success"`
		Complaints []wireComplaint `json:"admin"`
	}
	if err := c.getJSON(ctx, "/admin/?"+q.Encode(), token, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, domain.ErrMalformedResponse
	}
	out := make([]domain.Complaint, 0, len(resp.Complaints))
	for i := range resp.Complaints {
		out = append(out, resp.Complaints[i].complaint())
	}
	return out, nil
}

// AdminUpdateComplaint implements domain.PortalAPI
func (c *Client) AdminUpdateComplaint(ctx context.Context, token string, u domain.ComplaintUpdate) (*domain.Complaint, error) {
	var resp struct {
		Success   bool           `json:"success"`
		Complaint *wireComplaint `json:"admin"`
	}
	err := c.postJSON(ctx, "/admin/update", token, map[string]string{
		"complainId": u.ComplaintID,
		"status":     u.Status,
		"comment":    u.Comment,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.Complaint == nil {
		return nil, domain.ErrMalformedResponse
	}
	complaint := resp.Complaint.complaint()
	return &complaint, nil
}

// AdminAnalytics implements domain.PortalAPI
func (c *Client) AdminAnalytics(ctx context.Context, token string) (*domain.Analytics, error) {
	var resp struct {
		Success   bool `json:"success"`
		Analytics struct {
			Total      int            `json:"total"`
			Pending    int            `json:"pending"`
			Resolved   int            `json:"resolved"`
			ByCategory map[string]int `json:"byCategory"`
		} `json:"admin"`
	}
	if err := c.getJSON(ctx, "/admin/analytics", token, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, domain.ErrMalformedResponse
	}
	return &domain.Analytics{
		TotalComplaints: resp.Analytics.Total,
		Pending:         resp.Analytics.Pending,
		Resolved:        resp.Analytics.Resolved,
		ByCategory:      resp.Analytics.ByCategory,
	}, nil
}

// SendAdminOTP implements domain.PortalAPI
func (c *Client) SendAdminOTP(ctx context.Context, email string) error {
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.postJSON(ctx, "/auth/admin/otp/send", "", map[string]string{"email": email}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return domain.ErrMalformedResponse
	}
	return nil
}

// VerifyAdminOTP implements domain.PortalAPI
func (c *Client) VerifyAdminOTP(ctx context.Context, email, code string) error {
	var resp struct {
		Success bool `json:"success"`
	}
	err := c.postJSON(ctx, "/auth/admin/otp/verify", "", map[string]any{
		"email": email,
		"otp":   code,
	}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return domain.ErrOTPInvalid
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path, token string, payload any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, token, out)
}

func (c *Client) getJSON(ctx context.Context, path, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, token, out)
}

func (c *Client) do(req *http.Request, token string, out any) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}

func statusError(code int, body []byte) error {
	var failure struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &failure)

	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, failure.Message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrComplaintNotFound, failure.Message)
	default:
		return fmt.Errorf("%w: status %d %s", domain.ErrBackendUnavailable, code, failure.Message)
	}
}

func writeFilePart(form *multipart.Writer, field string, att domain.Attachment) error {
	name := att.Name
	if name == "" {
		name = field
	}
	part, err := form.CreateFormFile(field, name)
	if err != nil {
		return fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(att.Data); err != nil {
		return fmt.Errorf("failed to write %s part: %w", field, err)
	}
	return nil
}

var _ domain.PortalAPI = (*Client)(nil)
