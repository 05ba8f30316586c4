package mocks

import (
	"context"

	"github.com/you/cyberportal/domain"
)

// MockPortalAPI implements domain.PortalAPI for testing. Defaults
// reject everything, so tests only wire the calls they expect.
type MockPortalAPI struct {
	LoginFunc          func(ctx context.Context, email, password string) (*domain.AuthPayload, error)
	RegisterFunc       func(ctx context.Context, name, email, phone, password string) (*domain.AuthPayload, error)
	ForgotPasswordFunc func(ctx context.Context, email string) error

	ProfileFunc       func(ctx context.Context, token string) (*domain.Account, error)
	UpdateProfileFunc func(ctx context.Context, token, name, email, phone string) (*domain.Account, error)

	UploadComplaintFunc func(ctx context.Context, token string, up *domain.ComplaintUpload) (*domain.Complaint, error)
	ComplaintByIDFunc   func(ctx context.Context, token, id string) (*domain.Complaint, error)
	FactCheckFunc       func(ctx context.Context, token, content string) (*domain.FactCheckResult, error)

	AdminComplaintsFunc      func(ctx context.Context, token string, f domain.ComplaintFilter) ([]domain.Complaint, error)
	AdminUpdateComplaintFunc func(ctx context.Context, token string, u domain.ComplaintUpdate) (*domain.Complaint, error)
	AdminAnalyticsFunc       func(ctx context.Context, token string) (*domain.Analytics, error)

	SendAdminOTPFunc   func(ctx context.Context, email string) error
	VerifyAdminOTPFunc func(ctx context.Context, email, code string) error
}

// NewMockPortalAPI creates a new MockPortalAPI.
func NewMockPortalAPI() *MockPortalAPI {
	return &MockPortalAPI{}
}

// Login authenticates against the mock backend.
func (m *MockPortalAPI) Login(ctx context.Context, email, password string) (*domain.AuthPayload, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, domain.ErrInvalidCredentials
}

// Register creates an account against the mock backend.
func (m *MockPortalAPI) Register(ctx context.Context, name, email, phone, password string) (*domain.AuthPayload, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, name, email, phone, password)
	}
	return nil, domain.ErrRegistrationRejected
}

// ForgotPassword starts a reset flow.
func (m *MockPortalAPI) ForgotPassword(ctx context.Context, email string) error {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, email)
	}
	return nil
}

// Profile fetches the profile.
func (m *MockPortalAPI) Profile(ctx context.Context, token string) (*domain.Account, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, token)
	}
	return nil, domain.ErrBackendUnavailable
}

// UpdateProfile edits the profile.
func (m *MockPortalAPI) UpdateProfile(ctx context.Context, token, name, email, phone string) (*domain.Account, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, token, name, email, phone)
	}
	return nil, domain.ErrBackendUnavailable
}

// UploadComplaint files a complaint.
func (m *MockPortalAPI) UploadComplaint(ctx context.Context, token string, up *domain.ComplaintUpload) (*domain.Complaint, error) {
	if m.UploadComplaintFunc != nil {
		return m.UploadComplaintFunc(ctx, token, up)
	}
	return nil, domain.ErrBackendUnavailable
}

// ComplaintByID looks up a complaint.
func (m *MockPortalAPI) ComplaintByID(ctx context.Context, token, id string) (*domain.Complaint, error) {
	if m.ComplaintByIDFunc != nil {
		return m.ComplaintByIDFunc(ctx, token, id)
	}
	return nil, domain.ErrComplaintNotFound
}

// FactCheck submits content for verification.
func (m *MockPortalAPI) FactCheck(ctx context.Context, token, content string) (*domain.FactCheckResult, error) {
	if m.FactCheckFunc != nil {
		return m.FactCheckFunc(ctx, token, content)
	}
	return nil, domain.ErrBackendUnavailable
}

// AdminComplaints lists complaints.
func (m *MockPortalAPI) AdminComplaints(ctx context.Context, token string, f domain.ComplaintFilter) ([]domain.Complaint, error) {
	if m.AdminComplaintsFunc != nil {
		return m.AdminComplaintsFunc(ctx, token, f)
	}
	return nil, domain.ErrBackendUnavailable
}

// AdminUpdateComplaint applies a status transition.
func (m *MockPortalAPI) AdminUpdateComplaint(ctx context.Context, token string, u domain.ComplaintUpdate) (*domain.Complaint, error) {
	if m.AdminUpdateComplaintFunc != nil {
		return m.AdminUpdateComplaintFunc(ctx, token, u)
	}
	return nil, domain.ErrBackendUnavailable
}

// AdminAnalytics fetches the dashboard summary.
func (m *MockPortalAPI) AdminAnalytics(ctx context.Context, token string) (*domain.Analytics, error) {
	if m.AdminAnalyticsFunc != nil {
		return m.AdminAnalyticsFunc(ctx, token)
	}
	return nil, domain.ErrBackendUnavailable
}

// SendAdminOTP asks for an admin OTP.
func (m *MockPortalAPI) SendAdminOTP(ctx context.Context, email string) error {
	if m.SendAdminOTPFunc != nil {
		return m.SendAdminOTPFunc(ctx, email)
	}
	return nil
}

// VerifyAdminOTP verifies an admin OTP.
func (m *MockPortalAPI) VerifyAdminOTP(ctx context.Context, email, code string) error {
	if m.VerifyAdminOTPFunc != nil {
		return m.VerifyAdminOTPFunc(ctx, email, code)
	}
	return domain.ErrOTPInvalid
}

// Compile-time interface compliance verification
var _ domain.PortalAPI = (*MockPortalAPI)(nil)
