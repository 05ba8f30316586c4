package domain

import "context"

// SessionStorage is the durable key-value state of a single visitor.
// Get returns ErrKeyNotFound for absent keys.
type SessionStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// StorageProvider hands out the storage namespace for one visitor.
type StorageProvider interface {
	Visitor(id string) SessionStorage
}

// PortalAPI is the remote complaint/auth backend. All real work
// (credential checks, OTP issuance, complaint storage, analytics)
// happens behind it; this side only holds the session.
type PortalAPI interface {
	Login(ctx context.Context, email, password string) (*AuthPayload, error)
	Register(ctx context.Context, name, email, phone, password string) (*AuthPayload, error)
	ForgotPassword(ctx context.Context, email string) error

	Profile(ctx context.Context, token string) (*Account, error)
	UpdateProfile(ctx context.Context, token, name, email, phone string) (*Account, error)

	UploadComplaint(ctx context.Context, token string, up *ComplaintUpload) (*Complaint, error)
	ComplaintByID(ctx context.Context, token, id string) (*Complaint, error)
	FactCheck(ctx context.Context, token, content string) (*FactCheckResult, error)

	AdminComplaints(ctx context.Context, token string, f ComplaintFilter) ([]Complaint, error)
	AdminUpdateComplaint(ctx context.Context, token string, u ComplaintUpdate) (*Complaint, error)
	AdminAnalytics(ctx context.Context, token string) (*Analytics, error)

	SendAdminOTP(ctx context.Context, email string) error
	VerifyAdminOTP(ctx context.Context, email, code string) error
}

// Notifier queues transient user-visible notices for the visitor.
// Delivery failures are non-fatal and must not propagate.
type Notifier interface {
	Success(ctx context.Context, message string)
	Error(ctx context.Context, message string)
	Info(ctx context.Context, message string)
	// Drain returns the queued notices and clears the queue.
	Drain(ctx context.Context) []Flash
}

// Navigator performs a route change on behalf of the session store.
type Navigator interface {
	Navigate(path string)
}
