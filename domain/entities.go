package domain

import "time"

// Account is the in-memory projection of the signed-in user, rebuilt
// from the bearer token claims on every session initialization.
type Account struct {
	ID    string
	Name  string
	Email string
	Role  Role
	Phone string
}

// AuthPayload is the outcome of a successful login or registration
// call against the portal API.
type AuthPayload struct {
	Account Account
	Token   string
}

// Attachment is a file forwarded with a complaint submission.
type Attachment struct {
	Name string
	Data []byte
}

// ComplaintUpload carries a new complaint to the portal API.
type ComplaintUpload struct {
	Category    string
	ApproxDate  string
	Description string
	Complaint   Attachment
	ExtraDoc    Attachment
}

// Complaint represents a filed complaint record
type Complaint struct {
	ID          string
	Category    string
	ApproxDate  string
	Description string
	Status      string
	Comment     string
	CreatedAt   time.Time
}

// ComplaintFilter narrows the admin case listing
type ComplaintFilter struct {
	ComplaintID string
	Status      string
	Category    string
}

// ComplaintUpdate is an admin status transition on a complaint
type ComplaintUpdate struct {
	ComplaintID string
	Status      string
	Comment     string
}

// Analytics is the admin dashboard summary reported by the portal API.
type Analytics struct {
	TotalComplaints int
	Pending         int
	Resolved        int
	ByCategory      map[string]int
}

// FactCheckResult is the verdict for a fact-checker submission
type FactCheckResult struct {
	Safe   bool
	Reason string
}

// FlashLevel classifies a transient user-visible notice.
type FlashLevel string

const (
	FlashSuccess FlashLevel = "success"
	FlashError   FlashLevel = "error"
	FlashInfo    FlashLevel = "info"
)

// Flash is a queued notice shown to the visitor on the next render.
type Flash struct {
	Level   FlashLevel `json:"level"`
	Message string     `json:"message"`
}
