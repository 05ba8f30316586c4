package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/you/cyberportal/domain"
)

// WizardState is one step of the admin login wizard.
type WizardState string

const (
	StateEnteringID       WizardState = "entering_id"
	StateAwaitingOTP      WizardState = "awaiting_otp"
	StateAwaitingPassword WizardState = "awaiting_password"
)

const wizardKey = "admin_wizard"

// Wizard drives the three-step admin sign-in: admin id -> OTP ->
// password. The current step is persisted in the visitor's storage and
// advances only on a successful portal API response; there is no retry
// or backoff logic, a failed step simply leaves the state where it was.
type Wizard struct {
	storage domain.SessionStorage
	api     domain.PortalAPI
}

type wizardRecord struct {
	State WizardState `json:"state"`
	Email string      `json:"email"`
}

// NewWizard binds a wizard to one visitor's storage.
func NewWizard(storage domain.SessionStorage, api domain.PortalAPI) *Wizard {
	return &Wizard{storage: storage, api: api}
}

// State returns the visitor's current wizard step. A visitor with no
// stored record is at the first step.
func (w *Wizard) State(ctx context.Context) WizardState {
	rec, err := w.load(ctx)
	if err != nil {
		return StateEnteringID
	}
	return rec.State
}

// Email returns the admin id captured at the first step.
func (w *Wizard) Email(ctx context.Context) string {
	rec, err := w.load(ctx)
	if err != nil {
		return ""
	}
	return rec.Email
}

// Begin submits the admin id and asks the portal API to send an OTP.
// Valid only from the first step.
func (w *Wizard) Begin(ctx context.Context, email string) error {
	if w.State(ctx) != StateEnteringID {
		return domain.ErrWizardBadTransition
	}
	if err := w.api.SendAdminOTP(ctx, email); err != nil {
		return err
	}
	return w.save(ctx, wizardRecord{State: StateAwaitingOTP, Email: email})
}

// VerifyOTP submits the code for the pending admin id. Valid only while
// awaiting the OTP.
func (w *Wizard) VerifyOTP(ctx context.Context, code string) error {
	rec, err := w.load(ctx)
	if err != nil || rec.State != StateAwaitingOTP {
		return domain.ErrWizardBadTransition
	}
	if err := w.api.VerifyAdminOTP(ctx, rec.Email, code); err != nil {
		return err
	}
	rec.State = StateAwaitingPassword
	return w.save(ctx, rec)
}

// PendingLogin returns the admin id once the wizard has reached the
// password step; the caller finishes with a normal session login.
func (w *Wizard) PendingLogin(ctx context.Context) (string, error) {
	rec, err := w.load(ctx)
	if err != nil || rec.State != StateAwaitingPassword {
		return "", domain.ErrWizardBadTransition
	}
	return rec.Email, nil
}

// Reset discards the wizard state, returning the visitor to the first
// step. Called after a completed login or an abandoned attempt.
func (w *Wizard) Reset(ctx context.Context) error {
	return w.storage.Delete(ctx, wizardKey)
}

func (w *Wizard) load(ctx context.Context) (wizardRecord, error) {
	raw, err := w.storage.Get(ctx, wizardKey)
	if err != nil {
		return wizardRecord{State: StateEnteringID}, err
	}
	var rec wizardRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return wizardRecord{State: StateEnteringID}, fmt.Errorf("corrupt wizard state: %w", err)
	}
	return rec, nil
}

func (w *Wizard) save(ctx context.Context, rec wizardRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode wizard state: %w", err)
	}
	return w.storage.Set(ctx, wizardKey, string(data))
}
