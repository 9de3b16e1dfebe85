package handler

import (
	"strings"
	"time"

	"caregate/internal/lifecycle/models"
	"caregate/internal/lifecycle/service"
	dErrors "caregate/pkg/domain-errors"
)

const (
	maxFieldLength = 320
	maxLicenses    = 32
	maxReasons     = 16
)

// RegisterCandidateRequest is the body of POST /admin/candidates.
type RegisterCandidateRequest struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Password       string   `json:"password"`
	Licenses       []string `json:"licenses"`
	Specialization string   `json:"specialization"`
}

func (r *RegisterCandidateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if err := checkLengths(r.Name, r.Email, r.Phone, r.Password, r.Specialization); err != nil {
		return err
	}
	if len(r.Licenses) > maxLicenses {
		return dErrors.New(dErrors.CodeValidation, "too many licenses")
	}
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	return nil
}

func (r *RegisterCandidateRequest) toService() service.RegisterCandidateRequest {
	return service.RegisterCandidateRequest{
		Name:           r.Name,
		Email:          r.Email,
		Phone:          r.Phone,
		Password:       r.Password,
		Licenses:       r.Licenses,
		Specialization: r.Specialization,
	}
}

// RejectCandidateRequest is the body of POST /admin/candidates/{id}/reject.
type RejectCandidateRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectCandidateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	return checkLengths(r.Reason)
}

// SuspendRequest is the body of POST /admin/providers/{id}/suspend.
// Duration is a Go duration string ("168h"); omit it for an indefinite suspension.
type SuspendRequest struct {
	Reasons  []string       `json:"reasons"`
	Severity string         `json:"severity"`
	Start    *time.Time     `json:"start,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Impact   *models.Impact `json:"impact,omitempty"`

	parsedDuration *time.Duration
}

func (r *SuspendRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Reasons) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one reason is required")
	}
	if len(r.Reasons) > maxReasons {
		return dErrors.New(dErrors.CodeValidation, "too many reasons")
	}
	if err := checkLengths(r.Reasons...); err != nil {
		return err
	}
	if d := strings.TrimSpace(r.Duration); d != "" {
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeValidation, "duration must be a duration like 72h")
		}
		r.parsedDuration = &parsed
	}
	return nil
}

func (r *SuspendRequest) toDetails() models.SuspensionDetails {
	return models.SuspensionDetails{
		Severity: models.Severity(strings.ToLower(strings.TrimSpace(r.Severity))),
		Reasons:  r.Reasons,
		Start:    r.Start,
		Duration: r.parsedDuration,
		Impact:   r.Impact,
	}
}

// CredentialsRequest is the body of POST /admin/blacklist/check.
type CredentialsRequest struct {
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Licenses []string `json:"licenses"`
}

func (r *CredentialsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Licenses) > maxLicenses {
		return dErrors.New(dErrors.CodeValidation, "too many licenses")
	}
	return checkLengths(r.Email, r.Phone)
}

func (r *CredentialsRequest) credentials() models.CredentialSet {
	return models.NewCredentialSet(r.Email, r.Phone, r.Licenses)
}

// AddBlacklistEntryRequest is the body of POST /admin/blacklist.
type AddBlacklistEntryRequest struct {
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Licenses  []string   `json:"licenses"`
	Note      string     `json:"note"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (r *AddBlacklistEntryRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Licenses) > maxLicenses {
		return dErrors.New(dErrors.CodeValidation, "too many licenses")
	}
	if err := checkLengths(r.Email, r.Phone, r.Note); err != nil {
		return err
	}
	if models.NewCredentialSet(r.Email, r.Phone, r.Licenses).IsEmpty() {
		return dErrors.New(dErrors.CodeValidation, "email, phone or license is required")
	}
	return nil
}

func (r *AddBlacklistEntryRequest) toService() service.AddBlacklistEntryRequest {
	return service.AddBlacklistEntryRequest{
		Email:     r.Email,
		Phone:     r.Phone,
		Licenses:  r.Licenses,
		Note:      strings.TrimSpace(r.Note),
		ExpiresAt: r.ExpiresAt,
	}
}

func checkLengths(values ...string) error {
	for _, v := range values {
		if len(v) > maxFieldLength {
			return dErrors.New(dErrors.CodeValidation, "field exceeds maximum length")
		}
	}
	return nil
}
