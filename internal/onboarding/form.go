package onboarding

import (
	"strings"

	"github.com/mxchestnut/workshelf/pkg/models"
)

type Step int

const (
	StepAccount Step = iota
	StepProfile
	StepInterests
	stepCount
)

func (s Step) String() string {
	switch s {
	case StepAccount:
		return "account"
	case StepProfile:
		return "profile"
	case StepInterests:
		return "interests"
	}
	return "done"
}

// Form is the multi-step signup validator. Each step must validate before
// the form advances; errors are keyed by field name for inline display.
type Form struct {
	step Step

	Email           string
	Password        string
	ConfirmPassword string
	Username        string
	DisplayName     string
	Interests       []string
}

func NewForm() *Form {
	return &Form{step: StepAccount}
}

func (f *Form) Step() Step { return f.step }

// Done reports whether every step has validated.
func (f *Form) Done() bool { return f.step >= stepCount }

// Next validates the current step. A nil result means the form advanced;
// otherwise the map holds field-keyed error messages and the step is kept.
func (f *Form) Next() map[string]string {
	if f.Done() {
		return nil
	}

	errs := f.validate(f.step)
	if len(errs) > 0 {
		return errs
	}
	f.step++
	return nil
}

// Back returns to the previous step, keeping entered values.
func (f *Form) Back() {
	if f.step > StepAccount {
		f.step--
	}
}

func (f *Form) validate(step Step) map[string]string {
	errs := make(map[string]string)
	switch step {
	case StepAccount:
		if !validEmail(f.Email) {
			errs["email"] = "enter a valid email address"
		}
		if len(f.Password) < 8 {
			errs["password"] = "password must be at least 8 characters"
		} else if f.Password != f.ConfirmPassword {
			errs["confirm_password"] = "passwords do not match"
		}

	case StepProfile:
		if !validUsername(f.Username) {
			errs["username"] = "3-24 characters: lowercase letters, digits, underscores"
		}
		if strings.TrimSpace(f.DisplayName) == "" {
			errs["display_name"] = "display name is required"
		}

	case StepInterests:
		if len(f.Interests) == 0 {
			errs["interests"] = "pick at least one interest"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Request produces the registration payload once every step validated.
func (f *Form) Request() models.RegisterRequest {
	return models.RegisterRequest{
		Email:       strings.TrimSpace(f.Email),
		Password:    f.Password,
		Username:    f.Username,
		DisplayName: strings.TrimSpace(f.DisplayName),
		Interests:   f.Interests,
	}
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.LastIndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1 && !strings.ContainsAny(email, " \t")
}

func validUsername(username string) bool {
	if len(username) < 3 || len(username) > 24 {
		return false
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
