package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xavierca1/lead-engine/internal/entity"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is returned when an input has one or more invalid fields.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

var (
	internationalPhone = regexp.MustCompile(`^\+?998\d{9}$`)
	nationalPhone      = regexp.MustCompile(`^\d{9}$`)
)

// Closed option sets offered as buttons during registration.
var (
	Goals   = []string{"JLPT", "Sayohat", "Ish", "Anime", "Boshqa"}
	Levels  = []string{"0", "Beginner", "N5", "N4", "N3+"}
	Sources = []string{"Instagram", "Facebook", "Telegram", "Boshqa"}
)

const maxNameLength = 100

// NormalizePhone keeps digits and a leading plus sign.
func NormalizePhone(raw string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '+' && sb.Len() == 0:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// IsValidPhone accepts a national 9-digit number or 998 followed by 9 digits,
// with or without the plus. The input must already be normalized.
func IsValidPhone(phone string) bool {
	return internationalPhone.MatchString(phone) || nationalPhone.MatchString(phone)
}

func IsOption(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

func ValidateName(name string) *ValidationError {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{"name", "is required"}
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return &ValidationError{"name", "must not exceed 100 characters"}
	}
	return nil
}

func ValidateRegisterLeadInput(input RegisterLeadInput) ValidationErrors {
	var errs ValidationErrors

	if input.UserID == 0 {
		errs = append(errs, ValidationError{"tg_id", "is required"})
	}
	if err := ValidateName(input.Name); err != nil {
		errs = append(errs, *err)
	}

	phone := NormalizePhone(input.Phone)
	if phone == "" {
		errs = append(errs, ValidationError{"phone", "is required"})
	} else if !IsValidPhone(phone) {
		errs = append(errs, ValidationError{"phone", "must be +998XXXXXXXXX or a 9-digit number"})
	}

	if !IsOption(Goals, input.Goal) {
		errs = append(errs, ValidationError{"goal", "must be one of the offered options"})
	}
	if !IsOption(Levels, input.Level) {
		errs = append(errs, ValidationError{"level", "must be one of the offered options"})
	}
	if !IsOption(Sources, input.Source) {
		errs = append(errs, ValidationError{"source", "must be one of the offered options"})
	}

	return errs
}

func ValidateProof(proof entity.Proof) ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(proof.FileID) == "" {
		errs = append(errs, ValidationError{"proof_file_id", "is required"})
	}
	if proof.Kind != entity.ProofPhoto && proof.Kind != entity.ProofDocument {
		errs = append(errs, ValidationError{"proof_type", "must be photo or document"})
	}
	return errs
}
