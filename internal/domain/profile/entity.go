// internal/domain/profile/entity.go
package profile

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrNotFound  = errors.New("profile: not found")
	ErrInvalidID = errors.New("profile: invalid uid")
)

// BirthDateLayout is the stored form of BirthDate.
const BirthDateLayout = "2006-01-02"

// Profile is the editable user profile stored per identity UID.
type Profile struct {
	Username  string `json:"username" firestore:"username"`
	FullName  string `json:"fullName" firestore:"fullName"`
	BirthDate string `json:"birthDate" firestore:"birthDate"`
	City      string `json:"city" firestore:"city"`
	Street    string `json:"street" firestore:"street"`
	PostCode  string `json:"postCode" firestore:"postCode"`
}

var postCodePattern = regexp.MustCompile(`^\d+$`)

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Message string
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "profile: invalid (" + strings.Join(parts, "; ") + ")"
}

// Normalize trims every field.
func (p Profile) Normalize() Profile {
	return Profile{
		Username:  strings.TrimSpace(p.Username),
		FullName:  strings.TrimSpace(p.FullName),
		BirthDate: strings.TrimSpace(p.BirthDate),
		City:      strings.TrimSpace(p.City),
		Street:    strings.TrimSpace(p.Street),
		PostCode:  strings.TrimSpace(p.PostCode),
	}
}

// Validate applies the edit form rules: every field required,
// birth date as YYYY-MM-DD, post code digits only.
func (p Profile) Validate() error {
	n := p.Normalize()
	var fe []FieldError

	req := func(field, v string) bool {
		if v == "" {
			fe = append(fe, FieldError{field, field + " is required"})
			return false
		}
		return true
	}

	req("username", n.Username)
	req("fullName", n.FullName)
	if req("birthDate", n.BirthDate) {
		if _, err := time.Parse(BirthDateLayout, n.BirthDate); err != nil {
			fe = append(fe, FieldError{"birthDate", "expected YYYY-MM-DD"})
		}
	}
	req("city", n.City)
	req("street", n.Street)
	if req("postCode", n.PostCode) && !postCodePattern.MatchString(n.PostCode) {
		fe = append(fe, FieldError{"postCode", "digits only"})
	}

	if len(fe) > 0 {
		return &ValidationError{Fields: fe}
	}
	return nil
}

// FormatBirthDate renders a picked date in the stored layout.
func FormatBirthDate(t time.Time) string {
	return t.Format(BirthDateLayout)
}
