package accounts

import (
	"regexp"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	// NameMaxLength is the display name cap in characters
	NameMaxLength = 30
	// PasswordMinLength is the minimum secret length in characters
	PasswordMinLength = 8
)

// passwordPattern accepts one or more characters drawn only from
// letters, digits, underscore, and hyphen. Whitespace fails.
var passwordPattern = regexp.MustCompile(`\A[\w\-]+\z`)

// AccountPayload carries the attributes of a create or update request.
// Pointer fields distinguish "not supplied" from zero values: a nil
// password on update means leave unchanged, not clear.
type AccountPayload struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	Activated *bool   `json:"activated,omitempty"`
}

// ValidationContext tells the validator which rule set applies.
// Password presence is enforced for new records, and on update only
// when the caller supplies a new value.
type ValidationContext struct {
	IsNew bool
}

// Validate runs the field rules and collects every failing field into
// a validation.Errors map keyed by field name. Rules short-circuit per
// field: a blank value reports presence only, never a length or format
// error on top of it.
func (p AccountPayload) Validate(vctx ValidationContext) error {
	fields := make([]*validation.FieldRules, 0, 3)

	if vctx.IsNew || p.Name != nil {
		fields = append(fields, validation.Field(&p.Name,
			validation.By(requiredNonBlank),
			validation.By(maxChars(NameMaxLength)),
		))
	}

	if vctx.IsNew || p.Email != nil {
		fields = append(fields, validation.Field(&p.Email,
			validation.By(requiredNonBlank),
			validation.By(emailShaped),
		))
	}

	if vctx.IsNew || p.Password != nil {
		fields = append(fields, validation.Field(&p.Password,
			validation.By(requiredNonBlank),
			validation.By(minChars(PasswordMinLength)),
			validation.By(maxBytes(MaxPasswordLength)),
			validation.By(passwordCharset),
		))
	}

	return validation.ValidateStruct(&p, fields...)
}

// TouchesPassword reports whether the payload attempts to set a new
// secret.
func (p AccountPayload) TouchesPassword() bool {
	return p.Password != nil
}

func stringValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return "", false
}

func requiredNonBlank(value any) error {
	s, ok := stringValue(value)
	if !ok || strings.TrimSpace(s) == "" {
		return ErrMissingField
	}
	return nil
}

func maxChars(max int) validation.RuleFunc {
	return func(value any) error {
		s, ok := stringValue(value)
		if !ok {
			return nil
		}
		if utf8.RuneCountInString(s) > max {
			return ErrFieldTooLong
		}
		return nil
	}
}

func minChars(min int) validation.RuleFunc {
	return func(value any) error {
		s, ok := stringValue(value)
		if !ok {
			return nil
		}
		if utf8.RuneCountInString(s) < min {
			return ErrFieldTooShort
		}
		return nil
	}
}

// maxBytes guards the bcrypt input limit, which counts bytes rather
// than characters.
func maxBytes(max int) validation.RuleFunc {
	return func(value any) error {
		s, ok := stringValue(value)
		if !ok {
			return nil
		}
		if len(s) > max {
			return ErrFieldTooLong
		}
		return nil
	}
}

func emailShaped(value any) error {
	s, ok := stringValue(value)
	if !ok || s == "" {
		return nil
	}
	if err := is.Email.Validate(s); err != nil {
		return ErrInvalidFormat
	}
	return nil
}

func passwordCharset(value any) error {
	s, ok := stringValue(value)
	if !ok || s == "" {
		return nil
	}
	if !passwordPattern.MatchString(s) {
		return ErrInvalidPassword
	}
	return nil
}
