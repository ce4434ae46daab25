// Package validation checks the registration and login forms. Every rule
// of a form runs on each submission, so the caller gets all failing fields
// at once.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf16"
)

// Field ids as used by the forms and their <field>-error slots.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm-password"
)

const (
	MinNameLength     = 2
	MinPasswordLength = 6
)

const (
	MsgNameTooShort     = "Name must be at least 2 characters"
	MsgInvalidEmail     = "Enter a valid email"
	MsgPasswordTooShort = "Password must be at least 6 characters"
	MsgPasswordMismatch = "Passwords do not match"
	MsgPasswordRequired = "Enter your password"
)

// emailPattern treats the same characters as whitespace as a browser does:
// RE2's \s alone misses \v, NBSP and the other Unicode space separators.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

// Errors maps a field id to its message. A nil or empty Errors means the
// form is valid.
type Errors map[string]string

func (e Errors) Valid() bool { return len(e) == 0 }

func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e Errors) add(field, msg string) Errors {
	if e == nil {
		e = make(Errors)
	}
	e[field] = msg
	return e
}

type Registration struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Normalize trims name and email. Passwords are taken as typed.
func (r Registration) Normalize() Registration {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	return r
}

func ValidateRegistration(r Registration) Errors {
	r = r.Normalize()

	var errs Errors
	if textLength(r.Name) < MinNameLength {
		errs = errs.add(FieldName, MsgNameTooShort)
	}
	if !ValidEmail(r.Email) {
		errs = errs.add(FieldEmail, MsgInvalidEmail)
	}
	if textLength(r.Password) < MinPasswordLength {
		errs = errs.add(FieldPassword, MsgPasswordTooShort)
	}
	if r.Password != r.ConfirmPassword {
		errs = errs.add(FieldConfirmPassword, MsgPasswordMismatch)
	}
	return errs
}

type Login struct {
	Email    string
	Password string
}

func (l Login) Normalize() Login {
	l.Email = strings.TrimSpace(l.Email)
	return l
}

// ValidateLogin only checks the shape of the input. There is no account
// lookup: any well-formed email with a non-empty password signs in.
func ValidateLogin(l Login) Errors {
	l = l.Normalize()

	var errs Errors
	if !ValidEmail(l.Email) {
		errs = errs.add(FieldEmail, MsgInvalidEmail)
	}
	if l.Password == "" {
		errs = errs.add(FieldPassword, MsgPasswordRequired)
	}
	return errs
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// textLength counts UTF-16 code units, the length a browser reports for a
// form value. Characters outside the BMP count as two.
func textLength(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}
