package user

import (
	"regexp"
	"unicode/utf8"
)

var (
	// emailShape matches local@domain.tld anywhere in the value.
	emailShape = regexp.MustCompile(`\S+@\S+\.\S+`)

	phoneShape   = regexp.MustCompile(`^\d{10}$`)
	websiteShape = regexp.MustCompile(`^(http|https)://[^ "]+$`)
)

// Validation messages.
const (
	MsgNameTooShort    = "Name must be at least 3 characters"
	MsgEmailInvalid    = "Email is not valid"
	MsgPhoneInvalid    = "Phone must be 10 digits"
	MsgStreetRequired  = "Street is required"
	MsgCityRequired    = "City is required"
	MsgCompanyTooShort = "Company name must be at least 3 characters"
	MsgWebsiteInvalid  = "Website must be a valid URL"
)

// ValidationOptions switches optional rules.
type ValidationOptions struct {
	// EnforceWebsite turns on the website URL rule. Off by default: any website is accepted.
	EnforceWebsite bool
}

// Errors maps a field name to its message. An empty message means the field is valid.
type Errors map[string]string

// Valid reports whether every message is empty.
func (e Errors) Valid() bool {
	for _, msg := range e {
		if msg != "" {
			return false
		}
	}
	return true
}

// Failed returns only the fields carrying a message.
func (e Errors) Failed() map[string]string {
	out := make(map[string]string)
	for field, msg := range e {
		if msg != "" {
			out[field] = msg
		}
	}
	return out
}

// Validate checks d against the field rules. Every rule contributes an entry,
// empty when the field passes.
func Validate(d Draft, opts ValidationOptions) Errors {
	e := Errors{
		FieldName:        "",
		FieldEmail:       "",
		FieldPhone:       "",
		FieldStreet:      "",
		FieldCity:        "",
		FieldCompanyName: "",
	}

	if utf8.RuneCountInString(d.Name) < 3 {
		e[FieldName] = MsgNameTooShort
	}
	if !emailShape.MatchString(d.Email) {
		e[FieldEmail] = MsgEmailInvalid
	}
	if !phoneShape.MatchString(d.Phone) {
		e[FieldPhone] = MsgPhoneInvalid
	}
	if d.Street == "" {
		e[FieldStreet] = MsgStreetRequired
	}
	if d.City == "" {
		e[FieldCity] = MsgCityRequired
	}
	if d.CompanyName != "" && utf8.RuneCountInString(d.CompanyName) < 3 {
		e[FieldCompanyName] = MsgCompanyTooShort
	}

	if opts.EnforceWebsite {
		e[FieldWebsite] = ""
		if d.Website != "" && !websiteShape.MatchString(d.Website) {
			e[FieldWebsite] = MsgWebsiteInvalid
		}
	}

	return e
}
