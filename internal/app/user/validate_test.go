package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validDraft() Draft {
	return Draft{
		Name:   "Jane Doe",
		Email:  "j@x.com",
		Phone:  "1234567890",
		Street: "Main",
		City:   "Metropolis",
	}
}

func TestValidate_ValidDraft(t *testing.T) {
	e := Validate(validDraft(), ValidationOptions{})

	assert.True(t, e.Valid())
	assert.Empty(t, e.Failed())
	for _, f := range []string{FieldName, FieldEmail, FieldPhone, FieldStreet, FieldCity, FieldCompanyName} {
		msg, ok := e[f]
		assert.True(t, ok, f)
		assert.Empty(t, msg, f)
	}
}

func TestValidate_NameLength(t *testing.T) {
	for n := 0; n < 8; n++ {
		d := validDraft()
		d.Name = strings.Repeat("a", n)

		e := Validate(d, ValidationOptions{})

		if n < 3 {
			assert.Equal(t, MsgNameTooShort, e[FieldName], "len %d", n)
			assert.False(t, e.Valid())
		} else {
			assert.Empty(t, e[FieldName], "len %d", n)
			assert.True(t, e.Valid())
		}
	}
}

func TestValidate_NameCountsRunes(t *testing.T) {
	d := validDraft()
	d.Name = "Zoë"

	assert.Empty(t, Validate(d, ValidationOptions{})[FieldName])
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Draft)
		field string
		want  string
	}{
		{"email missing at", func(d *Draft) { d.Email = "jx.com" }, FieldEmail, MsgEmailInvalid},
		{"email missing dot", func(d *Draft) { d.Email = "j@xcom" }, FieldEmail, MsgEmailInvalid},
		{"email empty", func(d *Draft) { d.Email = "" }, FieldEmail, MsgEmailInvalid},
		{"email with spaces around", func(d *Draft) { d.Email = "say j@x.com hi" }, FieldEmail, ""},
		{"phone nine digits", func(d *Draft) { d.Phone = "123456789" }, FieldPhone, MsgPhoneInvalid},
		{"phone eleven digits", func(d *Draft) { d.Phone = "12345678901" }, FieldPhone, MsgPhoneInvalid},
		{"phone with dashes", func(d *Draft) { d.Phone = "123-456-7890" }, FieldPhone, MsgPhoneInvalid},
		{"phone trailing newline", func(d *Draft) { d.Phone = "1234567890\n" }, FieldPhone, MsgPhoneInvalid},
		{"street empty", func(d *Draft) { d.Street = "" }, FieldStreet, MsgStreetRequired},
		{"city empty", func(d *Draft) { d.City = "" }, FieldCity, MsgCityRequired},
		{"company empty is fine", func(d *Draft) { d.CompanyName = "" }, FieldCompanyName, ""},
		{"company too short", func(d *Draft) { d.CompanyName = "AB" }, FieldCompanyName, MsgCompanyTooShort},
		{"company ok", func(d *Draft) { d.CompanyName = "ACME" }, FieldCompanyName, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mod(&d)

			e := Validate(d, ValidationOptions{})

			assert.Equal(t, tt.want, e[tt.field])
			assert.Equal(t, tt.want == "", e.Valid())
		})
	}
}

func TestValidate_WebsiteOffByDefault(t *testing.T) {
	d := validDraft()
	d.Website = "not a url"

	e := Validate(d, ValidationOptions{})

	assert.True(t, e.Valid())
	_, present := e[FieldWebsite]
	assert.False(t, present)
}

func TestValidate_WebsiteEnforced(t *testing.T) {
	opts := ValidationOptions{EnforceWebsite: true}

	for website, want := range map[string]string{
		"":                    "",
		"https://example.org": "",
		"http://a.b/c?d=e":    "",
		"example.org":         MsgWebsiteInvalid,
		"https://exa mple":    MsgWebsiteInvalid,
	} {
		d := validDraft()
		d.Website = website

		assert.Equal(t, want, Validate(d, opts)[FieldWebsite], website)
	}
}

func TestValidate_IsPure(t *testing.T) {
	d := validDraft()
	d.Name = "Al"

	first := Validate(d, ValidationOptions{})
	second := Validate(d, ValidationOptions{})

	assert.Equal(t, first, second)
	assert.Equal(t, "Al", d.Name)
}
