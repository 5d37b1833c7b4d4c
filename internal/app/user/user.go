/*
Package user defines the user directory record and the pure functions over it:
field validation of draft records and the search filter.
*/
package user

import (
	"fmt"
	"strconv"
)

// ID identifies a record. Zero means no identifier has been assigned yet.
type ID int64

// String renders the identifier in decimal, as used in routes.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses a positive decimal identifier taken from a route or form value.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse user id %q: %w", s, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("parse user id %q: must be positive", s)
	}
	return ID(v), nil
}

// Address is the postal part of a record.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

// Company is the employer part of a record.
type Company struct {
	Name string `json:"name"`
}

// User is a directory record. JSON names follow the remote API schema; fields the
// remote API sends beyond these are ignored.
type User struct {
	ID       ID      `json:"id"`
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Address  Address `json:"address"`
	Company  Company `json:"company"`
	Website  string  `json:"website"`
}

// Field names of a draft record, as used in forms and validation results.
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldUsername    = "username"
	FieldStreet      = "street"
	FieldCity        = "city"
	FieldCompanyName = "companyName"
	FieldWebsite     = "website"
)

// Draft is the flat, editable form of a record: address and company are
// flattened into Street, City and CompanyName.
type Draft struct {
	ID          ID     `json:"id,omitempty"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Username    string `json:"username"`
	Street      string `json:"street"`
	City        string `json:"city"`
	CompanyName string `json:"companyName"`
	Website     string `json:"website"`
}

// Flatten returns the draft for editing u.
func Flatten(u User) Draft {
	return Draft{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Username:    u.Username,
		Street:      u.Address.Street,
		City:        u.Address.City,
		CompanyName: u.Company.Name,
		Website:     u.Website,
	}
}

// Record reassembles the nested record from the draft.
func (d Draft) Record() User {
	return User{
		ID:       d.ID,
		Name:     d.Name,
		Username: d.Username,
		Email:    d.Email,
		Phone:    d.Phone,
		Address:  Address{Street: d.Street, City: d.City},
		Company:  Company{Name: d.CompanyName},
		Website:  d.Website,
	}
}

// Get returns the value of the named field and whether the name is known.
func (d Draft) Get(field string) (string, bool) {
	switch field {
	case FieldName:
		return d.Name, true
	case FieldEmail:
		return d.Email, true
	case FieldPhone:
		return d.Phone, true
	case FieldUsername:
		return d.Username, true
	case FieldStreet:
		return d.Street, true
	case FieldCity:
		return d.City, true
	case FieldCompanyName:
		return d.CompanyName, true
	case FieldWebsite:
		return d.Website, true
	}
	return "", false
}

// Set assigns the named field and reports whether the name is known.
func (d *Draft) Set(field, value string) bool {
	switch field {
	case FieldName:
		d.Name = value
	case FieldEmail:
		d.Email = value
	case FieldPhone:
		d.Phone = value
	case FieldUsername:
		d.Username = value
	case FieldStreet:
		d.Street = value
	case FieldCity:
		d.City = value
	case FieldCompanyName:
		d.CompanyName = value
	case FieldWebsite:
		d.Website = value
	default:
		return false
	}
	return true
}
