/*
Package form implements the create/edit form controller.

A Controller holds at most one draft record. Opening in create mode starts from
empty fields, opening in edit mode flattens an existing record. Submitting
validates the draft and, when valid, hands the reassembled record to the store
and closes the form.
*/
package form

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"userdir/internal/app/user"
)

// UsernamePrefix is prepended to every suggested username.
const UsernamePrefix = "USER-"

// Mode tells whether the draft creates a new record or edits an existing one.
type Mode int

const (
	ModeClosed Mode = iota
	ModeCreate
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	}
	return "closed"
}

var (
	// ErrNotOpen is returned when editing or submitting a closed form.
	ErrNotOpen = errors.New("form is not open")

	// ErrUnknownField is returned for field names the draft does not have.
	ErrUnknownField = errors.New("unknown form field")

	// ErrReadOnlyField is returned when setting the derived username directly.
	ErrReadOnlyField = errors.New("field is read-only")
)

// ValidationError carries the per-field messages of a rejected submission.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// Upserter receives valid records. *store.Store satisfies it.
type Upserter interface {
	Upsert(u user.User) (user.User, bool)
}

// Controller manages the draft record and its field errors.
type Controller struct {
	mu     sync.Mutex
	mode   Mode
	draft  user.Draft
	errors user.Errors

	target Upserter
	opts   user.ValidationOptions
}

// NewController returns a closed form submitting to target.
func NewController(target Upserter, opts user.ValidationOptions) *Controller {
	return &Controller{target: target, opts: opts}
}

// SuggestUsername derives the username for name: lowercased, whitespace removed,
// prefixed with UsernamePrefix.
func SuggestUsername(name string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
	return UsernamePrefix + strings.ToLower(stripped)
}

// OpenCreate opens the form with every field empty, discarding any previous draft.
func (c *Controller) OpenCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = ModeCreate
	c.draft = user.Draft{}
	c.errors = nil
}

// OpenEdit opens the form on u, flattening its address and company.
func (c *Controller) OpenEdit(u user.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = ModeEdit
	c.draft = user.Flatten(u)
	c.errors = nil
}

// Close discards the draft.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Controller) reset() {
	c.mode = ModeClosed
	c.draft = user.Draft{}
	c.errors = nil
}

// SetField updates one field. Editing the name in create mode also re-derives
// the username via Suggest. The username itself cannot be set.
func (c *Controller) SetField(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setField(field, value)
}

func (c *Controller) setField(field, value string) error {
	if c.mode == ModeClosed {
		return ErrNotOpen
	}
	if field == user.FieldUsername {
		return ErrReadOnlyField
	}
	if !c.draft.Set(field, value) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if field == user.FieldName && c.mode == ModeCreate {
		c.suggest()
	}
	return nil
}

// suggest writes the derived username into the draft. Caller holds mu.
func (c *Controller) suggest() {
	c.draft.Username = SuggestUsername(c.draft.Name)
}

// Apply sets every changed field in values, in the draft's field order, so the
// name-driven suggestion runs exactly when the name actually changed. Unknown
// and read-only fields are ignored.
func (c *Controller) Apply(values map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == ModeClosed {
		return ErrNotOpen
	}

	for _, field := range editableFields {
		value, ok := values[field]
		if !ok {
			continue
		}
		if current, _ := c.draft.Get(field); current == value {
			continue
		}
		if err := c.setField(field, value); err != nil {
			return err
		}
	}
	return nil
}

var editableFields = []string{
	user.FieldName,
	user.FieldEmail,
	user.FieldPhone,
	user.FieldStreet,
	user.FieldCity,
	user.FieldCompanyName,
	user.FieldWebsite,
}

// Submit validates the draft. With any field error the submission is aborted,
// the draft kept and a *ValidationError returned. Otherwise the reassembled
// record goes to the store's Upsert and the form closes.
func (c *Controller) Submit() (user.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == ModeClosed {
		return user.User{}, ErrNotOpen
	}

	c.errors = user.Validate(c.draft, c.opts)
	if !c.errors.Valid() {
		return user.User{}, &ValidationError{Fields: c.errors.Failed()}
	}

	saved, _ := c.target.Upsert(c.draft.Record())
	c.reset()
	return saved, nil
}

// Snapshot is a read-only copy of the form state for rendering.
type Snapshot struct {
	Mode   Mode
	Draft  user.Draft
	Errors map[string]string
}

// Open reports whether a draft is being edited.
func (s Snapshot) Open() bool { return s.Mode != ModeClosed }

// Editing reports whether the draft edits an existing record.
func (s Snapshot) Editing() bool { return s.Mode == ModeEdit }

// Snapshot copies the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{Mode: c.mode, Draft: c.draft}
	if c.errors != nil {
		s.Errors = c.errors.Failed()
	}
	return s
}
