/*
Package handler provides the JSON API over the session's user directory.

The API mirrors the page actions: listing and filtering, create and update
through the validator, removal through the remote API, reload, the form draft,
the delete confirmation and the notification slot.
*/
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"userdir/internal/app/form"
	"userdir/internal/app/notify"
	"userdir/internal/app/session"
	"userdir/internal/app/user"
	"userdir/internal/pkg/errs"
	"userdir/internal/pkg/logx"
	"userdir/internal/pkg/req"
	"userdir/internal/pkg/resp"
)

// StateView is the session summary returned by GET /api/state.
type StateView struct {
	SessionID    string               `json:"sessionId"`
	Loading      bool                 `json:"loading"`
	UserCount    int                  `json:"userCount"`
	Query        string               `json:"query"`
	Deletion     session.Deletion     `json:"deletion"`
	Notification *notify.Notification `json:"notification"`
	Form         FormView             `json:"form"`
}

// FormView is the JSON rendition of the form draft.
type FormView struct {
	Mode   string            `json:"mode"`
	Draft  *user.Draft       `json:"draft,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func newFormJSON(snap form.Snapshot) FormView {
	v := FormView{Mode: snap.Mode.String(), Errors: snap.Errors}
	if snap.Open() {
		v.Draft = &snap.Draft
	}
	return v
}

// userIDParam parses the {id} URL parameter, writing the error response itself.
func userIDParam(w http.ResponseWriter, r *http.Request) (user.ID, bool) {
	id, err := user.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
		return 0, false
	}
	return id, true
}

// validateRecord runs the validator on u, writing a 422 with the failed fields
// when it is rejected.
func validateRecord(deps *AppDeps, w http.ResponseWriter, r *http.Request, u user.User) bool {
	result := user.Validate(user.Flatten(u), user.ValidationOptions{EnforceWebsite: deps.Config.ValidateWebsite})
	if result.Valid() {
		return true
	}

	resp.RespondErrorData(w, r, errs.NewError(errs.ErrValidationFailed), result.Failed())
	return false
}

// HandleGetState returns the session summary.
func HandleGetState(w http.ResponseWriter, r *http.Request) {
	s := SessionFromRequest(r)
	st := s.State

	resp.RespondSuccess(w, r, StateView{
		SessionID:    s.ID,
		Loading:      st.Store.Loading(),
		UserCount:    st.Store.Len(),
		Query:        st.Query(),
		Deletion:     st.Deletion(),
		Notification: st.Notifications.Current(),
		Form:         newFormJSON(st.Form.Snapshot()),
	})
}

// HandleListUsers returns the collection, filtered by q when given and by the
// session's query otherwise.
func HandleListUsers(w http.ResponseWriter, r *http.Request) {
	st := stateFromRequest(r)

	var users []user.User
	if query := r.URL.Query(); query.Has("q") {
		users = st.Store.Filtered(query.Get("q"))
	} else {
		users = st.Visible()
	}

	resp.RespondSuccess(w, r, map[string]any{
		"loading": st.Store.Loading(),
		"users":   users,
	})
}

// HandleGetUser returns one held record.
func HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}

	u, found := stateFromRequest(r).Store.Get(id)
	if !found {
		resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
		return
	}

	resp.RespondSuccess(w, r, u)
}

// HandleCreateUser validates and appends a record under a fresh id. A missing
// username is derived from the name.
func HandleCreateUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input user.User
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !validateRecord(deps, w, r, input) {
			return
		}

		input.ID = 0
		if input.Username == "" {
			input.Username = form.SuggestUsername(input.Name)
		}

		saved, _ := stateFromRequest(r).Store.Upsert(input)

		logx.FromRequest(r).Info().Stringer("user_id", saved.ID).Msg("User created via API")
		resp.RespondStatus(w, r, http.StatusCreated, saved)
	}
}

// HandleUpdateUser validates and replaces a held record in place.
func HandleUpdateUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := userIDParam(w, r)
		if !ok {
			return
		}

		var input user.User
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		st := stateFromRequest(r)
		current, found := st.Store.Get(id)
		if !found {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		if !validateRecord(deps, w, r, input) {
			return
		}

		input.ID = id
		if input.Username == "" {
			input.Username = current.Username
		}

		saved, _ := st.Store.Upsert(input)
		resp.RespondSuccess(w, r, saved)
	}
}

// HandleDeleteUser removes a held record through the remote API, without the
// confirmation step of the page.
func HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}

	st := stateFromRequest(r)
	if _, found := st.Store.Get(id); !found {
		resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
		return
	}

	if err := st.Store.Remove(context.WithoutCancel(r.Context()), id); err != nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrUserDeleteFailed))
		return
	}

	resp.RespondSuccess(w, r, map[string]any{"id": id})
}

// HandleReloadUsers replaces the collection with a fresh fetch.
func HandleReloadUsers(w http.ResponseWriter, r *http.Request) {
	st := stateFromRequest(r)

	if err := st.Store.Load(r.Context()); err != nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrUsersFetchFailed))
		return
	}

	resp.RespondSuccess(w, r, map[string]any{"userCount": st.Store.Len()})
}

// HandleGetNotification returns the visible notification, or null.
func HandleGetNotification(w http.ResponseWriter, r *http.Request) {
	resp.RespondSuccess(w, r, map[string]any{
		"notification": stateFromRequest(r).Notifications.Current(),
	})
}

// HandleDismissNotificationAPI closes the notification; seq=0 or no seq closes any.
func HandleDismissNotificationAPI(w http.ResponseWriter, r *http.Request) {
	var seq uint64
	if raw := r.URL.Query().Get("seq"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		seq = parsed
	}

	dismissed := stateFromRequest(r).Notifications.Dismiss(seq)
	resp.RespondSuccess(w, r, map[string]any{"dismissed": dismissed})
}

// OpenFormInput selects the form mode: an id opens it on that record, no id opens it empty.
type OpenFormInput struct {
	ID user.ID `json:"id,omitempty"`
}

// HandleOpenForm opens the form in create or edit mode.
func HandleOpenForm(w http.ResponseWriter, r *http.Request) {
	var input OpenFormInput
	if r.ContentLength != 0 {
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
	}

	st := stateFromRequest(r)
	if input.ID == 0 {
		st.Form.OpenCreate()
	} else if !st.EditUser(input.ID) {
		resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
		return
	}

	resp.RespondSuccess(w, r, newFormJSON(st.Form.Snapshot()))
}

// SetFieldInput is one field edit.
type SetFieldInput struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// HandleSetFormField edits one draft field and returns the draft, including
// the username derived from a name edit in create mode.
func HandleSetFormField(w http.ResponseWriter, r *http.Request) {
	var input SetFieldInput
	if customErr := req.BindJSON(w, r, &input); customErr != nil {
		resp.RespondError(w, r, customErr)
		return
	}

	st := stateFromRequest(r)
	if err := st.Form.SetField(input.Field, input.Value); err != nil {
		if errors.Is(err, form.ErrNotOpen) {
			resp.RespondError(w, r, errs.NewError(errs.ErrFormNotOpen))
			return
		}
		resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
		return
	}

	resp.RespondSuccess(w, r, newFormJSON(st.Form.Snapshot()))
}

// HandleSubmitFormAPI submits the draft. Rejections return 422 with the failed fields.
func HandleSubmitFormAPI(w http.ResponseWriter, r *http.Request) {
	saved, err := stateFromRequest(r).Form.Submit()

	var validationErr *form.ValidationError
	switch {
	case errors.As(err, &validationErr):
		resp.RespondErrorData(w, r, errs.NewError(errs.ErrValidationFailed), validationErr.Fields)
	case errors.Is(err, form.ErrNotOpen):
		resp.RespondError(w, r, errs.NewError(errs.ErrFormNotOpen))
	case err != nil:
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
	default:
		resp.RespondSuccess(w, r, saved)
	}
}

// HandleCloseForm discards the draft.
func HandleCloseForm(w http.ResponseWriter, r *http.Request) {
	st := stateFromRequest(r)
	st.Form.Close()
	resp.RespondSuccess(w, r, newFormJSON(st.Form.Snapshot()))
}

// StageDeletionInput names the record to confirm deletion for.
type StageDeletionInput struct {
	ID user.ID `json:"id"`
}

// HandleStageDeletionAPI stages a record for deletion.
func HandleStageDeletionAPI(w http.ResponseWriter, r *http.Request) {
	var input StageDeletionInput
	if customErr := req.BindJSON(w, r, &input); customErr != nil {
		resp.RespondError(w, r, customErr)
		return
	}
	if input.ID <= 0 {
		resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
		return
	}

	st := stateFromRequest(r)
	st.StageDeletion(input.ID)
	resp.RespondSuccess(w, r, st.Deletion())
}

// HandleConfirmDeletionAPI removes the staged record.
func HandleConfirmDeletionAPI(w http.ResponseWriter, r *http.Request) {
	id, err := stateFromRequest(r).ConfirmDeletion(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, session.ErrNothingStaged):
		resp.RespondError(w, r, errs.NewError(errs.ErrDeletionNotStaged))
	case err != nil:
		resp.RespondError(w, r, errs.NewError(errs.ErrUserDeleteFailed))
	default:
		resp.RespondSuccess(w, r, map[string]any{"id": id})
	}
}

// HandleCancelDeletionAPI drops the staged record.
func HandleCancelDeletionAPI(w http.ResponseWriter, r *http.Request) {
	st := stateFromRequest(r)
	if err := st.CancelDeletion(); err != nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrDeletionNotStaged))
		return
	}
	resp.RespondSuccess(w, r, st.Deletion())
}
