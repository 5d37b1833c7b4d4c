/*
Package handler provides the server-rendered pages of the user directory.

Every page action is a plain form POST that changes the session state and
redirects back to the list (post/redirect/get), so the browser's history only
holds GET pages.
*/
package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"userdir/internal/app/form"
	"userdir/internal/app/session"
	"userdir/internal/app/user"
	"userdir/internal/pkg/logx"
	"userdir/internal/pkg/req"
	"userdir/internal/pkg/resp"
)

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleListPage renders the table. A q parameter replaces the session's search query.
func HandleListPage(w http.ResponseWriter, r *http.Request) {
	st := stateFromRequest(r)

	if query := r.URL.Query(); query.Has("q") {
		st.SetQuery(query.Get("q"))
	}

	render(w, r, http.StatusOK, "list.html", newListPage(st))
}

// HandleDetailPage renders one record. Unknown and malformed ids render "User not found".
func HandleDetailPage(w http.ResponseWriter, r *http.Request) {
	st := stateFromRequest(r)
	page := detailPage{Notification: st.Notifications.Current()}

	if id, err := user.ParseID(chi.URLParam(r, "id")); err == nil {
		if u, ok := st.Store.Get(id); ok {
			page.User = &u
		}
	}

	status := http.StatusOK
	if page.User == nil {
		status = http.StatusNotFound
	}
	render(w, r, status, "detail.html", page)
}

// HandleOpenCreateForm opens an empty form.
func HandleOpenCreateForm(w http.ResponseWriter, r *http.Request) {
	stateFromRequest(r).Form.OpenCreate()
	redirectHome(w, r)
}

// HandleOpenEditForm opens the form on a held record.
func HandleOpenEditForm(w http.ResponseWriter, r *http.Request) {
	id, err := user.ParseID(chi.URLParam(r, "id"))
	if err != nil || !stateFromRequest(r).EditUser(id) {
		logx.FromRequest(r).Warn().Str("id", chi.URLParam(r, "id")).Msg("Edit requested for unknown user")
	}
	redirectHome(w, r)
}

// HandleSubmitForm applies the posted fields to the draft and submits it. A
// rejected submission re-renders the list with the form still open and the
// per-field messages shown.
func HandleSubmitForm(w http.ResponseWriter, r *http.Request) {
	if customErr := req.ParseForm(w, r); customErr != nil {
		resp.RespondError(w, r, customErr)
		return
	}

	st := stateFromRequest(r)

	values := make(map[string]string, len(r.PostForm))
	for field := range r.PostForm {
		values[field] = r.PostForm.Get(field)
	}

	if err := st.Form.Apply(values); err != nil {
		logx.FromRequest(r).Warn().Err(err).Msg("Form submission without an open form")
		redirectHome(w, r)
		return
	}

	saved, err := st.Form.Submit()
	var validationErr *form.ValidationError
	switch {
	case errors.As(err, &validationErr):
		render(w, r, http.StatusUnprocessableEntity, "list.html", newListPage(st))
		return
	case err != nil:
		logx.FromRequest(r).Warn().Err(err).Msg("Form submission failed")
	default:
		logx.FromRequest(r).Info().Stringer("user_id", saved.ID).Msg("Form submitted")
	}

	redirectHome(w, r)
}

// HandleCancelForm discards the draft.
func HandleCancelForm(w http.ResponseWriter, r *http.Request) {
	stateFromRequest(r).Form.Close()
	redirectHome(w, r)
}

// HandleStageDeletion opens the confirmation dialog for a record.
func HandleStageDeletion(w http.ResponseWriter, r *http.Request) {
	id, err := user.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		redirectHome(w, r)
		return
	}

	stateFromRequest(r).StageDeletion(id)
	redirectHome(w, r)
}

// HandleConfirmDeletion removes the staged record. The outcome is reported
// through the notification.
func HandleConfirmDeletion(w http.ResponseWriter, r *http.Request) {
	// A browser leaving the page does not abort the removal.
	id, err := stateFromRequest(r).ConfirmDeletion(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, session.ErrNothingStaged):
		logx.FromRequest(r).Debug().Msg("Confirm without a staged deletion")
	case err != nil:
		logx.FromRequest(r).Warn().Err(err).Stringer("user_id", id).Msg("Deletion failed")
	}
	redirectHome(w, r)
}

// HandleCancelDeletion closes the confirmation dialog.
func HandleCancelDeletion(w http.ResponseWriter, r *http.Request) {
	_ = stateFromRequest(r).CancelDeletion()
	redirectHome(w, r)
}

// HandleDismissNotification closes the notification named by the posted seq.
func HandleDismissNotification(w http.ResponseWriter, r *http.Request) {
	if customErr := req.ParseForm(w, r); customErr != nil {
		resp.RespondError(w, r, customErr)
		return
	}

	seq, _ := strconv.ParseUint(r.PostForm.Get("seq"), 10, 64)
	stateFromRequest(r).Notifications.Dismiss(seq)

	// Back to the page the snackbar was on, if it is one of ours.
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Host == r.Host && ref.Path != "" {
		http.Redirect(w, r, ref.RequestURI(), http.StatusSeeOther)
		return
	}
	redirectHome(w, r)
}
