package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"userdir/internal/app/form"
	"userdir/internal/app/notify"
	"userdir/internal/app/session"
	"userdir/internal/app/user"
	"userdir/internal/pkg/logx"
)

//go:embed templates/*.html
var templateFS embed.FS

var views = template.Must(template.New("").Funcs(template.FuncMap{
	"even": func(i int) bool { return i%2 == 0 },
}).ParseFS(templateFS, "templates/*.html"))

// fieldView is one input of the user form modal.
type fieldView struct {
	Name     string
	Label    string
	Value    string
	Error    string
	ReadOnly bool
}

// formFields lists the modal inputs in display order.
var formFields = []struct {
	name  string
	label string
}{
	{user.FieldName, "Name"},
	{user.FieldEmail, "Email"},
	{user.FieldPhone, "Phone"},
	{user.FieldUsername, "Username"},
	{user.FieldStreet, "Street"},
	{user.FieldCity, "City"},
	{user.FieldCompanyName, "Company Name"},
	{user.FieldWebsite, "Website"},
}

// formView is the user form modal.
type formView struct {
	Open    bool
	Editing bool
	Title   string
	Submit  string
	Fields  []fieldView
}

func newFormView(snap form.Snapshot) formView {
	v := formView{
		Open:    snap.Open(),
		Editing: snap.Editing(),
		Title:   "Create New User",
		Submit:  "Create",
	}
	if v.Editing {
		v.Title = "Update User"
		v.Submit = "Update"
	}
	if !v.Open {
		return v
	}

	for _, f := range formFields {
		value, _ := snap.Draft.Get(f.name)
		v.Fields = append(v.Fields, fieldView{
			Name:     f.name,
			Label:    f.label,
			Value:    value,
			Error:    snap.Errors[f.name],
			ReadOnly: f.name == user.FieldUsername,
		})
	}
	return v
}

// listPage is the data of the list view.
type listPage struct {
	Query        string
	Loading      bool
	Users        []user.User
	Form         formView
	Deletion     session.Deletion
	Confirming   bool
	Notification *notify.Notification
}

func newListPage(st *session.State) listPage {
	d := st.Deletion()
	return listPage{
		Query:        st.Query(),
		Loading:      st.Store.Loading(),
		Users:        st.Visible(),
		Form:         newFormView(st.Form.Snapshot()),
		Deletion:     d,
		Confirming:   d.State != session.DeletionIdle,
		Notification: st.Notifications.Current(),
	}
}

// Refresh asks the browser to poll while the initial load runs.
func (p listPage) Refresh() bool { return p.Loading }

// detailPage is the data of the detail view. User is nil when the id does not resolve.
type detailPage struct {
	User         *user.User
	Notification *notify.Notification
}

func (detailPage) Refresh() bool { return false }

// render executes the named template into a buffer first, so a template error
// still produces a clean 500.
func render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := views.ExecuteTemplate(&buf, name, data); err != nil {
		logx.FromRequest(r).Error().Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logx.FromRequest(r).Debug().Err(err).Msg("Failed to write page")
	}
}
