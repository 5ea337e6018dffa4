package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"cloudgrade-web/internal/api"
	"cloudgrade-web/internal/session"

	"github.com/go-chi/chi/v5"
)

// adminTables fixes the set of backend tables the admin view manages, in
// display order.
var adminTables = []adminTable{
	{Key: "user", Label: "User accounts (user_account)"},
	{Key: "student", Label: "Student info (student_info)"},
	{Key: "course", Label: "Course info (course_info)"},
	{Key: "grade", Label: "Grade records (grade_record)"},
}

type adminTable struct {
	Key   string
	Label string
}

func validAdminTable(key string) bool {
	for _, table := range adminTables {
		if table.Key == key {
			return true
		}
	}
	return false
}

type adminPageData struct {
	User      session.User
	Tables    []adminTable
	ActiveTab string
	Table     *api.Table
	EditingID string
	Error     string
}

// AdminDashboard fetches all rows of the selected table and renders the
// editable grid. The column set comes from the data itself.
func (s *Server) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, sess := apiContext(r)
	active := r.URL.Query().Get("table")
	if !validAdminTable(active) {
		active = adminTables[0].Key
	}
	data := adminPageData{
		User:      sess.User,
		Tables:    adminTables,
		ActiveTab: active,
		EditingID: r.URL.Query().Get("edit"),
	}
	if msg := r.URL.Query().Get("error"); msg != "" {
		data.Error = msg
	}

	table, err := s.API.AdminRows(ctx, active)
	if err != nil {
		if s.handleUnauthorized(w, r, err) {
			return
		}
		data.Error = "Could not load the table: " + api.ErrorMessage(err, "unknown error")
	} else {
		data.Table = table
	}
	render(w, s.pages.admin, data)
}

// AdminUpdateRow issues a full-row update and then forces a complete
// re-fetch of the active table by redirecting back to it.
func (s *Server) AdminUpdateRow(w http.ResponseWriter, r *http.Request) {
	ctx, _ := apiContext(r)
	table := chi.URLParam(r, "table")
	rowID := chi.URLParam(r, "rowId")
	if !validAdminTable(table) {
		http.Redirect(w, r, "/dashboard/admin", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.redirectAdmin(w, r, table, "The submitted row could not be read")
		return
	}

	existing, err := s.currentRow(ctx, table, rowID)
	if s.handleUnauthorized(w, r, err) {
		return
	}

	// The backend replaces the whole row, so start from its current state
	// and overlay the edited cells. Submitted strings are coerced back to
	// the type each cell had on the wire.
	row := api.Row{"id": rowID}
	if existing != nil {
		row = api.Row{}
		for column, value := range existing {
			row[column] = value
		}
	}
	for _, column := range r.PostForm["column"] {
		if column == "id" {
			continue
		}
		row[column] = coerceCell(existing[column], r.PostFormValue("value."+column))
	}

	if err := s.API.AdminUpdateRow(ctx, table, rowID, row); err != nil {
		if s.handleUnauthorized(w, r, err) {
			return
		}
		s.redirectAdmin(w, r, table, "Update failed: "+api.ErrorMessage(err, "check the backend logs"))
		return
	}
	s.redirectAdmin(w, r, table, "")
}

// currentRow fetches the row's current backend state. A lookup failure other
// than a rejected session degrades to a nil row, in which case the update is
// built from the submitted strings alone.
func (s *Server) currentRow(ctx context.Context, table, id string) (api.Row, error) {
	rows, err := s.API.AdminRows(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, row := range rows.Rows {
		if row.ID() == id {
			return row, nil
		}
	}
	return nil, nil
}

// coerceCell converts a submitted form string back to the shape the cell had
// on the wire, so numbers and booleans are not rewritten as strings and an
// emptied null cell stays null.
func coerceCell(existing interface{}, raw string) interface{} {
	switch existing.(type) {
	case json.Number:
		if _, err := strconv.ParseFloat(raw, 64); err == nil {
			return json.Number(raw)
		}
	case bool:
		if parsed, err := strconv.ParseBool(raw); err == nil {
			return parsed
		}
	case nil:
		if raw == "" {
			return nil
		}
	}
	return raw
}

func (s *Server) AdminDeleteRow(w http.ResponseWriter, r *http.Request) {
	ctx, _ := apiContext(r)
	table := chi.URLParam(r, "table")
	rowID := chi.URLParam(r, "rowId")
	if !validAdminTable(table) {
		http.Redirect(w, r, "/dashboard/admin", http.StatusSeeOther)
		return
	}
	if err := s.API.AdminDeleteRow(ctx, table, rowID); err != nil {
		if s.handleUnauthorized(w, r, err) {
			return
		}
		s.redirectAdmin(w, r, table, "Delete failed: "+api.ErrorMessage(err, "check the backend logs"))
		return
	}
	s.redirectAdmin(w, r, table, "")
}

func (s *Server) redirectAdmin(w http.ResponseWriter, r *http.Request, table, message string) {
	target := "/dashboard/admin?table=" + url.QueryEscape(table)
	if strings.TrimSpace(message) != "" {
		target += "&error=" + url.QueryEscape(message)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
