package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBearerAttachment(t *testing.T) {
	var seen []string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"open":true}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL)

	// With a token on the context.
	if _, err := client.QueryPeriodOpen(WithToken(context.Background(), "t1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Without one.
	if _, err := client.QueryPeriodOpen(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if seen[0] != "Bearer t1" {
		t.Fatalf("expected bearer header, got %q", seen[0])
	}
	if seen[1] != "" {
		t.Fatalf("expected no header without a token, got %q", seen[1])
	}
}

func TestUnauthorizedSentinel(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Authentication failed"}`, http.StatusUnauthorized)
	}))
	defer backend.Close()

	client := NewClient(backend.URL)
	_, err := client.SearchGrades(context.Background(), "S1")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestBackendErrorMessage(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"duplicate username"}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL)
	err := client.Register(context.Background(), "alice", "pw", "STUDENT")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "duplicate username" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
	if got := ErrorMessage(err, "fallback"); got != "duplicate username" {
		t.Fatalf("expected backend message, got %q", got)
	}
	if got := ErrorMessage(errors.New("dial tcp: refused"), "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestLogin(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "alice" || body["password"] != "pw" {
			t.Fatalf("unexpected credentials %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"t1","id":7,"username":"alice","role":"TEACHER"}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL)
	result, err := client.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token != "t1" || result.ID != 7 || result.Username != "alice" || result.Role != "TEACHER" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCurrentPeriodShapes(t *testing.T) {
	payloads := map[string]string{
		"bare":    `{"startTime":"2026-01-01T08:00:00","endTime":"2026-01-31T18:00:00"}`,
		"wrapped": `{"data":{"startTime":"2026-01-01T08:00:00","endTime":"2026-01-31T18:00:00"}}`,
	}
	for name, payload := range payloads {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(payload))
		}))
		client := NewClient(backend.URL)
		period, err := client.CurrentPeriod(context.Background())
		backend.Close()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if period == nil || period.StartTime != "2026-01-01T08:00:00" || period.EndTime != "2026-01-31T18:00:00" {
			t.Fatalf("%s: unexpected period %+v", name, period)
		}
	}

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer backend.Close()
	period, err := NewClient(backend.URL).CurrentPeriod(context.Background())
	if err != nil {
		t.Fatalf("empty: %v", err)
	}
	if period != nil {
		t.Fatalf("expected no period, got %+v", period)
	}
}

func TestAdminRowsColumnOrder(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/user/all" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":3,"username":"zeta","role":"ADMIN","active":true},
			{"id":4,"username":"alpha","role":"STUDENT","active":null}
		]`))
	}))
	defer backend.Close()

	table, err := NewClient(backend.URL).AdminRows(context.Background(), "user")
	if err != nil {
		t.Fatalf("admin rows: %v", err)
	}
	expect := []string{"id", "username", "role", "active"}
	if len(table.Columns) != len(expect) {
		t.Fatalf("expected %d columns, got %v", len(expect), table.Columns)
	}
	for i, column := range expect {
		if table.Columns[i] != column {
			t.Fatalf("expected column %d to be %s, got %s", i, column, table.Columns[i])
		}
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0].ID() != "3" {
		t.Fatalf("expected numeric id rendered as 3, got %q", table.Rows[0].ID())
	}
	if table.Rows[1].Value("active") != "-" {
		t.Fatalf("expected null cell to render as -, got %q", table.Rows[1].Value("active"))
	}
	if table.Rows[1].EditValue("active") != "" {
		t.Fatalf("expected null cell to edit as empty, got %q", table.Rows[1].EditValue("active"))
	}
	if table.Rows[0].EditValue("active") != "true" {
		t.Fatalf("expected boolean cell to edit as true, got %q", table.Rows[0].EditValue("active"))
	}
}

func TestUploadGrades(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "grades.csv" {
			t.Fatalf("unexpected filename %q", header.Filename)
		}
		content, _ := io.ReadAll(file)
		if string(content) != "id,score\n1,95\n" {
			t.Fatalf("unexpected content %q", content)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"2 records imported"}`))
	}))
	defer backend.Close()

	result, err := NewClient(backend.URL).UploadGrades(context.Background(), "grades.csv", strings.NewReader("id,score\n1,95\n"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if result.Message != "2 records imported" {
		t.Fatalf("unexpected message %q", result.Message)
	}
}
