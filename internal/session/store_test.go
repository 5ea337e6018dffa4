package session

import (
	"net/http/httptest"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore([]byte("test-secret-key"))
	rec := httptest.NewRecorder()
	seed := httptest.NewRequest("GET", "/", nil)
	saved := Session{Token: "t1", User: User{ID: 7, Username: "alice", Role: RoleTeacher}}
	if err := store.Save(rec, seed, saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	loaded, ok := store.Load(req)
	if !ok {
		t.Fatalf("expected a session after save")
	}
	if loaded != saved {
		t.Fatalf("expected %+v, got %+v", saved, loaded)
	}
}

func TestLoadFailsSoft(t *testing.T) {
	store := NewStore([]byte("test-secret-key"))

	// No cookie at all.
	req := httptest.NewRequest("GET", "/", nil)
	if _, ok := store.Load(req); ok {
		t.Fatalf("expected no session without a cookie")
	}

	// Unparseable cookie value.
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Cookie", cookieName+"=not-a-valid-value")
	if _, ok := store.Load(req); ok {
		t.Fatalf("expected no session for a garbage cookie")
	}

	// Signed by a different key.
	other := NewStore([]byte("another-secret-key"))
	rec := httptest.NewRecorder()
	seed := httptest.NewRequest("GET", "/", nil)
	if err := other.Save(rec, seed, Session{Token: "t", User: User{ID: 1}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	req = httptest.NewRequest("GET", "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	if _, ok := store.Load(req); ok {
		t.Fatalf("expected no session for a foreign signature")
	}
}

func TestClearExpiresCookie(t *testing.T) {
	store := NewStore([]byte("test-secret-key"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	store.Clear(rec, req)

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected an expiring cookie")
	}
	if cookies[0].MaxAge >= 0 {
		t.Fatalf("expected a negative max age, got %d", cookies[0].MaxAge)
	}
}

func TestDashboardPath(t *testing.T) {
	cases := map[Role]string{
		RoleStudent:     "/dashboard/student",
		RoleTeacher:     "/dashboard/teacher",
		RoleAdmin:       "/dashboard/admin",
		Role("AUDITOR"): "/dashboard",
		Role(""):        "/dashboard",
	}
	for role, expect := range cases {
		if got := role.DashboardPath(); got != expect {
			t.Fatalf("role %q: expected %s, got %s", role, expect, got)
		}
	}
}
