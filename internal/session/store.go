package session

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	cookieName   = "cloudgrade-session"
	tokenKey     = "token"
	userDataKey  = "userData"
	cookieMaxAge = 12 * 60 * 60
)

// Store persists sessions in a signed cookie. The token and the user profile
// are kept as two separate values, the profile serialized as JSON.
type Store struct {
	cookies *sessions.CookieStore
}

func NewStore(secret []byte) *Store {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{cookies: store}
}

func (s *Store) Save(w http.ResponseWriter, r *http.Request, sess Session) error {
	profile, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}
	cookie, _ := s.cookies.Get(r, cookieName)
	cookie.Values[tokenKey] = sess.Token
	cookie.Values[userDataKey] = string(profile)
	return cookie.Save(r, w)
}

// Load never fails hard: a missing cookie, a bad signature or an unparseable
// profile all report "no session".
func (s *Store) Load(r *http.Request) (Session, bool) {
	cookie, err := s.cookies.Get(r, cookieName)
	if err != nil {
		return Session{}, false
	}
	token, tokenOk := cookie.Values[tokenKey].(string)
	raw, dataOk := cookie.Values[userDataKey].(string)
	if !tokenOk || !dataOk || token == "" || raw == "" {
		return Session{}, false
	}
	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return Session{}, false
	}
	return Session{Token: token, User: user}, true
}

func (s *Store) Clear(w http.ResponseWriter, r *http.Request) {
	cookie, _ := s.cookies.Get(r, cookieName)
	cookie.Values = map[interface{}]interface{}{}
	cookie.Options.MaxAge = -1
	_ = cookie.Save(r, w)
}
