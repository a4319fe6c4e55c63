package server

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"sync"
	"time"

	"art-trainer/internal/db"

	"gorm.io/gorm"
)

const sessionCookieName = "at_session"

// sessionStore binds the session cookie to a user id. Sessions are rows in
// Postgres when a connection is available and an in-memory map otherwise.
// There is no server-side expiry; a session lives until logout.
type sessionStore struct {
	db       *gorm.DB
	mu       sync.Mutex
	sessions map[string]uint
}

func newSessionStore(conn *gorm.DB) *sessionStore {
	return &sessionStore{
		db:       conn,
		sessions: make(map[string]uint),
	}
}

// Establish issues a fresh token for the user and sets the session cookie.
// Login and signup always mint a new token rather than reusing an old one.
func (s *sessionStore) Establish(w http.ResponseWriter, userID uint) error {
	token := newSessionToken()
	if s.db == nil {
		s.mu.Lock()
		s.sessions[token] = userID
		s.mu.Unlock()
	} else {
		record := db.Session{
			Token:     token,
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.db.Create(&record).Error; err != nil {
			return err
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// UserID resolves the request's session cookie to a user id.
func (s *sessionStore) UserID(r *http.Request) (uint, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return 0, false
	}
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		userID, ok := s.sessions[cookie.Value]
		return userID, ok
	}
	var record db.Session
	if err := s.db.Where("token = ?", cookie.Value).First(&record).Error; err != nil {
		return 0, false
	}
	return record.UserID, true
}

// Clear invalidates the request's session and expires the cookie.
func (s *sessionStore) Clear(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		if s.db == nil {
			s.mu.Lock()
			delete(s.sessions, cookie.Value)
			s.mu.Unlock()
		} else {
			_ = s.db.Where("token = ?", cookie.Value).Delete(&db.Session{}).Error
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func newSessionToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("sess-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%x", buf)
}
