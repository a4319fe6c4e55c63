package server

import (
	"net/http"

	"art-trainer/internal/db"

	"golang.org/x/crypto/bcrypt"
)

// hashPassword and checkPassword are the only places credentials touch a
// hashing primitive.
func (s *Server) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// requireUser resolves the session to a user and writes the 401 itself when
// there is none. Protected handlers call this before anything else.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*db.User, bool) {
	user := s.currentUser(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return user, true
}

func (s *Server) currentUser(r *http.Request) *db.User {
	userID, ok := s.sessions.UserID(r)
	if !ok {
		return nil
	}
	user, err := s.store.UserByID(userID)
	if err != nil {
		return nil
	}
	return user
}
