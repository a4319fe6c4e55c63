package server

import (
	"log"
	"net/http"
)

type signupRequest struct {
	Email    string `json:"email" validate:"required,email,max=120"`
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Email = normalizeText(req.Email)
	req.Username = normalizeText(req.Username)
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	user, err := s.store.CreateUser(req.Email, req.Username, hash)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.sessions.Establish(w, user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	log.Printf("user signed up user_id=%d", user.ID)
	s.recordEvent("user_signed_up", &user.ID, nil, eventPayload{"username": user.Username})
	writeJSON(w, http.StatusCreated, identitySummary{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Email = normalizeText(req.Email)
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Unknown email and wrong password produce the same response.
	user, err := s.store.UserByEmail(req.Email)
	if err != nil || !checkPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := s.sessions.Establish(w, user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	log.Printf("user logged in user_id=%d", user.ID)
	writeJSON(w, http.StatusOK, identitySummary{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	s.sessions.Clear(w, r)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Successfully logged out",
	})
}

// handleWhoAmI reports the session's user, or null when there is none. It
// never errors; the frontend polls it to decide what to render.
func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	user := s.currentUser(r)
	if user == nil {
		writeJSON(w, http.StatusOK, map[string]any{"user_id": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":  user.ID,
		"email":    user.Email,
		"username": user.Username,
	})
}
