package httpapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/example/lcs/internal/ports/primary"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// login authenticates a credential pair and starts a session. The session
// carries only (username, role); the services never see credentials.
func (s *Server) login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.c.Users.Authenticate(r.Context(), creds.Username, creds.Password)
	if err != nil {
		// Authenticate returns the same error for unknown users and wrong
		// passwords; surface it as 401 rather than the taxonomy's 403.
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := s.sessions.RenewToken(r.Context()); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.sessions.Put(r.Context(), sessionUserKey, user.Username)
	s.sessions.Put(r.Context(), sessionRoleKey, user.Role)

	writeJSON(w, http.StatusOK, map[string]string{
		"username": user.Username,
		"role":     user.Role,
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request, _ primary.Actor, _ httprouter.Params) error {
	if err := s.sessions.Destroy(r.Context()); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
	return nil
}

func (s *Server) me(w http.ResponseWriter, _ *http.Request, actor primary.Actor, _ httprouter.Params) error {
	writeJSON(w, http.StatusOK, map[string]string{
		"username": actor.User,
		"role":     actor.Role,
	})
	return nil
}
