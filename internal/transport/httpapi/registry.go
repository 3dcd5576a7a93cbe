package httpapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/example/lcs/internal/app"
	"github.com/example/lcs/internal/ports/primary"
)

// --- domain registry ---

func (s *Server) listDomains(w http.ResponseWriter, r *http.Request, actor primary.Actor, _ httprouter.Params) error {
	domains, err := s.c.Registry.ListDomains(r.Context(), actor)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, domains)
	return nil
}

func (s *Server) createDomain(w http.ResponseWriter, r *http.Request, actor primary.Actor, _ httprouter.Params) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return app.NewValidationError("invalid request body: %v", err)
	}
	if err := s.c.Registry.CreateDomain(r.Context(), actor, body.Name); err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": body.Name})
	return nil
}

func (s *Server) disableDomain(w http.ResponseWriter, r *http.Request, actor primary.Actor, params httprouter.Params) error {
	name := params.ByName("name")
	if err := s.c.Registry.DisableDomain(r.Context(), actor, name); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "state": "disabled"})
	return nil
}

// --- entitlements ---

func (s *Server) listEntitlements(w http.ResponseWriter, r *http.Request, actor primary.Actor, params httprouter.Params) error {
	domains, err := s.c.Registry.EntitledDomains(r.Context(), actor, params.ByName("user"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username": params.ByName("user"),
		"domains":  domains,
	})
	return nil
}

func (s *Server) grantEntitlement(w http.ResponseWriter, r *http.Request, actor primary.Actor, _ httprouter.Params) error {
	var body struct {
		Username string `json:"username"`
		Domain   string `json:"domain"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return app.NewValidationError("invalid request body: %v", err)
	}
	if err := s.c.Registry.Grant(r.Context(), actor, body.Username, body.Domain); err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, body)
	return nil
}

func (s *Server) revokeEntitlement(w http.ResponseWriter, r *http.Request, actor primary.Actor, params httprouter.Params) error {
	if err := s.c.Registry.Revoke(r.Context(), actor, params.ByName("user"), params.ByName("domain")); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
	return nil
}

// --- users ---

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request, actor primary.Actor, _ httprouter.Params) error {
	users, err := s.c.Users.List(r.Context(), actor)
	if err != nil {
		return err
	}
	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		out = append(out, map[string]any{
			"username":   u.Username,
			"role":       u.Role,
			"created_at": u.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request, actor primary.Actor, _ httprouter.Params) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return app.NewValidationError("invalid request body: %v", err)
	}
	if err := s.c.Users.Create(r.Context(), actor, body.Username, body.Password, body.Role); err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"username": body.Username,
		"role":     body.Role,
	})
	return nil
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request, actor primary.Actor, params httprouter.Params) error {
	if err := s.c.Users.Delete(r.Context(), actor, params.ByName("username")); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	return nil
}

// --- audit ---

func (s *Server) listAudit(w http.ResponseWriter, r *http.Request, actor primary.Actor, params httprouter.Params) error {
	events, err := s.c.Audit.ListForRecord(r.Context(), actor, params.ByName("kind"), params.ByName("id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, events)
	return nil
}

// --- delivery ---

func (s *Server) exportWorkflow(w http.ResponseWriter, r *http.Request, actor primary.Actor, params httprouter.Params) error {
	version, err := paramVersion(params)
	if err != nil {
		return err
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = primary.FormatMarkdown
	}

	result, err := s.c.Delivery.ExportWorkflow(r.Context(), primary.ExportRequest{
		Actor:    actor,
		RecordID: params.ByName("id"),
		Version:  version,
		Format:   format,
	})
	if err != nil {
		return err
	}

	contentType := "text/markdown; charset=utf-8"
	if result.Format == primary.FormatHTML {
		contentType = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(result.Content)
	return nil
}
