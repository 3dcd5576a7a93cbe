// Package httpapi exposes the governance engine as a JSON HTTP API with
// session-cookie authentication. Handlers are thin translators: decode,
// call the service, encode; every rule stays behind the service ports.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/julienschmidt/httprouter"

	"github.com/example/lcs/internal/app"
	"github.com/example/lcs/internal/ports/primary"
	"github.com/example/lcs/internal/wire"
)

const (
	sessionUserKey = "user"
	sessionRoleKey = "role"
)

// Server serves the JSON API over one wired container. Sessions persist in
// the same SQLite store as the content.
type Server struct {
	c        *wire.Container
	sessions *scs.SessionManager
	router   *httprouter.Router
	logger   *log.Logger
}

// New builds a server over the container.
func New(c *wire.Container) *Server {
	sessions := scs.New()
	sessions.Store = sqlite3store.New(c.DB)
	sessions.Cookie.SameSite = http.SameSiteLaxMode
	sessions.Cookie.Secure = false // allow localhost and plain-http proxies
	sessions.IdleTimeout = 12 * time.Hour
	sessions.Lifetime = 720 * time.Hour

	s := &Server{
		c:        c,
		sessions: sessions,
		logger:   log.New(os.Stderr, "httpapi ", log.LstdFlags),
	}
	s.router = s.routes()
	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.sessions.LoadAndSave(s.logged(s.router))
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}

// handle is an authenticated request handler. The actor comes from the
// session; handlers never see credentials.
type handle func(w http.ResponseWriter, r *http.Request, actor primary.Actor, params httprouter.Params) error

// authed wraps a handler with session authentication. Unauthenticated
// requests get 401 before any service code runs.
func (s *Server) authed(f handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		username := s.sessions.GetString(r.Context(), sessionUserKey)
		role := s.sessions.GetString(r.Context(), sessionRoleKey)
		if username == "" || role == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		actor := primary.Actor{User: username, Role: role}
		if err := f(w, r, actor, params); err != nil {
			s.writeServiceError(w, err)
		}
	}
}

func (s *Server) routes() *httprouter.Router {
	router := httprouter.New()

	// Identity
	router.POST("/api/login", s.login)
	router.POST("/api/logout", s.authed(s.logout))
	router.GET("/api/me", s.authed(s.me))

	// Task records. Version actions: submit, confirm, return, force-submit,
	// force-confirm, plus revise (the addressed version is the source).
	router.GET("/api/tasks", s.authed(s.listTasks))
	router.POST("/api/tasks", s.authed(s.createTask))
	router.GET("/api/tasks/:id", s.authed(s.listTaskVersions))
	router.GET("/api/tasks/:id/:version", s.authed(s.getTask))
	router.POST("/api/tasks/:id/:version/:action", s.authed(s.taskAction))

	// Workflow records
	router.GET("/api/workflows", s.authed(s.listWorkflows))
	router.POST("/api/workflows", s.authed(s.createWorkflow))
	router.GET("/api/workflows/:id", s.authed(s.listWorkflowVersions))
	router.GET("/api/workflows/:id/:version", s.authed(s.getWorkflow))
	router.GET("/api/workflows/:id/:version/readiness", s.authed(s.workflowReadiness))
	router.GET("/api/workflows/:id/:version/export", s.authed(s.exportWorkflow))
	router.POST("/api/workflows/:id/:version/:action", s.authed(s.workflowAction))

	// Assessment records
	router.GET("/api/assessments", s.authed(s.listAssessments))
	router.POST("/api/assessments", s.authed(s.createAssessment))
	router.GET("/api/assessments/:id", s.authed(s.listAssessmentVersions))
	router.GET("/api/assessments/:id/:version", s.authed(s.getAssessment))
	router.POST("/api/assessments/:id/:version/:action", s.authed(s.assessmentAction))

	// Registry, identity administration, audit
	router.GET("/api/domains", s.authed(s.listDomains))
	router.POST("/api/domains", s.authed(s.createDomain))
	router.POST("/api/domains/:name/disable", s.authed(s.disableDomain))
	router.GET("/api/entitlements/:user", s.authed(s.listEntitlements))
	router.POST("/api/entitlements", s.authed(s.grantEntitlement))
	router.DELETE("/api/entitlements/:user/:domain", s.authed(s.revokeEntitlement))
	router.GET("/api/users", s.authed(s.listUsers))
	router.POST("/api/users", s.authed(s.createUser))
	router.DELETE("/api/users/:username", s.authed(s.deleteUser))
	router.GET("/api/audit/:kind/:id", s.authed(s.listAudit))

	return router
}

// writeServiceError maps the error taxonomy onto status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var (
		validation *app.ValidationError
		forbidden  *app.ForbiddenError
		notFound   *app.NotFoundError
		conflict   *app.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &forbidden):
		writeError(w, http.StatusForbidden, forbidden.Message)
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Message)
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, conflict.Message)
	default:
		s.logger.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}
