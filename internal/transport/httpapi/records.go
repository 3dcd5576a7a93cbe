package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/example/lcs/internal/app"
	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/primary"
)

func paramVersion(params httprouter.Params) (int, error) {
	raw := params.ByName("version")
	version, err := strconv.Atoi(raw)
	if err != nil || version < 1 {
		return 0, app.NewValidationError("invalid version %q", raw)
	}
	return version, nil
}

// returnBody carries the required note of a return-for-changes action.
type returnBody struct {
	Note string `json:"note"`
}

// --- tasks ---

type taskPayload struct {
	Title         string        `json:"title"`
	Outcome       string        `json:"outcome"`
	ProcedureName string        `json:"procedure_name"`
	Facts         []string      `json:"facts"`
	Concepts      []string      `json:"concepts"`
	Dependencies  []string      `json:"dependencies"`
	Steps         []models.Step `json:"steps"`
	Irreversible  bool          `json:"irreversible"`
	Domain        string        `json:"domain"`
	ChangeNote    string        `json:"change_note"`
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request, actor primary.Actor, _ httprouter.Params) error {
	var body taskPayload
	if err := decodeJSON(r, &body); err != nil {
		return app.NewValidationError("invalid request body: %v", err)
	}
	task, err := s.c.Tasks.CreateDraft(r.Context(), primary.CreateTaskRequest{
		Actor:         actor,
		Title:         body.Title,
		Outcome:       body.Outcome,
		ProcedureName: body.ProcedureName,
		Facts:         body.Facts,
		Concepts:      body.Concepts,
		Dependencies:  body.Dependencies,
		Steps:         body.Steps,
		Irreversible:  body.Irreversible,
		Domain:        body.Domain,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, task)
	return nil
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request, _ primary.Actor, _ httprouter.Params) error {
	summaries, err := s.c.Tasks.ListLatest(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, summaries)
	return nil
}

func (s *Server) listTaskVersions(w http.ResponseWriter, r *http.Request, _ primary.Actor, params httprouter.Params) error {
	versions, err := s.c.Tasks.ListVersions(r.Context(), params.ByName("id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, versions)
	return nil
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request, _ primary.Actor, params httprouter.Params) error {
	version, err := paramVersion(params)
	if err != nil {
		return err
	}
	detail, err := s.c.Tasks.Get(r.Context(), params.ByName("id"), version)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, detail)
	return nil
}

// taskAction dispatches version-addressed actions: the five lifecycle
// transitions plus revise, where the addressed version is the source.
func (s *Server) taskAction(w http.ResponseWriter, r *http.Request, actor primary.Actor, params httprouter.Params) error {
	version, err := paramVersion(params)
	if err != nil {
		return err
	}
	recordID := params.ByName("id")

	if params.ByName("action") == "revise" {
		var body taskPayload
		if err := decodeJSON(r, &body); err != nil {
			return app.NewValidationError("invalid request body: %v", err)
		}
		task, err := s.c.Tasks.Revise(r.Context(), primary.ReviseTaskRequest{
			Actor:         actor,
			RecordID:      recordID,
			SourceVersion: version,
			ChangeNote:    body.ChangeNote,
			Title:         body.Title,
			Outcome:       body.Outcome,
			ProcedureName: body.ProcedureName,
			Facts:         body.Facts,
			Concepts:      body.Concepts,
			Dependencies:  body.Dependencies,
			Steps:         body.Steps,
			Irreversible:  body.Irreversible,
			Domain:        body.Domain,
		})
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusCreated, task)
		return nil
	}

	return s.runTransition(w, r, s.c.Tasks, actor, recordID, version, params.ByName("action"))
}

// --- workflows ---

type workflowPayload struct {
	Title      string            `json:"title"`
	Objective  string            `json:"objective"`
	TaskRefs   []models.TaskRef  `json:"task_refs"`
	Tags       []string          `json:"tags"`
	Meta       map[string]string `json:"meta"`
	ChangeNote string            `json:"change_note"`
}

func (s *Server) createWorkflow(w http.ResponseWriter, r *http.Request, actor primary.Actor, _ httprouter.Params) error {
	var body workflowPayload
	if err := decodeJSON(r, &body); err != nil {
		return app.NewValidationError("invalid request body: %v", err)
	}
	wf, err := s.c.Workflows.CreateDraft(r.Context(), primary.CreateWorkflowRequest{
		Actor:     actor,
		Title:     body.Title,
		Objective: body.Objective,
		TaskRefs:  body.TaskRefs,
		Tags:      body.Tags,
		Meta:      body.Meta,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, wf)
	return nil
}

func (s *Server) listWorkflows(w http.ResponseWriter, r *http.Request, _ primary.Actor, _ httprouter.Params) error {
	summaries, err := s.c.Workflows.ListLatest(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, summaries)
	return nil
}

func (s *Server) listWorkflowVersions(w http.ResponseWriter, r *http.Request, _ primary.Actor, params httprouter.Params) error {
	versions, err := s.c.Workflows.ListVersions(r.Context(), params.ByName("id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, versions)
	return nil
}

func (s *Server) getWorkflow(w http.ResponseWriter, r *http.Request, _ primary.Actor, params httprouter.Params) error {
	version, err := paramVersion(params)
	if err != nil {
		return err
	}
	detail, err := s.c.Workflows.Get(r.Context(), params.ByName("id"), version)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, detail)
	return nil
}

func (s *Server) workflowReadiness(w http.ResponseWriter, r *http.Request, _ primary.Actor, params httprouter.Params) error {
	version, err := paramVersion(params)
	if err != nil {
		return err
	}
	recordID := params.ByName("id")

	readiness, err := s.c.Workflows.ComputeReadiness(r.Context(), recordID, version)
	if err != nil {
		return err
	}
	domains, err := s.c.Workflows.DeriveDomains(r.Context(), recordID, version)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"readiness": readiness,
		"domains":   domains,
	})
	return nil
}

func (s *Server) workflowAction(w http.ResponseWriter, r *http.Request, actor primary.Actor, params httprouter.Params) error {
	version, err := paramVersion(params)
	if err != nil {
		return err
	}
	recordID := params.ByName("id")

	if params.ByName("action") == "revise" {
		var body workflowPayload
		if err := decodeJSON(r, &body); err != nil {
			return app.NewValidationError("invalid request body: %v", err)
		}
		wf, err := s.c.Workflows.Revise(r.Context(), primary.ReviseWorkflowRequest{
			Actor:         actor,
			RecordID:      recordID,
			SourceVersion: version,
			ChangeNote:    body.ChangeNote,
			Title:         body.Title,
			Objective:     body.Objective,
			TaskRefs:      body.TaskRefs,
			Tags:          body.Tags,
			Meta:          body.Meta,
		})
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusCreated, wf)
		return nil
	}

	return s.runTransition(w, r, s.c.Workflows, actor, recordID, version, params.ByName("action"))
}

// --- assessments ---

type assessmentPayload struct {
	Stem       string                 `json:"stem"`
	Options    map[string]string      `json:"options"`
	CorrectKey string                 `json:"correct_key"`
	Rationale  string                 `json:"rationale"`
	Claim      string                 `json:"claim"`
	Refs       []models.AssessmentRef `json:"refs"`
	Tags       []string               `json:"tags"`
	Meta       map[string]string      `json:"meta"`
	ChangeNote string                 `json:"change_note"`
}

func (s *Server) createAssessment(w http.ResponseWriter, r *http.Request, actor primary.Actor, _ httprouter.Params) error {
	var body assessmentPayload
	if err := decodeJSON(r, &body); err != nil {
		return app.NewValidationError("invalid request body: %v", err)
	}
	item, err := s.c.Assessments.CreateDraft(r.Context(), primary.CreateAssessmentRequest{
		Actor:      actor,
		Stem:       body.Stem,
		Options:    body.Options,
		CorrectKey: body.CorrectKey,
		Rationale:  body.Rationale,
		Claim:      body.Claim,
		Refs:       body.Refs,
		Tags:       body.Tags,
		Meta:       body.Meta,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, item)
	return nil
}

func (s *Server) listAssessments(w http.ResponseWriter, r *http.Request, _ primary.Actor, _ httprouter.Params) error {
	summaries, err := s.c.Assessments.ListLatest(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, summaries)
	return nil
}

func (s *Server) listAssessmentVersions(w http.ResponseWriter, r *http.Request, _ primary.Actor, params httprouter.Params) error {
	versions, err := s.c.Assessments.ListVersions(r.Context(), params.ByName("id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, versions)
	return nil
}

func (s *Server) getAssessment(w http.ResponseWriter, r *http.Request, _ primary.Actor, params httprouter.Params) error {
	version, err := paramVersion(params)
	if err != nil {
		return err
	}
	detail, err := s.c.Assessments.Get(r.Context(), params.ByName("id"), version)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, detail)
	return nil
}

func (s *Server) assessmentAction(w http.ResponseWriter, r *http.Request, actor primary.Actor, params httprouter.Params) error {
	version, err := paramVersion(params)
	if err != nil {
		return err
	}
	recordID := params.ByName("id")

	if params.ByName("action") == "revise" {
		var body assessmentPayload
		if err := decodeJSON(r, &body); err != nil {
			return app.NewValidationError("invalid request body: %v", err)
		}
		item, err := s.c.Assessments.Revise(r.Context(), primary.ReviseAssessmentRequest{
			Actor:         actor,
			RecordID:      recordID,
			SourceVersion: version,
			ChangeNote:    body.ChangeNote,
			Stem:          body.Stem,
			Options:       body.Options,
			CorrectKey:    body.CorrectKey,
			Rationale:     body.Rationale,
			Claim:         body.Claim,
			Refs:          body.Refs,
			Tags:          body.Tags,
			Meta:          body.Meta,
		})
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusCreated, item)
		return nil
	}

	return s.runTransition(w, r, s.c.Assessments, actor, recordID, version, params.ByName("action"))
}

// lifecycle is the transition surface all three record services share.
type lifecycle interface {
	Submit(ctx context.Context, req primary.TransitionRequest) error
	Confirm(ctx context.Context, req primary.TransitionRequest) error
	ReturnForChanges(ctx context.Context, req primary.ReturnRequest) error
	ForceSubmit(ctx context.Context, req primary.TransitionRequest) error
	ForceConfirm(ctx context.Context, req primary.TransitionRequest) error
}

func (s *Server) runTransition(w http.ResponseWriter, r *http.Request, svc lifecycle, actor primary.Actor, recordID string, version int, action string) error {
	req := primary.TransitionRequest{Actor: actor, RecordID: recordID, Version: version}

	var err error
	switch action {
	case "submit":
		err = svc.Submit(r.Context(), req)
	case "confirm":
		err = svc.Confirm(r.Context(), req)
	case "return":
		var body returnBody
		if decErr := decodeJSON(r, &body); decErr != nil {
			return app.NewValidationError("invalid request body: %v", decErr)
		}
		err = svc.ReturnForChanges(r.Context(), primary.ReturnRequest{
			Actor:    actor,
			RecordID: recordID,
			Version:  version,
			Note:     body.Note,
		})
	case "force-submit":
		err = svc.ForceSubmit(r.Context(), req)
	case "force-confirm":
		err = svc.ForceConfirm(r.Context(), req)
	default:
		return app.NewValidationError("unknown action %q", action)
	}
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"record_id": recordID,
		"version":   version,
		"action":    action,
	})
	return nil
}
