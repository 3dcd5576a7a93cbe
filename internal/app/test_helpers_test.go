package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/primary"
	"github.com/example/lcs/internal/ports/secondary"
)

// Hand-written in-memory mocks for the secondary ports. They mirror the
// SQLite adapter's transition semantics (conditional update plus audit row)
// so service tests exercise the same contract the real store honors.

type mockAuditRepo struct {
	events []*models.AuditEvent
}

func (m *mockAuditRepo) append(entityKind, recordID string, version int, action, actor, note string) {
	m.events = append(m.events, &models.AuditEvent{
		ID:         int64(len(m.events) + 1),
		EntityKind: entityKind,
		RecordID:   recordID,
		Version:    version,
		Action:     action,
		Actor:      actor,
		At:         time.Now().UTC(),
		Note:       note,
	})
}

func (m *mockAuditRepo) ListForRecord(ctx context.Context, entityKind, recordID string) ([]*models.AuditEvent, error) {
	var out []*models.AuditEvent
	for _, e := range m.events {
		if e.EntityKind == entityKind && e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockAuditRepo) LatestForAction(ctx context.Context, entityKind, recordID, action string) (*models.AuditEvent, error) {
	for i := len(m.events) - 1; i >= 0; i-- {
		e := m.events[i]
		if e.EntityKind == entityKind && e.RecordID == recordID && e.Action == action {
			return e, nil
		}
	}
	return nil, secondary.ErrNotFound
}

func (m *mockAuditRepo) countAction(entityKind, recordID, action string) int {
	n := 0
	for _, e := range m.events {
		if e.EntityKind == entityKind && e.RecordID == recordID && e.Action == action {
			n++
		}
	}
	return n
}

// statusRow is the part of a record the generic transition logic needs.
type statusRow struct {
	status     string
	updatedBy  string
	reviewedBy string
}

func transitionRow(rows map[int]*statusRow, p secondary.TransitionParams, audit *mockAuditRepo, entityKind string) error {
	row, ok := rows[p.Version]
	if !ok {
		return secondary.ErrNotFound
	}
	allowed := false
	for _, from := range p.From {
		if row.status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return secondary.ErrStatusConflict
	}
	row.status = p.To
	row.updatedBy = p.Actor
	audit.append(entityKind, p.RecordID, p.Version, p.Action, p.Actor, p.Note)
	return nil
}

func confirmRow(rows map[int]*statusRow, p secondary.TransitionParams, audit *mockAuditRepo, entityKind string) error {
	row, ok := rows[p.Version]
	if !ok {
		return secondary.ErrNotFound
	}
	allowed := false
	for _, from := range p.From {
		if row.status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return secondary.ErrStatusConflict
	}
	for v, other := range rows {
		if v != p.Version && other.status == models.StatusConfirmed {
			other.status = models.StatusDeprecated
			other.updatedBy = p.Actor
			audit.append(entityKind, p.RecordID, v, models.ActionDeprecate, p.Actor, fmt.Sprintf("superseded by version %d", p.Version))
		}
	}
	row.status = models.StatusConfirmed
	row.updatedBy = p.Actor
	row.reviewedBy = p.Actor
	audit.append(entityKind, p.RecordID, p.Version, p.Action, p.Actor, p.Note)
	return nil
}

type mockTaskRepo struct {
	tasks map[string]map[int]*models.Task
	audit *mockAuditRepo
}

func newMockTaskRepo(audit *mockAuditRepo) *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[string]map[int]*models.Task), audit: audit}
}

func (m *mockTaskRepo) rows(recordID string) map[int]*statusRow {
	out := make(map[int]*statusRow)
	for v, t := range m.tasks[recordID] {
		out[v] = &statusRow{status: t.Status, reviewedBy: t.ReviewedBy}
	}
	return out
}

func (m *mockTaskRepo) applyRows(recordID string, rows map[int]*statusRow) {
	for v, row := range rows {
		t := m.tasks[recordID][v]
		t.Status = row.status
		if row.updatedBy != "" {
			t.UpdatedBy = row.updatedBy
		}
		if row.reviewedBy != "" {
			t.ReviewedBy = row.reviewedBy
			t.ReviewedAt = time.Now().UTC()
		}
	}
}

func (m *mockTaskRepo) InsertVersion(ctx context.Context, t *models.Task, auditNote string) error {
	if m.tasks[t.RecordID] == nil {
		m.tasks[t.RecordID] = make(map[int]*models.Task)
	}
	if _, exists := m.tasks[t.RecordID][t.Version]; exists {
		return secondary.ErrAlreadyExists
	}
	copied := *t
	m.tasks[t.RecordID][t.Version] = &copied
	action := models.ActionCreate
	if t.Version > 1 {
		action = models.ActionNewVersion
	}
	m.audit.append(models.KindTask, t.RecordID, t.Version, action, t.CreatedBy, auditNote)
	return nil
}

func (m *mockTaskRepo) Get(ctx context.Context, recordID string, version int) (*models.Task, error) {
	t, ok := m.tasks[recordID][version]
	if !ok {
		return nil, secondary.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *mockTaskRepo) LatestVersion(ctx context.Context, recordID string) (int, error) {
	max := 0
	for v := range m.tasks[recordID] {
		if v > max {
			max = v
		}
	}
	return max, nil
}

func (m *mockTaskRepo) ConfirmedVersion(ctx context.Context, recordID string) (int, error) {
	for v, t := range m.tasks[recordID] {
		if t.Status == models.StatusConfirmed {
			return v, nil
		}
	}
	return 0, nil
}

func (m *mockTaskRepo) ListLatest(ctx context.Context, f secondary.RecordFilters) ([]*models.TaskSummary, error) {
	var out []*models.TaskSummary
	for recordID, versions := range m.tasks {
		latest, _ := m.LatestVersion(ctx, recordID)
		t := versions[latest]
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		out = append(out, &models.TaskSummary{
			RecordID:      recordID,
			LatestVersion: latest,
			Title:         t.Title,
			Status:        t.Status,
			Domain:        t.Domain,
		})
	}
	return out, nil
}

func (m *mockTaskRepo) ListVersions(ctx context.Context, recordID string) ([]*models.Task, error) {
	var out []*models.Task
	latest, _ := m.LatestVersion(ctx, recordID)
	for v := 1; v <= latest; v++ {
		if t, ok := m.tasks[recordID][v]; ok {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockTaskRepo) UpdateStatus(ctx context.Context, p secondary.TransitionParams) error {
	rows := m.rows(p.RecordID)
	if err := transitionRow(rows, p, m.audit, models.KindTask); err != nil {
		return err
	}
	m.applyRows(p.RecordID, rows)
	return nil
}

func (m *mockTaskRepo) Confirm(ctx context.Context, p secondary.TransitionParams) error {
	rows := m.rows(p.RecordID)
	if err := confirmRow(rows, p, m.audit, models.KindTask); err != nil {
		return err
	}
	m.applyRows(p.RecordID, rows)
	return nil
}

type mockWorkflowRepo struct {
	workflows map[string]map[int]*models.Workflow
	audit     *mockAuditRepo
}

func newMockWorkflowRepo(audit *mockAuditRepo) *mockWorkflowRepo {
	return &mockWorkflowRepo{workflows: make(map[string]map[int]*models.Workflow), audit: audit}
}

func (m *mockWorkflowRepo) InsertVersion(ctx context.Context, w *models.Workflow, auditNote string) error {
	if m.workflows[w.RecordID] == nil {
		m.workflows[w.RecordID] = make(map[int]*models.Workflow)
	}
	if _, exists := m.workflows[w.RecordID][w.Version]; exists {
		return secondary.ErrAlreadyExists
	}
	copied := *w
	m.workflows[w.RecordID][w.Version] = &copied
	action := models.ActionCreate
	if w.Version > 1 {
		action = models.ActionNewVersion
	}
	m.audit.append(models.KindWorkflow, w.RecordID, w.Version, action, w.CreatedBy, auditNote)
	return nil
}

func (m *mockWorkflowRepo) Get(ctx context.Context, recordID string, version int) (*models.Workflow, error) {
	w, ok := m.workflows[recordID][version]
	if !ok {
		return nil, secondary.ErrNotFound
	}
	copied := *w
	return &copied, nil
}

func (m *mockWorkflowRepo) LatestVersion(ctx context.Context, recordID string) (int, error) {
	max := 0
	for v := range m.workflows[recordID] {
		if v > max {
			max = v
		}
	}
	return max, nil
}

func (m *mockWorkflowRepo) ConfirmedVersion(ctx context.Context, recordID string) (int, error) {
	for v, w := range m.workflows[recordID] {
		if w.Status == models.StatusConfirmed {
			return v, nil
		}
	}
	return 0, nil
}

func (m *mockWorkflowRepo) ListLatest(ctx context.Context, f secondary.RecordFilters) ([]*models.WorkflowSummary, error) {
	var out []*models.WorkflowSummary
	for recordID := range m.workflows {
		latest, _ := m.LatestVersion(ctx, recordID)
		w := m.workflows[recordID][latest]
		if f.Status != "" && w.Status != f.Status {
			continue
		}
		out = append(out, &models.WorkflowSummary{
			RecordID:      recordID,
			LatestVersion: latest,
			Title:         w.Title,
			Status:        w.Status,
		})
	}
	return out, nil
}

func (m *mockWorkflowRepo) ListVersions(ctx context.Context, recordID string) ([]*models.Workflow, error) {
	var out []*models.Workflow
	latest, _ := m.LatestVersion(ctx, recordID)
	for v := 1; v <= latest; v++ {
		if w, ok := m.workflows[recordID][v]; ok {
			copied := *w
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockWorkflowRepo) UpdateStatus(ctx context.Context, p secondary.TransitionParams) error {
	w, ok := m.workflows[p.RecordID][p.Version]
	if !ok {
		return secondary.ErrNotFound
	}
	rows := map[int]*statusRow{p.Version: {status: w.Status}}
	if err := transitionRow(rows, p, m.audit, models.KindWorkflow); err != nil {
		return err
	}
	w.Status = rows[p.Version].status
	w.UpdatedBy = rows[p.Version].updatedBy
	return nil
}

func (m *mockWorkflowRepo) Confirm(ctx context.Context, p secondary.TransitionParams) error {
	rows := make(map[int]*statusRow)
	for v, w := range m.workflows[p.RecordID] {
		rows[v] = &statusRow{status: w.Status}
	}
	if err := confirmRow(rows, p, m.audit, models.KindWorkflow); err != nil {
		return err
	}
	for v, row := range rows {
		w := m.workflows[p.RecordID][v]
		w.Status = row.status
		if row.updatedBy != "" {
			w.UpdatedBy = row.updatedBy
		}
		if row.reviewedBy != "" {
			w.ReviewedBy = row.reviewedBy
			w.ReviewedAt = time.Now().UTC()
		}
	}
	return nil
}

type mockAssessmentRepo struct {
	items map[string]map[int]*models.Assessment
	audit *mockAuditRepo
}

func newMockAssessmentRepo(audit *mockAuditRepo) *mockAssessmentRepo {
	return &mockAssessmentRepo{items: make(map[string]map[int]*models.Assessment), audit: audit}
}

func (m *mockAssessmentRepo) InsertVersion(ctx context.Context, a *models.Assessment, auditNote string) error {
	if m.items[a.RecordID] == nil {
		m.items[a.RecordID] = make(map[int]*models.Assessment)
	}
	if _, exists := m.items[a.RecordID][a.Version]; exists {
		return secondary.ErrAlreadyExists
	}
	copied := *a
	m.items[a.RecordID][a.Version] = &copied
	action := models.ActionCreate
	if a.Version > 1 {
		action = models.ActionNewVersion
	}
	m.audit.append(models.KindAssessment, a.RecordID, a.Version, action, a.CreatedBy, auditNote)
	return nil
}

func (m *mockAssessmentRepo) Get(ctx context.Context, recordID string, version int) (*models.Assessment, error) {
	a, ok := m.items[recordID][version]
	if !ok {
		return nil, secondary.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockAssessmentRepo) LatestVersion(ctx context.Context, recordID string) (int, error) {
	max := 0
	for v := range m.items[recordID] {
		if v > max {
			max = v
		}
	}
	return max, nil
}

func (m *mockAssessmentRepo) ConfirmedVersion(ctx context.Context, recordID string) (int, error) {
	for v, a := range m.items[recordID] {
		if a.Status == models.StatusConfirmed {
			return v, nil
		}
	}
	return 0, nil
}

func (m *mockAssessmentRepo) ListLatest(ctx context.Context, f secondary.RecordFilters) ([]*models.AssessmentSummary, error) {
	var out []*models.AssessmentSummary
	for recordID := range m.items {
		latest, _ := m.LatestVersion(ctx, recordID)
		a := m.items[recordID][latest]
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, &models.AssessmentSummary{
			RecordID:      recordID,
			LatestVersion: latest,
			Stem:          a.Stem,
			Status:        a.Status,
			Claim:         a.Claim,
		})
	}
	return out, nil
}

func (m *mockAssessmentRepo) ListVersions(ctx context.Context, recordID string) ([]*models.Assessment, error) {
	var out []*models.Assessment
	latest, _ := m.LatestVersion(ctx, recordID)
	for v := 1; v <= latest; v++ {
		if a, ok := m.items[recordID][v]; ok {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockAssessmentRepo) UpdateStatus(ctx context.Context, p secondary.TransitionParams) error {
	a, ok := m.items[p.RecordID][p.Version]
	if !ok {
		return secondary.ErrNotFound
	}
	rows := map[int]*statusRow{p.Version: {status: a.Status}}
	if err := transitionRow(rows, p, m.audit, models.KindAssessment); err != nil {
		return err
	}
	a.Status = rows[p.Version].status
	a.UpdatedBy = rows[p.Version].updatedBy
	return nil
}

func (m *mockAssessmentRepo) Confirm(ctx context.Context, p secondary.TransitionParams) error {
	rows := make(map[int]*statusRow)
	for v, a := range m.items[p.RecordID] {
		rows[v] = &statusRow{status: a.Status}
	}
	if err := confirmRow(rows, p, m.audit, models.KindAssessment); err != nil {
		return err
	}
	for v, row := range rows {
		a := m.items[p.RecordID][v]
		a.Status = row.status
		if row.updatedBy != "" {
			a.UpdatedBy = row.updatedBy
		}
		if row.reviewedBy != "" {
			a.ReviewedBy = row.reviewedBy
			a.ReviewedAt = time.Now().UTC()
		}
	}
	return nil
}

type mockDomainRepo struct {
	active       map[string]bool
	disabled     map[string]bool
	entitlements map[string]map[string]bool
}

func newMockDomainRepo(activeDomains ...string) *mockDomainRepo {
	m := &mockDomainRepo{
		active:       make(map[string]bool),
		disabled:     make(map[string]bool),
		entitlements: make(map[string]map[string]bool),
	}
	for _, d := range activeDomains {
		m.active[d] = true
	}
	return m
}

func (m *mockDomainRepo) entitle(username string, domains ...string) {
	if m.entitlements[username] == nil {
		m.entitlements[username] = make(map[string]bool)
	}
	for _, d := range domains {
		m.entitlements[username][d] = true
	}
}

func (m *mockDomainRepo) Create(ctx context.Context, name, actor string) error {
	if m.active[name] || m.disabled[name] {
		return secondary.ErrAlreadyExists
	}
	m.active[name] = true
	return nil
}

func (m *mockDomainRepo) Disable(ctx context.Context, name string) error {
	if !m.active[name] && !m.disabled[name] {
		return secondary.ErrNotFound
	}
	delete(m.active, name)
	m.disabled[name] = true
	return nil
}

func (m *mockDomainRepo) List(ctx context.Context) ([]*models.Domain, error) {
	var out []*models.Domain
	for name := range m.active {
		out = append(out, &models.Domain{Name: name})
	}
	for name := range m.disabled {
		out = append(out, &models.Domain{Name: name, Disabled: true})
	}
	return out, nil
}

func (m *mockDomainRepo) ListActive(ctx context.Context) ([]string, error) {
	var out []string
	for name := range m.active {
		out = append(out, name)
	}
	return out, nil
}

func (m *mockDomainRepo) Grant(ctx context.Context, username, domain, actor string) error {
	if m.entitlements[username][domain] {
		return secondary.ErrAlreadyExists
	}
	m.entitle(username, domain)
	return nil
}

func (m *mockDomainRepo) Revoke(ctx context.Context, username, domain string) error {
	if !m.entitlements[username][domain] {
		return secondary.ErrNotFound
	}
	delete(m.entitlements[username], domain)
	return nil
}

func (m *mockDomainRepo) EntitledDomains(ctx context.Context, username string) ([]string, error) {
	var out []string
	for d := range m.entitlements[username] {
		out = append(out, d)
	}
	return out, nil
}

func (m *mockDomainRepo) IsEntitled(ctx context.Context, username, domain string) (bool, error) {
	return m.entitlements[username][domain], nil
}

type mockUserRepo struct {
	users map[string]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*models.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, u *models.User) error {
	if _, exists := m.users[u.Username]; exists {
		return secondary.ErrAlreadyExists
	}
	copied := *u
	m.users[u.Username] = &copied
	return nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, secondary.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range m.users {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, username string) error {
	if _, ok := m.users[username]; !ok {
		return secondary.ErrNotFound
	}
	delete(m.users, username)
	return nil
}

type mockExportRepo struct {
	artifacts []*secondary.ExportArtifact
	audit     *mockAuditRepo
}

func (m *mockExportRepo) Record(ctx context.Context, a *secondary.ExportArtifact) error {
	copied := *a
	m.artifacts = append(m.artifacts, &copied)
	m.audit.append(models.KindWorkflow, a.WorkflowRecordID, a.WorkflowVersion, models.ActionExport, a.CreatedBy, fmt.Sprintf("exported %s (%d bytes)", a.Format, a.ByteSize))
	return nil
}

func (m *mockExportRepo) ListForWorkflow(ctx context.Context, recordID string) ([]*secondary.ExportArtifact, error) {
	var out []*secondary.ExportArtifact
	for _, a := range m.artifacts {
		if a.WorkflowRecordID == recordID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Common actors used across service tests.
var (
	actorViewer    = primary.Actor{User: "vera", Role: models.RoleViewer}
	actorAuthor    = primary.Actor{User: "alice", Role: models.RoleAuthor}
	actorItemsAuth = primary.Actor{User: "quinn", Role: models.RoleAssessmentAuthor}
	actorReviewer  = primary.Actor{User: "rex", Role: models.RoleReviewer}
	actorPublisher = primary.Actor{User: "pat", Role: models.RoleContentPublisher}
	actorAdmin     = primary.Actor{User: "root", Role: models.RoleAdmin}
)

// Interface assertions for the mocks.
var (
	_ secondary.TaskRepository           = (*mockTaskRepo)(nil)
	_ secondary.WorkflowRepository       = (*mockWorkflowRepo)(nil)
	_ secondary.AssessmentRepository     = (*mockAssessmentRepo)(nil)
	_ secondary.DomainRepository         = (*mockDomainRepo)(nil)
	_ secondary.UserRepository           = (*mockUserRepo)(nil)
	_ secondary.AuditRepository          = (*mockAuditRepo)(nil)
	_ secondary.ExportArtifactRepository = (*mockExportRepo)(nil)
)
