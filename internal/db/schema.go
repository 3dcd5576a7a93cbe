package db

// SchemaSQL is the complete schema for fresh installs. It is the SINGLE
// SOURCE OF TRUTH: all repository tests build their databases from
// GetSchemaSQL(), so any drift between code and schema fails immediately
// with "no such column".
//
// Content rows are immutable snapshots keyed (record_id, version); the only
// columns ever updated in place are status and the bookkeeping stamps.
// Structured sub-objects (facts, steps, options, tags, meta) are stored as
// JSON text and decoded into typed structs at the adapter boundary.
const SchemaSQL = `
-- Domain registry (governance scopes)
CREATE TABLE IF NOT EXISTS domains (
	name TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL,
	created_by TEXT NOT NULL,
	disabled_at DATETIME
);

-- Per-domain entitlements (additive grants, independent of role)
CREATE TABLE IF NOT EXISTS user_domains (
	username TEXT NOT NULL,
	domain TEXT NOT NULL,
	granted_at DATETIME NOT NULL,
	granted_by TEXT NOT NULL,
	PRIMARY KEY (username, domain),
	FOREIGN KEY (domain) REFERENCES domains(name) ON DELETE CASCADE
);

-- Identity (the governance engine only consumes username + role)
CREATE TABLE IF NOT EXISTS users (
	username TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL CHECK(role IN ('viewer', 'author', 'assessment_author', 'reviewer', 'content_publisher', 'admin')),
	created_at DATETIME NOT NULL
);

-- HTTP sessions, managed by scs/sqlite3store
CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	expiry REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_expiry ON sessions(expiry);

-- Tasks (atomic content records, one row per immutable version)
CREATE TABLE IF NOT EXISTS tasks (
	record_id TEXT NOT NULL,
	version INTEGER NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('draft', 'submitted', 'returned', 'confirmed', 'deprecated')),

	title TEXT NOT NULL,
	outcome TEXT NOT NULL,
	facts_json TEXT NOT NULL,
	concepts_json TEXT NOT NULL,
	procedure_name TEXT NOT NULL,
	steps_json TEXT NOT NULL,
	dependencies_json TEXT NOT NULL,
	irreversible_flag INTEGER NOT NULL DEFAULT 0,
	domain TEXT NOT NULL DEFAULT '',

	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	created_by TEXT NOT NULL,
	updated_by TEXT NOT NULL,
	reviewed_at DATETIME,
	reviewed_by TEXT,
	change_note TEXT,

	needs_review_flag INTEGER NOT NULL DEFAULT 0,
	needs_review_note TEXT,

	PRIMARY KEY (record_id, version)
);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);

-- Workflows (composite content records)
CREATE TABLE IF NOT EXISTS workflows (
	record_id TEXT NOT NULL,
	version INTEGER NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('draft', 'submitted', 'returned', 'confirmed', 'deprecated')),

	title TEXT NOT NULL,
	objective TEXT NOT NULL,
	tags_json TEXT NOT NULL DEFAULT '[]',
	meta_json TEXT NOT NULL DEFAULT '{}',

	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	created_by TEXT NOT NULL,
	updated_by TEXT NOT NULL,
	reviewed_at DATETIME,
	reviewed_by TEXT,
	change_note TEXT,

	needs_review_flag INTEGER NOT NULL DEFAULT 0,
	needs_review_note TEXT,

	PRIMARY KEY (record_id, version)
);
CREATE INDEX IF NOT EXISTS idx_workflows_status ON workflows(status);

-- Ordered workflow -> task version pins
CREATE TABLE IF NOT EXISTS workflow_task_refs (
	workflow_record_id TEXT NOT NULL,
	workflow_version INTEGER NOT NULL,
	order_index INTEGER NOT NULL,
	task_record_id TEXT NOT NULL,
	task_version INTEGER NOT NULL,

	PRIMARY KEY (workflow_record_id, workflow_version, order_index),
	FOREIGN KEY (workflow_record_id, workflow_version)
		REFERENCES workflows(record_id, version)
		ON DELETE CASCADE
);

-- Assessment items (multiple-choice, options keyed A-D)
CREATE TABLE IF NOT EXISTS assessment_items (
	record_id TEXT NOT NULL,
	version INTEGER NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('draft', 'submitted', 'returned', 'confirmed', 'deprecated')),

	stem TEXT NOT NULL,
	options_json TEXT NOT NULL,
	correct_key TEXT NOT NULL,
	rationale TEXT NOT NULL DEFAULT '',
	claim TEXT NOT NULL DEFAULT 'fact_probe',
	tags_json TEXT NOT NULL DEFAULT '[]',
	meta_json TEXT NOT NULL DEFAULT '{}',

	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	created_by TEXT NOT NULL,
	updated_by TEXT NOT NULL,
	reviewed_at DATETIME,
	reviewed_by TEXT,
	change_note TEXT,

	needs_review_flag INTEGER NOT NULL DEFAULT 0,
	needs_review_note TEXT,

	PRIMARY KEY (record_id, version)
);
CREATE INDEX IF NOT EXISTS idx_assessment_items_status ON assessment_items(status);

-- Ordered assessment -> task/workflow version pins
CREATE TABLE IF NOT EXISTS assessment_refs (
	assessment_record_id TEXT NOT NULL,
	assessment_version INTEGER NOT NULL,
	order_index INTEGER NOT NULL,
	ref_type TEXT NOT NULL CHECK(ref_type IN ('task', 'workflow')),
	ref_record_id TEXT NOT NULL,
	ref_version INTEGER NOT NULL,

	PRIMARY KEY (assessment_record_id, assessment_version, order_index),
	FOREIGN KEY (assessment_record_id, assessment_version)
		REFERENCES assessment_items(record_id, version)
		ON DELETE CASCADE
);

-- Append-only audit trail; rows are never updated or deleted
CREATE TABLE IF NOT EXISTS audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	entity_kind TEXT NOT NULL,
	record_id TEXT NOT NULL,
	version INTEGER NOT NULL,
	action TEXT NOT NULL,
	actor TEXT NOT NULL,
	at DATETIME NOT NULL,
	note TEXT
);
CREATE INDEX IF NOT EXISTS idx_audit_log_record ON audit_log(entity_kind, record_id);

-- Export artifact bookkeeping (delivery layer)
CREATE TABLE IF NOT EXISTS export_artifacts (
	id TEXT PRIMARY KEY,
	workflow_record_id TEXT NOT NULL,
	workflow_version INTEGER NOT NULL,
	format TEXT NOT NULL CHECK(format IN ('markdown', 'html')),
	byte_size INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	created_by TEXT NOT NULL
);
`

// GetSchemaSQL returns the authoritative schema. Tests must use this
// instead of hardcoding CREATE TABLE statements.
func GetSchemaSQL() string {
	return SchemaSQL
}
