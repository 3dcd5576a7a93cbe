package primary

import "context"

// Export formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// ExportRequest asks for a rendered workflow package. Version 0 selects
// the currently confirmed version.
type ExportRequest struct {
	Actor    Actor
	RecordID string
	Version  int
	Format   string
}

// ExportResult is a rendered workflow package together with the resolved
// version it was built from.
type ExportResult struct {
	RecordID string
	Version  int
	Format   string
	Content  []byte
}

// DeliveryService is the read-only delivery surface: confirmed-and-ready
// workflows rendered for consumption.
type DeliveryService interface {
	// ExportWorkflow renders a confirmed workflow whose readiness is ready.
	// Each successful export is recorded as an artifact and audited.
	ExportWorkflow(ctx context.Context, req ExportRequest) (*ExportResult, error)
}
