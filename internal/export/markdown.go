// Package export renders confirmed workflows into delivery formats. The
// markdown layout is the canonical one; HTML is produced by rendering the
// markdown through a CommonMark engine.
package export

import (
	"fmt"
	"strings"

	"gitlab.com/golang-commonmark/markdown"

	"github.com/example/lcs/internal/models"
)

// Markdown renders a workflow and its resolved task versions as a
// checklist document. Tasks must be passed in reference order.
func Markdown(wf *models.Workflow, tasks []*models.Task) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", wf.Title)
	if wf.Objective != "" {
		fmt.Fprintf(&b, "%s\n\n", wf.Objective)
	}
	if len(wf.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(wf.Tags, ", "))
	}

	for i, t := range tasks {
		fmt.Fprintf(&b, "## Task %d: %s (v%d)\n\n", i+1, t.Title, t.Version)
		if t.Outcome != "" {
			fmt.Fprintf(&b, "**Outcome:** %s\n\n", t.Outcome)
		}
		if t.IrreversibleFlag {
			b.WriteString("**Warning:** this task performs irreversible changes.\n\n")
		}
		if len(t.Dependencies) > 0 {
			fmt.Fprintf(&b, "Requires: %s\n\n", strings.Join(t.Dependencies, ", "))
		}

		for j, s := range t.Steps {
			fmt.Fprintf(&b, "%d. %s\n", j+1, s.Text)
			if s.Completion != "" {
				fmt.Fprintf(&b, "   - Verify: %s\n", s.Completion)
			}
			for _, a := range s.Actions {
				fmt.Fprintf(&b, "   - `%s`\n", a)
			}
		}
		if len(t.Steps) > 0 {
			b.WriteString("\n")
		}
	}

	return []byte(b.String())
}

// HTML renders the markdown layout through CommonMark and wraps it in a
// minimal standalone document.
func HTML(wf *models.Workflow, tasks []*models.Task) []byte {
	md := markdown.New(markdown.XHTMLOutput(true))
	body := md.RenderToString(Markdown(wf, tasks))

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(&b, "<meta charset=\"utf-8\">\n<title>%s</title>\n", htmlEscape(wf.Title))
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("</body>\n</html>\n")
	return []byte(b.String())
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
