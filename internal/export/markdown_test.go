package export

import (
	"strings"
	"testing"

	"github.com/example/lcs/internal/models"
)

func sampleWorkflow() (*models.Workflow, []*models.Task) {
	wf := &models.Workflow{
		RecordID:  "wf-1",
		Version:   2,
		Title:     "Provision web host",
		Objective: "A hardened host serving the app",
		Tags:      []string{"web", "ops"},
	}
	tasks := []*models.Task{
		{
			RecordID:         "task-1",
			Version:          3,
			Title:            "Install nginx",
			Outcome:          "nginx serves the default page",
			IrreversibleFlag: true,
			Dependencies:     []string{"base-image"},
			Steps: []models.Step{
				{
					Text:       "Install the package",
					Completion: "apt exits 0",
					Actions:    []string{"apt-get install nginx"},
				},
				{Text: "Check the service", Completion: "systemctl reports active"},
			},
		},
		{
			RecordID: "task-2",
			Version:  1,
			Title:    "Open the firewall",
		},
	}
	return wf, tasks
}

func TestMarkdownLayout(t *testing.T) {
	wf, tasks := sampleWorkflow()
	out := string(Markdown(wf, tasks))

	for _, want := range []string{
		"# Provision web host\n",
		"A hardened host serving the app\n",
		"Tags: web, ops\n",
		"## Task 1: Install nginx (v3)\n",
		"**Outcome:** nginx serves the default page\n",
		"**Warning:** this task performs irreversible changes.\n",
		"Requires: base-image\n",
		"1. Install the package\n",
		"   - Verify: apt exits 0\n",
		"   - `apt-get install nginx`\n",
		"2. Check the service\n",
		"## Task 2: Open the firewall (v1)\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}

	// Tasks render in reference order.
	if strings.Index(out, "Task 1:") > strings.Index(out, "Task 2:") {
		t.Error("tasks rendered out of order")
	}
}

func TestMarkdownOmitsEmptySections(t *testing.T) {
	wf := &models.Workflow{Title: "Bare"}
	out := string(Markdown(wf, nil))

	if strings.Contains(out, "Tags:") {
		t.Error("unexpected Tags section for untagged workflow")
	}
	if !strings.HasPrefix(out, "# Bare\n") {
		t.Errorf("unexpected layout:\n%s", out)
	}
}

func TestHTMLRendersDocument(t *testing.T) {
	wf, tasks := sampleWorkflow()
	out := string(HTML(wf, tasks))

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Provision web host</title>",
		"Install nginx",
		"<code>apt-get install nginx</code>",
		"</html>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestHTMLEscapesTitle(t *testing.T) {
	wf := &models.Workflow{Title: `Ops <"fast" & loose>`}
	out := string(HTML(wf, nil))

	if !strings.Contains(out, "<title>Ops &lt;&quot;fast&quot; &amp; loose&gt;</title>") {
		t.Errorf("title not escaped:\n%s", out)
	}
}
