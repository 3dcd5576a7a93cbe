//go:build ignore

package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	_ "github.com/mattn/go-sqlite3"
)

// Step mirrors the JSON shape stored in tasks.steps_json.
type Step struct {
	Text       string   `json:"text"`
	Completion string   `json:"completion"`
	Actions    []string `json:"actions,omitempty"`
}

// codeSpanRe extracts backticked command spans from step text.
var codeSpanRe = regexp.MustCompile("`([^`]+)`")

// Backfills step actions for draft task versions whose steps carry
// backticked commands in the text but no actions array yet. Only drafts
// are touched: every other status is immutable content.
func main() {
	dryRun := flag.Bool("dry-run", false, "Preview backfill without executing")
	flag.Parse()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting home dir: %v\n", err)
		os.Exit(1)
	}
	dbPath := filepath.Join(homeDir, ".lcs", "lcs.db")

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT record_id, version, steps_json
		FROM tasks
		WHERE status = 'draft'
		ORDER BY record_id, version
	`)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying tasks: %v\n", err)
		os.Exit(1)
	}
	defer rows.Close()

	type candidate struct {
		recordID string
		version  int
		steps    []Step
	}
	var candidates []candidate

	for rows.Next() {
		var recordID, stepsJSON string
		var version int
		if err := rows.Scan(&recordID, &version, &stepsJSON); err != nil {
			fmt.Fprintf(os.Stderr, "Error scanning row: %v\n", err)
			os.Exit(1)
		}

		var steps []Step
		if err := json.Unmarshal([]byte(stepsJSON), &steps); err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s v%d: bad steps JSON: %v\n", recordID, version, err)
			continue
		}

		changed := false
		for i := range steps {
			if len(steps[i].Actions) > 0 {
				continue
			}
			for _, m := range codeSpanRe.FindAllStringSubmatch(steps[i].Text, -1) {
				steps[i].Actions = append(steps[i].Actions, m[1])
				changed = true
			}
		}
		if changed {
			candidates = append(candidates, candidate{recordID, version, steps})
		}
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading rows: %v\n", err)
		os.Exit(1)
	}

	if len(candidates) == 0 {
		fmt.Println("No draft task versions need backfilling")
		return
	}

	fmt.Printf("Found %d draft version(s) to backfill:\n\n", len(candidates))
	for _, c := range candidates {
		fmt.Printf("  %s v%d\n", c.recordID, c.version)
	}

	if *dryRun {
		fmt.Println("\n=== DRY RUN - No changes made ===")
		return
	}

	fmt.Println("\n=== Executing backfill ===")
	updated := 0
	for _, c := range candidates {
		data, err := json.Marshal(c.steps)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding %s v%d: %v\n", c.recordID, c.version, err)
			continue
		}
		_, err = db.Exec(
			"UPDATE tasks SET steps_json = ? WHERE record_id = ? AND version = ? AND status = 'draft'",
			string(data), c.recordID, c.version,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error updating %s v%d: %v\n", c.recordID, c.version, err)
			continue
		}
		updated++
	}

	fmt.Printf("\n=== Backfill complete: %d/%d versions updated ===\n", updated, len(candidates))
}
