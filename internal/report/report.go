// Package report renders batch windows for the command line.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/bft-labs/batchclock/pkg/batch"
)

// Role names why a batch is being reported.
const (
	RoleCollecting = "collecting"
	RoleSolving    = "solving"
)

// Report is the set of instants that bound one batch.
type Report struct {
	Role                 string    `json:"role,omitempty"`
	Batch                batch.ID  `json:"batch"`
	OrderCollectionStart time.Time `json:"order_collection_start"`
	SolveStart           time.Time `json:"solve_start"`
	SolveEnd             time.Time `json:"solve_end"`
}

// For builds the report of id.
func For(id batch.ID, role string) Report {
	return Report{
		Role:                 role,
		Batch:                id,
		OrderCollectionStart: id.OrderCollectionStartTime(),
		SolveStart:           id.SolveStartTime(),
		SolveEnd:             id.SolveEndTime(),
	}
}

// Write renders r as a table ("text") or a JSON object ("json").
func Write(w io.Writer, output string, r Report) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "text":
		table := tablewriter.NewWriter(w)
		table.SetAutoFormatHeaders(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetBorder(false)
		table.SetHeader([]string{"Field", "Value"})
		if r.Role != "" {
			table.Append([]string{"Role", r.Role})
		}
		table.Append([]string{"Batch", r.Batch.String()})
		table.Append([]string{"Order collection start", r.OrderCollectionStart.Format(time.RFC3339)})
		table.Append([]string{"Solve start", r.SolveStart.Format(time.RFC3339)})
		table.Append([]string{"Solve end", r.SolveEnd.Format(time.RFC3339)})
		table.Render()
		return nil
	default:
		return fmt.Errorf("unknown output %q", output)
	}
}
