package output

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/agentstation/promptradar/pkg/constants"
	"github.com/agentstation/promptradar/pkg/report"
	"github.com/agentstation/promptradar/pkg/snapshots"
	"github.com/agentstation/promptradar/pkg/sources"
)

// ToolStatus is one row of the status listing.
type ToolStatus struct {
	ID            string          `json:"id" yaml:"id"`
	Name          string          `json:"name" yaml:"name"`
	State         snapshots.State `json:"state" yaml:"state"`
	Hash          string          `json:"hash,omitempty" yaml:"hash,omitempty"`
	Confidence    float64         `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Source        *sources.Source `json:"source,omitempty" yaml:"source,omitempty"`
	Failures      int             `json:"failures" yaml:"failures"`
	LastCheckedAt string          `json:"lastCheckedAt" yaml:"lastCheckedAt"`
}

// StatusRows lists the tools of current sorted by id.
func StatusRows(current *snapshots.Current) []ToolStatus {
	if current == nil {
		return []ToolStatus{}
	}
	ids := make([]string, 0, len(current.Tools))
	for id := range current.Tools {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]ToolStatus, 0, len(ids))
	for _, id := range ids {
		e := current.Tools[id]
		row := ToolStatus{
			ID:            e.ID,
			Name:          e.Name,
			State:         e.State(),
			Failures:      len(e.Failures),
			LastCheckedAt: e.LastCheckedAt.Time.UTC().Format(report.TimeLayout),
		}
		if e.TopCandidate != nil {
			src := e.TopCandidate.Source
			row.Hash = e.TopCandidate.Hash
			row.Confidence = e.TopCandidate.Confidence
			row.Source = &src
		}
		rows = append(rows, row)
	}
	return rows
}

// StatusTable converts status rows to table data.
func StatusTable(rows []ToolStatus) Data {
	data := Data{
		Headers:         []string{"ID", "Name", "State", "Hash", "Confidence", "Source", "Failures", "Last Checked"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignLeft, AlignRight, AlignLeft},
	}
	for _, r := range rows {
		hash, conf, src := "-", "-", "-"
		if r.Source != nil {
			hash = ShortHash(r.Hash)
			conf = report.FormatConfidence(r.Confidence)
			src = string(r.Source.Type) + " " + r.Source.URL
		}
		data.Rows = append(data.Rows, []string{
			r.ID,
			r.Name,
			string(r.State),
			hash,
			conf,
			src,
			strconv.Itoa(r.Failures),
			r.LastCheckedAt,
		})
	}
	return data
}

// ChangesTable converts change records to table data.
func ChangesTable(changes []snapshots.ChangeRecord) Data {
	data := Data{
		Headers:         []string{"Detected", "Tool", "Previous", "New", "Confidence", "Source"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignLeft},
	}
	for _, c := range changes {
		prev := "none"
		if c.PreviousHash != nil && *c.PreviousHash != "" {
			prev = ShortHash(*c.PreviousHash)
		}
		data.Rows = append(data.Rows, []string{
			c.DetectedAt.Time.UTC().Format(constants.TimeFormatHuman),
			c.ToolID,
			prev,
			ShortHash(c.NewHash),
			report.FormatConfidence(c.Confidence),
			string(c.Source.Type) + " " + c.Source.URL,
		})
	}
	return data
}

// ToolsTable converts configured tools to table data.
func ToolsTable(tools []sources.Tool) Data {
	data := Data{
		Headers:         []string{"ID", "Name", "Aliases", "Sources"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight},
	}
	for _, t := range tools {
		aliases := strings.Join(t.Aliases, ", ")
		if aliases == "" {
			aliases = "-"
		}
		data.Rows = append(data.Rows, []string{t.ID, t.Name, aliases, strconv.Itoa(len(t.Sources))})
	}
	return data
}

// ShortHash abbreviates a content hash for display.
func ShortHash(hash string) string {
	if len(hash) <= constants.ShortHashLength {
		return hash
	}
	return hash[:constants.ShortHashLength]
}

// Render writes data in format. Table output renders table instead of
// reflecting over data.
func Render(w io.Writer, format Format, data any, table Data) error {
	if format == FormatJSON || format == FormatYAML {
		return NewFormatter(format).Format(w, data)
	}
	return NewFormatter(FormatTable).Format(w, table)
}
