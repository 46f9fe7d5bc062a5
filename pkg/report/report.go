// Package report summarizes the latest radar run for people: the change
// records of the run and how many tracked tools fell back or are
// unavailable.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/agentstation/promptradar/pkg/snapshots"
)

const (
	ruleWidth = 60

	// TimeLayout is ISO 8601 in UTC with millisecond precision.
	TimeLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Report is the data behind a rendered report. It is also the shape the
// json and yaml output formats emit.
type Report struct {
	GeneratedAt *string                  `json:"generatedAt" yaml:"generatedAt"`
	Changes     []snapshots.ChangeRecord `json:"changes" yaml:"changes"`
	Tally       snapshots.Tally          `json:"tally" yaml:"tally"`
}

// New builds a Report from the latest changes and the current snapshot.
// Either document may be nil.
func New(latest *snapshots.ChangesLatest, current *snapshots.Current) Report {
	r := Report{Changes: []snapshots.ChangeRecord{}}
	if latest != nil {
		if latest.GeneratedAt != nil {
			s := latest.GeneratedAt.Time.UTC().Format(TimeLayout)
			r.GeneratedAt = &s
		}
		if latest.Changes != nil {
			r.Changes = latest.Changes
		}
	}
	if current != nil {
		r.Tally = current.Tally()
	}
	return r
}

// Write renders r as plain text.
func (r Report) Write(w io.Writer) error {
	p := &printer{w: w}

	generated := "n/a"
	if r.GeneratedAt != nil {
		generated = *r.GeneratedAt
	}
	p.printf("Prompt Radar Report @ %s\n", generated)
	p.printf("%s\n", strings.Repeat("=", ruleWidth))

	if len(r.Changes) == 0 {
		p.printf("No new prompt changes detected in latest run.\n")
	}
	for _, c := range r.Changes {
		prev := "none"
		if c.PreviousHash != nil && *c.PreviousHash != "" {
			prev = *c.PreviousHash
		}
		p.printf("- %s (%s)\n", c.ToolName, c.ToolID)
		p.printf("  prev: %s\n", prev)
		p.printf("  new : %s\n", c.NewHash)
		p.printf("  conf: %s\n", FormatConfidence(c.Confidence))
		p.printf("  src : %s %s\n", c.Source.Type, c.Source.URL)
	}

	p.printf("%s\n", strings.Repeat("-", ruleWidth))
	p.printf("Tracked tools: %d\n", r.Tally.Tracked)
	p.printf("Fallback used: %d\n", r.Tally.Fallback)
	p.printf("Unavailable  : %d\n", r.Tally.Unavailable)
	return p.err
}

// FormatConfidence prints a confidence the way it is stored, without
// trailing zeros.
func FormatConfidence(c float64) string {
	return fmt.Sprintf("%g", c)
}

// printer remembers the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
