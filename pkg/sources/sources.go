// Package sources defines the configured inputs of a radar run: tools and the
// text sources that may hold each tool's prompt.
package sources

import (
	"github.com/agentstation/promptradar/pkg/constants"
)

// Type classifies a source and determines its base trust score.
type Type string

// Known source types, using the configuration wire values.
const (
	TypeFile       Type = "github_file"        // raw file in a repository
	TypeDoc        Type = "doc"                // documentation page
	TypeSearchHint Type = "github_search_hint" // search result snippet
	TypeGist       Type = "gist"               // paste snippet
)

// baseScores is the trust table. It is never modified after init.
var baseScores = map[Type]float64{
	TypeFile:       0.95,
	TypeDoc:        0.85,
	TypeSearchHint: 0.55,
	TypeGist:       0.50,
}

// BaseScore returns the trust score for t, or the unknown-type score.
func (t Type) BaseScore() float64 {
	if s, ok := baseScores[t]; ok {
		return s
	}
	return constants.UnknownTypeBaseScore
}

// Known reports whether t is one of the defined source types.
func (t Type) Known() bool {
	_, ok := baseScores[t]
	return ok
}

// IsMarkup reports whether content of this type arrives as HTML.
func (t Type) IsMarkup() bool {
	switch t {
	case TypeDoc, TypeSearchHint, TypeGist:
		return true
	}
	return false
}

// String returns the wire value.
func (t Type) String() string {
	return string(t)
}

// Source is one fetchable location for a tool's prompt.
type Source struct {
	Type   Type     `json:"type" yaml:"type"`
	URL    string   `json:"url" yaml:"url"`
	Weight *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// EffectiveWeight returns the configured weight or the default.
func (s Source) EffectiveWeight() float64 {
	if s.Weight == nil {
		return constants.DefaultSourceWeight
	}
	return *s.Weight
}

// Tool is a monitored product with its candidate sources in configuration
// order.
type Tool struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Sources []Source `json:"sources" yaml:"sources"`
}

// Weight is a convenience for building sources in code.
func Weight(w float64) *float64 {
	return &w
}
