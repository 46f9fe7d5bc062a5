// Package config loads and validates the tools file: the ordered list of
// tools and the sources watched for each.
package config

import (
	"fmt"
	"math"
	"net/url"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/promptradar/pkg/errors"
	"github.com/agentstation/promptradar/pkg/sources"
)

// Tools is the parsed tools file. Order is significant: tools are reported
// and recorded in this order.
type Tools struct {
	Tools []sources.Tool `json:"tools" yaml:"tools"`
}

// Load reads and parses the tools file at path. It does not validate.
func Load(path string) (*Tools, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("tools", fmt.Sprintf("cannot read %s", path), errors.WrapIO("read", path, err))
	}
	return Parse(data, path)
}

// Parse decodes a tools file. JSON input is accepted as YAML.
func Parse(data []byte, name string) (*Tools, error) {
	var t Tools
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	return &t, nil
}

// LoadAndValidate loads path and rejects invalid configurations. Warnings
// are returned alongside a valid configuration.
func LoadAndValidate(path string) (*Tools, []string, error) {
	t, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	warnings, err := t.Validate()
	if err != nil {
		return nil, warnings, err
	}
	return t, warnings, nil
}

// Validate checks the configuration. Every problem is reported, joined into
// one error. Unknown source types and tools without sources are only
// warnings: they score as unknown and resolve as unavailable.
func (t *Tools) Validate() (warnings []string, err error) {
	var errs []error
	if len(t.Tools) == 0 {
		errs = append(errs, errors.NewValidationError("tools", nil, "no tools configured"))
	}

	seen := make(map[string]int, len(t.Tools))
	for i, tool := range t.Tools {
		field := fmt.Sprintf("tools[%d]", i)
		if tool.ID == "" {
			errs = append(errs, errors.NewValidationError(field+".id", tool.ID, "cannot be empty"))
		} else if j, dup := seen[tool.ID]; dup {
			errs = append(errs, errors.NewValidationError(field+".id", tool.ID, fmt.Sprintf("duplicates tools[%d]", j)))
		} else {
			seen[tool.ID] = i
		}
		if tool.Name == "" {
			errs = append(errs, errors.NewValidationError(field+".name", tool.Name, "cannot be empty"))
		}
		if len(tool.Sources) == 0 {
			warnings = append(warnings, fmt.Sprintf("%s: no sources, always unavailable", field))
		}

		for k, src := range tool.Sources {
			sf := fmt.Sprintf("%s.sources[%d]", field, k)
			if !src.Type.Known() {
				warnings = append(warnings, fmt.Sprintf("%s: unknown type %q scores as unknown", sf, src.Type))
			}
			if err := validateURL(src.URL); err != nil {
				errs = append(errs, errors.NewValidationError(sf+".url", src.URL, err.Error()))
			}
			if src.Weight != nil && (math.IsNaN(*src.Weight) || *src.Weight < 0 || *src.Weight > 1) {
				errs = append(errs, errors.NewValidationError(sf+".weight", *src.Weight, "must be between 0 and 1"))
			}
		}
	}
	return warnings, errors.Join(errs...)
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must be an http or https URL")
	}
	if u.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}

// Find returns the tool with id.
func (t *Tools) Find(id string) (sources.Tool, bool) {
	for _, tool := range t.Tools {
		if tool.ID == id {
			return tool, true
		}
	}
	return sources.Tool{}, false
}
