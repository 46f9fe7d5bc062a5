package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/promptradar"
	"github.com/agentstation/promptradar/pkg/metrics"
)

// Compile-time interface check.
var _ Application = (*Mock)(nil)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	RadarFunc        func(opts ...promptradar.Option) (promptradar.Client, error)
	MetricsValue     *metrics.Metrics
	ToolsFileValue   string
	MetricsFileValue string
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Radar returns a radar using the mock function or nil.
func (m *Mock) Radar(opts ...promptradar.Option) (promptradar.Client, error) {
	if m.RadarFunc != nil {
		return m.RadarFunc(opts...)
	}
	return nil, nil
}

// Metrics returns MetricsValue, creating it on first use.
func (m *Mock) Metrics() *metrics.Metrics {
	if m.MetricsValue == nil {
		m.MetricsValue = metrics.New()
	}
	return m.MetricsValue
}

// ToolsFile returns ToolsFileValue.
func (m *Mock) ToolsFile() string {
	return m.ToolsFileValue
}

// MetricsFile returns MetricsFileValue.
func (m *Mock) MetricsFile() string {
	return m.MetricsFileValue
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}
