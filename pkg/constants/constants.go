// Package constants provides shared constants used throughout the promptradar
// codebase. This includes timeouts, scoring limits, file permissions, and the
// document keys of the snapshot store.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultFetchTimeout bounds a single source fetch, including reading the body
	DefaultFetchTimeout = 15 * time.Second

	// CommandTimeout is the default bound on a CLI update run
	CommandTimeout = 10 * time.Minute

	// StoreOpenTimeout bounds waiting for an exclusive lock on a database-backed store
	StoreOpenTimeout = 5 * time.Second

	// ShutdownTimeout is how long shutdown work may take after a failed command
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for database files (rw-------)
	SecureFilePermissions = 0600
)

// Content and scoring limits
const (
	// MinContentLength is the minimum rune length of normalized content
	// accepted as evidence.
	MinContentLength = 40

	// PreviewLength is the default number of runes kept in a preview.
	PreviewLength = 180

	// PreviewEllipsis is appended to truncated previews.
	PreviewEllipsis = "…"

	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes = 8 << 20

	// DefaultSourceWeight is used when a source does not configure a weight.
	DefaultSourceWeight = 0.5

	// UnknownTypeBaseScore is the base score of source types missing from the trust table.
	UnknownTypeBaseScore = 0.40
)

// Confidence blend weights. Source-type trust dominates, configured source
// trust is secondary and content richness breaks ties.
const (
	BaseScoreShare    = 0.60
	SourceWeightShare = 0.25
	QualityShare      = 0.15
)

// Concurrency limits
const (
	// DefaultConcurrency is the number of tools reconciled in parallel.
	DefaultConcurrency = 4

	// MaxConcurrency caps the configurable tool parallelism.
	MaxConcurrency = 64
)

// Snapshot store document keys
const (
	// DocumentCurrent holds the current snapshot of every tracked tool.
	DocumentCurrent = "current"

	// DocumentHistory holds the append-only change log per tool.
	DocumentHistory = "history"

	// DocumentChangesLatest holds the changes detected by the latest run.
	DocumentChangesLatest = "changes-latest"
)

// Path and identity defaults
const (
	// DefaultUserAgent identifies the fetcher to remote servers.
	DefaultUserAgent = "prompt-radar/1.0"

	// DefaultConfigPath is the default tools configuration file.
	DefaultConfigPath = "config/sources.json"

	// DefaultDataDir is where file-backed documents are written.
	DefaultDataDir = "data"

	// DefaultStoreBackend is the snapshot store used when none is configured.
	DefaultStoreBackend = "files"

	// EvidenceHashSeparator joins sorted content hashes before digesting.
	EvidenceHashSeparator = "|"
)

// Format constants
const (
	// TimeFormatHuman is a human-readable time format
	TimeFormatHuman = "Jan 2, 2006 at 3:04pm MST"

	// ShortHashLength is how many hex characters of a hash are shown in tables.
	ShortHashLength = 12
)
