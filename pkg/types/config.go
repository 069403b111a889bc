package types

import "time"

// PDFBackend selects how PDF extraction is performed.
type PDFBackend string

const (
	// PDFBackendClaude sends the document to the Claude API.
	PDFBackendClaude PDFBackend = "claude"
	// PDFBackendText reads the embedded text layer locally; no tables.
	PDFBackendText PDFBackend = "text"
)

// AIConfig holds settings for the cleanup and PDF extraction collaborators.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retries on HTTP 429. Zero disables retry.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Timeout bounds a single collaborator call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// PDFBackend selects claude or text.
	PDFBackend PDFBackend `json:"pdf_backend" yaml:"pdf_backend"`
}

// BatchConfig holds settings for multi-file runs.
type BatchConfig struct {
	// Concurrency is the number of files converted at once. Values below 2
	// keep the run sequential.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// OutputConfig controls where artifacts are written.
type OutputConfig struct {
	// Dir is the directory for converted files (default ".").
	Dir string `json:"dir" yaml:"dir"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	// Level is a zerolog level name (debug, info, warn, error).
	Level string `json:"level" yaml:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format"`
}

// Config groups every setting the CLI reads from file, env and flags.
type Config struct {
	AI     AIConfig     `json:"ai" yaml:"ai"`
	Batch  BatchConfig  `json:"batch" yaml:"batch"`
	Output OutputConfig `json:"output" yaml:"output"`
	Log    LogConfig    `json:"log" yaml:"log"`
}
