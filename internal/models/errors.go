// ABOUTME: Error taxonomy for ingestion, configuration, indexing and model calls
// ABOUTME: Typed errors carry context; each also matches its sentinel via errors.Is
package models

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per failure class.
var (
	ErrLoad       = errors.New("load failed")
	ErrConfig     = errors.New("invalid configuration")
	ErrIndexBuild = errors.New("index build failed")
	ErrEmbedding  = errors.New("embedding failed")
	ErrGeneration = errors.New("generation failed")
)

// LoadError reports a source file that could not be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error        { return e.Err }
func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// ConfigError reports an invalid or missing configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// NewConfigError formats a ConfigError for field.
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IndexBuildError reports an empty or inconsistent embedding set.
type IndexBuildError struct {
	Reason string
	Err    error
}

func (e *IndexBuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("index build: %s: %v", e.Reason, e.Err)
	}
	return "index build: " + e.Reason
}

func (e *IndexBuildError) Unwrap() error        { return e.Err }
func (e *IndexBuildError) Is(target error) bool { return target == ErrIndexBuild }

// EmbeddingError wraps a failure of the external embedding service.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string        { return "embedding: " + e.Err.Error() }
func (e *EmbeddingError) Unwrap() error        { return e.Err }
func (e *EmbeddingError) Is(target error) bool { return target == ErrEmbedding }

// GenerationError wraps a failure of the external chat model, timeouts included.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string        { return "generation: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error        { return e.Err }
func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }
