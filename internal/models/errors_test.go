// ABOUTME: Tests for the error taxonomy
// ABOUTME: Each typed error must match its sentinel and expose its cause

package models

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestTypedErrors_MatchSentinels(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"load", &LoadError{Path: "x.pdf", Err: cause}, ErrLoad},
		{"config", NewConfigError("chunk_overlap", "must be less than %d", 10), ErrConfig},
		{"index build", &IndexBuildError{Reason: "empty"}, ErrIndexBuild},
		{"embedding", &EmbeddingError{Err: cause}, ErrEmbedding},
		{"generation", &GenerationError{Err: cause}, ErrGeneration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false, want true", wrapped, tt.sentinel)
			}
			for _, other := range []error{ErrLoad, ErrConfig, ErrIndexBuild, ErrEmbedding, ErrGeneration} {
				if other != tt.sentinel && errors.Is(tt.err, other) {
					t.Errorf("%v unexpectedly matches %v", tt.err, other)
				}
			}
		})
	}
}

func TestLoadError_UnwrapsCause(t *testing.T) {
	err := &LoadError{Path: "missing.pdf", Err: fs.ErrNotExist}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("LoadError should unwrap to fs.ErrNotExist")
	}
	if !strings.Contains(err.Error(), "missing.pdf") {
		t.Errorf("Error() = %q, want it to mention the path", err.Error())
	}

	var le *LoadError
	if !errors.As(fmt.Errorf("ingest: %w", err), &le) || le.Path != "missing.pdf" {
		t.Errorf("errors.As did not recover LoadError, got %+v", le)
	}
}

func TestConfigError_Message(t *testing.T) {
	err := NewConfigError("top_k", "must be >= 1, got %d", 0)
	want := "config: top_k: must be >= 1, got 0"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIndexBuildError_Message(t *testing.T) {
	plain := &IndexBuildError{Reason: "no entries"}
	if plain.Error() != "index build: no entries" {
		t.Errorf("Error() = %q", plain.Error())
	}
	withCause := &IndexBuildError{Reason: "upsert", Err: errors.New("unavailable")}
	if !strings.Contains(withCause.Error(), "unavailable") {
		t.Errorf("Error() = %q, want cause included", withCause.Error())
	}
}
