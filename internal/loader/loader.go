// ABOUTME: Document loader that turns source files into per-page Documents
// ABOUTME: Supports PDF (one Document per page) and plain text / markdown files
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/harper/guia/internal/models"
)

// ErrUnsupportedFormat is returned for file extensions the loader cannot read
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Loader reads source files in order
type Loader struct {
	logger *zap.Logger
}

// Option configures a Loader
type Option func(*Loader)

// WithLogger sets the logger used for per-file progress
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Loader
func New(opts ...Option) *Loader {
	l := &Loader{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every path in order and returns their Documents, preserving
// file order and page order. Any failure aborts the whole load.
func (l *Loader) Load(ctx context.Context, paths []string) ([]models.Document, error) {
	var docs []models.Document
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, &models.LoadError{Path: path, Err: err}
		}

		fileDocs, err := l.LoadFile(path)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("loaded source",
			zap.String("path", path),
			zap.Int("documents", len(fileDocs)))
		docs = append(docs, fileDocs...)
	}
	return docs, nil
}

// LoadFile reads a single source file
func (l *Loader) LoadFile(path string) ([]models.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &models.LoadError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &models.LoadError{Path: path, Err: errors.New("is a directory")}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return loadPDF(path)
	case ".txt", ".md":
		return loadText(path)
	default:
		return nil, &models.LoadError{Path: path, Err: ErrUnsupportedFormat}
	}
}

func loadText(path string) ([]models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.LoadError{Path: path, Err: err}
	}
	return []models.Document{{Source: path, Page: 1, Content: string(data)}}, nil
}

// loadPDF extracts plain text page by page. The pdf reader panics on some
// malformed inputs, so panics are converted into a LoadError.
func loadPDF(path string) (docs []models.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			docs = nil
			err = &models.LoadError{Path: path, Err: fmt.Errorf("malformed pdf: %v", r)}
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, &models.LoadError{Path: path, Err: err}
	}
	defer f.Close()

	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, &models.LoadError{Path: path, Err: fmt.Errorf("page %d: %w", i, err)}
		}
		docs = append(docs, models.Document{Source: path, Page: i, Content: text})
	}
	return docs, nil
}
