// Package importer turns uploaded catalog files into canonical course drafts.
// Two shapes are supported: structured tables (CSV or XLSX) and paginated
// documents (PDF), selected by a declared type tag.
package importer

import (
	"path/filepath"
	"strings"

	"github.com/openxk/course-select-api/internal/models"
)

// Type tags the supported catalog file shapes.
type Type string

const (
	TypeTable    Type = "table"
	TypeDocument Type = "document"
)

// Importer parses raw file content into course drafts. Drafts are not yet
// persisted; idempotent insertion by course code happens at the repository.
type Importer interface {
	Parse(content []byte) ([]models.Course, error)
}

// Registry dispatches a type tag to its parser implementation.
type Registry struct {
	importers map[Type]Importer
}

// NewRegistry wires the default table and document importers.
func NewRegistry() *Registry {
	return &Registry{importers: map[Type]Importer{
		TypeTable:    NewTableImporter(),
		TypeDocument: NewDocumentImporter(),
	}}
}

// Lookup returns the importer for the tag, if supported.
func (r *Registry) Lookup(t Type) (Importer, bool) {
	imp, ok := r.importers[t]
	return imp, ok
}

// TypeForFilename infers the type tag from a file extension, for uploads that
// do not declare one explicitly.
func TypeForFilename(name string) (Type, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return TypeTable, true
	case ".pdf":
		return TypeDocument, true
	}
	return "", false
}
