// Package scip reads document symbols from a precomputed SCIP index.
package scip

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"codeaxe/internal/errors"
)

// Index is a loaded SCIP index keyed by document path.
type Index struct {
	documents map[string]*scippb.Document
	root      string
}

// LoadIndex reads and decodes the index at path.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ProviderFailure, "SCIP index not found at "+path, err)
		}
		return nil, errors.New(errors.ProviderFailure, "failed to read SCIP index", err)
	}

	var raw scippb.Index
	if err := proto.Unmarshal(data, &raw); err != nil {
		return nil, errors.New(errors.ProviderFailure, fmt.Sprintf("failed to parse SCIP index %s", path), err)
	}
	return NewIndex(&raw), nil
}

// NewIndex wraps an already decoded index.
func NewIndex(raw *scippb.Index) *Index {
	idx := &Index{documents: make(map[string]*scippb.Document, len(raw.Documents))}
	if raw.Metadata != nil {
		idx.root = strings.TrimPrefix(raw.Metadata.ProjectRoot, "file://")
	}
	for _, doc := range raw.Documents {
		idx.documents[filepath.ToSlash(doc.RelativePath)] = doc
	}
	return idx
}

// Document finds the indexed document for path. Absolute paths are made
// relative to workspaceRoot (or the index's project root); a unique suffix
// match is accepted when the exact path is not indexed.
func (idx *Index) Document(path, workspaceRoot string) *scippb.Document {
	for _, rel := range idx.candidates(path, workspaceRoot) {
		if doc, ok := idx.documents[rel]; ok {
			return doc
		}
	}

	want := "/" + filepath.ToSlash(filepath.Clean(path))
	var found *scippb.Document
	for rel, doc := range idx.documents {
		if strings.HasSuffix(want, "/"+rel) {
			if found != nil {
				return nil
			}
			found = doc
		}
	}
	return found
}

func (idx *Index) candidates(path, workspaceRoot string) []string {
	var out []string
	if !filepath.IsAbs(path) {
		out = append(out, filepath.ToSlash(filepath.Clean(path)))
	}
	for _, root := range []string{workspaceRoot, idx.root} {
		if root == "" || !filepath.IsAbs(path) {
			continue
		}
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			out = append(out, filepath.ToSlash(rel))
		}
	}
	return out
}
