package symbols

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"codeaxe/internal/textdoc"
)

// dumpFile is the on-disk shape of a symbol dump. A bare list of symbols is
// accepted as well.
type dumpFile struct {
	Symbols []Symbol `yaml:"symbols"`
}

// LoadDump decodes a YAML (or JSON) symbol forest. Lines and characters are
// zero-based.
func LoadDump(r io.Reader) ([]Symbol, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse symbol dump: %w", err)
	}
	if len(root.Content) == 1 && root.Content[0].Kind == yaml.SequenceNode {
		var list []Symbol
		if err := root.Content[0].Decode(&list); err != nil {
			return nil, fmt.Errorf("failed to decode symbols: %w", err)
		}
		return list, nil
	}

	var f dumpFile
	if err := root.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode symbols: %w", err)
	}
	return f.Symbols, nil
}

// WriteDump encodes a symbol forest as YAML.
func WriteDump(w io.Writer, forest []Symbol) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(dumpFile{Symbols: forest}); err != nil {
		return err
	}
	return enc.Close()
}

// FileProvider serves a symbol forest from a dump file, ignoring the
// document contents.
type FileProvider struct {
	Path string
}

var _ Provider = (*FileProvider)(nil)

func (p *FileProvider) DocumentSymbols(ctx context.Context, doc *textdoc.Document) ([]Symbol, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadDump(f)
}
