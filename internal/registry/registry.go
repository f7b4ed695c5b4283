// Package registry loads the static element, symbol and stem/branch tables.
//
// The tables are embedded in the binary and can be overridden from a directory
// holding files with the same names.
package registry

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/zapponejosh/liuren-api/internal/apperr"
	"github.com/zapponejosh/liuren-api/internal/bazi"
	"github.com/zapponejosh/liuren-api/internal/liuren"
	"github.com/zapponejosh/liuren-api/internal/wuxing"
)

const (
	ElementsFile = "elements.yaml"
	SymbolsFile  = "symbols.yaml"
	GanZhiFile   = "ganzhi.yaml"
)

//go:embed data/*.yaml
var embedded embed.FS

// Registry holds the validated tables. It is immutable once loaded and safe
// for concurrent use.
type Registry struct {
	Elements *wuxing.Table
	Symbols  *liuren.Table
	GanZhi   *bazi.Table
}

// Load reads the embedded tables.
func Load() (*Registry, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadDir reads the tables from dir. An empty dir selects the embedded tables.
func LoadDir(dir string) (*Registry, error) {
	if dir == "" {
		return Load()
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads and validates the three tables from fsys.
func LoadFS(fsys fs.FS) (*Registry, error) {
	read := func(name string) ([]byte, error) {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", apperr.ErrInvalidConfiguration, name, err)
		}
		return data, nil
	}

	data, err := read(ElementsFile)
	if err != nil {
		return nil, err
	}
	elements, err := wuxing.LoadTable(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ElementsFile, err)
	}

	if data, err = read(SymbolsFile); err != nil {
		return nil, err
	}
	symbols, err := liuren.LoadTable(data, elements)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", SymbolsFile, err)
	}

	if data, err = read(GanZhiFile); err != nil {
		return nil, err
	}
	ganzhi, err := bazi.LoadTable(data, elements)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", GanZhiFile, err)
	}

	return &Registry{Elements: elements, Symbols: symbols, GanZhi: ganzhi}, nil
}
