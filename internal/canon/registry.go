package canon

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/distiviz/internal/types"
)

//go:embed aliases.yaml
var defaultAliases []byte

// AliasPack is the on-disk format of an alias table.
type AliasPack struct {
	Version  int                              `yaml:"version"`
	Datasets map[types.Dataset][]FieldAliases `yaml:"datasets"`
}

// FieldAliases lists the alternative spellings of one canonical field.
type FieldAliases struct {
	Field   types.CanonicalField `yaml:"field"`
	Aliases []string             `yaml:"aliases"`
}

// SupportedPackVersion is the newest alias pack format this build reads.
const SupportedPackVersion = 1

// Registry holds one Table per dataset.
type Registry struct {
	tables map[types.Dataset]*Table
}

// NewRegistry returns a registry loaded with the embedded alias table.
func NewRegistry() (*Registry, error) {
	r := &Registry{tables: make(map[types.Dataset]*Table)}
	for _, ds := range types.Datasets {
		r.tables[ds] = NewTable(ds, FieldsFor(ds))
	}
	pack, err := ParsePack(defaultAliases)
	if err != nil {
		return nil, fmt.Errorf("embedded alias table: %w", err)
	}
	if err := r.Apply(pack); err != nil {
		return nil, fmt.Errorf("embedded alias table: %w", err)
	}
	return r, nil
}

// MustRegistry is NewRegistry for callers that cannot recover from a broken
// embedded table (tests, package-level defaults).
func MustRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// Table returns the table of a dataset, or nil when the dataset is unknown.
func (r *Registry) Table(ds types.Dataset) *Table {
	return r.tables[ds]
}

// ParsePack decodes an alias pack and checks its version.
func ParsePack(data []byte) (*AliasPack, error) {
	var pack AliasPack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to parse alias pack: %w", err)
	}
	if pack.Version == 0 {
		pack.Version = 1
	}
	if pack.Version > SupportedPackVersion {
		return nil, fmt.Errorf("alias pack version %d is newer than supported version %d", pack.Version, SupportedPackVersion)
	}
	return &pack, nil
}

// Apply adds every alias in pack to the matching tables.
func (r *Registry) Apply(pack *AliasPack) error {
	for ds, entries := range pack.Datasets {
		t, ok := r.tables[ds]
		if !ok {
			return fmt.Errorf("unknown dataset %q", ds)
		}
		for _, e := range entries {
			for _, a := range e.Aliases {
				if err := t.AddAlias(e.Field, a); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// LoadPack reads one pack from r and applies it.
func (r *Registry) LoadPack(src io.Reader) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("failed to read alias pack: %w", err)
	}
	pack, err := ParsePack(data)
	if err != nil {
		return err
	}
	return r.Apply(pack)
}

// LoadDir applies every *.yaml / *.yml pack in dir in lexical order.
// A missing directory is not an error.
//
// RETURNS:
//   - The number of packs applied.
//   - An error naming the first pack that failed.
func (r *Registry) LoadDir(dir string) (int, error) {
	if dir == "" {
		return 0, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return 0, fmt.Errorf("failed to list alias packs: %w", err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	for i, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return i, fmt.Errorf("failed to open alias pack %s: %w", path, err)
		}
		err = r.LoadPack(f)
		f.Close()
		if err != nil {
			return i, fmt.Errorf("alias pack %s: %w", filepath.Base(path), err)
		}
	}
	return len(files), nil
}
