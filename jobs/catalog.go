package jobs

import (
	_ "embed"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

//go:embed catalog.toml
var defaultCatalog string

// Definition is a named job template. Endpoint and copy may contain {param}
// placeholders; values substituted into the endpoint are path-escaped.
type Definition struct {
	Name        string            `toml:"name"`
	Description string            `toml:"description"`
	Endpoint    string            `toml:"endpoint"`
	Method      string            `toml:"method"`
	Params      []string          `toml:"params"`
	Defaults    map[string]string `toml:"defaults"`
	Copy
}

// Job fills in the placeholders. Every declared param needs a value or a default.
func (d Definition) Job(params map[string]string) (Job, error) {
	values := make(map[string]string, len(d.Params))
	for _, p := range d.Params {
		v := params[p]
		if v == "" {
			v = d.Defaults[p]
		}
		if v == "" {
			return Job{}, fmt.Errorf("job %q requires parameter %q", d.Name, p)
		}
		values[p] = v
	}

	fill := func(s string, escape func(string) string) string {
		for k, v := range values {
			s = strings.ReplaceAll(s, "{"+k+"}", escape(v))
		}
		return s
	}
	plain := func(s string) string { return s }

	return Job{
		Endpoint: fill(d.Endpoint, url.PathEscape),
		Method:   d.Method,
		Copy: Copy{
			StartTitle:         fill(d.StartTitle, plain),
			StartDescription:   fill(d.StartDescription, plain),
			SuccessTitle:       fill(d.SuccessTitle, plain),
			SuccessDescription: fill(d.SuccessDescription, plain),
			ErrorTitle:         fill(d.ErrorTitle, plain),
			ErrorDescription:   fill(d.ErrorDescription, plain),
		},
	}, nil
}

type Catalog struct {
	defs map[string]Definition
}

type catalogFile struct {
	Jobs []Definition `toml:"job"`
}

// DefaultCatalog returns the built-in job definitions.
func DefaultCatalog() *Catalog {
	c, err := LoadCatalog(strings.NewReader(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("embedded job catalog is invalid: %v", err))
	}
	return c
}

func LoadCatalog(r io.Reader) (*Catalog, error) {
	var f catalogFile
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(err, "LoadCatalog Decode")
	}

	c := &Catalog{defs: make(map[string]Definition, len(f.Jobs))}
	for _, d := range f.Jobs {
		if d.Name == "" || d.Endpoint == "" {
			return nil, fmt.Errorf("LoadCatalog: job definitions need a name and endpoint")
		}
		c.defs[d.Name] = d
	}
	return c, nil
}

// WithFile overlays definitions from a TOML file; same-named jobs are replaced.
func (c *Catalog) WithFile(path string) (*Catalog, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "Catalog.WithFile Open")
	}
	defer fh.Close()

	overlay, err := LoadCatalog(fh)
	if err != nil {
		return nil, err
	}

	merged := &Catalog{defs: make(map[string]Definition, len(c.defs)+len(overlay.defs))}
	for k, v := range c.defs {
		merged.defs[k] = v
	}
	for k, v := range overlay.defs {
		merged.defs[k] = v
	}
	return merged, nil
}

func (c *Catalog) Get(name string) (Definition, bool) {
	d, ok := c.defs[name]
	return d, ok
}

func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.defs))
	for k := range c.defs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
