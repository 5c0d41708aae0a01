package material

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is a read-only set of materials keyed by lower-cased name.
type Catalog struct {
	materials map[string]Material
}

// NewCatalog builds a catalog, rejecting repeated names.
func NewCatalog(materials ...Material) (*Catalog, error) {
	c := &Catalog{materials: make(map[string]Material, len(materials))}
	for _, m := range materials {
		if m.IsZero() {
			return nil, fmt.Errorf("%w: zero value in catalog", ErrInvalidMaterial)
		}
		key := strings.ToLower(m.Name())
		if _, ok := c.materials[key]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMaterial, m.Name())
		}
		c.materials[key] = m
	}
	return c, nil
}

// DefaultCatalog returns the specimens that ship with the press.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		MustNew("brick", 20, 5, 80, 40, 40),
		MustNew("packaging", 0.5, 0.2, 60, 60, 60),
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Get looks a material up by name, ignoring case.
func (c *Catalog) Get(name string) (Material, error) {
	m, ok := c.materials[strings.ToLower(name)]
	if !ok {
		return Material{}, fmt.Errorf("%w: %s (available: %s)", ErrUnknownMaterial, name, strings.Join(c.Names(), ", "))
	}
	return m, nil
}

// Names returns the catalog keys in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.materials))
	for name := range c.materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) Len() int { return len(c.materials) }

// Merge returns a catalog holding both sets. Entries of other replace
// same-named entries of c, so a catalog file can retune the stock specimens.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	out := &Catalog{materials: make(map[string]Material, len(c.materials)+len(other.materials))}
	for k, m := range c.materials {
		out.materials[k] = m
	}
	for k, m := range other.materials {
		out.materials[k] = m
	}
	return out
}

type catalogFile struct {
	Materials []materialEntry `yaml:"materials"`
}

type materialEntry struct {
	Name           string  `yaml:"name"`
	ElasticModulus float64 `yaml:"elastic_modulus"`
	YieldStress    float64 `yaml:"yield_stress"`
	Width          float64 `yaml:"width"`
	Height         float64 `yaml:"height"`
	Depth          float64 `yaml:"depth"`
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	materials := make([]Material, 0, len(f.Materials))
	for i, e := range f.Materials {
		if e.Name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidMaterial, i)
		}
		m, err := New(e.Name, e.ElasticModulus, e.YieldStress, e.Width, e.Height, e.Depth)
		if err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	return NewCatalog(materials...)
}
