// Package substance is the catalog of acids and bases the simulator knows
// about. Entries are immutable chem.Substance records looked up by name or
// symbol; custom catalogs load from YAML.
package substance

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/phsim/internal/chem"
)

var (
	acidColors = chem.Colors{Substance: "#f2c94c", Primary: "#eb5757", Secondary: "#9b51e0"}
	baseColors = chem.Colors{Substance: "#6fcf97", Primary: "#2f80ed", Secondary: "#f2994a"}
)

func builtins() []chem.Substance {
	subs := []chem.Substance{
		chem.NewStrongAcid("hydrochloric_acid", "HCl", "Cl⁻"),
		chem.NewStrongAcid("hydrobromic_acid", "HBr", "Br⁻"),
		chem.NewStrongAcid("nitric_acid", "HNO3", "NO₃⁻"),
		chem.NewStrongBase("sodium_hydroxide", "NaOH", "Na⁺"),
		chem.NewStrongBase("potassium_hydroxide", "KOH", "K⁺"),
		chem.NewWeakAcid("acetic_acid", "CH3COOH", "CH₃COO⁻", 1.8e-5, 2),
		chem.NewWeakAcid("hydrofluoric_acid", "HF", "F⁻", 6.8e-4, 1),
		chem.NewWeakAcid("hypochlorous_acid", "HOCl", "OCl⁻", 3.0e-8, 3),
		chem.NewWeakBase("ammonia", "NH3", "NH₄⁺", 1.8e-5, 2),
		chem.NewWeakBase("methylamine", "CH3NH2", "CH₃NH₃⁺", 4.4e-4, 1),
		chem.NewWeakBase("pyridine", "C5H5N", "C₅H₅NH⁺", 1.7e-9, 3),
	}
	for i := range subs {
		if subs[i].IsAcid() {
			subs[i].Colors = acidColors
		} else {
			subs[i].Colors = baseColors
		}
	}
	return subs
}

type Catalog struct {
	byName map[string]chem.Substance
}

// Default returns a fresh catalog holding the built-in substances.
func Default() *Catalog {
	c, err := NewCatalog(builtins()...)
	if err != nil {
		panic(err)
	}
	return c
}

func NewCatalog(subs ...chem.Substance) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]chem.Substance, len(subs))}
	for _, s := range subs {
		if err := c.Add(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add validates s and stores it under its lower-cased name.
func (c *Catalog) Add(s chem.Substance) error {
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return err
	}
	key := normalizeKey(s.Name)
	if _, ok := c.byName[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, s.Name)
	}
	c.byName[key] = s
	return nil
}

// Merge adds every entry of other, replacing entries with the same name.
func (c *Catalog) Merge(other *Catalog) {
	for k, s := range other.byName {
		c.byName[k] = s
	}
}

// Get looks a substance up by name, then by symbol. Matching ignores case,
// and dashes or spaces stand in for underscores.
func (c *Catalog) Get(name string) (chem.Substance, error) {
	key := normalizeKey(name)
	if s, ok := c.byName[key]; ok {
		return s, nil
	}
	for _, s := range c.byName {
		if strings.EqualFold(s.Symbol, strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return chem.Substance{}, fmt.Errorf("%w: %s", ErrUnknownSubstance, name)
}

func (c *Catalog) Len() int { return len(c.byName) }

// List returns every substance sorted by name.
func (c *Catalog) List() []chem.Substance {
	out := make([]chem.Substance, 0, len(c.byName))
	for _, s := range c.byName {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (c *Catalog) Names() []string {
	subs := c.List()
	names := make([]string, len(subs))
	for i, s := range subs {
		names[i] = s.Name
	}
	return names
}

func (c *Catalog) ByType(t chem.Type) []chem.Substance {
	var out []chem.Substance
	for _, s := range c.List() {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}

type catalogFile struct {
	Substances []chem.Substance `yaml:"substances"`
}

// LoadCatalog reads a YAML file of the form
//
//	substances:
//	  - name: formic_acid
//	    symbol: HCOOH
//	    type: weak_acid
//	    ka: 1.8e-4
//	    substance_added_per_ion: 2
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i := range f.Substances {
		if f.Substances[i].Colors == (chem.Colors{}) {
			if f.Substances[i].Type.IsAcid() {
				f.Substances[i].Colors = acidColors
			} else {
				f.Substances[i].Colors = baseColors
			}
		}
	}
	return NewCatalog(f.Substances...)
}

// SaveCatalog writes c in the format LoadCatalog reads.
func SaveCatalog(path string, c *Catalog) error {
	data, err := yaml.Marshal(catalogFile{Substances: c.List()})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func normalizeKey(name string) string {
	return strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(name)))
}
