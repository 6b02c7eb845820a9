package chem

import (
	"fmt"
	"math"
	"strings"
)

const (
	Kw        = 1e-14 // ion product of water at 25 °C
	PKw       = 14.0
	NeutralPH = 7.0
)

type Type int

const (
	StrongAcid Type = iota
	StrongBase
	WeakAcid
	WeakBase
)

var typeNames = map[Type]string{
	StrongAcid: "strong_acid",
	StrongBase: "strong_base",
	WeakAcid:   "weak_acid",
	WeakBase:   "weak_base",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

func (t Type) IsAcid() bool   { return t == StrongAcid || t == WeakAcid }
func (t Type) IsStrong() bool { return t == StrongAcid || t == StrongBase }

// ParseType accepts the snake_case names printed by String, with dashes or
// spaces as separators.
func ParseType(s string) (Type, error) {
	norm := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
	for t, name := range typeNames {
		if name == norm {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown substance type: %q", s)
}

func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Colors holds display colors for the three species, as #rrggbb strings.
type Colors struct {
	Substance string `yaml:"substance" json:"substance"`
	Primary   string `yaml:"primary" json:"primary"`
	Secondary string `yaml:"secondary" json:"secondary"`
}

// Substance is an immutable acid or base record. For weak acids KB holds the
// conjugate base constant Kw/KA, and symmetrically for weak bases.
//
// SubstanceAddedPerIon is the number of neutral molecules drawn for every
// ion pair in the particle view; it is 0 for strong electrolytes.
type Substance struct {
	Name                 string  `yaml:"name" json:"name"`
	Symbol               string  `yaml:"symbol" json:"symbol"`
	Type                 Type    `yaml:"type" json:"type"`
	KA                   float64 `yaml:"ka,omitempty" json:"ka,omitempty"`
	KB                   float64 `yaml:"kb,omitempty" json:"kb,omitempty"`
	SubstanceAddedPerIon int     `yaml:"substance_added_per_ion" json:"substance_added_per_ion"`
	PrimaryIon           string  `yaml:"primary_ion" json:"primary_ion"`
	SecondaryIon         string  `yaml:"secondary_ion" json:"secondary_ion"`
	Colors               Colors  `yaml:"colors" json:"colors"`
}

func NewStrongAcid(name, symbol, anion string) Substance {
	return Substance{
		Name: name, Symbol: symbol, Type: StrongAcid,
		PrimaryIon: "H⁺", SecondaryIon: anion,
	}
}

func NewStrongBase(name, symbol, cation string) Substance {
	return Substance{
		Name: name, Symbol: symbol, Type: StrongBase,
		PrimaryIon: "OH⁻", SecondaryIon: cation,
	}
}

func NewWeakAcid(name, symbol, anion string, ka float64, perIon int) Substance {
	return Substance{
		Name: name, Symbol: symbol, Type: WeakAcid,
		KA: ka, KB: Kw / ka, SubstanceAddedPerIon: perIon,
		PrimaryIon: "H⁺", SecondaryIon: anion,
	}
}

func NewWeakBase(name, symbol, cation string, kb float64, perIon int) Substance {
	return Substance{
		Name: name, Symbol: symbol, Type: WeakBase,
		KA: Kw / kb, KB: kb, SubstanceAddedPerIon: perIon,
		PrimaryIon: "OH⁻", SecondaryIon: cation,
	}
}

func (s Substance) IsAcid() bool   { return s.Type.IsAcid() }
func (s Substance) IsStrong() bool { return s.Type.IsStrong() }

func (s Substance) PKA() float64 { return -math.Log10(s.KA) }
func (s Substance) PKB() float64 { return -math.Log10(s.KB) }

// DissociationConstant is KA for acids and KB for bases.
func (s Substance) DissociationConstant() float64 {
	if s.IsAcid() {
		return s.KA
	}
	return s.KB
}

// Normalize fills the missing half of a KA/KB pair for weak substances.
func (s Substance) Normalize() Substance {
	switch s.Type {
	case WeakAcid:
		if s.KA > 0 && s.KB == 0 {
			s.KB = Kw / s.KA
		}
	case WeakBase:
		if s.KB > 0 && s.KA == 0 {
			s.KA = Kw / s.KB
		}
	}
	return s
}

func (s Substance) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("substance name is empty")
	}
	if _, ok := typeNames[s.Type]; !ok {
		return fmt.Errorf("substance %s: invalid type %d", s.Name, int(s.Type))
	}
	if !s.IsStrong() && s.DissociationConstant() <= 0 {
		return fmt.Errorf("substance %s: weak %s needs a positive dissociation constant", s.Name, s.Type)
	}
	if s.SubstanceAddedPerIon < 0 {
		return fmt.Errorf("substance %s: substance_added_per_ion must be >= 0", s.Name)
	}
	return nil
}

// Species holds one value per particle species: the neutral substance, the
// primary ion (H⁺ for acids, OH⁻ for bases) and the secondary ion (the
// conjugate of the primary).
type Species struct {
	Substance float64 `json:"substance"`
	Primary   float64 `json:"primary"`
	Secondary float64 `json:"secondary"`
}

// Counts is the integer particle-count analogue of Species.
type Counts struct {
	Substance int `json:"substance" yaml:"substance"`
	Primary   int `json:"primary" yaml:"primary"`
	Secondary int `json:"secondary" yaml:"secondary"`
}

func (c Counts) Total() int { return c.Substance + c.Primary + c.Secondary }
