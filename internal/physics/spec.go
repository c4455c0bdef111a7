package physics

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// System is the material identity preset driving the spring-damper model.
type System int

const (
	Fracture System = iota
	Pressure
	Breath
	Combustion
	Orbit

	systemCount
)

var systemNames = [systemCount]string{"fracture", "pressure", "breath", "combustion", "orbit"}

func (s System) String() string {
	if s < 0 || s >= systemCount {
		return "breath"
	}
	return systemNames[s]
}

// ParseSystem maps a label to a System. Unknown labels map to Breath, the
// calmest preset.
func ParseSystem(label string) System {
	label = strings.ToLower(strings.TrimSpace(label))
	for i, name := range systemNames {
		if name == label {
			return System(i)
		}
	}
	return Breath
}

// Material holds the spring-damper constants.
type Material struct {
	Mass        float64 `yaml:"mass" json:"mass"`
	Elasticity  float64 `yaml:"elasticity" json:"elasticity"`
	Damping     float64 `yaml:"damping" json:"damping"`
	Brittleness float64 `yaml:"brittleness" json:"brittleness"`
	Heat        float64 `yaml:"heat" json:"heat"`

	set fieldSet // keys present in the decoded document
}

// Response scales beat strength into impulses.
type Response struct {
	BeatImpulse     float64 `yaml:"beat_impulse" json:"beatImpulse"`
	DownbeatImpulse float64 `yaml:"downbeat_impulse" json:"downbeatImpulse"`

	set fieldSet
}

// fieldSet records which numeric fields a document spelled out, so an
// explicit zero override is told apart from an absent one.
type fieldSet uint8

const (
	setMass fieldSet = 1 << iota
	setElasticity
	setDamping
	setBrittleness
	setHeat
	setBeatImpulse
	setDownbeatImpulse

	setAll = setMass | setElasticity | setDamping | setBrittleness | setHeat | setBeatImpulse | setDownbeatImpulse
)

var fieldKeys = map[string]fieldSet{
	"mass":             setMass,
	"elasticity":       setElasticity,
	"damping":          setDamping,
	"brittleness":      setBrittleness,
	"heat":             setHeat,
	"beat_impulse":     setBeatImpulse,
	"beatimpulse":      setBeatImpulse,
	"downbeat_impulse": setDownbeatImpulse,
	"downbeatimpulse":  setDownbeatImpulse,
}

func yamlKeys(n *yaml.Node) fieldSet {
	var fs fieldSet
	if n.Kind != yaml.MappingNode {
		return fs
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		fs |= fieldKeys[strings.ToLower(n.Content[i].Value)]
	}
	return fs
}

func jsonKeys(data []byte) (fieldSet, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, err
	}
	var fs fieldSet
	for k, v := range raw {
		if string(v) != "null" {
			fs |= fieldKeys[strings.ToLower(k)]
		}
	}
	return fs, nil
}

func (m *Material) UnmarshalYAML(n *yaml.Node) error {
	type plain Material
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*m = Material(p)
	m.set = yamlKeys(n)
	return nil
}

func (m *Material) UnmarshalJSON(data []byte) error {
	type plain Material
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	fs, err := jsonKeys(data)
	if err != nil {
		return err
	}
	*m = Material(p)
	m.set = fs
	return nil
}

func (r *Response) UnmarshalYAML(n *yaml.Node) error {
	type plain Response
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*r = Response(p)
	r.set = yamlKeys(n)
	return nil
}

func (r *Response) UnmarshalJSON(data []byte) error {
	type plain Response
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	fs, err := jsonKeys(data)
	if err != nil {
		return err
	}
	*r = Response(p)
	r.set = fs
	return nil
}

// Typography is the optional font profile carried by a spec.
type Typography struct {
	FontFamily string  `yaml:"font_family" json:"fontFamily"`
	FontWeight int     `yaml:"font_weight" json:"fontWeight"`
	Tracking   float64 `yaml:"tracking,omitempty" json:"tracking,omitempty"`
	Uppercase  bool    `yaml:"uppercase,omitempty" json:"uppercase,omitempty"`
}

// LineMod is a modifier keyed by the rounded start second of a line.
type LineMod struct {
	T   int    `yaml:"t" json:"t"`
	Mod string `yaml:"mod" json:"mod"`
}

// WordMark is a modifier keyed by second and word index.
type WordMark struct {
	T         int    `yaml:"t" json:"t"`
	WordIndex int    `yaml:"word_index" json:"wordIndex"`
	Mark      string `yaml:"mark" json:"mark"`
}

// Lexicon groups time-keyed line modifiers and word marks.
type Lexicon struct {
	LineMods  []LineMod  `yaml:"line_mods,omitempty" json:"lineMods,omitempty"`
	WordMarks []WordMark `yaml:"word_marks,omitempty" json:"wordMarks,omitempty"`
}

// Spec is a material preset with overrides applied. Build it with NewSpec; treat
// the value as immutable afterwards.
type Spec struct {
	System     string      `yaml:"system" json:"system"`
	Material   Material    `yaml:"material" json:"material"`
	Response   Response    `yaml:"response" json:"response"`
	Palette    []string    `yaml:"palette,omitempty" json:"palette,omitempty"`
	Typography *Typography `yaml:"typography,omitempty" json:"typography,omitempty"`
	Lexicon    *Lexicon    `yaml:"lexicon,omitempty" json:"lexicon,omitempty"`
	Seed       string      `yaml:"seed,omitempty" json:"seed,omitempty"`
}

type preset struct {
	material Material
	response Response
	palette  []string
}

var presets = [systemCount]preset{
	Fracture: {
		material: Material{Mass: 0.6, Elasticity: 8, Damping: 0.45, Brittleness: 0.8, Heat: 0},
		response: Response{BeatImpulse: 1.1, DownbeatImpulse: 2.4},
		palette:  []string{"#e8f1ff", "#7fb7ff", "#1b2a41", "#c0d6f2"},
	},
	Pressure: {
		material: Material{Mass: 1.4, Elasticity: 4, Damping: 0.9, Brittleness: 1.2, Heat: 0.1},
		response: Response{BeatImpulse: 0.8, DownbeatImpulse: 1.6},
		palette:  []string{"#f2e9e4", "#c9ada7", "#4a4e69", "#22223b"},
	},
	Breath: {
		material: Material{Mass: 1.2, Elasticity: 1.5, Damping: 1.6, Brittleness: 2.0, Heat: 0},
		response: Response{BeatImpulse: 0.35, DownbeatImpulse: 0.6},
		palette:  []string{"#f7f3e3", "#a3c4bc", "#5b7065", "#304040"},
	},
	Combustion: {
		material: Material{Mass: 0.9, Elasticity: 3.5, Damping: 0.5, Brittleness: 1.0, Heat: 0.3},
		response: Response{BeatImpulse: 1.0, DownbeatImpulse: 1.8},
		palette:  []string{"#fff1d6", "#ff9f1c", "#e63946", "#2b0f0e"},
	},
	Orbit: {
		material: Material{Mass: 1.0, Elasticity: 2.5, Damping: 0.25, Brittleness: 1.5, Heat: 0.05},
		response: Response{BeatImpulse: 0.6, DownbeatImpulse: 1.1},
		palette:  []string{"#e0e1dd", "#778da9", "#415a77", "#0d1b2a"},
	},
}

// Valid ranges for material and response fields.
var (
	massRange        = [2]float64{0.1, 10}
	elasticityRange  = [2]float64{0.1, 20}
	dampingRange     = [2]float64{0, 10}
	brittlenessRange = [2]float64{0.1, 5}
	heatRange        = [2]float64{0, 1}
	impulseRange     = [2]float64{0, 5}
)

// NewSpec merges the non-zero or explicitly decoded fields of overrides onto
// the preset for overrides.System and clamps every numeric field into its
// valid range. Hydrating a hydrated spec returns it unchanged.
func NewSpec(overrides Spec) Spec {
	sys := ParseSystem(overrides.System)
	p := presets[sys]

	s := Spec{
		System:   sys.String(),
		Material: p.material,
		Response: p.response,
		Palette:  append([]string(nil), p.palette...),
		Seed:     overrides.Seed,
	}

	m, r := overrides.Material, overrides.Response
	mergeField(&s.Material.Mass, m.Mass, m.set&setMass != 0)
	mergeField(&s.Material.Elasticity, m.Elasticity, m.set&setElasticity != 0)
	mergeField(&s.Material.Damping, m.Damping, m.set&setDamping != 0)
	mergeField(&s.Material.Brittleness, m.Brittleness, m.set&setBrittleness != 0)
	mergeField(&s.Material.Heat, m.Heat, m.set&setHeat != 0)
	mergeField(&s.Response.BeatImpulse, r.BeatImpulse, r.set&setBeatImpulse != 0)
	mergeField(&s.Response.DownbeatImpulse, r.DownbeatImpulse, r.set&setDownbeatImpulse != 0)

	s.Material.Mass = clampRange(s.Material.Mass, massRange)
	s.Material.Elasticity = clampRange(s.Material.Elasticity, elasticityRange)
	s.Material.Damping = clampRange(s.Material.Damping, dampingRange)
	s.Material.Brittleness = clampRange(s.Material.Brittleness, brittlenessRange)
	s.Material.Heat = clampRange(s.Material.Heat, heatRange)
	s.Response.BeatImpulse = clampRange(s.Response.BeatImpulse, impulseRange)
	s.Response.DownbeatImpulse = clampRange(s.Response.DownbeatImpulse, impulseRange)
	s.Material.set, s.Response.set = setAll, setAll

	if len(overrides.Palette) > 0 {
		s.Palette = append([]string(nil), overrides.Palette...)
	}
	if overrides.Typography != nil {
		t := *overrides.Typography
		s.Typography = &t
	}
	if overrides.Lexicon != nil {
		lex := Lexicon{
			LineMods:  append([]LineMod(nil), overrides.Lexicon.LineMods...),
			WordMarks: append([]WordMark(nil), overrides.Lexicon.WordMarks...),
		}
		s.Lexicon = &lex
	}
	return s
}

// Kind returns the parsed System of a hydrated spec.
func (s Spec) Kind() System {
	return ParseSystem(s.System)
}

// mergeField applies v when it is non-zero or was spelled out explicitly.
func mergeField(dst *float64, v float64, explicit bool) {
	if (v != 0 || explicit) && !isNaN(v) {
		*dst = v
	}
}

func clampRange(v float64, r [2]float64) float64 {
	if isNaN(v) {
		return r[0]
	}
	return clamp(v, r[0], r[1])
}

func isNaN(v float64) bool {
	return v != v
}
