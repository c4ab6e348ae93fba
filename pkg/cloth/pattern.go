package cloth

import (
	"embed"
	"errors"
	"fmt"
	"math"
	"path"
	"sort"
	"strings"

	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPreset is used when no preset name is given
const DefaultPreset = "denim"

// DefaultRepeat is the number of tile repetitions per unit of surface coordinates
const DefaultRepeat = 100.0

var (
	// ErrUnknownPreset is returned for a preset name with no embedded pattern
	ErrUnknownPreset = errors.New("unknown cloth preset")
	// ErrInvalidPattern is returned when a weave description is inconsistent
	ErrInvalidPattern = errors.New("invalid weave pattern")
)

//go:embed presets/*.toml
var presetFS embed.FS

// WeavePattern is a tiled description of woven cloth: which yarn covers
// each cell of the tile and the scattering parameters shared by all yarns
type WeavePattern struct {
	Name           string
	TileWidth      int
	TileHeight     int
	Alpha          float64 // Uniform scattering
	Beta           float64 // Forward scattering
	SS             float64 // Filament smoothing
	HighlightWidth float64
	WarpArea       float64
	WeftArea       float64
	Fineness       float64 // Random highlight scale seeds per unit; zero disables
	RepeatU        float64
	RepeatV        float64

	// Inclination noise, radians
	DWarpUmaxOverDWarp float64
	DWarpUmaxOverDWeft float64
	DWeftUmaxOverDWarp float64
	DWeftUmaxOverDWeft float64
	Period             float64

	Pattern []int // One-based yarn ids, row-major from the top row
	Yarns   []Yarn
}

// YarnPoint is the yarn covering a surface point and its local coordinates
type YarnPoint struct {
	Yarn  *Yarn
	UV    core.Vec2 // Coordinates on the yarn segment
	Umax  float64   // Inclination bound after noise
	Scale float64   // Random highlight multiplier, 1 when fineness is zero
}

// Lookup finds the yarn covering surface coordinates (u, v)
func (p *WeavePattern) Lookup(u, v float64) YarnPoint {
	u *= p.RepeatU
	bu := math.Floor(u)
	ou := u - bu
	v *= p.RepeatV
	bv := math.Floor(v)
	ov := v - bv

	lx := min(p.TileWidth-1, int(ou*float64(p.TileWidth)))
	ly := p.TileHeight - 1 - min(p.TileHeight-1, int(ov*float64(p.TileHeight)))
	yarn := &p.Yarns[p.Pattern[lx+p.TileWidth*ly]-1]

	tw, th := float64(p.TileWidth), float64(p.TileHeight)
	center := core.NewVec2((bu+yarn.CenterU)*tw, (bv+yarn.CenterV)*th)
	xy := core.NewVec2((ou-yarn.CenterU)*tw, (ov-yarn.CenterV)*th)
	uv, umax := yarn.segmentUV(p, center, xy)

	scale := 1.0
	if p.Fineness > 0 {
		i1 := seed((center.X + xy.X) * p.Fineness)
		i2 := seed((center.Y + xy.Y) * p.Fineness)
		xi := teaFloat(i1, i2, teaIterations)
		scale = math.Min(-math.Log(xi), 10)
	}
	return YarnPoint{Yarn: yarn, UV: uv, Umax: umax, Scale: scale}
}

// Validate checks that the tile and yarn references are consistent
func (p *WeavePattern) Validate() error {
	if p.TileWidth <= 0 || p.TileHeight <= 0 {
		return fmt.Errorf("%w: %s: tile size %dx%d", ErrInvalidPattern, p.Name, p.TileWidth, p.TileHeight)
	}
	if len(p.Pattern) != p.TileWidth*p.TileHeight {
		return fmt.Errorf("%w: %s: %d cells for a %dx%d tile", ErrInvalidPattern, p.Name, len(p.Pattern), p.TileWidth, p.TileHeight)
	}
	for i, id := range p.Pattern {
		if id < 1 || id > len(p.Yarns) {
			return fmt.Errorf("%w: %s: cell %d references yarn %d of %d", ErrInvalidPattern, p.Name, i, id, len(p.Yarns))
		}
	}
	if p.HighlightWidth <= 0 {
		return fmt.Errorf("%w: %s: highlight width must be positive", ErrInvalidPattern, p.Name)
	}
	if p.RepeatU <= 0 || p.RepeatV <= 0 {
		return fmt.Errorf("%w: %s: repeat must be positive", ErrInvalidPattern, p.Name)
	}
	return nil
}

// presetFile is the on-disk form of a weave preset; angles in degrees
type presetFile struct {
	Name           string  `toml:"name"`
	TileWidth      int     `toml:"tile_width"`
	TileHeight     int     `toml:"tile_height"`
	Alpha          float64 `toml:"alpha"`
	Beta           float64 `toml:"beta"`
	SS             float64 `toml:"ss"`
	HighlightWidth float64 `toml:"highlight_width"`
	WarpArea       float64 `toml:"warp_area"`
	WeftArea       float64 `toml:"weft_area"`
	Fineness       float64 `toml:"fineness"`

	DWarpUmaxOverDWarp float64 `toml:"d_warp_umax_over_d_warp"`
	DWarpUmaxOverDWeft float64 `toml:"d_warp_umax_over_d_weft"`
	DWeftUmaxOverDWarp float64 `toml:"d_weft_umax_over_d_warp"`
	DWeftUmaxOverDWeft float64 `toml:"d_weft_umax_over_d_weft"`
	Period             float64 `toml:"period"`

	Pattern []int `toml:"pattern"`
	Yarns   []struct {
		Kind    string  `toml:"kind"`
		Psi     float64 `toml:"psi"`
		Umax    float64 `toml:"umax"`
		Kappa   float64 `toml:"kappa"`
		Width   float64 `toml:"width"`
		Length  float64 `toml:"length"`
		CenterU float64 `toml:"center_u"`
		CenterV float64 `toml:"center_v"`
		Index   int     `toml:"index"`
	} `toml:"yarns"`
}

// ParsePattern decodes a TOML weave description
func ParsePattern(data []byte, repeatU, repeatV float64) (*WeavePattern, error) {
	var f presetFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding weave pattern: %w", err)
	}

	p := &WeavePattern{
		Name:               f.Name,
		TileWidth:          f.TileWidth,
		TileHeight:         f.TileHeight,
		Alpha:              f.Alpha,
		Beta:               f.Beta,
		SS:                 f.SS,
		HighlightWidth:     f.HighlightWidth,
		WarpArea:           f.WarpArea,
		WeftArea:           f.WeftArea,
		Fineness:           f.Fineness,
		RepeatU:            repeatU,
		RepeatV:            repeatV,
		DWarpUmaxOverDWarp: core.Radians(f.DWarpUmaxOverDWarp),
		DWarpUmaxOverDWeft: core.Radians(f.DWarpUmaxOverDWeft),
		DWeftUmaxOverDWarp: core.Radians(f.DWeftUmaxOverDWarp),
		DWeftUmaxOverDWeft: core.Radians(f.DWeftUmaxOverDWeft),
		Period:             f.Period,
		Pattern:            f.Pattern,
	}
	for i, y := range f.Yarns {
		var kind YarnKind
		switch strings.ToLower(y.Kind) {
		case "warp":
			kind = Warp
		case "weft":
			kind = Weft
		default:
			return nil, fmt.Errorf("%w: %s: yarn %d has kind %q", ErrInvalidPattern, f.Name, i, y.Kind)
		}
		p.Yarns = append(p.Yarns, Yarn{
			Kind:    kind,
			Psi:     core.Radians(y.Psi),
			Umax:    core.Radians(y.Umax),
			Kappa:   y.Kappa,
			Width:   y.Width,
			Length:  y.Length,
			CenterU: y.CenterU,
			CenterV: y.CenterV,
			Index:   y.Index,
		})
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadPreset returns one of the embedded weave presets
func LoadPreset(name string, repeatU, repeatV float64) (*WeavePattern, error) {
	if name == "" {
		name = DefaultPreset
	}
	data, err := presetFS.ReadFile(path.Join("presets", name+".toml"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	p, err := ParsePattern(data, repeatU, repeatV)
	if err != nil {
		return nil, fmt.Errorf("loading preset %s: %w", name, err)
	}
	return p, nil
}

// PresetNames lists the embedded presets in sorted order
func PresetNames() []string {
	entries, _ := presetFS.ReadDir("presets")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".toml"))
	}
	sort.Strings(names)
	return names
}
