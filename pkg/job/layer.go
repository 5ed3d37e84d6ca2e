package job

import (
	"fmt"
	"strings"

	"pcbcam/pkg/cfg"
	"pcbcam/pkg/mirror"

	"github.com/spf13/viper"
)

// Kind selects how a layer is read and machined.
type Kind string

const (
	// Copper is a Gerber copper layer, cut as isolation passes.
	Copper Kind = "copper"
	// Edge is a Gerber outline layer, cut along its contours.
	Edge Kind = "edge"
	// Drill is an Excellon drill file.
	Drill Kind = "drill"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Copper, Edge, Drill:
		return k, nil
	}
	return "", fmt.Errorf("unknown layer kind %q", s)
}

// Layer is one input file and the way to machine it. A zero ToolDiameter
// or FeedRate and a nil CutZ take the defaults for the layer kind. CutZ
// is a pointer so that 0 can ask for a surface pass.
type Layer struct {
	Name         string   `mapstructure:"name"`
	Kind         Kind     `mapstructure:"kind"`
	Path         string   `mapstructure:"path"`
	Mirror       string   `mapstructure:"mirror"`
	ToolDiameter float64  `mapstructure:"tool_diameter"`
	CutZ         *float64 `mapstructure:"cut_z"`
	FeedRate     float64  `mapstructure:"feed_rate"`
	Optimize     bool     `mapstructure:"optimize"`
}

// withDefaults fills unset parameters and checks the kind and mirror axis.
func (l Layer) withDefaults(feedRate float64) (Layer, mirror.Axis, error) {
	kind, err := ParseKind(string(l.Kind))
	if err != nil {
		return l, mirror.None, err
	}
	l.Kind = kind
	axis, err := mirror.ParseAxis(l.Mirror)
	if err != nil {
		return l, mirror.None, err
	}
	if l.Name == "" {
		l.Name = string(kind)
	}

	tool, cut := cfg.CopperToolDiameter, cfg.CopperCutZ
	switch kind {
	case Edge:
		tool, cut = cfg.EdgeToolDiameter, cfg.EdgeCutZ
	case Drill:
		tool, cut = cfg.DrillToolDiameter, cfg.DrillCutZ
	}
	if l.ToolDiameter == 0 {
		l.ToolDiameter = tool
	}
	if l.CutZ == nil {
		l.CutZ = &cut
	}
	if l.FeedRate == 0 {
		l.FeedRate = feedRate
	}
	return l, axis, nil
}

// Config is a complete job.
type Config struct {
	Layers       []Layer
	FeedRate     float64
	TravelZ      float64
	SpindleSpeed int
	// Strategy is an optimizer name, see optimize.ParseStrategy.
	Strategy  string
	OutputDir string
	// Report is the report file name inside OutputDir. Empty skips it.
	Report string
}

// DefaultConfig returns a job with no layers and the cfg defaults.
func DefaultConfig() Config {
	return Config{
		FeedRate:     cfg.FeedRate,
		TravelZ:      cfg.TravelZ,
		SpindleSpeed: cfg.SpindleSpeed,
		Strategy:     cfg.Strategy,
		OutputDir:    cfg.OutputDir,
		Report:       cfg.Report,
	}
}

// ConfigFrom reads a job from a viper instance prepared by cfg.Load.
func ConfigFrom(v *viper.Viper) (Config, error) {
	c := Config{
		FeedRate:     v.GetFloat64(cfg.KeyFeedRate),
		TravelZ:      v.GetFloat64(cfg.KeyTravelZ),
		SpindleSpeed: v.GetInt(cfg.KeySpindleSpeed),
		Strategy:     v.GetString(cfg.KeyStrategy),
		OutputDir:    v.GetString(cfg.KeyOutputDir),
		Report:       v.GetString(cfg.KeyReport),
	}
	if err := v.UnmarshalKey(cfg.KeyLayers, &c.Layers); err != nil {
		return c, fmt.Errorf("read layers: %w", err)
	}
	return c, nil
}
