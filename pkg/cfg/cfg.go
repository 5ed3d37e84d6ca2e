// Package cfg holds the machining defaults and loads overrides from a
// config file or the environment.
package cfg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// FeedRate is the cutting feed in mm/min.
var FeedRate = 100.0

// TravelZ is the safe height for rapids, in mm above the board.
var TravelZ = 2.0

var SpindleSpeed = 10000

// Copper isolation uses a fine V-bit just deep enough to break the copper.
var CopperToolDiameter = 0.1
var CopperCutZ = -0.05

// The outline is cut through a 1.6 mm board.
var EdgeToolDiameter = 1.0
var EdgeCutZ = -1.6

var DrillToolDiameter = 0.8
var DrillCutZ = -1.7

// Strategy names the optimizer used when a layer asks for reordering.
var Strategy = "exhaustive"

var OutputDir = "."

// Report is the YAML summary written next to the programs. Empty skips it.
var Report = "report.yaml"

// Config keys.
const (
	KeyFeedRate     = "machine.feed_rate"
	KeyTravelZ      = "machine.travel_z"
	KeySpindleSpeed = "machine.spindle_speed"
	KeyStrategy     = "optimize.strategy"
	KeyOutputDir    = "output.dir"
	KeyReport       = "output.report"
	KeyLayers       = "layers"
)

// EnvPrefix prefixes environment overrides, e.g. PCBCAM_MACHINE_FEED_RATE.
const EnvPrefix = "PCBCAM"

// New returns a viper instance carrying the defaults and reading
// environment overrides.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyFeedRate, FeedRate)
	v.SetDefault(KeyTravelZ, TravelZ)
	v.SetDefault(KeySpindleSpeed, SpindleSpeed)
	v.SetDefault(KeyStrategy, Strategy)
	v.SetDefault(KeyOutputDir, OutputDir)
	v.SetDefault(KeyReport, Report)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path. With an empty path it looks for
// pcbcam.{yaml,toml,json} in the working directory and carries on with
// the defaults when there is none.
func Load(path string) (*viper.Viper, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName("pcbcam")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}
