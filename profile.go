package drift

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var embeddedProfiles []byte

// Profile tunes gesture thresholds for a device class. Presets ship embedded
// (see profiles.yaml); users may override any field through a drift.yaml
// config file or DRIFT_* environment variables.
type Profile struct {
	Name string `yaml:"-" mapstructure:"-"`

	// PanSensitivity multiplies drag translation before it reaches the
	// camera.
	PanSensitivity float64 `yaml:"panSensitivity" mapstructure:"panSensitivity"`

	// TapTolerancePx is how far a pointer may move while still counting as
	// a tap rather than a pan.
	TapTolerancePx float64 `yaml:"tapTolerancePx" mapstructure:"tapTolerancePx"`

	// DoubleTapWindowMs is the double-tap timing window.
	DoubleTapWindowMs float64 `yaml:"doubleTapWindowMs" mapstructure:"doubleTapWindowMs"`

	// MomentumDecayMultiplier scales glide decay; above 1 shortens glides.
	MomentumDecayMultiplier float64 `yaml:"momentumDecayMultiplier" mapstructure:"momentumDecayMultiplier"`

	// PalmRejectionStrength scales palm heuristics; above 1 rejects more.
	PalmRejectionStrength float64 `yaml:"palmRejectionStrength" mapstructure:"palmRejectionStrength"`
}

// DefaultProfile is the desktop preset, used as the fallback when a preset
// name is unknown.
var DefaultProfile = Profile{
	Name:                    "desktop",
	PanSensitivity:          1.0,
	TapTolerancePx:          6,
	DoubleTapWindowMs:       DefaultDoubleTapWindowMs,
	MomentumDecayMultiplier: 1.0,
	PalmRejectionStrength:   1.0,
}

// Presets returns the embedded device-class presets keyed by name.
func Presets() (map[string]Profile, error) {
	var doc struct {
		Profiles map[string]Profile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(embeddedProfiles, &doc); err != nil {
		return nil, fmt.Errorf("parse embedded profiles: %w", err)
	}
	for name, p := range doc.Profiles {
		p.Name = name
		doc.Profiles[name] = p
	}
	return doc.Profiles, nil
}

// LoadProfile returns the named preset with user overrides applied. If
// configPath is non-empty, a drift.yaml there is read; DRIFT_* environment
// variables override both (e.g. DRIFT_PANSENSITIVITY=1.5). An unknown name
// falls back to DefaultProfile.
func LoadProfile(name, configPath string) (Profile, error) {
	base := DefaultProfile
	presets, err := Presets()
	if err != nil {
		return base, err
	}
	if p, ok := presets[name]; ok {
		base = p
	} else {
		Logger().Warn("unknown profile preset, using default", "name", name)
	}

	v := viper.New()
	v.SetDefault("panSensitivity", base.PanSensitivity)
	v.SetDefault("tapTolerancePx", base.TapTolerancePx)
	v.SetDefault("doubleTapWindowMs", base.DoubleTapWindowMs)
	v.SetDefault("momentumDecayMultiplier", base.MomentumDecayMultiplier)
	v.SetDefault("palmRejectionStrength", base.PalmRejectionStrength)

	if configPath != "" {
		v.SetConfigName("drift")
		v.SetConfigType("yaml")
		v.AddConfigPath(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return base, fmt.Errorf("read profile config: %w", err)
			}
		}
	}
	v.SetEnvPrefix("DRIFT")
	v.AutomaticEnv()

	out := base
	if err := v.Unmarshal(&out); err != nil {
		return base, fmt.Errorf("unmarshal profile: %w", err)
	}
	out.Name = base.Name
	return out, nil
}

// SelectProfile picks a preset name from the physical screen size in dp and
// the platform string ("ios", "android", or anything else for desktop).
func SelectProfile(screenW, screenH int, platform string) string {
	switch platform {
	case "ios", "android":
		if min(screenW, screenH) >= 600 {
			return "tablet"
		}
		return "phone"
	default:
		return "desktop"
	}
}

// Accessibility flags loosen timing and radius thresholds for users who need
// them. Flags combine; each enabled need applies its own adjustment.
type Accessibility struct {
	Motor     bool // tremor or limited precision: wider tolerances, weaker palm rejection
	Visual    bool // low vision: larger tap targets
	Cognitive bool // reduced motion: shorter glides, longer double-tap window
}

// Loosen returns a copy of p adjusted for the enabled accessibility needs.
func (p Profile) Loosen(a Accessibility) Profile {
	if a.Motor {
		p.TapTolerancePx *= 2
		p.DoubleTapWindowMs *= 1.5
		p.PalmRejectionStrength *= 0.75
	}
	if a.Visual {
		p.TapTolerancePx *= 1.5
	}
	if a.Cognitive {
		p.DoubleTapWindowMs *= 1.5
		p.MomentumDecayMultiplier *= 1.25
	}
	return p
}
