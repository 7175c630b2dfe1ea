package memsys

import (
	"os"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/joshuapare/hunkkit/internal/format"
)

// Options configures startup. The YAML keys match the json tags.
type Options struct {
	// Megs is the arena size in MiB (the -megs flag).
	Megs int `json:"megs"`

	// ArenaFile backs the arena with a file instead of anonymous memory, so
	// its contents can be inspected after the process exits.
	ArenaFile string `json:"arenaFile,omitempty"`

	// ZoneMegs overrides the zone size in MiB (the -zmegs flag).
	ZoneMegs int `json:"zoneMegs,omitempty"`

	// ZoneSize is an explicit zone size in bytes, used when ZoneMegs is unset.
	ZoneSize int `json:"zoneSize,omitempty"`

	// ZoneFraction is the share of the arena given to the zone when neither
	// ZoneMegs nor ZoneSize is set.
	ZoneFraction float64 `json:"zoneFraction,omitempty"`

	// MinFragment is the zone split threshold; -1 selects the default.
	MinFragment int `json:"minFragment"`

	// Paranoid validates the hunk and the zone every 1024 allocations.
	Paranoid bool `json:"paranoid,omitempty"`
}

// DefaultOptions returns a 32 MiB arena with 30% of it given to the zone.
func DefaultOptions() Options {
	return Options{
		Megs:         32,
		ZoneFraction: format.DefaultZoneFraction,
		MinFragment:  format.UseDefault,
	}
}

// Validate rejects option sets that cannot describe an arena.
func (o Options) Validate() error {
	switch {
	case o.Megs <= 0:
		return errors.Errorf("megs must be positive, got %d", o.Megs)
	case o.ZoneMegs < 0:
		return errors.Errorf("zoneMegs must not be negative, got %d", o.ZoneMegs)
	case o.ZoneSize < 0:
		return errors.Errorf("zoneSize must not be negative, got %d", o.ZoneSize)
	case o.ZoneFraction < 0 || o.ZoneFraction >= 1:
		return errors.Errorf("zoneFraction must be in [0, 1), got %g", o.ZoneFraction)
	case o.MinFragment < format.UseDefault:
		return errors.Errorf("minFragment must be -1 or non-negative, got %d", o.MinFragment)
	}
	return nil
}

// ArenaSize returns the arena size in bytes.
func (o Options) ArenaSize() int {
	return o.Megs * format.Megabyte
}

// LoadOptions reads YAML options from path on top of DefaultOptions.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.UnmarshalStrict(data, &opts); err != nil {
		return opts, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if err := opts.Validate(); err != nil {
		return opts, errors.Wrapf(err, "invalid config %s", path)
	}
	return opts, nil
}
