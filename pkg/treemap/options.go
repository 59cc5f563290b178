package treemap

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/treemap/pkg/errors"
)

// Direction constrains the orientation of rows.
type Direction string

const (
	// Both lays each row along the larger remaining dimension.
	Both Direction = "both"
	// Horizontal always lays rows along the width.
	Horizontal Direction = "horizontal"
	// Vertical always lays rows along the height.
	Vertical Direction = "vertical"
)

// ParseDirection converts a user supplied string into a Direction.
// The empty string selects [Both].
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case "":
		return Both, nil
	case Both, Horizontal, Vertical:
		return d, nil
	}
	return "", errors.New(errors.ErrCodeInvalidDirection,
		"invalid direction: %q (must be one of: horizontal, vertical, both)", s)
}

// Options configures [Calculate]. The zero value sorts by weight, picks row
// orientation automatically and uses no padding.
type Options struct {
	// Sort selects the ordering policy: descending weight when nil or true,
	// a random shuffle when false.
	Sort *bool

	Direction Direction

	// Padding is the inner margin subtracted on every side of a node before
	// its children are placed.
	Padding float64

	// Exclude lists payload values whose nodes weigh 0 and are not laid out.
	Exclude []any

	// Seed makes shuffled layouts reproducible. Zero picks a random seed.
	Seed uint64

	// Orderer overrides the policy selected by Sort.
	Orderer Orderer
}

// Bool returns a pointer to v, for use with [Options.Sort].
func Bool(v bool) *bool { return &v }

// Sorted reports whether the options select the descending-weight policy.
func (o Options) Sorted() bool { return o.Sort == nil || *o.Sort }

// Resolve validates the options and returns the read-only configuration
// shared by every recursive call.
func (o Options) Resolve() (*Config, error) {
	dir, err := ParseDirection(string(o.Direction))
	if err != nil {
		return nil, err
	}
	if o.Padding < 0 || math.IsNaN(o.Padding) {
		return nil, errors.New(errors.ErrCodeInvalidPadding, "padding must be >= 0, got %v", o.Padding)
	}

	orderer := o.Orderer
	if orderer == nil {
		if o.Sorted() {
			orderer = WeightOrderer{}
		} else {
			seed := o.Seed
			if seed == 0 {
				seed = rand.Uint64()
			}
			orderer = NewShuffleOrderer(seed)
		}
	}

	return &Config{
		Direction: dir,
		Padding:   o.Padding,
		Orderer:   orderer,
		exclude:   o.Exclude,
	}, nil
}

// Config is the resolved form of [Options]. It is never mutated by the
// layout and may be reused across calls on the same goroutine.
type Config struct {
	Direction Direction
	Padding   float64
	Orderer   Orderer

	exclude []any
}

// DefaultConfig returns the configuration of the zero [Options].
func DefaultConfig() *Config {
	return &Config{Direction: Both, Orderer: WeightOrderer{}}
}

// Excludes reports whether payload is in the exclusion list.
func (c *Config) Excludes(payload any) bool {
	for _, e := range c.exclude {
		if equalPayload(e, payload) {
			return true
		}
	}
	return false
}
