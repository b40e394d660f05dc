package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownModelKind is returned when a model kind string cannot be parsed.
var ErrUnknownModelKind = errors.New("unknown model kind")

// ModelKind selects the binding table and the skinning policy of a model.
// It is set once when a model is generated or imported and never re-derived from part names.
type ModelKind uint8

const (
	// Humanoid parts follow their bone rigidly: position snaps to the bone.
	Humanoid ModelKind = iota
	// Robot parts are weighted multi-bone blends.
	Robot
)

func (k ModelKind) String() string {
	switch k {
	case Humanoid:
		return "humanoid"
	case Robot:
		return "robot"
	default:
		return fmt.Sprintf("ModelKind(%d)", uint8(k))
	}
}

// ParseModelKind parses "humanoid" or "robot" (case-insensitive).
//
// Parameters:
//   - s: the kind name
//
// Returns:
//   - ModelKind: the parsed kind
//   - error: ErrUnknownModelKind if s is not a known kind
func ParseModelKind(s string) (ModelKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "humanoid", "human":
		return Humanoid, nil
	case "robot":
		return Robot, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownModelKind, s)
	}
}

func (k ModelKind) MarshalText() ([]byte, error) {
	if k != Humanoid && k != Robot {
		return nil, fmt.Errorf("%w: %d", ErrUnknownModelKind, uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *ModelKind) UnmarshalText(text []byte) error {
	parsed, err := ParseModelKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// DetectKind derives a kind from part names: any part named "Head" or "Torso" makes the model humanoid.
// Only used when a model arrives without an explicit kind (presets and documents always carry one).
//
// Parameters:
//   - partNames: the names of the model's mesh parts
//
// Returns:
//   - ModelKind: Humanoid if a marker part is present, Robot otherwise
func DetectKind(partNames []string) ModelKind {
	for _, n := range partNames {
		if n == "Head" || n == "Torso" {
			return Humanoid
		}
	}
	return Robot
}
