// Pipeline step model: a tagged (kind, option) selector plus two numeric parameters
package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind selects the family of operation a Step performs.
type Kind int

const (
	KindColorConvert Kind = iota + 1
	KindIllumination
	KindNoiseReduction
	KindEdgeEnhancement
	KindAffine
	KindContourMeasurement
)

var kindNames = map[Kind]string{
	KindColorConvert:       "color",
	KindIllumination:       "illumination",
	KindNoiseReduction:     "noise",
	KindEdgeEnhancement:    "edge",
	KindAffine:             "affine",
	KindContourMeasurement: "contour",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is one of the six known kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind accepts a kind name ("edge") or its number ("4").
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Kind(n).Valid() {
		return Kind(n), nil
	}
	return 0, fmt.Errorf("unknown step kind %q", s)
}

// Step is one immutable pipeline operation. Param1 and Param2 are interpreted per
// (Kind, Option); parameters that the selected operation does not use are ignored.
type Step struct {
	Kind   Kind
	Option int
	Param1 float64
	Param2 float64
}

func (s Step) String() string {
	return fmt.Sprintf("%s/%d(%g, %g)", s.Kind, s.Option, s.Param1, s.Param2)
}

// Label returns the catalogue name of the step, or its String form when the
// (kind, option) pair has no catalogue entry.
func (s Step) Label() string {
	if info, ok := Lookup(s.Kind, s.Option); ok {
		return info.Label
	}
	return s.String()
}
