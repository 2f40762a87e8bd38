package convolve

import (
	"fmt"
	"strings"
)

// BorderMode decides which source sample stands in for a coordinate that
// falls outside the raster. The diagrams show a row abcdefgh extended on both
// sides.
type BorderMode int

const (
	// BorderReflect101 mirrors without repeating the edge: gfedcb|abcdefgh|gfedcba
	BorderReflect101 BorderMode = iota
	// BorderReflect mirrors including the edge: fedcba|abcdefgh|hgfedcb
	BorderReflect
	// BorderReplicate repeats the edge sample: aaaaaa|abcdefgh|hhhhhhh
	BorderReplicate
	// BorderWrap tiles the raster: cdefgh|abcdefgh|abcdefg
	BorderWrap
	// BorderConstant treats every outside sample as zero.
	BorderConstant
)

var borderNames = map[BorderMode]string{
	BorderReflect101: "reflect101",
	BorderReflect:    "reflect",
	BorderReplicate:  "replicate",
	BorderWrap:       "wrap",
	BorderConstant:   "constant",
}

func (m BorderMode) String() string {
	if name, ok := borderNames[m]; ok {
		return name
	}
	return fmt.Sprintf("BorderMode(%d)", int(m))
}

// ParseBorderMode accepts the names returned by String, case-insensitively.
// The empty string selects BorderReflect101.
func ParseBorderMode(s string) (BorderMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return BorderReflect101, nil
	}
	for mode, name := range borderNames {
		if name == s {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("unknown border mode %q (want one of reflect101, reflect, replicate, wrap, constant)", s)
}

// Index maps coordinate p onto [0, n). It returns false when the mode supplies
// no sample for p, which only happens for BorderConstant.
func (m BorderMode) Index(p, n int) (int, bool) {
	if p >= 0 && p < n {
		return p, true
	}

	switch m {
	case BorderReflect101:
		if n == 1 {
			return 0, true
		}
		period := 2*n - 2
		q := mod(p, period)
		if q >= n {
			q = period - q
		}
		return q, true
	case BorderReflect:
		q := mod(p, 2*n)
		if q >= n {
			q = 2*n - 1 - q
		}
		return q, true
	case BorderReplicate:
		if p < 0 {
			return 0, true
		}
		return n - 1, true
	case BorderWrap:
		return mod(p, n), true
	default:
		return 0, false
	}
}

func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}
