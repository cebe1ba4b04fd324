package vercomp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Quad is an Omaha style four component version number. The component
// limits follow the 255.255.65535.65535 wire format: the first two
// components fit in 8 bits, the last two in 16 bits.
type Quad [4]uint64

var quadBits = [4]uint64{0xFF, 0xFF, 0xFFFF, 0xFFFF}

// ParseQuad parses a dotted version with up to four components. Missing
// trailing components are zero. The empty string parses as the zero
// version, which compares lower than any real version.
func ParseQuad(s string) (Quad, error) {
	var q Quad
	if s == "" {
		return q, nil
	}
	parts := strings.Split(s, ".")
	if len(parts) > 4 {
		return q, errors.Errorf("version %q has more than four components", s)
	}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return Quad{}, errors.Wrapf(err, "version %q component %d", s, i)
		}
		if n > quadBits[i] {
			return Quad{}, errors.Errorf("version %q component %d exceeds %d", s, i, quadBits[i])
		}
		q[i] = n
	}
	return q, nil
}

// MustParseQuad is ParseQuad for trusted literals, mostly in tests.
func MustParseQuad(s string) Quad {
	q, err := ParseQuad(s)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Quad) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", q[0], q[1], q[2], q[3])
}

// Packed maps the version onto a uint64 with the 8.8.16.16 bit layout
// used by the versions table for indexed ordered lookups. Packing is
// order preserving: a.Packed() < b.Packed() iff a.Compare(b) < 0.
func (q Quad) Packed() uint64 {
	return q[0]<<48 | q[1]<<40 | q[2]<<16 | q[3]
}

func (q Quad) Compare(o Quad) int {
	for i := 0; i < 4; i++ {
		switch {
		case q[i] < o[i]:
			return Less
		case q[i] > o[i]:
			return Greater
		}
	}
	return Equal
}

func (q Quad) IsZero() bool {
	return q == Quad{}
}

// Pair is a Sparkle style two component build version (65535.65535).
type Pair [2]uint64

func ParsePair(s string) (Pair, error) {
	var p Pair
	if s == "" {
		return p, nil
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return p, errors.Errorf("build version %q has more than two components", s)
	}
	for i, c := range parts {
		n, err := strconv.ParseUint(c, 10, 64)
		if err != nil {
			return Pair{}, errors.Wrapf(err, "build version %q component %d", s, i)
		}
		if n > 0xFFFF {
			return Pair{}, errors.Errorf("build version %q component %d exceeds 65535", s, i)
		}
		p[i] = n
	}
	return p, nil
}

func MustParsePair(s string) Pair {
	p, err := ParsePair(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pair) String() string {
	return fmt.Sprintf("%d.%d", p[0], p[1])
}

// Packed uses a 16.16 layout, order preserving like Quad.Packed.
func (p Pair) Packed() uint64 {
	return p[0]<<16 | p[1]
}

func (p Pair) Compare(o Pair) int {
	for i := 0; i < 2; i++ {
		switch {
		case p[i] < o[i]:
			return Less
		case p[i] > o[i]:
			return Greater
		}
	}
	return Equal
}
