package vercomp

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// compare result
const (
	Less    = -1
	Equal   = 0
	Greater = 1

	Invalid = 0
)

type CompareResult struct {
	Comparable bool
	Result     int // -1, 0, 1 (only when comparable)
}

type Parser interface {
	CanParse(version string) bool
	Parse(version string) (interface{}, error)
	Compare(a, b interface{}) int
}

type VersionComparator struct {
	parsers []Parser
}

// NewComparator builds the default parser chain: Omaha quad versions
// first, Sparkle build pairs second, semver last for values like
// minimum system versions that carry pre-release tags.
func NewComparator() *VersionComparator {
	return &VersionComparator{
		parsers: []Parser{
			&QuadParser{},
			&PairParser{},
			&SemVerParser{},
		},
	}
}

func (c *VersionComparator) AddParser(p Parser) {
	c.parsers = append(c.parsers, p)
}

func (c *VersionComparator) Compare(v1, v2 string) CompareResult {
	// try parsing both versions
	parsed1, parser := c.parseVersion(v1)
	parsed2, _ := c.parseVersion(v2)

	// must use the same type of parser
	if parser != nil && parser == c.getParserForValue(parsed2) {
		return CompareResult{
			Comparable: true,
			Result:     parser.Compare(parsed1, parsed2),
		}
	}
	return CompareResult{Comparable: false}
}

func (c *VersionComparator) parseVersion(v string) (interface{}, Parser) {
	for _, p := range c.parsers {
		if p.CanParse(v) {
			if parsed, err := p.Parse(v); err == nil {
				return parsed, p
			}
		}
	}
	return nil, nil
}

func (c *VersionComparator) getParserForValue(val interface{}) Parser {
	for _, p := range c.parsers {
		switch val.(type) {
		case Quad:
			if _, ok := p.(*QuadParser); ok {
				return p
			}
		case Pair:
			if _, ok := p.(*PairParser); ok {
				return p
			}
		case *semver.Version:
			if _, ok := p.(*SemVerParser); ok {
				return p
			}
		}
	}
	return nil
}

// QuadParser handles Omaha 255.255.65535.65535 versions. It only
// claims four component strings so that three component values fall
// through to the semver parser.
type QuadParser struct{}

func (p *QuadParser) CanParse(version string) bool {
	return strings.Count(version, ".") == 3
}

func (p *QuadParser) Parse(version string) (interface{}, error) {
	return ParseQuad(version)
}

func (p *QuadParser) Compare(a, b interface{}) int {
	return a.(Quad).Compare(b.(Quad))
}

// PairParser handles Sparkle 65535.65535 build versions.
type PairParser struct{}

func (p *PairParser) CanParse(version string) bool {
	return strings.Count(version, ".") == 1
}

func (p *PairParser) Parse(version string) (interface{}, error) {
	return ParsePair(version)
}

func (p *PairParser) Compare(a, b interface{}) int {
	return a.(Pair).Compare(b.(Pair))
}

type SemVerParser struct{}

func (p *SemVerParser) CanParse(version string) bool {
	_, err := semver.NewVersion(version)
	return err == nil
}

func (p *SemVerParser) Parse(version string) (interface{}, error) {
	return semver.NewVersion(version)
}

func (p *SemVerParser) Compare(a, b interface{}) int {
	return a.(*semver.Version).Compare(b.(*semver.Version))
}
