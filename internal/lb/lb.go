package lb

import (
	"strconv"
	"sync"
)

// Mirror is one download URL prefix with its traffic weight.
type Mirror struct {
	URL    string
	Weight int
}

// WeightedRoundRobin orders download mirrors for the <urls> block of
// an update response. All mirrors are always emitted; the rotation
// only decides which codebase leads so clients spread their first
// attempts.
type WeightedRoundRobin struct {
	mirrors []Mirror
	index   int
	cw      int
	gcd     int
	mu      sync.Mutex
}

// ParseMirrors consumes the flat url,weight pair list from config.
// Pairs with an unparsable weight are skipped.
func ParseMirrors(pairs []string) []Mirror {
	var mirrors []Mirror
	for i := 0; i+1 < len(pairs); i += 2 {
		w, err := strconv.Atoi(pairs[i+1])
		if err != nil {
			continue
		}
		mirrors = append(mirrors, Mirror{URL: pairs[i], Weight: w})
	}
	return mirrors
}

func NewWeightedRoundRobin(mirrors []Mirror) *WeightedRoundRobin {
	weights := make([]int, len(mirrors))
	for i, m := range mirrors {
		weights[i] = m.Weight
	}
	return &WeightedRoundRobin{
		mirrors: mirrors,
		gcd:     gcdAll(weights),
		index:   -1,
	}
}

// Next returns the mirror that should lead the url list.
func (wrr *WeightedRoundRobin) Next() Mirror {
	wrr.mu.Lock()
	defer wrr.mu.Unlock()

	if len(wrr.mirrors) == 0 {
		return Mirror{}
	}

	for {
		wrr.index = (wrr.index + 1) % len(wrr.mirrors)
		if wrr.index == 0 {
			wrr.cw -= wrr.gcd
			if wrr.cw <= 0 {
				wrr.cw = maxWeight(wrr.mirrors)
				if wrr.cw == 0 {
					return Mirror{}
				}
			}
		}
		if wrr.mirrors[wrr.index].Weight >= wrr.cw {
			return wrr.mirrors[wrr.index]
		}
	}
}

// Ordered returns every mirror with the current pick first, preserving
// declaration order for the rest.
func (wrr *WeightedRoundRobin) Ordered() []Mirror {
	lead := wrr.Next()
	out := make([]Mirror, 0, len(wrr.mirrors))
	if lead.URL != "" {
		out = append(out, lead)
	}
	for _, m := range wrr.mirrors {
		if m.URL != lead.URL {
			out = append(out, m)
		}
	}
	return out
}

func gcdAll(weights []int) int {
	if len(weights) == 0 {
		return 1
	}
	g := weights[0]
	for _, weight := range weights {
		for weight != 0 {
			g, weight = weight, g%weight
		}
	}
	if g == 0 {
		return 1
	}
	return g
}

func maxWeight(mirrors []Mirror) int {
	m := 0
	for _, mirror := range mirrors {
		if mirror.Weight > m {
			m = mirror.Weight
		}
	}
	return m
}
