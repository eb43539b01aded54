package arbitrator

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/skyops/irops/pkg/models"
)

// Composite score weights.
const (
	weightSafety    = 0.4
	weightCost      = 0.2
	weightPassenger = 0.2
	weightNetwork   = 0.2
)

// marginRe captures an explicit numeric safety margin, e.g. "margin of 0.15"
// or "15% margin".
var (
	marginAfterRe  = regexp.MustCompile(`margin[^0-9\-+.]*(-?[0-9]+(?:\.[0-9]+)?)\s*(%)?`)
	marginBeforeRe = regexp.MustCompile(`(-?[0-9]+(?:\.[0-9]+)?)\s*(%)?\s*(?:safety\s+)?margin`)
)

// SafetyMargin derives the safety margin from compliance text. Explicit
// numeric margins take precedence over language cues; text with neither
// yields zero.
func SafetyMargin(complianceText string) float64 {
	text := strings.ToLower(complianceText)

	if m, ok := explicitMargin(text); ok {
		return m
	}
	switch {
	case strings.Contains(text, "significant"):
		return 0.25
	case strings.Contains(text, "comfortable"):
		return 0.15
	case strings.Contains(text, "minimal"):
		return 0.05
	case strings.Contains(text, "compliant"):
		return 0.10
	}
	return 0
}

func explicitMargin(text string) (float64, bool) {
	for _, re := range []*regexp.Regexp{marginAfterRe, marginBeforeRe} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if m[2] == "%" {
			v /= 100
		}
		return v, true
	}
	return 0, false
}

// SafetyScore maps a safety margin to a 0-100 score. A solution that
// violates any binding constraint scores zero regardless of margin.
func SafetyScore(violatesConstraint bool, margin float64) float64 {
	if violatesConstraint {
		return 0
	}
	switch {
	case margin >= 0.20:
		return 100
	case margin >= 0.10:
		return 80 + 20*(margin-0.10)/0.10
	case margin >= 0:
		return 60 + 20*margin/0.10
	default:
		return 0
	}
}

// CostScore maps total cost in USD onto the inverse cost bands.
func CostScore(totalCost float64) float64 {
	switch {
	case totalCost < 10_000:
		return 100
	case totalCost < 50_000:
		return 100 - 20*(totalCost-10_000)/40_000
	case totalCost < 150_000:
		return 60 + 20*(totalCost-50_000)/100_000
	case totalCost < 300_000:
		return 40 + 20*(totalCost-150_000)/150_000
	default:
		return math.Max(0, 40-40*(totalCost-300_000)/300_000)
	}
}

// PassengerScore maps passenger impact onto a 0-100 score.
func PassengerScore(impact models.PassengerImpact) float64 {
	var base float64
	switch {
	case impact.Affected < 50:
		base = 100
	case impact.Affected < 150:
		base = 80
	case impact.Affected < 300:
		base = 60
	default:
		base = 40
	}
	score := base - math.Min(30, 5*impact.DelayHours)
	if impact.Cancelled {
		score -= 20
	}
	score += math.Min(10, 3*float64(len(impact.ReprotectionOptions)))
	return clampScore(score)
}

// NetworkScore maps downstream schedule impact onto a 0-100 score.
func NetworkScore(impact models.NetworkImpact) float64 {
	var base float64
	switch {
	case impact.DownstreamFlights == 0:
		base = 100
	case impact.DownstreamFlights < 2:
		base = 80
	case impact.DownstreamFlights <= 5:
		base = 60
	default:
		base = 40
	}
	return clampScore(base - math.Min(30, 10*float64(impact.ConnectionMisses)))
}

// CompositeScore is the weighted sum rounded to one decimal.
func CompositeScore(safety, cost, passenger, network float64) float64 {
	composite := weightSafety*safety + weightCost*cost + weightPassenger*passenger + weightNetwork*network
	return math.Round(composite*10) / 10
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// Less orders solutions for selection: higher composite first, then higher
// safety, then higher cost score (lower cost), then higher passenger score,
// finally lexicographic solution_id for determinism.
func Less(a, b *models.RecoverySolution) bool {
	if a.CompositeScore != b.CompositeScore {
		return a.CompositeScore > b.CompositeScore
	}
	if a.SafetyScore != b.SafetyScore {
		return a.SafetyScore > b.SafetyScore
	}
	if a.CostScore != b.CostScore {
		return a.CostScore > b.CostScore
	}
	if a.PassengerScore != b.PassengerScore {
		return a.PassengerScore > b.PassengerScore
	}
	return a.SolutionID < b.SolutionID
}
