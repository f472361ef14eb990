package fusion

import (
	"fmt"
	"math"
	"strings"

	"urlvetter/internal/models"
)

// Nominal per-source policy weights. These are published verbatim in every
// result; the computation renormalizes over present sources internally.
const (
	MLWeight          = 0.35
	LLMWeight         = 0.35
	ThreatIntelWeight = 0.30
)

const (
	// Hard override floors for high-confidence external signals. Each is a
	// floor on the running score, never a deduction.
	KnownMaliciousFloor   = 90
	SafeBrowsingFloor     = 85
	ScannerPositivesFloor = 80
	ScannerPositivesMin   = 5

	// Tier thresholds, inclusive lower bounds.
	ConfirmedPhishingAt = 80
	HighRiskAt          = 60
	SuspiciousAt        = 35

	maxIndicators     = 10
	newDomainDays     = 30
	defaultConfidence = 0.5
	// Threat-intel aggregators report no confidence of their own; it is
	// synthesized from whether they actually consulted any source.
	sourcedIntelConfidence    = 0.9
	sourcelessIntelConfidence = 0.5
)

// Engine merges up to three independently-sourced risk scores into one
// tiered verdict. Stateless; a single instance serves any number of
// concurrent callers.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Fuse is total: any subset of sources may be nil, and all three absent is
// a valid call that yields the lowest tier at confidence 0.5. Absence of a
// source is excluded from both the weighted sum and the weight total, so a
// missing source never drags the average toward "safe".
func (e *Engine) Fuse(ml *models.MLAnalysisResult, llm *models.LLMAnalysisResult, ti *models.ThreatIntelResult) models.RiskFusionResult {
	var breakdown models.ScoreBreakdown
	weightedSum := 0.0
	totalWeight := 0.0

	if ml != nil {
		breakdown.MLScore = float64(ml.RiskScore)
		weightedSum += MLWeight * breakdown.MLScore
		totalWeight += MLWeight
	}
	if llm != nil {
		breakdown.LLMScore = float64(llm.SemanticRiskScore)
		weightedSum += LLMWeight * breakdown.LLMScore
		totalWeight += LLMWeight
	}
	if ti != nil {
		// Reputation is inverted: a perfect reputation of 100 contributes 0
		// risk, and that is also the substitute when the aggregator carried
		// no reputation reading at all.
		rep := 100
		if ti.ReputationScore != nil {
			rep = *ti.ReputationScore
		}
		breakdown.ThreatIntelScore = float64(100 - rep)
		weightedSum += ThreatIntelWeight * breakdown.ThreatIntelScore
		totalWeight += ThreatIntelWeight
	}

	score := 0.0
	if totalWeight > 0 {
		score = weightedSum / totalWeight
	}

	// Hard overrides: independent floors, combined only through the
	// running max.
	if ti != nil {
		if ti.KnownMalicious {
			score = math.Max(score, KnownMaliciousFloor)
		}
		if ti.SafeBrowsing != nil && ti.SafeBrowsing.IsMalicious {
			score = math.Max(score, SafeBrowsingFloor)
		}
		if ti.VirusTotal != nil && ti.VirusTotal.Positives >= ScannerPositivesMin {
			score = math.Max(score, ScannerPositivesFloor)
		}
	}

	final := int(math.Round(math.Max(0, math.Min(100, score))))
	tier := tierFor(final)
	category := attackCategory(llm)

	return models.RiskFusionResult{
		UnifiedRiskScore:  final,
		Tier:              tier,
		Confidence:        fusedConfidence(ml, llm, ti),
		MLWeight:          MLWeight,
		LLMWeight:         LLMWeight,
		ThreatIntelWeight: ThreatIntelWeight,
		Breakdown:         breakdown,
		TopIndicators:     aggregateIndicators(ml, llm, ti),
		AttackCategory:    category,
		Recommendation:    recommendation(tier, category),
	}
}

func tierFor(score int) models.RiskTier {
	switch {
	case score >= ConfirmedPhishingAt:
		return models.TierConfirmedPhishing
	case score >= HighRiskAt:
		return models.TierHighRisk
	case score >= SuspiciousAt:
		return models.TierSuspicious
	default:
		return models.TierSafe
	}
}

// attackCategory takes the semantic layer's label verbatim when it carries
// one. No voting across sources: only the semantic layer reasons about
// intent, so it is authoritative for the category.
func attackCategory(llm *models.LLMAnalysisResult) models.AttackCategory {
	if llm == nil {
		return models.CategoryUnknown
	}
	c := models.CoerceAttackCategory(string(llm.AttackCategory))
	if c == models.CategoryUnknown || c == models.CategoryNone {
		return models.CategoryUnknown
	}
	return c
}

// aggregateIndicators concatenates heuristic indicators, semantic
// indicators, and synthesized threat-intel indicators in that order, then
// deduplicates keeping first occurrence and truncates to ten.
func aggregateIndicators(ml *models.MLAnalysisResult, llm *models.LLMAnalysisResult, ti *models.ThreatIntelResult) []string {
	var all []string
	if ml != nil {
		all = append(all, ml.Indicators...)
	}
	if llm != nil {
		all = append(all, llm.Indicators...)
	}
	if ti != nil {
		if ti.SafeBrowsing != nil && ti.SafeBrowsing.IsMalicious {
			all = append(all, "Listed as malicious by safe-browsing")
		}
		if ti.VirusTotal != nil && ti.VirusTotal.Positives > 0 {
			all = append(all, fmt.Sprintf("%d/%d reputation engines flagged this URL",
				ti.VirusTotal.Positives, ti.VirusTotal.Total))
		}
		if ti.Whois != nil && ti.Whois.AgeInDays != nil && *ti.Whois.AgeInDays < newDomainDays {
			all = append(all, fmt.Sprintf("Newly registered domain (%d days)", *ti.Whois.AgeInDays))
		}
	}

	seen := make(map[string]bool, len(all))
	deduped := make([]string, 0, len(all))
	for _, ind := range all {
		if seen[ind] {
			continue
		}
		seen[ind] = true
		deduped = append(deduped, ind)
		if len(deduped) == maxIndicators {
			break
		}
	}
	return deduped
}

// fusedConfidence averages each present source's own confidence, rounded
// to two decimal places. No sources at all means 0.5.
func fusedConfidence(ml *models.MLAnalysisResult, llm *models.LLMAnalysisResult, ti *models.ThreatIntelResult) float64 {
	var values []float64
	if ml != nil {
		values = append(values, ml.Confidence)
	}
	if llm != nil {
		values = append(values, llm.Confidence)
	}
	if ti != nil {
		if len(ti.Sources) >= 1 {
			values = append(values, sourcedIntelConfidence)
		} else {
			values = append(values, sourcelessIntelConfidence)
		}
	}

	if len(values) == 0 {
		return defaultConfidence
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return math.Round(sum/float64(len(values))*100) / 100
}

func recommendation(tier models.RiskTier, category models.AttackCategory) string {
	switch tier {
	case models.TierConfirmedPhishing:
		if category != models.CategoryUnknown && category != models.CategoryNone {
			return fmt.Sprintf("Block this URL immediately: it matches a known %s pattern. Do not enter credentials or personal data.",
				humanCategory(category))
		}
		return "Block this URL immediately. Do not enter credentials or personal data."
	case models.TierHighRisk:
		return "Exercise extreme caution: this URL shows strong risk signals. Avoid entering any credentials or personal information."
	case models.TierSuspicious:
		return "Verify the legitimacy of this URL through an independent channel before acting on it."
	default:
		return "No significant threat indicators were found."
	}
}

func humanCategory(c models.AttackCategory) string {
	return strings.ReplaceAll(strings.ToLower(string(c)), "_", " ")
}
