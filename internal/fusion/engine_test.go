package fusion

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urlvetter/internal/models"
)

func intPtr(v int) *int { return &v }

func TestFuseNoSources(t *testing.T) {
	e := NewEngine()
	res := e.Fuse(nil, nil, nil)

	assert.Equal(t, 0, res.UnifiedRiskScore)
	assert.Equal(t, models.TierSafe, res.Tier)
	assert.Equal(t, 0.5, res.Confidence)
	assert.Equal(t, models.CategoryUnknown, res.AttackCategory)
	assert.Empty(t, res.TopIndicators)
	// Published weights stay nominal regardless of which sources were present.
	assert.Equal(t, 0.35, res.MLWeight)
	assert.Equal(t, 0.35, res.LLMWeight)
	assert.Equal(t, 0.30, res.ThreatIntelWeight)
}

func TestFuseRenormalization(t *testing.T) {
	e := NewEngine()

	// A single present source dominates fully: its 0.35 nominal weight
	// cancels out of the renormalized average.
	res := e.Fuse(&models.MLAnalysisResult{RiskScore: 80, Confidence: 0.8}, nil, nil)
	assert.Equal(t, 80.0, res.Breakdown.MLScore)
	assert.Equal(t, 80, res.UnifiedRiskScore)

	// Two sources blend by their relative weights only.
	res = e.Fuse(
		&models.MLAnalysisResult{RiskScore: 100, Confidence: 0.9},
		&models.LLMAnalysisResult{SemanticRiskScore: 0, Confidence: 0.9},
		nil,
	)
	// (0.35*100 + 0.35*0) / 0.70 = 50
	assert.Equal(t, 50, res.UnifiedRiskScore)
}

func TestFuseReputationInversion(t *testing.T) {
	e := NewEngine()

	// Perfect reputation contributes zero risk.
	res := e.Fuse(nil, nil, &models.ThreatIntelResult{ReputationScore: intPtr(100), Sources: []string{"sb"}})
	assert.Equal(t, 0, res.UnifiedRiskScore)
	assert.Equal(t, 0.0, res.Breakdown.ThreatIntelScore)

	// Trashed reputation contributes full risk.
	res = e.Fuse(nil, nil, &models.ThreatIntelResult{ReputationScore: intPtr(0), Sources: []string{"sb"}})
	assert.Equal(t, 100, res.UnifiedRiskScore)
	assert.Equal(t, 100.0, res.Breakdown.ThreatIntelScore)
}

func TestFuseIntelWithoutReputation(t *testing.T) {
	e := NewEngine()

	// A present record that carries no reputation reading is neutral: it
	// must not be read as reputation 0 and inflate the score.
	res := e.Fuse(nil, nil, &models.ThreatIntelResult{Sources: []string{"whois"}})
	assert.Equal(t, 0, res.UnifiedRiskScore)
	assert.Equal(t, models.TierSafe, res.Tier)
	assert.Equal(t, 0.0, res.Breakdown.ThreatIntelScore)
}

func TestFuseHardOverrides(t *testing.T) {
	e := NewEngine()

	// Known-malicious floors the score at 90 even when the weighted base
	// from an all-clean reputation is 0.
	res := e.Fuse(nil, nil, &models.ThreatIntelResult{
		KnownMalicious:  true,
		ReputationScore: intPtr(100),
		Sources:         []string{},
	})
	require.GreaterOrEqual(t, res.UnifiedRiskScore, 90)
	assert.Equal(t, models.TierConfirmedPhishing, res.Tier)
	// No consulted sources: synthesized intel confidence is 0.5.
	assert.Equal(t, 0.5, res.Confidence)

	// Safe-browsing flag floors at 85.
	res = e.Fuse(nil, nil, &models.ThreatIntelResult{
		ReputationScore: intPtr(100),
		SafeBrowsing:    &models.SafeBrowsingVerdict{IsMalicious: true},
		Sources:         []string{"safebrowsing"},
	})
	assert.Equal(t, 85, res.UnifiedRiskScore)

	// Five or more scanner positives floor at 80.
	res = e.Fuse(nil, nil, &models.ThreatIntelResult{
		ReputationScore: intPtr(100),
		VirusTotal:      &models.ReputationScan{Positives: 5, Total: 70},
		Sources:         []string{"virustotal"},
	})
	assert.Equal(t, 80, res.UnifiedRiskScore)

	// Four positives do not.
	res = e.Fuse(nil, nil, &models.ThreatIntelResult{
		ReputationScore: intPtr(100),
		VirusTotal:      &models.ReputationScan{Positives: 4, Total: 70},
		Sources:         []string{"virustotal"},
	})
	assert.Equal(t, 0, res.UnifiedRiskScore)

	// Overrides are floors, never deductions: a base score above the
	// floor survives.
	res = e.Fuse(&models.MLAnalysisResult{RiskScore: 100, Confidence: 0.9}, nil, &models.ThreatIntelResult{
		KnownMalicious:  true,
		ReputationScore: intPtr(0),
		Sources:         []string{"sb"},
	})
	assert.Equal(t, 100, res.UnifiedRiskScore)
}

func TestFuseTierBoundaries(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		score int
		tier  models.RiskTier
	}{
		{0, models.TierSafe},
		{34, models.TierSafe},
		{35, models.TierSuspicious},
		{59, models.TierSuspicious},
		{60, models.TierHighRisk},
		{79, models.TierHighRisk},
		{80, models.TierConfirmedPhishing},
		{100, models.TierConfirmedPhishing},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("score_%d", tt.score), func(t *testing.T) {
			// A lone ML source passes its score through unchanged.
			res := e.Fuse(&models.MLAnalysisResult{RiskScore: tt.score, Confidence: 0.7}, nil, nil)
			assert.Equal(t, tt.score, res.UnifiedRiskScore)
			assert.Equal(t, tt.tier, res.Tier)
		})
	}
}

func TestFuseAttackCategory(t *testing.T) {
	e := NewEngine()

	res := e.Fuse(nil, &models.LLMAnalysisResult{
		SemanticRiskScore: 90,
		AttackCategory:    models.CategoryCredentialTheft,
		Confidence:        0.9,
	}, nil)
	assert.Equal(t, models.CategoryCredentialTheft, res.AttackCategory)
	assert.Contains(t, res.Recommendation, "credential theft")

	// Out-of-set labels coerce to UNKNOWN, never propagate.
	res = e.Fuse(nil, &models.LLMAnalysisResult{
		SemanticRiskScore: 90,
		AttackCategory:    models.AttackCategory("PIG_BUTCHERING"),
		Confidence:        0.9,
	}, nil)
	assert.Equal(t, models.CategoryUnknown, res.AttackCategory)

	// NONE is treated the same as UNKNOWN.
	res = e.Fuse(nil, &models.LLMAnalysisResult{
		SemanticRiskScore: 20,
		AttackCategory:    models.CategoryNone,
		Confidence:        0.9,
	}, nil)
	assert.Equal(t, models.CategoryUnknown, res.AttackCategory)
}

func TestFuseIndicatorAggregation(t *testing.T) {
	e := NewEngine()

	mlIndicators := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		mlIndicators = append(mlIndicators, fmt.Sprintf("heuristic indicator %d", i))
	}

	res := e.Fuse(
		&models.MLAnalysisResult{RiskScore: 70, Confidence: 0.8, Indicators: mlIndicators},
		&models.LLMAnalysisResult{
			SemanticRiskScore: 80,
			Confidence:        0.9,
			// First one duplicates a heuristic indicator.
			Indicators: []string{"heuristic indicator 0", "semantic indicator A", "semantic indicator B"},
		},
		&models.ThreatIntelResult{
			ReputationScore: intPtr(10),
			SafeBrowsing:    &models.SafeBrowsingVerdict{IsMalicious: true},
			VirusTotal:      &models.ReputationScan{Positives: 12, Total: 70},
			Whois:           &models.WhoisRecord{AgeInDays: intPtr(4)},
			Sources:         []string{"safebrowsing", "virustotal", "whois"},
		},
	)

	require.LessOrEqual(t, len(res.TopIndicators), 10)

	seen := make(map[string]bool)
	for _, ind := range res.TopIndicators {
		assert.False(t, seen[ind], "duplicate indicator %q", ind)
		seen[ind] = true
	}

	// Heuristic indicators come first, in their original order.
	assert.Equal(t, "heuristic indicator 0", res.TopIndicators[0])
	// The dedup keeps first occurrence, so the semantic duplicate is gone
	// and the semantic originals follow the heuristic block.
	assert.Contains(t, res.TopIndicators, "semantic indicator A")
	// Synthesized threat-intel indicators got truncated by the cap of 10:
	// 6 heuristic + 2 semantic + safebrowsing + engines = 10.
	assert.Contains(t, res.TopIndicators, "Listed as malicious by safe-browsing")
	assert.Contains(t, res.TopIndicators, "12/70 reputation engines flagged this URL")
	assert.NotContains(t, res.TopIndicators, "Newly registered domain (4 days)")
}

func TestFuseWhoisIndicator(t *testing.T) {
	e := NewEngine()

	res := e.Fuse(nil, nil, &models.ThreatIntelResult{
		ReputationScore: intPtr(60),
		Whois:           &models.WhoisRecord{AgeInDays: intPtr(12)},
		Sources:         []string{"whois"},
	})
	assert.Contains(t, res.TopIndicators, "Newly registered domain (12 days)")

	// Mature domains synthesize nothing.
	res = e.Fuse(nil, nil, &models.ThreatIntelResult{
		ReputationScore: intPtr(60),
		Whois:           &models.WhoisRecord{AgeInDays: intPtr(3650)},
		Sources:         []string{"whois"},
	})
	assert.Empty(t, res.TopIndicators)

	// Unknown age synthesizes nothing either.
	res = e.Fuse(nil, nil, &models.ThreatIntelResult{
		ReputationScore: intPtr(60),
		Whois:           &models.WhoisRecord{AgeInDays: nil},
		Sources:         []string{"whois"},
	})
	assert.Empty(t, res.TopIndicators)
}

func TestFuseConfidence(t *testing.T) {
	e := NewEngine()

	// Average of ml 0.74, llm 0.80, sourced intel 0.90 = 0.8133… → 0.81.
	res := e.Fuse(
		&models.MLAnalysisResult{RiskScore: 50, Confidence: 0.74},
		&models.LLMAnalysisResult{SemanticRiskScore: 50, Confidence: 0.80},
		&models.ThreatIntelResult{ReputationScore: intPtr(50), Sources: []string{"sb"}},
	)
	assert.Equal(t, 0.81, res.Confidence)

	// Single source: its own confidence, rounded.
	res = e.Fuse(&models.MLAnalysisResult{RiskScore: 50, Confidence: 0.555}, nil, nil)
	assert.Equal(t, 0.56, res.Confidence)
}

func TestFuseRecommendations(t *testing.T) {
	e := NewEngine()

	tier := func(score int) models.RiskFusionResult {
		return e.Fuse(&models.MLAnalysisResult{RiskScore: score, Confidence: 0.7}, nil, nil)
	}

	assert.Contains(t, tier(90).Recommendation, "Block")
	assert.Contains(t, tier(70).Recommendation, "caution")
	assert.Contains(t, tier(40).Recommendation, "Verify")
	assert.Contains(t, tier(10).Recommendation, "No significant threat")
}
