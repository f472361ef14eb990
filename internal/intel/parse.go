package intel

import (
	"encoding/json"
	"fmt"

	"urlvetter/internal/models"
)

// This package is the boundary to the external enrichment providers. The
// engine never calls them itself: their already-computed verdicts arrive
// as JSON blobs attached to a scan task, and are decoded here into the
// typed optional inputs the fusion engine consumes. Empty input means the
// source was absent or disabled and decodes to nil, not to an error.

// ParseSemantic decodes a semantic-analysis payload. Out-of-set attack
// category labels are coerced to UNKNOWN rather than propagated.
func ParseSemantic(raw []byte) (*models.LLMAnalysisResult, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var res models.LLMAnalysisResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decoding semantic result: %w", err)
	}

	res.AttackCategory = models.CoerceAttackCategory(string(res.AttackCategory))
	res.SemanticRiskScore = clampScore(res.SemanticRiskScore)
	res.Confidence = clampUnit(res.Confidence)
	return &res, nil
}

// ParseThreatIntel decodes an aggregated reputation payload.
func ParseThreatIntel(raw []byte) (*models.ThreatIntelResult, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var res models.ThreatIntelResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decoding threat intel result: %w", err)
	}

	if res.ReputationScore != nil {
		v := clampScore(*res.ReputationScore)
		res.ReputationScore = &v
	}
	return &res, nil
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
