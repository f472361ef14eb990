package heuristics

import (
	"fmt"
	"strings"
	"time"

	"urlvetter/internal/features"
	"urlvetter/internal/models"
)

const (
	WeightIPHost         = 20
	WeightNoHTTPS        = 12
	WeightBadTLD         = 15
	WeightKeyword        = 14
	WeightEncoding       = 8
	WeightDataURI        = 25
	WeightOddPort        = 10
	WeightAtSymbol       = 20
	WeightDeepSubs       = 15
	WeightSomeSubs       = 6
	WeightLongURL        = 8
	WeightHighEntropy    = 10
	WeightDigitHeavy     = 8
	WeightManyDashes     = 6
	WeightManyDots       = 6
	WeightManyParams     = 5
	WeightHomoglyph      = 22
	WeightBrandLookalike = 18
	WeightDeepPath       = 4

	// Rule thresholds.
	DeepSubdomainDepth = 4
	SomeSubdomainDepth = 2
	LongURLLength      = 100
	HighEntropyBits    = 4.5
	DigitHeavyRatio    = 0.3
	ManyDashes         = 4
	ManyDots           = 6
	ManyParams         = 5
	HomoglyphCutoff    = 0.8
	LookalikeCutoff    = 0.85
	DeepPathDepth      = 6

	maxScore               = 100
	baseConfidence         = 0.5
	confidencePerIndicator = 0.06
	maxConfidence          = 0.98

	modelVersion = "heuristic-v2.1"
)

// Scorer maps a feature record to a capped risk score plus the ranked list
// of triggered indicators. Deterministic and side-effect free.
type Scorer struct {
	extractor *features.Extractor
}

func NewScorer(ex *features.Extractor) *Scorer {
	return &Scorer{extractor: ex}
}

// Score walks the rule table top to bottom. The order is load-bearing:
// indicator position is display priority, and the subdomain and
// homoglyph/lookalike branches are mutually exclusive pairs resolved by
// first match.
func (s *Scorer) Score(f models.URLFeatures) ([]models.ScoredIndicator, int) {
	var fired []models.ScoredIndicator
	add := func(weight int, label string) {
		fired = append(fired, models.ScoredIndicator{Weight: weight, Label: label})
	}

	if f.HasIPAddress {
		add(WeightIPHost, "Host is a raw IP address instead of a domain name")
	}
	if !f.HasHTTPS {
		add(WeightNoHTTPS, "Connection is not HTTPS")
	}
	if f.HasSuspiciousTLD {
		add(WeightBadTLD, fmt.Sprintf("Top-level domain .%s is frequently abused", f.TLD))
	}
	for _, kw := range f.MatchedKeywords {
		add(WeightKeyword, fmt.Sprintf("Suspicious keyword %q in URL", kw))
	}
	if f.HasEncodedChars {
		add(WeightEncoding, "Heavy percent-encoding obscures the URL")
	}
	if f.HasDataURI {
		add(WeightDataURI, "data: URI scheme embeds content directly in the link")
	}
	if f.HasPortInURL && f.Port != "80" && f.Port != "443" {
		add(WeightOddPort, "Non-standard port in URL")
	}
	if f.AtCount > 0 {
		add(WeightAtSymbol, "@ symbol can disguise the real destination host")
	}
	if f.SubdomainDepth >= DeepSubdomainDepth {
		add(WeightDeepSubs, "Excessive subdomain nesting")
	} else if f.SubdomainDepth >= SomeSubdomainDepth {
		add(WeightSomeSubs, "Unusually deep subdomain")
	}
	if f.Length > LongURLLength {
		add(WeightLongURL, "Abnormally long URL")
	}
	if f.Entropy > HighEntropyBits {
		add(WeightHighEntropy, "High character entropy suggests a generated URL")
	}
	if f.DigitRatio > DigitHeavyRatio {
		add(WeightDigitHeavy, "Unusual amount of digits in URL")
	}
	if f.DashCount > ManyDashes {
		add(WeightManyDashes, "Excessive hyphens in URL")
	}
	if f.DotCount > ManyDots {
		add(WeightManyDots, "Excessive dots in URL")
	}
	if f.QueryParamCount > ManyParams {
		add(WeightManyParams, "Large number of query parameters")
	}
	if f.HomoglyphScore > HomoglyphCutoff {
		add(WeightHomoglyph, fmt.Sprintf("Domain impersonates %q through character substitution (homoglyph)", f.MatchedBrand))
	} else if f.BrandSimilarityScore > LookalikeCutoff && f.MatchedBrand != "" &&
		!strings.Contains(f.Domain, f.MatchedBrand) {
		add(WeightBrandLookalike, fmt.Sprintf("Domain closely resembles the brand %q", f.MatchedBrand))
	}
	if f.PathDepth > DeepPathDepth {
		add(WeightDeepPath, "Deeply nested URL path")
	}

	raw := 0
	for _, ind := range fired {
		raw += ind.Weight
	}
	return fired, raw
}

// Analyze runs extraction and scoring for one URL. Total: malformed input
// degrades to the fallback feature record, it never returns an error.
func (s *Scorer) Analyze(rawURL string) models.MLAnalysisResult {
	start := time.Now()

	f := s.extractor.Extract(rawURL)
	fired, raw := s.Score(f)

	score := raw
	if score > maxScore {
		score = maxScore
	}

	confidence := baseConfidence + confidencePerIndicator*float64(len(fired))
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	labels := make([]string, len(fired))
	for i, ind := range fired {
		labels[i] = ind.Label
	}

	return models.MLAnalysisResult{
		Features:     f,
		RiskScore:    score,
		Confidence:   confidence,
		Indicators:   labels,
		ModelVersion: modelVersion,
		ProcessingMs: time.Since(start).Milliseconds(),
	}
}
