package models

type RiskTier string
type AttackCategory string

const (
	TierSafe              RiskTier = "SAFE"
	TierSuspicious        RiskTier = "SUSPICIOUS"
	TierHighRisk          RiskTier = "HIGH_RISK"
	TierConfirmedPhishing RiskTier = "CONFIRMED_PHISHING"
)

// Attack categories form a closed set. Anything arriving from an upstream
// provider outside this set is coerced to CategoryUnknown.
const (
	CategoryCredentialTheft    AttackCategory = "CREDENTIAL_THEFT"
	CategoryBrandImpersonation AttackCategory = "BRAND_IMPERSONATION"
	CategoryFinancialFraud     AttackCategory = "FINANCIAL_FRAUD"
	CategoryMalware            AttackCategory = "MALWARE_DISTRIBUTION"
	CategoryAccountTakeover    AttackCategory = "ACCOUNT_TAKEOVER"
	CategoryBEC                AttackCategory = "BUSINESS_EMAIL_COMPROMISE"
	CategoryCryptoScam         AttackCategory = "CRYPTO_SCAM"
	CategoryTechSupportScam    AttackCategory = "TECH_SUPPORT_SCAM"
	CategorySocialEngineering  AttackCategory = "SOCIAL_ENGINEERING"
	CategoryUnknown            AttackCategory = "UNKNOWN"
	CategoryNone               AttackCategory = "NONE"
)

var attackCategories = map[AttackCategory]bool{
	CategoryCredentialTheft:    true,
	CategoryBrandImpersonation: true,
	CategoryFinancialFraud:     true,
	CategoryMalware:            true,
	CategoryAccountTakeover:    true,
	CategoryBEC:                true,
	CategoryCryptoScam:         true,
	CategoryTechSupportScam:    true,
	CategorySocialEngineering:  true,
	CategoryUnknown:            true,
	CategoryNone:               true,
}

// CoerceAttackCategory maps an arbitrary upstream label onto the closed set.
func CoerceAttackCategory(raw string) AttackCategory {
	c := AttackCategory(raw)
	if attackCategories[c] {
		return c
	}
	return CategoryUnknown
}

// URLFeatures is the full lexical decomposition of a scanned URL.
// Immutable once built. All ratios are in [0,1]; Domain is never empty
// (it falls back to the raw input when parsing fails).
type URLFeatures struct {
	Length     int     `json:"length"`
	Entropy    float64 `json:"entropy"`
	DotCount   int     `json:"dot_count"`
	DashCount  int     `json:"dash_count"`
	UnderCount int     `json:"underscore_count"`
	AtCount    int     `json:"at_count"`
	SlashCount int     `json:"slash_count"`

	QueryParamCount int  `json:"query_param_count"`
	HasFragment     bool `json:"has_fragment"`
	SubdomainDepth  int  `json:"subdomain_depth"`
	PathDepth       int  `json:"path_depth"`

	HasIPAddress          bool `json:"has_ip_address"`
	HasHTTPS              bool `json:"has_https"`
	HasSuspiciousTLD      bool `json:"has_suspicious_tld"`
	HasSuspiciousKeywords bool `json:"has_suspicious_keywords"`
	HasEncodedChars       bool `json:"has_encoded_chars"`
	HasDataURI            bool `json:"has_data_uri"`
	HasPortInURL          bool `json:"has_port_in_url"`

	TLD       string `json:"tld"`
	Domain    string `json:"domain"`
	Subdomain string `json:"subdomain"`
	Port      string `json:"port,omitempty"`

	DigitRatio        float64 `json:"digit_ratio"`
	SpecialCharRatio  float64 `json:"special_char_ratio"`
	LongestWordLength int     `json:"longest_word_length"`

	HomoglyphScore       float64 `json:"homoglyph_score"`
	BrandSimilarityScore float64 `json:"brand_similarity_score"`

	// MatchedKeywords and MatchedBrand record which table entries produced
	// the flags above, so the scorer can emit per-match indicators and the
	// brand rule can tell a lookalike from the brand's own domain.
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
	MatchedBrand    string   `json:"matched_brand,omitempty"`
}

// ScoredIndicator is one triggered heuristic rule. Rules are evaluated in
// a fixed order, so an indicator's position doubles as display priority.
type ScoredIndicator struct {
	Weight int    `json:"weight"`
	Label  string `json:"label"`
}

// MLAnalysisResult is the heuristic scorer's verdict for one URL.
// Constructed once per scan, never mutated after return.
type MLAnalysisResult struct {
	Features     URLFeatures `json:"features"`
	RiskScore    int         `json:"risk_score"`
	Confidence   float64     `json:"confidence"`
	Indicators   []string    `json:"indicators"`
	ModelVersion string      `json:"model_version"`
	ProcessingMs int64       `json:"processing_ms"`
}

// LLMAnalysisResult is the semantic layer's verdict, consumed as-is.
// Optional per scan (nil pointer = provider absent or disabled).
type LLMAnalysisResult struct {
	SemanticRiskScore int            `json:"semantic_risk_score"`
	AttackCategory    AttackCategory `json:"attack_category"`
	Confidence        float64        `json:"confidence"`
	Indicators        []string       `json:"indicators"`
	Reasoning         string         `json:"reasoning"`
	Provider          string         `json:"provider,omitempty"`
}

type SafeBrowsingVerdict struct {
	IsMalicious bool     `json:"is_malicious"`
	ThreatTypes []string `json:"threat_types,omitempty"`
}

type ReputationScan struct {
	Positives int `json:"positives"`
	Total     int `json:"total"`
}

type WhoisRecord struct {
	// AgeInDays is nil when the registry returned no creation date.
	AgeInDays *int   `json:"age_in_days"`
	Registrar string `json:"registrar,omitempty"`
}

// ThreatIntelResult is the aggregated reputation verdict, consumed as-is.
// Optional per scan; sub-reports are individually optional too. A nil
// ReputationScore means the aggregator reported no reputation reading;
// fusion treats it as the neutral 100.
type ThreatIntelResult struct {
	KnownMalicious  bool                 `json:"known_malicious"`
	ReputationScore *int                 `json:"reputation_score"`
	SafeBrowsing    *SafeBrowsingVerdict `json:"safe_browsing,omitempty"`
	VirusTotal      *ReputationScan      `json:"virus_total,omitempty"`
	Whois           *WhoisRecord         `json:"whois,omitempty"`
	Sources         []string             `json:"sources"`
}

// ScoreBreakdown records the per-source scores that entered fusion.
type ScoreBreakdown struct {
	MLScore          float64 `json:"ml_score"`
	LLMScore         float64 `json:"llm_score"`
	ThreatIntelScore float64 `json:"threat_intel_score"`
}

// RiskFusionResult is the unified verdict for one scan. Built once per
// fusion call; downstream code treats it as a snapshot.
//
// The published weights are always the static policy constants, even when
// a source was absent and the computation renormalized without it.
// Consumers read them as policy, not as the effective blend.
type RiskFusionResult struct {
	UnifiedRiskScore  int            `json:"unified_risk_score"`
	Tier              RiskTier       `json:"tier"`
	Confidence        float64        `json:"confidence"`
	MLWeight          float64        `json:"ml_weight"`
	LLMWeight         float64        `json:"llm_weight"`
	ThreatIntelWeight float64        `json:"threat_intel_weight"`
	Breakdown         ScoreBreakdown `json:"breakdown"`
	TopIndicators     []string       `json:"top_indicators"`
	AttackCategory    AttackCategory `json:"attack_category"`
	Recommendation    string         `json:"recommendation"`
}

// ScanVerdict bundles everything the pipeline produced for one URL; this is
// what gets serialized into the verdict store and the result cache.
type ScanVerdict struct {
	URL      string             `json:"url"`
	ML       MLAnalysisResult   `json:"ml"`
	LLM      *LLMAnalysisResult `json:"llm,omitempty"`
	Intel    *ThreatIntelResult `json:"threat_intel,omitempty"`
	Fusion   RiskFusionResult   `json:"fusion"`
	Duration string             `json:"duration,omitempty"`
}
