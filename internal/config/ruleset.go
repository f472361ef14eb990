package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// Ruleset carries the constant lookup tables the extractor and scorer run
// on. The tables are configuration data, not behavior: they are built once
// at startup and passed by reference into the pure scoring functions, never
// mutated afterwards. A YAML file can replace any table wholesale for
// tuning or testing; omitted sections keep the built-in defaults.
type Ruleset struct {
	SuspiciousTLDs     []string          `yaml:"SuspiciousTLDs"`
	SuspiciousKeywords []string          `yaml:"SuspiciousKeywords"`
	KnownBrands        []string          `yaml:"KnownBrands"`
	HomoglyphMap       map[string]string `yaml:"HomoglyphMap"`
}

// DefaultRuleset returns the built-in tables.
func DefaultRuleset() *Ruleset {
	return &Ruleset{
		// TLDs with a documented outsized share of phishing registrations,
		// mostly free or near-free registries.
		SuspiciousTLDs: []string{
			"tk", "ml", "ga", "cf", "gq", "xyz", "top", "club", "work",
			"click", "link", "loan", "win", "bid", "download", "stream",
			"racing", "date", "faith", "review", "accountant", "science",
			"party", "gdn", "mom", "lol", "zip", "country", "kim", "men",
			"cricket", "webcam", "trade",
		},
		// Credential-harvest vocabulary, lure/reward words, and brand names
		// that rarely appear in a legitimate URL outside the brand's own
		// domain.
		SuspiciousKeywords: []string{
			"login", "signin", "sign-in", "verify", "verification",
			"secure", "security", "authenticate", "account", "update",
			"confirm", "password", "credential", "banking", "wallet",
			"suspend", "unlock", "alert", "invoice", "payment", "billing",
			"refund", "bonus", "prize", "winner", "reward", "giveaway",
			"gift", "urgent", "paypal", "appleid", "webscr",
		},
		// Brands most commonly impersonated in lookalike domains.
		KnownBrands: []string{
			"paypal", "google", "amazon", "apple", "microsoft", "facebook",
			"instagram", "netflix", "linkedin", "twitter", "whatsapp",
			"dropbox", "adobe", "chase", "wellsfargo", "bankofamerica",
			"citibank", "americanexpress", "visa", "mastercard", "coinbase",
			"binance", "ebay", "walmart",
		},
		// Substitute character -> canonical letter. Keys and values are
		// single characters; multi-rune keys are rejected at compile time
		// by the extractor.
		HomoglyphMap: map[string]string{
			"0": "o",
			"1": "l",
			"3": "e",
			"4": "a",
			"5": "s",
			"7": "t",
			"9": "g",
			"@": "a",
			"$": "s",
			"+": "t",
		},
	}
}

// LoadRuleset reads YAML overrides on top of the defaults. An empty path
// returns the defaults untouched.
func LoadRuleset(path string) (*Ruleset, error) {
	rs := DefaultRuleset()
	if path == "" {
		return rs, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ruleset %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, rs); err != nil {
		return nil, fmt.Errorf("parsing ruleset %s: %w", path, err)
	}
	return rs, nil
}
