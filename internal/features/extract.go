package features

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"urlvetter/internal/config"
	"urlvetter/internal/models"
)

var ipv4Pattern = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)

// Extractor decomposes a URL-like string into a fixed feature record.
// It is a pure function over its (immutable) tables: no I/O, no state,
// safe for any number of concurrent callers.
type Extractor struct {
	tldSet     map[string]struct{}
	keywords   []string
	brands     []string
	homoglyphs map[rune]rune
}

func NewExtractor(rs *config.Ruleset) *Extractor {
	e := &Extractor{
		tldSet:     make(map[string]struct{}, len(rs.SuspiciousTLDs)),
		keywords:   rs.SuspiciousKeywords,
		brands:     rs.KnownBrands,
		homoglyphs: make(map[rune]rune, len(rs.HomoglyphMap)),
	}
	for _, tld := range rs.SuspiciousTLDs {
		e.tldSet[strings.ToLower(tld)] = struct{}{}
	}
	for sub, canon := range rs.HomoglyphMap {
		subRunes := []rune(sub)
		canonRunes := []rune(canon)
		if len(subRunes) != 1 || len(canonRunes) != 1 {
			continue
		}
		e.homoglyphs[subRunes[0]] = canonRunes[0]
	}
	return e
}

// Extract never fails. Input that cannot be parsed as a URL (after
// prefixing "http://" when no scheme is present) yields a fallback record:
// only the lexical fields are filled, every structural flag stays inert,
// and Domain carries the raw input so the scorer always has something to
// report against.
func (e *Extractor) Extract(raw string) models.URLFeatures {
	lower := strings.ToLower(raw)

	f := models.URLFeatures{
		Length:     len(raw),
		Entropy:    ShannonEntropy(raw),
		DotCount:   strings.Count(raw, "."),
		DashCount:  strings.Count(raw, "-"),
		UnderCount: strings.Count(raw, "_"),
		AtCount:    strings.Count(raw, "@"),
		SlashCount: strings.Count(raw, "/"),
		Domain:     raw,
	}
	f.DigitRatio, f.SpecialCharRatio = charRatios(raw)
	f.HasEncodedChars = countEncodedTriplets(raw) > 3
	f.HasDataURI = strings.HasPrefix(lower, "data:")

	target := raw
	if !strings.Contains(raw, "://") && !f.HasDataURI {
		target = "http://" + raw
	}
	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		return f
	}

	host := strings.ToLower(u.Hostname())

	f.HasHTTPS = u.Scheme == "https"
	f.HasIPAddress = isIPLiteral(host)
	f.HasFragment = u.Fragment != ""
	f.Port = u.Port()
	f.HasPortInURL = f.Port != ""
	f.QueryParamCount = countQueryParams(u.RawQuery)
	f.PathDepth = countPathSegments(u.Path)

	// Host decomposition: TLD is the last dot-separated label, the
	// registrable domain the last two labels, the subdomain everything
	// before that. IP literals carry no labels to decompose.
	labels := strings.Split(host, ".")
	if f.HasIPAddress {
		f.Domain = host
	} else if len(labels) >= 2 {
		f.TLD = labels[len(labels)-1]
		f.Domain = strings.Join(labels[len(labels)-2:], ".")
		if len(labels) > 2 {
			f.Subdomain = strings.Join(labels[:len(labels)-2], ".")
			f.SubdomainDepth = len(labels) - 2
		}
	} else {
		f.Domain = host
	}

	if _, ok := e.tldSet[f.TLD]; ok {
		f.HasSuspiciousTLD = true
	}

	f.MatchedKeywords = e.keywordHits(lower)
	f.HasSuspiciousKeywords = len(f.MatchedKeywords) > 0

	site := strings.Split(f.Domain, ".")[0]
	f.LongestWordLength = longestAlphaRun(site)

	normalized := e.normalizeHomoglyphs(site)
	sim, brand := e.bestBrandMatch(normalized)
	f.BrandSimilarityScore = sim
	f.MatchedBrand = brand

	// A high brand similarity only counts as a homoglyph hit when the
	// substitution table actually changed the label; a verbatim lookalike
	// is scored through the brand-similarity branch instead.
	if normalized != site && sim > 0.8 {
		f.HomoglyphScore = sim
	}

	return f
}

func (e *Extractor) keywordHits(lowerURL string) []string {
	var hits []string
	for _, kw := range e.keywords {
		if strings.Contains(lowerURL, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}

// normalizeHomoglyphs lower-cases the label and replaces every occurrence
// of each substitute character with its canonical letter.
func (e *Extractor) normalizeHomoglyphs(label string) string {
	return strings.Map(func(r rune) rune {
		if canon, ok := e.homoglyphs[r]; ok {
			return canon
		}
		return r
	}, strings.ToLower(label))
}

// bestBrandMatch compares the normalized label, and each of its
// separator-split tokens, against every known brand. Matching tokens as
// well as the whole label is what catches compound lookalikes such as
// "paypal-secure" where the full-label edit distance to "paypal" is large.
func (e *Extractor) bestBrandMatch(normalized string) (float64, string) {
	candidates := []string{normalized}
	for _, tok := range splitTokens(normalized) {
		if tok != normalized {
			candidates = append(candidates, tok)
		}
	}

	best := 0.0
	matched := ""
	for _, brand := range e.brands {
		for _, cand := range candidates {
			if sim := similarity(cand, brand); sim > best {
				best = sim
				matched = brand
			}
		}
	}
	return best, matched
}

func isIPLiteral(host string) bool {
	if ipv4Pattern.MatchString(host) {
		return true
	}
	// IPv6 literals reach here without brackets (url.Hostname strips them).
	return strings.Contains(host, ":") && net.ParseIP(host) != nil
}

func countQueryParams(rawQuery string) int {
	if rawQuery == "" {
		return 0
	}
	n := 0
	for _, part := range strings.Split(rawQuery, "&") {
		if part != "" {
			n++
		}
	}
	return n
}

func countPathSegments(path string) int {
	n := 0
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			n++
		}
	}
	return n
}
