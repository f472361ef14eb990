package scan

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"urlvetter/internal/cache"
	"urlvetter/internal/fusion"
	"urlvetter/internal/heuristics"
	"urlvetter/internal/intel"
	"urlvetter/internal/models"
)

// Service runs the full verdict pipeline for one URL: heuristic analysis,
// decoding of whatever enrichment the upstream providers delivered, and
// fusion. The cache is consulted first so repeat scans inside the TTL
// window are free.
type Service struct {
	Scorer *heuristics.Scorer
	Engine *fusion.Engine
	Cache  *cache.Store
}

// Scan never fails on bad input: unparseable URLs degrade inside the
// extractor, and a malformed enrichment payload is logged and treated as
// an absent source rather than aborting the scan.
func (s *Service) Scan(ctx context.Context, rawURL string, semantic, threatIntel json.RawMessage) models.ScanVerdict {
	start := time.Now()

	if s.Cache != nil {
		if cached, ok, err := s.Cache.Get(ctx, rawURL); err != nil {
			log.WithError(err).WithField("url", rawURL).Warn("verdict cache unavailable")
		} else if ok {
			return cached
		}
	}

	ml := s.Scorer.Analyze(rawURL)

	llm, err := intel.ParseSemantic(semantic)
	if err != nil {
		log.WithError(err).WithField("url", rawURL).Warn("dropping malformed semantic payload")
		llm = nil
	}

	ti, err := intel.ParseThreatIntel(threatIntel)
	if err != nil {
		log.WithError(err).WithField("url", rawURL).Warn("dropping malformed threat intel payload")
		ti = nil
	}

	verdict := models.ScanVerdict{
		URL:      rawURL,
		ML:       ml,
		LLM:      llm,
		Intel:    ti,
		Fusion:   s.Engine.Fuse(&ml, llm, ti),
		Duration: time.Since(start).String(),
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, rawURL, verdict); err != nil {
			log.WithError(err).WithField("url", rawURL).Warn("failed to cache verdict")
		}
	}

	return verdict
}
