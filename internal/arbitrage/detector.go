package arbitrage

import (
	"log/slog"
	"math"
	"sort"

	"github.com/perpx/arbot/internal/domain"
)

const (
	defaultSpreadTagThreshold  = 0.5
	defaultFundingTagThreshold = 0.001
)

// DetectorConfig configures opportunity classification.
type DetectorConfig struct {
	// Symbols is the tracked symbol set, in tracking order. Tracking order
	// breaks ties when opportunities share the same absolute spread.
	Symbols []string

	// SpreadTagThreshold is the |spread_pct| above which an opportunity is
	// tagged as a price divergence. Defaults to 0.5.
	SpreadTagThreshold float64

	// FundingTagThreshold is the |funding_diff| above which an opportunity
	// is tagged as a funding divergence. Defaults to 0.001.
	FundingTagThreshold float64
}

// Detector computes per-symbol spread and funding divergence metrics from the
// two venues' latest quotes. It emits exactly one Opportunity per tracked
// symbol per cycle regardless of data availability, so the mapping from
// tracked symbols to opportunity records is total and stable.
type Detector struct {
	cfg    DetectorConfig
	logger *slog.Logger
}

// NewDetector creates a Detector for the configured symbol set.
func NewDetector(cfg DetectorConfig, logger *slog.Logger) *Detector {
	if cfg.SpreadTagThreshold <= 0 {
		cfg.SpreadTagThreshold = defaultSpreadTagThreshold
	}
	if cfg.FundingTagThreshold <= 0 {
		cfg.FundingTagThreshold = defaultFundingTagThreshold
	}
	return &Detector{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "detector")),
	}
}

// Detect builds the cycle's opportunity set from the two venues' quotes,
// ordered by descending absolute spread (stable; ties keep tracking order).
// Symbols missing on either venue yield a neutral record tagged
// domain.TagUnavailable rather than being dropped.
func (d *Detector) Detect(quotesA, quotesB map[string]domain.VenueQuote) []domain.Opportunity {
	opps := make([]domain.Opportunity, 0, len(d.cfg.Symbols))
	for _, sym := range d.cfg.Symbols {
		qa, okA := quotesA[sym]
		qb, okB := quotesB[sym]
		if !okA || !okB {
			opp := domain.Opportunity{Symbol: sym, Tags: []string{domain.TagUnavailable}}
			if okA {
				opp.VenueAPrice, opp.VenueAFunding = qa.Price, qa.FundingRate
			}
			if okB {
				opp.VenueBPrice, opp.VenueBFunding = qb.Price, qb.FundingRate
			}
			opps = append(opps, opp)
			continue
		}
		opps = append(opps, d.classify(sym, qa, qb))
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return math.Abs(opps[i].SpreadPct) > math.Abs(opps[j].SpreadPct)
	})
	return opps
}

func (d *Detector) classify(sym string, qa, qb domain.VenueQuote) domain.Opportunity {
	opp := domain.Opportunity{
		Symbol:        sym,
		VenueAPrice:   qa.Price,
		VenueBPrice:   qb.Price,
		VenueAFunding: qa.FundingRate,
		VenueBFunding: qb.FundingRate,
		FundingDiff:   qa.FundingRate - qb.FundingRate,
	}

	// A non-positive reference price makes the spread undefined; report a
	// neutral zero spread instead of surfacing the division to callers.
	if qa.Price <= 0 {
		opp.Tags = []string{domain.TagUnavailable}
		d.logger.Warn("non-positive reference price", slog.String("symbol", sym), slog.Float64("price_a", qa.Price))
		return opp
	}

	opp.SpreadPct = (qb.Price - qa.Price) / qa.Price * 100

	if math.Abs(opp.SpreadPct) > d.cfg.SpreadTagThreshold {
		opp.Tags = append(opp.Tags, domain.TagPriceDivergence)
	}
	if math.Abs(opp.FundingDiff) > d.cfg.FundingTagThreshold {
		opp.Tags = append(opp.Tags, domain.TagFundingDivergence)
	}
	return opp
}
