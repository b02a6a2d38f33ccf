package domain

// Classification tags attached to an Opportunity by the detector.
const (
	TagUnavailable       = "unavailable"
	TagPriceDivergence   = "price-divergence"
	TagFundingDivergence = "funding-divergence"
)

// Opportunity is the per-symbol, per-cycle divergence record produced by the
// detector. One Opportunity is emitted for every tracked symbol every cycle,
// even when one or both venues are missing data (prices zeroed, tagged
// TagUnavailable), so downstream consumers always see the full symbol set.
type Opportunity struct {
	Symbol        string
	SpreadPct     float64
	FundingDiff   float64
	VenueAPrice   float64
	VenueBPrice   float64
	VenueAFunding float64
	VenueBFunding float64
	Tags          []string
}

// HasTag reports whether the opportunity carries the given classification tag.
func (o Opportunity) HasTag(tag string) bool {
	for _, t := range o.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Available reports whether both venues quoted the symbol this cycle.
func (o Opportunity) Available() bool {
	return !o.HasTag(TagUnavailable)
}
