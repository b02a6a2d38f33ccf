package paradex

import "encoding/json"

// marketSummary is one entry of GET /markets/summary. Numeric fields arrive
// as strings.
type marketSummary struct {
	Symbol             string `json:"symbol"`
	Bid                string `json:"bid"`
	Ask                string `json:"ask"`
	MarkPrice          string `json:"mark_price"`
	LastTradedPrice    string `json:"last_traded_price"`
	CurrentFundingRate string `json:"current_funding_rate"`
	FundingRate        string `json:"funding_rate"`
}

// summaryResponse wraps the summary results array.
type summaryResponse struct {
	Results []marketSummary `json:"results"`
}

// orderbookResponse is GET /orderbook/{market}: levels as [price, size]
// string pairs, bids descending, asks ascending.
type orderbookResponse struct {
	Market         string      `json:"market"`
	Bids           [][2]string `json:"bids"`
	Asks           [][2]string `json:"asks"`
	LastUpdatedAt  int64       `json:"last_updated_at"`
	SequenceNumber int64       `json:"seq_no"`
}

// klinesResponse is GET /markets/klines: rows of
// [open_time_ms, open, high, low, close, volume] as JSON numbers.
type klinesResponse struct {
	Results [][]json.Number `json:"results"`
}
