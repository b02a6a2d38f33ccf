package hyperliquid

// The /info endpoint serves numeric fields as JSON strings; parsing happens
// at the client boundary so the rest of the system only sees floats.

// metaUniverseEntry is one listed asset in the exchange metadata.
type metaUniverseEntry struct {
	Name string `json:"name"`
}

// meta is the first element of the metaAndAssetCtxs response pair.
type meta struct {
	Universe []metaUniverseEntry `json:"universe"`
}

// assetCtx is the per-asset market context, index-aligned with the universe.
type assetCtx struct {
	MidPx   string `json:"midPx"`
	Funding string `json:"funding"`
	MarkPx  string `json:"markPx"`
}

// bookLevel is one level of the l2Book response.
type bookLevel struct {
	Px string `json:"px"`
	Sz string `json:"sz"`
	N  int    `json:"n"`
}

// l2BookResponse is the l2Book payload: levels[0] bids, levels[1] asks.
type l2BookResponse struct {
	Coin   string        `json:"coin"`
	Time   int64         `json:"time"`
	Levels [][]bookLevel `json:"levels"`
}

// candle is one entry of the candleSnapshot response.
type candle struct {
	OpenTime int64  `json:"t"`
	Close    string `json:"c"`
}

// candleSnapshotReq is the request body for candleSnapshot.
type candleSnapshotReq struct {
	Coin      string `json:"coin"`
	Interval  string `json:"interval"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
}
