// Package messages defines the payloads streamed to websocket clients.
package messages

// Series carries new points for one subscribed series. Pos is the index of
// the series in the subscription request; Timestamps are unix milliseconds,
// parallel to Values.
type Series struct {
	Pos        int       `json:"pos"`
	Timestamps []int64   `json:"timestamps"`
	Values     []float64 `json:"values"`
}

type Data struct {
	Series []Series `json:"series,omitempty"`
	Error  string   `json:"error,omitempty"`
	Now    uint64   `json:"now,omitempty"`
}
