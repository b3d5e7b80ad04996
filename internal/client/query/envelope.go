package query

// Filter is one comparison; filters at the top level are AND-combined.
type Filter struct {
	Column   string `json:"column"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// OrGroup is a set of filters OR-combined internally; groups combine with
// everything else by AND.
type OrGroup struct {
	Operator string   `json:"operator"` // always "or"
	Filters  []Filter `json:"filters"`
}

// Order is one sort key; keys apply in call order (stable multi-key sort).
type Order struct {
	Column    string `json:"column"`
	Direction string `json:"direction"` // "asc" or "desc"
}

// Range is the pagination window of the request.
type Range struct {
	Limit  *int `json:"limit,omitempty"`
	Offset *int `json:"offset,omitempty"`
}

// Envelope is the wire shape POSTed to the generic query endpoint: a
// direct serialization of the accumulated builder state.
type Envelope struct {
	Action    string    `json:"action"`
	Table     string    `json:"table"`
	Columns   []string  `json:"columns"`
	Filters   []Filter  `json:"filters,omitempty"`
	Groups    []OrGroup `json:"groups,omitempty"`
	Order     []Order   `json:"order,omitempty"`
	Values    any       `json:"values,omitempty"`
	Returning []string  `json:"returning,omitempty"`
	Count     string    `json:"count,omitempty"`
	Range     *Range    `json:"range,omitempty"`
}
