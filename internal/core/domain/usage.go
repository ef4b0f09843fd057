package domain

// UsageCode is an opaque cultural or linguistic tag, e.g. "gmc-myth" or "pol".
type UsageCode string

// UsageRecord is one usage of a first name as returned by a provider lookup.
type UsageRecord struct {
	Code        UsageCode `json:"usage_code"`
	Gender      Gender    `json:"usage_gender"`
	Description string    `json:"usage_full"`
}

// RandomQuery holds the arguments of a random name request.
type RandomQuery struct {
	Gender Gender
	Usage  UsageCode // empty = no usage filter
	Count  int       // 0 = provider default

	// ExactUsage asks for a trailing surname drawn from Usage itself.
	ExactUsage bool
}
