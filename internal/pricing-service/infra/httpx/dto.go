package httpx

import "encoding/json"

// QuoteResponse mirrors domain.FareQuote. Amounts are JSON numbers with two
// fractional digits.
type QuoteResponse struct {
	BaseFare     json.Number `json:"baseFare"`
	Tax          json.Number `json:"tax"`
	BagFees      json.Number `json:"bagFees"`
	TotalFare    json.Number `json:"totalFare"`
	Currency     string      `json:"currency"`
	RulesVersion string      `json:"rulesVersion"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
