package request

// SetFeedTokenRequest stores the market data feed access token. The token is
// encrypted at rest.
type SetFeedTokenRequest struct {
	Token string `json:"token"`
}
