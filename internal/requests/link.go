package requests

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildLink renders the shareable payment URL for a request. The query
// carries the public token plus the chain, amount, and token address so
// a paying client can prepare the transfer without a round trip.
//
// Parameter order is part of the link format: i, c, amt, tId.
func BuildLink(baseURL, token string, request *Request) string {
	return fmt.Sprintf("%s/pay?i=%s&c=%s&amt=%s&tId=%s",
		strings.TrimSuffix(baseURL, "/"),
		token,
		url.QueryEscape(request.ChainID),
		url.QueryEscape(request.Amount),
		url.QueryEscape(request.TokenAddress),
	)
}
