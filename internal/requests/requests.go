// Package requests implements the payment request lifecycle.
//
// Flow:
//  1. Recipient registers a request (address, chain, token, amount) → PENDING
//  2. Recipient shares the returned link, which embeds a short public token
//  3. Payer submits a pre-funded Peanut link against the request
//  4. Resolved link details must match the stored request field for field
//  5. On match: gasless claim to the recipient, then PENDING → CLAIMED
package requests

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Errors
var (
	ErrNotFound       = errors.New("requests: request not found")
	ErrAlreadyClaimed = errors.New("requests: request already claimed")
	ErrUpstream       = errors.New("requests: payment network failure")
)

// Status represents request lifecycle state.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusClaimed Status = "CLAIMED"
)

// Request is a registered expectation of incoming funds. All fields except
// Status are immutable after creation; Status changes exactly once, through
// Store.MarkClaimed.
type Request struct {
	ID           string    `json:"id"`
	Address      string    `json:"address"`      // settlement destination
	ChainID      string    `json:"chainId"`      // target network
	TokenAddress string    `json:"tokenAddress"` // token contract/asset
	Amount       string    `json:"amount"`       // exact decimal string, never parsed as float
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateBody is the validated payload for request creation.
type CreateBody struct {
	Address      string `json:"address"`
	ChainID      string `json:"chainId"`
	TokenAddress string `json:"tokenAddress"`
	Amount       string `json:"amount"`
}

// PayBody is the validated payload for a claim.
type PayBody struct {
	RequestID string `json:"requestId"` // public short token
	URL       string `json:"url"`       // payment-link reference
}

// LinkDetails is what the payment network reports for a link.
type LinkDetails struct {
	ChainID      string
	TokenAddress string
	TokenAmount  string
}

// ClaimResult is the settlement outcome.
type ClaimResult struct {
	TxHash string
}

// PaymentGateway abstracts the payment network. ResolveLink reads the
// chain/token/amount behind a link; ClaimLink moves the funds to the
// recipient and so must only run after the match check passes.
type PaymentGateway interface {
	ResolveLink(ctx context.Context, link string) (*LinkDetails, error)
	ClaimLink(ctx context.Context, link, recipient string) (*ClaimResult, error)
}

// MatchError reports the first field where the resolved link disagrees
// with the stored request. Field is "chain", "token", or "amount".
type MatchError struct {
	Field    string
	Expected string // value from the stored request
	Actual   string // value resolved from the link
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("requested %s %s does not match link %s %s", e.Field, e.Expected, e.Field, e.Actual)
}
