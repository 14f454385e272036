package requests

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mbd888/paylink/internal/logging"
	"github.com/mbd888/paylink/internal/pagination"
	"github.com/mbd888/paylink/internal/shortid"
	"github.com/mbd888/paylink/internal/traces"
)

// Service orchestrates request registration and claim reconciliation.
type Service struct {
	store   Store
	gateway PaymentGateway
	baseURL string
	logger  *slog.Logger
}

// NewService creates a request service. baseURL is the web origin the
// shareable links point at.
func NewService(store Store, gateway PaymentGateway, baseURL string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{
		store:   store,
		gateway: gateway,
		baseURL: baseURL,
		logger:  logger,
	}
}

// CreateRequest validates a raw creation payload, persists the request
// as PENDING, and returns it together with its shareable link.
func (s *Service) CreateRequest(ctx context.Context, payload []byte) (*Request, string, error) {
	body, err := ValidateCreateBody(payload)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	request := &Request{
		ID:           uuid.NewString(),
		Address:      body.Address,
		ChainID:      body.ChainID,
		TokenAddress: body.TokenAddress,
		Amount:       body.Amount,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Create(ctx, request); err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	token, err := shortid.Encode(request.ID)
	if err != nil {
		return nil, "", fmt.Errorf("encode request id: %w", err)
	}

	reqCreated.Inc()
	s.logger.Info("payment request created",
		"request_id", request.ID,
		"chain_id", request.ChainID,
		"token_address", request.TokenAddress,
		"amount", request.Amount,
	)

	return request, BuildLink(s.baseURL, token, request), nil
}

// ClaimRequest validates a raw claim payload, matches the submitted
// payment link against the stored request, and on success settles the
// funds to the recipient and marks the request CLAIMED.
//
// The match runs chain, then token, then amount; the first mismatch
// aborts the claim before any funds move.
func (s *Service) ClaimRequest(ctx context.Context, payload []byte) (txHash string, err error) {
	start := time.Now()
	defer func() {
		reqClaims.WithLabelValues(claimOutcome(err)).Inc()
		if err == nil {
			reqSettlementLatency.Observe(time.Since(start).Seconds())
		}
	}()

	body, err := ValidatePayBody(payload)
	if err != nil {
		return "", err
	}

	id, err := shortid.Decode(body.RequestID)
	if err != nil {
		// An undecodable token can never name a stored request.
		return "", ErrNotFound
	}

	request, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if request.Status != StatusPending {
		return "", ErrAlreadyClaimed
	}

	ctx, span := traces.StartSpan(ctx, "requests.resolve_link",
		traces.RequestID(request.ID),
		traces.Chain(request.ChainID),
	)
	details, err := s.gateway.ResolveLink(ctx, body.URL)
	span.End()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if err := matchLink(request, details); err != nil {
		return "", err
	}

	ctx, span = traces.StartSpan(ctx, "requests.claim_link",
		traces.RequestID(request.ID),
		traces.Amount(request.Amount),
	)
	result, err := s.gateway.ClaimLink(ctx, body.URL, request.Address)
	span.End()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if err := s.store.MarkClaimed(ctx, request.ID); err != nil {
		// Funds already moved. Log the hash so the transition can be
		// reconciled by hand, then surface the store failure.
		s.logger.Error("settled but failed to mark claimed",
			"request_id", request.ID,
			"tx_hash", result.TxHash,
			"error", err,
		)
		return "", err
	}

	s.logger.Info("payment request claimed",
		"request_id", request.ID,
		"tx_hash", result.TxHash,
		"amount", request.Amount,
	)

	return result.TxHash, nil
}

// GetByToken returns the request identified by a public link token.
func (s *Service) GetByToken(ctx context.Context, token string) (*Request, error) {
	id, err := shortid.Decode(token)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.store.Get(ctx, id)
}

// ListRecent returns up to limit requests newest first, resuming after
// the given cursor. The returned cursor is empty on the last page.
func (s *Service) ListRecent(ctx context.Context, limit int, cursor string) ([]*Request, string, error) {
	cur, err := pagination.Decode(cursor)
	if err != nil {
		return nil, "", invalid("invalid cursor")
	}

	// Fetch one extra row to learn whether another page exists.
	items, err := s.store.List(ctx, limit+1, cur)
	if err != nil {
		return nil, "", err
	}

	page, next, _ := pagination.ComputePage(items, limit, func(r *Request) (time.Time, string) {
		return r.CreatedAt, r.ID
	})
	return page, next, nil
}

// matchLink checks the resolved link against the stored request. Amounts
// compare as exact strings; no numeric normalization.
func matchLink(request *Request, details *LinkDetails) error {
	if details.ChainID != request.ChainID {
		reqMismatches.WithLabelValues("chain").Inc()
		return &MatchError{Field: "chain", Expected: request.ChainID, Actual: details.ChainID}
	}
	if details.TokenAddress != request.TokenAddress {
		reqMismatches.WithLabelValues("token").Inc()
		return &MatchError{Field: "token", Expected: request.TokenAddress, Actual: details.TokenAddress}
	}
	if details.TokenAmount != request.Amount {
		reqMismatches.WithLabelValues("amount").Inc()
		return &MatchError{Field: "amount", Expected: request.Amount, Actual: details.TokenAmount}
	}
	return nil
}

func claimOutcome(err error) string {
	var ve *ValidationError
	var me *MatchError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &ve):
		return "invalid_body"
	case errors.As(err, &me):
		return "mismatch"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	default:
		return "store_error"
	}
}
