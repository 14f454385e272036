package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mbd888/paylink/internal/shortid"
)

type mockGateway struct {
	details      *LinkDetails
	resolveErr   error
	claimErr     error
	resolveCalls int
	claimCalls   int
	gotLink      string
	gotRecipient string
}

func (m *mockGateway) ResolveLink(_ context.Context, link string) (*LinkDetails, error) {
	m.resolveCalls++
	m.gotLink = link
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	return m.details, nil
}

func (m *mockGateway) ClaimLink(_ context.Context, link, recipient string) (*ClaimResult, error) {
	m.claimCalls++
	m.gotLink = link
	m.gotRecipient = recipient
	if m.claimErr != nil {
		return nil, m.claimErr
	}
	return &ClaimResult{TxHash: "0xhash"}, nil
}

func newTestService(gw *mockGateway) (*Service, *MemoryStore) {
	store := NewMemoryStore()
	return NewService(store, gw, "https://pay.example.com", nil), store
}

// createPending registers a request and returns it with its public token.
func createPending(t *testing.T, svc *Service) (*Request, string) {
	t.Helper()
	payload := `{"address":"0xRecipient","chainId":"137","tokenAddress":"0xToken","amount":"1000000"}`
	request, link, err := svc.CreateRequest(context.Background(), []byte(payload))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	// The token sits between "i=" and the next parameter.
	start := strings.Index(link, "i=") + 2
	end := strings.Index(link[start:], "&")
	return request, link[start : start+end]
}

func TestCreateRequest(t *testing.T) {
	svc, store := newTestService(&mockGateway{})

	request, token := createPending(t, svc)

	if request.Status != StatusPending {
		t.Errorf("status = %s, want PENDING", request.Status)
	}

	stored, err := store.Get(context.Background(), request.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Amount != "1000000" || stored.ChainID != "137" {
		t.Errorf("unexpected stored request: %+v", stored)
	}

	// The link token must decode back to the stored ID.
	id, err := shortid.Decode(token)
	if err != nil {
		t.Fatalf("Decode(%q): %v", token, err)
	}
	if id != request.ID {
		t.Errorf("token decodes to %q, want %q", id, request.ID)
	}
}

func TestCreateRequest_LinkFormat(t *testing.T) {
	svc, _ := newTestService(&mockGateway{})

	_, link, err := svc.CreateRequest(context.Background(),
		[]byte(`{"address":"0xR","chainId":"137","tokenAddress":"0xToken","amount":"0.5"}`))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	if !strings.HasPrefix(link, "https://pay.example.com/pay?i=") {
		t.Errorf("link = %q", link)
	}
	if !strings.Contains(link, "&c=137&amt=0.5&tId=0xToken") {
		t.Errorf("link missing chain/amount/token params: %q", link)
	}
}

func TestCreateRequest_InvalidBody(t *testing.T) {
	svc, _ := newTestService(&mockGateway{})

	_, _, err := svc.CreateRequest(context.Background(), []byte(`{"address":"0xR"}`))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func payPayload(token string) []byte {
	return []byte(fmt.Sprintf(`{"requestId":%q,"url":"https://peanut.to/claim#p=abc"}`, token))
}

func TestClaimRequest_Success(t *testing.T) {
	gw := &mockGateway{details: &LinkDetails{ChainID: "137", TokenAddress: "0xToken", TokenAmount: "1000000"}}
	svc, store := newTestService(gw)
	request, token := createPending(t, svc)

	txHash, err := svc.ClaimRequest(context.Background(), payPayload(token))
	if err != nil {
		t.Fatalf("ClaimRequest: %v", err)
	}
	if txHash != "0xhash" {
		t.Errorf("txHash = %q", txHash)
	}
	if gw.gotRecipient != "0xRecipient" {
		t.Errorf("claimed to %q, want request address", gw.gotRecipient)
	}
	if gw.resolveCalls != 1 || gw.claimCalls != 1 {
		t.Errorf("gateway calls = %d resolve, %d claim", gw.resolveCalls, gw.claimCalls)
	}

	stored, _ := store.Get(context.Background(), request.ID)
	if stored.Status != StatusClaimed {
		t.Errorf("status = %s, want CLAIMED", stored.Status)
	}
}

func TestClaimRequest_Mismatch(t *testing.T) {
	tests := []struct {
		name    string
		details LinkDetails
		field   string
	}{
		{
			name:    "chain checked first",
			details: LinkDetails{ChainID: "1", TokenAddress: "0xOther", TokenAmount: "5"},
			field:   "chain",
		},
		{
			name:    "token",
			details: LinkDetails{ChainID: "137", TokenAddress: "0xOther", TokenAmount: "1000000"},
			field:   "token",
		},
		{
			name:    "amount",
			details: LinkDetails{ChainID: "137", TokenAddress: "0xToken", TokenAmount: "999999"},
			field:   "amount",
		},
		{
			// "1000000.0" is numerically equal but textually different.
			name:    "amount compares as exact string",
			details: LinkDetails{ChainID: "137", TokenAddress: "0xToken", TokenAmount: "1000000.0"},
			field:   "amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &mockGateway{details: &tt.details}
			svc, store := newTestService(gw)
			request, token := createPending(t, svc)

			_, err := svc.ClaimRequest(context.Background(), payPayload(token))
			var me *MatchError
			if !errors.As(err, &me) {
				t.Fatalf("expected MatchError, got %v", err)
			}
			if me.Field != tt.field {
				t.Errorf("field = %q, want %q", me.Field, tt.field)
			}
			if gw.claimCalls != 0 {
				t.Error("funds moved despite mismatch")
			}

			stored, _ := store.Get(context.Background(), request.ID)
			if stored.Status != StatusPending {
				t.Errorf("status = %s, want PENDING", stored.Status)
			}
		})
	}
}

func TestClaimRequest_UnknownToken(t *testing.T) {
	gw := &mockGateway{}
	svc, _ := newTestService(gw)

	// Well-formed token that names no stored request.
	token, _ := shortid.Encode("6f21b155-21f9-4ffa-a5e7-3c16e2f1e34f")
	_, err := svc.ClaimRequest(context.Background(), payPayload(token))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if gw.resolveCalls != 0 {
		t.Error("gateway called for unknown request")
	}
}

func TestClaimRequest_MalformedToken(t *testing.T) {
	svc, _ := newTestService(&mockGateway{})

	_, err := svc.ClaimRequest(context.Background(), payPayload("not-a-token"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClaimRequest_AlreadyClaimed(t *testing.T) {
	gw := &mockGateway{details: &LinkDetails{ChainID: "137", TokenAddress: "0xToken", TokenAmount: "1000000"}}
	svc, _ := newTestService(gw)
	_, token := createPending(t, svc)

	if _, err := svc.ClaimRequest(context.Background(), payPayload(token)); err != nil {
		t.Fatalf("first claim: %v", err)
	}

	_, err := svc.ClaimRequest(context.Background(), payPayload(token))
	if !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
	if gw.claimCalls != 1 {
		t.Errorf("claim calls = %d, want 1", gw.claimCalls)
	}
}

func TestClaimRequest_ResolveFailure(t *testing.T) {
	gw := &mockGateway{resolveErr: errors.New("peanut: gateway request failed")}
	svc, store := newTestService(gw)
	request, token := createPending(t, svc)

	_, err := svc.ClaimRequest(context.Background(), payPayload(token))
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}

	stored, _ := store.Get(context.Background(), request.ID)
	if stored.Status != StatusPending {
		t.Errorf("status = %s, want PENDING", stored.Status)
	}
}

func TestClaimRequest_ClaimFailure(t *testing.T) {
	gw := &mockGateway{
		details:  &LinkDetails{ChainID: "137", TokenAddress: "0xToken", TokenAmount: "1000000"},
		claimErr: errors.New("peanut: gateway request failed"),
	}
	svc, store := newTestService(gw)
	request, token := createPending(t, svc)

	_, err := svc.ClaimRequest(context.Background(), payPayload(token))
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}

	// Status stays PENDING so the claim can be retried.
	stored, _ := store.Get(context.Background(), request.ID)
	if stored.Status != StatusPending {
		t.Errorf("status = %s, want PENDING", stored.Status)
	}
}

func TestGetByToken(t *testing.T) {
	svc, _ := newTestService(&mockGateway{})
	request, token := createPending(t, svc)

	got, err := svc.GetByToken(context.Background(), token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got.ID != request.ID {
		t.Errorf("got %q, want %q", got.ID, request.ID)
	}

	if _, err := svc.GetByToken(context.Background(), "garbage"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
