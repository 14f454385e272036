package requests

import (
	"errors"
	"testing"
)

func TestValidateCreateBody(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{
			name:    "valid",
			payload: `{"address":"0xRecipient","chainId":"137","tokenAddress":"0xToken","amount":"1000000"}`,
		},
		{
			name:    "valid with extra keys",
			payload: `{"address":"0xR","chainId":"1","tokenAddress":"0xT","amount":"5","note":"ignored"}`,
		},
		{
			name:    "not json",
			payload: `not json at all`,
			wantErr: "invalid body, must be an object",
		},
		{
			name:    "array",
			payload: `["address","chainId"]`,
			wantErr: "invalid body, must be an object",
		},
		{
			name:    "scalar",
			payload: `42`,
			wantErr: "invalid body, must be an object",
		},
		{
			name:    "null",
			payload: `null`,
			wantErr: "invalid body, must be an object",
		},
		{
			name:    "missing amount",
			payload: `{"address":"0xR","chainId":"1","tokenAddress":"0xT"}`,
			wantErr: "invalid body, must contain address, chainId, tokenAddress and amount",
		},
		{
			name:    "empty object",
			payload: `{}`,
			wantErr: "invalid body, must contain address, chainId, tokenAddress and amount",
		},
		{
			name:    "numeric amount",
			payload: `{"address":"0xR","chainId":"1","tokenAddress":"0xT","amount":100}`,
			wantErr: "invalid body, address, chainId, tokenAddress and amount must be strings",
		},
		{
			name:    "null field",
			payload: `{"address":null,"chainId":"1","tokenAddress":"0xT","amount":"5"}`,
			wantErr: "invalid body, address, chainId, tokenAddress and amount must be strings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := ValidateCreateBody([]byte(tt.payload))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateCreateBody: %v", err)
				}
				if body.Address == "" || body.ChainID == "" || body.TokenAddress == "" || body.Amount == "" {
					t.Errorf("ValidateCreateBody returned incomplete body: %+v", body)
				}
				return
			}

			if err == nil {
				t.Fatalf("expected error %q, got nil", tt.wantErr)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if err.Error() != tt.wantErr {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidatePayBody(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{
			name:    "valid",
			payload: `{"requestId":"abc123","url":"https://peanut.to/claim#p=xyz"}`,
		},
		{
			name:    "not an object",
			payload: `"pay me"`,
			wantErr: "invalid body, must be an object",
		},
		{
			name:    "missing url",
			payload: `{"requestId":"abc123"}`,
			wantErr: "invalid body, must contain requestId and url",
		},
		{
			name:    "non-string url",
			payload: `{"requestId":"abc123","url":true}`,
			wantErr: "invalid body, requestId and url must be strings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := ValidatePayBody([]byte(tt.payload))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidatePayBody: %v", err)
				}
				if body.RequestID == "" || body.URL == "" {
					t.Errorf("ValidatePayBody returned incomplete body: %+v", body)
				}
				return
			}

			if err == nil {
				t.Fatalf("expected error %q, got nil", tt.wantErr)
			}
			if err.Error() != tt.wantErr {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}
