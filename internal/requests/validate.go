package requests

import "encoding/json"

// ValidationError means the payload failed structural validation. Its
// message is safe to return to the caller verbatim.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func invalid(msg string) error { return &ValidationError{msg: msg} }

// ValidateCreateBody checks an untrusted creation payload. The body must
// be a JSON object carrying address, chainId, tokenAddress, and amount,
// all strings. Checks run in order: shape, then presence, then types, and
// the first failure wins.
func ValidateCreateBody(data []byte) (*CreateBody, error) {
	obj, err := asObject(data)
	if err != nil {
		return nil, err
	}

	keys := []string{"address", "chainId", "tokenAddress", "amount"}
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return nil, invalid("invalid body, must contain address, chainId, tokenAddress and amount")
		}
	}
	for _, k := range keys {
		if _, ok := obj[k].(string); !ok {
			return nil, invalid("invalid body, address, chainId, tokenAddress and amount must be strings")
		}
	}

	return &CreateBody{
		Address:      obj["address"].(string),
		ChainID:      obj["chainId"].(string),
		TokenAddress: obj["tokenAddress"].(string),
		Amount:       obj["amount"].(string),
	}, nil
}

// ValidatePayBody checks an untrusted claim payload: a JSON object with
// requestId and url, both strings.
func ValidatePayBody(data []byte) (*PayBody, error) {
	obj, err := asObject(data)
	if err != nil {
		return nil, err
	}

	keys := []string{"requestId", "url"}
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return nil, invalid("invalid body, must contain requestId and url")
		}
	}
	for _, k := range keys {
		if _, ok := obj[k].(string); !ok {
			return nil, invalid("invalid body, requestId and url must be strings")
		}
	}

	return &PayBody{
		RequestID: obj["requestId"].(string),
		URL:       obj["url"].(string),
	}, nil
}

func asObject(data []byte) (map[string]any, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, invalid("invalid body, must be an object")
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, invalid("invalid body, must be an object")
	}
	return obj, nil
}
