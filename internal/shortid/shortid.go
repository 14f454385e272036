// Package shortid converts request IDs to the compact tokens embedded in
// shareable payment links.
//
// A token is the request's UUID re-encoded in base58 using the Flickr
// alphabet (no 0/O or l/I ambiguity) at a fixed 22-character length, so
// every UUID maps to exactly one token and back.
package shortid

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	alphabet = "123456789abcdefghijkmnopqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ"
	tokenLen = 22 // ceil(128 / log2(58))
)

// ErrInvalidToken means the token is malformed or was not produced by Encode.
var ErrInvalidToken = errors.New("shortid: invalid token")

var (
	base     = big.NewInt(int64(len(alphabet)))
	maxValue = new(big.Int).Lsh(big.NewInt(1), 128)

	decodeMap [256]int8
)

func init() {
	for i := range decodeMap {
		decodeMap[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		decodeMap[alphabet[i]] = int8(i)
	}
}

// Encode converts a canonical UUID string to its public token.
func Encode(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("shortid: not a request id: %w", err)
	}

	n := new(big.Int).SetBytes(u[:])
	rem := new(big.Int)

	// Fixed-width output: leading zero bytes become leading '1' digits,
	// which keeps the mapping bijective.
	buf := make([]byte, tokenLen)
	for i := tokenLen - 1; i >= 0; i-- {
		n.DivMod(n, base, rem)
		buf[i] = alphabet[rem.Int64()]
	}
	return string(buf), nil
}

// Decode converts a public token back to the UUID string it encodes.
// Any token not produced by Encode fails with ErrInvalidToken.
func Decode(token string) (string, error) {
	if len(token) != tokenLen {
		return "", ErrInvalidToken
	}

	n := new(big.Int)
	for i := 0; i < len(token); i++ {
		d := decodeMap[token[i]]
		if d < 0 {
			return "", ErrInvalidToken
		}
		n.Mul(n, base)
		n.Add(n, big.NewInt(int64(d)))
	}

	// 58^22 exceeds 2^128, so some 22-char strings fall outside the UUID space.
	if n.Cmp(maxValue) >= 0 {
		return "", ErrInvalidToken
	}

	var u uuid.UUID
	n.FillBytes(u[:])
	return u.String(), nil
}
