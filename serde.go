package contract

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// HexBytes is a byte slice that crosses the wire as a lowercase hexadecimal
// string.
type HexBytes []byte

// String returns the lowercase hexadecimal form.
func (h HexBytes) String() string { return hex.EncodeToString(h) }

// MarshalJSON encodes the bytes as a hexadecimal JSON string.
func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

// UnmarshalJSON decodes a hexadecimal JSON string.
func (h *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	out, err := decodeHex(s, -1)
	if err != nil {
		return err
	}
	*h = out
	return nil
}

// DecodeHexExact decodes a hexadecimal string that must contain exactly n
// bytes. Fingerprints and digests use it to reject truncated values early.
func DecodeHexExact(s string, n int) ([]byte, error) {
	return decodeHex(s, n)
}

func decodeHex(s string, n int) ([]byte, error) {
	if n >= 0 && len(s) != 2*n {
		return nil, fmt.Errorf("hexadecimal string has invalid length (%d, expected %d)", len(s), 2*n)
	}
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("hexadecimal string has invalid length (%d, expected a multiple of 2)", len(s))
	}
	out, err := hex.DecodeString(s)
	if err != nil {
		var inv hex.InvalidByteError
		if errors.As(err, &inv) {
			return nil, fmt.Errorf("not a hexadecimal digit: %c", rune(inv))
		}
		return nil, err
	}
	return out, nil
}

// Base64Bytes is a byte slice that crosses the wire as a standard base64
// string.
type Base64Bytes []byte

// String returns the base64 form.
func (b Base64Bytes) String() string { return base64.StdEncoding.EncodeToString(b) }

// MarshalJSON encodes the bytes as a base64 JSON string.
func (b Base64Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString(b))
}

// UnmarshalJSON decodes a base64 JSON string.
func (b *Base64Bytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	out, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid base64 string: %w", err)
	}
	*b = out
	return nil
}
