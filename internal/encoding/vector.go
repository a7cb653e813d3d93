// Package encoding provides the little-endian vector byte encoding and JSON
// metadata encoding shared by the SQLite-backed stores. Adapted from the
// teacher's internal/encoding/utils.go.
package encoding

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidVector is returned when a vector is nil, empty, or contains
// NaN/Inf values.
var ErrInvalidVector = errors.New("invalid vector")

// EncodeVector serializes a float32 vector to bytes: a little-endian int32
// length prefix followed by the little-endian float32 values.
func EncodeVector(vector []float32) ([]byte, error) {
	if vector == nil {
		return nil, ErrInvalidVector
	}

	buf := new(bytes.Buffer)
	n := len(vector)
	if n > math.MaxInt32 {
		return nil, fmt.Errorf("vector too large: %d elements exceeds maximum", n)
	}
	if err := binary.Write(buf, binary.LittleEndian, int32(n)); err != nil {
		return nil, fmt.Errorf("encode vector length: %w", err)
	}
	for _, v := range vector {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("encode vector value: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeVector reverses EncodeVector.
func DecodeVector(data []byte) ([]float32, error) {
	if len(data) < 4 {
		return nil, ErrInvalidVector
	}
	buf := bytes.NewReader(data)

	var length int32
	if err := binary.Read(buf, binary.LittleEndian, &length); err != nil {
		return nil, fmt.Errorf("decode vector length: %w", err)
	}
	if length < 0 {
		return nil, ErrInvalidVector
	}
	if length == 0 {
		return []float32{}, nil
	}

	expected := int(length) * 4
	if buf.Len() < expected {
		return nil, ErrInvalidVector
	}

	vec := make([]float32, length)
	for i := int32(0); i < length; i++ {
		if err := binary.Read(buf, binary.LittleEndian, &vec[i]); err != nil {
			return nil, fmt.Errorf("decode vector value at index %d: %w", i, err)
		}
	}
	return vec, nil
}

// EncodeStrings serializes a string slice (e.g. tags) to a JSON array.
func EncodeStrings(values []string) (string, error) {
	if values == nil {
		return "[]", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode strings: %w", err)
	}
	return string(data), nil
}

// DecodeStrings reverses EncodeStrings.
func DecodeStrings(jsonStr string) ([]string, error) {
	if jsonStr == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(jsonStr), &values); err != nil {
		return nil, fmt.Errorf("decode strings: %w", err)
	}
	return values, nil
}

// ValidateVector reports whether vector is non-empty and free of NaN/Inf.
func ValidateVector(vector []float32) error {
	if len(vector) == 0 {
		return ErrInvalidVector
	}
	for _, v := range vector {
		f := float64(v)
		if f != f || math.IsInf(f, 0) {
			return ErrInvalidVector
		}
	}
	return nil
}
