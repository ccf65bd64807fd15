package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKey is returned for unknown keys.
var ErrInvalidKey = errors.New("invalid API key")

// Validator checks API keys against a fixed set.
type Validator struct {
	keys map[[sha256.Size]byte]string
}

// NewValidator creates a validator. Each entry is either "key" or
// "name:key"; the name identifies the caller in logs.
func NewValidator(entries []string) (*Validator, error) {
	v := &Validator{keys: make(map[[sha256.Size]byte]string, len(entries))}
	for i, entry := range entries {
		name, key, ok := strings.Cut(entry, ":")
		if !ok {
			name, key = fmt.Sprintf("key-%d", i+1), entry
		}
		if key == "" {
			return nil, fmt.Errorf("API key %d is empty", i+1)
		}
		v.keys[sha256.Sum256([]byte(key))] = name
	}
	return v, nil
}

// Validate returns the name of key.
func (v *Validator) Validate(key string) (string, error) {
	name, ok := v.keys[sha256.Sum256([]byte(key))]
	if !ok {
		return "", ErrInvalidKey
	}
	return name, nil
}

// Len returns the number of configured keys.
func (v *Validator) Len() int {
	return len(v.keys)
}
