package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainRequest = "quadra/request/v1"
	DomainTrace   = "quadra/trace/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RequestID computes the content-addressed ID of a (rule, request) pair.
// Two requests differing only in surrounding whitespace of the formula, or
// in Unicode normalization form, share an ID.
func RequestID(rule Rule, req Request) (string, error) {
	req.Formula = strings.TrimSpace(req.Formula)
	obj := map[string]any{
		"rule":    rule,
		"request": req,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("RequestID: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainRequest, canonical), nil
}

// TraceHash computes a digest of a result: the integral plus every sample.
// Identical hashes across runs mean bit-identical output.
func TraceHash(res Result) (string, error) {
	canonical, err := MarshalCanonical(res)
	if err != nil {
		return "", fmt.Errorf("TraceHash: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainTrace, canonical), nil
}

// MustRequestID is like RequestID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustRequestID(rule Rule, req Request) string {
	id, err := RequestID(rule, req)
	if err != nil {
		panic(err)
	}
	return id
}
