// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	// Cipher attributes
	CipherNameKey      = "cipher.name"
	CipherKeyLengthKey = "cipher.key_length"

	// Cryptanalysis attributes
	CrackClassKey      = "crack.class"
	CrackCandidatesKey = "crack.candidates"

	// Job attributes
	JobIDKey       = "job.id"
	JobStatusKey   = "job.status"
	JobDurationKey = "job.duration_ms"

	// Factorization attributes
	FactorMethodKey = "factor.method"
	FactorBitsKey   = "factor.modulus_bits"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// CipherAttributes creates cipher-related span attributes.
func CipherAttributes(name string, keyLength int) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if name != "" {
		attrs = append(attrs, attribute.String(CipherNameKey, name))
	}
	if keyLength > 0 {
		attrs = append(attrs, attribute.Int(CipherKeyLengthKey, keyLength))
	}
	return attrs
}

// CrackAttributes creates cryptanalysis-related span attributes.
func CrackAttributes(class string, candidates int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(CrackClassKey, class),
		attribute.Int(CrackCandidatesKey, candidates),
	}
}

// JobAttributes creates job-related span attributes.
func JobAttributes(jobID, status string, durationMS int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(JobIDKey, jobID),
		attribute.String(JobStatusKey, status),
		attribute.Int64(JobDurationKey, durationMS),
	}
}

// FactorAttributes creates factorization-related span attributes.
func FactorAttributes(method string, modulusBits int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(FactorMethodKey, method),
		attribute.Int(FactorBitsKey, modulusBits),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
