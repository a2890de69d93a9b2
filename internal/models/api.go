// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package models

// Error codes returned in APIError.Code.
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeDataUnavailable    = "DATA_UNAVAILABLE"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// ErrorResponse is the body of every error response except the item 404,
// which is an empty object.
//
//	{"error":{"code":"DATA_UNAVAILABLE","message":"...","request_id":"..."}}
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// APIError describes a failed request.
type APIError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status    string `json:"status"`
	DataPath  string `json:"data_path,omitempty"`
	Items     int    `json:"items,omitempty"`
	StatsWarm bool   `json:"stats_warm"`
	Error     string `json:"error,omitempty"`
}
