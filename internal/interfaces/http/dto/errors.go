package dto

import (
	"net/http"

	"github.com/lagerhub/backend/internal/domain/shared"
)

// Error code constants
// Format: ERR_<CATEGORY>_<DESCRIPTION>

const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeStorage is used when a collection file operation fails
	ErrCodeStorage = "ERR_STORAGE_IO"
	// ErrCodeSyncSideEffect is used when the primary write succeeded but a
	// cross-store side effect failed
	ErrCodeSyncSideEffect = "ERR_SYNC_SIDE_EFFECT"
	// ErrCodeScrapeFailed is used when an external marketplace scrape fails
	ErrCodeScrapeFailed = "ERR_SCRAPE_FAILED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:        http.StatusInternalServerError,
	ErrCodeInternal:       http.StatusInternalServerError,
	ErrCodeBadRequest:     http.StatusBadRequest,
	ErrCodeInvalidInput:   http.StatusBadRequest,
	ErrCodeInvalidJSON:    http.StatusBadRequest,
	ErrCodeNotFound:       http.StatusNotFound,
	ErrCodeAlreadyExists:  http.StatusConflict,
	ErrCodeInvalidState:   http.StatusConflict,
	ErrCodeStorage:        http.StatusInternalServerError,
	ErrCodeSyncSideEffect: http.StatusInternalServerError,
	ErrCodeScrapeFailed:   http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status for an error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodes maps domain error codes onto API error codes
var domainErrorCodes = map[string]string{
	shared.ErrNotFound.Code:       ErrCodeNotFound,
	shared.ErrAlreadyExists.Code:  ErrCodeAlreadyExists,
	shared.ErrInvalidInput.Code:   ErrCodeInvalidInput,
	shared.ErrInvalidState.Code:   ErrCodeInvalidState,
	shared.ErrStorage.Code:        ErrCodeStorage,
	shared.ErrSyncSideEffect.Code: ErrCodeSyncSideEffect,
}

// CodeForDomainError translates a domain error code
func CodeForDomainError(code string) string {
	if mapped, ok := domainErrorCodes[code]; ok {
		return mapped
	}
	return ErrCodeInternal
}
