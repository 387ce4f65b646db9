package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusConflict},
		{ErrCodeOrderNumberExhausted, http.StatusConflict},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestResolveDomainError(t *testing.T) {
	tests := []struct {
		domain     string
		wantCode   string
		wantStatus int
	}{
		{"NOT_FOUND", ErrCodeNotFound, http.StatusNotFound},
		{"ALREADY_EXISTS", ErrCodeAlreadyExists, http.StatusConflict},
		{"INVALID_STATE", ErrCodeInvalidState, http.StatusConflict},
		{"FORBIDDEN", ErrCodeForbidden, http.StatusForbidden},
		{"INVALID_CREDENTIALS", ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{"ACCOUNT_INACTIVE", ErrCodeAccountInactive, http.StatusUnauthorized},
		{"TOKEN_REVOKED", ErrCodeTokenRevoked, http.StatusUnauthorized},
		{"ORDER_NUMBER_EXHAUSTED", ErrCodeOrderNumberExhausted, http.StatusConflict},
		{"INTERNAL_ERROR", ErrCodeInternal, http.StatusInternalServerError},
		{"INVALID_MATERIAL", "ERR_INVALID_MATERIAL", http.StatusBadRequest},
		{"DEFAULT_PROJECT", "ERR_DEFAULT_PROJECT", http.StatusBadRequest},
		{"ERR_CONFLICT", ErrCodeConflict, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			code, status := ResolveDomainError(tt.domain)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.True(t, resp.Success)

	empty := NewSuccessResponseWithMeta([]string{}, 0, 1, 20)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}

func TestValidationEnvelope(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
		{Field: "code", Message: "This field is required"},
	})
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])
	errInfo := decoded["error"].(map[string]any)
	assert.Equal(t, ErrCodeValidation, errInfo["code"])
	assert.Equal(t, "req-1", errInfo["request_id"])
	details := decoded["errors"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "code", details[0].(map[string]any)["field"])
	assert.NotContains(t, decoded, "data")
}

func TestListRequest_ToFilter(t *testing.T) {
	f := ListRequest{}.ToFilter()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PageSize)
	assert.Equal(t, "created_at", f.OrderBy)
	assert.NotNil(t, f.Filters)

	f = ListRequest{Page: 3, PageSize: 50, OrderBy: "name", OrderDir: "asc", Search: "bolt"}.ToFilter()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 50, f.PageSize)
	assert.Equal(t, "name", f.OrderBy)
	assert.Equal(t, "asc", f.OrderDir)
	assert.Equal(t, "bolt", f.Search)
}
