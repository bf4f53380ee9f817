package coordinator

import (
	"errors"

	"github.com/JericoFX/advance-manager/internal/entities"
)

// Code classifies a failed Result
type Code string

// Result codes
const (
	CodeOK                 Code = "ok"
	CodeNotFound           Code = "not_found"
	CodeInvalidInput       Code = "invalid_input"
	CodePermissionDenied   Code = "permission_denied"
	CodeRateLimited        Code = "rate_limited"
	CodeInsufficientFunds  Code = "insufficient_funds"
	CodeAlreadyHired       Code = "already_hired"
	CodeInvalidGrade       Code = "invalid_grade"
	CodeConsistencyFailure Code = "consistency_failure"
	CodeInternal           Code = "internal"
)

// Result is what every boundary operation returns
type Result struct {
	Success   bool   `json:"success"`
	Code      Code   `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"requestId"`
}

var codeTable = []struct {
	err     error
	code    Code
	message string
}{
	{entities.ErrNotFound, CodeNotFound, "not found"},
	{entities.ErrInvalidInput, CodeInvalidInput, "invalid input"},
	{entities.ErrPermissionDenied, CodePermissionDenied, "you do not have permission to do that"},
	{entities.ErrRateLimited, CodeRateLimited, "please wait before trying again"},
	{entities.ErrInsufficientFunds, CodeInsufficientFunds, "insufficient funds"},
	{entities.ErrAlreadyHired, CodeAlreadyHired, "already hired"},
	{entities.ErrInvalidGrade, CodeInvalidGrade, "invalid grade"},
	{entities.ErrConsistencyFailure, CodeConsistencyFailure, "the transfer could not be completed, staff have been notified"},
}

// classify maps an error onto a code and a message safe to show the actor
func classify(err error) (Code, string) {
	for _, entry := range codeTable {
		if errors.Is(err, entry.err) {
			if entry.code == CodeInvalidInput || entry.code == CodeInvalidGrade {
				return entry.code, err.Error()
			}
			return entry.code, entry.message
		}
	}
	return CodeInternal, "internal error"
}
