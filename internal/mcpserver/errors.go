package mcpserver

import (
	"fmt"

	"github.com/timbuchinger/context-cache/internal/ctxerrors"
)

// Standard JSON-RPC error codes.
const (
	ErrCodeInvalidParams  = -32602
	ErrCodeMethodNotFound = -32601
	ErrCodeInternalError  = -32603
)

// MCPError is a JSON-RPC error with a numeric code.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts an engine error into an MCPError.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}
	switch ctxerrors.KindOf(err) {
	case ctxerrors.KindInvalidInput:
		return &MCPError{Code: ErrCodeInvalidParams, Message: err.Error()}
	case ctxerrors.KindProtocol:
		return &MCPError{Code: ErrCodeMethodNotFound, Message: err.Error()}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: err.Error()}
	}
}

// NewInvalidParamsError builds an invalid-parameters error with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}
