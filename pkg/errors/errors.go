// Package errors provides structured error handling for Payflow.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes for the CLI surface.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input
	ExitDeclined   = 3 // User declined a signing prompt
	ExitNotFound   = 4 // Resource not found
	ExitPermission = 5 // Permission denied or insufficient funds
)

// PayflowError is the structured error type for Payflow.
type PayflowError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *PayflowError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *PayflowError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for PayflowError.
func (e *PayflowError) Is(target error) bool {
	var t *PayflowError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &PayflowError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &PayflowError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	// Validation errors (local, synchronous — never reach the network).
	ErrAmountRequired = &PayflowError{
		Code:     "AMOUNT_REQUIRED",
		Message:  "amount is required",
		ExitCode: ExitInput,
	}

	ErrInvalidAmount = &PayflowError{
		Code:     "INVALID_AMOUNT",
		Message:  "invalid amount",
		ExitCode: ExitInput,
	}

	ErrInvalidAddress = &PayflowError{
		Code:     "INVALID_ADDRESS",
		Message:  "invalid address format",
		ExitCode: ExitInput,
	}

	ErrRecipientUnresolved = &PayflowError{
		Code:     "RECIPIENT_UNRESOLVED",
		Message:  "recipient has not been resolved to a destination address",
		ExitCode: ExitInput,
	}

	ErrInsufficientFunds = &PayflowError{
		Code:     "INSUFFICIENT_FUNDS",
		Message:  "insufficient funds for transfer",
		ExitCode: ExitPermission,
	}

	ErrNoCompatibleWallet = &PayflowError{
		Code:     "NO_COMPATIBLE_WALLET",
		Message:  "no compatible wallet for recipient",
		ExitCode: ExitInput,
	}

	ErrNetworkMismatch = &PayflowError{
		Code:     "NETWORK_MISMATCH",
		Message:  "connected network differs from the selected wallet network",
		ExitCode: ExitInput,
	}

	ErrAttemptInFlight = &PayflowError{
		Code:     "ATTEMPT_IN_FLIGHT",
		Message:  "a transfer attempt is already in progress",
		ExitCode: ExitInput,
	}

	// Signing errors.
	ErrSignatureDeclined = &PayflowError{
		Code:     "SIGNATURE_DECLINED",
		Message:  "signing request declined by user",
		ExitCode: ExitDeclined,
	}

	ErrSignerUnavailable = &PayflowError{
		Code:     "SIGNER_UNAVAILABLE",
		Message:  "connected signer is unavailable",
		ExitCode: ExitGeneral,
	}

	// Relay and chain errors.
	ErrRelayRejected = &PayflowError{
		Code:     "RELAY_REJECTED",
		Message:  "relay service rejected the transfer",
		ExitCode: ExitGeneral,
	}

	ErrTransactionReverted = &PayflowError{
		Code:     "TRANSACTION_REVERTED",
		Message:  "transaction reverted on-chain",
		ExitCode: ExitGeneral,
	}

	ErrRPCUnavailable = &PayflowError{
		Code:     "RPC_UNAVAILABLE",
		Message:  "chain RPC endpoint is unreachable",
		ExitCode: ExitGeneral,
	}

	ErrQuoteUnavailable = &PayflowError{
		Code:     "QUOTE_UNAVAILABLE",
		Message:  "fee quote service is unreachable",
		ExitCode: ExitGeneral,
	}

	// Persistence warnings (non-fatal).
	ErrPersistence = &PayflowError{
		Code:     "PERSISTENCE_FAILED",
		Message:  "failed to persist state to the profile backend",
		ExitCode: ExitGeneral,
	}

	// Lookup errors.
	ErrProfileNotFound = &PayflowError{
		Code:     "PROFILE_NOT_FOUND",
		Message:  "profile not found",
		ExitCode: ExitNotFound,
	}

	ErrFlowNotFound = &PayflowError{
		Code:     "FLOW_NOT_FOUND",
		Message:  "flow not found",
		ExitCode: ExitNotFound,
	}

	ErrWalletNotFound = &PayflowError{
		Code:     "WALLET_NOT_FOUND",
		Message:  "wallet not found for network",
		ExitCode: ExitNotFound,
	}

	ErrTransactionNotFound = &PayflowError{
		Code:     "TRANSACTION_NOT_FOUND",
		Message:  "transaction not found",
		ExitCode: ExitNotFound,
	}

	// Config errors.
	ErrConfigNotFound = &PayflowError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &PayflowError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	ErrUnsupportedNetwork = &PayflowError{
		Code:     "UNSUPPORTED_NETWORK",
		Message:  "unsupported network",
		ExitCode: ExitInput,
	}
)

// New creates a new PayflowError with the given code and message.
func New(code, message string) *PayflowError {
	return &PayflowError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var pe *PayflowError
	if errors.As(err, &pe) {
		return &PayflowError{
			Code:       pe.Code,
			Message:    fmt.Sprintf("%s: %s", msg, pe.Message),
			Details:    pe.Details,
			Suggestion: pe.Suggestion,
			Cause:      err,
			ExitCode:   pe.ExitCode,
		}
	}

	return &PayflowError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var pe *PayflowError
	if errors.As(err, &pe) {
		return &PayflowError{
			Code:       pe.Code,
			Message:    pe.Message,
			Details:    details,
			Suggestion: pe.Suggestion,
			Cause:      pe.Cause,
			ExitCode:   pe.ExitCode,
		}
	}

	return &PayflowError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var pe *PayflowError
	if errors.As(err, &pe) {
		return &PayflowError{
			Code:       pe.Code,
			Message:    pe.Message,
			Details:    pe.Details,
			Suggestion: suggestion,
			Cause:      pe.Cause,
			ExitCode:   pe.ExitCode,
		}
	}

	return &PayflowError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// WithCause attaches an underlying cause to a sentinel error.
func WithCause(err, cause error) error {
	if err == nil {
		return nil
	}

	var pe *PayflowError
	if errors.As(err, &pe) {
		return &PayflowError{
			Code:       pe.Code,
			Message:    pe.Message,
			Details:    pe.Details,
			Suggestion: pe.Suggestion,
			Cause:      cause,
			ExitCode:   pe.ExitCode,
		}
	}

	return &PayflowError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Cause:    cause,
		ExitCode: ExitGeneral,
	}
}

// ExitCode returns the exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var pe *PayflowError
	if errors.As(err, &pe) {
		return pe.ExitCode
	}
	return ExitGeneral
}

// Code returns the machine-readable code for an error, or "GENERAL_ERROR"
// for errors that are not PayflowErrors.
func Code(err error) string {
	if err == nil {
		return ""
	}

	var pe *PayflowError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return "GENERAL_ERROR"
}
