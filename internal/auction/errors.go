package auction

import (
	"errors"
	"fmt"
)

// DeliveryHint tells the rendering layer how a validation error should
// reach the requester. The hint is advisory; rendering is external.
type DeliveryHint string

const (
	HintBroadcast DeliveryHint = "broadcast"
	HintReaction  DeliveryHint = "reaction"
	HintDirect    DeliveryHint = "direct"
)

// Code identifies a validation failure. Every code is recoverable by
// the caller; none is process-fatal.
type Code string

const (
	CodeUnauthorized      Code = "unauthorized"
	CodeNotFound          Code = "not_found"
	CodeAlreadyPicked     Code = "already_picked"
	CodeNotEligible       Code = "not_eligible"
	CodeBusy              Code = "busy"
	CodeInsufficientFunds Code = "insufficient_funds"
	CodeTooLowBid         Code = "too_low_bid"
	CodeBidAgainstSelf    Code = "bid_against_self"
	CodeInvalidTransition Code = "invalid_transition"
	CodeDuplicateName     Code = "duplicate_name"
)

// ValidationError is a rejected command. It carries enough context to
// render a user-facing message without re-querying draft state, and is
// raised before any state mutation.
type ValidationError struct {
	Code    Code
	Message string
	Hint    DeliveryHint
}

func (e *ValidationError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Errf builds a ValidationError with a formatted message.
func Errf(code Code, hint DeliveryHint, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...), Hint: hint}
}

// AsValidation unwraps err as a ValidationError, if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// ErrBidIgnored signals a bid that arrived outside the bidding phase.
// It is a no-op to the draft, not a validation failure.
var ErrBidIgnored = errors.New("bid_ignored")

// ErrTimerCancelled is returned by NominationTimer.Run when the timer
// was cancelled before its countdown completed.
var ErrTimerCancelled = errors.New("timer_cancelled")
