package domain

import "errors"

var (
	// ErrMissingParameter indicates a required request or binding field was empty.
	ErrMissingParameter = errors.New("missing required parameter")
	// ErrInvalidRole indicates the sender role is not part of the role directory.
	ErrInvalidRole = errors.New("invalid sender role")
	// ErrUnknownSender indicates no binding exists for the sending number.
	ErrUnknownSender = errors.New("sender number not found in binding table")
	// ErrRoleNotFound indicates the bound role has no directory number to route to.
	ErrRoleNotFound = errors.New("no recipient number for role")
	// ErrDeliveryFailed indicates the SMS provider rejected or failed the send.
	ErrDeliveryFailed = errors.New("message delivery failed")
	// ErrLoggingFailed indicates the CRM write failed after a successful delivery.
	ErrLoggingFailed = errors.New("CRM logging failed")
)
