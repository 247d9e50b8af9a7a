package syncer

import "fmt"

// The sync error taxonomy. None of these are retried automatically: the data
// is already durable locally, so a failed sync only means "saved locally, not
// yet synced" and the next mutation will transmit the current state again.

// AuthError means there was no signed-in principal or token retrieval failed.
// The remote call is never attempted.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("auth: %s", e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NotFoundError means the referenced entity does not exist in the store at
// sync time. That is a logic bug or a race, not something to retry.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// RemoteError covers transport failures, non-2xx responses, undecodable
// bodies, and application-level success=false replies.
type RemoteError struct {
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote sync: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("remote sync: %s", e.Message)
}

func (e *RemoteError) Unwrap() error { return e.Err }
