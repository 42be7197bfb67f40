package domain

import "errors"

// Sentinel errors for the contract domain. Use errors.Is() to check these.
var (
	// ErrContractNotFound indicates the requested contract does not exist.
	ErrContractNotFound = errors.New("contract not found")

	// ErrContractAlreadyExists indicates a contract with the same public code already exists.
	ErrContractAlreadyExists = errors.New("contract already exists")

	// ErrInvalidContract indicates the submitted contract data is malformed or incomplete.
	ErrInvalidContract = errors.New("invalid contract")

	// ErrInvalidTransition indicates the target status is not reachable from the current one.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrForbidden indicates the actor's role may not perform the operation.
	ErrForbidden = errors.New("operation not permitted for role")

	// ErrAlreadyLocked indicates another operator holds an active lock.
	ErrAlreadyLocked = errors.New("contract is locked by another operator")

	// ErrLockNotHeld indicates the actor tried to release a lock held by someone else.
	ErrLockNotHeld = errors.New("lock is held by another operator")

	// ErrMissingReason indicates a transition that requires a note was requested without one.
	ErrMissingReason = errors.New("a reason is required for this status")

	// ErrConcurrentUpdate indicates the contract changed between read and write.
	ErrConcurrentUpdate = errors.New("contract was modified concurrently")

	// ErrInvalidDocument indicates an upload that is empty or of a disallowed type.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrDocumentNotFound indicates the contract has no document with the requested id.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDocumentTooLarge indicates an upload above the configured size limit.
	ErrDocumentTooLarge = errors.New("document too large")

	// ErrUpstreamUnavailable indicates a storage dependency could not be reached.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
