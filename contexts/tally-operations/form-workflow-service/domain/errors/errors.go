package errors

import "errors"

var (
	ErrFormNotFound      = errors.New("result form not found")
	ErrTallyNotFound     = errors.New("tally not found")
	ErrCenterNotFound    = errors.New("center not found")
	ErrStationNotFound   = errors.New("station not found")
	ErrBallotNotFound    = errors.New("ballot not found")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrRequestNotFound   = errors.New("workflow request not found")
	ErrReviewNotFound    = errors.New("no active review for form")

	ErrInvalidInput           = errors.New("invalid input")
	ErrBarcodeMismatch        = errors.New("barcode and barcode copy do not match")
	ErrInvalidBarcode         = errors.New("barcode must be a decimal string")
	ErrBallotMismatch         = errors.New("form ballot does not match center races")
	ErrInvalidState           = errors.New("action not legal from current form state")
	ErrForbidden              = errors.New("role not permitted for action")
	ErrSessionMismatch        = errors.New("session form does not match posted form")
	ErrSuspiciousOperation    = errors.New("suspicious operation")
	ErrUnexpectedPost         = errors.New("missing expected action")
	ErrUnresolvedCorrections  = errors.New("please select correct results for all mis-matched votes")
	ErrDuplicateBlocked       = errors.New("duplicate form detected, routed to clearance")
	ErrAutoCleared            = errors.New("form rejected to clearance by all-zero guard")
	ErrRecallAlreadyPending   = errors.New("an active recall request already exists for this form")
	ErrFormNotArchived        = errors.New("form is not in the archived state")
	ErrRequestAlreadyActioned = errors.New("workflow request has already been actioned")
	ErrRejectReasonRequired   = errors.New("a reject reason is required for released ballots")
)
