package entities

import "time"

type RequestType string

const (
	RequestTypeRecallFromArchive RequestType = "recall_from_archive"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// WorkflowRequest is a rework request against a form, currently only the
// post-archive recall. At most one pending recall exists per form.
type WorkflowRequest struct {
	RequestID    string
	ResultFormID string
	TallyID      string
	RequestType  RequestType
	Status       RequestStatus

	RequesterID    string
	RequestReason  string
	RequestComment string

	ApproverID      string
	ApprovalComment string
	ResolvedAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r WorkflowRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}
