package ports

import (
	"context"
	"time"

	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	contractsv1 "quorum/contracts/gen/events/v1"
	"quorum/internal/shared/revision"
)

type FormFilter struct {
	TallyID       string
	FormState     entities.FormState
	CenterID      string
	StationNumber *int
	BallotID      string
}

type ResultFormRepository interface {
	CreateForm(ctx context.Context, form entities.ResultForm) error
	UpdateForm(ctx context.Context, form entities.ResultForm) error
	GetForm(ctx context.Context, formID string) (entities.ResultForm, error)
	GetFormByBarcode(ctx context.Context, tallyID, barcode string) (entities.ResultForm, error)
	ListForms(ctx context.Context, filter FormFilter) ([]entities.ResultForm, error)
	// HighestBarcode returns the numerically greatest barcode for the tally,
	// or zero when the tally has no forms.
	HighestBarcode(ctx context.Context, tallyID string) (int64, error)
}

type TallyRepository interface {
	GetTally(ctx context.Context, tallyID string) (entities.Tally, error)
}

type GeographyRepository interface {
	GetCenter(ctx context.Context, centerID string) (entities.Center, error)
	GetCenterByCode(ctx context.Context, tallyID string, code int) (entities.Center, error)
	GetStation(ctx context.Context, centerID string, stationNumber int) (entities.Station, error)
}

type BallotRepository interface {
	GetBallot(ctx context.Context, ballotID string) (entities.Ballot, error)
	ListCandidates(ctx context.Context, ballotID string) ([]entities.Candidate, error)
}

type ResultFilter struct {
	ResultFormID string
	EntryVersion entities.EntryVersion
	ActiveOnly   bool
}

type ResultRepository interface {
	CreateResult(ctx context.Context, result entities.Result) error
	UpdateResult(ctx context.Context, result entities.Result) error
	ListResults(ctx context.Context, filter ResultFilter) ([]entities.Result, error)
	// DeactivateResults soft-deletes every active result row for the form,
	// optionally linking the deactivation to a workflow request.
	DeactivateResults(ctx context.Context, formID string, requestID string) error
}

type ReconRepository interface {
	CreateRecon(ctx context.Context, recon entities.ReconciliationForm) error
	UpdateRecon(ctx context.Context, recon entities.ReconciliationForm) error
	ListRecons(ctx context.Context, formID string, activeOnly bool) ([]entities.ReconciliationForm, error)
	DeactivateRecons(ctx context.Context, formID string, requestID string) error
}

type ReviewRepository interface {
	CreateQualityControl(ctx context.Context, review entities.QualityControl) error
	UpdateQualityControl(ctx context.Context, review entities.QualityControl) error
	ActiveQualityControl(ctx context.Context, formID string) (entities.QualityControl, error)

	CreateAudit(ctx context.Context, audit entities.Audit) error
	UpdateAudit(ctx context.Context, audit entities.Audit) error
	ActiveAudit(ctx context.Context, formID string) (entities.Audit, error)
	DeactivateAudits(ctx context.Context, formID string) error

	CreateClearance(ctx context.Context, clearance entities.Clearance) error
	UpdateClearance(ctx context.Context, clearance entities.Clearance) error
	ActiveClearance(ctx context.Context, formID string) (entities.Clearance, error)
}

type QuarantineCheckRepository interface {
	ListQuarantineChecks(ctx context.Context, tallyID string, activeOnly bool) ([]entities.QuarantineCheck, error)
	UpsertQuarantineCheck(ctx context.Context, check entities.QuarantineCheck) error
}

type WorkflowRequestRepository interface {
	CreateRequest(ctx context.Context, request entities.WorkflowRequest) error
	UpdateRequest(ctx context.Context, request entities.WorkflowRequest) error
	GetRequest(ctx context.Context, requestID string) (entities.WorkflowRequest, error)
	// PendingRequest returns the pending request of the given type for a
	// form, if one exists.
	PendingRequest(ctx context.Context, formID string, requestType entities.RequestType) (entities.WorkflowRequest, bool, error)
}

type StatsRepository interface {
	AppendStats(ctx context.Context, stats entities.ResultFormStats) error
	// LatestStatsByRole returns the form's most recent stats row recorded
	// under the given clerk role.
	LatestStatsByRole(ctx context.Context, formID, role string) (entities.ResultFormStats, bool, error)
	UpdateStats(ctx context.Context, stats entities.ResultFormStats) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// RevisionEntry is the before-image record appended inside every mutating
// command's transaction.
type RevisionEntry = revision.Entry

type RevisionLogger interface {
	RecordRevision(ctx context.Context, entry RevisionEntry) error
	ListRevisions(ctx context.Context, entityType, entityID string) ([]RevisionEntry, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
