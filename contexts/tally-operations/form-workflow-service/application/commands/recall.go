package commands

import (
	"context"
	"log/slog"
	"strings"

	application "quorum/contexts/tally-operations/form-workflow-service/application"
	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
	"quorum/contexts/tally-operations/form-workflow-service/domain/services"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
)

type RequestRecallCommand struct {
	FormID  string
	Actor   services.Actor
	Reason  string
	Comment string
}

type RequestRecallUseCase struct {
	Forms    ports.ResultFormRepository
	Requests ports.WorkflowRequestRepository
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

// Execute files a recall request against an archived form. At most one
// pending recall may exist per form.
func (uc RequestRecallUseCase) Execute(ctx context.Context, cmd RequestRecallCommand) (entities.WorkflowRequest, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := services.Authorize(cmd.Actor, services.ActionRecallRequest); err != nil {
		return entities.WorkflowRequest{}, err
	}
	if strings.TrimSpace(cmd.Reason) == "" {
		return entities.WorkflowRequest{}, domainerrors.ErrInvalidInput
	}

	form, err := uc.Forms.GetForm(ctx, cmd.FormID)
	if err != nil {
		return entities.WorkflowRequest{}, err
	}
	if form.FormState != entities.FormStateArchived {
		return entities.WorkflowRequest{}, domainerrors.ErrFormNotArchived
	}

	if _, pending, err := uc.Requests.PendingRequest(ctx, form.ResultFormID,
		entities.RequestTypeRecallFromArchive); err != nil {
		return entities.WorkflowRequest{}, err
	} else if pending {
		return entities.WorkflowRequest{}, domainerrors.ErrRecallAlreadyPending
	}

	now := uc.Clock.Now().UTC()
	requestID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.WorkflowRequest{}, err
	}
	request := entities.WorkflowRequest{
		RequestID:      requestID,
		ResultFormID:   form.ResultFormID,
		TallyID:        form.TallyID,
		RequestType:    entities.RequestTypeRecallFromArchive,
		Status:         entities.RequestStatusPending,
		RequesterID:    cmd.Actor.UserID,
		RequestReason:  cmd.Reason,
		RequestComment: cmd.Comment,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.Requests.CreateRequest(ctx, request); err != nil {
		return entities.WorkflowRequest{}, err
	}

	logger.Info("recall requested",
		"event", "recall_requested",
		"module", "tally-operations/form-workflow-service",
		"layer", "application",
		"barcode", form.Barcode,
		"request_id", request.RequestID,
	)
	return request, nil
}

type ResolveRecallCommand struct {
	RequestID string
	Actor     services.Actor
	Approve   bool
	Comment   string
}

type ResolveRecallUseCase struct {
	Forms     ports.ResultFormRepository
	Results   ports.ResultRepository
	Recons    ports.ReconRepository
	Reviews   ports.ReviewRepository
	Requests  ports.WorkflowRequestRepository
	Revisions ports.RevisionLogger
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Execute approves or denies a pending recall. Approval pulls the archived
// form back into audit: its captures are deactivated with the request linked
// as cause, and a fresh audit case is opened under the approver.
func (uc ResolveRecallUseCase) Execute(ctx context.Context, cmd ResolveRecallCommand) (entities.WorkflowRequest, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := services.Authorize(cmd.Actor, services.ActionRecallResolve); err != nil {
		return entities.WorkflowRequest{}, err
	}

	request, err := uc.Requests.GetRequest(ctx, cmd.RequestID)
	if err != nil {
		return entities.WorkflowRequest{}, err
	}
	if !request.IsPending() {
		return entities.WorkflowRequest{}, domainerrors.ErrRequestAlreadyActioned
	}

	now := uc.Clock.Now().UTC()
	request.ApproverID = cmd.Actor.UserID
	request.ApprovalComment = cmd.Comment
	request.ResolvedAt = &now
	request.UpdatedAt = now

	if !cmd.Approve {
		request.Status = entities.RequestStatusRejected
		if err := uc.Requests.UpdateRequest(ctx, request); err != nil {
			return entities.WorkflowRequest{}, err
		}
		logger.Info("recall denied",
			"event", "recall_denied",
			"module", "tally-operations/form-workflow-service",
			"layer", "application",
			"request_id", request.RequestID,
		)
		return request, nil
	}

	form, err := uc.Forms.GetForm(ctx, request.ResultFormID)
	if err != nil {
		return entities.WorkflowRequest{}, err
	}
	if form.FormState != entities.FormStateArchived {
		return entities.WorkflowRequest{}, domainerrors.ErrFormNotArchived
	}

	request.Status = entities.RequestStatusApproved
	if err := uc.Requests.UpdateRequest(ctx, request); err != nil {
		return entities.WorkflowRequest{}, err
	}

	reason := request.RequestReason
	if cmd.Comment != "" {
		reason = cmd.Comment
	}
	if err := rejectForm(ctx, uc.Forms, uc.Results, uc.Recons, uc.Revisions,
		&form, entities.FormStateAudit, reason, request.RequestID, cmd.Actor.UserID, now); err != nil {
		return entities.WorkflowRequest{}, err
	}

	if err := uc.Reviews.DeactivateAudits(ctx, form.ResultFormID); err != nil {
		return entities.WorkflowRequest{}, err
	}
	auditID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.WorkflowRequest{}, err
	}
	audit := entities.Audit{
		AuditID:      auditID,
		ResultFormID: form.ResultFormID,
		TallyID:      form.TallyID,
		UserID:       cmd.Actor.UserID,
		Active:       true,
		TeamComment:  request.RequestReason,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.Reviews.CreateAudit(ctx, audit); err != nil {
		return entities.WorkflowRequest{}, err
	}

	form.AuditedCount++
	form.UpdatedAt = now
	if err := uc.Forms.UpdateForm(ctx, form); err != nil {
		return entities.WorkflowRequest{}, err
	}
	if err := emitFormEvent(ctx, uc.Outbox, uc.IDGen, EventFormStateChanged, form, now); err != nil {
		return entities.WorkflowRequest{}, err
	}

	logger.Info("recall approved",
		"event", "recall_approved",
		"module", "tally-operations/form-workflow-service",
		"layer", "application",
		"barcode", form.Barcode,
		"request_id", request.RequestID,
	)
	return request, nil
}
