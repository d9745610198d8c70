package commands

import (
	"context"
	"log/slog"
	"time"

	application "quorum/contexts/tally-operations/form-workflow-service/application"
	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
	"quorum/contexts/tally-operations/form-workflow-service/domain/services"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
)

type CreateAuditCommand struct {
	FormID string
	Actor  services.Actor
}

type CreateAuditUseCase struct {
	Forms     ports.ResultFormRepository
	Reviews   ports.ReviewRepository
	Revisions ports.RevisionLogger
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Execute escalates a form into audit by hand, outside the quarantine gate.
func (uc CreateAuditUseCase) Execute(ctx context.Context, cmd CreateAuditCommand) (entities.Audit, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := services.Authorize(cmd.Actor, services.ActionAuditCreate); err != nil {
		return entities.Audit{}, err
	}

	form, err := uc.Forms.GetForm(ctx, cmd.FormID)
	if err != nil {
		return entities.Audit{}, err
	}
	// Super administrators may also pull an archived form back into audit.
	allowed := []entities.FormState{
		entities.FormStateDataEntry1,
		entities.FormStateDataEntry2,
		entities.FormStateCorrection,
		entities.FormStateQualityControl,
	}
	if cmd.Actor.HasRole(services.RoleSuperAdministrator) {
		allowed = append(allowed, entities.FormStateArchived)
	}
	if err := services.FormInState(form, allowed...); err != nil {
		return entities.Audit{}, err
	}

	now := uc.Clock.Now().UTC()
	if err := recordFormRevision(ctx, uc.Revisions, form, cmd.Actor.UserID, now); err != nil {
		return entities.Audit{}, err
	}
	if err := uc.Reviews.DeactivateAudits(ctx, form.ResultFormID); err != nil {
		return entities.Audit{}, err
	}

	auditID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Audit{}, err
	}
	audit := entities.Audit{
		AuditID:      auditID,
		ResultFormID: form.ResultFormID,
		TallyID:      form.TallyID,
		UserID:       cmd.Actor.UserID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.Reviews.CreateAudit(ctx, audit); err != nil {
		return entities.Audit{}, err
	}

	if err := services.Transition(&form, entities.FormStateAudit); err != nil {
		return entities.Audit{}, err
	}
	form.AuditedCount++
	form.UserID = cmd.Actor.UserID
	form.UpdatedAt = now
	if err := uc.Forms.UpdateForm(ctx, form); err != nil {
		return entities.Audit{}, err
	}

	logger.Info("audit case opened",
		"event", "audit_created",
		"module", "tally-operations/form-workflow-service",
		"layer", "application",
		"barcode", form.Barcode,
	)
	return audit, nil
}

type AuditAction string

const (
	// AuditActionReviewTeam records the audit clerk's findings and hands
	// the case to the supervisor.
	AuditActionReviewTeam AuditAction = "review_team"
	// AuditActionReturnToTeam sends the case back to the clerk.
	AuditActionReturnToTeam AuditAction = "return_to_team"
	// AuditActionImplement carries out the recommended resolution.
	AuditActionImplement AuditAction = "implement"
)

type AuditReviewCommand struct {
	FormID string
	Actor  services.Actor
	Action AuditAction

	// Clerk findings, applied on review_team.
	BlankReconciliation bool
	BlankResults        bool
	DamagedForm         bool
	UnclearFigures      bool
	OtherProblem        string

	ActionPrior ActionPriorInput
	Resolution  entities.AuditResolution
	Comment     string
}

// ActionPriorInput aliases the entity enum so transport packages need not
// import entities directly.
type ActionPriorInput = entities.ActionPrior

type AuditReviewUseCase struct {
	Forms     ports.ResultFormRepository
	Results   ports.ResultRepository
	Recons    ports.ReconRepository
	Reviews   ports.ReviewRepository
	Revisions ports.RevisionLogger
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Execute advances the two-person audit review. Implementing a resolution
// dispatches on the recommendation: field-action priors hold the form in
// audit awaiting input, archive releases escalate to the super
// administrator, and everything else rejects the form to data entry 1.
func (uc AuditReviewUseCase) Execute(ctx context.Context, cmd AuditReviewCommand) (entities.Audit, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := services.Authorize(cmd.Actor, services.ActionAuditReview); err != nil {
		return entities.Audit{}, err
	}

	form, err := uc.Forms.GetForm(ctx, cmd.FormID)
	if err != nil {
		return entities.Audit{}, err
	}
	if err := services.FormInState(form, entities.FormStateAudit); err != nil {
		return entities.Audit{}, err
	}
	audit, err := uc.Reviews.ActiveAudit(ctx, form.ResultFormID)
	if err != nil {
		return entities.Audit{}, err
	}

	now := uc.Clock.Now().UTC()
	switch cmd.Action {
	case AuditActionReviewTeam:
		audit.BlankReconciliation = cmd.BlankReconciliation
		audit.BlankResults = cmd.BlankResults
		audit.DamagedForm = cmd.DamagedForm
		audit.UnclearFigures = cmd.UnclearFigures
		audit.OtherProblem = cmd.OtherProblem
		audit.ActionPriorToRecommendation = cmd.ActionPrior
		audit.ResolutionRecommendation = cmd.Resolution
		audit.TeamComment = cmd.Comment
		audit.ReviewedTeam = true
		audit.UserID = cmd.Actor.UserID
		audit.UpdatedAt = now
		if err := uc.Reviews.UpdateAudit(ctx, audit); err != nil {
			return entities.Audit{}, err
		}
		return audit, nil

	case AuditActionReturnToTeam:
		audit.ReviewedTeam = false
		audit.ReviewedSupervisor = false
		audit.SupervisorComment = cmd.Comment
		audit.UpdatedAt = now
		if err := uc.Reviews.UpdateAudit(ctx, audit); err != nil {
			return entities.Audit{}, err
		}
		return audit, nil

	case AuditActionImplement:
		if !audit.ReviewedTeam {
			return entities.Audit{}, domainerrors.ErrInvalidState
		}
		audit.ReviewedSupervisor = true
		audit.SupervisorID = cmd.Actor.UserID
		if cmd.Comment != "" {
			audit.SupervisorComment = cmd.Comment
		}
		return uc.implement(ctx, form, audit, cmd.Actor, now, logger)
	}

	return entities.Audit{}, domainerrors.ErrInvalidInput
}

func (uc AuditReviewUseCase) implement(
	ctx context.Context,
	form entities.ResultForm,
	audit entities.Audit,
	actor services.Actor,
	now time.Time,
	logger *slog.Logger,
) (entities.Audit, error) {
	switch {
	case audit.ResolutionRecommendation == entities.AuditResolutionMakeAvailableForArchive:
		if !audit.ForSuperadmin {
			// First implement escalates; only the super administrator
			// releases a quarantined form to the archive.
			audit.ForSuperadmin = true
			audit.UpdatedAt = now
			if err := uc.Reviews.UpdateAudit(ctx, audit); err != nil {
				return entities.Audit{}, err
			}
			return audit, nil
		}
		if !actor.HasRole(services.RoleSuperAdministrator) {
			return entities.Audit{}, domainerrors.ErrForbidden
		}
		audit.Active = false
		audit.UpdatedAt = now
		if err := uc.Reviews.UpdateAudit(ctx, audit); err != nil {
			return entities.Audit{}, err
		}
		if err := recordFormRevision(ctx, uc.Revisions, form, actor.UserID, now); err != nil {
			return entities.Audit{}, err
		}
		if err := services.Transition(&form, entities.FormStateArchived); err != nil {
			return entities.Audit{}, err
		}
		form.SkipQuarantineChecks = true
		form.UserID = actor.UserID
		form.UpdatedAt = now
		if err := uc.Forms.UpdateForm(ctx, form); err != nil {
			return entities.Audit{}, err
		}
		logger.Info("audited form released to archive",
			"event", "audit_released_to_archive",
			"module", "tally-operations/form-workflow-service",
			"layer", "application",
			"barcode", form.Barcode,
		)
		return audit, nil

	case audit.ActionPriorToRecommendation == entities.ActionPriorRequestCopyFromField,
		audit.ActionPriorToRecommendation == entities.ActionPriorRequestAuditActionFromField:
		// The case waits on the field: captures are cleared but the audit
		// stays open and the form stays put.
		audit.UpdatedAt = now
		if err := uc.Reviews.UpdateAudit(ctx, audit); err != nil {
			return entities.Audit{}, err
		}
		if err := rejectForm(ctx, uc.Forms, uc.Results, uc.Recons, uc.Revisions,
			&form, entities.FormStateAudit, audit.SupervisorComment, "", actor.UserID, now); err != nil {
			return entities.Audit{}, err
		}
		// Re-entering audit counts as a fresh audit round.
		form.AuditedCount++
		if err := uc.Forms.UpdateForm(ctx, form); err != nil {
			return entities.Audit{}, err
		}
		return audit, nil

	default:
		audit.Active = false
		audit.UpdatedAt = now
		if err := uc.Reviews.UpdateAudit(ctx, audit); err != nil {
			return entities.Audit{}, err
		}
		if err := rejectForm(ctx, uc.Forms, uc.Results, uc.Recons, uc.Revisions,
			&form, entities.FormStateDataEntry1, audit.SupervisorComment, "", actor.UserID, now); err != nil {
			return entities.Audit{}, err
		}
		logger.Info("audited form rejected to data entry",
			"event", "audit_implemented",
			"module", "tally-operations/form-workflow-service",
			"layer", "application",
			"barcode", form.Barcode,
			"resolution", string(audit.ResolutionRecommendation),
		)
		return audit, nil
	}
}
