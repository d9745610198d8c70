package commands

import (
	"context"
	"log/slog"

	application "quorum/contexts/tally-operations/form-workflow-service/application"
	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
	"quorum/contexts/tally-operations/form-workflow-service/domain/services"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
)

type ConfigureQuarantineCommand struct {
	Actor services.Actor
	Check entities.QuarantineCheck
}

type ConfigureQuarantineUseCase struct {
	Checks ports.QuarantineCheckRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Execute creates or updates one quarantine check descriptor. Thresholds
// take effect on the next pass through the archive gate.
func (uc ConfigureQuarantineUseCase) Execute(ctx context.Context, cmd ConfigureQuarantineCommand) (entities.QuarantineCheck, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := services.Authorize(cmd.Actor, services.ActionQuarantineConfigure); err != nil {
		return entities.QuarantineCheck{}, err
	}

	check := cmd.Check
	if check.TallyID == "" || check.Method == "" {
		return entities.QuarantineCheck{}, domainerrors.ErrInvalidInput
	}

	now := uc.Clock.Now().UTC()
	if check.QuarantineCheckID == "" {
		checkID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.QuarantineCheck{}, err
		}
		check.QuarantineCheckID = checkID
		check.CreatedAt = now
	}
	check.UpdatedAt = now
	if err := uc.Checks.UpsertQuarantineCheck(ctx, check); err != nil {
		return entities.QuarantineCheck{}, err
	}

	logger.Info("quarantine check configured",
		"event", "quarantine_check_configured",
		"module", "tally-operations/form-workflow-service",
		"layer", "application",
		"check", check.Name,
		"method", string(check.Method),
		"active", check.Active,
	)
	return check, nil
}
