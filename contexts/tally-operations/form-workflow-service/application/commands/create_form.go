package commands

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	application "quorum/contexts/tally-operations/form-workflow-service/application"
	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
	"quorum/contexts/tally-operations/form-workflow-service/domain/services"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
)

const barcodeInsertRetries = 5

type CreateFormCommand struct {
	TallyID      string
	Actor        services.Actor
	BallotID     string
	Office       string
	Gender       entities.Gender
	SerialNumber int
	// Replacement forms start without a center or station and get them at
	// intake re-assignment.
	IsReplacement bool
}

type CreateFormUseCase struct {
	Forms        ports.ResultFormRepository
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Revisions    ports.RevisionLogger
	StartBarcode int64
	Logger       *slog.Logger
}

// Execute creates a replacement result form with a generated barcode. The
// generator takes max(existing, start)+1 and retries on a unique-constraint
// conflict since concurrent creators can race to the same number.
func (uc CreateFormUseCase) Execute(ctx context.Context, cmd CreateFormCommand) (entities.ResultForm, error) {
	logger := application.ResolveLogger(uc.Logger)
	if cmd.TallyID == "" || cmd.BallotID == "" {
		return entities.ResultForm{}, domainerrors.ErrInvalidInput
	}

	now := uc.Clock.Now().UTC()
	formID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.ResultForm{}, err
	}

	var lastErr error
	for attempt := 0; attempt < barcodeInsertRetries; attempt++ {
		highest, err := uc.Forms.HighestBarcode(ctx, cmd.TallyID)
		if err != nil {
			return entities.ResultForm{}, err
		}
		if highest < uc.StartBarcode {
			highest = uc.StartBarcode
		}

		form := entities.ResultForm{
			ResultFormID:  formID,
			TallyID:       cmd.TallyID,
			Barcode:       strconv.FormatInt(highest+1, 10),
			SerialNumber:  cmd.SerialNumber,
			FormState:     entities.FormStateUnsubmitted,
			BallotID:      cmd.BallotID,
			Office:        cmd.Office,
			Gender:        cmd.Gender,
			IsReplacement: cmd.IsReplacement,
			CreatedUserID: cmd.Actor.UserID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := uc.Forms.CreateForm(ctx, form); err != nil {
			if errors.Is(err, domainerrors.ErrInvalidInput) {
				// Barcode taken by a concurrent insert, recompute.
				lastErr = err
				continue
			}
			return entities.ResultForm{}, err
		}

		logger.Info("result form created",
			"event", "result_form_created",
			"module", "tally-operations/form-workflow-service",
			"layer", "application",
			"barcode", form.Barcode,
			"is_replacement", form.IsReplacement,
		)
		return form, nil
	}
	return entities.ResultForm{}, lastErr
}
