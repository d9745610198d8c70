package commands

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	application "quorum/contexts/tally-operations/form-workflow-service/application"
	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
)

var barcodePattern = regexp.MustCompile(`^[0-9]+$`)

type SubmitBarcodeCommand struct {
	TallyID     string
	Barcode     string
	BarcodeCopy string
	// Scan is the scanner input path; when set it replaces both typed
	// fields.
	Scan string
}

type SubmitBarcodeUseCase struct {
	Forms  ports.ResultFormRepository
	Logger *slog.Logger
}

// Execute resolves a barcode to its result form. Dual entry of barcode and
// copy must match exactly.
func (uc SubmitBarcodeUseCase) Execute(ctx context.Context, cmd SubmitBarcodeCommand) (entities.ResultForm, error) {
	logger := application.ResolveLogger(uc.Logger)

	barcode := strings.TrimSpace(cmd.Scan)
	if barcode == "" {
		barcode = strings.TrimSpace(cmd.Barcode)
		if barcode != strings.TrimSpace(cmd.BarcodeCopy) {
			return entities.ResultForm{}, domainerrors.ErrBarcodeMismatch
		}
	}
	if barcode == "" || len(barcode) > 255 || !barcodePattern.MatchString(barcode) {
		return entities.ResultForm{}, domainerrors.ErrInvalidBarcode
	}

	form, err := uc.Forms.GetFormByBarcode(ctx, strings.TrimSpace(cmd.TallyID), barcode)
	if err != nil {
		return entities.ResultForm{}, err
	}

	logger.Info("barcode resolved",
		"event", "barcode_resolved",
		"module", "tally-operations/form-workflow-service",
		"layer", "application",
		"barcode", barcode,
		"form_state", string(form.FormState),
	)
	return form, nil
}
