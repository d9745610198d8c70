package httpadapter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"quorum/contexts/tally-operations/form-workflow-service/application/commands"
	"quorum/contexts/tally-operations/form-workflow-service/application/queries"
	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
	"quorum/contexts/tally-operations/form-workflow-service/domain/services"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
	httptransport "quorum/contexts/tally-operations/form-workflow-service/transport/http"
)

type Handler struct {
	Barcodes    commands.SubmitBarcodeUseCase
	FormCreator commands.CreateFormUseCase
	Intake      commands.IntakeUseCase
	DataEntry   commands.SubmitDataEntryUseCase
	Corrections commands.SubmitCorrectionsUseCase
	QC          commands.QualityControlUseCase
	AuditCases  commands.CreateAuditUseCase
	AuditReview commands.AuditReviewUseCase
	Clearances  commands.CreateClearanceUseCase
	ClearReview commands.ClearanceReviewUseCase
	Recalls     commands.RequestRecallUseCase
	Resolutions commands.ResolveRecallUseCase
	Quarantine  commands.ConfigureQuarantineUseCase

	Forms      queries.GetFormUseCase
	FormLists  queries.ListFormsUseCase
	Totals     queries.CandidateTotalsUseCase
	Duplicates queries.DuplicateVotesUseCase
	History    queries.FormHistoryUseCase
	Exports    queries.ExportUseCase

	Logger *slog.Logger
}

func actorFrom(userID string, roles []string) services.Actor {
	return services.Actor{UserID: userID, Roles: roles}
}

func (h Handler) SubmitBarcodeHandler(
	ctx context.Context,
	req httptransport.SubmitBarcodeRequest,
) (httptransport.FormResponse, error) {
	form, err := h.Barcodes.Execute(ctx, commands.SubmitBarcodeCommand{
		TallyID:     req.TallyID,
		Barcode:     req.Barcode,
		BarcodeCopy: req.BarcodeCopy,
		Scan:        req.Scan,
	})
	if err != nil {
		return httptransport.FormResponse{}, err
	}
	return mapForm(form), nil
}

func (h Handler) CreateFormHandler(
	ctx context.Context,
	userID string,
	roles []string,
	req httptransport.CreateFormRequest,
) (httptransport.FormResponse, error) {
	form, err := h.FormCreator.Execute(ctx, commands.CreateFormCommand{
		TallyID:       req.TallyID,
		Actor:         actorFrom(userID, roles),
		BallotID:      req.BallotID,
		Office:        req.Office,
		Gender:        entities.Gender(req.Gender),
		SerialNumber:  req.SerialNumber,
		IsReplacement: req.IsReplacement,
	})
	if err != nil {
		return httptransport.FormResponse{}, err
	}
	return mapForm(form), nil
}

func (h Handler) IntakeHandler(
	ctx context.Context,
	userID string,
	roles []string,
	formID string,
) (httptransport.IntakeResponse, error) {
	outcome, err := h.Intake.Execute(ctx, commands.SubmitIntakeCommand{
		FormID: formID,
		Actor:  actorFrom(userID, roles),
	})
	if errors.Is(err, domainerrors.ErrDuplicateBlocked) {
		// The routed form is still reported alongside the block.
		return httptransport.IntakeResponse{
			Form:      mapForm(outcome.Form),
			Duplicate: true,
		}, err
	}
	if err != nil {
		return httptransport.IntakeResponse{}, err
	}
	return httptransport.IntakeResponse{
		Form:        mapForm(outcome.Form),
		Duplicate:   outcome.Duplicate,
		NeedsCenter: outcome.NeedsCenter,
	}, nil
}

func (h Handler) ConfirmIntakeHandler(
	ctx context.Context,
	userID string,
	roles []string,
	formID string,
	req httptransport.ConfirmIntakeRequest,
) (httptransport.IntakeResponse, error) {
	form, printCover, err := h.Intake.ExecuteConfirm(ctx, commands.ConfirmIntakeCommand{
		FormID:  formID,
		Actor:   actorFrom(userID, roles),
		IsMatch: req.IsMatch,
	})
	if err != nil {
		return httptransport.IntakeResponse{}, err
	}
	return httptransport.IntakeResponse{
		Form:       mapForm(form),
		PrintCover: printCover,
	}, nil
}

func (h Handler) AssignCenterStationHandler(
	ctx context.Context,
	userID string,
	roles []string,
	formID string,
	req httptransport.AssignCenterStationRequest,
) (httptransport.FormResponse, error) {
	form, err := h.Intake.ExecuteAssign(ctx, commands.AssignCenterStationCommand{
		FormID:        formID,
		Actor:         actorFrom(userID, roles),
		CenterCode:    req.CenterCode,
		StationNumber: req.StationNumber,
	})
	if err != nil {
		return httptransport.FormResponse{}, err
	}
	return mapForm(form), nil
}

func (h Handler) SubmitDataEntryHandler(
	ctx context.Context,
	userID string,
	roles []string,
	formID string,
	req httptransport.SubmitDataEntryRequest,
) (httptransport.FormResponse, error) {
	votes := make([]commands.VoteEntry, 0, len(req.Votes))
	for _, vote := range req.Votes {
		votes = append(votes, commands.VoteEntry{
			CandidateID: vote.CandidateID,
			Votes:       vote.Votes,
		})
	}
	form, err := h.DataEntry.Execute(ctx, commands.SubmitDataEntryCommand{
		FormID:                formID,
		Actor:                 actorFrom(userID, roles),
		Votes:                 votes,
		Recon:                 mapReconRequest(req.Recon),
		ProcessingTimeSeconds: req.ProcessingTimeSeconds,
	})
	if err != nil {
		return httptransport.FormResponse{}, err
	}
	return mapForm(form), nil
}

func (h Handler) CorrectionsPreviewHandler(
	ctx context.Context,
	userID string,
	roles []string,
	formID string,
) (httptransport.CorrectionsPreviewResponse, error) {
	outcome, err := h.Corrections.Preview(ctx, formID, actorFrom(userID, roles))
	if err != nil {
		return httptransport.CorrectionsPreviewResponse{}, err
	}
	resp := httptransport.CorrectionsPreviewResponse{
		Form: mapForm(outcome.Form),
	}
	for _, mismatch := range outcome.VoteMismatches {
		resp.VoteMismatches = append(resp.VoteMismatches, httptransport.VoteMismatchResponse{
			CandidateID: mismatch.CandidateID,
			Votes1:      mismatch.Votes1,
			Votes2:      mismatch.Votes2,
		})
	}
	for _, mismatch := range outcome.ReconMismatches {
		resp.ReconMismatches = append(resp.ReconMismatches, httptransport.ReconMismatchResponse{
			Field:  mismatch.Field,
			Value1: mismatch.Value1,
			Value2: mismatch.Value2,
		})
	}
	return resp, nil
}

func (h Handler) SubmitCorrectionsHandler(
	ctx context.Context,
	userID string,
	roles []string,
	formID string,
	req httptransport.SubmitCorrectionsRequest,
) (httptransport.FormResponse, error) {
	form, err := h.Corrections.Execute(ctx, commands.SubmitCorrectionsCommand{
		FormID:           formID,
		Actor:            actorFrom(userID, roles),
		VoteResolutions:  req.VoteResolutions,
		ReconResolutions: req.ReconResolutions,
		Abandon:          req.Abandon,
	})
	if err != nil {
		return httptransport.FormResponse{}, err
	}
	return mapForm(form), nil
}

func (h Handler) QualityControlHandler(
	ctx context.Context,
	userID string,
	roles []string,
	formID string,
	req httptransport.QualityControlRequest,
) (httptransport.QualityControlResponse, error) {
	form, printCover, err := h.QC.Execute(ctx, commands.QualityControlCommand{
		FormID:               formID,
		Actor:                actorFrom(userID, roles),
		Decision:             commands.QCDecision(req.Decision),
		RejectReason:         req.RejectReason,
		PassedReconciliation: req.PassedReconciliation,
	})
	if err != nil {
		return httptransport.QualityControlResponse{}, err
	}
	return httptransport.QualityControlResponse{
		Form:       mapForm(form),
		PrintCover: printCover,
	}, nil
}

func (h Handler) CreateAuditHandler(
	ctx context.Context,
	userID string,
	roles []string,
	formID string,
) (httptransport.AuditResponse, error) {
	audit, err := h.AuditCases.Execute(ctx, commands.CreateAuditCommand{
		FormID: formID,
		Actor:  actorFrom(userID, roles),
	})
	if err != nil {
		return httptransport.AuditResponse{}, err
	}
	return mapAudit(audit), nil
}

func (h Handler) AuditReviewHandler(
	ctx context.Context,
	userID string,
	roles []string,
	formID string,
	req httptransport.AuditReviewRequest,
) (httptransport.AuditResponse, error) {
	audit, err := h.AuditReview.Execute(ctx, commands.AuditReviewCommand{
		FormID:              formID,
		Actor:               actorFrom(userID, roles),
		Action:              commands.AuditAction(req.Action),
		BlankReconciliation: req.BlankReconciliation,
		BlankResults:        req.BlankResults,
		DamagedForm:         req.DamagedForm,
		UnclearFigures:      req.UnclearFigures,
		OtherProblem:        req.OtherProblem,
		ActionPrior:         entities.ActionPrior(req.ActionPrior),
		Resolution:          entities.AuditResolution(req.Resolution),
		Comment:             req.Comment,
	})
	if err != nil {
		return httptransport.AuditResponse{}, err
	}
	return mapAudit(audit), nil
}

func (h Handler) CreateClearanceHandler(
	ctx context.Context,
	userID string,
	roles []string,
	formID string,
	req httptransport.CreateClearanceRequest,
) (httptransport.ClearanceResponse, error) {
	clearance, printCover, err := h.Clearances.Execute(ctx, commands.CreateClearanceCommand{
		FormID:   formID,
		Actor:    actorFrom(userID, roles),
		UserName: req.UserName,
	})
	if err != nil {
		return httptransport.ClearanceResponse{}, err
	}
	resp := mapClearance(clearance)
	resp.PrintCover = printCover
	return resp, nil
}

func (h Handler) ClearanceReviewHandler(
	ctx context.Context,
	userID string,
	roles []string,
	formID string,
	req httptransport.ClearanceReviewRequest,
) (httptransport.ClearanceResponse, error) {
	clearance, err := h.ClearReview.Execute(ctx, commands.ClearanceReviewCommand{
		FormID:      formID,
		Actor:       actorFrom(userID, roles),
		Action:      commands.ClearanceAction(req.Action),
		ActionPrior: entities.ActionPrior(req.ActionPrior),
		Resolution:  entities.ClearanceResolution(req.Resolution),
		Comment:     req.Comment,
	})
	if err != nil {
		return httptransport.ClearanceResponse{}, err
	}
	return mapClearance(clearance), nil
}

func (h Handler) RequestRecallHandler(
	ctx context.Context,
	userID string,
	roles []string,
	formID string,
	req httptransport.RequestRecallRequest,
) (httptransport.WorkflowRequestResponse, error) {
	request, err := h.Recalls.Execute(ctx, commands.RequestRecallCommand{
		FormID:  formID,
		Actor:   actorFrom(userID, roles),
		Reason:  req.Reason,
		Comment: req.Comment,
	})
	if err != nil {
		return httptransport.WorkflowRequestResponse{}, err
	}
	return mapRequest(request), nil
}

func (h Handler) ResolveRecallHandler(
	ctx context.Context,
	userID string,
	roles []string,
	requestID string,
	req httptransport.ResolveRecallRequest,
) (httptransport.WorkflowRequestResponse, error) {
	request, err := h.Resolutions.Execute(ctx, commands.ResolveRecallCommand{
		RequestID: requestID,
		Actor:     actorFrom(userID, roles),
		Approve:   req.Approve,
		Comment:   req.Comment,
	})
	if err != nil {
		return httptransport.WorkflowRequestResponse{}, err
	}
	return mapRequest(request), nil
}

func (h Handler) ConfigureQuarantineHandler(
	ctx context.Context,
	userID string,
	roles []string,
	req httptransport.ConfigureQuarantineRequest,
) (httptransport.QuarantineCheckResponse, error) {
	check, err := h.Quarantine.Execute(ctx, commands.ConfigureQuarantineCommand{
		Actor: actorFrom(userID, roles),
		Check: entities.QuarantineCheck{
			QuarantineCheckID: req.QuarantineCheckID,
			TallyID:           req.TallyID,
			Name:              req.Name,
			Method:            entities.QuarantineMethod(req.Method),
			Value:             req.Value,
			Percentage:        req.Percentage,
			Active:            req.Active,
		},
	})
	if err != nil {
		return httptransport.QuarantineCheckResponse{}, err
	}
	return httptransport.QuarantineCheckResponse{
		QuarantineCheckID: check.QuarantineCheckID,
		TallyID:           check.TallyID,
		Name:              check.Name,
		Method:            string(check.Method),
		Value:             check.Value,
		Percentage:        check.Percentage,
		Active:            check.Active,
	}, nil
}

func (h Handler) GetFormHandler(ctx context.Context, formID string) (httptransport.FormDetailResponse, error) {
	detail, err := h.Forms.Execute(ctx, formID)
	if err != nil {
		return httptransport.FormDetailResponse{}, err
	}
	resp := httptransport.FormDetailResponse{
		Form:    mapForm(detail.Form),
		Results: make([]httptransport.ResultResponse, 0, len(detail.Results)),
		Recons:  make([]httptransport.ReconResponse, 0, len(detail.Recons)),
	}
	for _, result := range detail.Results {
		resp.Results = append(resp.Results, httptransport.ResultResponse{
			ResultID:     result.ResultID,
			CandidateID:  result.CandidateID,
			EntryVersion: string(result.EntryVersion),
			Votes:        result.Votes,
			Active:       result.Active,
		})
	}
	for _, recon := range detail.Recons {
		resp.Recons = append(resp.Recons, httptransport.ReconResponse{
			ReconciliationFormID: recon.ReconciliationFormID,
			EntryVersion:         string(recon.EntryVersion),
			Active:               recon.Active,
			IsStamped:            recon.IsStamped,
			BallotsReceived:      recon.NumberBallotsReceived,
			SignaturesInVR:       recon.NumberSignaturesInVR,
			UnusedBallots:        recon.NumberUnusedBallots,
			SpoiledBallots:       recon.NumberSpoiledBallots,
			CancelledBallots:     recon.NumberCancelledBallots,
			BallotsInsideBox:     recon.NumberBallotsInsideBox,
			UnstampedBallots:     recon.NumberUnstampedBallots,
			InvalidVotes:         recon.NumberInvalidVotes,
			ValidVotes:           recon.NumberValidVotes,
			SortedAndCounted:     recon.NumberSortedAndCounted,
			BlankBallots:         recon.NumberBlankBallots,
		})
	}
	return resp, nil
}

func (h Handler) ListFormsHandler(ctx context.Context, filter ports.FormFilter) (httptransport.FormListResponse, error) {
	forms, err := h.FormLists.Execute(ctx, filter)
	if err != nil {
		return httptransport.FormListResponse{}, err
	}
	resp := httptransport.FormListResponse{
		Items: make([]httptransport.FormResponse, 0, len(forms)),
	}
	for _, form := range forms {
		resp.Items = append(resp.Items, mapForm(form))
	}
	return resp, nil
}

func (h Handler) CandidateTotalsHandler(ctx context.Context, tallyID string, topN int) (httptransport.CandidateTotalsResponse, error) {
	standings, err := h.Totals.Execute(ctx, queries.CandidateTotalsQuery{
		TallyID: tallyID,
		TopN:    topN,
	})
	if err != nil {
		return httptransport.CandidateTotalsResponse{}, err
	}
	resp := httptransport.CandidateTotalsResponse{
		Items: make([]httptransport.BallotStandingResponse, 0, len(standings)),
	}
	for _, standing := range standings {
		item := httptransport.BallotStandingResponse{
			BallotID:                 standing.BallotID,
			BallotNumber:             standing.BallotNumber,
			Stations:                 standing.Stations,
			StationsCompleted:        standing.StationsCompleted,
			StationsPercentCompleted: standing.StationsPercentCompleted,
			TopNDiverges:             standing.TopNDiverges,
		}
		for _, total := range standing.Totals {
			item.Totals = append(item.Totals, httptransport.CandidateTotalResponse{
				CandidateID:         total.CandidateID,
				FullName:            total.FullName,
				Order:               total.Order,
				BallotNumber:        total.BallotNumber,
				Votes:               total.Votes,
				VotesWithQuarantine: total.VotesWithQuarantine,
			})
		}
		resp.Items = append(resp.Items, item)
	}
	return resp, nil
}

func (h Handler) DuplicateVotesHandler(ctx context.Context, tallyID string) (httptransport.DuplicateVotesResponse, error) {
	groups, err := h.Duplicates.Execute(ctx, queries.DuplicateVotesQuery{TallyID: tallyID})
	if err != nil {
		return httptransport.DuplicateVotesResponse{}, err
	}
	resp := httptransport.DuplicateVotesResponse{
		Items: make([]httptransport.DuplicateVoteGroupResponse, 0, len(groups)),
	}
	for _, group := range groups {
		resp.Items = append(resp.Items, httptransport.DuplicateVoteGroupResponse{
			CenterID: group.CenterID,
			BallotID: group.BallotID,
			Votes:    group.Votes,
			Barcodes: group.Barcodes,
		})
	}
	return resp, nil
}

func (h Handler) FormHistoryHandler(ctx context.Context, formID string) (httptransport.FormHistoryResponse, error) {
	rows, err := h.History.Execute(ctx, formID)
	if err != nil {
		return httptransport.FormHistoryResponse{}, err
	}
	resp := httptransport.FormHistoryResponse{
		Items: make([]httptransport.FormHistoryRowResponse, 0, len(rows)),
	}
	for _, row := range rows {
		resp.Items = append(resp.Items, httptransport.FormHistoryRowResponse{
			UserID:          row.UserID,
			RecordedAt:      row.RecordedAt.UTC().Format(time.RFC3339),
			PreviousState:   row.PreviousState,
			CurrentState:    row.CurrentState,
			DurationSeconds: row.DurationSeconds,
		})
	}
	return resp, nil
}

// Export handlers stream CSV straight to the response writer.

func (h Handler) ExportCandidateVotesHandler(ctx context.Context, out io.Writer, tallyID string, topN int) error {
	return h.Exports.WriteCandidateVotes(ctx, out, tallyID, topN)
}

func (h Handler) ExportBarcodeResultsHandler(ctx context.Context, out io.Writer, tallyID string) error {
	return h.Exports.WriteBarcodeResults(ctx, out, tallyID)
}

func (h Handler) ExportDuplicateResultsHandler(ctx context.Context, out io.Writer, tallyID string) error {
	return h.Exports.WriteDuplicateResults(ctx, out, tallyID)
}

func (h Handler) ExportFormHistoryHandler(ctx context.Context, out io.Writer, formID string) error {
	return h.Exports.WriteFormHistory(ctx, out, formID)
}

func mapForm(form entities.ResultForm) httptransport.FormResponse {
	return httptransport.FormResponse{
		ResultFormID:      form.ResultFormID,
		TallyID:           form.TallyID,
		Barcode:           form.Barcode,
		SerialNumber:      form.SerialNumber,
		FormState:         string(form.FormState),
		PreviousFormState: string(form.PreviousFormState),
		CenterID:          form.CenterID,
		StationNumber:     form.StationNumber,
		BallotID:          form.BallotID,
		Office:            form.Office,
		Gender:            string(form.Gender),
		Name:              form.Name,
		IsReplacement:     form.IsReplacement,
		RejectedCount:     form.RejectedCount,
		AuditedCount:      form.AuditedCount,
		RejectReason:      form.RejectReason,
	}
}

func mapAudit(audit entities.Audit) httptransport.AuditResponse {
	return httptransport.AuditResponse{
		AuditID:            audit.AuditID,
		ResultFormID:       audit.ResultFormID,
		Active:             audit.Active,
		ForSuperadmin:      audit.ForSuperadmin,
		ReviewedTeam:       audit.ReviewedTeam,
		ReviewedSupervisor: audit.ReviewedSupervisor,
		ActionPrior:        string(audit.ActionPriorToRecommendation),
		Resolution:         string(audit.ResolutionRecommendation),
		TeamComment:        audit.TeamComment,
		SupervisorComment:  audit.SupervisorComment,
		FailedCheckIDs:     audit.FailedQuarantineCheckIDs,
	}
}

func mapClearance(clearance entities.Clearance) httptransport.ClearanceResponse {
	return httptransport.ClearanceResponse{
		ClearanceID:        clearance.ClearanceID,
		ResultFormID:       clearance.ResultFormID,
		Active:             clearance.Active,
		ReviewedTeam:       clearance.ReviewedTeam,
		ReviewedSupervisor: clearance.ReviewedSupervisor,
		ActionPrior:        string(clearance.ActionPriorToRecommendation),
		Resolution:         string(clearance.ResolutionRecommendation),
		TeamComment:        clearance.TeamComment,
		SupervisorComment:  clearance.SupervisorComment,
	}
}

func mapRequest(request entities.WorkflowRequest) httptransport.WorkflowRequestResponse {
	return httptransport.WorkflowRequestResponse{
		RequestID:       request.RequestID,
		ResultFormID:    request.ResultFormID,
		RequestType:     string(request.RequestType),
		Status:          string(request.Status),
		RequesterID:     request.RequesterID,
		RequestReason:   request.RequestReason,
		ApproverID:      request.ApproverID,
		ApprovalComment: request.ApprovalComment,
	}
}

func mapReconRequest(req *httptransport.ReconEntryRequest) *entities.ReconciliationForm {
	if req == nil {
		return nil
	}
	return &entities.ReconciliationForm{
		IsStamped:                        req.IsStamped,
		BallotNumberFrom:                 req.BallotNumberFrom,
		BallotNumberTo:                   req.BallotNumberTo,
		NumberBallotsReceived:            req.NumberBallotsReceived,
		NumberSignaturesInVR:             req.NumberSignaturesInVR,
		NumberUnusedBallots:              req.NumberUnusedBallots,
		NumberSpoiledBallots:             req.NumberSpoiledBallots,
		NumberCancelledBallots:           req.NumberCancelledBallots,
		NumberBallotsOutsideBox:          req.NumberBallotsOutsideBox,
		NumberBallotsInsideBox:           req.NumberBallotsInsideBox,
		NumberBallotsInsideAndOutsideBox: req.NumberBallotsInsideAndOutsideBox,
		NumberUnstampedBallots:           req.NumberUnstampedBallots,
		NumberInvalidVotes:               req.NumberInvalidVotes,
		NumberValidVotes:                 req.NumberValidVotes,
		NumberSortedAndCounted:           req.NumberSortedAndCounted,
		NumberBlankBallots:               req.NumberBlankBallots,
		SignaturePollingOfficer1:         req.SignaturePollingOfficer1,
		SignaturePollingOfficer2:         req.SignaturePollingOfficer2,
		SignaturePollingStationChair:     req.SignaturePollingStationChair,
		SignatureDated:                   req.SignatureDated,
	}
}
