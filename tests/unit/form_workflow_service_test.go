package unit

import (
	"context"
	"errors"
	"strings"
	"testing"

	formworkflow "quorum/contexts/tally-operations/form-workflow-service"
	"quorum/contexts/tally-operations/form-workflow-service/adapters/memory"
	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	formerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
	"quorum/contexts/tally-operations/form-workflow-service/domain/services"
	tallytransport "quorum/contexts/tally-operations/form-workflow-service/transport/http"
)

const (
	testTallyID  = "tally-1"
	testCenterID = "center-1"
	testBallotID = "ballot-1"
)

func newWorkflowModule() formworkflow.Module {
	return formworkflow.NewInMemoryModule(nil, 10000000, 80001)
}

func registrantsPtr(n int) *int { return &n }

// seedElection wires one tally, one in-country center with a single station,
// and a two-candidate ballot bound to the center's general race.
func seedElection(t *testing.T, store *memory.Store, registrants *int) {
	t.Helper()
	store.SeedTally(entities.Tally{
		TallyID:                    testTallyID,
		Name:                       "General Election",
		Active:                     true,
		PrintCoverInQualityControl: true,
	})
	store.SeedCenter(entities.Center{
		CenterID:        testCenterID,
		TallyID:         testTallyID,
		Code:            12345,
		Name:            "Central School",
		CenterType:      entities.CenterTypeGeneral,
		Active:          true,
		BallotGeneralID: testBallotID,
	})
	store.SeedStation(entities.Station{
		StationID:     "station-1",
		CenterID:      testCenterID,
		TallyID:       testTallyID,
		StationNumber: 1,
		Registrants:   registrants,
		Active:        true,
	})
	store.SeedBallot(entities.Ballot{
		BallotID:            testBallotID,
		TallyID:             testTallyID,
		Number:              1,
		ElectionLevel:       entities.ElectionLevelPresidential,
		BallotName:          "presidential",
		AvailableForRelease: true,
		Active:              true,
	})
	store.SeedCandidate(entities.Candidate{
		CandidateID: "cand-a", BallotID: testBallotID, TallyID: testTallyID,
		FullName: "Candidate A", Order: 1, Active: true,
	})
	store.SeedCandidate(entities.Candidate{
		CandidateID: "cand-b", BallotID: testBallotID, TallyID: testTallyID,
		FullName: "Candidate B", Order: 2, Active: true,
	})
}

func seedWorkflowForm(t *testing.T, store *memory.Store, formID, barcode string, state entities.FormState) {
	t.Helper()
	err := store.CreateForm(context.Background(), entities.ResultForm{
		ResultFormID:  formID,
		TallyID:       testTallyID,
		Barcode:       barcode,
		FormState:     state,
		CenterID:      testCenterID,
		StationNumber: registrantsPtr(1),
		BallotID:      testBallotID,
	})
	if err != nil {
		t.Fatalf("seed form %s: %v", formID, err)
	}
}

func ballotLedger() *tallytransport.ReconEntryRequest {
	return &tallytransport.ReconEntryRequest{
		IsStamped:                    true,
		NumberBallotsReceived:        30,
		NumberBallotsInsideBox:       5,
		NumberValidVotes:             5,
		NumberSortedAndCounted:       5,
		SignaturePollingOfficer1:     true,
		SignaturePollingOfficer2:     true,
		SignaturePollingStationChair: true,
		SignatureDated:               true,
	}
}

func candidateVotes(a, b int) []tallytransport.VoteEntryRequest {
	return []tallytransport.VoteEntryRequest{
		{CandidateID: "cand-a", Votes: a},
		{CandidateID: "cand-b", Votes: b},
	}
}

// driveToCorrection scans the form through intake and both data entry
// stations, leaving it at the corrections desk.
func driveToCorrection(
	t *testing.T,
	module formworkflow.Module,
	formID string,
	de1, de2 []tallytransport.VoteEntryRequest,
	de1Recon, de2Recon *tallytransport.ReconEntryRequest,
) {
	t.Helper()
	ctx := context.Background()

	if _, err := module.Handler.IntakeHandler(ctx, "intake-user", []string{services.RoleIntakeClerk}, formID); err != nil {
		t.Fatalf("intake: %v", err)
	}
	if _, err := module.Handler.ConfirmIntakeHandler(ctx, "intake-user", []string{services.RoleIntakeClerk}, formID,
		tallytransport.ConfirmIntakeRequest{IsMatch: true}); err != nil {
		t.Fatalf("confirm intake: %v", err)
	}
	if _, err := module.Handler.SubmitDataEntryHandler(ctx, "de1-user", []string{services.RoleDataEntry1Clerk}, formID,
		tallytransport.SubmitDataEntryRequest{Votes: de1, Recon: de1Recon, ProcessingTimeSeconds: 40}); err != nil {
		t.Fatalf("data entry 1: %v", err)
	}
	if _, err := module.Handler.SubmitDataEntryHandler(ctx, "de2-user", []string{services.RoleDataEntry2Clerk}, formID,
		tallytransport.SubmitDataEntryRequest{Votes: de2, Recon: de2Recon, ProcessingTimeSeconds: 35}); err != nil {
		t.Fatalf("data entry 2: %v", err)
	}
}

func finalVoteCounts(t *testing.T, module formworkflow.Module, formID string) map[string]int {
	t.Helper()
	detail, err := module.Handler.GetFormHandler(context.Background(), formID)
	if err != nil {
		t.Fatalf("get form: %v", err)
	}
	counts := make(map[string]int)
	for _, row := range detail.Results {
		if row.Active && row.EntryVersion == string(entities.EntryVersionFinal) {
			counts[row.CandidateID] = row.Votes
		}
	}
	return counts
}

func TestWorkflowNormalPathArchivesForm(t *testing.T) {
	ctx := context.Background()
	module := newWorkflowModule()
	seedElection(t, module.Store, registrantsPtr(500))
	seedWorkflowForm(t, module.Store, "form-1", "10000001", entities.FormStateUnsubmitted)

	driveToCorrection(t, module, "form-1",
		candidateVotes(4, 1), candidateVotes(4, 1), ballotLedger(), ballotLedger())

	form, err := module.Handler.SubmitCorrectionsHandler(ctx, "corr-user",
		[]string{services.RoleCorrectionsClerk}, "form-1", tallytransport.SubmitCorrectionsRequest{})
	if err != nil {
		t.Fatalf("corrections: %v", err)
	}
	if form.FormState != string(entities.FormStateQualityControl) {
		t.Fatalf("expected quality_control after corrections, got %s", form.FormState)
	}

	verdict, err := module.Handler.QualityControlHandler(ctx, "qc-user",
		[]string{services.RoleQualityControlClerk}, "form-1",
		tallytransport.QualityControlRequest{Decision: "correct", PassedReconciliation: true})
	if err != nil {
		t.Fatalf("quality control: %v", err)
	}
	if verdict.Form.FormState != string(entities.FormStateArchived) {
		t.Fatalf("expected archived form, got %s", verdict.Form.FormState)
	}
	if !verdict.PrintCover {
		t.Fatalf("expected archive cover sheet for cover-print tally")
	}

	counts := finalVoteCounts(t, module, "form-1")
	if counts["cand-a"] != 4 || counts["cand-b"] != 1 {
		t.Fatalf("unexpected final counts: %v", counts)
	}
	total := counts["cand-a"] + counts["cand-b"]
	if total != 5 {
		t.Fatalf("expected 5 total votes, got %d", total)
	}
}

func TestWorkflowMismatchArbitrationChargesSecondEntry(t *testing.T) {
	ctx := context.Background()
	module := newWorkflowModule()
	seedElection(t, module.Store, registrantsPtr(500))
	seedWorkflowForm(t, module.Store, "form-1", "10000001", entities.FormStateUnsubmitted)

	driveToCorrection(t, module, "form-1",
		candidateVotes(2, 3), candidateVotes(2, 4), ballotLedger(), ballotLedger())

	preview, err := module.Handler.CorrectionsPreviewHandler(ctx, "corr-user",
		[]string{services.RoleCorrectionsClerk}, "form-1")
	if err != nil {
		t.Fatalf("corrections preview: %v", err)
	}
	if len(preview.VoteMismatches) != 1 || preview.VoteMismatches[0].CandidateID != "cand-b" {
		t.Fatalf("expected one mismatch on cand-b, got %v", preview.VoteMismatches)
	}

	form, err := module.Handler.SubmitCorrectionsHandler(ctx, "corr-user",
		[]string{services.RoleCorrectionsClerk}, "form-1", tallytransport.SubmitCorrectionsRequest{
			VoteResolutions: map[string]int{"cand-b": 3},
		})
	if err != nil {
		t.Fatalf("corrections: %v", err)
	}
	if form.FormState != string(entities.FormStateQualityControl) {
		t.Fatalf("expected quality_control, got %s", form.FormState)
	}

	counts := finalVoteCounts(t, module, "form-1")
	if counts["cand-a"] != 2 || counts["cand-b"] != 3 {
		t.Fatalf("unexpected final counts: %v", counts)
	}

	stats, ok, err := module.Store.LatestStatsByRole(ctx, "form-1", services.RoleDataEntry2Clerk)
	if err != nil || !ok {
		t.Fatalf("expected data entry 2 stats row, ok=%v err=%v", ok, err)
	}
	if stats.DataEntryErrors != 1 {
		t.Fatalf("expected 1 data entry 2 error, got %d", stats.DataEntryErrors)
	}

	de1Stats, ok, err := module.Store.LatestStatsByRole(ctx, "form-1", services.RoleDataEntry1Clerk)
	if err != nil || !ok {
		t.Fatalf("expected data entry 1 stats row, ok=%v err=%v", ok, err)
	}
	if de1Stats.DataEntryErrors != 0 {
		t.Fatalf("expected no data entry 1 errors, got %d", de1Stats.DataEntryErrors)
	}
}

func TestWorkflowAllZeroSubmissionAutoClears(t *testing.T) {
	ctx := context.Background()
	module := newWorkflowModule()
	seedElection(t, module.Store, registrantsPtr(500))
	seedWorkflowForm(t, module.Store, "form-1", "10000001", entities.FormStateUnsubmitted)

	if _, err := module.Handler.IntakeHandler(ctx, "intake-user", []string{services.RoleIntakeClerk}, "form-1"); err != nil {
		t.Fatalf("intake: %v", err)
	}
	if _, err := module.Handler.ConfirmIntakeHandler(ctx, "intake-user", []string{services.RoleIntakeClerk}, "form-1",
		tallytransport.ConfirmIntakeRequest{IsMatch: true}); err != nil {
		t.Fatalf("confirm intake: %v", err)
	}

	_, err := module.Handler.SubmitDataEntryHandler(ctx, "de1-user", []string{services.RoleDataEntry1Clerk}, "form-1",
		tallytransport.SubmitDataEntryRequest{Votes: candidateVotes(0, 0), Recon: &tallytransport.ReconEntryRequest{}})
	if !errors.Is(err, formerrors.ErrAutoCleared) {
		t.Fatalf("expected ErrAutoCleared, got %v", err)
	}

	detail, err := module.Handler.GetFormHandler(ctx, "form-1")
	if err != nil {
		t.Fatalf("get form: %v", err)
	}
	if detail.Form.FormState != string(entities.FormStateClearance) {
		t.Fatalf("expected clearance state, got %s", detail.Form.FormState)
	}
	if !strings.Contains(detail.Form.RejectReason, "All candidate votes are blank or zero") {
		t.Fatalf("unexpected reject reason: %q", detail.Form.RejectReason)
	}

	clearance, err := module.Store.ActiveClearance(ctx, "form-1")
	if err != nil {
		t.Fatalf("expected active clearance case: %v", err)
	}
	if clearance.UserID != "de1-user" {
		t.Fatalf("clearance should record the submitting clerk, got %s", clearance.UserID)
	}
	if !strings.Contains(clearance.TeamComment, "All candidate votes are blank or zero") {
		t.Fatalf("unexpected clearance comment: %q", clearance.TeamComment)
	}
}

func TestWorkflowOvervoteQuarantineRoutesToAudit(t *testing.T) {
	ctx := context.Background()
	module := newWorkflowModule()
	seedElection(t, module.Store, registrantsPtr(21))
	seedWorkflowForm(t, module.Store, "form-1", "10000001", entities.FormStateUnsubmitted)

	_, err := module.Handler.ConfigureQuarantineHandler(ctx, "manager-user",
		[]string{services.RoleTallyManager}, tallytransport.ConfigureQuarantineRequest{
			TallyID:    testTallyID,
			Name:       "Overvote guard",
			Method:     string(entities.QuarantineMethodOvervote),
			Value:      10,
			Percentage: 100,
			Active:     true,
		})
	if err != nil {
		t.Fatalf("configure quarantine: %v", err)
	}

	ledger := ballotLedger()
	ledger.NumberUnstampedBallots = 1000
	driveToCorrection(t, module, "form-1",
		candidateVotes(4, 1), candidateVotes(4, 1), ledger, ledger)

	if _, err := module.Handler.SubmitCorrectionsHandler(ctx, "corr-user",
		[]string{services.RoleCorrectionsClerk}, "form-1", tallytransport.SubmitCorrectionsRequest{}); err != nil {
		t.Fatalf("corrections: %v", err)
	}

	verdict, err := module.Handler.QualityControlHandler(ctx, "qc-user",
		[]string{services.RoleQualityControlClerk}, "form-1",
		tallytransport.QualityControlRequest{Decision: "correct", PassedReconciliation: true})
	if err != nil {
		t.Fatalf("quality control: %v", err)
	}
	if verdict.Form.FormState != string(entities.FormStateAudit) {
		t.Fatalf("expected audit state after failed check, got %s", verdict.Form.FormState)
	}
	if verdict.Form.AuditedCount != 1 {
		t.Fatalf("expected audited_count 1, got %d", verdict.Form.AuditedCount)
	}
	if verdict.PrintCover {
		t.Fatalf("quarantined form must not print an archive cover")
	}

	audit, err := module.Store.ActiveAudit(ctx, "form-1")
	if err != nil {
		t.Fatalf("expected active audit: %v", err)
	}
	if len(audit.FailedQuarantineCheckIDs) != 1 {
		t.Fatalf("expected one failed check link, got %v", audit.FailedQuarantineCheckIDs)
	}
}

func TestWorkflowDuplicateIntakeRoutesBothToClearance(t *testing.T) {
	ctx := context.Background()
	module := newWorkflowModule()
	seedElection(t, module.Store, registrantsPtr(500))
	seedWorkflowForm(t, module.Store, "form-1", "10000001", entities.FormStateDataEntry1)
	seedWorkflowForm(t, module.Store, "form-2", "10000002", entities.FormStateUnsubmitted)

	resp, err := module.Handler.IntakeHandler(ctx, "intake-user", []string{services.RoleIntakeClerk}, "form-2")
	if !errors.Is(err, formerrors.ErrDuplicateBlocked) {
		t.Fatalf("expected ErrDuplicateBlocked, got %v", err)
	}
	if !resp.Duplicate {
		t.Fatalf("expected duplicate flag on intake response")
	}

	for _, formID := range []string{"form-1", "form-2"} {
		detail, err := module.Handler.GetFormHandler(ctx, formID)
		if err != nil {
			t.Fatalf("get form %s: %v", formID, err)
		}
		if detail.Form.FormState != string(entities.FormStateClearance) {
			t.Fatalf("expected %s in clearance, got %s", formID, detail.Form.FormState)
		}
		if detail.Form.RejectReason != "INTAKE_DUPLICATE" {
			t.Fatalf("expected INTAKE_DUPLICATE marker on %s, got %q", formID, detail.Form.RejectReason)
		}
	}
}

func TestWorkflowApprovedRecallReopensAudit(t *testing.T) {
	ctx := context.Background()
	module := newWorkflowModule()
	seedElection(t, module.Store, registrantsPtr(500))
	seedWorkflowForm(t, module.Store, "form-1", "10000001", entities.FormStateArchived)

	request, err := module.Handler.RequestRecallHandler(ctx, "audit-user",
		[]string{services.RoleAuditClerk}, "form-1", tallytransport.RequestRecallRequest{
			Reason: "tally figures look transposed",
		})
	if err != nil {
		t.Fatalf("request recall: %v", err)
	}
	if request.Status != string(entities.RequestStatusPending) {
		t.Fatalf("expected pending request, got %s", request.Status)
	}

	resolved, err := module.Handler.ResolveRecallHandler(ctx, "manager-user",
		[]string{services.RoleTallyManager}, request.RequestID, tallytransport.ResolveRecallRequest{
			Approve: true,
			Comment: "re-check tallies",
		})
	if err != nil {
		t.Fatalf("resolve recall: %v", err)
	}
	if resolved.Status != string(entities.RequestStatusApproved) {
		t.Fatalf("expected approved request, got %s", resolved.Status)
	}

	detail, err := module.Handler.GetFormHandler(ctx, "form-1")
	if err != nil {
		t.Fatalf("get form: %v", err)
	}
	if detail.Form.FormState != string(entities.FormStateAudit) {
		t.Fatalf("expected form back in audit, got %s", detail.Form.FormState)
	}
	if detail.Form.RejectReason != "re-check tallies" {
		t.Fatalf("expected approval comment as reject reason, got %q", detail.Form.RejectReason)
	}
	if detail.Form.AuditedCount != 1 {
		t.Fatalf("expected audited_count 1, got %d", detail.Form.AuditedCount)
	}

	audit, err := module.Store.ActiveAudit(ctx, "form-1")
	if err != nil {
		t.Fatalf("expected active audit: %v", err)
	}
	if audit.UserID != "manager-user" {
		t.Fatalf("audit should record the approver, got %s", audit.UserID)
	}
	if audit.TeamComment != "tally figures look transposed" {
		t.Fatalf("audit should carry the request reason, got %q", audit.TeamComment)
	}

	stored, err := module.Store.GetRequest(ctx, request.RequestID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if stored.Status != entities.RequestStatusApproved {
		t.Fatalf("expected stored request approved, got %s", stored.Status)
	}
	if stored.ResolvedAt == nil {
		t.Fatalf("expected resolved_date set on approval")
	}
}

func TestWorkflowRejectsRolesOutsideStation(t *testing.T) {
	ctx := context.Background()
	module := newWorkflowModule()
	seedElection(t, module.Store, registrantsPtr(500))
	seedWorkflowForm(t, module.Store, "form-1", "10000001", entities.FormStateUnsubmitted)

	if _, err := module.Handler.IntakeHandler(ctx, "de1-user",
		[]string{services.RoleDataEntry1Clerk}, "form-1"); !errors.Is(err, formerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for data entry clerk at intake, got %v", err)
	}

	driveToCorrection(t, module, "form-1",
		candidateVotes(4, 1), candidateVotes(4, 1), ballotLedger(), ballotLedger())

	// The form now sits at corrections; a second-station clerk has the
	// data entry gate but not the corrections gate.
	if _, err := module.Handler.SubmitCorrectionsHandler(ctx, "de2-user",
		[]string{services.RoleDataEntry2Clerk}, "form-1",
		tallytransport.SubmitCorrectionsRequest{}); !errors.Is(err, formerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for data entry clerk at corrections, got %v", err)
	}
}

func TestWorkflowBlankSecondEntryRoutesToCorrection(t *testing.T) {
	ctx := context.Background()
	module := newWorkflowModule()
	seedElection(t, module.Store, registrantsPtr(500))
	seedWorkflowForm(t, module.Store, "form-1", "10000001", entities.FormStateUnsubmitted)

	if _, err := module.Handler.IntakeHandler(ctx, "intake-user", []string{services.RoleIntakeClerk}, "form-1"); err != nil {
		t.Fatalf("intake: %v", err)
	}
	if _, err := module.Handler.ConfirmIntakeHandler(ctx, "intake-user", []string{services.RoleIntakeClerk}, "form-1",
		tallytransport.ConfirmIntakeRequest{IsMatch: true}); err != nil {
		t.Fatalf("confirm intake: %v", err)
	}
	if _, err := module.Handler.SubmitDataEntryHandler(ctx, "de1-user", []string{services.RoleDataEntry1Clerk}, "form-1",
		tallytransport.SubmitDataEntryRequest{Votes: candidateVotes(4, 1), Recon: ballotLedger()}); err != nil {
		t.Fatalf("data entry 1: %v", err)
	}

	// A blank second capture against a non-blank first one is a keying
	// disagreement for the corrections desk, not an all-zero clearance.
	if _, err := module.Handler.SubmitDataEntryHandler(ctx, "de2-user", []string{services.RoleDataEntry2Clerk}, "form-1",
		tallytransport.SubmitDataEntryRequest{Votes: candidateVotes(0, 0),
			Recon: &tallytransport.ReconEntryRequest{}}); err != nil {
		t.Fatalf("data entry 2: %v", err)
	}

	detail, err := module.Handler.GetFormHandler(ctx, "form-1")
	if err != nil {
		t.Fatalf("get form: %v", err)
	}
	if detail.Form.FormState != string(entities.FormStateCorrection) {
		t.Fatalf("expected correction state, got %s", detail.Form.FormState)
	}
	if detail.Form.RejectReason != "" {
		t.Fatalf("blank second entry must not record a reject reason, got %q", detail.Form.RejectReason)
	}
}

func TestWorkflowDuplicateVoteQueryFlagsCopiedCaptures(t *testing.T) {
	ctx := context.Background()
	module := newWorkflowModule()
	seedElection(t, module.Store, registrantsPtr(500))
	module.Store.SeedStation(entities.Station{
		StationID:     "station-2",
		CenterID:      testCenterID,
		TallyID:       testTallyID,
		StationNumber: 2,
		Registrants:   registrantsPtr(500),
		Active:        true,
	})
	seedWorkflowForm(t, module.Store, "form-1", "10000001", entities.FormStateUnsubmitted)
	if err := module.Store.CreateForm(ctx, entities.ResultForm{
		ResultFormID:  "form-2",
		TallyID:       testTallyID,
		Barcode:       "10000002",
		FormState:     entities.FormStateUnsubmitted,
		CenterID:      testCenterID,
		StationNumber: registrantsPtr(2),
		BallotID:      testBallotID,
	}); err != nil {
		t.Fatalf("seed form-2: %v", err)
	}

	for _, formID := range []string{"form-1", "form-2"} {
		driveToCorrection(t, module, formID,
			candidateVotes(4, 1), candidateVotes(4, 1), ballotLedger(), ballotLedger())
		if _, err := module.Handler.SubmitCorrectionsHandler(ctx, "corr-user",
			[]string{services.RoleCorrectionsClerk}, formID, tallytransport.SubmitCorrectionsRequest{}); err != nil {
			t.Fatalf("corrections %s: %v", formID, err)
		}
		if _, err := module.Handler.QualityControlHandler(ctx, "qc-user",
			[]string{services.RoleQualityControlClerk}, formID,
			tallytransport.QualityControlRequest{Decision: "correct", PassedReconciliation: true}); err != nil {
			t.Fatalf("quality control %s: %v", formID, err)
		}
	}

	resp, err := module.Handler.DuplicateVotesHandler(ctx, testTallyID)
	if err != nil {
		t.Fatalf("duplicate votes: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected one duplicate group, got %v", resp.Items)
	}
	group := resp.Items[0]
	if group.CenterID != testCenterID || group.BallotID != testBallotID {
		t.Fatalf("unexpected group target %s/%s", group.CenterID, group.BallotID)
	}
	if len(group.Barcodes) != 2 || group.Barcodes[0] != "10000001" || group.Barcodes[1] != "10000002" {
		t.Fatalf("unexpected barcodes %v", group.Barcodes)
	}
	if len(group.Votes) != 2 || group.Votes[0] != 4 || group.Votes[1] != 1 {
		t.Fatalf("unexpected vote vector %v", group.Votes)
	}
}

func TestWorkflowSuperAdminReopensArchivedFormForAudit(t *testing.T) {
	ctx := context.Background()
	module := newWorkflowModule()
	seedElection(t, module.Store, registrantsPtr(500))
	seedWorkflowForm(t, module.Store, "form-1", "10000001", entities.FormStateArchived)

	// The archive gate is reserved for the super administrator.
	if _, err := module.Handler.CreateAuditHandler(ctx, "audit-user",
		[]string{services.RoleAuditClerk}, "form-1"); !errors.Is(err, formerrors.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for audit clerk on archived form, got %v", err)
	}

	audit, err := module.Handler.CreateAuditHandler(ctx, "admin-user",
		[]string{services.RoleSuperAdministrator}, "form-1")
	if err != nil {
		t.Fatalf("create audit: %v", err)
	}
	if !audit.Active {
		t.Fatalf("expected active audit case")
	}

	detail, err := module.Handler.GetFormHandler(ctx, "form-1")
	if err != nil {
		t.Fatalf("get form: %v", err)
	}
	if detail.Form.FormState != string(entities.FormStateAudit) {
		t.Fatalf("expected audit state, got %s", detail.Form.FormState)
	}
	if detail.Form.AuditedCount != 1 {
		t.Fatalf("expected audited_count 1, got %d", detail.Form.AuditedCount)
	}
}

func TestWorkflowAuditFieldActionHoldsFormInAudit(t *testing.T) {
	ctx := context.Background()
	module := newWorkflowModule()
	seedElection(t, module.Store, registrantsPtr(500))
	seedWorkflowForm(t, module.Store, "form-1", "10000001", entities.FormStateUnsubmitted)

	driveToCorrection(t, module, "form-1",
		candidateVotes(4, 1), candidateVotes(4, 1), ballotLedger(), ballotLedger())

	if _, err := module.Handler.CreateAuditHandler(ctx, "audit-user",
		[]string{services.RoleAuditClerk}, "form-1"); err != nil {
		t.Fatalf("create audit: %v", err)
	}
	if _, err := module.Handler.AuditReviewHandler(ctx, "audit-user",
		[]string{services.RoleAuditClerk}, "form-1", tallytransport.AuditReviewRequest{
			Action:         "review_team",
			UnclearFigures: true,
			ActionPrior:    string(entities.ActionPriorRequestCopyFromField),
			Resolution:     string(entities.AuditResolutionClarifiedFiguresToDE1),
			Comment:        "await legible copy from the field",
		}); err != nil {
		t.Fatalf("audit review: %v", err)
	}
	if _, err := module.Handler.AuditReviewHandler(ctx, "audit-super",
		[]string{services.RoleAuditSupervisor}, "form-1", tallytransport.AuditReviewRequest{
			Action: "implement",
		}); err != nil {
		t.Fatalf("audit implement: %v", err)
	}

	detail, err := module.Handler.GetFormHandler(ctx, "form-1")
	if err != nil {
		t.Fatalf("get form: %v", err)
	}
	if detail.Form.FormState != string(entities.FormStateAudit) {
		t.Fatalf("expected form held in audit, got %s", detail.Form.FormState)
	}
	// Waiting on the field still charges a fresh audit round.
	if detail.Form.AuditedCount != 2 {
		t.Fatalf("expected audited_count 2, got %d", detail.Form.AuditedCount)
	}
	for _, row := range detail.Results {
		if row.Active {
			t.Fatalf("expected captures retired while awaiting the field, found %+v", row)
		}
	}
	if _, err := module.Store.ActiveAudit(ctx, "form-1"); err != nil {
		t.Fatalf("field action must keep the audit case open: %v", err)
	}
}

func TestWorkflowClearanceCreateRejectsForm(t *testing.T) {
	ctx := context.Background()
	module := newWorkflowModule()
	seedElection(t, module.Store, registrantsPtr(500))
	seedWorkflowForm(t, module.Store, "form-1", "10000001", entities.FormStateUnsubmitted)

	driveToCorrection(t, module, "form-1",
		candidateVotes(4, 1), candidateVotes(4, 1), ballotLedger(), ballotLedger())

	resp, err := module.Handler.CreateClearanceHandler(ctx, "clear-user",
		[]string{services.RoleClearanceClerk}, "form-1", tallytransport.CreateClearanceRequest{
			UserName: "Clearance Desk",
		})
	if err != nil {
		t.Fatalf("create clearance: %v", err)
	}
	if !strings.Contains(resp.TeamComment, "Clearance case created by user Clearance Desk") {
		t.Fatalf("unexpected clearance comment %q", resp.TeamComment)
	}

	detail, err := module.Handler.GetFormHandler(ctx, "form-1")
	if err != nil {
		t.Fatalf("get form: %v", err)
	}
	if detail.Form.FormState != string(entities.FormStateClearance) {
		t.Fatalf("expected clearance state, got %s", detail.Form.FormState)
	}
	if detail.Form.RejectedCount != 1 {
		t.Fatalf("expected rejected_count 1, got %d", detail.Form.RejectedCount)
	}
	if !strings.Contains(detail.Form.RejectReason, "Clearance case created by user Clearance Desk") {
		t.Fatalf("unexpected reject reason %q", detail.Form.RejectReason)
	}
	for _, row := range detail.Results {
		if row.Active {
			t.Fatalf("expected captured results retired, found %+v", row)
		}
	}

	clearance, err := module.Store.ActiveClearance(ctx, "form-1")
	if err != nil {
		t.Fatalf("expected active clearance case: %v", err)
	}
	if clearance.UserID != "clear-user" {
		t.Fatalf("clearance should record the creating clerk, got %s", clearance.UserID)
	}
}
