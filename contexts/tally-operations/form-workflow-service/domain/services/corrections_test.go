package services

import (
	"errors"
	"testing"

	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
)

func resultRow(candidateID string, version entities.EntryVersion, votes int) entities.Result {
	return entities.Result{
		CandidateID:  candidateID,
		EntryVersion: version,
		Votes:        votes,
		Active:       true,
	}
}

func TestMatchResultsAgreement(t *testing.T) {
	form := entities.ResultForm{Barcode: "10000001"}
	rows := []entities.Result{
		resultRow("cand-a", entities.EntryVersionDataEntry1, 4),
		resultRow("cand-b", entities.EntryVersionDataEntry1, 1),
		resultRow("cand-a", entities.EntryVersionDataEntry2, 4),
		resultRow("cand-b", entities.EntryVersionDataEntry2, 1),
	}
	matched, mismatched, err := MatchResults(form, rows)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(matched) != 2 || len(mismatched) != 0 {
		t.Fatalf("expected full agreement, got %d matched / %d mismatched",
			len(matched), len(mismatched))
	}
}

func TestMatchResultsMismatch(t *testing.T) {
	form := entities.ResultForm{Barcode: "10000001"}
	rows := []entities.Result{
		resultRow("cand-a", entities.EntryVersionDataEntry1, 2),
		resultRow("cand-b", entities.EntryVersionDataEntry1, 3),
		resultRow("cand-a", entities.EntryVersionDataEntry2, 2),
		resultRow("cand-b", entities.EntryVersionDataEntry2, 4),
	}
	matched, mismatched, err := MatchResults(form, rows)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(matched) != 1 || matched[0].CandidateID != "cand-a" {
		t.Fatalf("unexpected matched rows %v", matched)
	}
	if len(mismatched) != 1 {
		t.Fatalf("expected one mismatch, got %v", mismatched)
	}
	mm := mismatched[0]
	if mm.CandidateID != "cand-b" || mm.Votes1 != 3 || mm.Votes2 != 4 {
		t.Fatalf("unexpected mismatch %+v", mm)
	}
}

func TestMatchResultsMissingEntryIsSuspicious(t *testing.T) {
	form := entities.ResultForm{Barcode: "10000001"}
	rows := []entities.Result{
		resultRow("cand-a", entities.EntryVersionDataEntry1, 2),
	}
	_, _, err := MatchResults(form, rows)
	if !errors.Is(err, domainerrors.ErrSuspiciousOperation) {
		t.Fatalf("expected suspicious operation, got %v", err)
	}
	var reject *SuspiciousReject
	if errors.As(err, &reject) {
		t.Fatalf("missing entries must not carry a reject target")
	}
}

func TestMatchResultsCardinalityMismatchRejects(t *testing.T) {
	form := entities.ResultForm{Barcode: "10000001"}
	rows := []entities.Result{
		resultRow("cand-a", entities.EntryVersionDataEntry1, 2),
		resultRow("cand-b", entities.EntryVersionDataEntry1, 3),
		resultRow("cand-a", entities.EntryVersionDataEntry2, 2),
	}
	_, _, err := MatchResults(form, rows)
	var reject *SuspiciousReject
	if !errors.As(err, &reject) {
		t.Fatalf("expected tagged reject, got %v", err)
	}
	if reject.NewState != entities.FormStateDataEntry1 {
		t.Fatalf("unexpected reject target %s", reject.NewState)
	}
	if !errors.Is(err, domainerrors.ErrSuspiciousOperation) {
		t.Fatalf("reject must unwrap to the suspicious sentinel")
	}
}

func TestMatchResultsIgnoresInactiveRows(t *testing.T) {
	form := entities.ResultForm{Barcode: "10000001"}
	stale := resultRow("cand-a", entities.EntryVersionDataEntry2, 99)
	stale.Active = false
	rows := []entities.Result{
		resultRow("cand-a", entities.EntryVersionDataEntry1, 2),
		resultRow("cand-a", entities.EntryVersionDataEntry2, 2),
		stale,
	}
	matched, mismatched, err := MatchResults(form, rows)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(matched) != 1 || len(mismatched) != 0 {
		t.Fatalf("inactive row leaked into matching: %v / %v", matched, mismatched)
	}
}

func TestMatchResultsFirstEntryOnlyCandidateMismatches(t *testing.T) {
	form := entities.ResultForm{Barcode: "10000001"}
	rows := []entities.Result{
		resultRow("cand-a", entities.EntryVersionDataEntry1, 2),
		resultRow("cand-c", entities.EntryVersionDataEntry1, 5),
		resultRow("cand-a", entities.EntryVersionDataEntry2, 2),
		resultRow("cand-b", entities.EntryVersionDataEntry2, 5),
	}
	matched, mismatched, err := MatchResults(form, rows)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(matched) != 1 || matched[0].CandidateID != "cand-a" {
		t.Fatalf("unexpected matched rows %v", matched)
	}
	byCandidate := map[string]VoteMismatch{}
	for _, mm := range mismatched {
		byCandidate[mm.CandidateID] = mm
	}
	if len(byCandidate) != 2 {
		t.Fatalf("expected both one-sided candidates flagged, got %v", mismatched)
	}
	if mm := byCandidate["cand-b"]; mm.Votes1 != 0 || mm.Votes2 != 5 {
		t.Fatalf("unexpected second-entry-only mismatch %+v", mm)
	}
	if mm := byCandidate["cand-c"]; mm.Votes1 != 5 || mm.Votes2 != 0 {
		t.Fatalf("unexpected first-entry-only mismatch %+v", mm)
	}
}

func TestMatchReconForms(t *testing.T) {
	first := entities.ReconciliationForm{
		NumberBallotsReceived: 100,
		NumberValidVotes:      90,
		IsStamped:             true,
	}
	second := first
	if mismatches := MatchReconForms(first, second); len(mismatches) != 0 {
		t.Fatalf("identical ledgers must not mismatch: %v", mismatches)
	}

	second.NumberValidVotes = 85
	second.IsStamped = false
	mismatches := MatchReconForms(first, second)
	if len(mismatches) != 2 {
		t.Fatalf("expected two mismatches, got %v", mismatches)
	}
	fields := map[string]bool{}
	for _, mm := range mismatches {
		fields[mm.Field] = true
	}
	if !fields["number_valid_votes"] || !fields["is_stamped"] {
		t.Fatalf("unexpected mismatch fields %v", fields)
	}
}

func TestArbitrateRecon(t *testing.T) {
	first := entities.ReconciliationForm{
		NumberBallotsReceived: 100,
		NumberValidVotes:      90,
	}
	second := first
	second.NumberValidVotes = 85

	final, err := ArbitrateRecon(first, second, map[string]any{
		"number_valid_votes": 85,
	})
	if err != nil {
		t.Fatalf("arbitrate: %v", err)
	}
	if final.NumberValidVotes != 85 {
		t.Fatalf("resolution not applied: %d", final.NumberValidVotes)
	}
	if final.NumberBallotsReceived != 100 {
		t.Fatalf("matching field should carry the first capture: %d", final.NumberBallotsReceived)
	}
	if final.EntryVersion != entities.EntryVersionFinal {
		t.Fatalf("final ledger must carry the final version, got %s", final.EntryVersion)
	}
}

func TestArbitrateReconRequiresAllResolutions(t *testing.T) {
	first := entities.ReconciliationForm{NumberValidVotes: 90}
	second := entities.ReconciliationForm{NumberValidVotes: 85}
	_, err := ArbitrateRecon(first, second, nil)
	if !errors.Is(err, domainerrors.ErrUnresolvedCorrections) {
		t.Fatalf("expected unresolved corrections, got %v", err)
	}
}
