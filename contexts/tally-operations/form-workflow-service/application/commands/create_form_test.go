package commands

import (
	"context"
	"errors"
	"testing"

	"quorum/contexts/tally-operations/form-workflow-service/adapters/memory"
	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
	"quorum/contexts/tally-operations/form-workflow-service/domain/services"
)

func TestCreateFormStartsAtConfiguredBarcode(t *testing.T) {
	store := memory.NewStore()
	uc := CreateFormUseCase{
		Forms:        store,
		Clock:        memory.SystemClock{},
		IDGen:        memory.UUIDGenerator{},
		Revisions:    store,
		StartBarcode: 10000000,
	}
	form, err := uc.Execute(context.Background(), CreateFormCommand{
		TallyID:       "tally-1",
		Actor:         services.Actor{UserID: "admin"},
		BallotID:      "ballot-1",
		IsReplacement: true,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if form.Barcode != "10000001" {
		t.Fatalf("unexpected barcode %s", form.Barcode)
	}
	if form.FormState != entities.FormStateUnsubmitted {
		t.Fatalf("new forms start unsubmitted, got %s", form.FormState)
	}
	if form.HasCenter() {
		t.Fatalf("replacement forms must not be pre-assigned a center")
	}
}

func TestCreateFormContinuesFromHighestBarcode(t *testing.T) {
	store := memory.NewStore()
	seedForm(t, store, entities.ResultForm{
		ResultFormID: "form-1",
		TallyID:      "tally-1",
		Barcode:      "10000489",
		FormState:    entities.FormStateArchived,
	})

	uc := CreateFormUseCase{
		Forms:        store,
		Clock:        memory.SystemClock{},
		IDGen:        memory.UUIDGenerator{},
		Revisions:    store,
		StartBarcode: 10000000,
	}
	form, err := uc.Execute(context.Background(), CreateFormCommand{
		TallyID:  "tally-1",
		Actor:    services.Actor{UserID: "admin"},
		BallotID: "ballot-1",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if form.Barcode != "10000490" {
		t.Fatalf("unexpected barcode %s", form.Barcode)
	}
}

func TestCreateFormValidatesInput(t *testing.T) {
	uc := CreateFormUseCase{
		Forms:        memory.NewStore(),
		Clock:        memory.SystemClock{},
		IDGen:        memory.UUIDGenerator{},
		StartBarcode: 10000000,
	}
	_, err := uc.Execute(context.Background(), CreateFormCommand{TallyID: "tally-1"})
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestAlignVotes(t *testing.T) {
	candidates := []entities.Candidate{
		{CandidateID: "cand-a"},
		{CandidateID: "cand-b"},
	}

	votes, err := alignVotes(candidates, []VoteEntry{
		{CandidateID: "cand-a", Votes: 4},
		{CandidateID: "cand-b", Votes: 1},
	})
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	if votes["cand-a"] != 4 || votes["cand-b"] != 1 {
		t.Fatalf("unexpected counts %v", votes)
	}

	bad := [][]VoteEntry{
		{{CandidateID: "cand-a", Votes: 4}}, // candidate missing
		{{CandidateID: "cand-a", Votes: 4}, {CandidateID: "cand-a", Votes: 1}}, // duplicated candidate
		{{CandidateID: "cand-a", Votes: -1}, {CandidateID: "cand-b", Votes: 1}}, // negative count
		{{CandidateID: "cand-a", Votes: 4}, {CandidateID: "cand-x", Votes: 1}}, // unknown candidate
	}
	for i, entries := range bad {
		if _, err := alignVotes(candidates, entries); !errors.Is(err, domainerrors.ErrInvalidInput) {
			t.Fatalf("case %d: expected invalid input, got %v", i, err)
		}
	}
}

func TestBlankSubmission(t *testing.T) {
	allZero := map[string]int{"cand-a": 0, "cand-b": 0}
	nonZero := map[string]int{"cand-a": 4, "cand-b": 1}
	filled := &entities.ReconciliationForm{NumberBallotsReceived: 100, NumberValidVotes: 5}

	if !blankSubmission(allZero, false, nil) {
		t.Fatalf("all-zero votes must read as blank")
	}
	if !blankSubmission(nonZero, true, nil) {
		t.Fatalf("missing required ledger must read as blank")
	}
	if !blankSubmission(nonZero, true, &entities.ReconciliationForm{}) {
		t.Fatalf("zeroed ledger must read as blank")
	}
	if blankSubmission(nonZero, true, filled) {
		t.Fatalf("filled submission must not read as blank")
	}
	if blankSubmission(nonZero, false, nil) {
		t.Fatalf("forms without a ledger requirement must not read as blank")
	}
}

func TestResolveVotes(t *testing.T) {
	matched := []entities.Result{
		{CandidateID: "cand-a", Votes: 2, EntryVersion: entities.EntryVersionDataEntry2, Active: true},
	}
	mismatches := []services.VoteMismatch{
		{CandidateID: "cand-b", Votes1: 3, Votes2: 4},
	}

	finalVotes, de1Errors, de2Errors, err := resolveVotes(matched, mismatches, map[string]int{"cand-b": 3})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if finalVotes["cand-a"] != 2 || finalVotes["cand-b"] != 3 {
		t.Fatalf("unexpected final counts %v", finalVotes)
	}
	if de1Errors != 0 || de2Errors != 1 {
		t.Fatalf("expected the second entry to be charged, got de1=%d de2=%d", de1Errors, de2Errors)
	}

	if _, _, _, err := resolveVotes(matched, mismatches, nil); !errors.Is(err, domainerrors.ErrUnresolvedCorrections) {
		t.Fatalf("expected unresolved corrections, got %v", err)
	}
	if _, _, _, err := resolveVotes(matched, mismatches, map[string]int{"cand-b": 7}); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("resolution outside the two captures must be rejected, got %v", err)
	}
}
