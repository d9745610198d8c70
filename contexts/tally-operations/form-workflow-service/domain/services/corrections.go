package services

import (
	"fmt"
	"sort"

	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
)

// VoteMismatch is one candidate whose DE1 and DE2 captures disagree.
type VoteMismatch struct {
	CandidateID string
	Votes1      int
	Votes2      int
}

// SuspiciousReject reports a structural anomaly that must reject the form
// back to data entry 1. It is a tagged result rather than a panic so callers
// see the transition explicitly.
type SuspiciousReject struct {
	NewState entities.FormState
	Message  string
}

func (s *SuspiciousReject) Error() string {
	return s.Message
}

func (s *SuspiciousReject) Unwrap() error {
	return domainerrors.ErrSuspiciousOperation
}

// MatchResults compares the active DE1 and DE2 result rows per candidate.
// Differing cardinalities are the tampering anomaly: the caller must reject
// the form to data entry 1.
func MatchResults(form entities.ResultForm, results []entities.Result) (matched []entities.Result, mismatched []VoteMismatch, err error) {
	votes1 := map[string]int{}
	votes2 := map[string]entities.Result{}
	count1, count2 := 0, 0

	for _, result := range results {
		if !result.Active {
			continue
		}
		switch result.EntryVersion {
		case entities.EntryVersionDataEntry1:
			votes1[result.CandidateID] = result.Votes
			count1++
		case entities.EntryVersionDataEntry2:
			votes2[result.CandidateID] = result
			count2++
		}
	}

	if count1 == 0 || count2 == 0 {
		return nil, nil, fmt.Errorf("%w: result form %s has no double entries",
			domainerrors.ErrSuspiciousOperation, form.Barcode)
	}
	if count1 != count2 {
		return nil, nil, &SuspiciousReject{
			NewState: entities.FormStateDataEntry1,
			Message: fmt.Sprintf(
				"unexpected number of results in form %s, return result form to data entry 1",
				form.Barcode),
		}
	}

	for candidateID, second := range votes2 {
		first, present := votes1[candidateID]
		if present && first == second.Votes {
			matched = append(matched, second)
			continue
		}
		mismatched = append(mismatched, VoteMismatch{
			CandidateID: candidateID,
			Votes1:      first,
			Votes2:      second.Votes,
		})
	}
	// A candidate keyed only in the first entry is still a disagreement,
	// even when the row counts line up.
	for candidateID, first := range votes1 {
		if _, present := votes2[candidateID]; present {
			continue
		}
		mismatched = append(mismatched, VoteMismatch{
			CandidateID: candidateID,
			Votes1:      first,
		})
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CandidateID < matched[j].CandidateID
	})
	sort.Slice(mismatched, func(i, j int) bool {
		return mismatched[i].CandidateID < mismatched[j].CandidateID
	})
	return matched, mismatched, nil
}

// ReconMismatch is one ledger field whose DE1 and DE2 captures disagree.
type ReconMismatch struct {
	Field  string
	Value1 any
	Value2 any
}

// MatchReconForms compares two reconciliation captures field by field,
// excluding identity and entry-version columns.
func MatchReconForms(first, second entities.ReconciliationForm) []ReconMismatch {
	fields1 := first.ComparableFields()
	fields2 := second.ComparableFields()

	names := make([]string, 0, len(fields1))
	for name := range fields1 {
		names = append(names, name)
	}
	sort.Strings(names)

	var mismatches []ReconMismatch
	for _, name := range names {
		if fields1[name] != fields2[name] {
			mismatches = append(mismatches, ReconMismatch{
				Field:  name,
				Value1: fields1[name],
				Value2: fields2[name],
			})
		}
	}
	return mismatches
}

// ArbitrateRecon builds the final ledger: DE1 values carry for matching
// fields, the clerk's chosen value applies for each mismatched field. Every
// mismatch must have a resolution.
func ArbitrateRecon(first, second entities.ReconciliationForm, resolutions map[string]any) (entities.ReconciliationForm, error) {
	mismatches := MatchReconForms(first, second)

	final := first
	for _, mismatch := range mismatches {
		value, resolved := resolutions[mismatch.Field]
		if !resolved {
			return entities.ReconciliationForm{}, domainerrors.ErrUnresolvedCorrections
		}
		final.ApplyField(mismatch.Field, value)
	}
	final.EntryVersion = entities.EntryVersionFinal
	return final, nil
}
