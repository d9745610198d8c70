package queries

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
)

// DuplicateVoteGroup is a set of forms within one center whose full ordered
// vote vectors coincide and are non-zero.
type DuplicateVoteGroup struct {
	CenterID string
	BallotID string
	Votes    []int
	Barcodes []string
}

type DuplicateVotesQuery struct {
	TallyID string
}

type DuplicateVotesUseCase struct {
	Forms   ports.ResultFormRepository
	Ballots ports.BallotRepository
	Results ports.ResultRepository
}

// Execute flags identical non-zero vote lists recorded for different forms
// of the same center, a strong copy-capture signal.
func (uc DuplicateVotesUseCase) Execute(ctx context.Context, query DuplicateVotesQuery) ([]DuplicateVoteGroup, error) {
	forms, err := uc.Forms.ListForms(ctx, ports.FormFilter{TallyID: query.TallyID})
	if err != nil {
		return nil, err
	}

	type group struct {
		votes    []int
		barcodes []string
	}
	groups := map[string]*group{}
	candidateOrder := map[string][]entities.Candidate{}

	for _, form := range forms {
		if !form.HasCenter() || form.BallotID == "" {
			continue
		}
		rows, err := uc.Results.ListResults(ctx, ports.ResultFilter{
			ResultFormID: form.ResultFormID,
			EntryVersion: entities.EntryVersionFinal,
			ActiveOnly:   true,
		})
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			continue
		}

		candidates, ok := candidateOrder[form.BallotID]
		if !ok {
			candidates, err = uc.Ballots.ListCandidates(ctx, form.BallotID)
			if err != nil {
				return nil, err
			}
			sort.Slice(candidates, func(i, j int) bool {
				return candidates[i].Order < candidates[j].Order
			})
			candidateOrder[form.BallotID] = candidates
		}

		byCandidate := make(map[string]int, len(rows))
		sum := 0
		for _, row := range rows {
			byCandidate[row.CandidateID] = row.Votes
			sum += row.Votes
		}
		if sum == 0 {
			continue
		}

		votes := make([]int, 0, len(candidates))
		for _, candidate := range candidates {
			votes = append(votes, byCandidate[candidate.CandidateID])
		}

		key := voteVectorKey(form.CenterID, form.BallotID, votes)
		entry, ok := groups[key]
		if !ok {
			entry = &group{votes: votes}
			groups[key] = entry
		}
		entry.barcodes = append(entry.barcodes, form.Barcode)
	}

	var duplicates []DuplicateVoteGroup
	for key, entry := range groups {
		if len(entry.barcodes) < 2 {
			continue
		}
		sort.Strings(entry.barcodes)
		centerID, ballotID := splitVectorKey(key)
		duplicates = append(duplicates, DuplicateVoteGroup{
			CenterID: centerID,
			BallotID: ballotID,
			Votes:    entry.votes,
			Barcodes: entry.barcodes,
		})
	}
	sort.Slice(duplicates, func(i, j int) bool {
		if duplicates[i].CenterID != duplicates[j].CenterID {
			return duplicates[i].CenterID < duplicates[j].CenterID
		}
		return duplicates[i].Barcodes[0] < duplicates[j].Barcodes[0]
	})
	return duplicates, nil
}

func voteVectorKey(centerID, ballotID string, votes []int) string {
	parts := make([]string, 0, len(votes)+2)
	parts = append(parts, centerID, ballotID)
	for _, v := range votes {
		parts = append(parts, fmt.Sprintf("%d", v))
	}
	return strings.Join(parts, "|")
}

func splitVectorKey(key string) (centerID, ballotID string) {
	parts := strings.SplitN(key, "|", 3)
	return parts[0], parts[1]
}
