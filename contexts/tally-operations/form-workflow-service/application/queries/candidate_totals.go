package queries

import (
	"context"
	"log/slog"
	"sort"

	application "quorum/contexts/tally-operations/form-workflow-service/application"
	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
)

// CandidateTotal is one candidate's aggregated standing across the tally's
// forms.
type CandidateTotal struct {
	CandidateID  string
	FullName     string
	Order        int
	BallotNumber int

	// Votes counts archived forms only; VotesWithQuarantine additionally
	// counts forms sitting in audit.
	Votes               int
	VotesWithQuarantine int
}

// BallotStanding is the aggregation result for one race.
type BallotStanding struct {
	BallotID     string
	BallotNumber int

	Stations                 int
	StationsCompleted        int
	StationsPercentCompleted float64

	// Totals is ordered by archived votes, descending, candidate order as
	// tiebreak.
	Totals []CandidateTotal

	// TopNDiverges is set when including quarantined forms changes which
	// candidates occupy the leading positions.
	TopNDiverges bool
}

type CandidateTotalsQuery struct {
	TallyID string
	// TopN bounds the divergence comparison; zero compares full orderings.
	TopN int
}

type CandidateTotalsUseCase struct {
	Forms   ports.ResultFormRepository
	Ballots ports.BallotRepository
	Results ports.ResultRepository
	Logger  *slog.Logger
}

// Execute sums active final votes per candidate over archived forms, and
// again including quarantined forms, flagging races whose leading order
// differs between the two.
func (uc CandidateTotalsUseCase) Execute(ctx context.Context, query CandidateTotalsQuery) ([]BallotStanding, error) {
	logger := application.ResolveLogger(uc.Logger)

	forms, err := uc.Forms.ListForms(ctx, ports.FormFilter{TallyID: query.TallyID})
	if err != nil {
		return nil, err
	}

	type ballotBucket struct {
		ballot            entities.Ballot
		stations          int
		stationsCompleted int
		votes             map[string]int
		votesQuarantine   map[string]int
	}
	buckets := map[string]*ballotBucket{}

	for _, form := range forms {
		if form.BallotID == "" {
			continue
		}
		bucket, ok := buckets[form.BallotID]
		if !ok {
			ballot, err := uc.Ballots.GetBallot(ctx, form.BallotID)
			if err != nil {
				return nil, err
			}
			bucket = &ballotBucket{
				ballot:          ballot,
				votes:           map[string]int{},
				votesQuarantine: map[string]int{},
			}
			buckets[form.BallotID] = bucket
		}
		bucket.stations++

		archived := form.FormState == entities.FormStateArchived
		quarantined := form.FormState == entities.FormStateAudit
		if !archived && !quarantined {
			continue
		}
		if archived {
			bucket.stationsCompleted++
		}

		rows, err := uc.Results.ListResults(ctx, ports.ResultFilter{
			ResultFormID: form.ResultFormID,
			EntryVersion: entities.EntryVersionFinal,
			ActiveOnly:   true,
		})
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			bucket.votesQuarantine[row.CandidateID] += row.Votes
			if archived {
				bucket.votes[row.CandidateID] += row.Votes
			}
		}
	}

	standings := make([]BallotStanding, 0, len(buckets))
	for ballotID, bucket := range buckets {
		candidates, err := uc.Ballots.ListCandidates(ctx, ballotID)
		if err != nil {
			return nil, err
		}

		totals := make([]CandidateTotal, 0, len(candidates))
		for _, candidate := range candidates {
			totals = append(totals, CandidateTotal{
				CandidateID:         candidate.CandidateID,
				FullName:            candidate.FullName,
				Order:               candidate.Order,
				BallotNumber:        bucket.ballot.Number,
				Votes:               bucket.votes[candidate.CandidateID],
				VotesWithQuarantine: bucket.votesQuarantine[candidate.CandidateID],
			})
		}

		byValid := rankCandidates(totals, func(t CandidateTotal) int { return t.Votes })
		byAll := rankCandidates(totals, func(t CandidateTotal) int { return t.VotesWithQuarantine })

		standing := BallotStanding{
			BallotID:          ballotID,
			BallotNumber:      bucket.ballot.Number,
			Stations:          bucket.stations,
			StationsCompleted: bucket.stationsCompleted,
			Totals:            byValid,
			TopNDiverges:      topNDiverges(byValid, byAll, query.TopN),
		}
		if standing.Stations > 0 {
			standing.StationsPercentCompleted =
				100 * float64(standing.StationsCompleted) / float64(standing.Stations)
		}
		standings = append(standings, standing)
	}
	sort.Slice(standings, func(i, j int) bool {
		return standings[i].BallotNumber < standings[j].BallotNumber
	})

	logger.Info("candidate totals computed",
		"event", "candidate_totals_computed",
		"module", "tally-operations/form-workflow-service",
		"layer", "application",
		"tally_id", query.TallyID,
		"ballots", len(standings),
	)
	return standings, nil
}

func rankCandidates(totals []CandidateTotal, votes func(CandidateTotal) int) []CandidateTotal {
	ranked := make([]CandidateTotal, len(totals))
	copy(ranked, totals)
	sort.SliceStable(ranked, func(i, j int) bool {
		if votes(ranked[i]) != votes(ranked[j]) {
			return votes(ranked[i]) > votes(ranked[j])
		}
		return ranked[i].Order < ranked[j].Order
	})
	return ranked
}

func topNDiverges(first, second []CandidateTotal, topN int) bool {
	n := len(first)
	if topN > 0 && topN < n {
		n = topN
	}
	for i := 0; i < n; i++ {
		if first[i].CandidateID != second[i].CandidateID {
			return true
		}
	}
	return false
}
