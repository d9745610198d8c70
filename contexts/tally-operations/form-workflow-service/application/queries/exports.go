package queries

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
)

// ExportUseCase writes the reporting artifacts as comma-delimited UTF-8 with
// a header row.
type ExportUseCase struct {
	Forms     ports.ResultFormRepository
	Geography ports.GeographyRepository
	Ballots   ports.BallotRepository
	Results   ports.ResultRepository
	Recons    ports.ReconRepository
	Revisions ports.RevisionLogger

	Totals     CandidateTotalsUseCase
	Duplicates DuplicateVotesUseCase
	History    FormHistoryUseCase
}

// WriteCandidateVotes exports per-race candidate standings, one row per
// race, with a column triple per candidate.
func (uc ExportUseCase) WriteCandidateVotes(ctx context.Context, out io.Writer, tallyID string, topN int) error {
	standings, err := uc.Totals.Execute(ctx, CandidateTotalsQuery{TallyID: tallyID, TopN: topN})
	if err != nil {
		return err
	}

	maxCandidates := 0
	for _, standing := range standings {
		if len(standing.Totals) > maxCandidates {
			maxCandidates = len(standing.Totals)
		}
	}

	header := []string{"ballot number", "stations", "stations completed", "stations percent completed"}
	for i := 1; i <= maxCandidates; i++ {
		header = append(header,
			fmt.Sprintf("candidate %d name", i),
			fmt.Sprintf("candidate %d votes", i),
			fmt.Sprintf("candidate %d votes included quarantine", i),
		)
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, standing := range standings {
		row := []string{
			strconv.Itoa(standing.BallotNumber),
			strconv.Itoa(standing.Stations),
			strconv.Itoa(standing.StationsCompleted),
			fmt.Sprintf("%.2f", standing.StationsPercentCompleted),
		}
		for _, total := range standing.Totals {
			row = append(row,
				total.FullName,
				strconv.Itoa(total.Votes),
				strconv.Itoa(total.VotesWithQuarantine),
			)
		}
		for i := len(standing.Totals); i < maxCandidates; i++ {
			row = append(row, "", "", "")
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteBarcodeResults exports one row per archived form per candidate with
// the form's geography, ledger and registration context.
func (uc ExportUseCase) WriteBarcodeResults(ctx context.Context, out io.Writer, tallyID string) error {
	forms, err := uc.Forms.ListForms(ctx, ports.FormFilter{
		TallyID:   tallyID,
		FormState: entities.FormStateArchived,
	})
	if err != nil {
		return err
	}
	sort.Slice(forms, func(i, j int) bool { return forms[i].Barcode < forms[j].Barcode })

	writer := csv.NewWriter(out)
	header := []string{
		"ballot number", "center code", "station number", "gender", "barcode",
		"election level", "sub constituency", "order", "candidate name", "votes",
		"invalid ballots", "unstamped ballots", "cancelled ballots",
		"spoiled ballots", "unused ballots", "number of signatures",
		"received ballots papers", "valid votes", "registrants", "candidate status",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, form := range forms {
		ballot, err := uc.Ballots.GetBallot(ctx, form.BallotID)
		if err != nil {
			return err
		}
		candidates, err := uc.Ballots.ListCandidates(ctx, form.BallotID)
		if err != nil {
			return err
		}
		byCandidate := make(map[string]entities.Candidate, len(candidates))
		for _, candidate := range candidates {
			byCandidate[candidate.CandidateID] = candidate
		}

		var centerCode, subConstituency string
		if form.HasCenter() {
			center, err := uc.Geography.GetCenter(ctx, form.CenterID)
			if err != nil {
				return err
			}
			centerCode = strconv.Itoa(center.Code)
			subConstituency = center.SubConstituency
		}

		stationNumber := ""
		registrants := ""
		if form.StationNumber != nil {
			stationNumber = strconv.Itoa(*form.StationNumber)
			if form.HasCenter() {
				station, err := uc.Geography.GetStation(ctx, form.CenterID, *form.StationNumber)
				switch {
				case err == nil:
					if station.Registrants != nil {
						registrants = strconv.Itoa(*station.Registrants)
					}
				case !errors.Is(err, domainerrors.ErrStationNotFound):
					return err
				}
			}
		}

		recon, err := uc.reconFields(ctx, form.ResultFormID)
		if err != nil {
			return err
		}

		rows, err := uc.Results.ListResults(ctx, ports.ResultFilter{
			ResultFormID: form.ResultFormID,
			EntryVersion: entities.EntryVersionFinal,
			ActiveOnly:   true,
		})
		if err != nil {
			return err
		}
		sort.Slice(rows, func(i, j int) bool {
			return byCandidate[rows[i].CandidateID].Order < byCandidate[rows[j].CandidateID].Order
		})

		for _, result := range rows {
			candidate := byCandidate[result.CandidateID]
			status := "inactive"
			if candidate.Active {
				status = "active"
			}
			record := []string{
				strconv.Itoa(ballot.Number),
				centerCode,
				stationNumber,
				string(form.Gender),
				form.Barcode,
				string(ballot.ElectionLevel),
				subConstituency,
				strconv.Itoa(candidate.Order),
				candidate.FullName,
				strconv.Itoa(result.Votes),
			}
			record = append(record, recon...)
			record = append(record, registrants, status)
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func (uc ExportUseCase) reconFields(ctx context.Context, formID string) ([]string, error) {
	blank := []string{"", "", "", "", "", "", "", ""}
	recons, err := uc.Recons.ListRecons(ctx, formID, true)
	if err != nil {
		return nil, err
	}
	for _, recon := range recons {
		if recon.EntryVersion != entities.EntryVersionFinal {
			continue
		}
		return []string{
			strconv.Itoa(recon.NumberInvalidVotes),
			strconv.Itoa(recon.NumberUnstampedBallots),
			strconv.Itoa(recon.NumberCancelledBallots),
			strconv.Itoa(recon.NumberSpoiledBallots),
			strconv.Itoa(recon.NumberUnusedBallots),
			strconv.Itoa(recon.NumberSignaturesInVR),
			strconv.Itoa(recon.NumberBallotsReceived),
			strconv.Itoa(recon.NumberValidVotes),
		}, nil
	}
	return blank, nil
}

// WriteDuplicateResults exports the coincident non-zero vote vectors found
// within each center.
func (uc ExportUseCase) WriteDuplicateResults(ctx context.Context, out io.Writer, tallyID string) error {
	groups, err := uc.Duplicates.Execute(ctx, DuplicateVotesQuery{TallyID: tallyID})
	if err != nil {
		return err
	}

	writer := csv.NewWriter(out)
	if err := writer.Write([]string{"center", "ballot", "barcodes", "votes"}); err != nil {
		return err
	}
	for _, group := range groups {
		votes := make([]string, 0, len(group.Votes))
		for _, v := range group.Votes {
			votes = append(votes, strconv.Itoa(v))
		}
		record := []string{
			group.CenterID,
			group.BallotID,
			strings.Join(group.Barcodes, ";"),
			strings.Join(votes, ";"),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFormHistory exports the revision trail for one form.
func (uc ExportUseCase) WriteFormHistory(ctx context.Context, out io.Writer, formID string) error {
	rows, err := uc.History.Execute(ctx, formID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(out)
	header := []string{"user", "timestamp", "previous state", "current state", "duration seconds"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.UserID,
			row.RecordedAt.Format("2006-01-02 15:04:05"),
			row.PreviousState,
			row.CurrentState,
			fmt.Sprintf("%.0f", row.DurationSeconds),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
