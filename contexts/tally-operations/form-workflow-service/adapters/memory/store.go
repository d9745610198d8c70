package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"time"

	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
	"quorum/contexts/tally-operations/form-workflow-service/ports"

	"github.com/google/uuid"
)

// Store is an in-memory adapter implementing every repository port. It backs
// tests and local development wiring.
type Store struct {
	mu sync.RWMutex

	tallies  map[string]entities.Tally
	centers  map[string]entities.Center
	stations map[string]entities.Station
	ballots  map[string]entities.Ballot

	candidates map[string]entities.Candidate
	forms      map[string]entities.ResultForm
	results    map[string]entities.Result
	recons     map[string]entities.ReconciliationForm

	qualityControls map[string]entities.QualityControl
	audits          map[string]entities.Audit
	clearances      map[string]entities.Clearance

	checks   map[string]entities.QuarantineCheck
	requests map[string]entities.WorkflowRequest
	stats    map[string]entities.ResultFormStats

	revisions   []ports.RevisionEntry
	revisionSeq int64

	outbox map[string]outboxRow
}

type outboxRow struct {
	ports.OutboxMessage
	PublishedAt *time.Time
}

func NewStore() *Store {
	return &Store{
		tallies:         make(map[string]entities.Tally),
		centers:         make(map[string]entities.Center),
		stations:        make(map[string]entities.Station),
		ballots:         make(map[string]entities.Ballot),
		candidates:      make(map[string]entities.Candidate),
		forms:           make(map[string]entities.ResultForm),
		results:         make(map[string]entities.Result),
		recons:          make(map[string]entities.ReconciliationForm),
		qualityControls: make(map[string]entities.QualityControl),
		audits:          make(map[string]entities.Audit),
		clearances:      make(map[string]entities.Clearance),
		checks:          make(map[string]entities.QuarantineCheck),
		requests:        make(map[string]entities.WorkflowRequest),
		stats:           make(map[string]entities.ResultFormStats),
		outbox:          make(map[string]outboxRow),
	}
}

// Seed helpers used by tests and the in-memory module wiring.

func (s *Store) SeedTally(tally entities.Tally) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tallies[tally.TallyID] = tally
}

func (s *Store) SeedCenter(center entities.Center) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.centers[center.CenterID] = center
}

func (s *Store) SeedStation(station entities.Station) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations[stationKey(station.CenterID, station.StationNumber)] = station
}

func (s *Store) SeedBallot(ballot entities.Ballot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ballots[ballot.BallotID] = ballot
}

func (s *Store) SeedCandidate(candidate entities.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[candidate.CandidateID] = candidate
}

func stationKey(centerID string, stationNumber int) string {
	return centerID + "/" + strconv.Itoa(stationNumber)
}

// ResultFormRepository

func (s *Store) CreateForm(_ context.Context, form entities.ResultForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.forms {
		if existing.TallyID == form.TallyID && existing.Barcode == form.Barcode {
			return domainerrors.ErrInvalidInput
		}
	}
	s.forms[form.ResultFormID] = form
	return nil
}

func (s *Store) UpdateForm(_ context.Context, form entities.ResultForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[form.ResultFormID]; !ok {
		return domainerrors.ErrFormNotFound
	}
	s.forms[form.ResultFormID] = form
	return nil
}

func (s *Store) GetForm(_ context.Context, formID string) (entities.ResultForm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	form, ok := s.forms[formID]
	if !ok {
		return entities.ResultForm{}, domainerrors.ErrFormNotFound
	}
	return form, nil
}

func (s *Store) GetFormByBarcode(_ context.Context, tallyID, barcode string) (entities.ResultForm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, form := range s.forms {
		if form.TallyID == tallyID && form.Barcode == barcode {
			return form, nil
		}
	}
	return entities.ResultForm{}, domainerrors.ErrFormNotFound
}

func (s *Store) ListForms(_ context.Context, filter ports.FormFilter) ([]entities.ResultForm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []entities.ResultForm
	for _, form := range s.forms {
		if filter.TallyID != "" && form.TallyID != filter.TallyID {
			continue
		}
		if filter.FormState != "" && form.FormState != filter.FormState {
			continue
		}
		if filter.CenterID != "" && form.CenterID != filter.CenterID {
			continue
		}
		if filter.StationNumber != nil {
			if form.StationNumber == nil || *form.StationNumber != *filter.StationNumber {
				continue
			}
		}
		if filter.BallotID != "" && form.BallotID != filter.BallotID {
			continue
		}
		matched = append(matched, form)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Barcode < matched[j].Barcode
	})
	return matched, nil
}

func (s *Store) HighestBarcode(_ context.Context, tallyID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var highest int64
	for _, form := range s.forms {
		if form.TallyID != tallyID {
			continue
		}
		value, err := strconv.ParseInt(form.Barcode, 10, 64)
		if err != nil {
			continue
		}
		if value > highest {
			highest = value
		}
	}
	return highest, nil
}

// TallyRepository

func (s *Store) GetTally(_ context.Context, tallyID string) (entities.Tally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tally, ok := s.tallies[tallyID]
	if !ok {
		return entities.Tally{}, domainerrors.ErrTallyNotFound
	}
	return tally, nil
}

// GeographyRepository

func (s *Store) GetCenter(_ context.Context, centerID string) (entities.Center, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	center, ok := s.centers[centerID]
	if !ok {
		return entities.Center{}, domainerrors.ErrCenterNotFound
	}
	return center, nil
}

func (s *Store) GetCenterByCode(_ context.Context, tallyID string, code int) (entities.Center, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, center := range s.centers {
		if center.TallyID == tallyID && center.Code == code {
			return center, nil
		}
	}
	return entities.Center{}, domainerrors.ErrCenterNotFound
}

func (s *Store) GetStation(_ context.Context, centerID string, stationNumber int) (entities.Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	station, ok := s.stations[stationKey(centerID, stationNumber)]
	if !ok {
		return entities.Station{}, domainerrors.ErrStationNotFound
	}
	return station, nil
}

// BallotRepository

func (s *Store) GetBallot(_ context.Context, ballotID string) (entities.Ballot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ballot, ok := s.ballots[ballotID]
	if !ok {
		return entities.Ballot{}, domainerrors.ErrBallotNotFound
	}
	return ballot, nil
}

func (s *Store) ListCandidates(_ context.Context, ballotID string) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []entities.Candidate
	for _, candidate := range s.candidates {
		if candidate.BallotID == ballotID {
			matched = append(matched, candidate)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Order < matched[j].Order
	})
	return matched, nil
}

// ResultRepository

func (s *Store) CreateResult(_ context.Context, result entities.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.ResultID] = result
	return nil
}

func (s *Store) UpdateResult(_ context.Context, result entities.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[result.ResultID]; !ok {
		return domainerrors.ErrInvalidInput
	}
	s.results[result.ResultID] = result
	return nil
}

func (s *Store) ListResults(_ context.Context, filter ports.ResultFilter) ([]entities.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []entities.Result
	for _, result := range s.results {
		if filter.ResultFormID != "" && result.ResultFormID != filter.ResultFormID {
			continue
		}
		if filter.EntryVersion != "" && result.EntryVersion != filter.EntryVersion {
			continue
		}
		if filter.ActiveOnly && !result.Active {
			continue
		}
		matched = append(matched, result)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CandidateID != matched[j].CandidateID {
			return matched[i].CandidateID < matched[j].CandidateID
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}

func (s *Store) DeactivateResults(_ context.Context, formID string, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, result := range s.results {
		if result.ResultFormID != formID || !result.Active {
			continue
		}
		result.Active = false
		result.DeactivatedByRequestID = requestID
		s.results[id] = result
	}
	return nil
}

// ReconRepository

func (s *Store) CreateRecon(_ context.Context, recon entities.ReconciliationForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recons[recon.ReconciliationFormID] = recon
	return nil
}

func (s *Store) UpdateRecon(_ context.Context, recon entities.ReconciliationForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recons[recon.ReconciliationFormID]; !ok {
		return domainerrors.ErrInvalidInput
	}
	s.recons[recon.ReconciliationFormID] = recon
	return nil
}

func (s *Store) ListRecons(_ context.Context, formID string, activeOnly bool) ([]entities.ReconciliationForm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []entities.ReconciliationForm
	for _, recon := range s.recons {
		if recon.ResultFormID != formID {
			continue
		}
		if activeOnly && !recon.Active {
			continue
		}
		matched = append(matched, recon)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}

func (s *Store) DeactivateRecons(_ context.Context, formID string, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, recon := range s.recons {
		if recon.ResultFormID != formID || !recon.Active {
			continue
		}
		recon.Active = false
		recon.DeactivatedByRequestID = requestID
		s.recons[id] = recon
	}
	return nil
}

// ReviewRepository

func (s *Store) CreateQualityControl(_ context.Context, review entities.QualityControl) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qualityControls[review.QualityControlID] = review
	return nil
}

func (s *Store) UpdateQualityControl(_ context.Context, review entities.QualityControl) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.qualityControls[review.QualityControlID]; !ok {
		return domainerrors.ErrReviewNotFound
	}
	s.qualityControls[review.QualityControlID] = review
	return nil
}

func (s *Store) ActiveQualityControl(_ context.Context, formID string) (entities.QualityControl, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, review := range s.qualityControls {
		if review.ResultFormID == formID && review.Active {
			return review, nil
		}
	}
	return entities.QualityControl{}, domainerrors.ErrReviewNotFound
}

func (s *Store) CreateAudit(_ context.Context, audit entities.Audit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits[audit.AuditID] = audit
	return nil
}

func (s *Store) UpdateAudit(_ context.Context, audit entities.Audit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.audits[audit.AuditID]; !ok {
		return domainerrors.ErrReviewNotFound
	}
	s.audits[audit.AuditID] = audit
	return nil
}

func (s *Store) ActiveAudit(_ context.Context, formID string) (entities.Audit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, audit := range s.audits {
		if audit.ResultFormID == formID && audit.Active {
			return audit, nil
		}
	}
	return entities.Audit{}, domainerrors.ErrReviewNotFound
}

func (s *Store) DeactivateAudits(_ context.Context, formID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, audit := range s.audits {
		if audit.ResultFormID != formID || !audit.Active {
			continue
		}
		audit.Active = false
		s.audits[id] = audit
	}
	return nil
}

func (s *Store) CreateClearance(_ context.Context, clearance entities.Clearance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearances[clearance.ClearanceID] = clearance
	return nil
}

func (s *Store) UpdateClearance(_ context.Context, clearance entities.Clearance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clearances[clearance.ClearanceID]; !ok {
		return domainerrors.ErrReviewNotFound
	}
	s.clearances[clearance.ClearanceID] = clearance
	return nil
}

func (s *Store) ActiveClearance(_ context.Context, formID string) (entities.Clearance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, clearance := range s.clearances {
		if clearance.ResultFormID == formID && clearance.Active {
			return clearance, nil
		}
	}
	return entities.Clearance{}, domainerrors.ErrReviewNotFound
}

// QuarantineCheckRepository

func (s *Store) ListQuarantineChecks(_ context.Context, tallyID string, activeOnly bool) ([]entities.QuarantineCheck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []entities.QuarantineCheck
	for _, check := range s.checks {
		if tallyID != "" && check.TallyID != tallyID {
			continue
		}
		if activeOnly && !check.Active {
			continue
		}
		matched = append(matched, check)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Name < matched[j].Name
	})
	return matched, nil
}

func (s *Store) UpsertQuarantineCheck(_ context.Context, check entities.QuarantineCheck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[check.QuarantineCheckID] = check
	return nil
}

// WorkflowRequestRepository

func (s *Store) CreateRequest(_ context.Context, request entities.WorkflowRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[request.RequestID] = request
	return nil
}

func (s *Store) UpdateRequest(_ context.Context, request entities.WorkflowRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[request.RequestID]; !ok {
		return domainerrors.ErrRequestNotFound
	}
	s.requests[request.RequestID] = request
	return nil
}

func (s *Store) GetRequest(_ context.Context, requestID string) (entities.WorkflowRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	request, ok := s.requests[requestID]
	if !ok {
		return entities.WorkflowRequest{}, domainerrors.ErrRequestNotFound
	}
	return request, nil
}

func (s *Store) PendingRequest(_ context.Context, formID string, requestType entities.RequestType) (entities.WorkflowRequest, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, request := range s.requests {
		if request.ResultFormID == formID &&
			request.RequestType == requestType &&
			request.Status == entities.RequestStatusPending {
			return request, true, nil
		}
	}
	return entities.WorkflowRequest{}, false, nil
}

// StatsRepository

func (s *Store) AppendStats(_ context.Context, stats entities.ResultFormStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[stats.StatsID] = stats
	return nil
}

func (s *Store) LatestStatsByRole(_ context.Context, formID, role string) (entities.ResultFormStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest entities.ResultFormStats
	found := false
	for _, row := range s.stats {
		if row.ResultFormID != formID || row.UserRole != role {
			continue
		}
		if !found || row.CreatedAt.After(latest.CreatedAt) {
			latest = row
			found = true
		}
	}
	return latest, found, nil
}

func (s *Store) UpdateStats(_ context.Context, stats entities.ResultFormStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stats[stats.StatsID]; !ok {
		return domainerrors.ErrInvalidInput
	}
	s.stats[stats.StatsID] = stats
	return nil
}

// RevisionLogger

func (s *Store) RecordRevision(_ context.Context, entry ports.RevisionEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revisionSeq++
	entry.Sequence = s.revisionSeq
	s.revisions = append(s.revisions, entry)
	return nil
}

func (s *Store) ListRevisions(_ context.Context, entityType, entityID string) ([]ports.RevisionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []ports.RevisionEntry
	for _, entry := range s.revisions {
		if entry.EntityType == entityType && entry.EntityID == entityID {
			matched = append(matched, entry)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Sequence < matched[j].Sequence
	})
	return matched, nil
}

// OutboxWriter / OutboxRepository

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox[envelope.EventID] = outboxRow{
		OutboxMessage: ports.OutboxMessage{
			OutboxID:     envelope.EventID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    envelope.OccurredAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []ports.OutboxMessage
	for _, row := range s.outbox {
		if row.PublishedAt != nil {
			continue
		}
		pending = append(pending, row.OutboxMessage)
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[outboxID]
	if !ok {
		return domainerrors.ErrInvalidInput
	}
	row.PublishedAt = &publishedAt
	s.outbox[outboxID] = row
	return nil
}

// Clock and IDGenerator for in-memory wiring.

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.ResultFormRepository = (*Store)(nil)
var _ ports.TallyRepository = (*Store)(nil)
var _ ports.GeographyRepository = (*Store)(nil)
var _ ports.BallotRepository = (*Store)(nil)
var _ ports.ResultRepository = (*Store)(nil)
var _ ports.ReconRepository = (*Store)(nil)
var _ ports.ReviewRepository = (*Store)(nil)
var _ ports.QuarantineCheckRepository = (*Store)(nil)
var _ ports.WorkflowRequestRepository = (*Store)(nil)
var _ ports.StatsRepository = (*Store)(nil)
var _ ports.RevisionLogger = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
