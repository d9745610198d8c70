package postgresadapter

import (
	"encoding/json"
	"time"

	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
)

type tallyModel struct {
	ID                         string    `gorm:"column:id;primaryKey"`
	Name                       string    `gorm:"column:name"`
	Active                     bool      `gorm:"column:active"`
	PrintCoverInIntake         bool      `gorm:"column:print_cover_in_intake"`
	PrintCoverInClearance      bool      `gorm:"column:print_cover_in_clearance"`
	PrintCoverInQualityControl bool      `gorm:"column:print_cover_in_quality_control"`
	CreatedAt                  time.Time `gorm:"column:created_at"`
	UpdatedAt                  time.Time `gorm:"column:updated_at"`
}

func (tallyModel) TableName() string { return "tallies" }

func (m tallyModel) toEntity() entities.Tally {
	return entities.Tally{
		TallyID:                    m.ID,
		Name:                       m.Name,
		Active:                     m.Active,
		PrintCoverInIntake:         m.PrintCoverInIntake,
		PrintCoverInClearance:      m.PrintCoverInClearance,
		PrintCoverInQualityControl: m.PrintCoverInQualityControl,
		CreatedAt:                  m.CreatedAt.UTC(),
		UpdatedAt:                  m.UpdatedAt.UTC(),
	}
}

type centerModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	TallyID         string    `gorm:"column:tally_id;index"`
	Code            int       `gorm:"column:code;index"`
	Name            string    `gorm:"column:name"`
	Office          string    `gorm:"column:office"`
	SubConstituency string    `gorm:"column:sub_constituency"`
	CenterType      string    `gorm:"column:center_type"`
	Active          bool      `gorm:"column:active"`
	BallotGeneralID string    `gorm:"column:ballot_general_id"`
	BallotWomenID   string    `gorm:"column:ballot_women_id"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (centerModel) TableName() string { return "centers" }

func (m centerModel) toEntity() entities.Center {
	return entities.Center{
		CenterID:        m.ID,
		TallyID:         m.TallyID,
		Code:            m.Code,
		Name:            m.Name,
		Office:          m.Office,
		SubConstituency: m.SubConstituency,
		CenterType:      entities.CenterType(m.CenterType),
		Active:          m.Active,
		BallotGeneralID: m.BallotGeneralID,
		BallotWomenID:   m.BallotWomenID,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

type stationModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	CenterID      string    `gorm:"column:center_id;index"`
	TallyID       string    `gorm:"column:tally_id;index"`
	StationNumber int       `gorm:"column:station_number"`
	Gender        string    `gorm:"column:gender"`
	Registrants   *int      `gorm:"column:registrants"`
	Active        bool      `gorm:"column:active"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (stationModel) TableName() string { return "stations" }

func (m stationModel) toEntity() entities.Station {
	return entities.Station{
		StationID:     m.ID,
		CenterID:      m.CenterID,
		TallyID:       m.TallyID,
		StationNumber: m.StationNumber,
		Gender:        entities.Gender(m.Gender),
		Registrants:   m.Registrants,
		Active:        m.Active,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type ballotModel struct {
	ID                  string    `gorm:"column:id;primaryKey"`
	TallyID             string    `gorm:"column:tally_id;index"`
	Number              int       `gorm:"column:number"`
	ElectionLevel       string    `gorm:"column:election_level"`
	BallotName          string    `gorm:"column:ballot_name"`
	AvailableForRelease bool      `gorm:"column:available_for_release"`
	Active              bool      `gorm:"column:active"`
	CreatedAt           time.Time `gorm:"column:created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (ballotModel) TableName() string { return "ballots" }

func (m ballotModel) toEntity() entities.Ballot {
	return entities.Ballot{
		BallotID:            m.ID,
		TallyID:             m.TallyID,
		Number:              m.Number,
		ElectionLevel:       entities.ElectionLevel(m.ElectionLevel),
		BallotName:          m.BallotName,
		AvailableForRelease: m.AvailableForRelease,
		Active:              m.Active,
		CreatedAt:           m.CreatedAt.UTC(),
		UpdatedAt:           m.UpdatedAt.UTC(),
	}
}

type candidateModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	BallotID  string    `gorm:"column:ballot_id;index"`
	TallyID   string    `gorm:"column:tally_id;index"`
	FullName  string    `gorm:"column:full_name"`
	Order     int       `gorm:"column:candidate_order"`
	Active    bool      `gorm:"column:active"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (candidateModel) TableName() string { return "candidates" }

func (m candidateModel) toEntity() entities.Candidate {
	return entities.Candidate{
		CandidateID: m.ID,
		BallotID:    m.BallotID,
		TallyID:     m.TallyID,
		FullName:    m.FullName,
		Order:       m.Order,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type resultFormModel struct {
	ID                    string    `gorm:"column:id;primaryKey"`
	TallyID               string    `gorm:"column:tally_id;uniqueIndex:idx_result_forms_tally_barcode"`
	Barcode               string    `gorm:"column:barcode;uniqueIndex:idx_result_forms_tally_barcode"`
	SerialNumber          int       `gorm:"column:serial_number"`
	FormState             string    `gorm:"column:form_state;index"`
	PreviousFormState     string    `gorm:"column:previous_form_state"`
	CenterID              string    `gorm:"column:center_id;index"`
	StationNumber         *int      `gorm:"column:station_number"`
	BallotID              string    `gorm:"column:ballot_id;index"`
	Office                string    `gorm:"column:office"`
	Gender                string    `gorm:"column:gender"`
	Name                  string    `gorm:"column:name"`
	IsReplacement         bool      `gorm:"column:is_replacement"`
	RejectedCount         int       `gorm:"column:rejected_count"`
	AuditedCount          int       `gorm:"column:audited_count"`
	DuplicateReviewed     bool      `gorm:"column:duplicate_reviewed"`
	RejectReason          string    `gorm:"column:reject_reason"`
	SkipQuarantineChecks  bool      `gorm:"column:skip_quarantine_checks"`
	SkipAllZeroVotesCheck bool      `gorm:"column:skip_all_zero_votes_check"`
	UserID                string    `gorm:"column:user_id"`
	CreatedUserID         string    `gorm:"column:created_user_id"`
	CreatedAt             time.Time `gorm:"column:created_at"`
	UpdatedAt             time.Time `gorm:"column:updated_at"`
}

func (resultFormModel) TableName() string { return "result_forms" }

func formModelFromEntity(form entities.ResultForm) resultFormModel {
	return resultFormModel{
		ID:                    form.ResultFormID,
		TallyID:               form.TallyID,
		Barcode:               form.Barcode,
		SerialNumber:          form.SerialNumber,
		FormState:             string(form.FormState),
		PreviousFormState:     string(form.PreviousFormState),
		CenterID:              form.CenterID,
		StationNumber:         form.StationNumber,
		BallotID:              form.BallotID,
		Office:                form.Office,
		Gender:                string(form.Gender),
		Name:                  form.Name,
		IsReplacement:         form.IsReplacement,
		RejectedCount:         form.RejectedCount,
		AuditedCount:          form.AuditedCount,
		DuplicateReviewed:     form.DuplicateReviewed,
		RejectReason:          form.RejectReason,
		SkipQuarantineChecks:  form.SkipQuarantineChecks,
		SkipAllZeroVotesCheck: form.SkipAllZeroVotesCheck,
		UserID:                form.UserID,
		CreatedUserID:         form.CreatedUserID,
		CreatedAt:             form.CreatedAt.UTC(),
		UpdatedAt:             form.UpdatedAt.UTC(),
	}
}

func (m resultFormModel) toEntity() entities.ResultForm {
	return entities.ResultForm{
		ResultFormID:          m.ID,
		TallyID:               m.TallyID,
		Barcode:               m.Barcode,
		SerialNumber:          m.SerialNumber,
		FormState:             entities.FormState(m.FormState),
		PreviousFormState:     entities.FormState(m.PreviousFormState),
		CenterID:              m.CenterID,
		StationNumber:         m.StationNumber,
		BallotID:              m.BallotID,
		Office:                m.Office,
		Gender:                entities.Gender(m.Gender),
		Name:                  m.Name,
		IsReplacement:         m.IsReplacement,
		RejectedCount:         m.RejectedCount,
		AuditedCount:          m.AuditedCount,
		DuplicateReviewed:     m.DuplicateReviewed,
		RejectReason:          m.RejectReason,
		SkipQuarantineChecks:  m.SkipQuarantineChecks,
		SkipAllZeroVotesCheck: m.SkipAllZeroVotesCheck,
		UserID:                m.UserID,
		CreatedUserID:         m.CreatedUserID,
		CreatedAt:             m.CreatedAt.UTC(),
		UpdatedAt:             m.UpdatedAt.UTC(),
	}
}

type resultModel struct {
	ID                     string    `gorm:"column:id;primaryKey"`
	ResultFormID           string    `gorm:"column:result_form_id;index"`
	CandidateID            string    `gorm:"column:candidate_id;index"`
	TallyID                string    `gorm:"column:tally_id;index"`
	EntryVersion           string    `gorm:"column:entry_version"`
	Votes                  int       `gorm:"column:votes"`
	UserID                 string    `gorm:"column:user_id"`
	Active                 bool      `gorm:"column:active;index"`
	DeactivatedByRequestID string    `gorm:"column:deactivated_by_request_id"`
	CreatedAt              time.Time `gorm:"column:created_at"`
	UpdatedAt              time.Time `gorm:"column:updated_at"`
}

func (resultModel) TableName() string { return "results" }

func resultModelFromEntity(result entities.Result) resultModel {
	return resultModel{
		ID:                     result.ResultID,
		ResultFormID:           result.ResultFormID,
		CandidateID:            result.CandidateID,
		TallyID:                result.TallyID,
		EntryVersion:           string(result.EntryVersion),
		Votes:                  result.Votes,
		UserID:                 result.UserID,
		Active:                 result.Active,
		DeactivatedByRequestID: result.DeactivatedByRequestID,
		CreatedAt:              result.CreatedAt.UTC(),
		UpdatedAt:              result.UpdatedAt.UTC(),
	}
}

func (m resultModel) toEntity() entities.Result {
	return entities.Result{
		ResultID:               m.ID,
		ResultFormID:           m.ResultFormID,
		CandidateID:            m.CandidateID,
		TallyID:                m.TallyID,
		EntryVersion:           entities.EntryVersion(m.EntryVersion),
		Votes:                  m.Votes,
		UserID:                 m.UserID,
		Active:                 m.Active,
		DeactivatedByRequestID: m.DeactivatedByRequestID,
		CreatedAt:              m.CreatedAt.UTC(),
		UpdatedAt:              m.UpdatedAt.UTC(),
	}
}

type reconModel struct {
	ID                               string    `gorm:"column:id;primaryKey"`
	ResultFormID                     string    `gorm:"column:result_form_id;index"`
	TallyID                          string    `gorm:"column:tally_id;index"`
	EntryVersion                     string    `gorm:"column:entry_version"`
	UserID                           string    `gorm:"column:user_id"`
	Active                           bool      `gorm:"column:active;index"`
	IsStamped                        bool      `gorm:"column:is_stamped"`
	BallotNumberFrom                 string    `gorm:"column:ballot_number_from"`
	BallotNumberTo                   string    `gorm:"column:ballot_number_to"`
	NumberBallotsReceived            int       `gorm:"column:number_ballots_received"`
	NumberSignaturesInVR             int       `gorm:"column:number_signatures_in_vr"`
	NumberUnusedBallots              int       `gorm:"column:number_unused_ballots"`
	NumberSpoiledBallots             int       `gorm:"column:number_spoiled_ballots"`
	NumberCancelledBallots           int       `gorm:"column:number_cancelled_ballots"`
	NumberBallotsOutsideBox          int       `gorm:"column:number_ballots_outside_box"`
	NumberBallotsInsideBox           int       `gorm:"column:number_ballots_inside_box"`
	NumberBallotsInsideAndOutsideBox int       `gorm:"column:number_ballots_inside_and_outside_box"`
	NumberUnstampedBallots           int       `gorm:"column:number_unstamped_ballots"`
	NumberInvalidVotes               int       `gorm:"column:number_invalid_votes"`
	NumberValidVotes                 int       `gorm:"column:number_valid_votes"`
	NumberSortedAndCounted           int       `gorm:"column:number_sorted_and_counted"`
	NumberBlankBallots               int       `gorm:"column:number_blank_ballots"`
	SignaturePollingOfficer1         bool      `gorm:"column:signature_polling_officer_1"`
	SignaturePollingOfficer2         bool      `gorm:"column:signature_polling_officer_2"`
	SignaturePollingStationChair     bool      `gorm:"column:signature_polling_station_chair"`
	SignatureDated                   bool      `gorm:"column:signature_dated"`
	DeactivatedByRequestID           string    `gorm:"column:deactivated_by_request_id"`
	CreatedAt                        time.Time `gorm:"column:created_at"`
	UpdatedAt                        time.Time `gorm:"column:updated_at"`
}

func (reconModel) TableName() string { return "reconciliation_forms" }

func reconModelFromEntity(recon entities.ReconciliationForm) reconModel {
	return reconModel{
		ID:                               recon.ReconciliationFormID,
		ResultFormID:                     recon.ResultFormID,
		TallyID:                          recon.TallyID,
		EntryVersion:                     string(recon.EntryVersion),
		UserID:                           recon.UserID,
		Active:                           recon.Active,
		IsStamped:                        recon.IsStamped,
		BallotNumberFrom:                 recon.BallotNumberFrom,
		BallotNumberTo:                   recon.BallotNumberTo,
		NumberBallotsReceived:            recon.NumberBallotsReceived,
		NumberSignaturesInVR:             recon.NumberSignaturesInVR,
		NumberUnusedBallots:              recon.NumberUnusedBallots,
		NumberSpoiledBallots:             recon.NumberSpoiledBallots,
		NumberCancelledBallots:           recon.NumberCancelledBallots,
		NumberBallotsOutsideBox:          recon.NumberBallotsOutsideBox,
		NumberBallotsInsideBox:           recon.NumberBallotsInsideBox,
		NumberBallotsInsideAndOutsideBox: recon.NumberBallotsInsideAndOutsideBox,
		NumberUnstampedBallots:           recon.NumberUnstampedBallots,
		NumberInvalidVotes:               recon.NumberInvalidVotes,
		NumberValidVotes:                 recon.NumberValidVotes,
		NumberSortedAndCounted:           recon.NumberSortedAndCounted,
		NumberBlankBallots:               recon.NumberBlankBallots,
		SignaturePollingOfficer1:         recon.SignaturePollingOfficer1,
		SignaturePollingOfficer2:         recon.SignaturePollingOfficer2,
		SignaturePollingStationChair:     recon.SignaturePollingStationChair,
		SignatureDated:                   recon.SignatureDated,
		DeactivatedByRequestID:           recon.DeactivatedByRequestID,
		CreatedAt:                        recon.CreatedAt.UTC(),
		UpdatedAt:                        recon.UpdatedAt.UTC(),
	}
}

func (m reconModel) toEntity() entities.ReconciliationForm {
	return entities.ReconciliationForm{
		ReconciliationFormID:             m.ID,
		ResultFormID:                     m.ResultFormID,
		TallyID:                          m.TallyID,
		EntryVersion:                     entities.EntryVersion(m.EntryVersion),
		UserID:                           m.UserID,
		Active:                           m.Active,
		IsStamped:                        m.IsStamped,
		BallotNumberFrom:                 m.BallotNumberFrom,
		BallotNumberTo:                   m.BallotNumberTo,
		NumberBallotsReceived:            m.NumberBallotsReceived,
		NumberSignaturesInVR:             m.NumberSignaturesInVR,
		NumberUnusedBallots:              m.NumberUnusedBallots,
		NumberSpoiledBallots:             m.NumberSpoiledBallots,
		NumberCancelledBallots:           m.NumberCancelledBallots,
		NumberBallotsOutsideBox:          m.NumberBallotsOutsideBox,
		NumberBallotsInsideBox:           m.NumberBallotsInsideBox,
		NumberBallotsInsideAndOutsideBox: m.NumberBallotsInsideAndOutsideBox,
		NumberUnstampedBallots:           m.NumberUnstampedBallots,
		NumberInvalidVotes:               m.NumberInvalidVotes,
		NumberValidVotes:                 m.NumberValidVotes,
		NumberSortedAndCounted:           m.NumberSortedAndCounted,
		NumberBlankBallots:               m.NumberBlankBallots,
		SignaturePollingOfficer1:         m.SignaturePollingOfficer1,
		SignaturePollingOfficer2:         m.SignaturePollingOfficer2,
		SignaturePollingStationChair:     m.SignaturePollingStationChair,
		SignatureDated:                   m.SignatureDated,
		DeactivatedByRequestID:           m.DeactivatedByRequestID,
		CreatedAt:                        m.CreatedAt.UTC(),
		UpdatedAt:                        m.UpdatedAt.UTC(),
	}
}

type qualityControlModel struct {
	ID                   string    `gorm:"column:id;primaryKey"`
	ResultFormID         string    `gorm:"column:result_form_id;index"`
	TallyID              string    `gorm:"column:tally_id;index"`
	UserID               string    `gorm:"column:user_id"`
	SupervisorID         string    `gorm:"column:supervisor_id"`
	Active               bool      `gorm:"column:active;index"`
	PassedQC             bool      `gorm:"column:passed_qc"`
	PassedReconciliation bool      `gorm:"column:passed_reconciliation"`
	CreatedAt            time.Time `gorm:"column:created_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at"`
}

func (qualityControlModel) TableName() string { return "quality_controls" }

func qualityControlModelFromEntity(review entities.QualityControl) qualityControlModel {
	return qualityControlModel{
		ID:                   review.QualityControlID,
		ResultFormID:         review.ResultFormID,
		TallyID:              review.TallyID,
		UserID:               review.UserID,
		SupervisorID:         review.SupervisorID,
		Active:               review.Active,
		PassedQC:             review.PassedQC,
		PassedReconciliation: review.PassedReconciliation,
		CreatedAt:            review.CreatedAt.UTC(),
		UpdatedAt:            review.UpdatedAt.UTC(),
	}
}

func (m qualityControlModel) toEntity() entities.QualityControl {
	return entities.QualityControl{
		QualityControlID:     m.ID,
		ResultFormID:         m.ResultFormID,
		TallyID:              m.TallyID,
		UserID:               m.UserID,
		SupervisorID:         m.SupervisorID,
		Active:               m.Active,
		PassedQC:             m.PassedQC,
		PassedReconciliation: m.PassedReconciliation,
		CreatedAt:            m.CreatedAt.UTC(),
		UpdatedAt:            m.UpdatedAt.UTC(),
	}
}

type auditModel struct {
	ID                  string    `gorm:"column:id;primaryKey"`
	ResultFormID        string    `gorm:"column:result_form_id;index"`
	TallyID             string    `gorm:"column:tally_id;index"`
	UserID              string    `gorm:"column:user_id"`
	SupervisorID        string    `gorm:"column:supervisor_id"`
	Active              bool      `gorm:"column:active;index"`
	ForSuperadmin       bool      `gorm:"column:for_superadmin"`
	ReviewedTeam        bool      `gorm:"column:reviewed_team"`
	ReviewedSupervisor  bool      `gorm:"column:reviewed_supervisor"`
	BlankReconciliation bool      `gorm:"column:blank_reconciliation"`
	BlankResults        bool      `gorm:"column:blank_results"`
	DamagedForm         bool      `gorm:"column:damaged_form"`
	UnclearFigures      bool      `gorm:"column:unclear_figures"`
	OtherProblem        string    `gorm:"column:other_problem"`
	ActionPrior         string    `gorm:"column:action_prior"`
	Resolution          string    `gorm:"column:resolution"`
	TeamComment         string    `gorm:"column:team_comment"`
	SupervisorComment   string    `gorm:"column:supervisor_comment"`
	FailedCheckIDs      []byte    `gorm:"column:failed_check_ids;type:jsonb"`
	CreatedAt           time.Time `gorm:"column:created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (auditModel) TableName() string { return "audits" }

func auditModelFromEntity(audit entities.Audit) (auditModel, error) {
	var checkIDs []byte
	if len(audit.FailedQuarantineCheckIDs) > 0 {
		encoded, err := json.Marshal(audit.FailedQuarantineCheckIDs)
		if err != nil {
			return auditModel{}, err
		}
		checkIDs = encoded
	}
	return auditModel{
		ID:                  audit.AuditID,
		ResultFormID:        audit.ResultFormID,
		TallyID:             audit.TallyID,
		UserID:              audit.UserID,
		SupervisorID:        audit.SupervisorID,
		Active:              audit.Active,
		ForSuperadmin:       audit.ForSuperadmin,
		ReviewedTeam:        audit.ReviewedTeam,
		ReviewedSupervisor:  audit.ReviewedSupervisor,
		BlankReconciliation: audit.BlankReconciliation,
		BlankResults:        audit.BlankResults,
		DamagedForm:         audit.DamagedForm,
		UnclearFigures:      audit.UnclearFigures,
		OtherProblem:        audit.OtherProblem,
		ActionPrior:         string(audit.ActionPriorToRecommendation),
		Resolution:          string(audit.ResolutionRecommendation),
		TeamComment:         audit.TeamComment,
		SupervisorComment:   audit.SupervisorComment,
		FailedCheckIDs:      checkIDs,
		CreatedAt:           audit.CreatedAt.UTC(),
		UpdatedAt:           audit.UpdatedAt.UTC(),
	}, nil
}

func (m auditModel) toEntity() (entities.Audit, error) {
	var checkIDs []string
	if len(m.FailedCheckIDs) > 0 {
		if err := json.Unmarshal(m.FailedCheckIDs, &checkIDs); err != nil {
			return entities.Audit{}, err
		}
	}
	return entities.Audit{
		AuditID:                     m.ID,
		ResultFormID:                m.ResultFormID,
		TallyID:                     m.TallyID,
		UserID:                      m.UserID,
		SupervisorID:                m.SupervisorID,
		Active:                      m.Active,
		ForSuperadmin:               m.ForSuperadmin,
		ReviewedTeam:                m.ReviewedTeam,
		ReviewedSupervisor:          m.ReviewedSupervisor,
		BlankReconciliation:         m.BlankReconciliation,
		BlankResults:                m.BlankResults,
		DamagedForm:                 m.DamagedForm,
		UnclearFigures:              m.UnclearFigures,
		OtherProblem:                m.OtherProblem,
		ActionPriorToRecommendation: entities.ActionPrior(m.ActionPrior),
		ResolutionRecommendation:    entities.AuditResolution(m.Resolution),
		TeamComment:                 m.TeamComment,
		SupervisorComment:           m.SupervisorComment,
		FailedQuarantineCheckIDs:    checkIDs,
		CreatedAt:                   m.CreatedAt.UTC(),
		UpdatedAt:                   m.UpdatedAt.UTC(),
	}, nil
}

type clearanceModel struct {
	ID                     string     `gorm:"column:id;primaryKey"`
	ResultFormID           string     `gorm:"column:result_form_id;index"`
	TallyID                string     `gorm:"column:tally_id;index"`
	UserID                 string     `gorm:"column:user_id"`
	SupervisorID           string     `gorm:"column:supervisor_id"`
	Active                 bool       `gorm:"column:active;index"`
	ReviewedTeam           bool       `gorm:"column:reviewed_team"`
	ReviewedSupervisor     bool       `gorm:"column:reviewed_supervisor"`
	ActionPrior            string     `gorm:"column:action_prior"`
	Resolution             string     `gorm:"column:resolution"`
	TeamComment            string     `gorm:"column:team_comment"`
	SupervisorComment      string     `gorm:"column:supervisor_comment"`
	DateTeamModified       *time.Time `gorm:"column:date_team_modified"`
	DateSupervisorModified *time.Time `gorm:"column:date_supervisor_modified"`
	CreatedAt              time.Time  `gorm:"column:created_at"`
	UpdatedAt              time.Time  `gorm:"column:updated_at"`
}

func (clearanceModel) TableName() string { return "clearances" }

func clearanceModelFromEntity(clearance entities.Clearance) clearanceModel {
	return clearanceModel{
		ID:                     clearance.ClearanceID,
		ResultFormID:           clearance.ResultFormID,
		TallyID:                clearance.TallyID,
		UserID:                 clearance.UserID,
		SupervisorID:           clearance.SupervisorID,
		Active:                 clearance.Active,
		ReviewedTeam:           clearance.ReviewedTeam,
		ReviewedSupervisor:     clearance.ReviewedSupervisor,
		ActionPrior:            string(clearance.ActionPriorToRecommendation),
		Resolution:             string(clearance.ResolutionRecommendation),
		TeamComment:            clearance.TeamComment,
		SupervisorComment:      clearance.SupervisorComment,
		DateTeamModified:       clearance.DateTeamModified,
		DateSupervisorModified: clearance.DateSupervisorModified,
		CreatedAt:              clearance.CreatedAt.UTC(),
		UpdatedAt:              clearance.UpdatedAt.UTC(),
	}
}

func (m clearanceModel) toEntity() entities.Clearance {
	return entities.Clearance{
		ClearanceID:                 m.ID,
		ResultFormID:                m.ResultFormID,
		TallyID:                     m.TallyID,
		UserID:                      m.UserID,
		SupervisorID:                m.SupervisorID,
		Active:                      m.Active,
		ReviewedTeam:                m.ReviewedTeam,
		ReviewedSupervisor:          m.ReviewedSupervisor,
		ActionPriorToRecommendation: entities.ActionPrior(m.ActionPrior),
		ResolutionRecommendation:    entities.ClearanceResolution(m.Resolution),
		TeamComment:                 m.TeamComment,
		SupervisorComment:           m.SupervisorComment,
		DateTeamModified:            m.DateTeamModified,
		DateSupervisorModified:      m.DateSupervisorModified,
		CreatedAt:                   m.CreatedAt.UTC(),
		UpdatedAt:                   m.UpdatedAt.UTC(),
	}
}

type quarantineCheckModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	TallyID    string    `gorm:"column:tally_id;index"`
	Name       string    `gorm:"column:name"`
	Method     string    `gorm:"column:method"`
	Value      float64   `gorm:"column:value"`
	Percentage float64   `gorm:"column:percentage"`
	Active     bool      `gorm:"column:active"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (quarantineCheckModel) TableName() string { return "quarantine_checks" }

func quarantineCheckModelFromEntity(check entities.QuarantineCheck) quarantineCheckModel {
	return quarantineCheckModel{
		ID:         check.QuarantineCheckID,
		TallyID:    check.TallyID,
		Name:       check.Name,
		Method:     string(check.Method),
		Value:      check.Value,
		Percentage: check.Percentage,
		Active:     check.Active,
		CreatedAt:  check.CreatedAt.UTC(),
		UpdatedAt:  check.UpdatedAt.UTC(),
	}
}

func (m quarantineCheckModel) toEntity() entities.QuarantineCheck {
	return entities.QuarantineCheck{
		QuarantineCheckID: m.ID,
		TallyID:           m.TallyID,
		Name:              m.Name,
		Method:            entities.QuarantineMethod(m.Method),
		Value:             m.Value,
		Percentage:        m.Percentage,
		Active:            m.Active,
		CreatedAt:         m.CreatedAt.UTC(),
		UpdatedAt:         m.UpdatedAt.UTC(),
	}
}

type workflowRequestModel struct {
	ID              string     `gorm:"column:id;primaryKey"`
	ResultFormID    string     `gorm:"column:result_form_id;index"`
	TallyID         string     `gorm:"column:tally_id;index"`
	RequestType     string     `gorm:"column:request_type"`
	Status          string     `gorm:"column:status;index"`
	RequesterID     string     `gorm:"column:requester_id"`
	RequestReason   string     `gorm:"column:request_reason"`
	RequestComment  string     `gorm:"column:request_comment"`
	ApproverID      string     `gorm:"column:approver_id"`
	ApprovalComment string     `gorm:"column:approval_comment"`
	ResolvedAt      *time.Time `gorm:"column:resolved_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (workflowRequestModel) TableName() string { return "workflow_requests" }

func requestModelFromEntity(request entities.WorkflowRequest) workflowRequestModel {
	return workflowRequestModel{
		ID:              request.RequestID,
		ResultFormID:    request.ResultFormID,
		TallyID:         request.TallyID,
		RequestType:     string(request.RequestType),
		Status:          string(request.Status),
		RequesterID:     request.RequesterID,
		RequestReason:   request.RequestReason,
		RequestComment:  request.RequestComment,
		ApproverID:      request.ApproverID,
		ApprovalComment: request.ApprovalComment,
		ResolvedAt:      request.ResolvedAt,
		CreatedAt:       request.CreatedAt.UTC(),
		UpdatedAt:       request.UpdatedAt.UTC(),
	}
}

func (m workflowRequestModel) toEntity() entities.WorkflowRequest {
	return entities.WorkflowRequest{
		RequestID:       m.ID,
		ResultFormID:    m.ResultFormID,
		TallyID:         m.TallyID,
		RequestType:     entities.RequestType(m.RequestType),
		Status:          entities.RequestStatus(m.Status),
		RequesterID:     m.RequesterID,
		RequestReason:   m.RequestReason,
		RequestComment:  m.RequestComment,
		ApproverID:      m.ApproverID,
		ApprovalComment: m.ApprovalComment,
		ResolvedAt:      m.ResolvedAt,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

type statsModel struct {
	ID                    string    `gorm:"column:id;primaryKey"`
	ResultFormID          string    `gorm:"column:result_form_id;index"`
	TallyID               string    `gorm:"column:tally_id;index"`
	UserID                string    `gorm:"column:user_id"`
	UserRole              string    `gorm:"column:user_role"`
	ProcessingTimeSeconds int       `gorm:"column:processing_time_seconds"`
	ApprovedBySupervisor  bool      `gorm:"column:approved_by_supervisor"`
	RejectedBySupervisor  bool      `gorm:"column:rejected_by_supervisor"`
	DataEntryErrors       int       `gorm:"column:data_entry_errors"`
	CreatedAt             time.Time `gorm:"column:created_at"`
	UpdatedAt             time.Time `gorm:"column:updated_at"`
}

func (statsModel) TableName() string { return "result_form_stats" }

func statsModelFromEntity(stats entities.ResultFormStats) statsModel {
	return statsModel{
		ID:                    stats.StatsID,
		ResultFormID:          stats.ResultFormID,
		TallyID:               stats.TallyID,
		UserID:                stats.UserID,
		UserRole:              stats.UserRole,
		ProcessingTimeSeconds: stats.ProcessingTimeSeconds,
		ApprovedBySupervisor:  stats.ApprovedBySupervisor,
		RejectedBySupervisor:  stats.RejectedBySupervisor,
		DataEntryErrors:       stats.DataEntryErrors,
		CreatedAt:             stats.CreatedAt.UTC(),
		UpdatedAt:             stats.UpdatedAt.UTC(),
	}
}

func (m statsModel) toEntity() entities.ResultFormStats {
	return entities.ResultFormStats{
		StatsID:               m.ID,
		ResultFormID:          m.ResultFormID,
		TallyID:               m.TallyID,
		UserID:                m.UserID,
		UserRole:              m.UserRole,
		ProcessingTimeSeconds: m.ProcessingTimeSeconds,
		ApprovedBySupervisor:  m.ApprovedBySupervisor,
		RejectedBySupervisor:  m.RejectedBySupervisor,
		DataEntryErrors:       m.DataEntryErrors,
		CreatedAt:             m.CreatedAt.UTC(),
		UpdatedAt:             m.UpdatedAt.UTC(),
	}
}

type revisionModel struct {
	Sequence   int64     `gorm:"column:sequence;primaryKey;autoIncrement"`
	EntityType string    `gorm:"column:entity_type;index:idx_revisions_entity"`
	EntityID   string    `gorm:"column:entity_id;index:idx_revisions_entity"`
	FieldDict  []byte    `gorm:"column:field_dict;type:jsonb"`
	UserID     string    `gorm:"column:user_id"`
	RecordedAt time.Time `gorm:"column:recorded_at"`
}

func (revisionModel) TableName() string { return "revisions" }

type outboxModel struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	OutboxID     string     `gorm:"column:outbox_id;uniqueIndex"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload;type:jsonb"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "form_workflow_outbox" }
