package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SubmitBarcodeRequest struct {
	TallyID     string `json:"tally_id"`
	Barcode     string `json:"barcode"`
	BarcodeCopy string `json:"barcode_copy"`
	Scan        string `json:"scan,omitempty"`
}

type CreateFormRequest struct {
	TallyID       string `json:"tally_id"`
	BallotID      string `json:"ballot_id"`
	Office        string `json:"office,omitempty"`
	Gender        string `json:"gender,omitempty"`
	SerialNumber  int    `json:"serial_number,omitempty"`
	IsReplacement bool   `json:"is_replacement"`
}

type FormResponse struct {
	ResultFormID      string `json:"result_form_id"`
	TallyID           string `json:"tally_id"`
	Barcode           string `json:"barcode"`
	SerialNumber      int    `json:"serial_number,omitempty"`
	FormState         string `json:"form_state"`
	PreviousFormState string `json:"previous_form_state,omitempty"`
	CenterID          string `json:"center_id,omitempty"`
	StationNumber     *int   `json:"station_number,omitempty"`
	BallotID          string `json:"ballot_id,omitempty"`
	Office            string `json:"office,omitempty"`
	Gender            string `json:"gender,omitempty"`
	Name              string `json:"name,omitempty"`
	IsReplacement     bool   `json:"is_replacement"`
	RejectedCount     int    `json:"rejected_count"`
	AuditedCount      int    `json:"audited_count"`
	RejectReason      string `json:"reject_reason,omitempty"`
}

type FormListResponse struct {
	Items []FormResponse `json:"items"`
}

type ResultResponse struct {
	ResultID     string `json:"result_id"`
	CandidateID  string `json:"candidate_id"`
	EntryVersion string `json:"entry_version"`
	Votes        int    `json:"votes"`
	Active       bool   `json:"active"`
}

type ReconResponse struct {
	ReconciliationFormID string `json:"reconciliation_form_id"`
	EntryVersion         string `json:"entry_version"`
	Active               bool   `json:"active"`
	IsStamped            bool   `json:"is_stamped"`
	BallotsReceived      int    `json:"number_ballots_received"`
	SignaturesInVR       int    `json:"number_signatures_in_vr"`
	UnusedBallots        int    `json:"number_unused_ballots"`
	SpoiledBallots       int    `json:"number_spoiled_ballots"`
	CancelledBallots     int    `json:"number_cancelled_ballots"`
	BallotsInsideBox     int    `json:"number_ballots_inside_box"`
	UnstampedBallots     int    `json:"number_unstamped_ballots"`
	InvalidVotes         int    `json:"number_invalid_votes"`
	ValidVotes           int    `json:"number_valid_votes"`
	SortedAndCounted     int    `json:"number_sorted_and_counted"`
	BlankBallots         int    `json:"number_blank_ballots"`
}

type FormDetailResponse struct {
	Form    FormResponse     `json:"form"`
	Results []ResultResponse `json:"results"`
	Recons  []ReconResponse  `json:"reconciliation_forms"`
}

type IntakeResponse struct {
	Form        FormResponse `json:"form"`
	Duplicate   bool         `json:"duplicate"`
	NeedsCenter bool         `json:"needs_center"`
	PrintCover  bool         `json:"print_cover"`
}

type ConfirmIntakeRequest struct {
	IsMatch bool `json:"is_match"`
}

type AssignCenterStationRequest struct {
	CenterCode    int `json:"center_code"`
	StationNumber int `json:"station_number"`
}

type VoteEntryRequest struct {
	CandidateID string `json:"candidate_id"`
	Votes       int    `json:"votes"`
}

type ReconEntryRequest struct {
	IsStamped                        bool   `json:"is_stamped"`
	BallotNumberFrom                 string `json:"ballot_number_from,omitempty"`
	BallotNumberTo                   string `json:"ballot_number_to,omitempty"`
	NumberBallotsReceived            int    `json:"number_ballots_received"`
	NumberSignaturesInVR             int    `json:"number_signatures_in_vr"`
	NumberUnusedBallots              int    `json:"number_unused_ballots"`
	NumberSpoiledBallots             int    `json:"number_spoiled_ballots"`
	NumberCancelledBallots           int    `json:"number_cancelled_ballots"`
	NumberBallotsOutsideBox          int    `json:"number_ballots_outside_box"`
	NumberBallotsInsideBox           int    `json:"number_ballots_inside_box"`
	NumberBallotsInsideAndOutsideBox int    `json:"number_ballots_inside_and_outside_box"`
	NumberUnstampedBallots           int    `json:"number_unstamped_ballots"`
	NumberInvalidVotes               int    `json:"number_invalid_votes"`
	NumberValidVotes                 int    `json:"number_valid_votes"`
	NumberSortedAndCounted           int    `json:"number_sorted_and_counted"`
	NumberBlankBallots               int    `json:"number_blank_ballots"`
	SignaturePollingOfficer1         bool   `json:"signature_polling_officer_1"`
	SignaturePollingOfficer2         bool   `json:"signature_polling_officer_2"`
	SignaturePollingStationChair     bool   `json:"signature_polling_station_chair"`
	SignatureDated                   bool   `json:"signature_dated"`
}

type SubmitDataEntryRequest struct {
	Votes                 []VoteEntryRequest `json:"votes"`
	Recon                 *ReconEntryRequest `json:"reconciliation_form,omitempty"`
	ProcessingTimeSeconds int                `json:"processing_time_seconds,omitempty"`
}

type VoteMismatchResponse struct {
	CandidateID string `json:"candidate_id"`
	Votes1      int    `json:"data_entry_1_votes"`
	Votes2      int    `json:"data_entry_2_votes"`
}

type ReconMismatchResponse struct {
	Field  string `json:"field"`
	Value1 any    `json:"data_entry_1_value"`
	Value2 any    `json:"data_entry_2_value"`
}

type CorrectionsPreviewResponse struct {
	Form            FormResponse            `json:"form"`
	VoteMismatches  []VoteMismatchResponse  `json:"vote_mismatches"`
	ReconMismatches []ReconMismatchResponse `json:"reconciliation_mismatches"`
}

type SubmitCorrectionsRequest struct {
	VoteResolutions  map[string]int `json:"vote_resolutions,omitempty"`
	ReconResolutions map[string]any `json:"reconciliation_resolutions,omitempty"`
	Abandon          bool           `json:"abandon,omitempty"`
}

type QualityControlRequest struct {
	Decision             string `json:"decision"`
	RejectReason         string `json:"reject_reason,omitempty"`
	PassedReconciliation bool   `json:"passed_reconciliation,omitempty"`
}

// QualityControlResponse reports the form after the verdict plus whether an
// archive cover sheet should be printed for it.
type QualityControlResponse struct {
	Form       FormResponse `json:"form"`
	PrintCover bool         `json:"print_cover"`
}

type AuditReviewRequest struct {
	Action string `json:"action"`

	BlankReconciliation bool   `json:"blank_reconciliation,omitempty"`
	BlankResults        bool   `json:"blank_results,omitempty"`
	DamagedForm         bool   `json:"damaged_form,omitempty"`
	UnclearFigures      bool   `json:"unclear_figures,omitempty"`
	OtherProblem        string `json:"other_problem,omitempty"`

	ActionPrior string `json:"action_prior_to_recommendation,omitempty"`
	Resolution  string `json:"resolution_recommendation,omitempty"`
	Comment     string `json:"comment,omitempty"`
}

type AuditResponse struct {
	AuditID            string   `json:"audit_id"`
	ResultFormID       string   `json:"result_form_id"`
	Active             bool     `json:"active"`
	ForSuperadmin      bool     `json:"for_superadmin"`
	ReviewedTeam       bool     `json:"reviewed_team"`
	ReviewedSupervisor bool     `json:"reviewed_supervisor"`
	ActionPrior        string   `json:"action_prior_to_recommendation,omitempty"`
	Resolution         string   `json:"resolution_recommendation,omitempty"`
	TeamComment        string   `json:"team_comment,omitempty"`
	SupervisorComment  string   `json:"supervisor_comment,omitempty"`
	FailedCheckIDs     []string `json:"failed_quarantine_check_ids,omitempty"`
}

type CreateClearanceRequest struct {
	UserName string `json:"user_name,omitempty"`
}

type ClearanceReviewRequest struct {
	Action string `json:"action"`

	ActionPrior string `json:"action_prior_to_recommendation,omitempty"`
	Resolution  string `json:"resolution_recommendation,omitempty"`
	Comment     string `json:"comment,omitempty"`
}

type ClearanceResponse struct {
	ClearanceID        string `json:"clearance_id"`
	ResultFormID       string `json:"result_form_id"`
	Active             bool   `json:"active"`
	ReviewedTeam       bool   `json:"reviewed_team"`
	ReviewedSupervisor bool   `json:"reviewed_supervisor"`
	ActionPrior        string `json:"action_prior_to_recommendation,omitempty"`
	Resolution         string `json:"resolution_recommendation,omitempty"`
	TeamComment        string `json:"team_comment,omitempty"`
	SupervisorComment  string `json:"supervisor_comment,omitempty"`
	PrintCover         bool   `json:"print_cover"`
}

type RequestRecallRequest struct {
	Reason  string `json:"reason"`
	Comment string `json:"comment,omitempty"`
}

type ResolveRecallRequest struct {
	Approve bool   `json:"approve"`
	Comment string `json:"comment,omitempty"`
}

type WorkflowRequestResponse struct {
	RequestID       string `json:"request_id"`
	ResultFormID    string `json:"result_form_id"`
	RequestType     string `json:"request_type"`
	Status          string `json:"status"`
	RequesterID     string `json:"requester_id"`
	RequestReason   string `json:"request_reason,omitempty"`
	ApproverID      string `json:"approver_id,omitempty"`
	ApprovalComment string `json:"approval_comment,omitempty"`
}

type ConfigureQuarantineRequest struct {
	QuarantineCheckID string  `json:"quarantine_check_id,omitempty"`
	TallyID           string  `json:"tally_id"`
	Name              string  `json:"name"`
	Method            string  `json:"method"`
	Value             float64 `json:"value,omitempty"`
	Percentage        float64 `json:"percentage,omitempty"`
	Active            bool    `json:"active"`
}

type QuarantineCheckResponse struct {
	QuarantineCheckID string  `json:"quarantine_check_id"`
	TallyID           string  `json:"tally_id"`
	Name              string  `json:"name"`
	Method            string  `json:"method"`
	Value             float64 `json:"value"`
	Percentage        float64 `json:"percentage"`
	Active            bool    `json:"active"`
}

type CandidateTotalResponse struct {
	CandidateID         string `json:"candidate_id"`
	FullName            string `json:"full_name"`
	Order               int    `json:"order"`
	BallotNumber        int    `json:"ballot_number"`
	Votes               int    `json:"votes"`
	VotesWithQuarantine int    `json:"votes_included_quarantine"`
}

type BallotStandingResponse struct {
	BallotID                 string                   `json:"ballot_id"`
	BallotNumber             int                      `json:"ballot_number"`
	Stations                 int                      `json:"stations"`
	StationsCompleted        int                      `json:"stations_completed"`
	StationsPercentCompleted float64                  `json:"stations_percent_completed"`
	Totals                   []CandidateTotalResponse `json:"totals"`
	TopNDiverges             bool                     `json:"top_n_diverges"`
}

type CandidateTotalsResponse struct {
	Items []BallotStandingResponse `json:"items"`
}

type DuplicateVoteGroupResponse struct {
	CenterID string   `json:"center_id"`
	BallotID string   `json:"ballot_id"`
	Votes    []int    `json:"votes"`
	Barcodes []string `json:"barcodes"`
}

type DuplicateVotesResponse struct {
	Items []DuplicateVoteGroupResponse `json:"items"`
}

type FormHistoryRowResponse struct {
	UserID          string  `json:"user_id"`
	RecordedAt      string  `json:"recorded_at"`
	PreviousState   string  `json:"previous_state"`
	CurrentState    string  `json:"current_state"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type FormHistoryResponse struct {
	Items []FormHistoryRowResponse `json:"items"`
}
