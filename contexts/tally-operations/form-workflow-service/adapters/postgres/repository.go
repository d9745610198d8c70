package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
	"quorum/contexts/tally-operations/form-workflow-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the service's tables.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(
		&tallyModel{},
		&centerModel{},
		&stationModel{},
		&ballotModel{},
		&candidateModel{},
		&resultFormModel{},
		&resultModel{},
		&reconModel{},
		&qualityControlModel{},
		&auditModel{},
		&clearanceModel{},
		&quarantineCheckModel{},
		&workflowRequestModel{},
		&statsModel{},
		&revisionModel{},
		&outboxModel{},
	)
}

// ResultFormRepository

func (r *Repository) CreateForm(ctx context.Context, form entities.ResultForm) error {
	row := formModelFromEntity(form)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidInput
		}
		return r.logError("form_repo_create_form_failed", err,
			"form_id", row.ID, "barcode", row.Barcode)
	}
	return nil
}

func (r *Repository) UpdateForm(ctx context.Context, form entities.ResultForm) error {
	row := formModelFromEntity(form)
	result := r.db.WithContext(ctx).
		Model(&resultFormModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"form_state":                row.FormState,
			"previous_form_state":       row.PreviousFormState,
			"center_id":                 row.CenterID,
			"station_number":            row.StationNumber,
			"ballot_id":                 row.BallotID,
			"office":                    row.Office,
			"gender":                    row.Gender,
			"name":                      row.Name,
			"rejected_count":            row.RejectedCount,
			"audited_count":             row.AuditedCount,
			"duplicate_reviewed":        row.DuplicateReviewed,
			"reject_reason":             row.RejectReason,
			"skip_quarantine_checks":    row.SkipQuarantineChecks,
			"skip_all_zero_votes_check": row.SkipAllZeroVotesCheck,
			"user_id":                   row.UserID,
			"updated_at":                row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("form_repo_update_form_failed", result.Error, "form_id", row.ID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrFormNotFound
	}
	return nil
}

func (r *Repository) GetForm(ctx context.Context, formID string) (entities.ResultForm, error) {
	var row resultFormModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(formID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ResultForm{}, domainerrors.ErrFormNotFound
		}
		return entities.ResultForm{}, r.logError("form_repo_get_form_failed", err, "form_id", formID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetFormByBarcode(ctx context.Context, tallyID, barcode string) (entities.ResultForm, error) {
	var row resultFormModel
	err := r.db.WithContext(ctx).
		Where("tally_id = ?", strings.TrimSpace(tallyID)).
		Where("barcode = ?", strings.TrimSpace(barcode)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ResultForm{}, domainerrors.ErrFormNotFound
		}
		return entities.ResultForm{}, r.logError("form_repo_get_form_by_barcode_failed", err,
			"tally_id", tallyID, "barcode", barcode)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListForms(ctx context.Context, filter ports.FormFilter) ([]entities.ResultForm, error) {
	tx := r.db.WithContext(ctx).Model(&resultFormModel{})
	if filter.TallyID != "" {
		tx = tx.Where("tally_id = ?", filter.TallyID)
	}
	if filter.FormState != "" {
		tx = tx.Where("form_state = ?", string(filter.FormState))
	}
	if filter.CenterID != "" {
		tx = tx.Where("center_id = ?", filter.CenterID)
	}
	if filter.StationNumber != nil {
		tx = tx.Where("station_number = ?", *filter.StationNumber)
	}
	if filter.BallotID != "" {
		tx = tx.Where("ballot_id = ?", filter.BallotID)
	}
	var rows []resultFormModel
	if err := tx.Order("barcode ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("form_repo_list_forms_failed", err)
	}
	items := make([]entities.ResultForm, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) HighestBarcode(ctx context.Context, tallyID string) (int64, error) {
	var highest *int64
	err := r.db.WithContext(ctx).
		Model(&resultFormModel{}).
		Where("tally_id = ?", strings.TrimSpace(tallyID)).
		Select("MAX(CAST(barcode AS BIGINT))").
		Scan(&highest).
		Error
	if err != nil {
		return 0, r.logError("form_repo_highest_barcode_failed", err, "tally_id", tallyID)
	}
	if highest == nil {
		return 0, nil
	}
	return *highest, nil
}

// TallyRepository

func (r *Repository) GetTally(ctx context.Context, tallyID string) (entities.Tally, error) {
	var row tallyModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(tallyID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Tally{}, domainerrors.ErrTallyNotFound
		}
		return entities.Tally{}, r.logError("form_repo_get_tally_failed", err, "tally_id", tallyID)
	}
	return row.toEntity(), nil
}

// SaveTally upserts the tally row, keeping the original created_at on
// re-provisioning.
func (r *Repository) SaveTally(ctx context.Context, tally entities.Tally) error {
	row := tallyModel{
		ID:                         tally.TallyID,
		Name:                       tally.Name,
		Active:                     tally.Active,
		PrintCoverInIntake:         tally.PrintCoverInIntake,
		PrintCoverInClearance:      tally.PrintCoverInClearance,
		PrintCoverInQualityControl: tally.PrintCoverInQualityControl,
		CreatedAt:                  tally.CreatedAt,
		UpdatedAt:                  tally.UpdatedAt,
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":                           row.Name,
			"active":                         row.Active,
			"print_cover_in_intake":          row.PrintCoverInIntake,
			"print_cover_in_clearance":       row.PrintCoverInClearance,
			"print_cover_in_quality_control": row.PrintCoverInQualityControl,
			"updated_at":                     row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("form_repo_save_tally_failed", create.Error, "tally_id", row.ID)
	}
	return nil
}

// GeographyRepository

func (r *Repository) GetCenter(ctx context.Context, centerID string) (entities.Center, error) {
	var row centerModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(centerID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Center{}, domainerrors.ErrCenterNotFound
		}
		return entities.Center{}, r.logError("form_repo_get_center_failed", err, "center_id", centerID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetCenterByCode(ctx context.Context, tallyID string, code int) (entities.Center, error) {
	var row centerModel
	err := r.db.WithContext(ctx).
		Where("tally_id = ?", strings.TrimSpace(tallyID)).
		Where("code = ?", code).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Center{}, domainerrors.ErrCenterNotFound
		}
		return entities.Center{}, r.logError("form_repo_get_center_by_code_failed", err,
			"tally_id", tallyID, "code", code)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetStation(ctx context.Context, centerID string, stationNumber int) (entities.Station, error) {
	var row stationModel
	err := r.db.WithContext(ctx).
		Where("center_id = ?", strings.TrimSpace(centerID)).
		Where("station_number = ?", stationNumber).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Station{}, domainerrors.ErrStationNotFound
		}
		return entities.Station{}, r.logError("form_repo_get_station_failed", err,
			"center_id", centerID, "station_number", stationNumber)
	}
	return row.toEntity(), nil
}

// BallotRepository

func (r *Repository) GetBallot(ctx context.Context, ballotID string) (entities.Ballot, error) {
	var row ballotModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(ballotID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ballot{}, domainerrors.ErrBallotNotFound
		}
		return entities.Ballot{}, r.logError("form_repo_get_ballot_failed", err, "ballot_id", ballotID)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListCandidates(ctx context.Context, ballotID string) ([]entities.Candidate, error) {
	var rows []candidateModel
	if err := r.db.WithContext(ctx).
		Where("ballot_id = ?", strings.TrimSpace(ballotID)).
		Order("candidate_order ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("form_repo_list_candidates_failed", err, "ballot_id", ballotID)
	}
	items := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// ResultRepository

func (r *Repository) CreateResult(ctx context.Context, result entities.Result) error {
	row := resultModelFromEntity(result)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("form_repo_create_result_failed", err,
			"result_id", row.ID, "form_id", row.ResultFormID)
	}
	return nil
}

func (r *Repository) UpdateResult(ctx context.Context, result entities.Result) error {
	row := resultModelFromEntity(result)
	update := r.db.WithContext(ctx).
		Model(&resultModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"votes":                     row.Votes,
			"active":                    row.Active,
			"deactivated_by_request_id": row.DeactivatedByRequestID,
			"updated_at":                row.UpdatedAt,
		})
	if update.Error != nil {
		return r.logError("form_repo_update_result_failed", update.Error, "result_id", row.ID)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrInvalidInput
	}
	return nil
}

func (r *Repository) ListResults(ctx context.Context, filter ports.ResultFilter) ([]entities.Result, error) {
	tx := r.db.WithContext(ctx).Model(&resultModel{})
	if filter.ResultFormID != "" {
		tx = tx.Where("result_form_id = ?", filter.ResultFormID)
	}
	if filter.EntryVersion != "" {
		tx = tx.Where("entry_version = ?", string(filter.EntryVersion))
	}
	if filter.ActiveOnly {
		tx = tx.Where("active = ?", true)
	}
	var rows []resultModel
	if err := tx.Order("candidate_id ASC, created_at ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("form_repo_list_results_failed", err,
			"form_id", filter.ResultFormID)
	}
	items := make([]entities.Result, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeactivateResults(ctx context.Context, formID string, requestID string) error {
	update := r.db.WithContext(ctx).
		Model(&resultModel{}).
		Where("result_form_id = ?", strings.TrimSpace(formID)).
		Where("active = ?", true).
		Updates(map[string]any{
			"active":                    false,
			"deactivated_by_request_id": strings.TrimSpace(requestID),
		})
	if update.Error != nil {
		return r.logError("form_repo_deactivate_results_failed", update.Error, "form_id", formID)
	}
	return nil
}

// ReconRepository

func (r *Repository) CreateRecon(ctx context.Context, recon entities.ReconciliationForm) error {
	row := reconModelFromEntity(recon)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("form_repo_create_recon_failed", err,
			"recon_id", row.ID, "form_id", row.ResultFormID)
	}
	return nil
}

func (r *Repository) UpdateRecon(ctx context.Context, recon entities.ReconciliationForm) error {
	row := reconModelFromEntity(recon)
	update := r.db.WithContext(ctx).
		Model(&reconModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"active":                    row.Active,
			"deactivated_by_request_id": row.DeactivatedByRequestID,
			"updated_at":                row.UpdatedAt,
		})
	if update.Error != nil {
		return r.logError("form_repo_update_recon_failed", update.Error, "recon_id", row.ID)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrInvalidInput
	}
	return nil
}

func (r *Repository) ListRecons(ctx context.Context, formID string, activeOnly bool) ([]entities.ReconciliationForm, error) {
	tx := r.db.WithContext(ctx).
		Model(&reconModel{}).
		Where("result_form_id = ?", strings.TrimSpace(formID))
	if activeOnly {
		tx = tx.Where("active = ?", true)
	}
	var rows []reconModel
	if err := tx.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("form_repo_list_recons_failed", err, "form_id", formID)
	}
	items := make([]entities.ReconciliationForm, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeactivateRecons(ctx context.Context, formID string, requestID string) error {
	update := r.db.WithContext(ctx).
		Model(&reconModel{}).
		Where("result_form_id = ?", strings.TrimSpace(formID)).
		Where("active = ?", true).
		Updates(map[string]any{
			"active":                    false,
			"deactivated_by_request_id": strings.TrimSpace(requestID),
		})
	if update.Error != nil {
		return r.logError("form_repo_deactivate_recons_failed", update.Error, "form_id", formID)
	}
	return nil
}

// ReviewRepository

func (r *Repository) CreateQualityControl(ctx context.Context, review entities.QualityControl) error {
	row := qualityControlModelFromEntity(review)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("form_repo_create_qc_failed", err, "qc_id", row.ID)
	}
	return nil
}

func (r *Repository) UpdateQualityControl(ctx context.Context, review entities.QualityControl) error {
	row := qualityControlModelFromEntity(review)
	update := r.db.WithContext(ctx).
		Model(&qualityControlModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"supervisor_id":         row.SupervisorID,
			"active":                row.Active,
			"passed_qc":             row.PassedQC,
			"passed_reconciliation": row.PassedReconciliation,
			"updated_at":            row.UpdatedAt,
		})
	if update.Error != nil {
		return r.logError("form_repo_update_qc_failed", update.Error, "qc_id", row.ID)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrReviewNotFound
	}
	return nil
}

func (r *Repository) ActiveQualityControl(ctx context.Context, formID string) (entities.QualityControl, error) {
	var row qualityControlModel
	err := r.db.WithContext(ctx).
		Where("result_form_id = ?", strings.TrimSpace(formID)).
		Where("active = ?", true).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.QualityControl{}, domainerrors.ErrReviewNotFound
		}
		return entities.QualityControl{}, r.logError("form_repo_active_qc_failed", err, "form_id", formID)
	}
	return row.toEntity(), nil
}

func (r *Repository) CreateAudit(ctx context.Context, audit entities.Audit) error {
	row, err := auditModelFromEntity(audit)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("form_repo_create_audit_failed", err, "audit_id", row.ID)
	}
	return nil
}

func (r *Repository) UpdateAudit(ctx context.Context, audit entities.Audit) error {
	row, err := auditModelFromEntity(audit)
	if err != nil {
		return err
	}
	update := r.db.WithContext(ctx).
		Model(&auditModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"user_id":              row.UserID,
			"supervisor_id":        row.SupervisorID,
			"active":               row.Active,
			"for_superadmin":       row.ForSuperadmin,
			"reviewed_team":        row.ReviewedTeam,
			"reviewed_supervisor":  row.ReviewedSupervisor,
			"blank_reconciliation": row.BlankReconciliation,
			"blank_results":        row.BlankResults,
			"damaged_form":         row.DamagedForm,
			"unclear_figures":      row.UnclearFigures,
			"other_problem":        row.OtherProblem,
			"action_prior":         row.ActionPrior,
			"resolution":           row.Resolution,
			"team_comment":         row.TeamComment,
			"supervisor_comment":   row.SupervisorComment,
			"failed_check_ids":     row.FailedCheckIDs,
			"updated_at":           row.UpdatedAt,
		})
	if update.Error != nil {
		return r.logError("form_repo_update_audit_failed", update.Error, "audit_id", row.ID)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrReviewNotFound
	}
	return nil
}

func (r *Repository) ActiveAudit(ctx context.Context, formID string) (entities.Audit, error) {
	var row auditModel
	err := r.db.WithContext(ctx).
		Where("result_form_id = ?", strings.TrimSpace(formID)).
		Where("active = ?", true).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Audit{}, domainerrors.ErrReviewNotFound
		}
		return entities.Audit{}, r.logError("form_repo_active_audit_failed", err, "form_id", formID)
	}
	return row.toEntity()
}

func (r *Repository) DeactivateAudits(ctx context.Context, formID string) error {
	update := r.db.WithContext(ctx).
		Model(&auditModel{}).
		Where("result_form_id = ?", strings.TrimSpace(formID)).
		Where("active = ?", true).
		Update("active", false)
	if update.Error != nil {
		return r.logError("form_repo_deactivate_audits_failed", update.Error, "form_id", formID)
	}
	return nil
}

func (r *Repository) CreateClearance(ctx context.Context, clearance entities.Clearance) error {
	row := clearanceModelFromEntity(clearance)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("form_repo_create_clearance_failed", err, "clearance_id", row.ID)
	}
	return nil
}

func (r *Repository) UpdateClearance(ctx context.Context, clearance entities.Clearance) error {
	row := clearanceModelFromEntity(clearance)
	update := r.db.WithContext(ctx).
		Model(&clearanceModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"user_id":                  row.UserID,
			"supervisor_id":            row.SupervisorID,
			"active":                   row.Active,
			"reviewed_team":            row.ReviewedTeam,
			"reviewed_supervisor":      row.ReviewedSupervisor,
			"action_prior":             row.ActionPrior,
			"resolution":               row.Resolution,
			"team_comment":             row.TeamComment,
			"supervisor_comment":       row.SupervisorComment,
			"date_team_modified":       row.DateTeamModified,
			"date_supervisor_modified": row.DateSupervisorModified,
			"updated_at":               row.UpdatedAt,
		})
	if update.Error != nil {
		return r.logError("form_repo_update_clearance_failed", update.Error, "clearance_id", row.ID)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrReviewNotFound
	}
	return nil
}

func (r *Repository) ActiveClearance(ctx context.Context, formID string) (entities.Clearance, error) {
	var row clearanceModel
	err := r.db.WithContext(ctx).
		Where("result_form_id = ?", strings.TrimSpace(formID)).
		Where("active = ?", true).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Clearance{}, domainerrors.ErrReviewNotFound
		}
		return entities.Clearance{}, r.logError("form_repo_active_clearance_failed", err, "form_id", formID)
	}
	return row.toEntity(), nil
}

// QuarantineCheckRepository

func (r *Repository) ListQuarantineChecks(ctx context.Context, tallyID string, activeOnly bool) ([]entities.QuarantineCheck, error) {
	tx := r.db.WithContext(ctx).Model(&quarantineCheckModel{})
	if tallyID != "" {
		tx = tx.Where("tally_id = ?", tallyID)
	}
	if activeOnly {
		tx = tx.Where("active = ?", true)
	}
	var rows []quarantineCheckModel
	if err := tx.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("form_repo_list_quarantine_checks_failed", err, "tally_id", tallyID)
	}
	items := make([]entities.QuarantineCheck, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpsertQuarantineCheck(ctx context.Context, check entities.QuarantineCheck) error {
	row := quarantineCheckModelFromEntity(check)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":       row.Name,
			"method":     row.Method,
			"value":      row.Value,
			"percentage": row.Percentage,
			"active":     row.Active,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("form_repo_upsert_quarantine_check_failed", create.Error, "check_id", row.ID)
	}
	return nil
}

// WorkflowRequestRepository

func (r *Repository) CreateRequest(ctx context.Context, request entities.WorkflowRequest) error {
	row := requestModelFromEntity(request)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("form_repo_create_request_failed", err, "request_id", row.ID)
	}
	return nil
}

func (r *Repository) UpdateRequest(ctx context.Context, request entities.WorkflowRequest) error {
	row := requestModelFromEntity(request)
	update := r.db.WithContext(ctx).
		Model(&workflowRequestModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"status":           row.Status,
			"approver_id":      row.ApproverID,
			"approval_comment": row.ApprovalComment,
			"resolved_at":      row.ResolvedAt,
			"updated_at":       row.UpdatedAt,
		})
	if update.Error != nil {
		return r.logError("form_repo_update_request_failed", update.Error, "request_id", row.ID)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrRequestNotFound
	}
	return nil
}

func (r *Repository) GetRequest(ctx context.Context, requestID string) (entities.WorkflowRequest, error) {
	var row workflowRequestModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(requestID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.WorkflowRequest{}, domainerrors.ErrRequestNotFound
		}
		return entities.WorkflowRequest{}, r.logError("form_repo_get_request_failed", err, "request_id", requestID)
	}
	return row.toEntity(), nil
}

func (r *Repository) PendingRequest(ctx context.Context, formID string, requestType entities.RequestType) (entities.WorkflowRequest, bool, error) {
	var row workflowRequestModel
	err := r.db.WithContext(ctx).
		Where("result_form_id = ?", strings.TrimSpace(formID)).
		Where("request_type = ?", string(requestType)).
		Where("status = ?", string(entities.RequestStatusPending)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.WorkflowRequest{}, false, nil
		}
		return entities.WorkflowRequest{}, false, r.logError("form_repo_pending_request_failed", err, "form_id", formID)
	}
	return row.toEntity(), true, nil
}

// StatsRepository

func (r *Repository) AppendStats(ctx context.Context, stats entities.ResultFormStats) error {
	row := statsModelFromEntity(stats)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("form_repo_append_stats_failed", err, "stats_id", row.ID)
	}
	return nil
}

func (r *Repository) LatestStatsByRole(ctx context.Context, formID, role string) (entities.ResultFormStats, bool, error) {
	var row statsModel
	err := r.db.WithContext(ctx).
		Where("result_form_id = ?", strings.TrimSpace(formID)).
		Where("user_role = ?", strings.TrimSpace(role)).
		Order("created_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ResultFormStats{}, false, nil
		}
		return entities.ResultFormStats{}, false, r.logError("form_repo_latest_stats_failed", err,
			"form_id", formID, "role", role)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) UpdateStats(ctx context.Context, stats entities.ResultFormStats) error {
	row := statsModelFromEntity(stats)
	update := r.db.WithContext(ctx).
		Model(&statsModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"processing_time_seconds": row.ProcessingTimeSeconds,
			"approved_by_supervisor":  row.ApprovedBySupervisor,
			"rejected_by_supervisor":  row.RejectedBySupervisor,
			"data_entry_errors":       row.DataEntryErrors,
			"updated_at":              row.UpdatedAt,
		})
	if update.Error != nil {
		return r.logError("form_repo_update_stats_failed", update.Error, "stats_id", row.ID)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrInvalidInput
	}
	return nil
}

// RevisionLogger

func (r *Repository) RecordRevision(ctx context.Context, entry ports.RevisionEntry) error {
	fields, err := json.Marshal(entry.FieldDict)
	if err != nil {
		return r.logError("form_repo_record_revision_marshal_failed", err,
			"entity_type", entry.EntityType, "entity_id", entry.EntityID)
	}
	row := revisionModel{
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		FieldDict:  fields,
		UserID:     entry.UserID,
		RecordedAt: entry.RecordedAt.UTC(),
	}
	if row.RecordedAt.IsZero() {
		row.RecordedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("form_repo_record_revision_failed", err,
			"entity_type", entry.EntityType, "entity_id", entry.EntityID)
	}
	return nil
}

func (r *Repository) ListRevisions(ctx context.Context, entityType, entityID string) ([]ports.RevisionEntry, error) {
	var rows []revisionModel
	if err := r.db.WithContext(ctx).
		Where("entity_type = ?", strings.TrimSpace(entityType)).
		Where("entity_id = ?", strings.TrimSpace(entityID)).
		Order("sequence ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("form_repo_list_revisions_failed", err,
			"entity_type", entityType, "entity_id", entityID)
	}
	items := make([]ports.RevisionEntry, 0, len(rows))
	for _, row := range rows {
		var fields map[string]any
		if len(row.FieldDict) > 0 {
			if err := json.Unmarshal(row.FieldDict, &fields); err != nil {
				return nil, err
			}
		}
		items = append(items, ports.RevisionEntry{
			Sequence:   row.Sequence,
			EntityType: row.EntityType,
			EntityID:   row.EntityID,
			FieldDict:  fields,
			UserID:     row.UserID,
			RecordedAt: row.RecordedAt.UTC(),
		})
	}
	return items, nil
}

// OutboxWriter / OutboxRepository

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("form_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("form_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("form_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("form_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidInput
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "tally-operations/form-workflow-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("form workflow repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.ResultFormRepository = (*Repository)(nil)
var _ ports.TallyRepository = (*Repository)(nil)
var _ ports.GeographyRepository = (*Repository)(nil)
var _ ports.BallotRepository = (*Repository)(nil)
var _ ports.ResultRepository = (*Repository)(nil)
var _ ports.ReconRepository = (*Repository)(nil)
var _ ports.ReviewRepository = (*Repository)(nil)
var _ ports.QuarantineCheckRepository = (*Repository)(nil)
var _ ports.WorkflowRequestRepository = (*Repository)(nil)
var _ ports.StatsRepository = (*Repository)(nil)
var _ ports.RevisionLogger = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
