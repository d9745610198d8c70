package formworkflow

import (
	"log/slog"

	httpadapter "quorum/contexts/tally-operations/form-workflow-service/adapters/http"
	"quorum/contexts/tally-operations/form-workflow-service/adapters/memory"
	"quorum/contexts/tally-operations/form-workflow-service/application/commands"
	"quorum/contexts/tally-operations/form-workflow-service/application/queries"
	"quorum/contexts/tally-operations/form-workflow-service/application/workers"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Relay   workers.OutboxRelay
	Store   *memory.Store
}

type Dependencies struct {
	Forms     ports.ResultFormRepository
	Tallies   ports.TallyRepository
	Geography ports.GeographyRepository
	Ballots   ports.BallotRepository
	Results   ports.ResultRepository
	Recons    ports.ReconRepository
	Reviews   ports.ReviewRepository
	Checks    ports.QuarantineCheckRepository
	Requests  ports.WorkflowRequestRepository
	Stats     ports.StatsRepository
	Revisions ports.RevisionLogger
	Outbox    ports.OutboxWriter
	Relay     ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger

	// StartBarcode seeds replacement-form barcode generation.
	StartBarcode int64
	// OCVCenterMin is the first out-of-country center code; centers below
	// it file reconciliation forms.
	OCVCenterMin int
}

func NewModule(deps Dependencies) Module {
	gate := commands.QuarantineGate{
		Forms:     deps.Forms,
		Geography: deps.Geography,
		Results:   deps.Results,
		Recons:    deps.Recons,
		Reviews:   deps.Reviews,
		Checks:    deps.Checks,
		Revisions: deps.Revisions,
		Outbox:    deps.Outbox,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}

	handler := httpadapter.Handler{
		Barcodes: commands.SubmitBarcodeUseCase{
			Forms:  deps.Forms,
			Logger: deps.Logger,
		},
		FormCreator: commands.CreateFormUseCase{
			Forms:        deps.Forms,
			Clock:        deps.Clock,
			IDGen:        deps.IDGen,
			Revisions:    deps.Revisions,
			StartBarcode: deps.StartBarcode,
			Logger:       deps.Logger,
		},
		Intake: commands.IntakeUseCase{
			Forms:     deps.Forms,
			Tallies:   deps.Tallies,
			Geography: deps.Geography,
			Ballots:   deps.Ballots,
			Reviews:   deps.Reviews,
			Revisions: deps.Revisions,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
		DataEntry: commands.SubmitDataEntryUseCase{
			Forms:        deps.Forms,
			Geography:    deps.Geography,
			Ballots:      deps.Ballots,
			Results:      deps.Results,
			Recons:       deps.Recons,
			Reviews:      deps.Reviews,
			Stats:        deps.Stats,
			Revisions:    deps.Revisions,
			Outbox:       deps.Outbox,
			Clock:        deps.Clock,
			IDGen:        deps.IDGen,
			Logger:       deps.Logger,
			OCVCenterMin: deps.OCVCenterMin,
		},
		Corrections: commands.SubmitCorrectionsUseCase{
			Forms:     deps.Forms,
			Results:   deps.Results,
			Recons:    deps.Recons,
			Stats:     deps.Stats,
			Revisions: deps.Revisions,
			Outbox:    deps.Outbox,
			Clock:     deps.Clock,
			IDGen:     deps.IDGen,
			Logger:    deps.Logger,
		},
		QC: commands.QualityControlUseCase{
			Forms:     deps.Forms,
			Tallies:   deps.Tallies,
			Ballots:   deps.Ballots,
			Results:   deps.Results,
			Recons:    deps.Recons,
			Reviews:   deps.Reviews,
			Revisions: deps.Revisions,
			Outbox:    deps.Outbox,
			Clock:     deps.Clock,
			IDGen:     deps.IDGen,
			Logger:    deps.Logger,
			Gate:      gate,
		},
		AuditCases: commands.CreateAuditUseCase{
			Forms:     deps.Forms,
			Reviews:   deps.Reviews,
			Revisions: deps.Revisions,
			Clock:     deps.Clock,
			IDGen:     deps.IDGen,
			Logger:    deps.Logger,
		},
		AuditReview: commands.AuditReviewUseCase{
			Forms:     deps.Forms,
			Results:   deps.Results,
			Recons:    deps.Recons,
			Reviews:   deps.Reviews,
			Revisions: deps.Revisions,
			Clock:     deps.Clock,
			IDGen:     deps.IDGen,
			Logger:    deps.Logger,
		},
		Clearances: commands.CreateClearanceUseCase{
			Forms:     deps.Forms,
			Tallies:   deps.Tallies,
			Results:   deps.Results,
			Recons:    deps.Recons,
			Reviews:   deps.Reviews,
			Revisions: deps.Revisions,
			Clock:     deps.Clock,
			IDGen:     deps.IDGen,
			Logger:    deps.Logger,
		},
		ClearReview: commands.ClearanceReviewUseCase{
			Forms:     deps.Forms,
			Results:   deps.Results,
			Recons:    deps.Recons,
			Reviews:   deps.Reviews,
			Revisions: deps.Revisions,
			Outbox:    deps.Outbox,
			Clock:     deps.Clock,
			IDGen:     deps.IDGen,
			Logger:    deps.Logger,
		},
		Recalls: commands.RequestRecallUseCase{
			Forms:    deps.Forms,
			Requests: deps.Requests,
			Clock:    deps.Clock,
			IDGen:    deps.IDGen,
			Logger:   deps.Logger,
		},
		Resolutions: commands.ResolveRecallUseCase{
			Forms:     deps.Forms,
			Results:   deps.Results,
			Recons:    deps.Recons,
			Reviews:   deps.Reviews,
			Requests:  deps.Requests,
			Revisions: deps.Revisions,
			Outbox:    deps.Outbox,
			Clock:     deps.Clock,
			IDGen:     deps.IDGen,
			Logger:    deps.Logger,
		},
		Quarantine: commands.ConfigureQuarantineUseCase{
			Checks: deps.Checks,
			Clock:  deps.Clock,
			IDGen:  deps.IDGen,
			Logger: deps.Logger,
		},
		Forms: queries.GetFormUseCase{
			Forms:   deps.Forms,
			Results: deps.Results,
			Recons:  deps.Recons,
		},
		FormLists: queries.ListFormsUseCase{
			Forms: deps.Forms,
		},
		Totals: queries.CandidateTotalsUseCase{
			Forms:   deps.Forms,
			Ballots: deps.Ballots,
			Results: deps.Results,
			Logger:  deps.Logger,
		},
		Duplicates: queries.DuplicateVotesUseCase{
			Forms:   deps.Forms,
			Ballots: deps.Ballots,
			Results: deps.Results,
		},
		History: queries.FormHistoryUseCase{
			Forms:     deps.Forms,
			Revisions: deps.Revisions,
		},
		Logger: deps.Logger,
	}

	handler.Exports = queries.ExportUseCase{
		Forms:      deps.Forms,
		Geography:  deps.Geography,
		Ballots:    deps.Ballots,
		Results:    deps.Results,
		Recons:     deps.Recons,
		Revisions:  deps.Revisions,
		Totals:     handler.Totals,
		Duplicates: handler.Duplicates,
		History:    handler.History,
	}

	module := Module{Handler: handler}
	if deps.Relay != nil && deps.Publisher != nil {
		module.Relay = workers.OutboxRelay{
			Outbox:    deps.Relay,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		}
	}
	return module
}

// NewInMemoryModule wires the module against the in-memory store, for tests
// and local runs.
func NewInMemoryModule(logger *slog.Logger, startBarcode int64, ocvCenterMin int) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Forms:        store,
		Tallies:      store,
		Geography:    store,
		Ballots:      store,
		Results:      store,
		Recons:       store,
		Reviews:      store,
		Checks:       store,
		Requests:     store,
		Stats:        store,
		Revisions:    store,
		Outbox:       store,
		Relay:        store,
		Clock:        memory.SystemClock{},
		IDGen:        memory.UUIDGenerator{},
		Logger:       logger,
		StartBarcode: startBarcode,
		OCVCenterMin: ocvCenterMin,
	})
	module.Store = store
	return module
}
