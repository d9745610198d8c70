package queries

import (
	"context"

	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
)

// FormDetail is a form with its current captures attached.
type FormDetail struct {
	Form    entities.ResultForm
	Results []entities.Result
	Recons  []entities.ReconciliationForm
}

type GetFormUseCase struct {
	Forms   ports.ResultFormRepository
	Results ports.ResultRepository
	Recons  ports.ReconRepository
}

func (uc GetFormUseCase) Execute(ctx context.Context, formID string) (FormDetail, error) {
	form, err := uc.Forms.GetForm(ctx, formID)
	if err != nil {
		return FormDetail{}, err
	}
	results, err := uc.Results.ListResults(ctx, ports.ResultFilter{
		ResultFormID: form.ResultFormID,
		ActiveOnly:   true,
	})
	if err != nil {
		return FormDetail{}, err
	}
	recons, err := uc.Recons.ListRecons(ctx, form.ResultFormID, true)
	if err != nil {
		return FormDetail{}, err
	}
	return FormDetail{Form: form, Results: results, Recons: recons}, nil
}

type ListFormsUseCase struct {
	Forms ports.ResultFormRepository
}

func (uc ListFormsUseCase) Execute(ctx context.Context, filter ports.FormFilter) ([]entities.ResultForm, error) {
	return uc.Forms.ListForms(ctx, filter)
}
