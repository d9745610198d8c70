package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"quorum/contexts/tally-operations/form-workflow-service/adapters/memory"
	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
)

func seedForm(t *testing.T, store *memory.Store, form entities.ResultForm) {
	t.Helper()
	if err := store.CreateForm(context.Background(), form); err != nil {
		t.Fatalf("seed form: %v", err)
	}
}

func TestSubmitBarcodeResolvesForm(t *testing.T) {
	store := memory.NewStore()
	seedForm(t, store, entities.ResultForm{
		ResultFormID: "form-1",
		TallyID:      "tally-1",
		Barcode:      "10000001",
		FormState:    entities.FormStateUnsubmitted,
	})

	uc := SubmitBarcodeUseCase{Forms: store}
	form, err := uc.Execute(context.Background(), SubmitBarcodeCommand{
		TallyID:     "tally-1",
		Barcode:     "10000001",
		BarcodeCopy: "10000001",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if form.ResultFormID != "form-1" {
		t.Fatalf("resolved wrong form %s", form.ResultFormID)
	}
}

func TestSubmitBarcodeScanOverridesTypedPair(t *testing.T) {
	store := memory.NewStore()
	seedForm(t, store, entities.ResultForm{
		ResultFormID: "form-1",
		TallyID:      "tally-1",
		Barcode:      "10000001",
		FormState:    entities.FormStateUnsubmitted,
	})

	uc := SubmitBarcodeUseCase{Forms: store}
	form, err := uc.Execute(context.Background(), SubmitBarcodeCommand{
		TallyID:     "tally-1",
		Barcode:     "mistyped",
		BarcodeCopy: "also-wrong",
		Scan:        "10000001",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if form.ResultFormID != "form-1" {
		t.Fatalf("resolved wrong form %s", form.ResultFormID)
	}
}

func TestSubmitBarcodeCopyMismatch(t *testing.T) {
	uc := SubmitBarcodeUseCase{Forms: memory.NewStore()}
	_, err := uc.Execute(context.Background(), SubmitBarcodeCommand{
		TallyID:     "tally-1",
		Barcode:     "10000001",
		BarcodeCopy: "10000002",
	})
	if !errors.Is(err, domainerrors.ErrBarcodeMismatch) {
		t.Fatalf("expected barcode mismatch, got %v", err)
	}
}

func TestSubmitBarcodeValidation(t *testing.T) {
	uc := SubmitBarcodeUseCase{Forms: memory.NewStore()}
	for _, barcode := range []string{"", "12ab34", "12 34", strings.Repeat("9", 256)} {
		_, err := uc.Execute(context.Background(), SubmitBarcodeCommand{
			TallyID:     "tally-1",
			Barcode:     barcode,
			BarcodeCopy: barcode,
		})
		if !errors.Is(err, domainerrors.ErrInvalidBarcode) {
			t.Fatalf("barcode %q: expected invalid barcode, got %v", barcode, err)
		}
	}
}

func TestSubmitBarcodeUnknownForm(t *testing.T) {
	uc := SubmitBarcodeUseCase{Forms: memory.NewStore()}
	_, err := uc.Execute(context.Background(), SubmitBarcodeCommand{
		TallyID:     "tally-1",
		Barcode:     "10000001",
		BarcodeCopy: "10000001",
	})
	if !errors.Is(err, domainerrors.ErrFormNotFound) {
		t.Fatalf("expected form not found, got %v", err)
	}
}
