package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trongle278/seasondecorbe-sub000/internal/quotation"
	"github.com/trongle278/seasondecorbe-sub000/pkg/db/models"
	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
	pkgerrors "github.com/trongle278/seasondecorbe-sub000/pkg/errors"
)

type testQuotationService struct {
	createFn  func(ctx context.Context, input quotation.CreateInput) (*models.Quotation, error)
	confirmFn func(ctx context.Context, customerID uuid.UUID, code string) (*models.Quotation, error)
	denyFn    func(ctx context.Context, customerID uuid.UUID, code string) (*models.Quotation, error)
	getFn     func(ctx context.Context, code string) (*models.Quotation, error)
}

func (s *testQuotationService) Create(ctx context.Context, input quotation.CreateInput) (*models.Quotation, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return nil, nil
}

func (s *testQuotationService) Confirm(ctx context.Context, customerID uuid.UUID, code string) (*models.Quotation, error) {
	if s.confirmFn != nil {
		return s.confirmFn(ctx, customerID, code)
	}
	return nil, nil
}

func (s *testQuotationService) Deny(ctx context.Context, customerID uuid.UUID, code string) (*models.Quotation, error) {
	if s.denyFn != nil {
		return s.denyFn(ctx, customerID, code)
	}
	return nil, nil
}

func (s *testQuotationService) GetByCode(ctx context.Context, code string) (*models.Quotation, error) {
	if s.getFn != nil {
		return s.getFn(ctx, code)
	}
	return nil, nil
}

func TestCreateQuotationForwardsCosts(t *testing.T) {
	providerID := uuid.New()
	svc := &testQuotationService{
		createFn: func(ctx context.Context, input quotation.CreateInput) (*models.Quotation, error) {
			if input.ProviderID != providerID {
				t.Fatalf("unexpected provider %s", input.ProviderID)
			}
			if input.BookingCode != "BKG00000007" {
				t.Fatalf("unexpected booking code %q", input.BookingCode)
			}
			if !input.MaterialCost.Equal(decimal.RequireFromString("1000000")) {
				t.Fatalf("unexpected material cost %s", input.MaterialCost)
			}
			if !input.DepositPercentage.Equal(decimal.RequireFromString("15")) {
				t.Fatalf("unexpected deposit percentage %s", input.DepositPercentage)
			}
			return &models.Quotation{
				Code:              "QTN00000001",
				Status:            enums.QuotationStatusPending,
				MaterialCost:      input.MaterialCost,
				ConstructionCost:  input.ConstructionCost,
				DepositPercentage: input.DepositPercentage,
			}, nil
		},
	}

	body, _ := json.Marshal(map[string]any{
		"booking_code":       "BKG00000007",
		"material_cost":      "1000000",
		"construction_cost":  "500000",
		"product_cost":       "250000",
		"deposit_percentage": "15",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withAccount(req, providerID)

	resp := httptest.NewRecorder()
	CreateQuotation(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data quotationResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Code != "QTN00000001" {
		t.Fatalf("unexpected code %q", envelope.Data.Code)
	}
}

func TestConfirmQuotationNotOwner(t *testing.T) {
	svc := &testQuotationService{
		confirmFn: func(ctx context.Context, customerID uuid.UUID, code string) (*models.Quotation, error) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "quotation does not belong to this customer")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotations/QTN00000001/confirm", nil)
	req = withCode(withAccount(req, uuid.New()), "QTN00000001")

	resp := httptest.NewRecorder()
	ConfirmQuotation(svc, testLogger())(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestDenyQuotationForwardsIdentity(t *testing.T) {
	customerID := uuid.New()
	called := false
	svc := &testQuotationService{
		denyFn: func(ctx context.Context, cid uuid.UUID, code string) (*models.Quotation, error) {
			called = true
			if cid != customerID {
				t.Fatalf("unexpected customer %s", cid)
			}
			return &models.Quotation{Code: code, Status: enums.QuotationStatusDenied}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotations/QTN00000001/deny", nil)
	req = withCode(withAccount(req, customerID), "QTN00000001")

	resp := httptest.NewRecorder()
	DenyQuotation(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestGetQuotationMissingCode(t *testing.T) {
	svc := &testQuotationService{
		getFn: func(ctx context.Context, code string) (*models.Quotation, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotations/QTN99999999", nil)
	req = withCode(req, "QTN99999999")

	resp := httptest.NewRecorder()
	GetQuotation(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}
