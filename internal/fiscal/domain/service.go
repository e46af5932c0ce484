package domain

import (
	"context"
	"time"
)

type FiscalizeRequest struct {
	InvoiceID int64
	// IssuerTIN identifies the selling business. When empty the service
	// falls back to the organisation's latest tax profile TIN.
	IssuerTIN string
}

type FiscalResponse struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"org_id"`
	InvoiceID   string    `json:"invoice_id"`
	IssuerTIN   string    `json:"issuer_tin"`
	FiscalCode  string    `json:"fiscal_code"`
	FiscalDate  time.Time `json:"fiscal_date"`
	GrossAmount int64     `json:"gross_amount"`
	VatAmount   int64     `json:"vat_amount"`
	RateBps     int64     `json:"rate_bps"`
	CreatedAt   time.Time `json:"created_at"`
	// AlreadyFiscalized is true when the invoice had a code before this call.
	AlreadyFiscalized bool `json:"already_fiscalized"`
}

type VerifyResponse struct {
	FiscalCode  string    `json:"fiscal_code"`
	InvoiceID   string    `json:"invoice_id"`
	IssuerTIN   string    `json:"issuer_tin"`
	FiscalDate  time.Time `json:"fiscal_date"`
	GrossAmount int64     `json:"gross_amount"`
	Valid       bool      `json:"valid"`
}

type Service interface {
	// Fiscalize assigns a fiscal code to a finalized invoice. Repeating the
	// call returns the code assigned the first time.
	Fiscalize(ctx context.Context, req FiscalizeRequest) (*FiscalResponse, error)
	// Verify checks that a code exists and that it still matches the stored
	// invoice facts it was derived from.
	Verify(ctx context.Context, code string) (*VerifyResponse, error)
}
