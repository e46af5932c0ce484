package domain

import (
	"context"
	"time"
)

// ComputeLineRequest is a stateless single-line computation.
type ComputeLineRequest struct {
	NetAmount int64    `json:"net_amount" binding:"required"`
	Category  Category `json:"category" binding:"required"`
}

type ComputeLineResponse struct {
	NetAmount   int64    `json:"net_amount"`
	Category    Category `json:"category"`
	RateBps     int64    `json:"rate_bps"`
	VatAmount   int64    `json:"vat_amount"`
	GrossAmount int64    `json:"gross_amount"`
}

// GenerateReturnRequest builds a return for a monthly period. Period is
// given as the first day of the month; the window is [month, month+1).
type GenerateReturnRequest struct {
	PeriodStart time.Time
}

type ReturnResponse struct {
	ID              string     `json:"id"`
	OrgID           string     `json:"org_id"`
	PeriodStart     time.Time  `json:"period_start"`
	PeriodEnd       time.Time  `json:"period_end"`
	TotalOutputVat  int64      `json:"total_output_vat"`
	TotalInputVat   int64      `json:"total_input_vat"`
	NetVat          int64      `json:"net_vat"`
	OutputLineCount int        `json:"output_line_count"`
	InputLineCount  int        `json:"input_line_count"`
	Policy          string     `json:"policy"`
	Status          string     `json:"status"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type ListReturnsRequest struct {
	Limit int
}

type Service interface {
	// ComputeLine computes VAT for a single line at the current policy rate.
	ComputeLine(ctx context.Context, req ComputeLineRequest) (*ComputeLineResponse, error)
	// GenerateReturn aggregates finalized invoice lines in the period into a
	// draft return. A return already generated for the period is an error.
	GenerateReturn(ctx context.Context, req GenerateReturnRequest) (*ReturnResponse, error)
	// RegenerateReturn recomputes a draft return's totals from the period's
	// current invoice lines. Submitted returns cannot be regenerated.
	RegenerateReturn(ctx context.Context, returnID int64) (*ReturnResponse, error)
	// SubmitReturn marks a draft return submitted. Submitting twice is an error.
	SubmitReturn(ctx context.Context, returnID int64) (*ReturnResponse, error)
	Get(ctx context.Context, returnID int64) (*ReturnResponse, error)
	List(ctx context.Context, req ListReturnsRequest) ([]ReturnResponse, error)
}
