package domain

import (
	"context"
	"time"

	"github.com/nairabooks/taxcore/pkg/db/pagination"

	vatdomain "github.com/nairabooks/taxcore/internal/vat/domain"
)

type LineRequest struct {
	Description string             `json:"description" binding:"required"`
	Quantity    int64              `json:"quantity" binding:"required"`
	UnitPrice   int64              `json:"unit_price"`
	Category    vatdomain.Category `json:"category" binding:"required"`
}

type CreateRequest struct {
	Number       string                 `json:"number"`
	CustomerName string                 `json:"customer_name" binding:"required"`
	CustomerTIN  string                 `json:"customer_tin"`
	Direction    string                 `json:"direction"`
	Currency     string                 `json:"currency"`
	Metadata     map[string]interface{} `json:"metadata"`
	Lines        []LineRequest          `json:"lines" binding:"required"`
}

type LineResponse struct {
	ID          string             `json:"id"`
	Description string             `json:"description"`
	Quantity    int64              `json:"quantity"`
	UnitPrice   int64              `json:"unit_price"`
	NetAmount   int64              `json:"net_amount"`
	Category    vatdomain.Category `json:"category"`
	RateBps     int64              `json:"rate_bps"`
	VatAmount   int64              `json:"vat_amount"`
	GrossAmount int64              `json:"gross_amount"`
}

type InvoiceResponse struct {
	ID           string                 `json:"id"`
	OrgID        string                 `json:"org_id"`
	Number       string                 `json:"number"`
	CustomerName string                 `json:"customer_name"`
	CustomerTIN  string                 `json:"customer_tin,omitempty"`
	Direction    string                 `json:"direction"`
	Status       string                 `json:"status"`
	Currency     string                 `json:"currency"`
	TotalNet     int64                  `json:"total_net"`
	TotalVat     int64                  `json:"total_vat"`
	TotalGross   int64                  `json:"total_gross"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	IssuedAt     *time.Time             `json:"issued_at,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	Lines        []LineResponse         `json:"lines"`
}

type ListRequest struct {
	OrgID  int64
	Status string
	Page   pagination.Pagination
}

type ListResponse struct {
	Invoices []InvoiceResponse    `json:"invoices"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

type Service interface {
	// Create stores a draft invoice, computing line VAT at the current rate.
	Create(ctx context.Context, req CreateRequest) (*InvoiceResponse, error)
	// Finalize freezes a draft invoice and stamps its issue date.
	Finalize(ctx context.Context, invoiceID int64) (*InvoiceResponse, error)
	// Void marks a draft invoice voided. Finalized invoices cannot be voided.
	Void(ctx context.Context, invoiceID int64) (*InvoiceResponse, error)
	Get(ctx context.Context, invoiceID int64) (*InvoiceResponse, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
}
