package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// FiscalInvoice binds an immutable fiscal code to exactly one finalized
// invoice. The unique index on invoice_id is what makes fiscalization
// idempotent under concurrent requests.
type FiscalInvoice struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	OrgID snowflake.ID `gorm:"column:org_id;not null;index"`

	InvoiceID snowflake.ID `gorm:"column:invoice_id;not null;uniqueIndex"`
	IssuerTIN string       `gorm:"column:issuer_tin;type:text;not null"`

	FiscalCode string    `gorm:"column:fiscal_code;type:text;not null;uniqueIndex"`
	FiscalDate time.Time `gorm:"column:fiscal_date;not null"`

	// VAT figures frozen at fiscalization time, for the audit trail.
	GrossAmount int64 `gorm:"column:gross_amount;not null"`
	VatAmount   int64 `gorm:"column:vat_amount;not null"`
	RateBps     int64 `gorm:"column:rate_bps;not null"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (FiscalInvoice) TableName() string { return "fiscal_invoices" }

// CodeInput is everything that feeds the code derivation. The same input
// always produces the same code.
type CodeInput struct {
	IssuerTIN     string
	InvoiceNumber string
	FiscalDate    time.Time
	GrossAmount   int64
}
