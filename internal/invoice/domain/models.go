package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"

	vatdomain "github.com/nairabooks/taxcore/internal/vat/domain"
)

// Invoice statuses. Only draft invoices are mutable; only finalized
// invoices count toward VAT returns and may be fiscalized.
const (
	StatusDraft     = "draft"
	StatusFinalized = "finalized"
	StatusVoided    = "voided"
)

type Invoice struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	OrgID snowflake.ID `gorm:"column:org_id;not null;index:idx_invoices_org_status"`

	Number       string `gorm:"type:text;not null"`
	CustomerName string `gorm:"type:text;not null"`
	CustomerTIN  string `gorm:"column:customer_tin;type:text"`

	// Direction is "output" for sales and "input" for recorded purchases.
	Direction string `gorm:"type:text;not null"`
	Status    string `gorm:"type:text;not null;index:idx_invoices_org_status"`
	Currency  string `gorm:"type:text;not null"`

	TotalNet   int64 `gorm:"column:total_net;not null"`
	TotalVat   int64 `gorm:"column:total_vat;not null"`
	TotalGross int64 `gorm:"column:total_gross;not null"`

	Metadata datatypes.JSONMap `gorm:"type:json"`

	IssuedAt  *time.Time `gorm:"column:issued_at;index"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`

	Lines []InvoiceLine `gorm:"foreignKey:InvoiceID"`
}

func (Invoice) TableName() string { return "invoices" }

type InvoiceLine struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	InvoiceID snowflake.ID `gorm:"column:invoice_id;not null;index"`
	OrgID     snowflake.ID `gorm:"column:org_id;not null"`

	Description string `gorm:"type:text;not null"`
	Quantity    int64  `gorm:"not null"`
	UnitPrice   int64  `gorm:"column:unit_price;not null"`

	NetAmount   int64              `gorm:"column:net_amount;not null"`
	Category    vatdomain.Category `gorm:"type:text;not null"`
	RateBps     int64              `gorm:"column:rate_bps;not null"`
	VatAmount   int64              `gorm:"column:vat_amount;not null"`
	GrossAmount int64              `gorm:"column:gross_amount;not null"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (InvoiceLine) TableName() string { return "invoice_lines" }

func (inv *Invoice) Validate() error {
	if strings.TrimSpace(inv.CustomerName) == "" {
		return ErrMissingCustomer
	}
	if !vatdomain.Direction(inv.Direction).Valid() {
		return ErrInvalidDirection
	}
	if len(inv.Lines) == 0 {
		return ErrEmptyInvoice
	}
	return nil
}
