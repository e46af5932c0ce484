package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Category is the VAT treatment of a supply.
type Category string

const (
	CategoryStandard  Category = "standard"
	CategoryZeroRated Category = "zero_rated"
	CategoryExempt    Category = "exempt"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryStandard, CategoryZeroRated, CategoryExempt:
		return true
	default:
		return false
	}
}

// Direction distinguishes VAT charged on sales from VAT paid on purchases.
type Direction string

const (
	DirectionOutput Direction = "output"
	DirectionInput  Direction = "input"
)

func (d Direction) Valid() bool {
	return d == DirectionOutput || d == DirectionInput
}

// NegativeNetPolicy decides what happens when input VAT exceeds output VAT.
type NegativeNetPolicy string

const (
	// PolicyCarryForward stores the negative net as a credit position.
	PolicyCarryForward NegativeNetPolicy = "carry_forward"
	// PolicyClampZero floors the net at zero.
	PolicyClampZero NegativeNetPolicy = "clamp_zero"
)

func (p NegativeNetPolicy) Valid() bool {
	return p == PolicyCarryForward || p == PolicyClampZero
}

// Line is the input to a VAT computation: a net amount in kobo, its
// category, and the rate in basis points (750 = 7.5%). The rate is ignored
// for zero-rated and exempt categories.
type Line struct {
	NetAmount int64    `json:"net_amount"`
	Category  Category `json:"category"`
	RateBps   int64    `json:"rate_bps"`
}

// LineResult carries the derived amounts of a single line.
type LineResult struct {
	VatAmount   int64 `json:"vat_amount"`
	GrossAmount int64 `json:"gross_amount"`
}

// Period is a monthly reporting window, [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) Valid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && p.Start.Before(p.End)
}

// ReturnTotals is the pure aggregation outcome over a period.
type ReturnTotals struct {
	TotalOutputVat int64
	TotalInputVat  int64
	NetVat         int64
	OutputLines    int
	InputLines     int
}

// Return statuses. A submitted return is immutable.
const (
	ReturnStatusDraft     = "draft"
	ReturnStatusSubmitted = "submitted"
)

// VatReturn is the persisted monthly return. One row per (org, period).
type VatReturn struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	OrgID snowflake.ID `gorm:"column:org_id;not null;uniqueIndex:idx_vat_returns_org_period"`

	PeriodStart time.Time `gorm:"column:period_start;not null;uniqueIndex:idx_vat_returns_org_period"`
	PeriodEnd   time.Time `gorm:"column:period_end;not null"`

	TotalOutputVat int64 `gorm:"column:total_output_vat;not null"`
	TotalInputVat  int64 `gorm:"column:total_input_vat;not null"`
	NetVat         int64 `gorm:"column:net_vat;not null"`

	OutputLineCount int `gorm:"column:output_line_count;not null"`
	InputLineCount  int `gorm:"column:input_line_count;not null"`

	Policy string `gorm:"type:text;not null"`
	Status string `gorm:"type:text;not null"`

	SubmittedAt *time.Time `gorm:"column:submitted_at"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (VatReturn) TableName() string { return "vat_returns" }
