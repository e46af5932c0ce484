package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// TaxProfile is a point-in-time snapshot of a business's financial position.
// Snapshots are append-only: reporting new financials inserts a new row and
// the previous snapshots remain for audit continuity. Classification is
// always recomputed from the latest snapshot, never cached on the row.
type TaxProfile struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	OrgID snowflake.ID `gorm:"column:org_id;not null;index:idx_tax_profiles_org_reported"`

	// Trailing-12-month figures in kobo.
	TurnoverKobo    int64 `gorm:"column:turnover_kobo;not null"`
	FixedAssetsKobo int64 `gorm:"column:fixed_assets_kobo;not null"`

	// TIN may be absent before registration completes.
	TIN               *string `gorm:"column:tin;type:text"`
	VATRegistrationNo *string `gorm:"column:vat_registration_no;type:text"`
	BusinessCategory  string  `gorm:"column:business_category;type:text;not null"`

	Metadata datatypes.JSONMap `gorm:"type:json"`

	ReportedAt time.Time `gorm:"column:reported_at;not null;index:idx_tax_profiles_org_reported"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (TaxProfile) TableName() string { return "tax_profiles" }

func (p *TaxProfile) Validate() error {
	if p.TurnoverKobo < 0 {
		return ErrInvalidTurnover
	}
	if p.FixedAssetsKobo < 0 {
		return ErrInvalidAssets
	}
	return nil
}
