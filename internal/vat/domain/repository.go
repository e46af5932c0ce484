package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// PeriodLine is one finalized invoice line as seen by return aggregation.
type PeriodLine struct {
	Direction Direction
	Category  Category
	VatAmount int64
}

type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, ret *VatReturn) error
	Update(ctx context.Context, tx *gorm.DB, ret *VatReturn) error
	FindByID(ctx context.Context, tx *gorm.DB, orgID, returnID snowflake.ID) (*VatReturn, error)
	FindByPeriod(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, periodStart time.Time) (*VatReturn, error)
	List(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, limit int) ([]VatReturn, error)
	// LinesInPeriod returns the VAT lines of finalized invoices whose issue
	// date falls inside [period.Start, period.End).
	LinesInPeriod(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, period Period) ([]PeriodLine, error)
}
