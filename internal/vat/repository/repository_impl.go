package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/nairabooks/taxcore/internal/vat/domain"
)

type repositoryImpl struct{}

func NewRepository() domain.Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Insert(ctx context.Context, tx *gorm.DB, ret *domain.VatReturn) error {
	return tx.WithContext(ctx).Create(ret).Error
}

func (r *repositoryImpl) Update(ctx context.Context, tx *gorm.DB, ret *domain.VatReturn) error {
	return tx.WithContext(ctx).Save(ret).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, tx *gorm.DB, orgID, returnID snowflake.ID) (*domain.VatReturn, error) {
	var ret domain.VatReturn
	err := tx.WithContext(ctx).Raw(`
		SELECT * FROM vat_returns
		WHERE org_id = ? AND id = ?
	`, orgID, returnID).Scan(&ret).Error
	if err != nil {
		return nil, err
	}
	if ret.ID == 0 {
		return nil, nil
	}
	return &ret, nil
}

func (r *repositoryImpl) FindByPeriod(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, periodStart time.Time) (*domain.VatReturn, error) {
	var ret domain.VatReturn
	err := tx.WithContext(ctx).
		Where("org_id = ? AND period_start = ?", orgID, periodStart).
		Limit(1).
		Find(&ret).Error
	if err != nil {
		return nil, err
	}
	if ret.ID == 0 {
		return nil, nil
	}
	return &ret, nil
}

func (r *repositoryImpl) List(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, limit int) ([]domain.VatReturn, error) {
	var rets []domain.VatReturn
	err := tx.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("period_start DESC").
		Limit(limit).
		Find(&rets).Error
	if err != nil {
		return nil, err
	}
	return rets, nil
}

func (r *repositoryImpl) LinesInPeriod(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, period domain.Period) ([]domain.PeriodLine, error) {
	var lines []domain.PeriodLine
	err := tx.WithContext(ctx).Raw(`
		SELECT i.direction AS direction, l.category AS category, l.vat_amount AS vat_amount
		FROM invoice_lines l
		JOIN invoices i ON i.id = l.invoice_id
		WHERE i.org_id = ?
		  AND i.status = 'finalized'
		  AND i.issued_at >= ?
		  AND i.issued_at < ?
	`, orgID, period.Start, period.End).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}
