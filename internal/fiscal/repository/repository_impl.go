package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/nairabooks/taxcore/internal/fiscal/domain"
)

type repositoryImpl struct{}

func NewRepository() domain.Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Insert(ctx context.Context, tx *gorm.DB, rec *domain.FiscalInvoice) error {
	return tx.WithContext(ctx).Create(rec).Error
}

func (r *repositoryImpl) FindByInvoiceID(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID) (*domain.FiscalInvoice, error) {
	var rec domain.FiscalInvoice
	err := tx.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Limit(1).
		Find(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return &rec, nil
}

func (r *repositoryImpl) FindByCode(ctx context.Context, tx *gorm.DB, code string) (*domain.FiscalInvoice, error) {
	var rec domain.FiscalInvoice
	err := tx.WithContext(ctx).
		Where("fiscal_code = ?", code).
		Limit(1).
		Find(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return &rec, nil
}
