package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/nairabooks/taxcore/internal/invoice/domain"
	"github.com/nairabooks/taxcore/pkg/db/pagination"
)

type repositoryImpl struct{}

func NewRepository() domain.Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Insert(ctx context.Context, tx *gorm.DB, inv *domain.Invoice) error {
	return tx.WithContext(ctx).Create(inv).Error
}

func (r *repositoryImpl) Update(ctx context.Context, tx *gorm.DB, inv *domain.Invoice) error {
	return tx.WithContext(ctx).Omit("Lines").Save(inv).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, tx *gorm.DB, orgID, invoiceID snowflake.ID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := tx.WithContext(ctx).
		Preload("Lines").
		Where("org_id = ? AND id = ?", orgID, invoiceID).
		Limit(1).
		Find(&inv).Error
	if err != nil {
		return nil, err
	}
	if inv.ID == 0 {
		return nil, nil
	}
	return &inv, nil
}

func (r *repositoryImpl) List(ctx context.Context, tx *gorm.DB, filter domain.ListFilter) ([]*domain.Invoice, *pagination.PageInfo, error) {
	limit := filter.Page.PageSize
	if limit <= 0 {
		limit = 10
	}

	query := tx.WithContext(ctx).
		Preload("Lines").
		Where("org_id = ?", filter.OrgID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(filter.Page.PageToken)
		if err != nil {
			return nil, nil, err
		}
		query = query.Where("id < ?", cursor.ID)
	}

	var invoices []*domain.Invoice
	if err := query.Order("id DESC").Limit(limit + 1).Find(&invoices).Error; err != nil {
		return nil, nil, err
	}

	invoices, pageInfo := pagination.BuildCursorPageInfo(invoices, limit, func(inv *domain.Invoice) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: inv.ID.String()})
		return token
	})
	return invoices, pageInfo, nil
}
