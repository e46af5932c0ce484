package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/nairabooks/taxcore/pkg/db/pagination"
)

type ListFilter struct {
	OrgID  snowflake.ID
	Status string
	Page   pagination.Pagination
}

type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, inv *Invoice) error
	Update(ctx context.Context, tx *gorm.DB, inv *Invoice) error
	FindByID(ctx context.Context, tx *gorm.DB, orgID, invoiceID snowflake.ID) (*Invoice, error)
	List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*Invoice, *pagination.PageInfo, error)
}
