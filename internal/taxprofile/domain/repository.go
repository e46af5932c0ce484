package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, profile *TaxProfile) error
	FindLatest(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (*TaxProfile, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit int) ([]TaxProfile, error)
}
