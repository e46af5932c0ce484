package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, rec *FiscalInvoice) error
	FindByInvoiceID(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID) (*FiscalInvoice, error)
	FindByCode(ctx context.Context, tx *gorm.DB, code string) (*FiscalInvoice, error)
}
