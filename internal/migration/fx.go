package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	fiscaldomain "github.com/nairabooks/taxcore/internal/fiscal/domain"
	invoicedomain "github.com/nairabooks/taxcore/internal/invoice/domain"
	profiledomain "github.com/nairabooks/taxcore/internal/taxprofile/domain"
	vatdomain "github.com/nairabooks/taxcore/internal/vat/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(Run),
)

// Run applies the schema on startup. AutoMigrate is additive only; it never
// drops columns or indexes.
func Run(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&profiledomain.TaxProfile{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceLine{},
		&fiscaldomain.FiscalInvoice{},
		&vatdomain.VatReturn{},
	)
}
