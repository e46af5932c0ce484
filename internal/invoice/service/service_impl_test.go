package service

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nairabooks/taxcore/internal/clock"
	"github.com/nairabooks/taxcore/internal/config"
	invdomain "github.com/nairabooks/taxcore/internal/invoice/domain"
	invrepo "github.com/nairabooks/taxcore/internal/invoice/repository"
	"github.com/nairabooks/taxcore/internal/orgcontext"
	vatdomain "github.com/nairabooks/taxcore/internal/vat/domain"
	"github.com/nairabooks/taxcore/pkg/db/pagination"
)

func setupInvoiceService(t *testing.T, node *snowflake.Node) (invdomain.Service, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&invdomain.Invoice{}, &invdomain.InvoiceLine{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	fake := clock.NewFakeClock(time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  fake,
		Policy: config.NewStaticTaxPolicyHolder(config.DefaultTaxPolicy()),
		Repo:   invrepo.NewRepository(),
	})
	return svc, fake
}

func TestCreateComputesLineVat(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	svc, _ := setupInvoiceService(t, node)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	resp, err := svc.Create(ctx, invdomain.CreateRequest{
		CustomerName: "Mama Nkechi Stores",
		Lines: []invdomain.LineRequest{
			{Description: "Airtime", Quantity: 2, UnitPrice: 5000, Category: vatdomain.CategoryStandard},
			{Description: "Bread", Quantity: 1, UnitPrice: 16000, Category: vatdomain.CategoryStandard},
			{Description: "Baby food", Quantity: 1, UnitPrice: 4000, Category: vatdomain.CategoryZeroRated},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, invdomain.StatusDraft, resp.Status)
	assert.Equal(t, "NGN", resp.Currency)
	assert.Equal(t, string(vatdomain.DirectionOutput), resp.Direction)
	require.Len(t, resp.Lines, 3)

	// 10000 and 16000 at 7.5%; the zero-rated line carries no VAT.
	assert.Equal(t, int64(750), resp.Lines[0].VatAmount)
	assert.Equal(t, int64(1200), resp.Lines[1].VatAmount)
	assert.Equal(t, int64(0), resp.Lines[2].VatAmount)
	assert.Equal(t, int64(0), resp.Lines[2].RateBps)

	assert.Equal(t, int64(30000), resp.TotalNet)
	assert.Equal(t, int64(1950), resp.TotalVat)
	assert.Equal(t, int64(31950), resp.TotalGross)
	assert.NotEmpty(t, resp.Number)
}

func TestCreateValidation(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	svc, _ := setupInvoiceService(t, node)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	_, err := svc.Create(ctx, invdomain.CreateRequest{CustomerName: "Ade"})
	assert.ErrorIs(t, err, invdomain.ErrEmptyInvoice)

	_, err = svc.Create(ctx, invdomain.CreateRequest{
		CustomerName: "Ade",
		Lines: []invdomain.LineRequest{
			{Description: "x", Quantity: 0, UnitPrice: 100, Category: vatdomain.CategoryStandard},
		},
	})
	assert.ErrorIs(t, err, invdomain.ErrInvalidQuantity)

	_, err = svc.Create(ctx, invdomain.CreateRequest{
		CustomerName: "Ade",
		Direction:    "sideways",
		Lines: []invdomain.LineRequest{
			{Description: "x", Quantity: 1, UnitPrice: 100, Category: vatdomain.CategoryStandard},
		},
	})
	assert.ErrorIs(t, err, invdomain.ErrInvalidDirection)

	_, err = svc.Create(ctx, invdomain.CreateRequest{
		CustomerName: "Ade",
		Lines: []invdomain.LineRequest{
			{Description: "x", Quantity: 1, UnitPrice: 100, Category: vatdomain.Category("luxury")},
		},
	})
	assert.ErrorIs(t, err, vatdomain.ErrUnknownVatCategory)
}

func TestFinalizeStampsIssueDate(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	svc, fake := setupInvoiceService(t, node)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	created, err := svc.Create(ctx, invdomain.CreateRequest{
		CustomerName: "Chidi Electronics",
		Lines: []invdomain.LineRequest{
			{Description: "Repair", Quantity: 1, UnitPrice: 10000, Category: vatdomain.CategoryStandard},
		},
	})
	require.NoError(t, err)

	id, err := strconv.ParseInt(created.ID, 10, 64)
	require.NoError(t, err)

	fake.Advance(2 * time.Hour)
	finalized, err := svc.Finalize(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, invdomain.StatusFinalized, finalized.Status)
	require.NotNil(t, finalized.IssuedAt)
	assert.Equal(t, fake.Now(), finalized.IssuedAt.UTC())

	_, err = svc.Finalize(ctx, id)
	assert.ErrorIs(t, err, invdomain.ErrInvoiceNotDraft)

	_, err = svc.Void(ctx, id)
	assert.ErrorIs(t, err, invdomain.ErrInvoiceNotDraft)
}

func TestListPaginatesByCursor(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	svc, _ := setupInvoiceService(t, node)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, invdomain.CreateRequest{
			CustomerName: fmt.Sprintf("Customer %d", i),
			Lines: []invdomain.LineRequest{
				{Description: "goods", Quantity: 1, UnitPrice: 1000, Category: vatdomain.CategoryStandard},
			},
		})
		require.NoError(t, err)
	}

	first, err := svc.List(ctx, invdomain.ListRequest{
		Page: pagination.Pagination{PageSize: 3},
	})
	require.NoError(t, err)
	assert.Len(t, first.Invoices, 3)
	require.True(t, first.PageInfo.HasMore)

	second, err := svc.List(ctx, invdomain.ListRequest{
		Page: pagination.Pagination{PageSize: 3, PageToken: first.PageInfo.NextPageToken},
	})
	require.NoError(t, err)
	assert.Len(t, second.Invoices, 2)
	assert.False(t, second.PageInfo.HasMore)

	seen := map[string]bool{}
	for _, inv := range append(first.Invoices, second.Invoices...) {
		assert.False(t, seen[inv.ID], "invoice %s returned twice", inv.ID)
		seen[inv.ID] = true
	}
}

func TestInvoicesAreOrgScoped(t *testing.T) {
	node := mustNode(t)
	orgA := node.Generate()
	orgB := node.Generate()
	svc, _ := setupInvoiceService(t, node)

	ctxA := orgcontext.WithOrgID(context.Background(), int64(orgA))
	ctxB := orgcontext.WithOrgID(context.Background(), int64(orgB))

	created, err := svc.Create(ctxA, invdomain.CreateRequest{
		CustomerName: "Ngozi Fabrics",
		Lines: []invdomain.LineRequest{
			{Description: "Ankara", Quantity: 1, UnitPrice: 250000, Category: vatdomain.CategoryStandard},
		},
	})
	require.NoError(t, err)

	id, err := strconv.ParseInt(created.ID, 10, 64)
	require.NoError(t, err)

	_, err = svc.Get(ctxB, id)
	assert.ErrorIs(t, err, invdomain.ErrInvoiceNotFound)
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}
