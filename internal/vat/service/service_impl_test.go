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
	"github.com/nairabooks/taxcore/internal/orgcontext"
	vatdomain "github.com/nairabooks/taxcore/internal/vat/domain"
	vatrepo "github.com/nairabooks/taxcore/internal/vat/repository"
)

func setupVatService(t *testing.T, node *snowflake.Node) (vatdomain.Service, *gorm.DB, *clock.FakeClock) {
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

	if err := db.AutoMigrate(
		&invdomain.Invoice{},
		&invdomain.InvoiceLine{},
		&vatdomain.VatReturn{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	fake := clock.NewFakeClock(time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  fake,
		Policy: config.NewStaticTaxPolicyHolder(config.DefaultTaxPolicy()),
		Repo:   vatrepo.NewRepository(),
	})
	return svc, db, fake
}

func seedPeriodInvoice(t *testing.T, db *gorm.DB, node *snowflake.Node, orgID snowflake.ID, direction, status string, issuedAt time.Time, lines []vatdomain.PeriodLine) {
	t.Helper()

	inv := invdomain.Invoice{
		ID:           node.Generate(),
		OrgID:        orgID,
		Number:       "INV-" + strconv.FormatInt(int64(node.Generate()), 36),
		CustomerName: "Chidi Electronics",
		Direction:    direction,
		Status:       status,
		Currency:     "NGN",
		IssuedAt:     &issuedAt,
		CreatedAt:    issuedAt,
		UpdatedAt:    issuedAt,
	}
	for _, line := range lines {
		inv.Lines = append(inv.Lines, invdomain.InvoiceLine{
			ID:          node.Generate(),
			InvoiceID:   inv.ID,
			OrgID:       orgID,
			Description: "goods",
			Quantity:    1,
			Category:    line.Category,
			VatAmount:   line.VatAmount,
			CreatedAt:   issuedAt,
		})
	}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
}

func TestGenerateReturnAggregatesFinalizedInvoices(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	svc, db, _ := setupVatService(t, node)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	march := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	seedPeriodInvoice(t, db, node, orgID, string(vatdomain.DirectionOutput), invdomain.StatusFinalized, march, []vatdomain.PeriodLine{
		{Category: vatdomain.CategoryStandard, VatAmount: 750},
		{Category: vatdomain.CategoryStandard, VatAmount: 1200},
		{Category: vatdomain.CategoryZeroRated, VatAmount: 0},
	})
	seedPeriodInvoice(t, db, node, orgID, string(vatdomain.DirectionInput), invdomain.StatusFinalized, march.AddDate(0, 0, 5), []vatdomain.PeriodLine{
		{Category: vatdomain.CategoryStandard, VatAmount: 300},
	})
	// Draft invoices and other months must not count.
	seedPeriodInvoice(t, db, node, orgID, string(vatdomain.DirectionOutput), invdomain.StatusDraft, march, []vatdomain.PeriodLine{
		{Category: vatdomain.CategoryStandard, VatAmount: 9999},
	})
	seedPeriodInvoice(t, db, node, orgID, string(vatdomain.DirectionOutput), invdomain.StatusFinalized, march.AddDate(0, 1, 0), []vatdomain.PeriodLine{
		{Category: vatdomain.CategoryStandard, VatAmount: 5555},
	})

	resp, err := svc.GenerateReturn(ctx, vatdomain.GenerateReturnRequest{
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1950), resp.TotalOutputVat)
	assert.Equal(t, int64(300), resp.TotalInputVat)
	assert.Equal(t, int64(1650), resp.NetVat)
	assert.Equal(t, 3, resp.OutputLineCount)
	assert.Equal(t, 1, resp.InputLineCount)
	assert.Equal(t, vatdomain.ReturnStatusDraft, resp.Status)
}

func TestGenerateReturnEmptyPeriod(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	svc, _, _ := setupVatService(t, node)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	resp, err := svc.GenerateReturn(ctx, vatdomain.GenerateReturnRequest{
		PeriodStart: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.NetVat)
	assert.Equal(t, 0, resp.OutputLineCount)
}

func TestGenerateReturnRejectsDuplicatePeriod(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	svc, _, _ := setupVatService(t, node)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	req := vatdomain.GenerateReturnRequest{
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := svc.GenerateReturn(ctx, req)
	require.NoError(t, err)

	_, err = svc.GenerateReturn(ctx, req)
	assert.ErrorIs(t, err, vatdomain.ErrDuplicateReturnPeriod)

	// Mid-month timestamps normalize to the same period.
	_, err = svc.GenerateReturn(ctx, vatdomain.GenerateReturnRequest{
		PeriodStart: time.Date(2026, 3, 18, 16, 45, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, vatdomain.ErrDuplicateReturnPeriod)
}

func TestSubmitReturnOnce(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	svc, _, fake := setupVatService(t, node)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	resp, err := svc.GenerateReturn(ctx, vatdomain.GenerateReturnRequest{
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	returnID, err := strconv.ParseInt(resp.ID, 10, 64)
	require.NoError(t, err)

	fake.Advance(time.Hour)
	submitted, err := svc.SubmitReturn(ctx, returnID)
	require.NoError(t, err)
	assert.Equal(t, vatdomain.ReturnStatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)

	_, err = svc.SubmitReturn(ctx, returnID)
	assert.ErrorIs(t, err, vatdomain.ErrReturnAlreadySubmitted)
}

func TestRegenerateReturnRecomputesDraftTotals(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	svc, db, _ := setupVatService(t, node)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	march := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	seedPeriodInvoice(t, db, node, orgID, string(vatdomain.DirectionOutput), invdomain.StatusFinalized, march, []vatdomain.PeriodLine{
		{Category: vatdomain.CategoryStandard, VatAmount: 750},
	})

	resp, err := svc.GenerateReturn(ctx, vatdomain.GenerateReturnRequest{
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(750), resp.TotalOutputVat)

	returnID, err := strconv.ParseInt(resp.ID, 10, 64)
	require.NoError(t, err)

	// An invoice finalized after the draft was generated lands in the
	// recomputed totals.
	seedPeriodInvoice(t, db, node, orgID, string(vatdomain.DirectionOutput), invdomain.StatusFinalized, march.AddDate(0, 0, 9), []vatdomain.PeriodLine{
		{Category: vatdomain.CategoryStandard, VatAmount: 1200},
	})

	regenerated, err := svc.RegenerateReturn(ctx, returnID)
	require.NoError(t, err)
	assert.Equal(t, int64(1950), regenerated.TotalOutputVat)
	assert.Equal(t, int64(1950), regenerated.NetVat)
	assert.Equal(t, 2, regenerated.OutputLineCount)
	assert.Equal(t, vatdomain.ReturnStatusDraft, regenerated.Status)

	_, err = svc.SubmitReturn(ctx, returnID)
	require.NoError(t, err)

	_, err = svc.RegenerateReturn(ctx, returnID)
	assert.ErrorIs(t, err, vatdomain.ErrReturnAlreadySubmitted)
}

func TestReturnsAreOrgScoped(t *testing.T) {
	node := mustNode(t)
	orgA := node.Generate()
	orgB := node.Generate()
	svc, _, _ := setupVatService(t, node)

	ctxA := orgcontext.WithOrgID(context.Background(), int64(orgA))
	ctxB := orgcontext.WithOrgID(context.Background(), int64(orgB))

	resp, err := svc.GenerateReturn(ctxA, vatdomain.GenerateReturnRequest{
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	returnID, err := strconv.ParseInt(resp.ID, 10, 64)
	require.NoError(t, err)

	_, err = svc.Get(ctxB, returnID)
	assert.ErrorIs(t, err, vatdomain.ErrReturnNotFound)

	listed, err := svc.List(ctxA, vatdomain.ListReturnsRequest{})
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}
