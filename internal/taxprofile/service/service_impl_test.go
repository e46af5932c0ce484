package service

import (
	"context"
	"fmt"
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
	"github.com/nairabooks/taxcore/internal/orgcontext"
	profiledomain "github.com/nairabooks/taxcore/internal/taxprofile/domain"
	profilerepo "github.com/nairabooks/taxcore/internal/taxprofile/repository"
)

func setupProfileService(t *testing.T, node *snowflake.Node, policy config.TaxPolicy) (profiledomain.Service, *clock.FakeClock) {
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

	if err := db.AutoMigrate(&profiledomain.TaxProfile{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	fake := clock.NewFakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  fake,
		Policy: config.NewStaticTaxPolicyHolder(policy),
		Repo:   profilerepo.NewRepository(),
	})
	return svc, fake
}

func TestRecordSnapshotClassifies(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	svc, _ := setupProfileService(t, node, config.DefaultTaxPolicy())
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	tin := "12345678"
	resp, err := svc.RecordSnapshot(ctx, profiledomain.SnapshotRequest{
		TurnoverKobo:     1_000_000_000,
		FixedAssetsKobo:  500_000_000,
		TIN:              &tin,
		BusinessCategory: "retail",
	})
	require.NoError(t, err)
	assert.True(t, resp.Classification.IsSmallBusiness)
	assert.Equal(t, profiledomain.RegimePresumptive, resp.Classification.Regime)
	require.NotNil(t, resp.TIN)
	assert.Equal(t, tin, *resp.TIN)
}

func TestCurrentUsesLatestSnapshot(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	svc, fake := setupProfileService(t, node, config.DefaultTaxPolicy())
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	_, err := svc.RecordSnapshot(ctx, profiledomain.SnapshotRequest{
		TurnoverKobo: 1_000_000_000,
	})
	require.NoError(t, err)

	fake.Advance(24 * time.Hour)
	_, err = svc.RecordSnapshot(ctx, profiledomain.SnapshotRequest{
		TurnoverKobo: 4_000_000_000,
	})
	require.NoError(t, err)

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4_000_000_000), current.TurnoverKobo)
	assert.False(t, current.Classification.IsSmallBusiness)

	history, err := svc.History(ctx, profiledomain.HistoryRequest{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestCurrentWithoutSnapshot(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	svc, _ := setupProfileService(t, node, config.DefaultTaxPolicy())
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	_, err := svc.Current(ctx)
	assert.ErrorIs(t, err, profiledomain.ErrProfileNotFound)
}

func TestClassificationFollowsPolicyChange(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()

	// Tighter thresholds than the statutory defaults.
	policy := config.DefaultTaxPolicy()
	policy.SmallBusinessTurnoverThreshold = 500_000_000
	svc, _ := setupProfileService(t, node, policy)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	resp, err := svc.RecordSnapshot(ctx, profiledomain.SnapshotRequest{
		TurnoverKobo: 1_000_000_000,
	})
	require.NoError(t, err)
	assert.False(t, resp.Classification.IsSmallBusiness)
}

func TestSnapshotRejectsNegativeFigures(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	svc, _ := setupProfileService(t, node, config.DefaultTaxPolicy())
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	_, err := svc.RecordSnapshot(ctx, profiledomain.SnapshotRequest{TurnoverKobo: -1})
	assert.ErrorIs(t, err, profiledomain.ErrInvalidTurnover)

	_, err = svc.RecordSnapshot(ctx, profiledomain.SnapshotRequest{FixedAssetsKobo: -1})
	assert.ErrorIs(t, err, profiledomain.ErrInvalidAssets)
}

func TestSnapshotRequiresOrg(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupProfileService(t, node, config.DefaultTaxPolicy())

	_, err := svc.RecordSnapshot(context.Background(), profiledomain.SnapshotRequest{})
	assert.ErrorIs(t, err, profiledomain.ErrInvalidOrganization)
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}
