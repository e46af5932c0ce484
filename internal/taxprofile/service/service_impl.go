package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/nairabooks/taxcore/internal/clock"
	"github.com/nairabooks/taxcore/internal/config"
	obsmetrics "github.com/nairabooks/taxcore/internal/observability/metrics"
	"github.com/nairabooks/taxcore/internal/orgcontext"
	profiledomain "github.com/nairabooks/taxcore/internal/taxprofile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Policy  *config.TaxPolicyHolder
	Repo    profiledomain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	policy  *config.TaxPolicyHolder
	repo    profiledomain.Repository
	metrics *obsmetrics.Metrics
}

func New(p Params) profiledomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("taxprofile.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		policy:  p.Policy,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) RecordSnapshot(ctx context.Context, req profiledomain.SnapshotRequest) (*profiledomain.ProfileResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, profiledomain.ErrInvalidOrganization
	}

	now := s.clock.Now()
	profile := profiledomain.TaxProfile{
		ID:                s.genID.Generate(),
		OrgID:             orgID,
		TurnoverKobo:      req.TurnoverKobo,
		FixedAssetsKobo:   req.FixedAssetsKobo,
		TIN:               trimOptional(req.TIN),
		VATRegistrationNo: trimOptional(req.VATRegistrationNo),
		BusinessCategory:  strings.TrimSpace(req.BusinessCategory),
		Metadata:          datatypes.JSONMap{},
		ReportedAt:        now,
		CreatedAt:         now,
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, s.db, &profile); err != nil {
		return nil, err
	}

	resp, err := s.toResponse(ctx, &profile)
	if err != nil {
		return nil, err
	}

	s.log.Info("tax profile snapshot recorded",
		zap.String("org_id", orgID.String()),
		zap.String("regime", string(resp.Classification.Regime)),
	)
	return resp, nil
}

func (s *Service) Current(ctx context.Context) (*profiledomain.ProfileResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, profiledomain.ErrInvalidOrganization
	}

	profile, err := s.repo.FindLatest(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, profiledomain.ErrProfileNotFound
	}

	return s.toResponse(ctx, profile)
}

func (s *Service) History(ctx context.Context, req profiledomain.HistoryRequest) ([]profiledomain.ProfileResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, profiledomain.ErrInvalidOrganization
	}

	items, err := s.repo.List(ctx, s.db, orgID, req.Limit)
	if err != nil {
		return nil, err
	}

	out := make([]profiledomain.ProfileResponse, 0, len(items))
	for i := range items {
		resp, err := s.toResponse(ctx, &items[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

// toResponse recomputes the classification on every read so a policy change
// is reflected immediately.
func (s *Service) toResponse(ctx context.Context, profile *profiledomain.TaxProfile) (*profiledomain.ProfileResponse, error) {
	policy := s.policy.Get()
	classification, err := Classify(profile.TurnoverKobo, profile.FixedAssetsKobo, profiledomain.Thresholds{
		Turnover:    policy.SmallBusinessTurnoverThreshold,
		FixedAssets: policy.SmallBusinessAssetThreshold,
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordClassification(ctx, string(classification.Regime))
	}

	return &profiledomain.ProfileResponse{
		ID:                profile.ID.String(),
		OrganizationID:    profile.OrgID.String(),
		TurnoverKobo:      profile.TurnoverKobo,
		FixedAssetsKobo:   profile.FixedAssetsKobo,
		TIN:               profile.TIN,
		VATRegistrationNo: profile.VATRegistrationNo,
		BusinessCategory:  profile.BusinessCategory,
		Classification:    classification,
		ReportedAt:        profile.ReportedAt,
	}, nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
