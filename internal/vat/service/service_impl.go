package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nairabooks/taxcore/internal/clock"
	"github.com/nairabooks/taxcore/internal/config"
	"github.com/nairabooks/taxcore/internal/observability/logger"
	obsmetrics "github.com/nairabooks/taxcore/internal/observability/metrics"
	"github.com/nairabooks/taxcore/internal/orgcontext"
	vatdomain "github.com/nairabooks/taxcore/internal/vat/domain"
	"github.com/nairabooks/taxcore/pkg/db"
)

const defaultListLimit = 50

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Policy  *config.TaxPolicyHolder
	Repo    vatdomain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	policy  *config.TaxPolicyHolder
	repo    vatdomain.Repository
	metrics *obsmetrics.Metrics
}

func New(p Params) vatdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("vat.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		policy:  p.Policy,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) ComputeLine(ctx context.Context, req vatdomain.ComputeLineRequest) (*vatdomain.ComputeLineResponse, error) {
	rate := s.policy.Get().StandardRateBps
	result, err := ComputeLine(req.NetAmount, req.Category, rate)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordVatLine(ctx, string(req.Category))
	}
	return &vatdomain.ComputeLineResponse{
		NetAmount:   req.NetAmount,
		Category:    req.Category,
		RateBps:     rate,
		VatAmount:   result.VatAmount,
		GrossAmount: result.GrossAmount,
	}, nil
}

func (s *Service) GenerateReturn(ctx context.Context, req vatdomain.GenerateReturnRequest) (*vatdomain.ReturnResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, vatdomain.ErrInvalidOrganization
	}

	period, err := monthlyPeriod(req.PeriodStart)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByPeriod(ctx, s.db, orgID, period.Start)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, vatdomain.ErrDuplicateReturnPeriod
	}

	lines, err := s.repo.LinesInPeriod(ctx, s.db, orgID, period)
	if err != nil {
		return nil, err
	}

	policy := vatdomain.NegativeNetPolicy(s.policy.Get().NegativeNetPolicy)
	totals, err := CalculateReturn(lines, policy)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	ret := vatdomain.VatReturn{
		ID:              s.genID.Generate(),
		OrgID:           orgID,
		PeriodStart:     period.Start,
		PeriodEnd:       period.End,
		TotalOutputVat:  totals.TotalOutputVat,
		TotalInputVat:   totals.TotalInputVat,
		NetVat:          totals.NetVat,
		OutputLineCount: totals.OutputLines,
		InputLineCount:  totals.InputLines,
		Policy:          string(policy),
		Status:          vatdomain.ReturnStatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, s.db, &ret); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, vatdomain.ErrDuplicateReturnPeriod
		}
		return nil, err
	}

	logger.WithContext(ctx, s.log).Info("vat return generated",
		zap.String("return_id", ret.ID.String()),
		zap.Time("period_start", ret.PeriodStart),
		zap.Int64("net_vat", ret.NetVat),
	)
	if s.metrics != nil {
		s.metrics.RecordVatReturn(ctx, "generated")
	}
	return toResponse(&ret), nil
}

func (s *Service) RegenerateReturn(ctx context.Context, returnID int64) (*vatdomain.ReturnResponse, error) {
	org, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || org == 0 {
		return nil, vatdomain.ErrInvalidOrganization
	}

	ret, err := s.repo.FindByID(ctx, s.db, org, snowflake.ID(returnID))
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, vatdomain.ErrReturnNotFound
	}
	if ret.Status == vatdomain.ReturnStatusSubmitted {
		return nil, vatdomain.ErrReturnAlreadySubmitted
	}

	lines, err := s.repo.LinesInPeriod(ctx, s.db, org, vatdomain.Period{
		Start: ret.PeriodStart,
		End:   ret.PeriodEnd,
	})
	if err != nil {
		return nil, err
	}

	policy := vatdomain.NegativeNetPolicy(s.policy.Get().NegativeNetPolicy)
	totals, err := CalculateReturn(lines, policy)
	if err != nil {
		return nil, err
	}

	ret.TotalOutputVat = totals.TotalOutputVat
	ret.TotalInputVat = totals.TotalInputVat
	ret.NetVat = totals.NetVat
	ret.OutputLineCount = totals.OutputLines
	ret.InputLineCount = totals.InputLines
	ret.Policy = string(policy)
	ret.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, ret); err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.log).Info("vat return regenerated",
		zap.String("return_id", ret.ID.String()),
		zap.Int64("net_vat", ret.NetVat),
	)
	if s.metrics != nil {
		s.metrics.RecordVatReturn(ctx, "regenerated")
	}
	return toResponse(ret), nil
}

func (s *Service) SubmitReturn(ctx context.Context, returnID int64) (*vatdomain.ReturnResponse, error) {
	org, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || org == 0 {
		return nil, vatdomain.ErrInvalidOrganization
	}

	ret, err := s.repo.FindByID(ctx, s.db, org, snowflake.ID(returnID))
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, vatdomain.ErrReturnNotFound
	}
	if ret.Status == vatdomain.ReturnStatusSubmitted {
		return nil, vatdomain.ErrReturnAlreadySubmitted
	}

	now := s.clock.Now()
	ret.Status = vatdomain.ReturnStatusSubmitted
	ret.SubmittedAt = &now
	ret.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, ret); err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.log).Info("vat return submitted",
		zap.String("return_id", ret.ID.String()),
	)
	if s.metrics != nil {
		s.metrics.RecordVatReturn(ctx, "submitted")
	}
	return toResponse(ret), nil
}

func (s *Service) Get(ctx context.Context, returnID int64) (*vatdomain.ReturnResponse, error) {
	org, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || org == 0 {
		return nil, vatdomain.ErrInvalidOrganization
	}
	ret, err := s.repo.FindByID(ctx, s.db, org, snowflake.ID(returnID))
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, vatdomain.ErrReturnNotFound
	}
	return toResponse(ret), nil
}

func (s *Service) List(ctx context.Context, req vatdomain.ListReturnsRequest) ([]vatdomain.ReturnResponse, error) {
	org, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || org == 0 {
		return nil, vatdomain.ErrInvalidOrganization
	}
	limit := req.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}
	rets, err := s.repo.List(ctx, s.db, org, limit)
	if err != nil {
		return nil, err
	}
	out := make([]vatdomain.ReturnResponse, 0, len(rets))
	for i := range rets {
		out = append(out, *toResponse(&rets[i]))
	}
	return out, nil
}

// monthlyPeriod normalizes any timestamp in a month to that month's window.
func monthlyPeriod(start time.Time) (vatdomain.Period, error) {
	if start.IsZero() {
		return vatdomain.Period{}, vatdomain.ErrInvalidPeriod
	}
	start = start.UTC()
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	return vatdomain.Period{
		Start: first,
		End:   first.AddDate(0, 1, 0),
	}, nil
}

func toResponse(ret *vatdomain.VatReturn) *vatdomain.ReturnResponse {
	return &vatdomain.ReturnResponse{
		ID:              ret.ID.String(),
		OrgID:           ret.OrgID.String(),
		PeriodStart:     ret.PeriodStart,
		PeriodEnd:       ret.PeriodEnd,
		TotalOutputVat:  ret.TotalOutputVat,
		TotalInputVat:   ret.TotalInputVat,
		NetVat:          ret.NetVat,
		OutputLineCount: ret.OutputLineCount,
		InputLineCount:  ret.InputLineCount,
		Policy:          ret.Policy,
		Status:          ret.Status,
		SubmittedAt:     ret.SubmittedAt,
		CreatedAt:       ret.CreatedAt,
	}
}
