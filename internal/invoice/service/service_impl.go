package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nairabooks/taxcore/internal/clock"
	"github.com/nairabooks/taxcore/internal/config"
	invdomain "github.com/nairabooks/taxcore/internal/invoice/domain"
	"github.com/nairabooks/taxcore/internal/observability/logger"
	"github.com/nairabooks/taxcore/internal/orgcontext"
	vatdomain "github.com/nairabooks/taxcore/internal/vat/domain"
	vatservice "github.com/nairabooks/taxcore/internal/vat/service"
)

const defaultCurrency = "NGN"

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Policy *config.TaxPolicyHolder
	Repo   invdomain.Repository
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	policy *config.TaxPolicyHolder
	repo   invdomain.Repository
}

func New(p Params) invdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("invoice.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		policy: p.Policy,
		repo:   p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req invdomain.CreateRequest) (*invdomain.InvoiceResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, invdomain.ErrInvalidOrganization
	}

	direction := strings.TrimSpace(req.Direction)
	if direction == "" {
		direction = string(vatdomain.DirectionOutput)
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	now := s.clock.Now()
	rate := s.policy.Get().StandardRateBps
	inv := invdomain.Invoice{
		ID:           s.genID.Generate(),
		OrgID:        orgID,
		Number:       strings.TrimSpace(req.Number),
		CustomerName: strings.TrimSpace(req.CustomerName),
		CustomerTIN:  strings.TrimSpace(req.CustomerTIN),
		Direction:    direction,
		Status:       invdomain.StatusDraft,
		Currency:     currency,
		Metadata:     datatypes.JSONMap(req.Metadata),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if inv.Number == "" {
		inv.Number = fmt.Sprintf("INV-%s", inv.ID.String())
	}
	if inv.Metadata == nil {
		inv.Metadata = datatypes.JSONMap{}
	}

	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, invdomain.ErrInvalidQuantity
		}
		if line.UnitPrice < 0 {
			return nil, invdomain.ErrInvalidUnitPrice
		}
		net := line.Quantity * line.UnitPrice
		result, err := vatservice.ComputeLine(net, line.Category, rate)
		if err != nil {
			return nil, err
		}

		rateApplied := rate
		if line.Category != vatdomain.CategoryStandard {
			rateApplied = 0
		}
		inv.Lines = append(inv.Lines, invdomain.InvoiceLine{
			ID:          s.genID.Generate(),
			InvoiceID:   inv.ID,
			OrgID:       orgID,
			Description: strings.TrimSpace(line.Description),
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			NetAmount:   net,
			Category:    line.Category,
			RateBps:     rateApplied,
			VatAmount:   result.VatAmount,
			GrossAmount: result.GrossAmount,
			CreatedAt:   now,
		})
		inv.TotalNet += net
		inv.TotalVat += result.VatAmount
		inv.TotalGross += result.GrossAmount
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, s.db, &inv); err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.log).Info("invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("direction", inv.Direction),
		zap.Int64("total_gross", inv.TotalGross),
	)
	return toResponse(&inv), nil
}

func (s *Service) Finalize(ctx context.Context, invoiceID int64) (*invdomain.InvoiceResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, invdomain.ErrInvalidOrganization
	}

	inv, err := s.repo.FindByID(ctx, s.db, orgID, snowflake.ID(invoiceID))
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, invdomain.ErrInvoiceNotFound
	}
	if inv.Status != invdomain.StatusDraft {
		return nil, invdomain.ErrInvoiceNotDraft
	}

	now := s.clock.Now()
	inv.Status = invdomain.StatusFinalized
	inv.IssuedAt = &now
	inv.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, inv); err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.log).Info("invoice finalized",
		zap.String("invoice_id", inv.ID.String()),
	)
	return toResponse(inv), nil
}

func (s *Service) Void(ctx context.Context, invoiceID int64) (*invdomain.InvoiceResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, invdomain.ErrInvalidOrganization
	}

	inv, err := s.repo.FindByID(ctx, s.db, orgID, snowflake.ID(invoiceID))
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, invdomain.ErrInvoiceNotFound
	}
	if inv.Status != invdomain.StatusDraft {
		return nil, invdomain.ErrInvoiceNotDraft
	}

	inv.Status = invdomain.StatusVoided
	inv.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, inv); err != nil {
		return nil, err
	}
	return toResponse(inv), nil
}

func (s *Service) Get(ctx context.Context, invoiceID int64) (*invdomain.InvoiceResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, invdomain.ErrInvalidOrganization
	}
	inv, err := s.repo.FindByID(ctx, s.db, orgID, snowflake.ID(invoiceID))
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, invdomain.ErrInvoiceNotFound
	}
	return toResponse(inv), nil
}

func (s *Service) List(ctx context.Context, req invdomain.ListRequest) (*invdomain.ListResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, invdomain.ErrInvalidOrganization
	}

	invoices, pageInfo, err := s.repo.List(ctx, s.db, invdomain.ListFilter{
		OrgID:  orgID,
		Status: req.Status,
		Page:   req.Page,
	})
	if err != nil {
		return nil, err
	}

	resp := invdomain.ListResponse{
		Invoices: make([]invdomain.InvoiceResponse, 0, len(invoices)),
		PageInfo: pageInfo,
	}
	for _, inv := range invoices {
		resp.Invoices = append(resp.Invoices, *toResponse(inv))
	}
	return &resp, nil
}

func toResponse(inv *invdomain.Invoice) *invdomain.InvoiceResponse {
	resp := invdomain.InvoiceResponse{
		ID:           inv.ID.String(),
		OrgID:        inv.OrgID.String(),
		Number:       inv.Number,
		CustomerName: inv.CustomerName,
		CustomerTIN:  inv.CustomerTIN,
		Direction:    inv.Direction,
		Status:       inv.Status,
		Currency:     inv.Currency,
		TotalNet:     inv.TotalNet,
		TotalVat:     inv.TotalVat,
		TotalGross:   inv.TotalGross,
		Metadata:     inv.Metadata,
		IssuedAt:     inv.IssuedAt,
		CreatedAt:    inv.CreatedAt,
		Lines:        make([]invdomain.LineResponse, 0, len(inv.Lines)),
	}
	for _, line := range inv.Lines {
		resp.Lines = append(resp.Lines, invdomain.LineResponse{
			ID:          line.ID.String(),
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			NetAmount:   line.NetAmount,
			Category:    line.Category,
			RateBps:     line.RateBps,
			VatAmount:   line.VatAmount,
			GrossAmount: line.GrossAmount,
		})
	}
	return &resp
}
