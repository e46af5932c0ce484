package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nairabooks/taxcore/internal/clock"
	"github.com/nairabooks/taxcore/internal/config"
	fiscaldomain "github.com/nairabooks/taxcore/internal/fiscal/domain"
	"github.com/nairabooks/taxcore/internal/fiscal/lock"
	invdomain "github.com/nairabooks/taxcore/internal/invoice/domain"
	"github.com/nairabooks/taxcore/internal/observability/logger"
	obsmetrics "github.com/nairabooks/taxcore/internal/observability/metrics"
	"github.com/nairabooks/taxcore/internal/orgcontext"
	profiledomain "github.com/nairabooks/taxcore/internal/taxprofile/domain"
	"github.com/nairabooks/taxcore/pkg/db"
)

const lockTTL = 10 * time.Second

// invoiceLocker is satisfied by *lock.Locker.
type invoiceLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Policy   *config.TaxPolicyHolder
	Repo     fiscaldomain.Repository
	Invoices invdomain.Repository
	Profiles profiledomain.Repository
	Locker   *lock.Locker        `optional:"true"`
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	policy   *config.TaxPolicyHolder
	repo     fiscaldomain.Repository
	invoices invdomain.Repository
	profiles profiledomain.Repository
	locker   invoiceLocker
	metrics  *obsmetrics.Metrics
}

func New(p Params) fiscaldomain.Service {
	s := &Service{
		db:       p.DB,
		log:      p.Log.Named("fiscal.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		policy:   p.Policy,
		repo:     p.Repo,
		invoices: p.Invoices,
		profiles: p.Profiles,
		metrics:  p.Metrics,
	}
	if p.Locker != nil {
		s.locker = p.Locker
	}
	return s
}

func (s *Service) Fiscalize(ctx context.Context, req fiscaldomain.FiscalizeRequest) (*fiscaldomain.FiscalResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, fiscaldomain.ErrInvalidOrganization
	}

	invoiceID := snowflake.ID(req.InvoiceID)
	if s.locker != nil {
		key := fmt.Sprintf("fiscal:invoice:%s", invoiceID.String())
		token, acquired, err := s.locker.TryLock(ctx, key, lockTTL)
		if err != nil {
			return nil, err
		}
		if !acquired {
			// Lost the lock: the holder may already have committed its
			// row, in which case that result is the answer.
			existing, findErr := s.repo.FindByInvoiceID(ctx, s.db, invoiceID)
			if findErr != nil {
				return nil, findErr
			}
			if existing != nil {
				if s.metrics != nil {
					s.metrics.RecordFiscalization(ctx, "existing")
				}
				return toResponse(existing, true), nil
			}
			return nil, fiscaldomain.ErrFiscalizationBusy
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
				s.log.Warn("fiscal lock release failed", zap.Error(err))
			}
		}()
	}

	if existing, err := s.repo.FindByInvoiceID(ctx, s.db, invoiceID); err != nil {
		return nil, err
	} else if existing != nil {
		if s.metrics != nil {
			s.metrics.RecordFiscalization(ctx, "existing")
		}
		return toResponse(existing, true), nil
	}

	inv, err := s.invoices.FindByID(ctx, s.db, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, invdomain.ErrInvoiceNotFound
	}
	if inv.Status != invdomain.StatusFinalized {
		return nil, invdomain.ErrInvoiceNotFinalized
	}

	issuerTIN, err := s.resolveIssuerTIN(ctx, orgID, req.IssuerTIN)
	if err != nil {
		return nil, err
	}

	fiscalDate := s.clock.Now()
	if inv.IssuedAt != nil {
		fiscalDate = *inv.IssuedAt
	}

	policy := s.policy.Get()
	code, err := GenerateCode(policy.FiscalCodePrefix, policy.FiscalHashLength, fiscaldomain.CodeInput{
		IssuerTIN:     issuerTIN,
		InvoiceNumber: inv.Number,
		FiscalDate:    fiscalDate,
		GrossAmount:   inv.TotalGross,
	})
	if err != nil {
		return nil, err
	}

	rec := fiscaldomain.FiscalInvoice{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		InvoiceID:   invoiceID,
		IssuerTIN:   issuerTIN,
		FiscalCode:  code,
		FiscalDate:  fiscalDate,
		GrossAmount: inv.TotalGross,
		VatAmount:   inv.TotalVat,
		RateBps:     policy.StandardRateBps,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, &rec); err != nil {
		// Lost the race: another request fiscalized first. Return its code.
		if db.IsDuplicateKeyErr(err) {
			existing, findErr := s.repo.FindByInvoiceID(ctx, s.db, invoiceID)
			if findErr != nil {
				return nil, findErr
			}
			if existing != nil {
				if s.metrics != nil {
					s.metrics.RecordFiscalization(ctx, "existing")
				}
				return toResponse(existing, true), nil
			}
		}
		return nil, err
	}

	logger.WithContext(ctx, s.log).Info("invoice fiscalized",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("fiscal_code", rec.FiscalCode),
	)
	if s.metrics != nil {
		s.metrics.RecordFiscalization(ctx, "created")
	}
	return toResponse(&rec, false), nil
}

func (s *Service) Verify(ctx context.Context, code string) (*fiscaldomain.VerifyResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fiscaldomain.ErrFiscalCodeNotFound
	}

	rec, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fiscaldomain.ErrFiscalCodeNotFound
	}

	// The code carries its own prefix and hash length, so codes issued
	// before a policy change keep verifying against the stored fields.
	valid, err := VerifyCode(rec.FiscalCode, fiscaldomain.CodeInput{
		IssuerTIN:     rec.IssuerTIN,
		InvoiceNumber: invoiceNumberFromCode(rec.FiscalCode),
		FiscalDate:    rec.FiscalDate,
		GrossAmount:   rec.GrossAmount,
	})
	if err != nil {
		return nil, err
	}

	return &fiscaldomain.VerifyResponse{
		FiscalCode:  rec.FiscalCode,
		InvoiceID:   rec.InvoiceID.String(),
		IssuerTIN:   rec.IssuerTIN,
		FiscalDate:  rec.FiscalDate,
		GrossAmount: rec.GrossAmount,
		Valid:       valid,
	}, nil
}

func (s *Service) resolveIssuerTIN(ctx context.Context, orgID snowflake.ID, requested string) (string, error) {
	if tin := strings.TrimSpace(requested); tin != "" {
		return tin, nil
	}
	profile, err := s.profiles.FindLatest(ctx, s.db, orgID)
	if err != nil {
		return "", err
	}
	if profile == nil || profile.TIN == nil || strings.TrimSpace(*profile.TIN) == "" {
		return "", fiscaldomain.ErrMissingIssuerTIN
	}
	return strings.TrimSpace(*profile.TIN), nil
}

// invoiceNumberFromCode recovers the invoice segment of a stored code so
// verification can rebuild the hash from the same inputs.
func invoiceNumberFromCode(code string) string {
	parts := strings.Split(code, "-")
	if len(parts) < 5 {
		return ""
	}
	// PREFIX-DATE-ISSUER-INVOICE-HASH; the invoice is the next-to-last part.
	return parts[len(parts)-2]
}

func toResponse(rec *fiscaldomain.FiscalInvoice, existed bool) *fiscaldomain.FiscalResponse {
	return &fiscaldomain.FiscalResponse{
		ID:                rec.ID.String(),
		OrgID:             rec.OrgID.String(),
		InvoiceID:         rec.InvoiceID.String(),
		IssuerTIN:         rec.IssuerTIN,
		FiscalCode:        rec.FiscalCode,
		FiscalDate:        rec.FiscalDate,
		GrossAmount:       rec.GrossAmount,
		VatAmount:         rec.VatAmount,
		RateBps:           rec.RateBps,
		CreatedAt:         rec.CreatedAt,
		AlreadyFiscalized: existed,
	}
}
