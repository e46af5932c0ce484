package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/nairabooks/taxcore/internal/config"
	"github.com/nairabooks/taxcore/internal/fiscal"
	fiscaldomain "github.com/nairabooks/taxcore/internal/fiscal/domain"
	"github.com/nairabooks/taxcore/internal/invoice"
	invoicedomain "github.com/nairabooks/taxcore/internal/invoice/domain"
	"github.com/nairabooks/taxcore/internal/observability"
	obsmiddleware "github.com/nairabooks/taxcore/internal/observability/logger"
	obsmetrics "github.com/nairabooks/taxcore/internal/observability/metrics"
	obstracing "github.com/nairabooks/taxcore/internal/observability/tracing"
	"github.com/nairabooks/taxcore/internal/taxprofile"
	profiledomain "github.com/nairabooks/taxcore/internal/taxprofile/domain"
	"github.com/nairabooks/taxcore/internal/vat"
	vatdomain "github.com/nairabooks/taxcore/internal/vat/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	taxprofile.Module,
	invoice.Module,
	vat.Module,
	fiscal.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	genID      *snowflake.Node
	policy     *config.TaxPolicyHolder
	profileSvc profiledomain.Service
	invoiceSvc invoicedomain.Service
	vatSvc     vatdomain.Service
	fiscalSvc  fiscaldomain.Service
	obsMetrics *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	GenID      *snowflake.Node
	Policy     *config.TaxPolicyHolder
	ProfileSvc profiledomain.Service
	InvoiceSvc invoicedomain.Service
	VatSvc     vatdomain.Service
	FiscalSvc  fiscaldomain.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		db:         p.DB,
		genID:      p.GenID,
		policy:     p.Policy,
		profileSvc: p.ProfileSvc,
		invoiceSvc: p.InvoiceSvc,
		vatSvc:     p.VatSvc,
		fiscalSvc:  p.FiscalSvc,
		obsMetrics: p.ObsMetrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", OrgContext())

	api.POST("/classify", s.ClassifyBusiness)

	api.POST("/tax-profiles", s.RecordTaxProfile)
	api.GET("/tax-profiles", s.ListTaxProfiles)
	api.GET("/tax-profiles/current", s.CurrentTaxProfile)

	api.POST("/vat/compute-line", s.ComputeVatLine)
	api.POST("/vat/returns", s.GenerateVatReturn)
	api.GET("/vat/returns", s.ListVatReturns)
	api.GET("/vat/returns/:id", s.GetVatReturn)
	api.POST("/vat/returns/:id/regenerate", s.RegenerateVatReturn)
	api.POST("/vat/returns/:id/submit", s.SubmitVatReturn)

	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices", s.ListInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.POST("/invoices/:id/finalize", s.FinalizeInvoice)
	api.POST("/invoices/:id/void", s.VoidInvoice)
	api.POST("/invoices/:id/fiscalize", s.FiscalizeInvoice)

	api.GET("/fiscal-codes/verify", s.VerifyFiscalCode)
}
