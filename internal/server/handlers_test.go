package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nairabooks/taxcore/internal/config"
	vatdomain "github.com/nairabooks/taxcore/internal/vat/domain"
	vatservice "github.com/nairabooks/taxcore/internal/vat/service"
)

type fakeVatService struct {
	policy *config.TaxPolicyHolder

	generateErr error
}

func (f *fakeVatService) ComputeLine(ctx context.Context, req vatdomain.ComputeLineRequest) (*vatdomain.ComputeLineResponse, error) {
	rate := f.policy.Get().StandardRateBps
	result, err := vatservice.ComputeLine(req.NetAmount, req.Category, rate)
	if err != nil {
		return nil, err
	}
	return &vatdomain.ComputeLineResponse{
		NetAmount:   req.NetAmount,
		Category:    req.Category,
		RateBps:     rate,
		VatAmount:   result.VatAmount,
		GrossAmount: result.GrossAmount,
	}, nil
}

func (f *fakeVatService) GenerateReturn(ctx context.Context, req vatdomain.GenerateReturnRequest) (*vatdomain.ReturnResponse, error) {
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return &vatdomain.ReturnResponse{Status: vatdomain.ReturnStatusDraft}, nil
}

func (f *fakeVatService) RegenerateReturn(ctx context.Context, returnID int64) (*vatdomain.ReturnResponse, error) {
	return nil, vatdomain.ErrReturnNotFound
}

func (f *fakeVatService) SubmitReturn(ctx context.Context, returnID int64) (*vatdomain.ReturnResponse, error) {
	return nil, vatdomain.ErrReturnNotFound
}

func (f *fakeVatService) Get(ctx context.Context, returnID int64) (*vatdomain.ReturnResponse, error) {
	return nil, vatdomain.ErrReturnNotFound
}

func (f *fakeVatService) List(ctx context.Context, req vatdomain.ListReturnsRequest) ([]vatdomain.ReturnResponse, error) {
	return nil, nil
}

func newTestServer(vatSvc vatdomain.Service) (*Server, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	srv := &Server{
		policy: config.NewStaticTaxPolicyHolder(config.DefaultTaxPolicy()),
		vatSvc: vatSvc,
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	srv.engine = router
	return srv, router
}

func TestComputeVatLineHandler(t *testing.T) {
	srv, router := newTestServer(&fakeVatService{
		policy: config.NewStaticTaxPolicyHolder(config.DefaultTaxPolicy()),
	})
	router.POST("/api/vat/compute-line", srv.ComputeVatLine)

	body := bytes.NewBufferString(`{"net_amount":10000,"category":"standard"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/vat/compute-line", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var payload struct {
		Data vatdomain.ComputeLineResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.Equal(t, int64(750), payload.Data.VatAmount)
	assert.Equal(t, int64(10750), payload.Data.GrossAmount)
}

func TestComputeVatLineHandlerUnknownCategory(t *testing.T) {
	srv, router := newTestServer(&fakeVatService{
		policy: config.NewStaticTaxPolicyHolder(config.DefaultTaxPolicy()),
	})
	router.POST("/api/vat/compute-line", srv.ComputeVatLine)

	body := bytes.NewBufferString(`{"net_amount":10000,"category":"luxury"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/vat/compute-line", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestClassifyHandler(t *testing.T) {
	srv, router := newTestServer(&fakeVatService{})
	router.POST("/api/classify", srv.ClassifyBusiness)

	body := bytes.NewBufferString(`{"turnover_kobo":1000000000,"fixed_assets_kobo":0}`)
	req := httptest.NewRequest(http.MethodPost, "/api/classify", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var payload struct {
		Data struct {
			IsSmallBusiness bool   `json:"is_small_business"`
			VatLiable       bool   `json:"vat_liable"`
			Regime          string `json:"regime"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.True(t, payload.Data.IsSmallBusiness)
	assert.False(t, payload.Data.VatLiable)
	assert.Equal(t, "presumptive", payload.Data.Regime)
}

func TestGenerateReturnHandlerMapsConflict(t *testing.T) {
	srv, router := newTestServer(&fakeVatService{
		generateErr: vatdomain.ErrDuplicateReturnPeriod,
	})
	router.POST("/api/vat/returns", srv.GenerateVatReturn)

	body := bytes.NewBufferString(`{"period":"2026-03"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/vat/returns", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestGenerateReturnHandlerRejectsBadPeriod(t *testing.T) {
	srv, router := newTestServer(&fakeVatService{})
	router.POST("/api/vat/returns", srv.GenerateVatReturn)

	body := bytes.NewBufferString(`{"period":"March 2026"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/vat/returns", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestOrgContextRejectsMalformedHeader(t *testing.T) {
	srv, router := newTestServer(&fakeVatService{})
	router.GET("/api/vat/returns", OrgContext(), srv.ListVatReturns)

	req := httptest.NewRequest(http.MethodGet, "/api/vat/returns", nil)
	req.Header.Set(HeaderOrg, "not-a-number")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
