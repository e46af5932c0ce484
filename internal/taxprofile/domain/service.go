package domain

import (
	"context"
	"time"
)

type Service interface {
	RecordSnapshot(ctx context.Context, req SnapshotRequest) (*ProfileResponse, error)
	Current(ctx context.Context) (*ProfileResponse, error)
	History(ctx context.Context, req HistoryRequest) ([]ProfileResponse, error)
}

type SnapshotRequest struct {
	TurnoverKobo      int64   `json:"turnover_kobo"`
	FixedAssetsKobo   int64   `json:"fixed_assets_kobo"`
	TIN               *string `json:"tin,omitempty"`
	VATRegistrationNo *string `json:"vat_registration_no,omitempty"`
	BusinessCategory  string  `json:"business_category"`
}

type HistoryRequest struct {
	Limit int
}

type ProfileResponse struct {
	ID                string         `json:"id"`
	OrganizationID    string         `json:"organization_id"`
	TurnoverKobo      int64          `json:"turnover_kobo"`
	FixedAssetsKobo   int64          `json:"fixed_assets_kobo"`
	TIN               *string        `json:"tin,omitempty"`
	VATRegistrationNo *string        `json:"vat_registration_no,omitempty"`
	BusinessCategory  string         `json:"business_category"`
	Classification    Classification `json:"classification"`
	ReportedAt        time.Time      `json:"reported_at"`
}
