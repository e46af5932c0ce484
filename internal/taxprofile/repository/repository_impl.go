package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	profiledomain "github.com/nairabooks/taxcore/internal/taxprofile/domain"
	"gorm.io/gorm"
)

type repository struct{}

func NewRepository() profiledomain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, profile *profiledomain.TaxProfile) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tax_profiles (
			id, org_id, turnover_kobo, fixed_assets_kobo, tin, vat_registration_no,
			business_category, metadata, reported_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.ID,
		profile.OrgID,
		profile.TurnoverKobo,
		profile.FixedAssetsKobo,
		profile.TIN,
		profile.VATRegistrationNo,
		profile.BusinessCategory,
		profile.Metadata,
		profile.ReportedAt,
		profile.CreatedAt,
	).Error
}

func (r *repository) FindLatest(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (*profiledomain.TaxProfile, error) {
	var profile profiledomain.TaxProfile
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, turnover_kobo, fixed_assets_kobo, tin, vat_registration_no,
		        business_category, metadata, reported_at, created_at
		 FROM tax_profiles
		 WHERE org_id = ?
		 ORDER BY reported_at DESC, id DESC
		 LIMIT 1`,
		orgID,
	).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == 0 {
		return nil, nil
	}
	return &profile, nil
}

func (r *repository) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit int) ([]profiledomain.TaxProfile, error) {
	if limit <= 0 || limit > 250 {
		limit = 50
	}
	var items []profiledomain.TaxProfile
	err := db.WithContext(ctx).
		Model(&profiledomain.TaxProfile{}).
		Where("org_id = ?", orgID).
		Order("reported_at DESC, id DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
