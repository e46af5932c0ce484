package service

import (
	profiledomain "github.com/nairabooks/taxcore/internal/taxprofile/domain"
)

// Classify applies the statutory small-business thresholds to trailing-12-month
// figures. Both amounts are kobo and must be non-negative.
//
// Threshold convention: strictly below BOTH thresholds (<) is small; at or
// above EITHER threshold is standard. Small businesses are VAT-exempt under
// the presumptive regime; everyone else is VAT-liable under the standard
// regime.
func Classify(turnoverKobo, fixedAssetsKobo int64, thresholds profiledomain.Thresholds) (profiledomain.Classification, error) {
	if turnoverKobo < 0 {
		return profiledomain.Classification{}, profiledomain.ErrInvalidTurnover
	}
	if fixedAssetsKobo < 0 {
		return profiledomain.Classification{}, profiledomain.ErrInvalidAssets
	}
	if thresholds.Turnover <= 0 || thresholds.FixedAssets <= 0 {
		return profiledomain.Classification{}, profiledomain.ErrInvalidThresholds
	}

	small := turnoverKobo < thresholds.Turnover && fixedAssetsKobo < thresholds.FixedAssets
	if small {
		return profiledomain.Classification{
			IsSmallBusiness: true,
			VatLiable:       false,
			Regime:          profiledomain.RegimePresumptive,
		}, nil
	}

	return profiledomain.Classification{
		IsSmallBusiness: false,
		VatLiable:       true,
		Regime:          profiledomain.RegimeStandard,
	}, nil
}
