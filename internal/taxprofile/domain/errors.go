package domain

import "errors"

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidTurnover     = errors.New("invalid_turnover")
	ErrInvalidAssets       = errors.New("invalid_assets")
	ErrInvalidThresholds   = errors.New("invalid_thresholds")
	ErrProfileNotFound     = errors.New("tax_profile_not_found")
)
