package domain

import "errors"

var (
	ErrInvalidOrganization    = errors.New("invalid_organization")
	ErrInvalidNetAmount       = errors.New("invalid_net_amount")
	ErrInvalidRate            = errors.New("invalid_rate")
	ErrUnknownVatCategory     = errors.New("unknown_vat_category")
	ErrUnknownDirection       = errors.New("unknown_vat_direction")
	ErrInvalidPeriod          = errors.New("invalid_period")
	ErrInvalidPolicy          = errors.New("invalid_policy")
	ErrDuplicateReturnPeriod  = errors.New("duplicate_return_period")
	ErrReturnNotFound         = errors.New("vat_return_not_found")
	ErrReturnAlreadySubmitted = errors.New("vat_return_already_submitted")
)
