package domain

import "errors"

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrMissingIssuerTIN    = errors.New("missing_issuer_tin")
	ErrMissingInvoiceNo    = errors.New("missing_invoice_number")
	ErrMissingFiscalDate   = errors.New("missing_fiscal_date")
	ErrInvalidGrossAmount  = errors.New("invalid_gross_amount")
	ErrFiscalCodeNotFound  = errors.New("fiscal_code_not_found")
	ErrFiscalizationBusy   = errors.New("fiscalization_in_progress")
)
