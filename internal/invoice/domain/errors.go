package domain

import "errors"

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvoiceNotFound     = errors.New("invoice_not_found")
	ErrInvoiceNotDraft     = errors.New("invoice_not_draft")
	ErrInvoiceNotFinalized = errors.New("invoice_not_finalized")
	ErrEmptyInvoice        = errors.New("empty_invoice")
	ErrMissingCustomer     = errors.New("missing_customer")
	ErrInvalidDirection    = errors.New("invalid_invoice_direction")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidUnitPrice    = errors.New("invalid_unit_price")
)
