package service

import (
	"github.com/nairabooks/taxcore/internal/vat/domain"
)

// ComputeLine derives VAT and gross for a single line. Amounts are kobo,
// rates are basis points. Rounding is half-up on the kobo: with rateBps=750,
// a net of 10000 yields VAT 750 and gross 10750. Zero-rated and exempt
// lines always carry zero VAT regardless of rate.
func ComputeLine(netAmount int64, category domain.Category, rateBps int64) (domain.LineResult, error) {
	if netAmount < 0 {
		return domain.LineResult{}, domain.ErrInvalidNetAmount
	}
	if !category.Valid() {
		return domain.LineResult{}, domain.ErrUnknownVatCategory
	}
	if rateBps < 0 {
		return domain.LineResult{}, domain.ErrInvalidRate
	}

	var vat int64
	if category == domain.CategoryStandard {
		vat = (netAmount*rateBps + 5000) / 10000
	}
	return domain.LineResult{
		VatAmount:   vat,
		GrossAmount: netAmount + vat,
	}, nil
}

// CalculateReturn sums already-computed line VAT into period totals. Output
// lines add to output VAT, input lines to input VAT. The net position is
// output minus input; what happens below zero is decided by policy.
func CalculateReturn(lines []domain.PeriodLine, policy domain.NegativeNetPolicy) (domain.ReturnTotals, error) {
	if !policy.Valid() {
		return domain.ReturnTotals{}, domain.ErrInvalidPolicy
	}

	var totals domain.ReturnTotals
	for _, line := range lines {
		if !line.Direction.Valid() {
			return domain.ReturnTotals{}, domain.ErrUnknownDirection
		}
		switch line.Direction {
		case domain.DirectionOutput:
			totals.TotalOutputVat += line.VatAmount
			totals.OutputLines++
		case domain.DirectionInput:
			totals.TotalInputVat += line.VatAmount
			totals.InputLines++
		}
	}

	totals.NetVat = totals.TotalOutputVat - totals.TotalInputVat
	if totals.NetVat < 0 && policy == domain.PolicyClampZero {
		totals.NetVat = 0
	}
	return totals, nil
}
