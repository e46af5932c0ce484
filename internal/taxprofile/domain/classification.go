package domain

// Regime is the tax treatment applied to a business.
type Regime string

const (
	// RegimePresumptive is the simplified treatment for small businesses.
	RegimePresumptive Regime = "presumptive"
	// RegimeStandard applies to every business at or above a threshold.
	RegimeStandard Regime = "standard"
)

// Thresholds are the statutory small-business limits in kobo.
type Thresholds struct {
	Turnover    int64
	FixedAssets int64
}

// Classification is the outcome of applying the thresholds to a snapshot.
type Classification struct {
	IsSmallBusiness bool   `json:"is_small_business"`
	VatLiable       bool   `json:"vat_liable"`
	Regime          Regime `json:"regime"`
}
