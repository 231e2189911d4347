package domain

import "github.com/shopspring/decimal"

// Security is a reference data snapshot enriched with the currency and basis
// the holder reported for it.
type Security struct {
	Reference
	ReportedNominalCurrency string `json:"reportedNominalCurrency,omitempty"`
	ReportingBasis          string `json:"reportingBasis,omitempty"`
}

// MicroData is the joined record of one report and the reference data of the
// security it holds.
type MicroData struct {
	Key      MicroDataKey `json:"microDataKey"`
	Security Security     `json:"security"`

	AccruedInterestForMarketValues bool                `json:"accruedInterestForMarketValues"`
	AccruedInterestForTransactions bool                `json:"accruedInterestForTransactions"`
	EarlyRedemptions               bool                `json:"earlyRedemptions"`
	Amount                         decimal.Decimal     `json:"amount"`
	UnitMeasure                    string              `json:"unitMeasure"`
	ConfidentialityStatus          string              `json:"confidentialityStatus,omitempty"`
	ConfidentialityAmount          decimal.NullDecimal `json:"confidentialityAmount"`
}

// NewMicroData joins a report with the reference record it matched.
func NewMicroData(ref Reference, rep Report) MicroData {
	return MicroData{
		Key: MicroDataKeyOf(rep.Key),
		Security: Security{
			Reference:               ref,
			ReportedNominalCurrency: rep.NominalCurrency,
			ReportingBasis:          rep.ReportingBasis,
		},
		AccruedInterestForMarketValues: rep.AccruedInterestForMarketValues,
		AccruedInterestForTransactions: rep.AccruedInterestForTransactions,
		EarlyRedemptions:               rep.EarlyRedemptions,
		Amount:                         rep.Amount,
		UnitMeasure:                    rep.UnitMeasure,
		ConfidentialityStatus:          rep.ConfidentialityStatus,
		ConfidentialityAmount:          rep.ConfidentialityAmount,
	}
}
