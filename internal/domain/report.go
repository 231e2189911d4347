package domain

import "github.com/shopspring/decimal"

// Report is one holding reported by a reporting agent. The three flags, the
// amount and the unit are mandatory; the remaining attributes are optional.
type Report struct {
	Key ReportKey `json:"reportedDataKey"`

	AccruedInterestForMarketValues bool                `json:"accruedInterestForMarketValues"`
	AccruedInterestForTransactions bool                `json:"accruedInterestForTransactions"`
	EarlyRedemptions               bool                `json:"earlyRedemptions"`
	NominalCurrency                string              `json:"nominalCurrency,omitempty"`
	ReportingBasis                 string              `json:"reportingBasis,omitempty"`
	Amount                         decimal.Decimal     `json:"amount"`
	UnitMeasure                    string              `json:"unitMeasure"`
	ConfidentialityStatus          string              `json:"confidentialityStatus,omitempty"`
	ConfidentialityAmount          decimal.NullDecimal `json:"confidentialityAmount"`
}

// RecordKey returns the message key used when publishing the record.
func (r *Report) RecordKey() string { return r.Key.String() }
