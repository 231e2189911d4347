package ingestion

import (
	"github.com/shopspring/decimal"

	"github.com/shsdb/reconciler/internal/domain"
)

type repRecord = domain.Report

func repString(col domain.Column, slot func(*repRecord) *string) field[repRecord] {
	return stringField(col, slot)
}

var reportFields = []field[repRecord]{
	required(repString(domain.ColCompilingOrg, func(r *repRecord) *string { return &r.Key.CompilingOrg })),
	required(periodField(domain.ColPeriod, func(r *repRecord) *int { return &r.Key.Period })),
	required(repString(domain.ColFreq, func(r *repRecord) *string { return &r.Key.Frequency })),
	flagField(domain.ColAccrIntrMV, func(r *repRecord) *bool { return &r.AccruedInterestForMarketValues }),
	flagField(domain.ColAccrIntrTX, func(r *repRecord) *bool { return &r.AccruedInterestForTransactions }),
	flagField(domain.ColEarlyRed, func(r *repRecord) *bool { return &r.EarlyRedemptions }),
	required(repString(domain.ColISIN, func(r *repRecord) *string { return &r.Key.ISIN })),
	repString(domain.ColNomCurr, func(r *repRecord) *string { return &r.NominalCurrency }),
	repString(domain.ColReportingBasis, func(r *repRecord) *string { return &r.ReportingBasis }),
	required(repString(domain.ColHolderSector, func(r *repRecord) *string { return &r.Key.HolderSector })),
	required(repString(domain.ColSource, func(r *repRecord) *string { return &r.Key.Source })),
	required(repString(domain.ColHolderArea, func(r *repRecord) *string { return &r.Key.HolderArea })),
	required(repString(domain.ColFunctionalCategory, func(r *repRecord) *string { return &r.Key.FunctionalCategory })),
	required(repString(domain.ColAmountType, func(r *repRecord) *string { return &r.Key.AmountType })),
	required(repString(domain.ColValuation, func(r *repRecord) *string { return &r.Key.Valuation })),
	required(amountField(domain.ColObsValue, func(r *repRecord) *decimal.Decimal { return &r.Amount })),
	required(repString(domain.ColUnitMeasure, func(r *repRecord) *string { return &r.UnitMeasure })),
	repString(domain.ColConfStatus, func(r *repRecord) *string { return &r.ConfidentialityStatus }),
	decimalField(domain.ColConfAmount, func(r *repRecord) *decimal.NullDecimal { return &r.ConfidentialityAmount }),
}
