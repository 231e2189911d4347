package ingestion

import (
	"github.com/shopspring/decimal"

	"github.com/shsdb/reconciler/internal/domain"
)

type refRecord = domain.Reference

func refDecimal(col domain.Column, slot func(*refRecord) *decimal.NullDecimal) field[refRecord] {
	return decimalField(col, slot)
}

func refDate(col domain.Column, slot func(*refRecord) **domain.Date) field[refRecord] {
	return dateField(col, slot)
}

func refString(col domain.Column, slot func(*refRecord) *string) field[refRecord] {
	return stringField(col, slot)
}

var referenceFields = []field[refRecord]{
	required(refString(domain.ColIdentifier, func(r *refRecord) *string { return &r.Key.Identifier })),
	required(intField(domain.ColPeriod, func(r *refRecord) *int { return &r.Key.Period })),
	required(intField(domain.ColVersion, func(r *refRecord) *int { return &r.Key.Version })),

	refDecimal(domain.ColAccrIncomeFactor, func(r *refRecord) *decimal.NullDecimal { return &r.AccruedIncomeFactor }),
	refDecimal(domain.ColAccrInterest, func(r *refRecord) *decimal.NullDecimal { return &r.AccruedInterest }),
	refDecimal(domain.ColAmountOut, func(r *refRecord) *decimal.NullDecimal { return &r.AmountOutstanding }),
	refDecimal(domain.ColAmountOutstEur, func(r *refRecord) *decimal.NullDecimal { return &r.AmountOutstandingEuro }),
	refString(domain.ColAssetSecurisType, func(r *refRecord) *string { return &r.AssetSecuritisationType }),
	refDecimal(domain.ColAveragePrice, func(r *refRecord) *decimal.NullDecimal { return &r.AveragePrice }),
	refDecimal(domain.ColAveragePrice1, func(r *refRecord) *decimal.NullDecimal { return &r.AveragePrice1 }),
	refDecimal(domain.ColAveragePrice2, func(r *refRecord) *decimal.NullDecimal { return &r.AveragePrice2 }),
	refString(domain.ColCFI, func(r *refRecord) *string { return &r.CFICode }),
	refDate(domain.ColCouponDate, func(r *refRecord) **domain.Date { return &r.CouponDate }),
	refString(domain.ColCouponFrequency, func(r *refRecord) *string { return &r.CouponFrequency }),
	refDecimal(domain.ColCouponRate, func(r *refRecord) *decimal.NullDecimal { return &r.CouponRate }),
	refString(domain.ColCouponType, func(r *refRecord) *string { return &r.CouponType }),
	refString(domain.ColDebtType, func(r *refRecord) *string { return &r.DebtType }),
	refDecimal(domain.ColDerivedIncomeEur, func(r *refRecord) *decimal.NullDecimal { return &r.DerivedIncomeEuro }),
	refString(domain.ColDerivedIncomeFreq, func(r *refRecord) *string { return &r.DerivedIncomeFrequency }),
	refDecimal(domain.ColDivAmount, func(r *refRecord) *decimal.NullDecimal { return &r.DividendAmount }),
	refString(domain.ColDivCurrency, func(r *refRecord) *string { return &r.DividendCurrency }),
	refDecimal(domain.ColDivIncomeEur, func(r *refRecord) *decimal.NullDecimal { return &r.DividendIncomeEuro }),
	refString(domain.ColDivFreq, func(r *refRecord) *string { return &r.DividendIncomeFrequency }),
	refDate(domain.ColDivDate, func(r *refRecord) **domain.Date { return &r.DividendSettlementDate }),
	refString(domain.ColDivType, func(r *refRecord) *string { return &r.DivType }),
	refString(domain.ColInEADB, func(r *refRecord) *string { return &r.InEADB }),
	refString(domain.ColESAIns2010, func(r *refRecord) *string { return &r.InstrumentClass }),
	refString(domain.ColESAIns, func(r *refRecord) *string { return &r.InstrumentClassESA95 }),
	refString(domain.ColInsSeniorType, func(r *refRecord) *string { return &r.InstrumentSeniorityType }),
	refString(domain.ColIntOrgCode, func(r *refRecord) *string { return &r.InternalOrganisationCode }),
	refDate(domain.ColIssueDate, func(r *refRecord) **domain.Date { return &r.IssueDate }),
	refDecimal(domain.ColIssuePrice, func(r *refRecord) *decimal.NullDecimal { return &r.IssuePrice }),
	refString(domain.ColIssuerCountry, func(r *refRecord) *string { return &r.IssuerArea }),
	refString(domain.ColESAIssuer, func(r *refRecord) *string { return &r.IssuerESA95Sector }),
	refString(domain.ColIssID, func(r *refRecord) *string { return &r.IssuerID }),
	refString(domain.ColIssIDType, func(r *refRecord) *string { return &r.IssuerIDType }),
	refString(domain.ColLEI, func(r *refRecord) *string { return &r.IssuerLEI }),
	refString(domain.ColMFI, func(r *refRecord) *string { return &r.IssuerMFI }),
	refString(domain.ColNACE, func(r *refRecord) *string { return &r.IssuerNACESector }),
	refString(domain.ColIssuerName, func(r *refRecord) *string { return &r.IssuerName }),
	refString(domain.ColESAIssuer2010, func(r *refRecord) *string { return &r.IssuerSector }),
	refDecimal(domain.ColMarketCapital, func(r *refRecord) *decimal.NullDecimal { return &r.MarketCapitalisation }),
	refDecimal(domain.ColMarketCapEur, func(r *refRecord) *decimal.NullDecimal { return &r.MarketCapitalisationEuro }),
	refDate(domain.ColMaturityDate, func(r *refRecord) **domain.Date { return &r.MaturityDate }),
	refString(domain.ColNominalCurrency, func(r *refRecord) *string { return &r.NominalCurrency }),
	refDecimal(domain.ColNominalValue, func(r *refRecord) *decimal.NullDecimal { return &r.NominalValue }),
	refDecimal(domain.ColNumberOutst, func(r *refRecord) *decimal.NullDecimal { return &r.NumberOutstanding }),
	refDecimal(domain.ColPoolFactor, func(r *refRecord) *decimal.NullDecimal { return &r.PoolFactor }),
	refDecimal(domain.ColPrice, func(r *refRecord) *decimal.NullDecimal { return &r.PriceValue }),
	refDate(domain.ColPriceDate, func(r *refRecord) **domain.Date { return &r.PriceValueDate }),
	refString(domain.ColPriceVT, func(r *refRecord) *string { return &r.PriceValueType }),
	refString(domain.ColPrimaryAssetClass, func(r *refRecord) *string { return &r.PrimaryAssetClassification }),
	refString(domain.ColQuotationBasis, func(r *refRecord) *string { return &r.QuotationBasis }),
	refDecimal(domain.ColRedemptionPrice, func(r *refRecord) *decimal.NullDecimal { return &r.RedemptionPrice }),
	refString(domain.ColSecStatus, func(r *refRecord) *string { return &r.SecurityStatus }),
	refDate(domain.ColSecStatusDate, func(r *refRecord) **domain.Date { return &r.SecurityStatusDate }),
	refString(domain.ColShortName, func(r *refRecord) *string { return &r.ShortName }),
	refDate(domain.ColSplitDate, func(r *refRecord) **domain.Date { return &r.SplitDate }),
	refDecimal(domain.ColSplitFactor, func(r *refRecord) *decimal.NullDecimal { return &r.SplitFactor }),
	refDecimal(domain.ColYield, func(r *refRecord) *decimal.NullDecimal { return &r.YieldToMaturity }),
}
