package domain

import "strings"

// Delimiter separates columns in every ingested file.
const Delimiter = ";"

// Column is a canonical header name.
type Column string

// Family identifies one kind of ingested file.
type Family string

const (
	// FamilyCSDB is the Centralised Securities Database reference data. Its
	// header may list the columns in any order.
	FamilyCSDB Family = "csdb"
	// FamilyReports is holder-reported holdings data. Its header must match
	// ReportColumns exactly.
	FamilyReports Family = "reports"
)

// Reference data columns.
const (
	ColIdentifier          Column = "IDENTIFIER"
	ColPeriod              Column = "PERIOD"
	ColVersion             Column = "VERSION"
	ColAccrIncomeFactor    Column = "ACCR_INCOME_FACTOR"
	ColAccrInterest        Column = "ACCR_INTEREST"
	ColAmountOut           Column = "AMOUNT_OUT"
	ColAmountOutstEur      Column = "AMOUNT_OUTST_EUR"
	ColAssetSecurisType    Column = "ASSET_SECURIS_TYPE"
	ColAveragePrice        Column = "AVERAGE_PRICE"
	ColAveragePrice1       Column = "AVERAGE_PRICE_1"
	ColAveragePrice2       Column = "AVERAGE_PRICE_2"
	ColCFI                 Column = "CFI"
	ColCouponDate          Column = "COUPON_DT"
	ColCouponFrequency     Column = "COUPON_FREQUENCY2"
	ColCouponRate          Column = "COUPON_RATE"
	ColCouponType          Column = "COUPON_TYPE2"
	ColDebtType            Column = "DEBT_TYPE2"
	ColDerivedIncomeEur    Column = "DERIVED_INCOME_EUR"
	ColDerivedIncomeFreq   Column = "DERIVED_INCOME_FREQ"
	ColDivAmount           Column = "DIV_AMOUNT"
	ColDivCurrency         Column = "DIV_CURRENCY"
	ColDivIncomeEur        Column = "DIV_INCOME_EUR"
	ColDivFreq             Column = "DIV_FREQ"
	ColDivDate             Column = "DIV_DT"
	ColDivType             Column = "DIV_TYPE"
	ColInEADB              Column = "IN_EADB"
	ColESAIns2010          Column = "ESA_INS_2010"
	ColESAIns              Column = "ESA_INS"
	ColInsSeniorType       Column = "INS_SENIOR_TYPE"
	ColIntOrgCode          Column = "INT_ORG_CODE"
	ColIssueDate           Column = "ISSUE_DT"
	ColIssuePrice          Column = "ISSUE_PRICE"
	ColIssuerCountry       Column = "ISSUER_COUNTRY"
	ColESAIssuer           Column = "ESA_ISSUER"
	ColIssID               Column = "ISS_ID"
	ColIssIDType           Column = "ISS_ID_TYPE"
	ColLEI                 Column = "LEI"
	ColMFI                 Column = "MFI"
	ColNACE                Column = "NACE"
	ColIssuerName          Column = "ISSUER_NAME"
	ColESAIssuer2010       Column = "ESA_ISSUER_2010"
	ColMarketCapital       Column = "MARKET_CAPITAL"
	ColMarketCapEur        Column = "MARKET_CAP_EUR"
	ColMaturityDate        Column = "MATURITY_DT"
	ColNominalCurrency     Column = "NOMINAL_CURRENCY"
	ColNominalValue        Column = "NOMINAL_VALUE"
	ColNumberOutst         Column = "NUMBER_OUTST"
	ColPoolFactor          Column = "POOL_FACTOR"
	ColPrice               Column = "PRICE"
	ColPriceDate           Column = "PRICE_DT"
	ColPriceVT             Column = "PRICE_VT"
	ColPrimaryAssetClass   Column = "PRIMARY_ASSET_CLASS"
	ColQuotationBasis      Column = "QUOTATION_BASIS"
	ColRedemptionPrice     Column = "REDEMPTION_PRICE"
	ColSecStatus           Column = "SEC_STATUS"
	ColSecStatusDate       Column = "SEC_STATUS_DT"
	ColShortName           Column = "SHORT_NAME"
	ColSplitDate           Column = "SPLIT_DT"
	ColSplitFactor         Column = "SPLIT_FAC"
	ColYield               Column = "YIELD"
)

// Report columns. PERIOD is shared with the reference data schema.
const (
	ColCompilingOrg       Column = "COMPILING_ORG"
	ColFreq               Column = "FREQ"
	ColAccrIntrMV         Column = "ACCR_INTR_MV"
	ColAccrIntrTX         Column = "ACCR_INTR_TX"
	ColEarlyRed           Column = "EARLY_RED"
	ColISIN               Column = "ISIN"
	ColNomCurr            Column = "NOM_CURR"
	ColReportingBasis     Column = "REPORTING_BASIS"
	ColHolderSector       Column = "HOLDER_SECTOR"
	ColSource             Column = "SOURCE"
	ColHolderArea         Column = "HOLDER_AREA"
	ColFunctionalCategory Column = "FUNCTIONAL_CATEGORY"
	ColAmountType         Column = "AMOUNT_TYPE"
	ColValuation          Column = "VALUATION"
	ColObsValue           Column = "OBS_VALUE"
	ColUnitMeasure        Column = "UNIT_MEASURE"
	ColConfStatus         Column = "CONF_STATUS"
	ColConfAmount         Column = "CONF_AMOUNT"
)

// ReferenceColumns lists the reference data schema in canonical order.
var ReferenceColumns = []Column{
	ColIdentifier, ColPeriod, ColVersion,
	ColAccrIncomeFactor, ColAccrInterest, ColAmountOut, ColAmountOutstEur,
	ColAssetSecurisType, ColAveragePrice, ColAveragePrice1, ColAveragePrice2,
	ColCFI, ColCouponDate, ColCouponFrequency, ColCouponRate, ColCouponType,
	ColDebtType, ColDerivedIncomeEur, ColDerivedIncomeFreq, ColDivAmount,
	ColDivCurrency, ColDivIncomeEur, ColDivFreq, ColDivDate, ColDivType,
	ColInEADB, ColESAIns2010, ColESAIns, ColInsSeniorType, ColIntOrgCode,
	ColIssueDate, ColIssuePrice, ColIssuerCountry, ColESAIssuer, ColIssID,
	ColIssIDType, ColLEI, ColMFI, ColNACE, ColIssuerName, ColESAIssuer2010,
	ColMarketCapital, ColMarketCapEur, ColMaturityDate, ColNominalCurrency,
	ColNominalValue, ColNumberOutst, ColPoolFactor, ColPrice, ColPriceDate,
	ColPriceVT, ColPrimaryAssetClass, ColQuotationBasis, ColRedemptionPrice,
	ColSecStatus, ColSecStatusDate, ColShortName, ColSplitDate, ColSplitFactor,
	ColYield,
}

// ReportColumns lists the report schema. Report headers must match this order.
var ReportColumns = []Column{
	ColCompilingOrg, ColPeriod, ColFreq, ColAccrIntrMV, ColAccrIntrTX,
	ColEarlyRed, ColISIN, ColNomCurr, ColReportingBasis, ColHolderSector,
	ColSource, ColHolderArea, ColFunctionalCategory, ColAmountType,
	ColValuation, ColObsValue, ColUnitMeasure, ColConfStatus, ColConfAmount,
}

// Schema is the closed set of columns recognised for one family.
type Schema struct {
	Family  Family
	Columns []Column
	members map[Column]struct{}
}

func newSchema(f Family, cols []Column) *Schema {
	s := &Schema{Family: f, Columns: cols, members: make(map[Column]struct{}, len(cols))}
	for _, c := range cols {
		s.members[c] = struct{}{}
	}
	return s
}

var (
	ReferenceSchema = newSchema(FamilyCSDB, ReferenceColumns)
	ReportSchema    = newSchema(FamilyReports, ReportColumns)
)

// Has reports whether name is a member of the schema. Matching is
// case-sensitive.
func (s *Schema) Has(name string) bool {
	_, ok := s.members[Column(name)]
	return ok
}

// Size returns the number of columns in the schema.
func (s *Schema) Size() int { return len(s.Columns) }

// Header renders the canonical header line.
func (s *Schema) Header() string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = string(c)
	}
	return strings.Join(names, Delimiter)
}

// ColumnOrder maps a column to its zero-based position in one file.
type ColumnOrder map[Column]int

// Columns returns the header columns sorted by position.
func (o ColumnOrder) Columns() []Column {
	cols := make([]Column, len(o))
	for c, i := range o {
		if i >= 0 && i < len(cols) {
			cols[i] = c
		}
	}
	return cols
}
