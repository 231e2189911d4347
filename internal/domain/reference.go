package domain

import "github.com/shopspring/decimal"

// Reference is one Centralised Securities Database snapshot of a security.
// Every attribute besides the key is optional: a zero string, an invalid
// NullDecimal or a nil date means the column was absent or empty.
type Reference struct {
	Key ReferenceKey `json:"csdbKey"`

	AccruedIncomeFactor        decimal.NullDecimal `json:"accruedIncomeFactor"`
	AccruedInterest            decimal.NullDecimal `json:"accruedInterest"`
	AmountOutstanding          decimal.NullDecimal `json:"amountOutstanding"`
	AmountOutstandingEuro      decimal.NullDecimal `json:"amountOutstandingEuro"`
	AssetSecuritisationType    string              `json:"assetSecuritisationType,omitempty"`
	AveragePrice               decimal.NullDecimal `json:"averagePrice"`
	AveragePrice1              decimal.NullDecimal `json:"averagePrice1"`
	AveragePrice2              decimal.NullDecimal `json:"averagePrice2"`
	CFICode                    string              `json:"cfiCode,omitempty"`
	CouponDate                 *Date               `json:"couponDate,omitempty"`
	CouponFrequency            string              `json:"couponFrequency,omitempty"`
	CouponRate                 decimal.NullDecimal `json:"couponRate"`
	CouponType                 string              `json:"couponType,omitempty"`
	DebtType                   string              `json:"debtType,omitempty"`
	DerivedIncomeEuro          decimal.NullDecimal `json:"derivedIncomeEuro"`
	DerivedIncomeFrequency     string              `json:"derivedIncomeFrequency,omitempty"`
	DividendAmount             decimal.NullDecimal `json:"dividendAmount"`
	DividendCurrency           string              `json:"dividendCurrency,omitempty"`
	DividendIncomeEuro         decimal.NullDecimal `json:"dividendIncomeEuro"`
	DividendIncomeFrequency    string              `json:"dividendIncomeFrequency,omitempty"`
	DividendSettlementDate     *Date               `json:"dividendSettlementDate,omitempty"`
	DivType                    string              `json:"divType,omitempty"`
	InEADB                     string              `json:"inEADB,omitempty"`
	InstrumentClass            string              `json:"instrumentClass,omitempty"`
	InstrumentClassESA95       string              `json:"instrumentClassESA95,omitempty"`
	InstrumentSeniorityType    string              `json:"instrumentSeniorityType,omitempty"`
	InternalOrganisationCode   string              `json:"internalOrganisationCode,omitempty"`
	IssueDate                  *Date               `json:"issueDate,omitempty"`
	IssuePrice                 decimal.NullDecimal `json:"issuePrice"`
	IssuerArea                 string              `json:"issuerArea,omitempty"`
	IssuerESA95Sector          string              `json:"issuerESA95Sector,omitempty"`
	IssuerID                   string              `json:"issuerID,omitempty"`
	IssuerIDType               string              `json:"issuerIDType,omitempty"`
	IssuerLEI                  string              `json:"issuerLEI,omitempty"`
	IssuerMFI                  string              `json:"issuerMFI,omitempty"`
	IssuerNACESector           string              `json:"issuerNACESector,omitempty"`
	IssuerName                 string              `json:"issuerName,omitempty"`
	IssuerSector               string              `json:"issuerSector,omitempty"`
	MarketCapitalisation       decimal.NullDecimal `json:"marketCapitalisation"`
	MarketCapitalisationEuro   decimal.NullDecimal `json:"marketCapitalisationEuro"`
	MaturityDate               *Date               `json:"maturityDate,omitempty"`
	NominalCurrency            string              `json:"nominalCurrency,omitempty"`
	NominalValue               decimal.NullDecimal `json:"nominalValue"`
	NumberOutstanding          decimal.NullDecimal `json:"numberOutstanding"`
	PoolFactor                 decimal.NullDecimal `json:"poolFactor"`
	PriceValue                 decimal.NullDecimal `json:"priceValue"`
	PriceValueDate             *Date               `json:"priceValueDate,omitempty"`
	PriceValueType             string              `json:"priceValueType,omitempty"`
	PrimaryAssetClassification string              `json:"primaryAssetClassification,omitempty"`
	QuotationBasis             string              `json:"quotationBasis,omitempty"`
	RedemptionPrice            decimal.NullDecimal `json:"redemptionPrice"`
	SecurityStatus             string              `json:"securityStatus,omitempty"`
	SecurityStatusDate         *Date               `json:"securityStatusDate,omitempty"`
	ShortName                  string              `json:"shortName,omitempty"`
	SplitDate                  *Date               `json:"splitDate,omitempty"`
	SplitFactor                decimal.NullDecimal `json:"splitFactor"`
	YieldToMaturity            decimal.NullDecimal `json:"yieldToMaturity"`
}

// RecordKey returns the message key used when publishing the record.
func (r *Reference) RecordKey() string { return r.Key.String() }
