package domain

import (
	"strconv"
	"strings"
)

const keySeparator = "+"

// ReferenceKey identifies one reference data snapshot of a security.
type ReferenceKey struct {
	Identifier string `json:"identifier"`
	Period     int    `json:"period"`
	Version    int    `json:"version"`
}

func (k ReferenceKey) String() string {
	return k.Identifier + keySeparator + strconv.Itoa(k.Period) + keySeparator + strconv.Itoa(k.Version)
}

// ReportKey identifies one reported holding.
type ReportKey struct {
	CompilingOrg       string `json:"compilingOrg"`
	Period             int    `json:"period"`
	Frequency          string `json:"frequency"`
	ISIN               string `json:"isin"`
	HolderSector       string `json:"holderSector"`
	Source             string `json:"source"`
	HolderArea         string `json:"holderArea"`
	FunctionalCategory string `json:"functionalCategory"`
	AmountType         string `json:"amountType"`
	Valuation          string `json:"valuation"`
}

func (k ReportKey) String() string {
	return strings.Join([]string{
		k.CompilingOrg,
		strconv.Itoa(k.Period),
		k.Frequency,
		k.ISIN,
		k.HolderSector,
		k.Source,
		k.HolderArea,
		k.FunctionalCategory,
		k.AmountType,
		k.Valuation,
	}, keySeparator)
}

// MicroDataKey is the report key without the ISIN, which moves into the
// joined security.
type MicroDataKey struct {
	CompilingOrg       string `json:"compilingOrg"`
	Period             int    `json:"period"`
	Frequency          string `json:"frequency"`
	HolderSector       string `json:"holderSector"`
	Source             string `json:"source"`
	HolderArea         string `json:"holderArea"`
	FunctionalCategory string `json:"functionalCategory"`
	AmountType         string `json:"amountType"`
	Valuation          string `json:"valuation"`
}

// MicroDataKeyOf derives the joined record key from a report key.
func MicroDataKeyOf(k ReportKey) MicroDataKey {
	return MicroDataKey{
		CompilingOrg:       k.CompilingOrg,
		Period:             k.Period,
		Frequency:          k.Frequency,
		HolderSector:       k.HolderSector,
		Source:             k.Source,
		HolderArea:         k.HolderArea,
		FunctionalCategory: k.FunctionalCategory,
		AmountType:         k.AmountType,
		Valuation:          k.Valuation,
	}
}

// NextPeriod returns the yyyymm period following p. December rolls over into
// January of the next year.
func NextPeriod(p int) int {
	year, month := p/100, p%100
	if month >= 12 {
		return (year+1)*100 + 1
	}
	return p + 1
}

// CandidateKeys returns the reference keys a report can be joined with, in
// order of preference.
func CandidateKeys(k ReportKey) []ReferenceKey {
	next := NextPeriod(k.Period)
	return []ReferenceKey{
		{Identifier: k.ISIN, Period: next, Version: 1},
		{Identifier: k.ISIN, Period: next, Version: 0},
	}
}
