// Command generate writes a deterministic pair of reference data and report
// files for load testing the reconciler.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shsdb/reconciler/internal/domain"
	"github.com/shsdb/reconciler/internal/ingestion"
)

var (
	classes    = []string{"F.3", "F.511", "F.512", "F.519", "F.52"}
	currencies = []string{"EUR", "USD", "GBP", "CHF", "JPY"}
	sectors    = []string{"S11", "S121", "S122", "S124", "S128", "S129", "S13", "S14"}
	areas      = []string{"DE", "FR", "IT", "ES", "NL", "BE", "AT", "FI"}
)

// csdbColumns is the header of the generated reference file. The order is
// deliberately not canonical.
var csdbColumns = []domain.Column{
	domain.ColVersion, domain.ColIdentifier, domain.ColPeriod,
	domain.ColESAIns2010, domain.ColIssuerName, domain.ColIssuerCountry,
	domain.ColNominalCurrency, domain.ColCouponRate, domain.ColIssueDate,
	domain.ColMaturityDate, domain.ColAmountOut, domain.ColPrice,
}

func main() {
	securities := flag.Int("securities", 200, "Number of distinct ISINs.")
	unmatched := flag.Float64("unmatched", 0.1, "Share of reports without reference data.")
	flag.Parse()

	rng := rand.New(rand.NewSource(42))
	baseDir := findTestdataDir()

	var refs []domain.Reference
	var reps []domain.Report
	for i := 0; i < *securities; i++ {
		isin := fmt.Sprintf("%s%09d%d", areas[rng.Intn(len(areas))], rng.Intn(1_000_000_000), i%10)
		issued := domain.NewDate(2010+rng.Intn(12), time.Month(1+rng.Intn(12)), 1+rng.Intn(28))
		matures := domain.NewDate(issued.Year()+2+rng.Intn(28), issued.Month(), issued.Day())
		class := classes[rng.Intn(len(classes))]
		ccy := currencies[rng.Intn(len(currencies))]

		for month := 1; month <= 12; month++ {
			period := 2022*100 + month
			reportPeriod := period - 1
			if month == 1 {
				reportPeriod = 202112
			}

			hasReference := rng.Float64() >= *unmatched
			if hasReference {
				// v0 always exists, a v1 revision about a third of the time.
				versions := 1
				if rng.Intn(3) == 0 {
					versions = 2
				}
				for v := 0; v < versions; v++ {
					refs = append(refs, newReference(rng, isin, period, v, class, ccy, issued, matures))
				}
			}
			reps = append(reps, newReport(rng, isin, reportPeriod, ccy))
		}
	}

	rng.Shuffle(len(refs), func(i, j int) { refs[i], refs[j] = refs[j], refs[i] })
	rng.Shuffle(len(reps), func(i, j int) { reps[i], reps[j] = reps[j], reps[i] })

	writeFile(baseDir, "generated_csdb.csv", ingestion.References, joinColumns(csdbColumns), refs)
	writeFile(baseDir, "generated_reports.csv", ingestion.Reports, domain.ReportSchema.Header(), reps)
	fmt.Println("Test data generation complete.")
}

func newReference(rng *rand.Rand, isin string, period, version int, class, ccy string, issued, matures domain.Date) domain.Reference {
	ref := domain.Reference{
		Key:             domain.ReferenceKey{Identifier: isin, Period: period, Version: version},
		InstrumentClass: class,
		IssuerName:      "ISSUER " + isin[:2] + " " + isin[len(isin)-4:],
		IssuerArea:      isin[:2],
		NominalCurrency: ccy,
		IssueDate:       &issued,
		MaturityDate:    &matures,
	}
	ref.CouponRate = decimal.NewNullDecimal(decimal.New(int64(rng.Intn(800)), -2))
	ref.AmountOutstanding = decimal.NewNullDecimal(decimal.New(int64(1+rng.Intn(5000)), 6))
	ref.PriceValue = decimal.NewNullDecimal(decimal.New(int64(8000+rng.Intn(4000)), -2))
	return ref
}

func newReport(rng *rand.Rand, isin string, period int, ccy string) domain.Report {
	rep := domain.Report{
		Key: domain.ReportKey{
			CompilingOrg:       "DE2",
			Period:             period,
			Frequency:          "M",
			ISIN:               isin,
			HolderSector:       sectors[rng.Intn(len(sectors))],
			Source:             "BBK",
			HolderArea:         areas[rng.Intn(len(areas))],
			FunctionalCategory: "P",
			AmountType:         "LE",
			Valuation:          "M",
		},
		AccruedInterestForMarketValues: rng.Intn(2) == 0,
		EarlyRedemptions:               rng.Intn(20) == 0,
		NominalCurrency:                ccy,
		ReportingBasis:                 "T",
		Amount:                         decimal.New(int64(rng.Intn(10_000_000)), -2),
		UnitMeasure:                    "EUR",
	}
	if rng.Intn(10) == 0 {
		rep.ConfidentialityStatus = "C"
		rep.ConfidentialityAmount = decimal.NewNullDecimal(rep.Amount)
	}
	return rep
}

func joinColumns(cols []domain.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = string(c)
	}
	return strings.Join(names, domain.Delimiter)
}

func writeFile[T any](baseDir, name string, codec *ingestion.Codec[T], header string, records []T) {
	order, err := codec.Header(header)
	if err != nil {
		panic(err)
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	for i := range records {
		b.WriteString(codec.EncodeRow(&records[i], order))
		b.WriteByte('\n')
	}

	path := filepath.Join(baseDir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		panic(err)
	}
	fmt.Printf("Generated %d %s records -> %s\n", len(records), codec.Family(), name)
}

func findTestdataDir() string {
	for _, c := range []string{"testdata", "../testdata", "."} {
		if _, err := os.Stat(filepath.Join(c, "reports_sample.csv")); err == nil {
			return c
		}
	}
	return "testdata"
}
