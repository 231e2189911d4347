package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/shsdb/reconciler/internal/domain"
	"github.com/shsdb/reconciler/internal/ingestion"
)

type checkCmd struct {
	family string
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "validate a file offline and print its records as JSON lines" }
func (*checkCmd) Usage() string {
	return `shsdb check -family=csdb|reports <file>

  Decodes the file the way the ingestion pipeline would, without publishing
  anything. Use - to read standard input. Skipped rows are reported on
  standard error. Exits with status 1 when the file is rejected.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.family, "family", string(domain.FamilyReports), "File family: csdb or reports.")
}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "check: exactly one file is required")
		return subcommands.ExitUsageError
	}

	raw, err := readInput(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	switch domain.Family(c.family) {
	case domain.FamilyCSDB:
		err = checkFile(ingestion.References, raw, os.Stdout, os.Stderr)
	case domain.FamilyReports:
		err = checkFile(ingestion.Reports, raw, os.Stdout, os.Stderr)
	default:
		fmt.Fprintf(os.Stderr, "check: unknown family %q\n", c.family)
		return subcommands.ExitUsageError
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}

// checkFile decodes raw with codec and writes one JSON object per record to
// out. Skipped rows go to errOut.
func checkFile[T any](codec *ingestion.Codec[T], raw []byte, out, errOut io.Writer) error {
	res, err := codec.DecodeFile(raw)
	if err != nil {
		return fmt.Errorf("%s file rejected: %w", codec.Family(), err)
	}
	enc := json.NewEncoder(out)
	for i := range res.Records {
		if err := enc.Encode(&res.Records[i]); err != nil {
			return err
		}
	}
	for _, rowErr := range res.Skipped {
		fmt.Fprintf(errOut, "skipped: %v\n", rowErr)
	}
	fmt.Fprintf(errOut, "%d records, %d skipped\n", len(res.Records), len(res.Skipped))
	return nil
}
