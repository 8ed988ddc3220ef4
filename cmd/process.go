package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/etnz/payments"
	"github.com/etnz/payments/logging"
	"github.com/etnz/payments/renderer"
	"github.com/google/subcommands"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// processCmd holds the flags for the 'process' subcommand.
type processCmd struct {
	input    string
	output   string
	sort     bool
	pretty   bool
	summary  bool
	currency string
	logLevel string
	partial  bool
	paths    payments.Paths

	kafkaBrokers string
	kafkaTopic   string
	kafkaTimeout time.Duration
}

func (*processCmd) Name() string     { return "process" }
func (*processCmd) Synopsis() string { return "replay transactions and print the client balances" }
func (*processCmd) Usage() string {
	return `ptx process [flags] <file>

  Replays the transactions read from <file> ("-" for stdin) and prints the
  final balance of every client. Rejected transactions are skipped, see
  'ptx topic errors'.

`
}

func (c *processCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "input", "", "Input format: csv or jsonl. Defaults to the file extension, csv otherwise")
	f.StringVar(&c.output, "output", envOr(EnvFormat, string(payments.FormatCSV)), "Output format: csv, jsonl or markdown")
	f.BoolVar(&c.sort, "sort", false, "Sort the balances by client id")
	f.BoolVar(&c.pretty, "pretty", false, "Style the markdown output for a terminal")
	f.BoolVar(&c.summary, "summary", false, "Add the accepted, skipped and rejected counts to the markdown output")
	f.StringVar(&c.currency, "currency", envOr(EnvCurrency, ""), "Currency code used to display markdown amounts (e.g. USD)")
	f.StringVar(&c.logLevel, "log-level", envOr(EnvLogLevel, logging.DefaultLevel), "Diagnostics level on stderr: debug shows every rejected transaction")
	f.BoolVar(&c.partial, "partial-transfers", false, "Keep the first leg of a dispute or resolve when the second one overflows")

	f.StringVar(&c.paths.Type, "path-type", payments.DefaultPaths.Type, "JSONPath of the transaction type in jsonl input")
	f.StringVar(&c.paths.Client, "path-client", payments.DefaultPaths.Client, "JSONPath of the client id in jsonl input")
	f.StringVar(&c.paths.Tx, "path-tx", payments.DefaultPaths.Tx, "JSONPath of the transaction id in jsonl input")
	f.StringVar(&c.paths.Amount, "path-amount", payments.DefaultPaths.Amount, "JSONPath of the amount in jsonl input")

	f.StringVar(&c.kafkaBrokers, "kafka-brokers", envOr(EnvKafkaBrokers, ""), "Comma separated Kafka brokers to publish the balances to")
	f.StringVar(&c.kafkaTopic, "kafka-topic", envOr(EnvKafkaTopic, ""), "Kafka topic to publish the balances to")
	f.DurationVar(&c.kafkaTimeout, "kafka-timeout", 30*time.Second, "Maximum time spent publishing to Kafka")
}

func (c *processCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: process expects exactly one input file")
		return subcommands.ExitUsageError
	}

	runID := uuid.NewString()
	log, err := logging.New(c.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	log = log.With(zap.String("run_id", runID))
	defer log.Sync()

	var publisher *payments.Publisher
	if c.kafkaBrokers != "" && c.kafkaTopic != "" {
		publisher = payments.NewPublisher(strings.Split(c.kafkaBrokers, ","), c.kafkaTopic, runID)
		defer publisher.Close()
	}

	if err := c.run(ctx, f.Arg(0), os.Stdout, log, publisher); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// run replays the transactions of the named file and writes the balances to w.
// A nil publisher disables publishing.
func (c *processCmd) run(ctx context.Context, name string, w io.Writer, log *zap.Logger, publisher *payments.Publisher) error {
	output, err := payments.ParseFormat(c.output)
	if err != nil {
		return err
	}

	in, err := openInput(name)
	if err != nil {
		return err
	}
	defer in.Close()

	dec, err := c.decoder(name, in, log)
	if err != nil {
		return err
	}

	opts := []payments.Option{payments.WithLogger(log)}
	if c.partial {
		opts = append(opts, payments.WithPartialTransfers())
	}
	e := payments.NewEngine(opts...)
	if err := payments.Replay(e, dec); err != nil {
		return err
	}

	stats := e.Stats()
	log.Info("transactions replayed",
		zap.Int("accepted", stats.Accepted),
		zap.Int("skipped", dec.Skipped()),
		zap.Any("rejected", stats.Rejected),
	)

	var reports []payments.ClientReport
	if c.sort {
		reports = payments.SortedByClient(e.Report())
	} else {
		reports = slices.Collect(e.Report())
	}

	if err := c.write(w, output, reports, stats, dec.Skipped()); err != nil {
		return err
	}

	// the balances are printed even when the broker is unreachable.
	if publisher != nil {
		ctx, cancel := context.WithTimeout(ctx, c.kafkaTimeout)
		defer cancel()
		sent, err := publisher.Publish(ctx, slices.Values(reports))
		if err != nil {
			return err
		}
		log.Info("balances published", zap.String("topic", c.kafkaTopic), zap.Int("messages", sent))
	}
	return nil
}

// write prints the reports to w in the output format.
func (c *processCmd) write(w io.Writer, output payments.Format, reports []payments.ClientReport, stats payments.Stats, skipped int) error {
	switch output {
	case payments.FormatJSONL:
		return payments.EncodeJSONL(w, slices.Values(reports))
	case payments.FormatMarkdown:
		report := renderer.NewReport(reports, c.currency)
		if c.summary {
			report.WithStats(stats, skipped)
		}
		md := renderer.RenderReport(report)
		if c.pretty {
			var err error
			if md, err = renderMarkdown(md); err != nil {
				return fmt.Errorf("could not render markdown: %w", err)
			}
		}
		_, err := io.WriteString(w, md)
		return err
	default:
		return payments.EncodeCSV(w, slices.Values(reports))
	}
}

// decoder selects the input decoder from -input or the file extension.
func (c *processCmd) decoder(name string, r io.Reader, log *zap.Logger) (payments.Decoder, error) {
	format := c.input
	if format == "" {
		format = string(payments.FormatCSV)
		if ext := strings.TrimPrefix(filepath.Ext(name), "."); ext == string(payments.FormatJSONL) {
			format = ext
		}
	}
	switch f, err := payments.ParseFormat(format); {
	case err != nil:
		return nil, err
	case f == payments.FormatCSV:
		return payments.NewCSVDecoder(r, log), nil
	case f == payments.FormatJSONL:
		return payments.NewJSONLDecoder(r, c.paths, log), nil
	default:
		return nil, fmt.Errorf("%s is not an input format", f)
	}
}

// openInput opens the named file, "-" being stdin.
func openInput(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open input: %w", err)
	}
	return f, nil
}
