package cmd

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// writeFile writes content into a new file of the test temp dir.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// newProcessCmd returns a processCmd with the flag defaults set.
func newProcessCmd(t *testing.T, args ...string) *processCmd {
	t.Helper()
	c := &processCmd{}
	f := flag.NewFlagSet("process", flag.ContinueOnError)
	c.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return c
}

const transactionsCSV = `type, client, tx, amount
deposit, 2, 1, 2.0
deposit, 1, 2, 1.12345678
deposit, 1, 3, nope
withdrawal, 2, 4, 5
dispute, 2, 1
`

func TestProcessCSV(t *testing.T) {
	input := writeFile(t, "tx.csv", transactionsCSV)
	c := newProcessCmd(t, "-sort")

	var out bytes.Buffer
	require.NoError(t, c.run(context.Background(), input, &out, zap.NewNop(), nil))

	want := `client,available,held,total,locked
1,1.1235,0,1.1235,false
2,0.0,2.0,2.0,false
`
	assert.Equal(t, want, out.String())
}

func TestProcessPrintsBeforePublishing(t *testing.T) {
	input := writeFile(t, "tx.csv", transactionsCSV)
	c := newProcessCmd(t, "-sort", "-kafka-timeout", "2s")
	publisher := payments.NewPublisher([]string{"127.0.0.1:1"}, "balances", "run")
	defer publisher.Close()

	var out bytes.Buffer
	err := c.run(context.Background(), input, &out, zap.NewNop(), publisher)
	require.Error(t, err, "nothing listens on the broker address")

	want := `client,available,held,total,locked
1,1.1235,0,1.1235,false
2,0.0,2.0,2.0,false
`
	assert.Equal(t, want, out.String())
}

func TestProcessJSONL(t *testing.T) {
	input := writeFile(t, "tx.jsonl", `{"kind":"deposit","client":1,"tx":1,"amount":"3"}
{"kind":"withdrawal","client":1,"tx":2,"amount":1.5}
`)
	c := newProcessCmd(t, "-output", "jsonl", "-path-type", "$.kind")

	var out bytes.Buffer
	require.NoError(t, c.run(context.Background(), input, &out, zap.NewNop(), nil))
	assert.Equal(t, `{"client":1,"available":1.5,"held":0,"total":1.5,"locked":false}`+"\n", out.String())
}

func TestProcessMarkdown(t *testing.T) {
	input := writeFile(t, "tx.csv", transactionsCSV)
	c := newProcessCmd(t, "-output", "markdown", "-currency", "USD", "-summary", "-sort")

	var out bytes.Buffer
	require.NoError(t, c.run(context.Background(), input, &out, zap.NewNop(), nil))

	md := out.String()
	assert.Contains(t, md, "| 1 | $1.1235 | $0.0000 | $1.1235 | no |")
	assert.Contains(t, md, "| 2 | $0.0000 | $2.0000 | $2.0000 | no |")
	assert.Contains(t, md, "* Accepted: 3")
	assert.Contains(t, md, "* Skipped: 1")
	assert.Contains(t, md, "* INSUFFICIENT_FUNDS: 1")
}

func TestProcessLogsRejections(t *testing.T) {
	input := writeFile(t, "tx.csv", transactionsCSV)
	c := newProcessCmd(t)

	core, logs := observer.New(zapcore.DebugLevel)
	var out bytes.Buffer
	require.NoError(t, c.run(context.Background(), input, &out, zap.New(core), nil))

	assert.Equal(t, 1, logs.FilterMessage("failed to parse record").Len())
	rejected := logs.FilterMessage("failed to process transaction").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, "INSUFFICIENT_FUNDS", rejected[0].ContextMap()["reason"])

	replayed := logs.FilterMessage("transactions replayed").All()
	require.Len(t, replayed, 1)
	assert.EqualValues(t, 3, replayed[0].ContextMap()["accepted"])
}

func TestProcessErrors(t *testing.T) {
	input := writeFile(t, "tx.csv", transactionsCSV)

	testCases := []struct {
		name string
		args []string
		file string
	}{
		{name: "missing file", file: filepath.Join(t.TempDir(), "missing.csv")},
		{name: "unknown output", args: []string{"-output", "xml"}, file: input},
		{name: "unknown input", args: []string{"-input", "xml"}, file: input},
		{name: "markdown input", args: []string{"-input", "markdown"}, file: input},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newProcessCmd(t, tc.args...)
			var out bytes.Buffer
			assert.Error(t, c.run(context.Background(), tc.file, &out, zap.NewNop(), nil))
		})
	}
}

func TestProcessDecoderSelection(t *testing.T) {
	c := newProcessCmd(t)
	dec, err := c.decoder("a.jsonl", bytes.NewReader(nil), zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &payments.JSONLDecoder{}, dec)

	dec, err = c.decoder("a.txt", bytes.NewReader(nil), zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &payments.CSVDecoder{}, dec)

	c.input = "jsonl"
	dec, err = c.decoder("a.csv", bytes.NewReader(nil), zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &payments.JSONLDecoder{}, dec)
}

func TestProcessEnvDefaults(t *testing.T) {
	t.Setenv(EnvFormat, "jsonl")
	t.Setenv(EnvCurrency, "EUR")
	c := newProcessCmd(t)
	assert.Equal(t, "jsonl", c.output)
	assert.Equal(t, "EUR", c.currency)

	// flags win over the environment.
	c = newProcessCmd(t, "-output", "csv")
	assert.Equal(t, "csv", c.output)
}
