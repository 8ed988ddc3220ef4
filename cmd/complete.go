package cmd

import (
	"github.com/etnz/payments/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the command line for shell completion.
func Completion() *complete.Command {
	topics, _ := docs.AllTopics()
	formats := predict.Set{"csv", "jsonl", "markdown"}

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"env-file": predict.Files("*"),
		},
		Sub: map[string]*complete.Command{
			"process": {
				Flags: map[string]complete.Predictor{
					"input":             predict.Set{"csv", "jsonl"},
					"output":            formats,
					"sort":              predict.Nothing,
					"pretty":            predict.Nothing,
					"summary":           predict.Nothing,
					"currency":          predict.Set{"USD", "EUR", "GBP", "JPY", "CHF"},
					"log-level":         predict.Set{"debug", "info", "warn", "error"},
					"partial-transfers": predict.Nothing,
					"path-type":         predict.Something,
					"path-client":       predict.Something,
					"path-tx":           predict.Something,
					"path-amount":       predict.Something,
					"kafka-brokers":     predict.Something,
					"kafka-topic":       predict.Something,
					"kafka-timeout":     predict.Something,
				},
				Args: predict.Or(predict.Files("*.csv"), predict.Files("*.jsonl")),
			},
			"topic": {
				Flags: map[string]complete.Predictor{"raw": predict.Nothing},
				Args:  predict.Set(append(topics, "readme")),
			},
			"help":     {Args: predict.Set{"process", "topic", "help", "flags", "commands"}},
			"flags":    {Args: predict.Set{"process", "topic"}},
			"commands": {},
		},
	}
}
