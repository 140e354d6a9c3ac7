// Command triagectl runs the dengue triage engine from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dengue-triage/internal/questionbank"
	"dengue-triage/internal/triage"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	orange = color.New(color.FgHiRed).SprintFunc()
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

type options struct {
	bankPath            string
	confidenceThreshold float64
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "triagectl",
		Short:        "Adaptive dengue triage from the command line",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.bankPath, "bank", "", "question bank YAML (default: embedded dengue bank)")
	root.PersistentFlags().Float64Var(&opts.confidenceThreshold, "confidence", 0, "override the confidence threshold")

	root.AddCommand(newAskCommand(opts), newEvalCommand(opts), newBankCommand(opts))
	return root
}

func (o *options) engine(cmd *cobra.Command) (*triage.Engine, error) {
	bank, cfg, err := questionbank.LoadFile(o.bankPath)
	if err != nil {
		return nil, err
	}
	if f := cmd.Flag("confidence"); f != nil && f.Changed {
		cfg.ConfidenceThreshold = o.confidenceThreshold
	}
	engine, err := triage.NewEngine(bank, cfg)
	if err != nil {
		return nil, fmt.Errorf("configure engine: %w", err)
	}
	return engine, nil
}

// paint colours a classification by its triage colour.
func paint(c triage.Classification) string {
	switch c {
	case triage.ClassCritico:
		return red(string(c))
	case triage.ClassAlto:
		return orange(string(c))
	case triage.ClassMedio:
		return yellow(string(c))
	}
	return green(string(c))
}
