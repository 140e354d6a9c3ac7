package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"dengue-triage/internal/evaluation"
)

func newEvalCommand(opts *options) *cobra.Command {
	var (
		goldenPath string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Replay the golden set and report accuracy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := opts.engine(cmd)
			if err != nil {
				return err
			}
			set, err := evaluation.LoadGoldenSet(goldenPath)
			if err != nil {
				return err
			}
			rep, err := evaluation.NewRunner(engine).Run(cmd.Context(), set)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			printReport(cmd.OutOrStdout(), rep)
			return nil
		},
	}
	cmd.Flags().StringVar(&goldenPath, "golden", "", "golden set YAML (default: embedded cases)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printReport(out io.Writer, rep evaluation.Report) {
	for _, c := range rep.Cases {
		mark := green("ok")
		if !c.Correct {
			mark = red("xx")
		}
		fmt.Fprintf(out, "%s %-8s esperado %-8s obtido %-8s perguntas %2d confiança %.2f %s\n",
			mark, c.CaseID, c.Expected, paint(c.Got), c.QuestionsAsked, c.Confidence, gray(string(c.Reason)))
	}
	fmt.Fprintf(out, "\n%s %d/%d (%.0f%%)\n", bold("Acurácia:"), rep.Correct, rep.Total, rep.Accuracy*100)
	fmt.Fprintf(out, "Média de perguntas: %.1f\n", rep.MeanQuestions)
	fmt.Fprintf(out, "Abstenções: %d\n", rep.Abstentions)
	if rep.EmergenciesExpected > 0 {
		fmt.Fprintf(out, "Emergências detectadas: %d/%d\n", rep.Emergencies, rep.EmergenciesExpected)
	}
}
