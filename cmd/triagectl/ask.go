package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"dengue-triage/internal/agent"
	"dengue-triage/internal/triage"
)

func newAskCommand(opts *options) *cobra.Command {
	var patient string
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Run an interactive triage questionnaire",
		Long:  "Asks one question at a time. Answer sim/não, a number, an option name or its number, or ? when unknown.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := opts.engine(cmd)
			if err != nil {
				return err
			}
			return ask(engine, patient, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&patient, "patient", "", "patient reference recorded with the session")
	return cmd
}

func ask(engine *triage.Engine, patient string, in io.Reader, out io.Writer) error {
	s := engine.StartSession(patient)
	scanner := bufio.NewScanner(in)

	for q := engine.NextQuestion(s); q != nil; q = engine.NextQuestion(s) {
		fmt.Fprintf(out, "\n%s %s\n", cyan(fmt.Sprintf("[%d]", s.Len()+1)), bold(q.Text))
		if hint := answerHint(q); hint != "" {
			fmt.Fprintln(out, gray(hint))
		}
		fmt.Fprint(out, "> ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return errors.New("input ended before the triage finished")
		}

		v, err := triage.ParseAnswer(q, scanner.Text())
		if err == nil {
			_, err = engine.SubmitAnswer(s, q.ID, v)
		}
		if err != nil {
			fmt.Fprintln(out, red(err.Error()))
			continue
		}
		fmt.Fprintf(out, "%s score %.1f, confiança %.2f\n",
			gray("->"), s.Score(), s.Confidence())
	}

	res, err := engine.Result(s)
	if err != nil {
		return err
	}
	printResult(out, res, engine.Assess(res))
	return nil
}

func answerHint(q *triage.Question) string {
	var parts []string
	if q.Help != "" {
		parts = append(parts, q.Help)
	}
	switch q.AnswerType {
	case triage.AnswerBoolean:
		parts = append(parts, "sim/não")
	case triage.AnswerNumeric:
		if q.Unit != "" {
			parts = append(parts, q.Unit)
		}
	case triage.AnswerEnumerated:
		opts := make([]string, len(q.Options))
		for i, o := range q.Options {
			opts[i] = fmt.Sprintf("%d) %s", i+1, o.Value)
		}
		parts = append(parts, strings.Join(opts, "  "))
	}
	if q.AllowUnknown {
		parts = append(parts, "? se não souber")
	}
	return strings.Join(parts, " | ")
}

func printResult(out io.Writer, res triage.FinalResult, abstain triage.Abstain) {
	fmt.Fprintf(out, "\n%s %s (%s)\n", bold("Classificação:"), paint(res.Classification), res.Color)
	fmt.Fprintf(out, "Score %.1f | confiança %.2f | %d perguntas | encerramento: %s\n",
		res.Score, res.Confidence, len(res.Answers), res.Reason)
	if res.Emergency {
		fmt.Fprintln(out, red("SINAL DE GRAVIDADE - encaminhar imediatamente"))
	}
	if len(res.CriticalSigns) > 0 {
		fmt.Fprintf(out, "Sinais críticos: %s\n", strings.Join(res.CriticalSigns, ", "))
	}
	fmt.Fprintf(out, "%s %s\n", bold("Conduta:"), agent.LocalRecommendation(res))
	if abstain.Abstain {
		fmt.Fprintln(out, yellow("Avaliação presencial recomendada:"))
		for _, r := range abstain.Reasons {
			fmt.Fprintf(out, "  - %s\n", r)
		}
	}
}
