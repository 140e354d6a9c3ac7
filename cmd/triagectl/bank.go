package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBankCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bank",
		Short: "List the opening questions in selection order with their gains",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := opts.engine(cmd)
			if err != nil {
				return err
			}
			s := engine.StartSession("")
			ranked := engine.Selector().Rank(s)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tID\tCATEGORIA\tPESO\tPRIOR\tGANHO")
			for i, r := range ranked {
				q := r.Question
				fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%.2f\t%.3f\n", i+1, q.ID, q.Category, q.Weight, q.Prior, r.Gain)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d perguntas elegíveis de %d (as demais dependem de respostas anteriores)\n",
				len(ranked), engine.Bank().Len())
			return nil
		},
	}
}
