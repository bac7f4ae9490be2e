// =============================================================================
// Clarity to CSV - Contests Command
// =============================================================================
//
// This file defines the 'contests' command, which lists the contests in a
// detail report so a contest key can be picked for 'export'.
//
// COMMAND USAGE:
//   clarity contests <detail.xml> [--choice-key K]
//
// With --choice-key only contests containing that choice are listed, which
// shows why an export by choice key alone is ambiguous.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/clarity-to-csv/internal/clarity"
	"github.com/ginjaninja78/clarity-to-csv/internal/converter"
	"github.com/ginjaninja78/clarity-to-csv/internal/numeric"
)

var contestsChoiceKey string

var contestsCmd = &cobra.Command{
	Use:   "contests <detail.xml>",
	Short: "List the contests in a detail report",
	Args:  withUsage(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := clarity.ParseFile(args[0])
		if err != nil {
			return err
		}

		contests := doc.Contests
		if contestsChoiceKey != "" {
			contests = nil
			for _, contest := range clarity.ContestsWithChoice(doc, contestsChoiceKey) {
				contests = append(contests, *contest)
			}
			if len(contests) == 0 {
				return &clarity.LocateError{
					Kind:     clarity.KindNotFound,
					Selector: clarity.Selector{ChoiceKey: contestsChoiceKey},
				}
			}
		}

		out := cmd.OutOrStdout()
		if doc.ElectionName != "" {
			fmt.Fprintf(out, "%s (%s)\n", doc.ElectionName, doc.ElectionDate)
		}
		fmt.Fprintln(out, renderTable(contestHeaders, contestRows(contests)))
		return nil
	},
}

var contestHeaders = []string{"Key", "Contest", "Choices", "Vote Types", "Precincts", "Votes"}

// contestRows summarizes each contest. Precincts counts the distinct
// precincts with results; Votes sums every choice's reported total.
func contestRows(contests []clarity.Contest) [][]string {
	rows := make([][]string, 0, len(contests))
	for i := range contests {
		contest := &contests[i]
		voteTypes := converter.CollectVoteTypes(contest.Choices)
		agg := converter.Aggregate(contest.Choices, &numeric.Tally{})

		votes := 0
		for _, choice := range contest.Choices {
			votes += numeric.Int(choice.TotalVotes)
		}

		rows = append(rows, []string{
			contest.Key,
			contest.DisplayName(),
			count(len(contest.Choices)),
			count(len(voteTypes)),
			count(agg.Len()),
			count(votes),
		})
	}
	return rows
}

func init() {
	rootCmd.AddCommand(contestsCmd)
	contestsCmd.Flags().StringVar(&contestsChoiceKey, "choice-key", "", "Only list contests containing this choice")
}
