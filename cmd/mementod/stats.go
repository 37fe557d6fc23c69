package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print summary statistics about stored memories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRepoStore()
		if err != nil {
			return err
		}
		defer s.Close()

		st, err := s.Stats(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("%s items total (%s active, %s archived)\n",
			humanize.Comma(int64(st.TotalCount)),
			humanize.Comma(int64(st.ActiveCount)),
			humanize.Comma(int64(st.ArchivedCount)),
		)

		printCounts("by kind", st.ByKind)
		printCounts("by scope", st.ByScope)
		return nil
	},
}

func printCounts(label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("%s:\n", label)
	for _, k := range keys {
		fmt.Printf("  %s: %s\n", k, humanize.Comma(int64(counts[k])))
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
