package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/generation"
)

var (
	listCountry string
	listLimit   int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived generation runs",
	Long:  `Displays archived country summaries from the database, newest first.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listCountry, "country", "", "Filter by bidding zone code (e.g. DE_LU)")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum number of runs to show (0 = no limit)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	// Open database
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	country := strings.ToUpper(listCountry)
	runs, err := db.ListRuns(country, listLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	if len(runs) == 0 {
		if country != "" {
			fmt.Printf("No runs found for %s\n", country)
		} else {
			fmt.Println("No runs found")
		}
		return nil
	}

	fmt.Println("------------------------------------------------------------------------------")
	fmt.Printf("%-14s  %-7s  %-23s  %10s  %-24s\n", "Archived", "Zone", "Window", "Avg MW", "Top source")
	fmt.Println("------------------------------------------------------------------------------")

	for _, r := range runs {
		top := "-"
		if ranked := generation.RankShares(r.Shares); len(ranked) > 0 {
			top = fmt.Sprintf("%s (%.1f%%)", ranked[0].Source, ranked[0].Share*100)
		}
		fmt.Printf("%-14s  %-7s  %-23s  %10s  %-24s\n",
			humanize.Time(r.CreatedAt),
			r.Country,
			r.Start.Format("01-02 15:04")+" - "+r.End.Format("01-02 15:04"),
			humanize.Commaf(float64(int64(r.Stats.AvgPowerMW))),
			top,
		)
	}

	fmt.Println("------------------------------------------------------------------------------")
	fmt.Printf("%d runs\n", len(runs))
	return nil
}
