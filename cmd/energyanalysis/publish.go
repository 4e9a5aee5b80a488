package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/publisher"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/pkg/models"
)

var (
	publishCountry string
	publishAll     bool
	publishLimit   int
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish archived generation mixes to MQTT",
	Long: `Reads archived country summaries from the database and publishes each one as a
retained JSON message on <topic_prefix>/<zone>/generation_mix.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishCountry, "country", "", "Only publish this bidding zone")
	publishCmd.Flags().BoolVar(&publishAll, "all", false, "Force republish all runs (ignore published flag)")
	publishCmd.Flags().IntVar(&publishLimit, "limit", 0, "Limit number of runs to publish (0 = no limit)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	// Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Create publisher
	pub, err := publisher.New(cfg.MQTT, cfg.GetTopicPrefix())
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	// Open database
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	country := strings.ToUpper(publishCountry)
	var runs []models.MixSummary
	if publishAll {
		runs, err = db.ListRuns(country, 0)
	} else {
		runs, err = db.ListUnpublishedRuns(country)
	}
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println(noRunsMessage(publishAll, country))
		return nil
	}

	if publishLimit > 0 && len(runs) > publishLimit {
		runs = runs[:publishLimit]
		fmt.Printf("Limiting to %d runs (--limit flag)\n", publishLimit)
	}

	published := 0
	for i, r := range runs {
		fmt.Printf("[%d/%d] Publishing %s %s... ", i+1, len(runs), r.Country, r.End.Format("2006-01-02 15:04"))
		if err := pub.Publish(r); err != nil {
			fmt.Printf("FAILED: %v\n", err)
			continue
		}

		// Mark run as published in database
		if err := db.MarkPublished(r.ID); err != nil {
			fmt.Printf("✓ (warning: failed to mark as published: %v)\n", err)
		} else {
			fmt.Printf("✓\n")
		}
		published++
	}

	fmt.Printf("\nTotal runs published: %d/%d\n", published, len(runs))
	if published < len(runs) {
		return fmt.Errorf("%d of %d runs failed to publish", len(runs)-published, len(runs))
	}
	return nil
}

// noRunsMessage explains an empty selection for the chosen mode
func noRunsMessage(all bool, country string) string {
	kind := "unpublished runs"
	if all {
		kind = "archived runs"
	}
	if country != "" {
		return fmt.Sprintf("No %s found for %s", kind, country)
	}
	return fmt.Sprintf("No %s found", kind)
}
