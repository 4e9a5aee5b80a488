package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/browser"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/logger"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/mapview"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/metrics"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/plants"
)

var (
	mapDatabase string
	mapOutput   string
	mapPreview  bool
	mapVisible  bool
)

var plantmapCmd = &cobra.Command{
	Use:   "plantmap",
	Short: "Render an interactive map of wind and solar plants",
	Long: `Loads the Global Power Plant Database CSV, keeps the wind and solar plants of the
configured countries and writes a self-contained Leaflet map with one toggleable
marker cluster per country and technology.

With --preview the map is also opened in headless Chrome and saved as a PNG screenshot.`,
	RunE: runPlantmap,
}

func init() {
	plantmapCmd.Flags().StringVar(&mapDatabase, "database", "", "Plant database CSV (default from config: global_power_plant_database.csv)")
	plantmapCmd.Flags().StringVar(&mapOutput, "output", "", "HTML output file (default from config: renewable_plants_map.html)")
	plantmapCmd.Flags().BoolVar(&mapPreview, "preview", false, "Save a PNG screenshot of the map next to it")
	plantmapCmd.Flags().BoolVar(&mapVisible, "visible", false, "Show browser window while taking the preview (for debugging)")
	rootCmd.AddCommand(plantmapCmd)
}

func runPlantmap(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Plant map started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))
	started := time.Now()
	ctx := cmd.Context()

	// Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dbFile := cfg.GetPlantDatabase()
	if mapDatabase != "" {
		dbFile = mapDatabase
	}
	output := cfg.GetMapOutput()
	if mapOutput != "" {
		output = mapOutput
	}
	countries := cfg.GetPlantCountries()
	technologies := cfg.GetPlantTechnologies()

	logger.Infof(ctx, "loading plants from %s", dbFile)
	loaded, err := plants.LoadFile(dbFile)
	if err != nil {
		return err
	}
	if loaded.Skipped > 0 {
		logger.Warnf(ctx, "skipped %d rows with invalid capacity or coordinates", loaded.Skipped)
	}

	selected := plants.Filter{Countries: countries, Technologies: technologies}.Apply(loaded.Plants)
	fmt.Printf("Found %d renewable plants in selected countries (of %d rows)\n", len(selected), len(loaded.Plants))

	recorder := metrics.NewRecorder()
	for _, g := range plants.Summarize(selected, countries, technologies) {
		fmt.Printf("  %s\n", g)
		recorder.PlantsMapped(g.Country, g.Technology, g.Count)
	}

	lat, lon, zoom := cfg.GetMapView()
	m := mapview.Map{
		Title:        "Renewable Power Plants",
		Center:       [2]float64{lat, lon},
		Zoom:         zoom,
		Countries:    countries,
		Technologies: technologies,
		Plants:       selected,
	}
	if err := mapview.Save(output, m); err != nil {
		return err
	}
	fmt.Printf("Map saved to %s\n", output)

	if mapPreview {
		previewer := browser.NewPreviewer()
		previewer.Visible = mapVisible
		shot := browser.PreviewPath(output)
		if err := previewer.Screenshot(ctx, output, shot); err != nil {
			return fmt.Errorf("taking preview: %w", err)
		}
		fmt.Printf("Preview saved to %s\n", shot)
	}

	recorder.RunFinished("plantmap", started, true)
	if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		logger.Warnf(ctx, "%v", err)
	}
	return nil
}
