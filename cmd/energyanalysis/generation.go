package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/chart"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/database"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/entsoe"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/generation"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/logger"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/metrics"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/pkg/models"
)

var (
	genCountries  []string
	genWindowDays int
	genResolution time.Duration
	genOutputDir  string
	genArchive    bool
)

var generationCmd = &cobra.Command{
	Use:   "generation",
	Short: "Chart the generation mix of each bidding zone",
	Long: `Finds the most recent published generation data for each configured bidding zone,
analyzes the window before it and saves a stacked area chart per country.

With --archive (or an explicit --db) each country summary and its aligned series are
stored in the SQLite archive for later listing and publishing.

Available zones: ` + strings.Join(entsoe.AreaCodes(), ", "),
	RunE: runGeneration,
}

func init() {
	generationCmd.Flags().StringSliceVar(&genCountries, "countries", nil, "Bidding zone codes (default from config: FR,DE_LU,IT,ES)")
	generationCmd.Flags().IntVar(&genWindowDays, "window-days", 0, "Days of data before the latest published point (default from config: 10)")
	generationCmd.Flags().DurationVar(&genResolution, "resolution", 0, "Resample to this interval, e.g. 1h (default: coarsest native resolution)")
	generationCmd.Flags().StringVar(&genOutputDir, "output-dir", "", "Chart directory (default from config: images)")
	generationCmd.Flags().BoolVar(&genArchive, "archive", false, "Store results in the archive database")
	rootCmd.AddCommand(generationCmd)
}

func runGeneration(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Generation analysis started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))
	started := time.Now()
	ctx := cmd.Context()

	// Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	apiKey, err := cfg.RequireAPIKey()
	if err != nil {
		return err
	}
	loc, err := cfg.GetLocation()
	if err != nil {
		return err
	}

	codes := genCountries
	if len(codes) == 0 {
		codes = cfg.GetCountries()
	}
	areas := make([]entsoe.Area, 0, len(codes))
	for _, code := range codes {
		area, err := entsoe.LookupArea(code)
		if err != nil {
			return err
		}
		areas = append(areas, area)
	}

	window := cfg.GetWindow()
	if genWindowDays > 0 {
		window = time.Duration(genWindowDays) * 24 * time.Hour
	}
	resolution := cfg.Generation.Resolution
	if genResolution > 0 {
		resolution = genResolution
	}
	outDir := cfg.GetOutputDir()
	if genOutputDir != "" {
		outDir = genOutputDir
	}

	client := entsoe.NewClient(cfg.GetBaseURL(), apiKey, entsoe.NewHTTPClient(cfg.GetTimeout()))
	analyzer := generation.NewAnalyzer(client, generation.Options{
		Lookback:   cfg.GetLookback(),
		Window:     window,
		Resolution: resolution,
		Location:   loc,
	})
	width, height, dpi := cfg.GetChartSize()
	renderer := chart.NewRenderer(width, height, dpi, loc)
	recorder := metrics.NewRecorder()

	var db *database.DB
	if genArchive || cmd.Flags().Changed("db") {
		db, err = openDB()
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
	}
	runID := database.NewRunID()

	failed := 0
	for i, area := range areas {
		if ctx.Err() != nil {
			failed += len(areas) - i
			break
		}

		fmt.Printf("\n[%d/%d] Processing %s...\n", i+1, len(areas), area.Name)
		if err := processArea(ctx, analyzer, renderer, db, recorder, runID, outDir, area); err != nil {
			logger.Errorf(ctx, "skipping %s: %v", area.Name, err)
			recorder.CountryFailed(area.Code)
			failed++
		}
	}

	recorder.RunFinished("generation", started, failed == 0)
	if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		logger.Warnf(ctx, "%v", err)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d countries failed", failed, len(areas))
	}
	fmt.Printf("\n=== Generation analysis finished in %s ===\n", time.Since(started).Round(time.Second))
	return nil
}

// processArea analyzes one zone, saves its chart and archives the summary when db is set
func processArea(ctx context.Context, analyzer *generation.Analyzer, renderer *chart.Renderer, db *database.DB,
	recorder *metrics.Recorder, runID, outDir string, area entsoe.Area) error {
	analysis, err := analyzer.Analyze(ctx, area)
	if err != nil {
		return err
	}

	printMix(area, analysis)

	path, err := renderer.Save(outDir, area.Name, analysis.Frame)
	if err != nil {
		return fmt.Errorf("saving chart: %w", err)
	}
	fmt.Printf("Saved chart to %s\n", path)

	if db != nil {
		summary := models.MixSummary{
			RunID:       runID,
			Country:     area.Code,
			CountryName: area.Name,
			Start:       analysis.Start,
			End:         analysis.End,
			Resolution:  analysis.Frame.Resolution,
			Shares:      analysis.MeanShares,
			Stats:       analysis.Stats,
		}
		if err := db.SaveRun(&summary, analysis.Frame.Records()); err != nil {
			return fmt.Errorf("archiving run: %w", err)
		}
	}

	recorder.CountryAnalyzed(area.Code, analysis.Records, analysis.Frame.Clamped)
	return nil
}

func printMix(area entsoe.Area, a *generation.Analysis) {
	fmt.Printf("\n%s Generation Mix:\n", area.Name)
	fmt.Println("----------------------------------------")
	for _, e := range generation.RankShares(a.MeanShares) {
		fmt.Printf("%-20s  %8.2f %%\n", e.Source, e.Share*100)
	}
	fmt.Println("----------------------------------------")

	s := a.Stats
	fmt.Printf("Window:     %s to %s (%s steps)\n",
		a.Start.Format("2006-01-02 15:04"), a.End.Format("2006-01-02 15:04"), a.Frame.Resolution)
	fmt.Printf("Average:    %.0f MW\n", s.AvgPowerMW)
	fmt.Printf("Peak:       %.0f MW at %s\n", s.MaxPowerMW, s.PeakTime.Format("2006-01-02 15:04"))
	fmt.Printf("Trough:     %.0f MW at %s\n", s.MinPowerMW, s.TroughTime.Format("2006-01-02 15:04"))
	fmt.Printf("Volatility: %.2f %% (daily means)\n", s.DailyVolatilityPct)
}
