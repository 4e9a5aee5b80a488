package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/config"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/database"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/logger"
)

var (
	cfgFile  string
	dbPath   string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "energyanalysis",
	Short: "Analyze European power generation and map renewable plants",
	Long: `EnergyAnalysis fetches actual generation per production type from the ENTSO-E
Transparency Platform, charts the generation mix of each configured bidding zone and
renders an interactive map of wind and solar plants from the Global Power Plant Database.

The API security token is read from the ENTSOE_API_KEY environment variable (or .env).`,
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "archive database file (default is ./energyanalysis.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// getDBPath returns the database file path (local directory)
func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return "energyanalysis.db"
}

// loadConfig loads the configuration file and sets up logging
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, err
	}

	level := cfg.GetLogLevel()
	if logLevel != "" {
		level = logLevel
	}
	if err := logger.Init(level, cfg.Log.Format); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	return cfg, nil
}

// openDB opens the database connection
func openDB() (*database.DB, error) {
	path := getDBPath()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	return database.New(path)
}
