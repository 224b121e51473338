package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nichecal/nichecal/internal/app"
	"github.com/nichecal/nichecal/internal/config"
	"github.com/nichecal/nichecal/internal/database"
	"github.com/nichecal/nichecal/pkg/calendar_date"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		logrusLevel, err := log.ParseLevel(level)
		if err != nil {
			log.Fatal(err)
		}
		log.SetLevel(logrusLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "nichecal",
		Short:        "Personalized calendar of dates filtered by niche",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config/application.yaml", "path to the configuration file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return database.Migrate(cfg.Database)
		},
	})

	var seedFile string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert calendar dates from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed(cmd.Context(), configPath, seedFile)
		},
	}
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "JSON array of calendar date rows")
	_ = seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	application, err := app.NewApplication(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return application.Run()
}

func seed(ctx context.Context, configPath string, seedFile string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	payload, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	var rows []calendar_date.Row
	if err := json.Unmarshal(payload, &rows); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(cfg.Database); err != nil {
		return err
	}

	repo := calendar_date.NewRepository(db, cfg.Calendar.Table, calendar_date.MatchMode(cfg.Calendar.Match))
	for _, row := range rows {
		if err := repo.StoreRow(ctx, row); err != nil {
			return err
		}
	}
	log.Infof("seeded %d calendar dates into %s", len(rows), cfg.Calendar.Table)
	return nil
}
