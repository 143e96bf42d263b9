package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tablette/catalog/internal/config"
	"tablette/catalog/internal/container"
	"tablette/catalog/internal/domain"
	"tablette/catalog/internal/handler"
	"tablette/catalog/internal/service"
)

var (
	configPath string

	listQuery service.ListQuery
	listScope string
)

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Merchandising catalog query API",
	Long: `catalog serves the merchandising catalog read from the ERP replica
(or the ERP gateway) as a filtered, paginated JSON API.

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <reference>",
	Short: "Print one catalog item as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd.Context(), func(ctx context.Context, app *container.Container) error {
			record, err := app.Service.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(projector(app).Record(*record))
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one catalog page as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := domain.ParseScope(listScope)
		if err != nil {
			return err
		}
		listQuery.Scope = scope

		return withContainer(cmd.Context(), func(ctx context.Context, app *container.Container) error {
			page, err := app.Service.List(ctx, listQuery)
			if err != nil {
				return err
			}
			return printJSON(projector(app).Page(page))
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config.yaml)")

	listCmd.Flags().StringVarP(&listQuery.Term, "query", "q", "", "free-text filter on name or reference")
	listCmd.Flags().StringVar(&listQuery.Category, "category", "", "top-level category code")
	listCmd.Flags().StringVar(&listQuery.SubCategory, "sub-category", "", "sub-category code (needs --category)")
	listCmd.Flags().StringVar(&listScope, "scope", "", "include (true) or exclude (false) the extended population")
	listCmd.Flags().IntVar(&listQuery.Page, "page", 1, "page number")
	listCmd.Flags().IntVar(&listQuery.PageSize, "page-size", service.DefaultPageSize, "page size")

	rootCmd.AddCommand(serveCmd, lookupCmd, listCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Errorf("Command failed: %v", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	log.Info("Starting catalog API...")

	return withContainer(ctx, func(ctx context.Context, app *container.Container) error {
		if err := app.Run(ctx); err != nil {
			return fmt.Errorf("application exited with error: %w", err)
		}
		log.Info("Application finished successfully")
		return nil
	})
}

func withContainer(ctx context.Context, fn func(context.Context, *container.Container) error) error {
	// Load configuration using viper
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Info("Configuration loaded successfully")

	// Initialize container with all dependencies
	app, err := container.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer app.Close()

	return fn(ctx, app)
}

func projector(app *container.Container) handler.Projector {
	return handler.Projector{ImageURLPattern: app.Config.Catalog.ImageURLPattern}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
