package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go2web/internal/cli"
	"go2web/internal/config"
	"go2web/internal/logger"
)

var (
	version = "0.1.0"
)

func main() {
	var (
		urlFlag    string
		searchFlag string
		openFlag   int
		clearFlag  bool
	)

	rootCmd := &cobra.Command{
		Use:   "go2web",
		Short: "go2web - fetch web pages and search the web from your terminal",
		Long: `go2web fetches web content over its own HTTP/1.1 client built on raw
sockets and searches the web, caching search results locally.

Examples:
  go2web -u https://example.com        fetch a page as readable text
  go2web -s "rust tutorial"            search and list the top results
  go2web -s "rust tutorial" -n 3       open the 3rd search result
  go2web --clear-cache                 drop all cached search results`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if openFlag > 0 && searchFlag == "" {
				return fmt.Errorf("-n requires -s: there is no search to pick a result from")
			}
			if urlFlag == "" && searchFlag == "" && !clearFlag {
				return cmd.Help()
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := initLogger(cfg); err != nil {
				return err
			}
			defer logger.Close()

			app := cli.New(cfg)

			if clearFlag {
				if err := app.ClearCache(); err != nil {
					return err
				}
			}
			if urlFlag != "" {
				if err := app.FetchURL(urlFlag); err != nil {
					return err
				}
			}
			if searchFlag != "" {
				if openFlag > 0 {
					return app.Open(searchFlag, openFlag)
				}
				return app.Search(searchFlag)
			}
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&urlFlag, "url", "u", "", "URL to fetch")
	rootCmd.Flags().StringVarP(&searchFlag, "search", "s", "", "search term")
	rootCmd.Flags().IntVarP(&openFlag, "open", "n", 0, "open the nth result of the search (with -s)")
	rootCmd.Flags().BoolVar(&clearFlag, "clear-cache", false, "remove all cached search results")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			fmt.Println(cfg.String())

			path, _ := config.ConfigPath()
			fmt.Printf("\nConfig file path: %s\n", path)
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("go2web v%s\n", version)
		},
	}

	interactiveCmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start the interactive shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := initLogger(cfg); err != nil {
				return err
			}
			defer logger.Close()

			cli.New(cfg).RunInteractive()
			return nil
		},
	}

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(interactiveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		os.Exit(1)
	}
}

func initLogger(cfg *config.Config) error {
	err := logger.Init(logger.Config{
		LogDir:     cfg.Log.Dir,
		Level:      logger.ParseLevel(cfg.Log.Level),
		MaxDays:    cfg.Log.MaxDays,
		ConsoleOut: cfg.Log.ConsoleOut,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}
