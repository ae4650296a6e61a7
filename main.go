package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/haguru/recordmigrator/config"
	"github.com/haguru/recordmigrator/internal/app"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// run executes the root command until it returns or a termination signal arrives.
func run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		routines   string
		logLevel   string
	)

	root := &cobra.Command{
		Use:          "recordmigrator",
		Short:        "Migrate users, products and sales from delimited files into the store",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return checkRoutines(config.ParseRoutineList(routines))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional
			_ = godotenv.Load()

			ctx := cmd.Context()
			migrator, err := app.NewApp(ctx, configPath, app.Options{
				Routines: config.ParseRoutineList(routines),
				LogLevel: logLevel,
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := migrator.Close(ctx); err != nil {
					migrator.Logger.Warn("Failed to close database connection", "error", err)
				}
			}()

			_, err = migrator.Run(ctx)
			return err
		},
	}

	root.Flags().StringVarP(&configPath, "config", "c", config.CONFIG_PATH, "path to the YAML configuration file")
	root.Flags().StringVar(&routines, "routines", "", "comma separated routines to run (users,products,sales); overrides the configured toggles")
	root.Flags().StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error); overrides loglevel")

	return root
}

func checkRoutines(routines []string) error {
	known := config.ListToMap([]string{config.EntityUsers, config.EntityProducts, config.EntitySales})
	for _, r := range routines {
		if !known[r] {
			return fmt.Errorf("unknown routine %q", r)
		}
	}
	return nil
}
