package main

import (
	"os"

	"github.com/spf13/cobra"

	"planpay/internal/interfaces/cli/migrate"
	"planpay/internal/interfaces/cli/server"
	"planpay/internal/interfaces/cli/sweep"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "planpay",
		Short: "PlanPay - recurring billing engine",
		Long:  `PlanPay runs recurring health-plan billing: the admin API, schema migrations, and one-shot billing sweeps.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		sweep.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
