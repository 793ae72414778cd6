package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Mordecai-Wambua/User-Auth/internal/interfaces/cli/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/interfaces/cli/migrate"
	"github.com/Mordecai-Wambua/User-Auth/internal/interfaces/cli/server"
)

// @title						User Auth API
// @version					1.0
// @description				Email/password and OAuth account service issuing JWT access and refresh tokens.
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	rootCmd := &cobra.Command{
		Use:          "userauth",
		Short:        "User Auth - accounts, sessions and social login",
		Long:         `userauth serves the account API and ships the migration and account administration tools.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		account.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
