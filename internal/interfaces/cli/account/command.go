// Package account holds the administrative account commands.
package account

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/usecases"
	vo "github.com/Mordecai-Wambua/User-Auth/internal/domain/account/valueobjects"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/auth"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/config"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/database"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/repository"
	"github.com/Mordecai-Wambua/User-Auth/internal/interfaces/cli/appenv"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/db"
)

var (
	opts      appenv.Options
	email     string
	firstName string
	lastName  string
	seedPath  string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account administration",
	}

	cmd.PersistentFlags().StringVarP(&opts.Env, "env", "e", "", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigDir, "config-dir", "c", "", "Directory holding config.yaml (default: ./configs)")

	cmd.AddCommand(
		newCreateSuperuserCommand(),
		newSeedCommand(),
	)

	return cmd
}

func newCreateSuperuserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an active staff superuser",
		Long:  `Create an active, verified superuser. Missing values are prompted for; the password is read without echo.`,
		RunE:  runCreateSuperuser,
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")

	return cmd
}

func newSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load accounts from a yaml file",
		Long:  `Create the accounts listed under "accounts:" in a yaml file. Existing emails are skipped.`,
		RunE:  runSeed,
	}

	cmd.Flags().StringVarP(&seedPath, "file", "f", "", "Seed file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runCreateSuperuser(cmd *cobra.Command, args []string) error {
	cfg, log, err := appenv.LoadWithDatabase(opts)
	if err != nil {
		return err
	}
	defer database.Close()

	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())
	for _, field := range []struct {
		prompt string
		value  *string
	}{
		{"Email", &email},
		{"First name", &firstName},
		{"Last name", &lastName},
	} {
		if *field.value != "" {
			continue
		}
		if *field.value, err = promptLine(reader, out, field.prompt); err != nil {
			return err
		}
	}

	password := os.Getenv("USERAUTH_SUPERUSER_PASSWORD")
	if password == "" {
		if password, err = promptPassword(out); err != nil {
			return err
		}
	}

	repo := repository.NewAccountRepository(database.Get(), log)
	uc := usecases.NewCreateSuperuserUseCase(repo, hasher(cfg), policy(cfg), log)

	acct, err := uc.Execute(cmd.Context(), usecases.CreateSuperuserCommand{
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Superuser %s created (%s)\n", acct.Email().String(), acct.SID())
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	f, err := os.Open(seedPath)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	seeds, err := parseSeedFile(f)
	if err != nil {
		return err
	}

	cfg, log, err := appenv.LoadWithDatabase(opts)
	if err != nil {
		return err
	}
	defer database.Close()

	gdb := database.Get()
	uc := usecases.NewSeedAccountsUseCase(
		repository.NewAccountRepository(gdb, log),
		hasher(cfg),
		policy(cfg),
		db.NewTransactionManager(gdb),
		log,
	)

	result, err := uc.Execute(cmd.Context(), seeds)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %d account(s), skipped %d existing\n", len(result.Created), len(result.Skipped))
	for _, e := range result.Skipped {
		fmt.Fprintf(out, "  skipped %s\n", e)
	}
	return nil
}

func hasher(cfg *config.Config) *auth.BcryptPasswordHasher {
	return auth.NewBcryptPasswordHasher(cfg.Auth.Password.BcryptCost)
}

func policy(cfg *config.Config) *vo.PasswordPolicy {
	return vo.NewPasswordPolicy(cfg.Auth.Password.MinLength, cfg.Auth.Password.MaxSimilarity)
}
