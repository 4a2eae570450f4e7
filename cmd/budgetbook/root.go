package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/budgetbook/budgetbook/internal/api"
	"github.com/budgetbook/budgetbook/internal/config"
	"github.com/budgetbook/budgetbook/internal/database"
	"github.com/budgetbook/budgetbook/internal/database/repository"
	"github.com/budgetbook/budgetbook/internal/logging"
	"github.com/budgetbook/budgetbook/internal/secrets"
	"github.com/budgetbook/budgetbook/internal/service"
)

// rootOptions lets tests swap the token store and output.
type rootOptions struct {
	tokens api.TokenStore
	out    io.Writer
}

// app is what every command runs against, built once per invocation.
type app struct {
	cfg    config.Config
	log    *zap.Logger
	out    io.Writer
	client *api.Client
	db     *sql.DB

	accounts    *service.AccountBook
	categories  *service.Categories
	ledger      *service.Ledger
	assistant   *service.Assistant
	dashboard   *service.Dashboard
	ingest      *service.IngestService
	maintenance *service.MaintenanceService

	expired bool
}

// execute runs args and releases what setup opened, whether or not the
// command failed. Cobra skips post-run hooks on error, so cleanup lives here.
func execute(ctx context.Context, a *app, opts rootOptions, args []string) error {
	defer a.close()
	root := newRootCmd(a, opts)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app, opts rootOptions) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "budgetbook",
		Short:         "Terminal client for the BudgetBook personal finance API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.out != nil {
				a.out = opts.out
			} else {
				a.out = cmd.OutOrStdout()
			}
			return a.setup(cmd, opts.tokens, logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(
		newLoginCmd(a), newSignupCmd(a), newLogoutCmd(a), newWhoamiCmd(a), newProfileCmd(a), newCheckEmailCmd(a),
		newAccountsCmd(a),
		newCategoriesCmd(a),
		newTxCmd(a),
		newStatsCmd(a),
		newCalendarCmd(a),
		newAICmd(a),
		newConfigCmd(a),
		newCacheCmd(a),
		newTUICmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, tokens api.TokenStore, logLevel string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	api.Location = cfg.Location()

	logOpts := logging.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON, File: cfg.Log.File}
	if logLevel != "" {
		logOpts.Level = logLevel
	}
	if cmd.Name() == "tui" && logOpts.File == "" {
		logOpts.File = filepath.Join(filepath.Dir(cfg.Cache.Path), "budgetbook.log")
	}
	if a.log, err = logging.New(logOpts); err != nil {
		return err
	}

	if tokens == nil {
		path, err := secrets.DefaultPath()
		if err != nil {
			return err
		}
		if tokens, err = secrets.NewFileStore(path); err != nil {
			return err
		}
	}

	a.client, err = api.New(api.Options{
		BaseURL:          cfg.API.BaseURL,
		Timeout:          cfg.API.Timeout,
		SecureConnection: cfg.API.SecureConnection,
		Tokens:           tokens,
		Logger:           a.log.Named("api"),
		OnSessionExpired: func() { a.expired = true },
	})
	if err != nil {
		return err
	}

	var (
		accountCache  *repository.AccountRepo
		categoryCache *repository.CategoryRepo
		txCache       *repository.TransactionRepo
		chatLog       *repository.ChatRepo
	)
	if cfg.Cache.Enabled {
		db, err := database.OpenMigrated(cfg.Cache.Path)
		if err != nil {
			// the snapshot is optional; run without it
			a.log.Warn("offline cache unavailable", zap.String("path", cfg.Cache.Path), zap.Error(err))
		} else {
			a.db = db
			accountCache = repository.NewAccountRepo(db)
			categoryCache = repository.NewCategoryRepo(db)
			txCache = repository.NewTransactionRepo(db)
			chatLog = repository.NewChatRepo(db)
			a.maintenance = &service.MaintenanceService{DB: db}
		}
	}

	svcLog := a.log.Named("service")
	loc := cfg.Location()
	a.accounts = &service.AccountBook{API: a.client.Accounts, Cache: accountCache, Log: svcLog}
	a.categories = &service.Categories{API: a.client.Categories, Cache: categoryCache, Log: svcLog}
	a.ledger = &service.Ledger{API: a.client.Transactions, Accounts: a.accounts, Cache: txCache, Log: svcLog, Location: loc}
	a.assistant = &service.Assistant{
		API:        a.client.AI,
		Accounts:   a.accounts,
		Categories: a.categories,
		Ledger:     a.ledger,
		ChatLog:    chatLog,
		Log:        svcLog,
		Location:   loc,
	}
	a.dashboard = &service.Dashboard{Stats: a.client.Statistics, Accounts: a.accounts, Ledger: a.ledger}
	a.ingest = &service.IngestService{Ledger: a.ledger, Categories: a.categories, Location: loc, Log: svcLog}
	return nil
}

func (a *app) close() {
	if a.expired && a.log != nil {
		a.log.Warn("session expired, stored tokens cleared")
	}
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// requireLogin fails fast when no access token is stored.
func (a *app) requireLogin() error {
	if !a.client.Auth.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

var errNotLoggedIn = errors.New("not logged in, run `budgetbook login`")

// describe turns an error into the line printed before exiting.
func describe(err error) string {
	var apiErr *api.Error
	var pf *service.ParseFailure
	switch {
	case errors.Is(err, api.ErrSessionExpired):
		return "session expired, run `budgetbook login`"
	case errors.As(err, &pf):
		return "could not read a transaction: " + pf.Message
	case errors.As(err, &apiErr):
		if apiErr.Message == "" {
			return apiErr.Error()
		}
		if apiErr.Code != "" {
			return fmt.Sprintf("%s (%s)", apiErr.Message, apiErr.Code)
		}
		return apiErr.Message
	}
	return err.Error()
}
