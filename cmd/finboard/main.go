package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"finboard/internal/bills"
	"finboard/internal/cli"
	"finboard/internal/config"
	"finboard/internal/log"
	"finboard/internal/notify"
	"finboard/internal/seed"
	"finboard/internal/services"
	"finboard/internal/views"
)

func main() {
	search := flag.String("search", "", "Filter transactions by name")
	category := flag.String("category", views.AllTransactions, "Filter transactions by category")
	sortKey := flag.String("sort", views.SortLatest, "Transaction sort order")
	page := flag.Int("page", 1, "Transactions page to show")
	showBills := flag.Bool("bills", false, "Print the recurring bills page")
	deposit := flag.String("deposit", "", "Add money to a pot (id:amount)")
	withdraw := flag.String("withdraw", "", "Take money out of a pot (id:amount)")
	create := flag.String("create", "", "Create a pot (name:target)")
	remove := flag.String("delete", "", "Delete a pot by id")
	add := flag.String("add", "", "Add a transaction (name|amount|category|date)")
	importSQLite := flag.String("import-sqlite", "", "Write the resulting dataset into the SQLite database at this path")
	flag.Parse()

	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	svc, err := newService(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to start", log.FieldError, err, log.FieldOperation, log.OpStartup)
		os.Exit(1)
	}

	runCtx, stopRun := context.WithCancel(ctx)
	runDone := make(chan error, 1)
	go func() { runDone <- svc.Run(runCtx) }()

	exitCode := 0
	if err := apply(svc, *deposit, *withdraw, *create, *remove, *add); err != nil {
		logger.Error("Command failed", log.FieldError, err)
		exitCode = 1
	}

	if exitCode == 0 {
		if err := report(svc, views.TransactionRequest{
			Search:   *search,
			Category: *category,
			Sort:     *sortKey,
			Page:     *page,
		}, *showBills); err != nil {
			logger.Error("Failed to build report", log.FieldError, err)
			exitCode = 1
		}
	}

	if exitCode == 0 && *importSQLite != "" {
		if err := seed.NewSQLiteSource(*importSQLite, logger).Import(ctx, svc.Store().Snapshot()); err != nil {
			logger.Error("SQLite import failed", log.FieldError, err, log.FieldPath, *importSQLite)
			exitCode = 1
		} else {
			logger.Info("Dataset imported into SQLite", log.FieldPath, *importSQLite)
		}
	}

	stopRun()
	if err := <-runDone; err != nil {
		logger.Error("Background work failed", log.FieldError, err)
	}
	if err := svc.Close(); err != nil {
		logger.Error("Shutdown error", log.FieldError, err, log.FieldOperation, log.OpShutdown)
	}
	cancel()
	os.Exit(exitCode)
}

func newService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*services.FinanceService, error) {
	policy, err := bills.GetPolicy(cfg.DueSoonPolicy, cfg.DueSoonDays)
	if err != nil {
		return nil, err
	}

	src, err := seed.Open(ctx, cfg.SeedConfig(), logger)
	if err != nil {
		return nil, err
	}

	opts := services.Options{
		PageSize:  cfg.PageSize,
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
		Policy:    policy,
		Logger:    logger,
	}

	if cfg.AMQPURL != "" {
		client, err := notify.Dial(ctx, notify.ClientConfig{
			URL:        cfg.AMQPURL,
			Exchange:   cfg.AMQPExchange,
			RoutingKey: cfg.AMQPRoutingKey,
			DialDelay:  500 * time.Millisecond,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to AMQP: %w", err)
		}
		opts.Publisher = client
	}

	svc, err := services.NewFinanceService(ctx, src, opts)
	if err != nil && opts.Publisher != nil {
		_ = opts.Publisher.Close()
	}
	return svc, err
}

// apply runs the requested changes in a fixed order and stops at the first
// failure.
func apply(svc *services.FinanceService, deposit, withdraw, create, remove, add string) error {
	if deposit != "" {
		m, err := parsePotMove(deposit)
		if err != nil {
			return err
		}
		if err := svc.Deposit(m.id, m.amount); err != nil {
			return fmt.Errorf("deposit: %w", err)
		}
	}
	if withdraw != "" {
		m, err := parsePotMove(withdraw)
		if err != nil {
			return err
		}
		if err := svc.Withdraw(m.id, m.amount); err != nil {
			return fmt.Errorf("withdraw: %w", err)
		}
	}
	if create != "" {
		name, target, err := parseNewPot(create)
		if err != nil {
			return err
		}
		if _, err := svc.CreatePot(name, target); err != nil {
			return fmt.Errorf("create pot: %w", err)
		}
	}
	if remove != "" {
		id, err := parsePotID(remove)
		if err != nil {
			return err
		}
		if err := svc.DeletePot(id); err != nil {
			return fmt.Errorf("delete pot: %w", err)
		}
	}
	if add != "" {
		if _, err := svc.AddTransaction(parseDraft(add)); err != nil {
			return fmt.Errorf("add transaction: %w", err)
		}
	}
	return nil
}

func report(svc *services.FinanceService, req views.TransactionRequest, withBills bool) error {
	txPage, err := svc.Transactions(req)
	if err != nil {
		return err
	}

	out := map[string]any{
		"overview":     svc.Overview(),
		"transactions": txPage,
	}
	if withBills {
		billsPage, err := svc.Bills(views.BillRequest{})
		if err != nil {
			return err
		}
		out["bills"] = billsPage
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
