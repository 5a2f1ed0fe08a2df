// Command sorso-add is the external quick-add trigger (voice shortcut,
// automation). It writes straight through the key-value store rather than
// the running server; the tracker reconciles on its next rollover check.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"sorso/internal/cli"
	"sorso/internal/core"
	"sorso/internal/storage"
)

func main() {
	amount := flag.Int("amount", 0, "amount to add, in milliliters")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	if *amount <= 0 {
		fmt.Fprintln(os.Stderr, "usage: sorso-add -amount <ml>")
		os.Exit(2)
	}

	cfg := cli.LoadAndValidateConfig(logger)
	store := cli.InitStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	ctx := context.Background()

	// The entry list write is best-effort: if it fails the running total
	// is still bumped, and the list simply misses this entry.
	var entries []core.DrinkEntry
	if _, err := store.GetJSON(ctx, storage.KeyDrinkEntries, &entries); err != nil {
		logger.Warn("Failed to load drink entries", "error", err)
		entries = nil
	}
	entries = append(entries, core.NewDrinkEntry(*amount, time.Now()))
	if err := store.SetJSON(ctx, storage.KeyDrinkEntries, entries); err != nil {
		logger.Warn("Failed to save drink entries", "error", err)
	}

	current, err := store.GetInt(ctx, storage.KeyCurrentAmount, 0)
	if err != nil {
		logger.Warn("Failed to load current amount", "error", err)
	}
	if err := store.SetInt(ctx, storage.KeyCurrentAmount, current+*amount); err != nil {
		logger.Error("Failed to save current amount", "error", err)
		os.Exit(1)
	}

	logger.Info("Drink added", "amount_ml", *amount, "total_ml", current+*amount)
}
