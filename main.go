package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fxpgr/go-crypto-cart/api"
	"github.com/fxpgr/go-crypto-cart/cart"
	"github.com/fxpgr/go-crypto-cart/config"
	"github.com/fxpgr/go-crypto-cart/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return err
	}
	for _, w := range cfg.Warnings {
		logger.Get().Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	prompter := cart.NewPrompter(os.Stdin, os.Stdout)
	exchangeID, err := cart.ResolveExchangeID(prompter, cfg.ExchangeID)
	if err != nil {
		return err
	}
	creds, err := cart.ResolveCredentials(prompter, cfg, exchangeID)
	if err != nil {
		return err
	}

	opts := []api.Option{api.WithTimeout(cfg.HTTPTimeout)}
	if u, ok := cfg.BaseURLs[exchangeID]; ok {
		opts = append(opts, api.WithBaseURL(u))
	}
	ex, err := api.NewExchange(exchangeID, creds, opts...)
	if err != nil {
		return err
	}
	logger.Get().Debugw("exchange ready", "exchange", ex.ID(), "credentials", creds)

	return cart.NewBot(ex, prompter).Checkout(ctx)
}
