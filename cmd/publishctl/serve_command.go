package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-publish"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin API and run the periodic sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withModule(func(module *publish.Module) error {
				return runServer(cmd.Context(), module, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to http.addr)")
	return cmd
}

func runServer(cmdCtx context.Context, module *publish.Module, addr string) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	container := module.Container()
	logger := container.Logger()
	if strings.TrimSpace(addr) == "" {
		addr = container.Config.HTTP.Addr
	}

	handler, err := module.Handler()
	if err != nil {
		return fmt.Errorf("build admin api: %w", err)
	}

	for _, sub := range container.SubscribeCommands() {
		defer sub.Unsubscribe()
	}

	if err := module.Start(signalCtx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http.listen", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	case <-signalCtx.Done():
	}

	logger.Info("http.shutdown")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}
