/*
 * Nuts esign
 * Copyright (C) 2020. Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/nuts-foundation/nuts-esign/engine"
	"github.com/nuts-foundation/nuts-esign/logging"
)

// shutdownTimeout bounds the draining of in-flight requests
const shutdownTimeout = 10 * time.Second

// serveCmd represents the server command
var serveCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the signing server",
	Long:  `Run the signing server. It stops on SIGINT or SIGTERM after in-flight requests completed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := e.Configure(); err != nil {
			return err
		}
		defer e.Sign.Shutdown()

		server, err := engine.NewServer(e.Sign)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, server, e.Config.Address)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// serve runs the server until the context is done and then shuts it down gracefully
func serve(ctx context.Context, server *echo.Echo, address string) error {
	errs := make(chan error, 1)
	go func() {
		logging.Log().Infof("starting server on %s", address)
		errs <- server.Start(address)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	logging.Log().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
