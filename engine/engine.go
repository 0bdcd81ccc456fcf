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

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	v1 "github.com/nuts-foundation/nuts-esign/api/v1"
	"github.com/nuts-foundation/nuts-esign/configuration"
	"github.com/nuts-foundation/nuts-esign/logging"
	"github.com/nuts-foundation/nuts-esign/pkg"
	"github.com/nuts-foundation/nuts-esign/pkg/seal"
	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

// MetricsPath is where the prometheus collectors are exposed
const MetricsPath = "/metrics"

// Engine bundles the commands and configuration of the signing engine
type Engine struct {
	Cmd       *cobra.Command
	Config    *configuration.EsignConfiguration
	Configure func() error
	FlagSet   *pflag.FlagSet
	Name      string
	Sign      *pkg.Sign
}

// NewSignEngine creates and returns a new Engine around the Sign instance.
func NewSignEngine() *Engine {
	signBackend := pkg.SignInstance()

	return &Engine{
		Cmd:       cmd(signBackend),
		Config:    &signBackend.Config,
		Configure: signBackend.Configure,
		FlagSet:   flagSet(),
		Name:      "Esign",
		Sign:      signBackend,
	}
}

// NewServer creates the echo server with the api routes and the metrics endpoint. The engine must be configured.
func NewServer(sign *pkg.Sign) (*echo.Echo, error) {
	if sign.Service == nil {
		return nil, fmt.Errorf("signing engine is not configured")
	}
	server := echo.New()
	server.HideBanner = true
	server.Use(v1.RequestLogger(logging.Log()))
	server.Use(middleware.Recover())
	server.Use(middleware.BodyLimit(bodyLimit(sign.Config.MaxDocumentSize)))

	v1.RegisterHandlers(server, &v1.Wrapper{Client: sign})
	server.GET(MetricsPath, echo.WrapHandler(sign.Service.Metrics.Handler()))
	return server, nil
}

// bodyLimit leaves room for the multipart envelope around the largest accepted document
func bodyLimit(maxDocumentSize int64) string {
	return fmt.Sprintf("%dK", maxDocumentSize/1024+1024)
}

func cmd(sign *pkg.Sign) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "esign",
		Short: "multi-party document signing",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "digest [file]",
		Short: "Print the SHA-256 digest of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			digest, err := seal.DigestFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), digest)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "individual-link [session-id]",
		Short: "Issue a magic link to the individual party and print it as URL and QR code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sign.Configure(); err != nil {
				return err
			}
			defer sign.Shutdown()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			link, err := sign.IssueIndividualLink(ctx, types.SessionID(args[0]), types.RequestMeta{UserAgent: "esign-cli"})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), link)
			qrterminal.GenerateHalfBlock(link, qrterminal.L, cmd.OutOrStdout())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "verify-seal [jws]",
		Short: "Verify a seal with the configured secret and print its payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sign.Configure(); err != nil {
				return err
			}
			defer sign.Shutdown()

			payload, err := sign.VerifySeal(args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	})

	return cmd
}

func flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("esign", pflag.ContinueOnError)
	defaults := configuration.DefaultConfiguration()

	flags.String(configuration.ConfAddress, defaults.Address, "Interface and port for http server to bind to")
	flags.String(configuration.ConfPublicURL, defaults.PublicURL, "Public base URL used in magic links")
	flags.String(configuration.ConfLinkTemplate, defaults.LinkTemplate, "Mustache template of the magic link URL")
	flags.String(configuration.ConfSealSecret, "", "Secret of at least 32 characters for sealing documents and hashing codes")
	flags.Duration(configuration.ConfOTPTTL, defaults.OTPTTL, "Lifetime of one-time codes")
	flags.Duration(configuration.ConfLinkTTL, defaults.LinkTTL, "Lifetime of magic links")
	flags.StringSlice(configuration.ConfRequiredRoles, defaults.RequiredRoles, "Roles every session roster must have")
	flags.Int64(configuration.ConfMaxDocumentSize, defaults.MaxDocumentSize, "Maximum size of uploaded documents in bytes")
	flags.Int(configuration.ConfStampPage, defaults.Stamp.Page, "Zero based page receiving the stamps, -1 for the last page")
	flags.Int(configuration.ConfStampFontSize, defaults.Stamp.FontSize, "Font size of the stamps")
	flags.String(configuration.ConfStampTimezone, defaults.Stamp.Timezone, "Timezone of stamp and evidence local timestamps")
	flags.String(configuration.ConfStampLocale, defaults.Stamp.Locale, "Locale of month and day names on stamps")
	flags.String(configuration.ConfStore, defaults.Store, "Session store: memory or postgres")
	flags.String(configuration.ConfPostgresDSN, "", "Postgres connection string, required for the postgres store")
	flags.String(configuration.ConfBlobDir, "", "Directory for documents. If not set, documents are kept in memory.")
	flags.String(configuration.ConfLock, defaults.Lock, "Session lock: memory or redis")
	flags.Duration(configuration.ConfLockTTL, defaults.LockTTL, "Expiry of a redis session lock")
	flags.String(configuration.ConfRedisAddress, "", "Redis address, required for the redis lock")
	flags.String(configuration.ConfRedisPassword, "", "Redis password")
	flags.Int(configuration.ConfRedisDB, 0, "Redis database")
	flags.String(configuration.ConfNotifier, defaults.Notifier, "Notification channel: log or webhook")
	flags.String(configuration.ConfWebhookURL, "", "Endpoint receiving notifications")
	flags.String(configuration.ConfWebhookSecret, "", "Secret for signing webhook requests")
	flags.Duration(configuration.ConfWebhookTimeout, defaults.Webhook.Timeout, "Timeout of a single webhook request")

	return flags
}

