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
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuts-foundation/nuts-esign/configuration"
)

func TestServe(t *testing.T) {
	t.Run("stops when the context is done", func(t *testing.T) {
		server := echo.New()
		server.HideBanner = true
		server.HidePort = true
		server.GET("/ping", func(c echo.Context) error {
			return c.String(http.StatusOK, "pong")
		})
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		server.Listener = listener
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		go func() {
			done <- serve(ctx, server, listener.Addr().String())
		}()
		require.Eventually(t, func() bool {
			resp, err := http.Get("http://" + listener.Addr().String() + "/ping")
			if err != nil {
				return false
			}
			resp.Body.Close()
			return resp.StatusCode == http.StatusOK
		}, 2*time.Second, 10*time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	})

	t.Run("returns start errors", func(t *testing.T) {
		server := echo.New()
		server.HideBanner = true

		err := serve(context.Background(), server, "not-an-address")

		assert.Error(t, err)
	})
}

func TestSplitConfigFile(t *testing.T) {
	path, name := splitConfigFile("conf/esign.yaml")
	assert.Equal(t, "conf", path)
	assert.Equal(t, "esign", name)

	path, name = splitConfigFile("")
	assert.Empty(t, path)
	assert.Empty(t, name)
}

func TestLoadConfig(t *testing.T) {
	defer func() { *e.Config = configuration.DefaultConfiguration() }()

	require.NoError(t, loadConfig("../testdata/testconfig.yaml"))

	assert.Equal(t, "https://sign.example.com", e.Config.PublicURL)
	assert.Equal(t, configuration.BackendPostgres, e.Config.Store)
}
