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

package v1

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs every request as a structured entry. Query strings are not logged.
func RequestLogger(entry *logrus.Entry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			if err := next(ctx); err != nil {
				ctx.Error(err)
			}
			req := ctx.Request()
			res := ctx.Response()
			logEntry := entry.WithFields(logrus.Fields{
				"method":    req.Method,
				"path":      req.URL.Path,
				"status":    res.Status,
				"remote_ip": ctx.RealIP(),
				"latency":   time.Since(start).String(),
			})
			if res.Status >= 500 {
				logEntry.Error("request failed")
			} else {
				logEntry.Info("request handled")
			}
			return nil
		}
	}
}
