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

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels of Metrics.Finalizations
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the collectors of the signing engine
type Metrics struct {
	registry            *prometheus.Registry
	SessionsCreated     prometheus.Counter
	Signatures          *prometheus.CounterVec
	Finalizations       *prometheus.CounterVec
	AuthFailures        *prometheus.CounterVec
	NotificationsFailed prometheus.Counter
}

// New creates the collectors and registers them on a dedicated registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "esign",
			Name:      "sessions_created_total",
			Help:      "Number of signing sessions created.",
		}),
		Signatures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esign",
			Name:      "signatures_total",
			Help:      "Number of recorded signatures by role.",
		}, []string{"role"}),
		Finalizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esign",
			Name:      "finalizations_total",
			Help:      "Number of finalization attempts by result.",
		}, []string{"result"}),
		AuthFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esign",
			Name:      "auth_failures_total",
			Help:      "Number of rejected signing attempts by reason.",
		}, []string{"reason"}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "esign",
			Name:      "notifications_failed_total",
			Help:      "Number of notifications that could not be delivered.",
		}),
	}
	m.registry.MustRegister(m.SessionsCreated, m.Signatures, m.Finalizations, m.AuthFailures, m.NotificationsFailed)
	return m
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
