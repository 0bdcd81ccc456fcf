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
	"fmt"
	"net/http"

	"github.com/deepmap/oapi-codegen/pkg/runtime"
	"github.com/labstack/echo/v4"
)

// ActorHeader carries the administrator identity
const ActorHeader = "X-Actor-Id"

const (
	internalPrefix = "/internal/esign/v1/sessions"
	publicPrefix   = "/public/esign/v1/sessions"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Upload a document and open a signing session
	// (POST /internal/esign/v1/sessions)
	CreateSession(ctx echo.Context, params ActorParams) error
	// Define or replace the parties of a session
	// (PUT /internal/esign/v1/sessions/{id}/parties)
	DefineParties(ctx echo.Context, id string, params ActorParams) error
	// Send a one-time code to a party
	// (POST /internal/esign/v1/sessions/{id}/otp)
	RequestOtp(ctx echo.Context, id string, params ActorParams) error
	// Issue the magic link of the individual party
	// (POST /internal/esign/v1/sessions/{id}/individual-link)
	IssueIndividualLink(ctx echo.Context, id string, params ActorParams) error
	// Retry the finalization of a fully signed session
	// (POST /internal/esign/v1/sessions/{id}/finalize)
	FinalizeSession(ctx echo.Context, id string, params ActorParams) error
	// (GET /internal/esign/v1/sessions/{id}/status)
	GetSessionStatus(ctx echo.Context, id string, params ActorParams) error
	// (GET /internal/esign/v1/sessions/{id}/evidence)
	GetSessionEvidence(ctx echo.Context, id string, params ActorParams) error
	// Download the final sealed document
	// (GET /internal/esign/v1/sessions/{id}/document)
	DownloadDocument(ctx echo.Context, id string, params ActorParams) error
	// Verify the credentials of a party and record its signature
	// (POST /public/esign/v1/sessions/{id}/sign)
	SignSession(ctx echo.Context, id string) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

type adminHandler func(ctx echo.Context, id string, params ActorParams) error

func (w *ServerInterfaceWrapper) bindID(ctx echo.Context) (string, error) {
	var id string
	if err := runtime.BindStyledParameter("simple", false, "id", ctx.Param("id"), &id); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
	}
	return id, nil
}

func (w *ServerInterfaceWrapper) bindActor(ctx echo.Context) (ActorParams, error) {
	var params ActorParams
	valueList, found := ctx.Request().Header[http.CanonicalHeaderKey(ActorHeader)]
	if !found {
		return params, echo.NewHTTPError(http.StatusUnauthorized, fmt.Sprintf("Header parameter %s is required, but not found", ActorHeader))
	}
	if n := len(valueList); n != 1 {
		return params, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Expected one value for %s, got %d", ActorHeader, n))
	}
	if err := runtime.BindStyledParameter("simple", false, ActorHeader, valueList[0], &params.XActorId); err != nil {
		return params, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", ActorHeader, err))
	}
	if params.XActorId == "" {
		return params, echo.NewHTTPError(http.StatusUnauthorized, fmt.Sprintf("Header parameter %s must not be empty", ActorHeader))
	}
	return params, nil
}

func (w *ServerInterfaceWrapper) admin(handler adminHandler) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := w.bindID(ctx)
		if err != nil {
			return err
		}
		params, err := w.bindActor(ctx)
		if err != nil {
			return err
		}
		return handler(ctx, id, params)
	}
}

// CreateSession converts echo context to params.
func (w *ServerInterfaceWrapper) CreateSession(ctx echo.Context) error {
	params, err := w.bindActor(ctx)
	if err != nil {
		return err
	}
	return w.Handler.CreateSession(ctx, params)
}

// SignSession converts echo context to params.
func (w *ServerInterfaceWrapper) SignSession(ctx echo.Context) error {
	id, err := w.bindID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.SignSession(ctx, id)
}

// EchoRouter is the subset of echo.Echo and echo.Group used to register the handlers
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.POST(internalPrefix, wrapper.CreateSession)
	router.PUT(internalPrefix+"/:id/parties", wrapper.admin(si.DefineParties))
	router.POST(internalPrefix+"/:id/otp", wrapper.admin(si.RequestOtp))
	router.POST(internalPrefix+"/:id/individual-link", wrapper.admin(si.IssueIndividualLink))
	router.POST(internalPrefix+"/:id/finalize", wrapper.admin(si.FinalizeSession))
	router.GET(internalPrefix+"/:id/status", wrapper.admin(si.GetSessionStatus))
	router.GET(internalPrefix+"/:id/evidence", wrapper.admin(si.GetSessionEvidence))
	router.GET(internalPrefix+"/:id/document", wrapper.admin(si.DownloadDocument))
	router.POST(publicPrefix+"/:id/sign", wrapper.SignSession)
}
