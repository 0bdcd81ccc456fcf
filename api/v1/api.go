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
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nuts-foundation/nuts-esign/logging"
	"github.com/nuts-foundation/nuts-esign/pkg"
	"github.com/nuts-foundation/nuts-esign/pkg/session"
	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

// Wrapper bridges the api types and http logic to the internal types and logic.
// It checks required parameters and message body, converts them to internal types and passes them to the SigningClient.
// Errors are translated to http status codes. It does not perform any business logic.
type Wrapper struct {
	Client pkg.SigningClient
}

// Compiler check
var _ ServerInterface = (*Wrapper)(nil)

const documentField = "document"
const scheduleField = "scheduleId"

// CreateSession reads the multipart document upload and opens a session for it
func (api *Wrapper) CreateSession(ctx echo.Context, params ActorParams) error {
	fileHeader, err := ctx.FormFile(documentField)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Missing form file '%s'", documentField))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Could not read form file: %s", err))
	}
	defer file.Close()
	document, err := io.ReadAll(file)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Could not read form file: %s", err))
	}

	request := session.CreateRequest{
		Document:  document,
		CreatedBy: params.XActorId,
		Meta:      requestMeta(ctx),
	}
	if scheduleRef := strings.TrimSpace(ctx.FormValue(scheduleField)); scheduleRef != "" {
		request.ScheduleRef = &scheduleRef
	}

	created, err := api.Client.Create(ctx.Request().Context(), request)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(http.StatusCreated, CreateSessionResponse{SessionId: string(created.ID)})
}

// DefineParties replaces the roster of the session
func (api *Wrapper) DefineParties(ctx echo.Context, id string, _ ActorParams) error {
	request := new(DefinePartiesRequest)
	if err := ctx.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Could not parse request body: %s", err))
	}
	roster := types.Roster{}
	for _, entry := range request.Parties {
		role, err := types.ParseRole(entry.Role)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if _, duplicate := roster[role]; duplicate {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("duplicate role: %s", role))
		}
		roster[role] = entry.Party
	}

	if _, err := api.Client.DefineParties(ctx.Request().Context(), types.SessionID(id), roster, requestMeta(ctx)); err != nil {
		return httpError(err)
	}
	return ctx.JSON(http.StatusOK, OkResponse{Ok: true})
}

// RequestOtp sends a one-time code to the party with the requested role
func (api *Wrapper) RequestOtp(ctx echo.Context, id string, _ ActorParams) error {
	request := new(RequestOtpRequest)
	if err := ctx.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Could not parse request body: %s", err))
	}
	role, err := types.ParseRole(request.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := api.Client.RequestOTP(ctx.Request().Context(), types.SessionID(id), role, requestMeta(ctx)); err != nil {
		return httpError(err)
	}
	return ctx.JSON(http.StatusOK, OkResponse{Ok: true})
}

// IssueIndividualLink issues a magic link for the individual party and returns its url
func (api *Wrapper) IssueIndividualLink(ctx echo.Context, id string, _ ActorParams) error {
	url, err := api.Client.IssueIndividualLink(ctx.Request().Context(), types.SessionID(id), requestMeta(ctx))
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(http.StatusOK, IndividualLinkResponse{Url: url})
}

// FinalizeSession retries the finalization of a fully signed session
func (api *Wrapper) FinalizeSession(ctx echo.Context, id string, _ ActorParams) error {
	finalized, err := api.Client.Finalize(ctx.Request().Context(), types.SessionID(id))
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(http.StatusOK, FinalizeResponse{Completed: finalized.Completed})
}

// GetSessionStatus returns the signing state of every party
func (api *Wrapper) GetSessionStatus(ctx echo.Context, id string, _ ActorParams) error {
	status, err := api.Client.Status(ctx.Request().Context(), types.SessionID(id))
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(http.StatusOK, status)
}

// GetSessionEvidence returns the ordered evidence ledger
func (api *Wrapper) GetSessionEvidence(ctx echo.Context, id string, _ ActorParams) error {
	report, err := api.Client.Evidence(ctx.Request().Context(), types.SessionID(id))
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(http.StatusOK, report)
}

// DownloadDocument returns the final sealed document
func (api *Wrapper) DownloadDocument(ctx echo.Context, id string, _ ActorParams) error {
	document, err := api.Client.DownloadFinal(ctx.Request().Context(), types.SessionID(id))
	if err != nil {
		return httpError(err)
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=\"signed-%s.pdf\"", id))
	return ctx.Blob(http.StatusOK, "application/pdf", document)
}

// SignSession verifies the credentials of a party and records its signature.
// When the signature is recorded but finalization fails, the response still reports the signature: finalization is
// retried by an administrator.
func (api *Wrapper) SignSession(ctx echo.Context, id string) error {
	request := new(SignRequest)
	if err := ctx.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Could not parse request body: %s", err))
	}
	signRequest := session.SignRequest{
		SessionID: types.SessionID(id),
		// unknown roles are rejected like a wrong code
		Role:    types.Role(strings.ToUpper(strings.TrimSpace(request.Role))),
		OTP:     request.Otp,
		Consent: request.Consent,
		Meta:    requestMeta(ctx),
	}
	if request.Token != nil {
		signRequest.LinkToken = *request.Token
	}

	result, err := api.Client.VerifyAndSign(ctx.Request().Context(), signRequest)
	if err != nil && (result == nil || !result.Signed) {
		return httpError(err)
	}
	if err != nil {
		logging.Log().WithError(err).WithField("session", id).Warn("signature recorded, finalization pending")
	}
	return ctx.JSON(http.StatusOK, SignResponse{Ok: result.Signed, AllSigned: result.AllSigned, Completed: result.Completed})
}

func requestMeta(ctx echo.Context) types.RequestMeta {
	return types.RequestMeta{
		IP:        ctx.RealIP(),
		UserAgent: ctx.Request().UserAgent(),
	}
}

// httpError maps error kinds to status codes. Server side failures are logged and not exposed.
func httpError(err error) error {
	switch {
	case errors.Is(err, session.ErrInvalidRoster),
		errors.Is(err, session.ErrInvalidDocument),
		errors.Is(err, session.ErrConsentRequired):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrInvalidOrExpiredOtp):
		return echo.NewHTTPError(http.StatusForbidden, session.ErrInvalidOrExpiredOtp.Error())
	case errors.Is(err, session.ErrInvalidOrExpiredLink):
		return echo.NewHTTPError(http.StatusForbidden, session.ErrInvalidOrExpiredLink.Error())
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrUnknownParty):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrSessionCompleted),
		errors.Is(err, session.ErrAlreadySigned),
		errors.Is(err, session.ErrSignaturesPending),
		errors.Is(err, session.ErrNotCompleted):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	logging.Log().WithError(err).Error("request failed")
	switch {
	case errors.Is(err, session.ErrFinalizationFailed):
		return echo.NewHTTPError(http.StatusInternalServerError, session.ErrFinalizationFailed.Error())
	case errors.Is(err, session.ErrStamping):
		return echo.NewHTTPError(http.StatusInternalServerError, session.ErrStamping.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, session.ErrStorage.Error())
}
