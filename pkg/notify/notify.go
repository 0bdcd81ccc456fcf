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

package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/cbroglie/mustache"

	"github.com/nuts-foundation/nuts-esign/logging"
	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

// Kind identifies the purpose of a message
type Kind string

const (
	// KindOTP carries a one-time code
	KindOTP Kind = "otp"
	// KindIndividualLink carries the magic link for the individual party
	KindIndividualLink Kind = "individual_link"
)

const (
	defaultOTPSubject  = "Your signing code"
	defaultOTPBody     = "Hello {{{name}}}, your code to sign session {{{session_id}}} as {{{role}}} is {{{code}}}. It expires in {{{ttl_minutes}}} minutes."
	defaultLinkSubject = "Your signing invitation"
	defaultLinkBody    = "Hello {{{name}}}, open {{{url}}} to sign session {{{session_id}}}. The link expires in {{{ttl_minutes}}} minutes."
)

// Contact is the recipient of a message
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// ContactOf returns the contact details of a party
func ContactOf(party types.Party) Contact {
	return Contact{Name: party.Name, Email: party.Email, Phone: party.Phone}
}

// Message is a rendered notification
type Message struct {
	Kind      Kind            `json:"kind"`
	SessionID types.SessionID `json:"sessionId"`
	Role      types.Role      `json:"role"`
	Subject   string          `json:"subject"`
	Body      string          `json:"body"`
}

// Notifier delivers messages to parties. Message bodies contain secrets and must not be persisted.
type Notifier interface {
	Deliver(ctx context.Context, to Contact, msg Message) error
}

// Compiler check
var _ Notifier = (*LogNotifier)(nil)

// LogNotifier writes messages to the log, bodies are only visible on debug level
type LogNotifier struct{}

// Deliver logs the message
func (LogNotifier) Deliver(_ context.Context, to Contact, msg Message) error {
	entry := logging.Log().WithField("session", msg.SessionID).WithField("role", msg.Role).WithField("kind", msg.Kind)
	entry.Infof("notification for %s", to.Email)
	entry.Debugf("notification body: %s", msg.Body)
	return nil
}

// RenderOTP builds the message carrying a one-time code
func RenderOTP(party types.Party, code string, ttl time.Duration) (Message, error) {
	return render(KindOTP, party, defaultOTPSubject, defaultOTPBody, map[string]interface{}{"code": code}, ttl)
}

// RenderIndividualLink builds the message carrying a magic link
func RenderIndividualLink(party types.Party, url string, ttl time.Duration) (Message, error) {
	return render(KindIndividualLink, party, defaultLinkSubject, defaultLinkBody, map[string]interface{}{"url": url}, ttl)
}

func render(kind Kind, party types.Party, subject, template string, values map[string]interface{}, ttl time.Duration) (Message, error) {
	values["name"] = party.Name
	values["role"] = string(party.Role)
	values["session_id"] = string(party.SessionID)
	values["ttl_minutes"] = int(ttl.Minutes())
	body, err := mustache.Render(template, values)
	if err != nil {
		return Message{}, fmt.Errorf("could not render %s message: %w", kind, err)
	}
	return Message{
		Kind:      kind,
		SessionID: party.SessionID,
		Role:      party.Role,
		Subject:   subject,
		Body:      body,
	}, nil
}
