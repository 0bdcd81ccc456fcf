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
	"bytes"
	"encoding/json"
	"errors"

	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

// ActorParams holds the identity of the administrator, set by the upstream authentication layer
type ActorParams struct {
	XActorId string
}

// CreateSessionResponse is returned after uploading a document
type CreateSessionResponse struct {
	SessionId string `json:"sessionId"`
}

// DefinePartiesRequest maps every role to the details of its party
type DefinePartiesRequest struct {
	Parties PartyEntries `json:"parties"`
}

// PartyEntry is a single member of the parties object
type PartyEntry struct {
	Role  string
	Party types.PartyInput
}

// PartyEntries holds the members of the parties object in document order. Repeated keys are kept.
type PartyEntries []PartyEntry

// UnmarshalJSON decodes the parties object member by member
func (p *PartyEntries) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if token == nil {
		*p = nil
		return nil
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return errors.New("parties must be an object")
	}
	var entries PartyEntries
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		key, ok := token.(string)
		if !ok {
			return errors.New("parties must be an object")
		}
		var input types.PartyInput
		if err := decoder.Decode(&input); err != nil {
			return err
		}
		entries = append(entries, PartyEntry{Role: key, Party: input})
	}
	if _, err := decoder.Token(); err != nil {
		return err
	}
	*p = entries
	return nil
}

// MarshalJSON encodes the entries as a JSON object
func (p PartyEntries) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBufferString("{")
	for i, entry := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Role)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(entry.Party)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// OkResponse acknowledges a state change
type OkResponse struct {
	Ok bool `json:"ok"`
}

// RequestOtpRequest names the party receiving a one-time code
type RequestOtpRequest struct {
	Role string `json:"role"`
}

// IndividualLinkResponse carries the magic link of the individual party
type IndividualLinkResponse struct {
	Url string `json:"url"`
}

// FinalizeResponse tells whether the session is completed
type FinalizeResponse struct {
	Completed bool `json:"completed"`
}

// SignRequest is submitted by a signing party
type SignRequest struct {
	Role    string  `json:"role"`
	Otp     string  `json:"otp"`
	Consent bool    `json:"consent"`
	Token   *string `json:"token,omitempty"`
}

// SignResponse reports the recorded signature. Completed is false when finalization is still pending.
type SignResponse struct {
	Ok        bool `json:"ok"`
	AllSigned bool `json:"allSigned"`
	Completed bool `json:"completed"`
}
