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

package token

import (
	"net/url"
	"strings"

	"github.com/cbroglie/mustache"
)

// DefaultLinkTemplate renders the URL handed to the individual party
const DefaultLinkTemplate = "{{{base_url}}}/signing/invite/{{{token}}}?sid={{{session_id}}}"

// ComposeLink renders the magic link URL from a mustache template. The token and session id are path/query escaped.
func ComposeLink(template, baseURL, plainToken, sessionID string) (string, error) {
	if template == "" {
		template = DefaultLinkTemplate
	}
	return mustache.Render(template, map[string]string{
		"base_url":   strings.TrimSuffix(baseURL, "/"),
		"token":      url.PathEscape(plainToken),
		"session_id": url.QueryEscape(sessionID),
	})
}
