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

package stamp

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/cbroglie/mustache"
	"github.com/goodsign/monday"

	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

// DefaultLineTemplates render the four lines of a party stamp
var DefaultLineTemplates = []string{
	"Signed by: {{{name}}}  ID: {{{national_id}}}",
	"Date/Time: {{{signed_at}}}",
	"IP: {{{ip}}}  UA: {{{user_agent}}}",
	"Base hash (SHA-256): {{{digest_prefix}}}...",
}

// TimeLayout is the layout of the signed-at timestamp, month and day names follow the configured locale
const TimeLayout = "2 January 2006 15:04:05 MST"

const (
	maxUserAgentLength = 120
	digestPrefixLength = 16
)

// Vertical origin of the stamp per role
var rolePositions = map[types.Role]float64{
	types.RoleOrganizationA: 140,
	types.RoleOrganizationB: 100,
	types.RoleIndividual:    60,
}

// BlockX is the left margin of every party stamp
const BlockX = 40

// LineRenderer renders the stamp text of signed parties
type LineRenderer struct {
	templates []*mustache.Template
	location  *time.Location
	locale    monday.Locale
}

// NewLineRenderer parses the templates and resolves the timezone and locale. Empty templates mean DefaultLineTemplates.
func NewLineRenderer(templates []string, timezone, locale string) (*LineRenderer, error) {
	if len(templates) == 0 {
		templates = DefaultLineTemplates
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid stamp timezone %s: %w", timezone, err)
	}
	if !supportedLocale(monday.Locale(locale)) {
		return nil, fmt.Errorf("unsupported stamp locale: %s", locale)
	}
	r := &LineRenderer{location: location, locale: monday.Locale(locale)}
	for _, t := range templates {
		parsed, err := mustache.ParseString(t)
		if err != nil {
			return nil, fmt.Errorf("invalid stamp line template %q: %w", t, err)
		}
		r.templates = append(r.templates, parsed)
	}
	return r, nil
}

// Lines renders the stamp text of one signed party
func (r *LineRenderer) Lines(party types.Party, originalDigest string) ([]string, error) {
	if !party.Signed() {
		return nil, fmt.Errorf("party %s has not signed", party.Role)
	}
	values := map[string]string{
		"role":          string(party.Role),
		"name":          party.Name,
		"national_id":   party.NationalID,
		"signed_at":     monday.Format(party.SignedAt.In(r.location), TimeLayout, r.locale),
		"ip":            party.SignedIP,
		"user_agent":    truncate(party.SignedUserAgent, maxUserAgentLength),
		"digest_prefix": truncate(originalDigest, digestPrefixLength),
	}
	for k, v := range values {
		values[k] = sanitize(v)
	}
	lines := make([]string, 0, len(r.templates))
	for _, t := range r.templates {
		line, err := t.Render(values)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Blocks builds one block per signed party on the given page, positioned by role
func (r *LineRenderer) Blocks(parties []types.Party, originalDigest string, page int) ([]Block, error) {
	blocks := make([]Block, 0, len(parties))
	for _, party := range parties {
		lines, err := r.Lines(party, originalDigest)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, Block{
			Page:  page,
			X:     BlockX,
			Y:     rolePositions[party.Role],
			Lines: lines,
		})
	}
	return blocks, nil
}

func supportedLocale(locale monday.Locale) bool {
	for _, l := range monday.ListLocales() {
		if l == locale {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// percentReplacement stands in for '%', which pdfcpu resolves as a placeholder (%p, %P, %t) or drops
const percentReplacement = "pct"

// sanitize makes text safe for a single stamp line: control characters and line separators become spaces
// and '%' is replaced by "pct". The exact values remain in the party row and the evidence ledger.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || unicode.In(r, unicode.Zl, unicode.Zp) {
			return ' '
		}
		return r
	}, strings.ReplaceAll(s, "%", percentReplacement))
}
