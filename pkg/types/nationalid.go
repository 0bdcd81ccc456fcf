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

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidNationalID is returned when a national identifier is malformed or fails its check digits
var ErrInvalidNationalID = errors.New("invalid national identifier")

var (
	cpfWeights1  = []int{10, 9, 8, 7, 6, 5, 4, 3, 2}
	cpfWeights2  = []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// NormalizeNationalID strips the punctuation of a national identifier and checks it.
// Accepted are 11 digit personal numbers (CPF) and 14 digit organization numbers (CNPJ),
// both with their two trailing check digits, e.g. "529.982.247-25" or "11.222.333/0001-81".
func NormalizeNationalID(raw string) (string, error) {
	var b strings.Builder
	for _, c := range strings.TrimSpace(raw) {
		switch {
		case c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == '.' || c == '-' || c == '/' || c == ' ':
		default:
			return "", fmt.Errorf("%w: unexpected character %q", ErrInvalidNationalID, c)
		}
	}
	digits := b.String()

	var w1, w2 []int
	switch len(digits) {
	case 11:
		w1, w2 = cpfWeights1, cpfWeights2
	case 14:
		w1, w2 = cnpjWeights1, cnpjWeights2
	default:
		return "", fmt.Errorf("%w: expected 11 or 14 digits, got %d", ErrInvalidNationalID, len(digits))
	}
	if strings.Count(digits, digits[:1]) == len(digits) {
		return "", fmt.Errorf("%w: repeated digits", ErrInvalidNationalID)
	}
	n := len(digits)
	if checkDigit(digits[:n-2], w1) != digits[n-2] || checkDigit(digits[:n-1], w2) != digits[n-1] {
		return "", fmt.Errorf("%w: check digits do not match", ErrInvalidNationalID)
	}
	return digits, nil
}

func checkDigit(digits string, weights []int) byte {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	r := sum % 11
	if r < 2 {
		return '0'
	}
	return byte('0' + 11 - r)
}
