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

package seal

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigest(t *testing.T) {
	doc := []byte("%PDF-1.4 some document bytes")

	t.Run("deterministic", func(t *testing.T) {
		d1, err := Digest(bytes.NewReader(doc))
		assert.NoError(t, err)
		d2, err := Digest(bytes.NewReader(doc))
		assert.NoError(t, err)
		assert.Equal(t, d1, d2)
		assert.Equal(t, d1, DigestBytes(doc))
		assert.Len(t, d1, 64)
	})

	t.Run("single byte mutation changes the digest", func(t *testing.T) {
		original := DigestBytes(doc)
		for i := range doc {
			mutated := append([]byte{}, doc...)
			mutated[i] ^= 0x01
			assert.NotEqual(t, original, DigestBytes(mutated), "mutation at %d", i)
		}
	})

	t.Run("known value", func(t *testing.T) {
		assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", DigestBytes(nil))
	})

	t.Run("file", func(t *testing.T) {
		dir, err := ioutil.TempDir("", "digest")
		if !assert.NoError(t, err) {
			return
		}
		defer os.RemoveAll(dir)
		path := filepath.Join(dir, "doc.pdf")
		assert.NoError(t, ioutil.WriteFile(path, doc, 0600))

		d, err := DigestFile(path)
		assert.NoError(t, err)
		assert.Equal(t, DigestBytes(doc), d)
	})
}
