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

package blob

import (
	"context"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Compiler check
var _ Store = (*FileSystemStore)(nil)

// FileSystemStore stores blobs as files below a root directory, fanned out on the first two characters of
// the handle. Files are written to a temporary file in the target directory and renamed into place.
type FileSystemStore struct {
	root string
}

// NewFileSystemStore creates the root directory if needed and returns a FileSystemStore
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, errors.Wrapf(err, "could not create blob directory %s", root)
	}
	return &FileSystemStore{root: root}, nil
}

func (f *FileSystemStore) path(handle Handle) string {
	return filepath.Join(f.root, string(handle[:2]), string(handle))
}

// Put writes data unless a blob with the same content already exists
func (f *FileSystemStore) Put(ctx context.Context, data []byte) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	h := HandleFor(data)
	target := f.path(h)
	if _, err := os.Stat(target); err == nil {
		return h, nil
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", errors.Wrap(err, "could not create blob directory")
	}
	tmp, err := ioutil.TempFile(dir, ".tmp-"+string(h[:8])+"-")
	if err != nil {
		return "", errors.Wrap(err, "could not create temporary blob file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errors.Wrap(err, "could not write blob")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", errors.Wrap(err, "could not sync blob")
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "could not close blob")
	}
	if err := os.Rename(tmpName, target); err != nil {
		return "", errors.Wrap(err, "could not publish blob")
	}
	return h, nil
}

// Get reads the complete blob
func (f *FileSystemStore) Get(ctx context.Context, handle Handle) ([]byte, error) {
	r, err := f.Open(ctx, handle)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read blob %s", handle)
	}
	return data, nil
}

// Open returns the blob file for streaming
func (f *FileSystemStore) Open(_ context.Context, handle Handle) (io.ReadCloser, error) {
	if err := handle.validate(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.path(handle))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not open blob %s", handle)
	}
	return file, nil
}
