/*
Copyright © 2026 the surfgrid authors.
This file is part of surfgrid.

surfgrid is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

surfgrid is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with surfgrid.  If not, see <http://www.gnu.org/licenses/>.
*/

package surfgridutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/gcerrors"
	_ "gocloud.dev/blob/gcsblob" // gs:// buckets
	_ "gocloud.dev/blob/s3blob"  // s3:// buckets
)

// downloader keeps track of the temporary directories that remote input
// files are downloaded to, so that they can be removed when a run ends.
type downloader struct {
	dirs []string
}

// maybeDownload checks if the input is an existing file locally.
// If not, it checks if the file is a URL or a blob storage location.
// If it is, it downloads the file to a temporary directory and
// returns the path to the downloaded file.
// For shapefiles, it downloads all associated files and
// returns the path to the file with the ".shp" extension.
func (d *downloader) maybeDownload(ctx context.Context, path string) (string, error) {
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return d.downloadHTTP(ctx, path)
	}
	if IsBlob(path) {
		return d.downloadBlob(ctx, path)
	}
	return path, nil
}

// tempDir creates a directory for downloaded files.
func (d *downloader) tempDir() (string, error) {
	dir, err := os.MkdirTemp("", "surfgrid")
	if err != nil {
		return "", fmt.Errorf("surfgrid: creating temporary download directory: %v", err)
	}
	d.dirs = append(d.dirs, dir)
	return dir, nil
}

// cleanup removes the downloaded files.
func (d *downloader) cleanup() {
	for _, dir := range d.dirs {
		os.RemoveAll(dir)
	}
	d.dirs = nil
}

// downloadHTTP downloads a file from the specified URL and returns
// the path to the downloaded file.
func (d *downloader) downloadHTTP(ctx context.Context, path string) (string, error) {
	dir, err := d.tempDir()
	if err != nil {
		return path, err
	}
	fnames := expandShp(path)
	for _, fname := range fnames {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fname, nil)
		if err != nil {
			return path, fmt.Errorf("surfgrid: downloading %s: %v", fname, err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return path, fmt.Errorf("surfgrid: downloading %s: %v", fname, err)
		}
		if resp.StatusCode == http.StatusNotFound && optional(fname) {
			resp.Body.Close()
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return path, fmt.Errorf("surfgrid: downloading %s: %s", fname, resp.Status)
		}
		err = saveTo(filepath.Join(dir, filepath.Base(fname)), resp.Body)
		resp.Body.Close()
		if err != nil {
			return path, err
		}
	}
	return filepath.Join(dir, filepath.Base(fnames[0])), nil
}

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// The currently accepted storage providers are "file" for a directory on
// the local filesystem (e.g., for testing), "gs" for Google Cloud Storage,
// and "s3" for AWS S3. Cloud credentials are taken from the environment.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("surfgrid: opening bucket: %v", err)
	}
	switch u.Scheme {
	case "file":
		return fileblob.OpenBucket(u.Host, nil)
	case "gs", "s3":
		return blob.OpenBucket(ctx, u.Scheme+"://"+u.Host)
	default:
		return nil, fmt.Errorf("surfgrid: invalid blob storage provider %q", u.Scheme)
	}
}

// downloadBlob downloads the specified file from blob storage.
func (d *downloader) downloadBlob(ctx context.Context, path string) (string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return path, err
	}
	bucket, err := OpenBucket(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return path, err
	}
	defer bucket.Close()
	dir, err := d.tempDir()
	if err != nil {
		return path, err
	}
	fnames := expandShp(strings.TrimPrefix(u.Path, "/"))
	for _, fname := range fnames {
		r, err := bucket.NewReader(ctx, fname, nil)
		if gcerrors.Code(err) == gcerrors.NotFound && optional(fname) {
			continue
		}
		if err != nil {
			return path, fmt.Errorf("surfgrid: downloading %s: %v", fname, err)
		}
		err = saveTo(filepath.Join(dir, filepath.Base(fname)), r)
		r.Close()
		if err != nil {
			return path, err
		}
	}
	return filepath.Join(dir, filepath.Base(fnames[0])), nil
}

// optional reports whether a file that is missing from a download
// location can be skipped. Shapefiles do not need a projection file.
func optional(fname string) bool {
	return filepath.Ext(fname) == ".prj"
}

func saveTo(path string, r io.Reader) error {
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("surfgrid: creating file for download: %v", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("surfgrid: downloading to %s: %v", path, err)
	}
	return w.Close()
}

// expandShp returns the given file + associated [.dbf, .shx, .prj]
// files if the given file has the .shp extension, and returns the given
// file otherwise.
func expandShp(filename string) []string {
	o := []string{filename}
	if filepath.Ext(filename) != ".shp" {
		return o
	}
	for _, newExt := range []string{".dbf", ".shx", ".prj"} {
		o = append(o, strings.TrimSuffix(filename, ".shp")+newExt)
	}
	return o
}
