/*
Copyright © 2026 the InMAP authors.
This file is part of nasaames.

nasaames is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

nasaames is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with nasaames.  If not, see <http://www.gnu.org/licenses/>.
*/

package nautil

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/s3blob"
	"gocloud.dev/gcp"
)

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// The currently accepted storage providers are "file" for the local filesystem,
// where name is a directory, "gs" for Google Cloud Storage, and "s3" for AWS S3.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("nasaames: opening bucket: %v", err)
	}
	switch u.Scheme {
	case "file":
		return fileblob.OpenBucket(fileDir(u), nil)
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	default:
		return nil, fmt.Errorf("nasaames: invalid storage provider %q", u.Scheme)
	}
}

// fileDir returns the local directory named by a file:// URL. Both
// 'file:///abs/dir' and 'file://rel/dir' are accepted.
func fileDir(u *url.URL) string {
	return filepath.FromSlash(u.Host + u.Path)
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, c, name, nil)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name, nil)
}

// splitBlob splits a blob path into the name of its bucket and its key.
// For the local filesystem the bucket is the directory holding the file.
func splitBlob(path string) (bucketName, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("nasaames: parsing blob path: %v", err)
	}
	if u.Scheme == "file" {
		p := u.Host + u.Path
		return "file://" + filepath.ToSlash(filepath.Dir(p)), filepath.Base(p), nil
	}
	return u.Scheme + "://" + u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// maybeDownload copies the given file to a temporary directory if it
// is in blob storage, returning the local path to the file and a
// function that removes the temporary copy. Local paths are returned
// unchanged.
func maybeDownload(ctx context.Context, path string) (string, func(), error) {
	if !IsBlob(path) {
		return path, func() {}, nil
	}
	bucketName, key, err := splitBlob(path)
	if err != nil {
		return "", nil, err
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return "", nil, err
	}
	defer bucket.Close()

	dir, err := os.MkdirTemp("", "nasaames")
	if err != nil {
		return "", nil, fmt.Errorf("nasaames: creating temporary download directory: %v", err)
	}
	cleanup := func() { os.RemoveAll(dir) }
	local := filepath.Join(dir, filepath.Base(key))
	if err := downloadBlob(ctx, bucket, key, local); err != nil {
		cleanup()
		return "", nil, err
	}
	return local, cleanup, nil
}

func downloadBlob(ctx context.Context, bucket *blob.Bucket, key, local string) error {
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("nasaames: reading blob %s: %v", key, err)
	}
	defer r.Close()
	w, err := os.Create(local)
	if err != nil {
		return fmt.Errorf("nasaames: creating file for download: %v", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("nasaames: downloading blob %s: %v", key, err)
	}
	return w.Close()
}

// blobWriter closes its bucket after the blob has been written.
type blobWriter struct {
	*blob.Writer
	bucket *blob.Bucket
}

func (w blobWriter) Close() error {
	err := w.Writer.Close()
	if cerr := w.bucket.Close(); err == nil {
		err = cerr
	}
	return err
}

// createOutput creates the file name in dir, which is either a local
// directory or a blob storage location such as 'gs://bucket/dir'. It
// returns the writer and the full path of the output.
func createOutput(ctx context.Context, dir, name string) (io.WriteCloser, string, error) {
	if !IsBlob(dir) {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return nil, "", fmt.Errorf("nasaames: creating output file: %v", err)
		}
		return f, path, nil
	}
	path := strings.TrimSuffix(dir, "/") + "/" + name
	bucketName, key, err := splitBlob(path)
	if err != nil {
		return nil, "", err
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return nil, "", err
	}
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		bucket.Close()
		return nil, "", fmt.Errorf("nasaames: creating writer for blob %s: %v", path, err)
	}
	return blobWriter{Writer: w, bucket: bucket}, path, nil
}
