// Copyright 2023 The Stratofs Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package s3 is the object store under file system driver. It speaks the
// S3 API and works against AWS or any compatible endpoint (MinIO,
// localstack) when s3.endpoint is set.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/stratofs/stratofs/conf"
	"github.com/stratofs/stratofs/ufs"
)

// configuration keys resolved from the mount conf
const (
	KeyRegion    = "s3.region"
	KeyEndpoint  = "s3.endpoint"
	KeyAccessKey = "s3.accessKey"
	KeySecretKey = "s3.secretKey"

	defaultRegion = "us-east-1"
)

func init() {
	ufs.Register("s3", New)
	ufs.Register("s3a", New)
}

type s3Ufs struct {
	bucket   string
	prefix   string
	region   string
	endpoint string
	conf     *conf.UfsConf

	mu     sync.Mutex
	client *awss3.Client
}

func New(uri *ufs.URI, c *conf.UfsConf) (ufs.UnderFileSystem, error) {
	bucket := uri.Authority()
	if bucket == "" {
		return nil, fmt.Errorf("s3 ufs: uri %q has no bucket", uri.String())
	}
	if c == nil {
		c = conf.New(nil, false)
	}
	return &s3Ufs{
		bucket:   bucket,
		prefix:   strings.Trim(uri.Path(), "/"),
		region:   c.GetDefault(KeyRegion, defaultRegion),
		endpoint: c.GetDefault(KeyEndpoint, ""),
		conf:     c,
	}, nil
}

func (s *s3Ufs) Name() string { return "s3" }

// Region reports the region the driver resolved from its configuration.
func (s *s3Ufs) Region() string { return s.region }

func (s *s3Ufs) ConnectFromWorker(ctx context.Context, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(s.region),
	}
	if ak, ok := s.conf.Get(KeyAccessKey); ok {
		sk := s.conf.GetDefault(KeySecretKey, "")
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(ak, sk, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("s3 ufs: load aws config: %w", err)
	}

	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		if s.endpoint != "" {
			o.BaseEndpoint = aws.String(s.endpoint)
			// path style for MinIO/localstack compatibility
			o.UsePathStyle = true
		}
	})

	if _, err := client.HeadBucket(ctx, &awss3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("s3 ufs: head bucket %q from %q: %w", s.bucket, host, err)
	}
	s.client = client
	return nil
}

func (s *s3Ufs) getClient() (*awss3.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil, errors.New("s3 ufs: not connected")
	}
	return s.client, nil
}

func (s *s3Ufs) key(p string) string {
	p = strings.Trim(path.Clean("/"+p), "/")
	if s.prefix == "" {
		return p
	}
	if p == "" {
		return s.prefix
	}
	return s.prefix + "/" + p
}

type putWriter struct {
	ctx    context.Context
	client *awss3.Client
	bucket string
	key    string
	buf    bytes.Buffer
}

func (w *putWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *putWriter) Close() error {
	_, err := w.client.PutObject(w.ctx, &awss3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(w.key),
		Body:   bytes.NewReader(w.buf.Bytes()),
	})
	return err
}

func (s *s3Ufs) Create(ctx context.Context, p string) (io.WriteCloser, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}
	return &putWriter{ctx: ctx, client: client, bucket: s.bucket, key: s.key(p)}, nil
}

func (s *s3Ufs) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func (s *s3Ufs) Delete(ctx context.Context, p string, recursive bool) error {
	client, err := s.getClient()
	if err != nil {
		return err
	}
	if !recursive {
		_, err = client.DeleteObject(ctx, &awss3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key(p)),
		})
		return err
	}

	prefix := s.key(p)
	if prefix != "" {
		prefix += "/"
	}
	var token *string
	for {
		out, err := client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return err
		}
		for _, obj := range out.Contents {
			if _, err := client.DeleteObject(ctx, &awss3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			}); err != nil {
				return err
			}
		}
		if out.NextContinuationToken == nil {
			return nil
		}
		token = out.NextContinuationToken
	}
}

func (s *s3Ufs) GetStatus(ctx context.Context, p string) (*ufs.FileStatus, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}
	key := s.key(p)
	head, err := client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		status := &ufs.FileStatus{Path: p, Size: aws.ToInt64(head.ContentLength)}
		if head.LastModified != nil {
			status.ModTime = *head.LastModified
		}
		return status, nil
	}

	// no object with this exact key, it may still name a "directory"
	out, lerr := client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(key + "/"),
		MaxKeys: aws.Int32(1),
	})
	if lerr == nil && len(out.Contents) > 0 {
		return &ufs.FileStatus{Path: p, IsDir: true}, nil
	}
	return nil, err
}

func (s *s3Ufs) ListStatus(ctx context.Context, p string) ([]*ufs.FileStatus, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}
	prefix := s.key(p)
	if prefix != "" {
		prefix += "/"
	}

	var statuses []*ufs.FileStatus
	var token *string
	for {
		out, err := client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, cp := range out.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
			statuses = append(statuses, &ufs.FileStatus{Path: path.Join(p, name), IsDir: true})
		}
		for _, obj := range out.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if name == "" {
				continue
			}
			status := &ufs.FileStatus{Path: path.Join(p, name), Size: aws.ToInt64(obj.Size)}
			if obj.LastModified != nil {
				status.ModTime = *obj.LastModified
			}
			statuses = append(statuses, status)
		}
		if out.NextContinuationToken == nil {
			return statuses, nil
		}
		token = out.NextContinuationToken
	}
}

func (s *s3Ufs) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	return nil
}
