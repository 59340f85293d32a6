/*
Copyright 2026 The Nanosoldier Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package blobstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/nanosoldier/bot/pkg/config"
)

// S3Store puts objects directly through an s3.Client, rather than
// through the gocloud.dev/blob abstraction: report/log uploads here
// are one-shot PutObject calls with no need for the streaming writer
// gocloud provides.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store builds an S3Store from a bucket configuration, following
// the credential-chain-or-static pattern used for worker-node S3
// buckets elsewhere in the ambient stack.
func NewS3Store(ctx context.Context, b *config.Bucket) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if b.AccessKey != "" && b.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(b.AccessKey, b.SecretKey, "")))
	}
	if b.Region != "" {
		opts = append(opts, awsconfig.WithRegion(b.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS SDK config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if b.Endpoint != "" {
		endpoint := b.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
			o.UsePathStyle = true
		})
	}

	return &S3Store{client: s3.NewFromConfig(cfg, s3Opts...), bucket: b.Name}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string, public bool) (string, error) {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	}
	if public {
		in.ACL = s3types.ObjectCannedACLPublicRead
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key), nil
}
