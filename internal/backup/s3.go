package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Config selects the bucket and endpoint of an S3Sink. Credentials come
// from the default AWS chain unless AccessKeyID is set.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional, for S3-compatible servers such as MinIO
	PathStyle       bool
	Prefix          string // optional key prefix, e.g. "clinic-a/"
	AccessKeyID     string
	SecretAccessKey string
}

// S3Sink stores snapshots as objects in one bucket.
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3 builds an S3Sink from cfg.
func NewS3(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3Sink(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Sink(client *s3.Client, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Sink) Driver() string { return DriverS3 }

func (s *S3Sink) location(objectKey string) string {
	return "s3://" + s.bucket + "/" + objectKey
}

// Put uploads r. Create-only semantics are emulated with a HEAD first, so
// two concurrent writers of the same key can still race.
func (s *S3Sink) Put(ctx context.Context, key string, r io.Reader) (Object, error) {
	objectKey := s.prefix + key
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &objectKey})
	if err == nil {
		return Object{}, ErrExists
	}
	if !isNotFound(err) {
		return Object{}, fmt.Errorf("head %s: %w", objectKey, err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &objectKey,
		Body:        r,
		ContentType: aws.String("application/vnd.sqlite3"),
	})
	if err != nil {
		return Object{}, fmt.Errorf("put %s: %w", objectKey, err)
	}
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &objectKey})
	if err != nil {
		return Object{}, fmt.Errorf("head %s: %w", objectKey, err)
	}
	return Object{
		Key:       key,
		Size:      aws.ToInt64(head.ContentLength),
		Location:  s.location(objectKey),
		CreatedAt: aws.ToTime(head.LastModified).UTC(),
	}, nil
}

func (s *S3Sink) List(ctx context.Context) ([]Object, error) {
	prefix := s.prefix + KeyPrefix
	out := []Object{}
	var token *string
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            &s.bucket,
			Prefix:            &prefix,
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			objectKey := aws.ToString(obj.Key)
			key := objectKey[len(s.prefix):]
			if !isSnapshotKey(key) {
				continue
			}
			out = append(out, Object{
				Key:       key,
				Size:      aws.ToInt64(obj.Size),
				Location:  s.location(objectKey),
				CreatedAt: aws.ToTime(obj.LastModified).UTC(),
			})
		}
		if aws.ToBool(page.IsTruncated) && page.NextContinuationToken != nil {
			token = page.NextContinuationToken
			continue
		}
		break
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// isNotFound reports a missing object. HEAD responses carry no body, so the
// SDK surfaces either a typed NotFound or a bare API error code.
func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
