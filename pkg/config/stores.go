package config

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dtn-stack/bplib/pkg/bpstore"
	"github.com/dtn-stack/bplib/pkg/bpstore/badger"
	"github.com/dtn-stack/bplib/pkg/bpstore/memory"
	bpstores3 "github.com/dtn-stack/bplib/pkg/bpstore/s3"
)

// CreateStore builds the pkg/bpstore backend cfg selects.
func CreateStore(ctx context.Context, cfg StorageConfig) (bpstore.Store, error) {
	switch cfg.Type {
	case "memory":
		return memory.New(cfg.Path), nil

	case "badger":
		if cfg.Path == "" {
			return nil, fmt.Errorf("badger store requires a path")
		}
		return badger.New(cfg.Path)

	case "s3":
		client, err := newS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("s3 store: %w", err)
		}
		return bpstores3.New(ctx, bpstores3.Config{Client: client, Bucket: cfg.S3.Bucket, Prefix: cfg.S3.Prefix})

	default:
		return nil, fmt.Errorf("unknown storage type: %q", cfg.Type)
	}
}

func newS3Client(ctx context.Context, cfg S3StorageConfig) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if cfg.Endpoint != "" {
		return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = &cfg.Endpoint
			o.UsePathStyle = true
		}), nil
	}
	return s3.NewFromConfig(awsCfg), nil
}
