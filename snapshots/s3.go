// SPDX-License-Identifier: MPL-2.0

package snapshots

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func newMinioClient(cfg Config) (*minio.Client, error) {
	if cfg.S3Endpoint == "" {
		return nil, fmt.Errorf("S3 endpoint is required")
	}
	cleanEndpoint := strings.TrimPrefix(cfg.S3Endpoint, "http://")
	cleanEndpoint = strings.TrimPrefix(cleanEndpoint, "https://")
	useSSL := !strings.HasPrefix(cfg.S3Endpoint, "http://")

	// Without explicit keys, fall back to the credential chain.
	var creds *credentials.Credentials
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		creds = credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, "")
	} else {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.EnvMinio{},
			&credentials.FileAWSCredentials{},
			&credentials.FileMinioClient{},
			&credentials.IAM{},
		})
	}

	client, err := minio.New(cleanEndpoint, &minio.Options{
		Creds:  creds,
		Secure: useSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return client, nil
}

func uploadFile(ctx context.Context, cfg Config, filePath, key string) error {
	client, err := newMinioClient(cfg)
	if err != nil {
		return err
	}
	exists, err := client.BucketExists(ctx, cfg.S3Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", cfg.S3Bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", cfg.S3Bucket)
	}
	_, err = client.FPutObject(ctx, cfg.S3Bucket, key, filePath, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return nil
}
