package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Host      string `envconfig:"HOST"`                          // localhost:9000, пусто - архив чеков выключен
	AccessKey string `envconfig:"ACCESS_KEY"`                    // minioadmin
	SecretKey string `envconfig:"SECRET_KEY"`                    // minioadmin
	Bucket    string `envconfig:"BUCKET" default:"raffle-proofs"` // raffle-proofs
	Region    string `envconfig:"REGION"`
	UseSSL    bool   `envconfig:"USE_SSL" default:"false"` // false для локальной разработки
}

// Enabled S3 настроен
func (c *Config) Enabled() bool {
	return c != nil && c.Host != ""
}

// NewClient создаёт новый MinIO клиент и при необходимости bucket
func (c *Config) NewClient() (*minio.Client, error) {
	client, err := minio.New(c.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.UseSSL,
		Region: c.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, c.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, c.Bucket, minio.MakeBucketOptions{Region: c.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", c.Bucket, err)
		}
	}

	return client, nil
}
