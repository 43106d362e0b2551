// Package objectstore выдает подписанные URL для прямой загрузки и скачивания
// файлов между клиентом и S3-совместимым хранилищем (S3, MinIO). Сервер не
// проксирует байты файлов: клиент получает временную capability-ссылку и
// работает с хранилищем напрямую.
package objectstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/CSES-Open-Source/tritonscript/internal/config"
)

// Client держит S3-клиент и presign-клиент, созданные один раз при старте
// процесса и внедряемые в сервисы явно.
type Client struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	uploadTTL     time.Duration
	downloadTTL   time.Duration
}

// New создает клиент объектного хранилища по настройкам из конфига.
func New(ctx context.Context, cfg config.S3Storage) (*Client, error) {
	const op = "objectstore.New"

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		uploadTTL:     cfg.UploadTTL,
		downloadTTL:   cfg.DownloadTTL,
	}, nil
}

// Bucket возвращает имя бакета, в который выдаются ссылки на загрузку.
func (c *Client) Bucket() string {
	return c.bucket
}

// PresignUpload возвращает подписанный PUT-URL для загрузки PDF под ключом key.
// Ссылка действует uploadTTL; в хранилище при этом ничего не резервируется.
func (c *Client) PresignUpload(ctx context.Context, key string) (string, error) {
	const op = "objectstore.PresignUpload"

	req, err := c.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String("application/pdf"),
	}, s3.WithPresignExpires(c.uploadTTL))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return req.URL, nil
}

// PresignDownload возвращает подписанный GET-URL для скачивания объекта.
func (c *Client) PresignDownload(ctx context.Context, bucket, key string) (string, error) {
	const op = "objectstore.PresignDownload"

	req, err := c.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(c.downloadTTL))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return req.URL, nil
}

// DeleteObject удаляет объект из хранилища. Вызывается до удаления метаданных:
// если удаление объекта не удалось, запись в базе остается для повторной попытки.
func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	const op = "objectstore.DeleteObject"

	if _, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
