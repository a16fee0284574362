package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"sharefolio/internal/config"
)

var ErrForeignURL = errors.New("URL не относится к хранилищу")

type Storage interface {
	UploadImage(ctx context.Context, folder, fileName string, file io.Reader, size int64, contentType string) (string, string, error)
	DeleteImage(ctx context.Context, imageURL string) error
	ImageURL(objectName string) string
}

type MinIOClient struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    *zap.Logger
}

func NewMinIOClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*MinIOClient, error) {
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
		Region: cfg.MinIO.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinIO.BucketName)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки бакета %s: %w", cfg.MinIO.BucketName, err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.MinIO.BucketName, minio.MakeBucketOptions{Region: cfg.MinIO.Region})
		if err != nil {
			return nil, fmt.Errorf("ошибка создания бакета %s: %w", cfg.MinIO.BucketName, err)
		}
		logger.Info("bucket created", zap.String("bucket", cfg.MinIO.BucketName))
	}

	return &MinIOClient{
		client:    client,
		bucket:    cfg.MinIO.BucketName,
		publicURL: cfg.MinIO.PublicURL,
		logger:    logger,
	}, nil
}

// UploadImage stores file under a fresh random key inside folder and returns
// the object name together with its public URL.
func (m *MinIOClient) UploadImage(ctx context.Context, folder, fileName string, file io.Reader, size int64, contentType string) (string, string, error) {
	token, err := RandomToken(TokenLength)
	if err != nil {
		return "", "", err
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := ObjectKey(folder, token, fileName)

	_, err = m.client.PutObject(ctx, m.bucket, objectName, file, size,
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"original-filename": fileName,
				"uploaded-at":       time.Now().UTC().Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", "", fmt.Errorf("ошибка загрузки в MinIO: %w", err)
	}

	m.logger.Debug("image uploaded", zap.String("object", objectName), zap.Int64("size", size))

	return objectName, m.ImageURL(objectName), nil
}

func (m *MinIOClient) DeleteImage(ctx context.Context, imageURL string) error {
	objectName, err := ObjectNameFromURL(m.publicURL, m.bucket, imageURL)
	if err != nil {
		return err
	}

	err = m.client.RemoveObject(ctx, m.bucket, objectName,
		minio.RemoveObjectOptions{
			GovernanceBypass: true,
		})
	if err != nil {
		return fmt.Errorf("ошибка удаления из MinIO: %w", err)
	}
	return nil
}

func (m *MinIOClient) ImageURL(objectName string) string {
	return fmt.Sprintf("%s/%s/%s", m.publicURL, m.bucket, objectName)
}

// ObjectNameFromURL resolves a stored reference back to its object name.
func ObjectNameFromURL(publicURL, bucket, imageURL string) (string, error) {
	prefix := fmt.Sprintf("%s/%s/", strings.TrimSuffix(publicURL, "/"), bucket)
	if !strings.HasPrefix(imageURL, prefix) {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, imageURL)
	}

	objectName := strings.TrimPrefix(imageURL, prefix)
	if i := strings.IndexAny(objectName, "?#"); i >= 0 {
		objectName = objectName[:i]
	}

	unescaped, err := url.PathUnescape(objectName)
	if err != nil {
		return "", fmt.Errorf("неверный формат URL изображения: %w", err)
	}
	if unescaped == "" {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, imageURL)
	}

	return unescaped, nil
}
