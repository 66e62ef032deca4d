package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"time"

	"github.com/SeraphMX/grupofinancial-hub-sub000/config"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage encapsula el cliente de almacenamiento de objetos
type Storage struct {
	client *minio.Client
	bucket string
}

// UploadResult representa el resultado de una subida
type UploadResult struct {
	Key  string
	Size int64
}

// NewStorage crea el cliente de almacenamiento y asegura que el bucket exista
func NewStorage(cfg *config.Config) (*Storage, error) {
	client, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("error al inicializar el cliente de almacenamiento: %v", err)
	}

	s := &Storage{client: client, bucket: cfg.Storage.Bucket}

	exists, err := client.BucketExists(context.Background(), s.bucket)
	if err != nil {
		return nil, fmt.Errorf("error al verificar el bucket: %v", err)
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), s.bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("error al crear el bucket: %v", err)
		}
	}

	return s, nil
}

// BuildKey genera la llave de almacenamiento para un archivo de solicitud:
// solicitudes/{folio}/{slot}/{uuid}{ext}
func BuildKey(folio, slotType, originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("solicitudes/%s/%s/%s%s", folio, slotType, uuid.New().String(), ext)
}

// Upload sube un archivo y regresa su llave y tamaño
func (s *Storage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*UploadResult, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("error al subir el archivo: %v", err)
	}
	return &UploadResult{Key: key, Size: info.Size}, nil
}

// Delete elimina un objeto del bucket
func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("error al eliminar el archivo: %v", err)
	}
	return nil
}

// PresignedURL genera una URL firmada de descarga con vigencia limitada
func (s *Storage) PresignedURL(ctx context.Context, key, downloadName string, ttl time.Duration) (string, error) {
	params := url.Values{}
	if downloadName != "" {
		params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", downloadName))
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, params)
	if err != nil {
		return "", fmt.Errorf("error al generar la URL de descarga: %v", err)
	}
	return u.String(), nil
}
