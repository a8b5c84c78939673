package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"talent_match_backend/internal/config"
	"talent_match_backend/internal/util"
	"talent_match_backend/pkg/logger"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ObjectStore 简历等文件的存储后端
type ObjectStore interface {
	Put(ctx context.Context, object string, reader io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, object string) error
	URL(object string) string
}

// LocalStore 写到本地目录，由 gin 的 /uploads 静态路由对外提供
type LocalStore struct {
	Root string
}

func (s *LocalStore) Put(ctx context.Context, object string, reader io.Reader, size int64, contentType string) (string, error) {
	dst, err := s.path(object)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		os.Remove(dst)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return s.URL(object), nil
}

func (s *LocalStore) Remove(ctx context.Context, object string) error {
	dst, err := s.path(object)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStore) URL(object string) string {
	return "/uploads/" + object
}

// path 拒绝跳出根目录的对象名
func (s *LocalStore) path(object string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(object))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", util.Validation("invalid object name %q", object)
	}
	return filepath.Join(s.Root, clean), nil
}

// MinioStore MinIO / S3 兼容存储
type MinioStore struct {
	Bucket string
	Client *minio.Client
}

func NewMinioStore(cfg *config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStore{Bucket: cfg.MinioBucket, Client: client}, nil
}

func (s *MinioStore) Put(ctx context.Context, object string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := s.Client.PutObject(ctx, s.Bucket, object, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("minio put %s: %w", object, err)
	}
	return s.URL(object), nil
}

func (s *MinioStore) Remove(ctx context.Context, object string) error {
	return s.Client.RemoveObject(ctx, s.Bucket, object, minio.RemoveObjectOptions{})
}

func (s *MinioStore) URL(object string) string {
	return "/" + s.Bucket + "/" + object
}

// OSSStore 阿里云 OSS
type OSSStore struct {
	Endpoint string
	Bucket   *oss.Bucket
}

func NewOSSStore(cfg *config.StorageConfig) (*OSSStore, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, err
	}
	return &OSSStore{Endpoint: cfg.OSSEndpoint, Bucket: bucket}, nil
}

func (s *OSSStore) Put(ctx context.Context, object string, reader io.Reader, size int64, contentType string) (string, error) {
	if err := s.Bucket.PutObject(object, reader, oss.ContentType(contentType), oss.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("oss put %s: %w", object, err)
	}
	return s.URL(object), nil
}

func (s *OSSStore) Remove(ctx context.Context, object string) error {
	return s.Bucket.DeleteObject(object, oss.WithContext(ctx))
}

func (s *OSSStore) URL(object string) string {
	return fmt.Sprintf("https://%s.%s/%s", s.Bucket.BucketName, s.Endpoint, object)
}

// StorageService 按配置选择后端，远端不可用时退回本地目录
type StorageService struct {
	ObjectStore
}

func NewStorageService(cfg *config.Config) *StorageService {
	var store ObjectStore
	switch cfg.Storage.Type {
	case util.StorageMinio:
		s, err := NewMinioStore(&cfg.Storage)
		if err == nil {
			store = s
		} else {
			logger.Log.Warn("MinIO unavailable, falling back to local storage", zap.Error(err))
		}
	case util.StorageOSS:
		s, err := NewOSSStore(&cfg.Storage)
		if err == nil {
			store = s
		} else {
			logger.Log.Warn("OSS unavailable, falling back to local storage", zap.Error(err))
		}
	}

	if store == nil {
		store = &LocalStore{Root: cfg.Storage.LocalPath}
	}
	return &StorageService{ObjectStore: store}
}

// ResumeObjectName 简历对象名 resumes/<candidateID>/<时间戳><扩展名>
func ResumeObjectName(candidateID uint, originalName string, now time.Time) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	allowed := false
	for _, e := range util.AllowedResumeExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", util.Validation("resume must be one of %s", strings.Join(util.AllowedResumeExtensions, ", "))
	}
	return fmt.Sprintf("resumes/%d/%d%s", candidateID, now.UnixNano(), ext), nil
}
