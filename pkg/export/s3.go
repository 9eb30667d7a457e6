package export

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// S3Config - секция s3 конфигурационного файла
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`       // MinIO / Ceph; пусто - AWS
	AccessKey    string `yaml:"access_key"`     // пусто - стандартная цепочка AWS credentials
	SecretKey    string `yaml:"secret_key"`
	Prefix       string `yaml:"prefix"`         // префикс ключей, например "exports/"
	UsePathStyle bool   `yaml:"use_path_style"` // обязательно для большинства S3-совместимых хранилищ
}

// S3Uploader загружает экспортированные файлы в бакет
type S3Uploader struct {
	cfg      S3Config
	uploader *manager.Uploader
}

// NewS3Uploader создает клиента S3
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	opts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Uploader{
		cfg:      cfg,
		uploader: manager.NewUploader(client),
	}, nil
}

// ObjectKey строит ключ объекта: prefix + key, по умолчанию имя файла
func (u *S3Uploader) ObjectKey(localPath, key string) string {
	if key == "" {
		key = filepath.Base(localPath)
	}
	if u.cfg.Prefix == "" {
		return key
	}
	return path.Join(strings.TrimSuffix(u.cfg.Prefix, "/"), key)
}

// Upload отправляет файл и возвращает его адрес в хранилище
func (u *S3Uploader) Upload(ctx context.Context, localPath, key string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	objectKey := u.ObjectKey(localPath, key)
	out, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(objectKey),
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to s3://%s/%s: %w", localPath, u.cfg.Bucket, objectKey, err)
	}

	log.Info().Str("bucket", u.cfg.Bucket).Str("key", objectKey).Msg("file uploaded")
	return out.Location, nil
}

// UploadS3 - однократная загрузка файла без повторного использования клиента
func UploadS3(ctx context.Context, cfg S3Config, localPath, key string) (string, error) {
	u, err := NewS3Uploader(ctx, cfg)
	if err != nil {
		return "", err
	}
	return u.Upload(ctx, localPath, key)
}
