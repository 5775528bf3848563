package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/DAC098/tj2/internal/common"
	sc "github.com/DAC098/tj2/internal/server/config"
	"github.com/DAC098/tj2/internal/server/models"
	"github.com/DAC098/tj2/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Seams for the AWS SDK calls so tests can intercept them.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const presignValidity = 15 * time.Minute

// FileService accepts uploaded attachment payloads, stores them in object
// storage, and hands out presigned download URLs.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

// NewFileService constructs a FileService.
func NewFileService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *FileService {
	return &FileService{db: db, repomanager: m, config: cfg}
}

// GetRandomStorageKey builds a date-partitioned object key for a new upload.
func GetRandomStorageKey(userID string) string {
	d := time.Now()
	return fmt.Sprintf("users/%s/%d/%02d/%02d/%v", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *FileService) getS3Client() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3AccessKey,
			s.config.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// StoreUpload stores a payload for a placeholder file record and flips it to
// received. A record that already holds a payload yields ErrorConflict so a
// duplicate upload cannot silently overwrite the first.
func (s *FileService) StoreUpload(ctx context.Context, userID, entryID, fileID, mime string, payload []byte) (*models.File, error) {
	fileRepo := s.repomanager.Files(s.db)

	file, err := fileRepo.GetByID(ctx, userID, entryID, fileID)
	if err != nil {
		return nil, err
	}
	if file.Status != models.FileStatusRequested {
		return nil, common.ErrorConflict
	}
	if mime == "" {
		mime = file.MIME
	}
	if mime == "" {
		mime = "application/octet-stream"
	}

	client, err := s.getS3Client()
	if err != nil {
		return nil, fmt.Errorf("failed to build storage client: %w", err)
	}

	storageKey := GetRandomStorageKey(userID)
	bucket := s.config.S3Bucket

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &storageKey,
		Body:        bytes.NewReader(payload),
		ContentType: &mime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store payload: %w", err)
	}

	size := int64(len(payload))
	if err := fileRepo.MarkReceived(ctx, fileID, size, mime, storageKey); err != nil {
		return nil, err
	}

	file.Size = size
	file.MIME = mime
	file.StorageKey = storageKey
	file.Status = models.FileStatusReceived
	return file, nil
}

// DownloadURL returns a presigned GET URL for a received file's payload.
// Files still waiting for an upload yield ErrorNotFound.
func (s *FileService) DownloadURL(ctx context.Context, userID, entryID, fileID string) (string, error) {
	fileRepo := s.repomanager.Files(s.db)

	file, err := fileRepo.GetByID(ctx, userID, entryID, fileID)
	if err != nil {
		return "", err
	}
	if file.Status != models.FileStatusReceived || file.StorageKey == "" {
		return "", common.ErrorNotFound
	}

	client, err := s.getS3Client()
	if err != nil {
		return "", fmt.Errorf("failed to build storage client: %w", err)
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &file.StorageKey,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}

	return req.URL, nil
}
