package logics

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MediaService uploads post attachments to S3 and returns public URLs for the
// PostMedia rows.
type MediaService struct {
	s3Client      *s3.Client
	bucketName    string
	publicBaseURL string
	logger        *zap.Logger
}

// NewMediaService creates a new instance of MediaService.
func NewMediaService(s3Client *s3.Client, bucketName, publicBaseURL string, logger *zap.Logger) *MediaService {
	return &MediaService{
		s3Client:      s3Client,
		bucketName:    bucketName,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

// Upload stores the file under posts/{postID}/{uuid} and returns the public
// URL to persist on the media row. Attachments are world-readable: the bucket
// serves family photos to the donor-facing app.
func (ms *MediaService) Upload(ctx context.Context, postID string, file multipart.File, header *multipart.FileHeader) (string, error) {
	defer file.Close()

	fileID := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(header.Filename))
	s3Key := fmt.Sprintf("posts/%s/%s%s", postID, fileID, ext)

	putInput := &s3.PutObjectInput{
		Bucket:      aws.String(ms.bucketName),
		Key:         aws.String(s3Key),
		Body:        file,
		ContentType: aws.String(header.Header.Get("Content-Type")),
		ACL:         s3types.ObjectCannedACLPublicRead,
	}
	if _, err := ms.s3Client.PutObject(ctx, putInput); err != nil {
		return "", fmt.Errorf("failed to upload media to s3: %w", err)
	}

	url := fmt.Sprintf("%s/%s", ms.publicBaseURL, s3Key)
	ms.logger.Info("post media uploaded",
		zap.String("post_id", postID),
		zap.String("key", s3Key),
	)
	return url, nil
}

// Delete removes an uploaded object by its public URL. Used when a media row
// is detached from its post.
func (ms *MediaService) Delete(ctx context.Context, fileURL string) error {
	key := strings.TrimPrefix(fileURL, ms.publicBaseURL+"/")
	if key == fileURL || key == "" {
		return fmt.Errorf("file url %q is not under the media base url", fileURL)
	}
	deleteInput := &s3.DeleteObjectInput{
		Bucket: aws.String(ms.bucketName),
		Key:    aws.String(key),
	}
	if _, err := ms.s3Client.DeleteObject(ctx, deleteInput); err != nil {
		return fmt.Errorf("failed to delete media from s3: %w", err)
	}
	return nil
}
