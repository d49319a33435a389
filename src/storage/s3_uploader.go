package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resource-share/src/config"
	"resource-share/src/logger"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/sirupsen/logrus"
)

const uploadSource = "resource-share-api"

// LogUploader ローテーション済みのログファイルをS3へ退避する
type LogUploader struct {
	s3Client s3iface.S3API
	bucket   string
	logger   *logrus.Logger
	now      func() time.Time
}

// NewLogUploader S3アップローダーを作成
func NewLogUploader(cfg config.S3Config, log *logrus.Logger) (*LogUploader, error) {
	awsConfig := &aws.Config{
		Region:           aws.String(cfg.Region),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		DisableSSL:       aws.Bool(!cfg.UseSSL),
		S3ForcePathStyle: aws.Bool(true), // MinIOなどのS3互換ストレージ用
	}

	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("AWSセッションの作成に失敗: %w", err)
	}

	return NewLogUploaderWithClient(s3.New(sess), cfg.Bucket, log), nil
}

// NewLogUploaderWithClient 既存のS3クライアントを使ってアップローダーを作成
func NewLogUploaderWithClient(client s3iface.S3API, bucket string, log *logrus.Logger) *LogUploader {
	if log == nil {
		log = logger.Log
	}
	return &LogUploader{
		s3Client: client,
		bucket:   bucket,
		logger:   log,
		now:      time.Now,
	}
}

// ObjectKey ログファイルの保存先キー（logs/YYYY/MM/DD/ファイル名）
func (u *LogUploader) ObjectKey(fileName string, modTime time.Time) string {
	return fmt.Sprintf("logs/%s/%s", modTime.UTC().Format("2006/01/02"), fileName)
}

// UploadLogFile ログファイルをS3にアップロード
func (u *LogUploader) UploadLogFile(ctx context.Context, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("ファイルの読み込みに失敗: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("ファイル情報の取得に失敗: %w", err)
	}

	fileName := filepath.Base(filePath)
	objectKey := u.ObjectKey(fileName, info.ModTime())

	_, err = u.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(objectKey),
		Body:        file,
		ContentType: aws.String("application/x-ndjson"),
		Metadata: map[string]*string{
			"upload-time": aws.String(u.now().Format(time.RFC3339)),
			"source":      aws.String(uploadSource),
		},
	})
	if err != nil {
		return fmt.Errorf("S3アップロードに失敗: %w", err)
	}

	u.logger.WithFields(logrus.Fields{
		"file":   fileName,
		"bucket": u.bucket,
		"key":    objectKey,
	}).Info("ログファイルをS3にアップロードしました")

	return nil
}

// UploadOldLogs maxAgeより古いログファイルをアップロードして削除し、件数を返す
// 書き込み中のログファイルは対象外
func (u *LogUploader) UploadOldLogs(ctx context.Context, logDir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return 0, fmt.Errorf("ログディレクトリの読み取りに失敗: %w", err)
	}

	current := logger.GetCurrentLogFile()
	cutoffTime := u.now().Add(-maxAge)
	uploaded := 0

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return uploaded, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}

		filePath := filepath.Join(logDir, entry.Name())
		if current != "" && filepath.Clean(current) == filepath.Clean(filePath) {
			continue
		}

		fileInfo, err := entry.Info()
		if err != nil {
			u.logger.WithError(err).WithField("file", entry.Name()).Error("ファイル情報の取得に失敗")
			continue
		}
		if !fileInfo.ModTime().Before(cutoffTime) {
			continue
		}

		if err := u.UploadLogFile(ctx, filePath); err != nil {
			u.logger.WithError(err).WithField("file", entry.Name()).Error("ログファイルのアップロードに失敗")
			continue
		}
		uploaded++

		if err := os.Remove(filePath); err != nil {
			u.logger.WithError(err).WithField("file", entry.Name()).Error("ローカルファイルの削除に失敗")
		}
	}

	return uploaded, nil
}

// Run ctxがキャンセルされるまで定期的にログをローテーションしてアップロードする
func (u *LogUploader) Run(ctx context.Context, logDir string, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	u.logger.WithFields(logrus.Fields{
		"interval": interval.String(),
		"maxAge":   maxAge.String(),
	}).Info("定期的なログアップロードを開始しました")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := logger.Rotate(); err != nil {
				u.logger.WithError(err).Error("ログファイルのローテーションに失敗")
			}
			if _, err := u.UploadOldLogs(ctx, logDir, maxAge); err != nil {
				u.logger.WithError(err).Error("定期的なログアップロードに失敗")
			}
		}
	}
}
