package importer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	archiveDefaultBucket = "aluguelsaas"
	archivePrefix        = "imports/"
	archiveDefaultRegion = "sa-east-1"
)

func archiveBucket() string {
	if b := strings.TrimSpace(os.Getenv("IMPORT_S3_BUCKET")); b != "" {
		return b
	}
	return archiveDefaultBucket
}

func archiveRegion() string {
	if r := strings.TrimSpace(os.Getenv("IMPORT_S3_REGION")); r != "" {
		return r
	}
	return archiveDefaultRegion
}

// isArchiveEnabled reads env var IMPORT_S3_ENABLED to decide whether
// original spreadsheets are kept in S3. Defaults to false when unset so
// local deployments work with no AWS credentials.
func isArchiveEnabled() bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv("IMPORT_S3_ENABLED")))
	return v == "1" || v == "true" || v == "yes"
}

func buildArchiveKey(kind, batchID, filename string, content []byte) string {
	sum := sha256.Sum256(content)
	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(filename)))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("%s%s/%s_%s%s", archivePrefix, kind, batchID, hex.EncodeToString(sum[:8]), ext)
}

func detectContentType(data []byte) string {
	if len(data) == 0 {
		return "application/octet-stream"
	}
	if len(data) > 512 {
		return http.DetectContentType(data[:512])
	}
	return http.DetectContentType(data)
}

// archiveUpload keeps the originally uploaded spreadsheet in S3 for audit.
// Failures are logged and swallowed; the import itself already committed.
func archiveUpload(ctx context.Context, kind, batchID, filename string, content []byte) {
	if !isArchiveEnabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(archiveRegion()))
	if err != nil {
		log.Printf("[WARN] import archive: load AWS config: %v", err)
		return
	}
	client := s3.NewFromConfig(cfg)
	key := buildArchiveKey(kind, batchID, filename, content)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(archiveBucket()),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(detectContentType(content)),
	})
	if err != nil {
		log.Printf("[WARN] import archive: upload to s3 (bucket %s, key %s): %v", archiveBucket(), key, err)
		return
	}
	log.Printf("[Importer] archived %s upload as s3://%s/%s", kind, archiveBucket(), key)
}
