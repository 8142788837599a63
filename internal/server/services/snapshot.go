package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/common"
	sc "github.com/dmitrijs2005/alarmify/internal/server/config"
	"github.com/dmitrijs2005/alarmify/internal/server/models"
	"github.com/dmitrijs2005/alarmify/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/alarmify/internal/snapshot"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putS3Object = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
	getS3Object = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in)
	}
)

// snapshotEnvelope is the subset of the snapshot wire format the server needs
// to validate a push. Alarm records stay opaque apart from their "id" field.
type snapshotEnvelope struct {
	AccountID string            `json:"account_id"`
	DeviceID  string            `json:"device_id"`
	CreatedAt time.Time         `json:"created_at"`
	Alarms    []json.RawMessage `json:"alarms"`
	Checksum  string            `json:"checksum"`
}

// SnapshotService stores the latest alarm snapshot per user. The payload goes
// to S3-compatible object storage; metadata (checksum, key, device) lives in
// PostgreSQL.
type SnapshotService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewSnapshotService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config) *SnapshotService {
	return &SnapshotService{
		db:          db,
		repomanager: repomanager,
		config:      config,
	}
}

func GetRandomStorageKey(userID string) string {
	d := time.Now()
	return fmt.Sprintf("users/%s/%d/%d/%d/%v", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *SnapshotService) getS3Client() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return client, nil
}

// Push validates the snapshot payload, stores it in object storage, and
// replaces the user's snapshot metadata. The declared checksum must match the
// recomputed one or the push is rejected with ErrChecksumMismatch.
func (s *SnapshotService) Push(ctx context.Context, userID string, payload []byte) (*models.SnapshotMeta, error) {
	var env snapshotEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed snapshot: %v", common.ErrValidation, err)
	}
	if env.DeviceID == "" {
		return nil, fmt.Errorf("%w: snapshot device_id required", common.ErrValidation)
	}
	if env.AccountID != "" && env.AccountID != userID {
		return nil, fmt.Errorf("%w: snapshot account_id does not match the authenticated user", common.ErrValidation)
	}

	sum, err := snapshot.ChecksumRaw(env.Alarms)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if sum != env.Checksum {
		return nil, fmt.Errorf("%w: declared %s computed %s", common.ErrChecksumMismatch, env.Checksum, sum)
	}

	client, err := s.getS3Client()
	if err != nil {
		return nil, fmt.Errorf("error creating s3 client: %w", err)
	}

	bucket := s.config.S3Bucket
	key := GetRandomStorageKey(userID)

	if _, err := putS3Object(client, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
		Body:   bytes.NewReader(payload),
	}); err != nil {
		return nil, fmt.Errorf("error storing snapshot: %w", err)
	}

	now := time.Now()
	meta := &models.SnapshotMeta{
		UserID:     userID,
		DeviceID:   env.DeviceID,
		Checksum:   env.Checksum,
		StorageKey: key,
		AlarmCount: len(env.Alarms),
		CreatedAt:  now,
	}

	if err := s.repomanager.Snapshots(s.db).Upsert(ctx, meta); err != nil {
		return nil, fmt.Errorf("error saving snapshot metadata: %w", err)
	}
	if err := s.repomanager.Devices(s.db).TouchLastSync(ctx, userID, env.DeviceID, now); err != nil {
		return nil, fmt.Errorf("error updating device sync time: %w", err)
	}

	return meta, nil
}

// Pull returns the user's latest snapshot payload, or ErrorNotFound when the
// user has never pushed one.
func (s *SnapshotService) Pull(ctx context.Context, userID string) ([]byte, *models.SnapshotMeta, error) {
	meta, err := s.repomanager.Snapshots(s.db).Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	client, err := s.getS3Client()
	if err != nil {
		return nil, nil, fmt.Errorf("error creating s3 client: %w", err)
	}

	bucket := s.config.S3Bucket
	out, err := getS3Object(client, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &meta.StorageKey,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error fetching snapshot: %w", err)
	}
	defer out.Body.Close()

	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading snapshot: %w", err)
	}

	return payload, meta, nil
}
