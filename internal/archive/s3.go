// Package archive writes finished tournaments to S3-compatible object
// storage before they are purged from the database.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"poker-platform/internal/tournament"
	domain "poker-platform/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

var ErrNoBucket = errors.New("archive bucket is not configured")

type Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Prefix          string `mapstructure:"prefix"`
}

func (c Config) Enabled() bool { return c.Bucket != "" }

// putter is the part of the S3 client the archiver uses.
type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver stores one JSON document per tournament.
type S3Archiver struct {
	client putter
	bucket string
	prefix string
}

var _ tournament.Archiver = (*S3Archiver)(nil)

// New builds the client from cfg. Static keys are used when given,
// otherwise the default AWS credential chain applies. A custom endpoint
// (R2, MinIO) switches to path-style addressing.
func New(ctx context.Context, cfg Config) (*S3Archiver, error) {
	if !cfg.Enabled() {
		return nil, ErrNoBucket
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load archive config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	log.Info().Str("component", "archive").Str("bucket", cfg.Bucket).Msg("archive enabled")
	return &S3Archiver{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Document is the archived form of a tournament.
type Document struct {
	Tournament domain.Tournament    `json:"tournament"`
	Standings  []domain.Participant `json:"standings"`
	History    []domain.HandHistory `json:"history"`
	ArchivedAt time.Time            `json:"archivedAt"`
}

// Key is where a tournament is stored: prefix/yyyy/mm/dd/slug.json, dated
// by when it finished.
func (a *S3Archiver) Key(t domain.Tournament) string {
	at := t.CreatedAt
	if t.FinishedAt != nil {
		at = *t.FinishedAt
	}
	at = at.UTC()
	return path.Join(a.prefix, at.Format("2006/01/02"), t.Slug+".json")
}

func (a *S3Archiver) ArchiveTournament(ctx context.Context, t domain.Tournament, participants []domain.Participant, history []domain.HandHistory) error {
	doc := Document{
		Tournament: t,
		Standings:  tournament.Standings(participants),
		History:    history,
		ArchivedAt: time.Now().UTC(),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode archive of %s: %w", t.ID, err)
	}

	key := a.Key(t)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload archive of %s: %w", t.ID, err)
	}
	log.Info().Str("component", "archive").Str("tournament_id", t.ID).
		Str("key", key).Int("hands", len(history)).Msg("tournament archived")
	return nil
}
