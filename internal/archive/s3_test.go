package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	domain "poker-platform/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func (f *fakeBucket) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Key)
	f.objects[key] = body
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestArchiveTournament_WritesStandingsAndHistory(t *testing.T) {
	bucket := &fakeBucket{objects: map[string][]byte{}, types: map[string]string{}}
	a := &S3Archiver{client: bucket, bucket: "poker", prefix: "archive"}

	finished := time.Date(2026, 2, 14, 22, 5, 0, 0, time.UTC)
	tour := domain.Tournament{ID: "t-1", Slug: "sit-go-100-ab12cd34", Kind: domain.KindSitAndGo, FinishedAt: &finished}
	participants := []domain.Participant{
		{ID: "p-1", Stack: 0, Status: domain.ParticipantEliminated},
		{ID: "p-2", Stack: 9000, Status: domain.ParticipantActive},
	}
	history := []domain.HandHistory{{TournamentID: "t-1", HandNumber: 12, Pot: 400, HandLabel: "Flush"}}

	require.NoError(t, a.ArchiveTournament(context.Background(), tour, participants, history))

	key := "archive/2026/02/14/sit-go-100-ab12cd34.json"
	require.Contains(t, bucket.objects, key)
	assert.Equal(t, "application/json", bucket.types[key])

	var doc Document
	require.NoError(t, json.Unmarshal(bucket.objects[key], &doc))
	assert.Equal(t, "t-1", doc.Tournament.ID)
	require.Len(t, doc.Standings, 2)
	assert.Equal(t, "p-2", doc.Standings[0].ID, "winner first")
	require.Len(t, doc.History, 1)
	assert.Equal(t, 400, doc.History[0].Pot)
}

func TestArchiveTournament_UploadFailureIsReturned(t *testing.T) {
	a := &S3Archiver{client: &fakeBucket{err: errors.New("access denied")}, bucket: "poker"}
	err := a.ArchiveTournament(context.Background(), domain.Tournament{ID: "t-2", Slug: "x"}, nil, nil)
	assert.ErrorContains(t, err, "access denied")
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNoBucket)
}
