package storage

import (
	"context"
	"encoding/json"
	"fmt"

	gcs "cloud.google.com/go/storage"

	"github.com/turfline/leadchat/internal/models"
)

type GCSArchiver struct {
	client *gcs.Client
	bucket string
}

func NewGCSArchiver(ctx context.Context, bucket string) (*GCSArchiver, error) {
	c, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCSArchiver{client: c, bucket: bucket}, nil
}

func (a *GCSArchiver) Close() error { return a.client.Close() }

func (a *GCSArchiver) ArchiveSession(ctx context.Context, s *models.Session) (string, error) {
	objectName := fmt.Sprintf("transcripts/%s.json", s.SessionID)
	obj := a.client.Bucket(a.bucket).Object(objectName)

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"

	if err := json.NewEncoder(w).Encode(s); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	return fmt.Sprintf("gs://%s/%s", a.bucket, objectName), nil
}
