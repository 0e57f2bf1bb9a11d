package storage

import (
	"context"
	"errors"
	"fmt"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSOperator 透過 Google Cloud Storage API 操作儲存桶
// 公開 URL 的格式固定為 https://storage.googleapis.com/{bucket}/{key}
type GCSOperator struct {
	Client *gcs.Client
	Bucket string
}

func NewGCSOperator(client *gcs.Client, bucket string) *GCSOperator {
	return &GCSOperator{Client: client, Bucket: bucket}
}

func (g *GCSOperator) Put(ctx context.Context, key, contentType string, content []byte) (string, error) {
	const op = "GCSOperator.Put"
	writer := g.Client.Bucket(g.Bucket).Object(key).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := writer.Write(content); err != nil {
		// Close 仍然要呼叫，否則會留下未完成的上傳
		_ = writer.Close()
		return "", fmt.Errorf("[%s] Fail to write object to GCS, err=%w", op, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("[%s] Fail to finalize object in GCS, err=%w", op, err)
	}
	return g.PublicURL(key), nil
}

func (g *GCSOperator) List(ctx context.Context) ([]string, error) {
	const op = "GCSOperator.List"
	var urls []string
	it := g.Client.Bucket(g.Bucket).Objects(ctx, nil)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to list objects in GCS, err=%w", op, err)
		}
		urls = append(urls, g.PublicURL(attrs.Name))
	}
	return urls, nil
}

func (g *GCSOperator) Delete(ctx context.Context, key string) error {
	const op = "GCSOperator.Delete"
	if err := g.Client.Bucket(g.Bucket).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("[%s] Fail to delete object from GCS, err=%w", op, err)
	}
	return nil
}

func (g *GCSOperator) PublicURL(key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.Bucket, key)
}
