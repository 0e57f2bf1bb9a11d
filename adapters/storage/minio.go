package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"

	"github.com/minio/minio-go/v7"
)

// MinioOperator 透過 MinIO SDK 操作任何相容 S3 協議的物件儲存服務
// 適合本地開發或自架的儲存後端
type MinioOperator struct {
	Client *minio.Client
	Bucket string
	// PublicEndpoint 是瀏覽器可以直接存取的基底 URL。
	PublicEndpoint *url.URL
}

func NewMinioOperator(client *minio.Client, bucket, publicBaseURL string) (*MinioOperator, error) {
	const op = "NewMinioOperator"
	publicEndpoint, err := url.Parse(publicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to parse public base URL, err=%w", op, err)
	}
	return &MinioOperator{Client: client, Bucket: bucket, PublicEndpoint: publicEndpoint}, nil
}

func (m *MinioOperator) Put(ctx context.Context, key, contentType string, content []byte) (string, error) {
	const op = "MinioOperator.Put"
	_, err := m.Client.PutObject(ctx, m.Bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to upload object to MinIO, err=%w", op, err)
	}
	return m.PublicURL(key), nil
}

func (m *MinioOperator) List(ctx context.Context) ([]string, error) {
	const op = "MinioOperator.List"
	var urls []string
	// ListObjects 內部會處理分頁，channel 會把所有物件送完
	for object := range m.Client.ListObjects(ctx, m.Bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, fmt.Errorf("[%s] Fail to list objects in MinIO, err=%w", op, object.Err)
		}
		urls = append(urls, m.PublicURL(object.Key))
	}
	return urls, nil
}

func (m *MinioOperator) Delete(ctx context.Context, key string) error {
	const op = "MinioOperator.Delete"
	if err := m.Client.RemoveObject(ctx, m.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("[%s] Fail to delete object from MinIO, err=%w", op, err)
	}
	return nil
}

func (m *MinioOperator) PublicURL(key string) string {
	uri := *m.PublicEndpoint
	uri.Path = path.Join("/", uri.Path, key)
	return uri.String()
}
