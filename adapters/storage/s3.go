package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Operator struct {
	// Client 是 S3 客戶端。
	Client *s3.Client
	// Bucket 是 S3 存儲桶的名稱。
	Bucket string
	// PublicEndpoint 是 S3 存儲桶的公開 Endpoint。
	PublicEndpoint *url.URL
}

func NewS3Operator(client *s3.Client, bucket, publicBaseURL string) (*S3Operator, error) {
	const op = "NewS3Operator"
	publicEndpoint, err := url.Parse(publicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to parse public base URL, err=%w", op, err)
	}
	return &S3Operator{Client: client, Bucket: bucket, PublicEndpoint: publicEndpoint}, nil
}

func (s *S3Operator) Put(ctx context.Context, key, contentType string, content []byte) (string, error) {
	const op = "S3Operator.Put"
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to upload object to S3, err=%w", op, err)
	}
	return s.PublicURL(key), nil
}

func (s *S3Operator) List(ctx context.Context) ([]string, error) {
	const op = "S3Operator.List"
	var urls []string
	// 透過 paginator 列舉所有物件，即使儲存桶內容超過單頁上限
	paginator := s3.NewListObjectsV2Paginator(s.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to list objects in S3, err=%w", op, err)
		}
		for _, object := range page.Contents {
			urls = append(urls, s.PublicURL(aws.ToString(object.Key)))
		}
	}
	return urls, nil
}

func (s *S3Operator) Delete(ctx context.Context, key string) error {
	const op = "S3Operator.Delete"
	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("[%s] Fail to delete object from S3, err=%w", op, err)
	}
	return nil
}

// publicURL 把 key 接在公開 Endpoint 後面，不做簽章也沒有時效
func (s *S3Operator) PublicURL(key string) string {
	uri := *s.PublicEndpoint
	uri.Path = path.Join("/", uri.Path, key)
	return uri.String()
}
