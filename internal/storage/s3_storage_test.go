package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appconfig "github.com/ikkim/storefront-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	lastKey string
	err     error
}

func (f *fakePresigner) PresignPutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastKey = aws.ToString(params.Key)
	return &v4.PresignedHTTPRequest{
		URL:    "https://signed.example.com/" + f.lastKey,
		Method: "PUT",
	}, nil
}

func TestS3Storage_PresignUpload(t *testing.T) {
	cfg := appconfig.S3Config{Region: "ap-southeast-1", Bucket: "shop"}

	tests := []struct {
		name        string
		filename    string
		contentType string
		folder      string
		wantErr     error
	}{
		{name: "Product image", filename: "photo.PNG", contentType: "image/png", folder: "products"},
		{name: "Avatar", filename: "me.webp", contentType: "image/webp", folder: "avatars"},
		{name: "Unknown folder", filename: "a.png", contentType: "image/png", folder: "community", wantErr: ErrInvalidFolder},
		{name: "Not an image", filename: "a.pdf", contentType: "application/pdf", folder: "news", wantErr: ErrInvalidContentType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			presigner := &fakePresigner{}
			store := NewS3StorageWithPresigner(presigner, cfg)

			resp, err := store.PresignUpload(context.Background(), tt.filename, tt.contentType, tt.folder)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, presigner.lastKey)
				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(resp.Key, tt.folder+"/"))
			assert.Equal(t, strings.ToLower(tt.filename[strings.LastIndex(tt.filename, "."):]), resp.Key[strings.LastIndex(resp.Key, "."):])
			assert.Equal(t, "https://signed.example.com/"+resp.Key, resp.UploadURL)
			assert.Equal(t, "https://shop.s3.ap-southeast-1.amazonaws.com/"+resp.Key, resp.FileURL)
		})
	}
}

func TestS3Storage_BaseURL(t *testing.T) {
	store := NewS3StorageWithPresigner(&fakePresigner{}, appconfig.S3Config{
		Bucket:  "shop",
		BaseURL: "https://cdn.example.com/",
	})
	assert.Equal(t, "https://cdn.example.com/news/x.png", store.FileURL("news/x.png"))
}

func TestS3Storage_PresignError(t *testing.T) {
	store := NewS3StorageWithPresigner(&fakePresigner{err: errors.New("boom")}, appconfig.S3Config{Bucket: "shop"})

	_, err := store.PresignUpload(context.Background(), "a.png", "image/png", "gallery")
	assert.Error(t, err)
}
