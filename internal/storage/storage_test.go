package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "tmp/a.png", want: "tmp/a.png"},
		{in: "/tmp/a.png", want: "tmp/a.png"},
		{in: "../etc/passwd", wantErr: true},
		{in: "tmp/../../x", wantErr: true},
		{in: `tmp\a.png`, wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := CleanKey(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProductImageKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "products/3/14/a.png", ProductImageKey(3, 14, "tmp/upload/a.png"))
}

func TestLocalMover(t *testing.T) {
	root := t.TempDir()
	m := NewLocalMover(root)
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "tmp/a.png", strings.NewReader("img"), 3, "image/png"))
	require.NoError(t, m.Move(ctx, "tmp/a.png", "products/1/2/a.png"))

	data, err := os.ReadFile(filepath.Join(root, "products", "1", "2", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))

	_, err = os.Stat(filepath.Join(root, "tmp", "a.png"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	err = m.Move(ctx, "tmp/missing.png", "products/1/2/b.png")
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, m.Delete(ctx, "products/1/2/a.png"))
	require.NoError(t, m.Delete(ctx, "products/1/2/a.png"))
}

type fakeS3 struct {
	copies  []*s3.CopyObjectInput
	deletes []string
}

func (f *fakeS3) PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) CopyObject(_ context.Context, in *s3.CopyObjectInput, _ ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	f.copies = append(f.copies, in)
	return &s3.CopyObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Mover_MoveCopiesThenDeletes(t *testing.T) {
	api := &fakeS3{}
	m := &S3Mover{api: api, bucket: "media"}

	require.NoError(t, m.Move(context.Background(), "tmp/a.png", "products/1/2/a.png"))

	require.Len(t, api.copies, 1)
	assert.Equal(t, "media/tmp/a.png", aws.ToString(api.copies[0].CopySource))
	assert.Equal(t, "products/1/2/a.png", aws.ToString(api.copies[0].Key))
	assert.Equal(t, []string{"tmp/a.png"}, api.deletes)

	assert.ErrorIs(t, m.Move(context.Background(), "../a", "b"), ErrInvalidKey)
}

func TestNewS3Mover_Unconfigured(t *testing.T) {
	assert.Nil(t, NewS3Mover(S3Config{Endpoint: "http://localhost:9000"}))
}
