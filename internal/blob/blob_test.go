package blob

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidKey(t *testing.T) {
	for _, k := range []string{"01HX.jpg", "a", "report-1_small.jpeg"} {
		assert.True(t, ValidKey(k), k)
	}
	for _, k := range []string{"", ".", "..", "../etc/passwd", "a/b", ".hidden", "a b"} {
		assert.False(t, ValidKey(k), k)
	}
}

func TestLocalRoundTrip(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, l.Put(ctx, "photo.jpg", []byte("jpeg-bytes"), "image/jpeg"))

	rc, ct, err := l.Get(ctx, "photo.jpg")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
	assert.Equal(t, "image/jpeg", ct)

	require.NoError(t, l.Delete(ctx, "photo.jpg"))
	_, _, err = l.Get(ctx, "photo.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, l.Delete(ctx, "photo.jpg"), "deleting twice is fine")
}

func TestLocalRejectsTraversal(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, l.Put(context.Background(), "../x.jpg", nil, ""), ErrInvalidKey)
	_, _, err = l.Get(context.Background(), "../x.jpg")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

// fakeS3 keeps objects in memory.
type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	k := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	data, ok := f.objects[k]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: aws.String(f.types[k]),
	}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3RoundTrip(t *testing.T) {
	fake := newFakeS3()
	s := &S3{Client: fake, Bucket: "images", Prefix: "uploads/"}
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a.jpg", []byte("img"), "image/jpeg"))
	assert.Contains(t, fake.objects, "images/uploads/a.jpg")

	rc, ct, err := s.Get(ctx, "a.jpg")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "img", string(data))
	assert.Equal(t, "image/jpeg", ct)

	require.NoError(t, s.Delete(ctx, "a.jpg"))
	_, _, err = s.Get(ctx, "a.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}
