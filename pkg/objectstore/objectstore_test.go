package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	failPut error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestParse(t *testing.T) {
	tests := []struct {
		uri  string
		want Location
	}{
		{"out.lz", Location{Scheme: "file", Path: "out.lz"}},
		{"/tmp/out.lz", Location{Scheme: "file", Path: "/tmp/out.lz"}},
		{"file:///tmp/out.lz", Location{Scheme: "file", Path: "/tmp/out.lz"}},
		{"s3://bucket/dir/out.lz", Location{Scheme: "s3", Bucket: "bucket", Key: "dir/out.lz"}},
	}
	for _, tt := range tests {
		got, err := Parse(tt.uri)
		require.NoError(t, err, tt.uri)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "s3://bucket", "s3:///key", "gs://bucket/key"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrBadURI, bad)
	}

	loc, _ := Parse("s3://b/k")
	assert.Equal(t, "s3://b/k", loc.String())
}

func TestStore_LocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "factors.bin")
	st := New(S3Options{})

	w, err := st.Create(ctx, path)
	require.NoError(t, err)
	_, err = w.Write([]byte("records"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := st.Open(ctx, path)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "records", string(data))

	_, err = st.Open(ctx, filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStore_S3Upload(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}}
	st := &Store{client: fake}

	w, err := st.Create(ctx, "s3://bwt/run-1/out.bin")
	require.NoError(t, err)
	_, err = w.Write([]byte("abc"))
	require.NoError(t, err)
	_, err = w.Write([]byte("def"))
	require.NoError(t, err)
	assert.Empty(t, fake.objects, "nothing is uploaded before Close")

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, []byte("abcdef"), fake.objects["bwt/run-1/out.bin"])

	r, err := st.Open(ctx, "s3://bwt/run-1/out.bin")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(data))

	_, err = st.Open(ctx, "s3://bwt/missing")
	assert.Error(t, err)
}

func TestStore_S3UploadFailure(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, failPut: errors.New("AccessDenied")}
	st := &Store{client: fake}

	w, err := st.Create(context.Background(), "s3://bwt/out.bin")
	require.NoError(t, err)
	_, err = w.Write([]byte("x"))
	require.NoError(t, err)
	err = w.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put s3://bwt/out.bin")
}
