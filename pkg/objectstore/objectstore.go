// Package objectstore opens output and input streams by URI: a local path,
// s3://bucket/key, or a mangos socket address (tcp://, ipc://, inproc://,
// ws://) carrying a push/pull stream.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrBadURI reports a URI that names neither a path nor an S3 object.
var ErrBadURI = errors.New("unsupported object URI")

// S3Options configure the S3 client. Empty fields fall back to the AWS
// default chain (environment, shared config, instance role).
type S3Options struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint" validate:"omitempty,url"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
	PathStyle       bool   `yaml:"path_style"`
}

// Location is a parsed URI.
type Location struct {
	Scheme string // "file", "s3" or "socket"
	Bucket string
	Key    string
	Path   string
}

// Parse splits uri into a Location. Anything without a scheme is a path.
func Parse(uri string) (Location, error) {
	if !strings.Contains(uri, "://") {
		if uri == "" {
			return Location{}, fmt.Errorf("%w: empty", ErrBadURI)
		}
		return Location{Scheme: "file", Path: uri}, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrBadURI, err)
	}
	switch u.Scheme {
	case "file":
		return Location{Scheme: "file", Path: u.Path}, nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Location{}, fmt.Errorf("%w: %q needs a bucket and a key", ErrBadURI, uri)
		}
		return Location{Scheme: "s3", Bucket: u.Host, Key: key}, nil
	default:
		if socketSchemes[u.Scheme] {
			return Location{Scheme: "socket", Path: uri}, nil
		}
		return Location{}, fmt.Errorf("%w: scheme %q", ErrBadURI, u.Scheme)
	}
}

func (l Location) String() string {
	if l.Scheme == "s3" {
		return "s3://" + l.Bucket + "/" + l.Key
	}
	return l.Path
}

// objectAPI is the part of the S3 client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store opens streams for URIs. The S3 client is created on first use.
type Store struct {
	opts   S3Options
	client objectAPI
}

// New creates a store.
func New(opts S3Options) *Store {
	return &Store{opts: opts}
}

func (s *Store) s3Client(ctx context.Context) (objectAPI, error) {
	if s.client != nil {
		return s.client, nil
	}
	var loaders []func(*config.LoadOptions) error
	if s.opts.Region != "" {
		loaders = append(loaders, config.WithRegion(s.opts.Region))
	}
	if s.opts.AccessKeyID != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.opts.AccessKeyID, s.opts.SecretAccessKey, s.opts.SessionToken),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	s.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.opts.Endpoint)
		}
		o.UsePathStyle = s.opts.PathStyle
	})
	return s.client, nil
}

// Create opens uri for writing. S3 objects are staged in a temporary file
// and uploaded by Close. Socket addresses are dialed as a push stream.
func (s *Store) Create(ctx context.Context, uri string) (io.WriteCloser, error) {
	loc, err := Parse(uri)
	if err != nil {
		return nil, err
	}
	switch loc.Scheme {
	case "file":
		f, err := os.Create(loc.Path)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", loc.Path, err)
		}
		return f, nil
	case "socket":
		ps, err := dialPush(loc.Path)
		if err != nil {
			return nil, err
		}
		return ps, nil
	}

	client, err := s.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp("", "rlbwt-upload-*")
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", loc, err)
	}
	return &upload{ctx: ctx, client: client, loc: loc, tmp: tmp}, nil
}

// Open opens uri for reading. Socket addresses are listened on as a pull
// stream that ends when the pusher closes.
func (s *Store) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	loc, err := Parse(uri)
	if err != nil {
		return nil, err
	}
	switch loc.Scheme {
	case "file":
		f, err := os.Open(loc.Path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", loc.Path, err)
		}
		return f, nil
	case "socket":
		ps, err := listenPull(loc.Path)
		if err != nil {
			return nil, err
		}
		return ps, nil
	}

	client, err := s.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", loc, err)
	}
	return out.Body, nil
}

// upload buffers writes in a temporary file and puts the object on Close.
type upload struct {
	ctx    context.Context
	client objectAPI
	loc    Location
	tmp    *os.File
	closed bool
}

func (u *upload) Write(p []byte) (int, error) {
	return u.tmp.Write(p)
}

func (u *upload) Close() error {
	if u.closed {
		return nil
	}
	u.closed = true
	defer os.Remove(u.tmp.Name())
	defer u.tmp.Close()

	if _, err := u.tmp.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind staged %s: %w", u.loc, err)
	}
	_, err := u.client.PutObject(u.ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.loc.Bucket),
		Key:    aws.String(u.loc.Key),
		Body:   u.tmp,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", u.loc, err)
	}
	return nil
}
