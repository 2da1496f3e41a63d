package snapshot

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"path"
	"slices"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/afero/gcsfs"
	"github.com/studio-b12/gowebdav"
	"golang.org/x/oauth2/google"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscredentials "github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	s3fs "github.com/looplj/afero-s3"
	googleoption "google.golang.org/api/option"
)

// Storage is a flat directory of snapshot files.
type Storage interface {
	Write(ctx context.Context, name string, data []byte) error
	Read(ctx context.Context, name string) ([]byte, error)
	// List returns file names in lexical order.
	List(ctx context.Context) ([]string, error)
	Remove(ctx context.Context, name string) error
}

// NewStorage builds the backend selected by cfg.Type.
func NewStorage(ctx context.Context, cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageFS, "":
		dir := cfg.Directory
		if dir == "" {
			dir = "data/snapshots"
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}

		return NewFsStorage(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
	case StorageMemory:
		return NewFsStorage(afero.NewMemMapFs()), nil
	case StorageS3:
		fs, err := createS3Fs(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}

		return NewFsStorage(fs), nil
	case StorageGCS:
		fs, err := createGcsFs(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}

		return NewFsStorage(fs), nil
	case StorageWebDAV:
		return NewWebDAVStorage(cfg.WebDAV)
	default:
		return nil, fmt.Errorf("unknown snapshot storage type %q", cfg.Type)
	}
}

func createS3Fs(ctx context.Context, cfg S3Config) (afero.Fs, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("s3 bucket_name is required")
	}

	credProvider := awscredentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credProvider),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = lo.ToPtr(cfg.Endpoint)
		}
	})

	return s3fs.NewFsFromClient(cfg.BucketName, client), nil
}

func createGcsFs(ctx context.Context, cfg GCSConfig) (afero.Fs, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("gcs bucket_name is required")
	}

	creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.Credential), storage.ScopeFullControl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GCP credentials: %w", err)
	}

	client, err := storage.NewClient(ctx, googleoption.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	fs, err := gcsfs.NewGcsFSFromClient(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS filesystem: %w", err)
	}

	return afero.NewBasePathFs(fs, cfg.BucketName), nil
}

// FsStorage keeps snapshots at the root of an afero filesystem.
type FsStorage struct {
	fs afero.Fs
}

func NewFsStorage(fs afero.Fs) *FsStorage {
	return &FsStorage{fs: fs}
}

func (s *FsStorage) Write(_ context.Context, name string, data []byte) error {
	return afero.WriteFile(s.fs, "/"+name, data, 0o644)
}

func (s *FsStorage) Read(_ context.Context, name string) ([]byte, error) {
	return afero.ReadFile(s.fs, "/"+name)
}

func (s *FsStorage) List(_ context.Context) ([]string, error) {
	files, err := afero.ReadDir(s.fs, "/")
	if err != nil {
		return nil, err
	}

	names := lo.FilterMap(files, func(f os.FileInfo, _ int) (string, bool) {
		return f.Name(), !f.IsDir()
	})
	slices.Sort(names)

	return names, nil
}

func (s *FsStorage) Remove(_ context.Context, name string) error {
	return s.fs.Remove("/" + name)
}

// WebDAVStorage keeps snapshots in one remote WebDAV collection.
type WebDAVStorage struct {
	client *gowebdav.Client
	dir    string
}

func NewWebDAVStorage(cfg WebDAVConfig) (*WebDAVStorage, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webdav url is required")
	}

	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)
	if cfg.InsecureSkipTLS {
		//nolint:gosec // Opt-in for self-signed servers.
		client.SetTransport(&http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		})
	}

	dir := cfg.Path
	if dir == "" {
		dir = "/"
	}

	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}

	return &WebDAVStorage{client: client, dir: dir}, nil
}

func (s *WebDAVStorage) Write(_ context.Context, name string, data []byte) error {
	if err := s.client.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create webdav directory: %w", err)
	}

	return s.client.Write(path.Join(s.dir, name), data, 0o644)
}

func (s *WebDAVStorage) Read(_ context.Context, name string) ([]byte, error) {
	return s.client.Read(path.Join(s.dir, name))
}

func (s *WebDAVStorage) List(_ context.Context) ([]string, error) {
	files, err := s.client.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	names := lo.FilterMap(files, func(f os.FileInfo, _ int) (string, bool) {
		return f.Name(), !f.IsDir()
	})
	slices.Sort(names)

	return names, nil
}

func (s *WebDAVStorage) Remove(_ context.Context, name string) error {
	return s.client.Remove(path.Join(s.dir, name))
}
