package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/slicefinder/blobstore"
	minioblob "github.com/hupe1980/slicefinder/blobstore/minio"
	s3blob "github.com/hupe1980/slicefinder/blobstore/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// location is a parsed dataset or output address.
type location struct {
	scheme   string // "file", "s3" or "minio"
	endpoint string // minio only
	bucket   string
	key      string // blob name inside the store
	dir      string // file only
}

// parseLocation accepts a plain path, file://path, s3://bucket/key or
// minio://endpoint/bucket/key.
func parseLocation(uri string) (location, error) {
	switch {
	case strings.HasPrefix(uri, "s3://"):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, "s3://"), "/")
		if !ok || bucket == "" || key == "" {
			return location{}, fmt.Errorf("invalid s3 location %q, want s3://bucket/key", uri)
		}
		return location{scheme: "s3", bucket: bucket, key: key}, nil

	case strings.HasPrefix(uri, "minio://"):
		parts := strings.SplitN(strings.TrimPrefix(uri, "minio://"), "/", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return location{}, fmt.Errorf("invalid minio location %q, want minio://endpoint/bucket/key", uri)
		}
		return location{scheme: "minio", endpoint: parts[0], bucket: parts[1], key: parts[2]}, nil

	default:
		p := strings.TrimPrefix(uri, "file://")
		if p == "" {
			return location{}, fmt.Errorf("empty location")
		}
		return location{scheme: "file", dir: filepath.Dir(p), key: filepath.Base(p)}, nil
	}
}

// stores opens blob stores for locations, reusing clients per bucket.
type stores struct {
	minioSecure bool
	cache       map[string]blobstore.BlobStore
	s3Client    *awss3.Client
}

func newStores(minioSecure bool) *stores {
	return &stores{minioSecure: minioSecure, cache: make(map[string]blobstore.BlobStore)}
}

func (s *stores) open(ctx context.Context, loc location) (blobstore.BlobStore, error) {
	id := loc.scheme + "|" + loc.endpoint + "|" + loc.bucket + "|" + loc.dir
	if st, ok := s.cache[id]; ok {
		return st, nil
	}

	var st blobstore.BlobStore
	switch loc.scheme {
	case "s3":
		if s.s3Client == nil {
			cfg, err := awsconfig.LoadDefaultConfig(ctx)
			if err != nil {
				return nil, fmt.Errorf("load aws config: %w", err)
			}
			s.s3Client = awss3.NewFromConfig(cfg)
		}
		st = s3blob.NewStore(s.s3Client, loc.bucket, "")

	case "minio":
		client, err := minio.New(loc.endpoint, &minio.Options{
			Creds: credentials.NewChainCredentials([]credentials.Provider{
				&credentials.EnvMinio{},
				&credentials.EnvAWS{},
			}),
			Secure: s.minioSecure,
			Region: os.Getenv("MINIO_REGION"),
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		st = minioblob.NewStore(client, loc.bucket, "")

	default:
		st = blobstore.NewLocalStore(loc.dir)
	}

	s.cache[id] = st
	return st, nil
}
