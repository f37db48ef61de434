// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	client := awss3.NewFromConfig(cfg)
//	store := s3.NewStore(client, "my-bucket", "datasets/")
//
//	ds, err := dataset.Load(ctx, store, "X.csv", "e.csv")
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - CRC32C-checked single-part puts for small blobs
//   - Multipart uploads through the s3 manager for large blobs
//   - Automatic pagination for listing
package s3
