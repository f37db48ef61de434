package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/slicefinder/blobstore"
	"github.com/hupe1980/slicefinder/internal/resource"
)

type options struct {
	format      Format
	compression Compression
	ioLimit     int64
	controller  *resource.Controller
}

// Option configures matrix reads and writes.
type Option func(*options)

// WithFormat forces a format instead of deriving it from the blob name.
func WithFormat(f Format) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithCompression sets the payload compression for binary writes.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithIOLimit caps read throughput in bytes per second. 0 disables throttling.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

func applyOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.ioLimit > 0 {
		o.controller = resource.NewController(resource.Config{IOLimitBytesPerSec: o.ioLimit})
	}
	return o
}

func (o *options) formatFor(name string) (Format, error) {
	if o.format != FormatAuto {
		return o.format, nil
	}
	return FormatFor(name)
}

// ReadMatrix reads and decodes the named blob.
func ReadMatrix(ctx context.Context, store blobstore.BlobStore, name string, opts ...Option) (*Matrix, error) {
	return readMatrix(ctx, store, name, applyOptions(opts))
}

func readMatrix(ctx context.Context, store blobstore.BlobStore, name string, o *options) (*Matrix, error) {
	format, err := o.formatFor(name)
	if err != nil {
		return nil, err
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", name, err)
	}
	defer func() { _ = blob.Close() }()

	var r io.Reader = blobstore.NewReader(ctx, blob)
	if o.controller != nil {
		r = resource.NewRateLimitedReader(ctx, r, o.controller)
	}

	var m *Matrix
	switch format {
	case FormatCSV:
		m, err = DecodeCSV(r)
	case FormatIJV:
		m, err = DecodeIJV(r)
	case FormatBinary:
		var data []byte
		if data, err = io.ReadAll(r); err == nil {
			m, err = DecodeBinary(data)
		}
	default:
		err = fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", name, err)
	}
	return m, nil
}

// WriteMatrix encodes m and stores it under name.
func WriteMatrix(ctx context.Context, store blobstore.BlobStore, name string, m *Matrix, opts ...Option) error {
	o := applyOptions(opts)
	format, err := o.formatFor(name)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch format {
	case FormatCSV:
		err = EncodeCSV(&buf, m)
	case FormatIJV:
		err = EncodeIJV(&buf, m)
	case FormatBinary:
		err = EncodeBinary(&buf, m, o.compression)
	default:
		err = fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("dataset: write %s: %w", name, err)
	}

	if err := store.Put(ctx, name, buf.Bytes()); err != nil {
		return fmt.Errorf("dataset: write %s: %w", name, err)
	}
	return nil
}

// Load reads the feature matrix and error vector and validates them as a Dataset.
func Load(ctx context.Context, store blobstore.BlobStore, xName, eName string, opts ...Option) (*Dataset, error) {
	o := applyOptions(opts)

	x, err := readMatrix(ctx, store, xName, o)
	if err != nil {
		return nil, err
	}
	e, err := readMatrix(ctx, store, eName, o)
	if err != nil {
		return nil, err
	}
	return New(x, e)
}
