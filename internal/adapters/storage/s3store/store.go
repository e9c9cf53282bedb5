// Package s3store keeps saved models as JSON objects in an S3 bucket.
//
// Layout under the configured prefix:
//
//	models/{id}.json            the model
//	names/{owner}/{name hash}   id of the owner's model with that folded name
//	slugs/{slug}                id of a model that has been published
package s3store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/okian/fanhop/internal/adapters/storage"
)

// API is the subset of the S3 client the store uses.
type API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix roots every key under prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		prefix = strings.Trim(prefix, "/")
		if prefix != "" {
			s.prefix = prefix + "/"
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is a storage.Store over S3 objects.
type Store struct {
	client API
	bucket string
	prefix string
	now    func() time.Time

	// serializes read-modify-write sequences from this process
	mu sync.Mutex
}

var _ storage.Store = (*Store)(nil)

// New wraps an existing client.
func New(client API, bucket string, opts ...Option) *Store {
	s := &Store{client: client, bucket: bucket, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the default AWS configuration (environment, shared files),
// verifies the bucket is reachable and returns a Store.
func Open(ctx context.Context, bucket string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return nil, fmt.Errorf("head bucket %s: %w", bucket, err)
	}
	return New(client, bucket, opts...), nil
}

// Close implements storage.Store.
func (s *Store) Close() error { return nil }

func (s *Store) modelKey(id string) string {
	return s.prefix + "models/" + url.PathEscape(id) + ".json"
}

func (s *Store) ownerPrefix(ownerID string) string {
	return s.prefix + "names/" + url.PathEscape(ownerID) + "/"
}

func (s *Store) nameKey(ownerID, name string) string {
	sum := sha256.Sum256([]byte(storage.NameKey(name)))
	return s.ownerPrefix(ownerID) + hex.EncodeToString(sum[:16])
}

func (s *Store) slugKey(slug string) string {
	return s.prefix + "slugs/" + url.PathEscape(slug)
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound")
}

func (s *Store) getObject(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) putObject(ctx context.Context, key, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *Store) deleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// pointer reads an index object holding a model id.
func (s *Store) pointer(ctx context.Context, key string) (string, error) {
	data, err := s.getObject(ctx, key)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *Store) putModel(ctx context.Context, m storage.Model) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model %s: %w", m.ID, err)
	}
	return s.putObject(ctx, s.modelKey(m.ID), "application/json", data)
}

// listPointers returns the model ids stored in every index object under prefix.
func (s *Store) listPointers(ctx context.Context, prefix string) ([]string, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	var ids []string
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			id, err := s.pointer(ctx, aws.ToString(obj.Key))
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Store) modelsFor(ctx context.Context, ids []string, keep func(storage.Model) bool) ([]storage.Model, error) {
	out := make([]storage.Model, 0, len(ids))
	for _, id := range ids {
		m, err := s.Get(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if keep(m) {
			out = append(out, m)
		}
	}
	storage.SortNewestFirst(out)
	return out, nil
}

// Save implements storage.Store.
func (s *Store) Save(ctx context.Context, req storage.SaveRequest) (storage.Model, bool, error) {
	if err := req.Validate(); err != nil {
		return storage.Model{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	nameKey := s.nameKey(req.OwnerID, req.Name)
	var existing storage.Model
	id, err := s.pointer(ctx, nameKey)
	switch {
	case err == nil:
		existing, err = s.Get(ctx, id)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return storage.Model{}, false, err
		}
	case !errors.Is(err, storage.ErrNotFound):
		return storage.Model{}, false, err
	}
	updated := existing.ID != ""

	m := storage.Apply(existing, req, s.now().UTC())
	if err := s.putModel(ctx, m); err != nil {
		return storage.Model{}, false, err
	}
	if !updated {
		if err := s.putObject(ctx, nameKey, "text/plain", []byte(m.ID)); err != nil {
			return storage.Model{}, false, err
		}
	}
	return m, updated, nil
}

// Get implements storage.Store.
func (s *Store) Get(ctx context.Context, id string) (storage.Model, error) {
	data, err := s.getObject(ctx, s.modelKey(id))
	if err != nil {
		return storage.Model{}, err
	}
	var m storage.Model
	if err := json.Unmarshal(data, &m); err != nil {
		return storage.Model{}, fmt.Errorf("decode model %s: %w", id, err)
	}
	return m, nil
}

// List implements storage.Store.
func (s *Store) List(ctx context.Context, ownerID string) ([]storage.Model, error) {
	ids, err := s.listPointers(ctx, s.ownerPrefix(ownerID))
	if err != nil {
		return nil, err
	}
	return s.modelsFor(ctx, ids, func(m storage.Model) bool { return m.OwnerID == ownerID })
}

// SetPublic implements storage.Store.
func (s *Store) SetPublic(ctx context.Context, ownerID, id string, public bool) (storage.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.Get(ctx, id)
	if err != nil {
		return storage.Model{}, err
	}
	if m.OwnerID != ownerID {
		return storage.Model{}, storage.ErrNotFound
	}
	if public && m.Slug == "" {
		if m.Slug, err = storage.NewSlug(); err != nil {
			return storage.Model{}, fmt.Errorf("generate slug: %w", err)
		}
		if err := s.putObject(ctx, s.slugKey(m.Slug), "text/plain", []byte(m.ID)); err != nil {
			return storage.Model{}, err
		}
	}
	m.Public = public
	m.UpdatedAt = s.now().UTC()
	if err := s.putModel(ctx, m); err != nil {
		return storage.Model{}, err
	}
	return m, nil
}

// Delete implements storage.Store.
func (s *Store) Delete(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if m.OwnerID != ownerID {
		return storage.ErrNotFound
	}
	if err := s.deleteObject(ctx, s.modelKey(id)); err != nil {
		return err
	}
	if err := s.deleteObject(ctx, s.nameKey(ownerID, m.Name)); err != nil {
		return err
	}
	if m.Slug != "" {
		return s.deleteObject(ctx, s.slugKey(m.Slug))
	}
	return nil
}

// GetBySlug implements storage.Store.
func (s *Store) GetBySlug(ctx context.Context, slug string) (storage.Model, error) {
	id, err := s.pointer(ctx, s.slugKey(slug))
	if err != nil {
		return storage.Model{}, err
	}
	m, err := s.Get(ctx, id)
	if err != nil {
		return storage.Model{}, err
	}
	if !m.Public {
		return storage.Model{}, storage.ErrNotFound
	}
	return m, nil
}

// ListPublic implements storage.Store.
func (s *Store) ListPublic(ctx context.Context) ([]storage.Model, error) {
	ids, err := s.listPointers(ctx, s.prefix+"slugs/")
	if err != nil {
		return nil, err
	}
	return s.modelsFor(ctx, ids, func(m storage.Model) bool { return m.Public })
}
