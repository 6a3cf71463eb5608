// Package s3 is the archival bpstore.Store backend: accepted payloads are
// mirrored to an S3 (or S3-compatible) bucket under a configurable prefix,
// keyed by SID, so a payload storage handle survives process restarts and
// can be inspected/replayed out-of-band. Queue ordering (which SIDs are
// still pending Dequeue) is kept in process memory and rehydrated from the
// bucket listing on New, since S3 itself has no native FIFO primitive.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dtn-stack/bplib/pkg/bpstore"
)

// Config names the bucket and key prefix this backend mirrors into;
// pkg/config fills it from a storage handle's s3 section.
type Config struct {
	Client *s3.Client
	Bucket string
	Prefix string // e.g. "bplib/payloads/"
}

// Store is an S3-backed storage handle.
type Store struct {
	client *s3.Client
	bucket string
	prefix string

	mu    sync.Mutex
	queue []bpstore.SID
	next  bpstore.SID
}

// New opens a Store over cfg.Bucket/cfg.Prefix and rehydrates its pending
// queue by listing existing objects under the prefix. Every SID mirrored
// into the bucket is treated as still pending: the backend cannot tell, from
// the object listing alone, which ones the application already drained
// before a restart, so it re-offers all of them (at-least-once, not
// exactly-once). The monotonic SID counter resumes one past the highest
// key observed.
func New(ctx context.Context, cfg Config) (*Store, error) {
	s := &Store{client: cfg.Client, bucket: cfg.Bucket, prefix: cfg.Prefix}

	paginator := s3.NewListObjectsV2Paginator(cfg.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(cfg.Bucket),
		Prefix: aws.String(cfg.Prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("bpstore/s3: list %s/%s: %w", cfg.Bucket, cfg.Prefix, err)
		}
		for _, obj := range page.Contents {
			sid, ok := sidFromKey(cfg.Prefix, aws.ToString(obj.Key))
			if !ok {
				continue
			}
			s.queue = append(s.queue, sid)
			if sid+1 > s.next {
				s.next = sid + 1
			}
		}
	}
	sort.Slice(s.queue, func(i, j int) bool { return s.queue[i] < s.queue[j] })

	return s, nil
}

// objectKey zero-pads the SID to a fixed width so keys sort lexicographically
// in numeric order under a plain ListObjectsV2 prefix scan.
func objectKey(prefix string, sid bpstore.SID) string {
	return fmt.Sprintf("%s%020d", prefix, uint64(sid))
}

func sidFromKey(prefix, key string) (bpstore.SID, bool) {
	rest := strings.TrimPrefix(key, prefix)
	n, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return bpstore.SID(n), true
}

// Enqueue implements bpstore.Store. The SID is drawn from a monotonic
// in-process counter seeded by the highest key observed at New time, since
// S3 has no native auto-increment.
func (s *Store) Enqueue(ctx context.Context, data []byte) (bpstore.SID, error) {
	s.mu.Lock()
	sid := s.next
	s.next++
	s.mu.Unlock()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(s.prefix, sid)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return bpstore.SID(0), fmt.Errorf("bpstore/s3: put %d: %w", sid, err)
	}

	s.mu.Lock()
	s.queue = append(s.queue, sid)
	s.mu.Unlock()
	return sid, nil
}

// Dequeue implements bpstore.Store.
func (s *Store) Dequeue(ctx context.Context) ([]byte, bpstore.SID, error) {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return nil, bpstore.SID(0), bpstore.ErrEmpty
	}
	sid := s.queue[0]
	s.queue = s.queue[1:]
	s.mu.Unlock()

	data, err := s.getObject(ctx, sid)
	if err != nil {
		return nil, bpstore.SID(0), err
	}
	return data, sid, nil
}

// Retrieve implements bpstore.Store.
func (s *Store) Retrieve(sid bpstore.SID) ([]byte, error) {
	return s.getObject(context.Background(), sid)
}

func (s *Store) getObject(ctx context.Context, sid bpstore.SID) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(s.prefix, sid)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, bpstore.ErrNotFound
		}
		return nil, fmt.Errorf("bpstore/s3: get %d: %w", sid, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("bpstore/s3: read %d: %w", sid, err)
	}
	return data, nil
}

// Relinquish implements bpstore.Store.
func (s *Store) Relinquish(sid bpstore.SID) error {
	_, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(s.prefix, sid)),
	})
	if err != nil {
		return fmt.Errorf("bpstore/s3: delete %d: %w", sid, err)
	}
	return nil
}

// GetCount implements bpstore.Store.
func (s *Store) GetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Close implements bpstore.Store. S3 objects are already durable; there is
// no local handle to release.
func (s *Store) Close() error { return nil }

var _ bpstore.Store = (*Store)(nil)
