package snapshot

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type memoryRepo struct {
	mu    sync.Mutex
	snaps map[int64]Snapshot
	fail  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{snaps: make(map[int64]Snapshot)}
}

func (r *memoryRepo) Save(_ context.Context, snap Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if _, ok := r.snaps[snap.Version]; ok {
		return ErrVersionExists
	}
	r.snaps[snap.Version] = snap
	return nil
}

func (r *memoryRepo) Latest(context.Context) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var (
		best  Snapshot
		found bool
	)
	for v, s := range r.snaps {
		if !found || v > best.Version {
			best, found = s, true
		}
	}
	if !found {
		return Snapshot{}, ErrNoSnapshot
	}
	return best, nil
}

func (r *memoryRepo) Prune(_ context.Context, keep int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	versions := make([]int64, 0, len(r.snaps))
	for v := range r.snaps {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] > versions[j] })
	var deleted int64
	for i, v := range versions {
		if i >= keep {
			delete(r.snaps, v)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memoryRepo) versions() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, 0, len(r.snaps))
	for v := range r.snaps {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type recordingPutter struct {
	keys   []string
	bodies [][]byte
}

func (p *recordingPutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	p.keys = append(p.keys, *in.Key)
	p.bodies = append(p.bodies, body)
	return &s3.PutObjectOutput{}, nil
}
