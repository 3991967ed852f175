package camera

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRegistry keeps cameras in process memory.
type MemoryRegistry struct {
	mu     sync.RWMutex
	nextID int64
	cams   map[int64]Camera
}

// NewMemoryRegistry returns an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{nextID: 1, cams: make(map[int64]Camera)}
}

func (r *MemoryRegistry) List(ctx context.Context) ([]Camera, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Camera, 0, len(r.cams))
	for _, c := range r.cams {
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRegistry) Get(ctx context.Context, id int64) (Camera, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cams[id]
	if !ok {
		return Camera{}, ErrNotFound
	}
	return clone(c), nil
}

func (r *MemoryRegistry) GetByCameraID(ctx context.Context, cameraID string) (Camera, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.findLocked(cameraID); ok {
		return clone(c), nil
	}
	return Camera{}, ErrNotFound
}

func (r *MemoryRegistry) Create(ctx context.Context, in Input) (Camera, error) {
	if err := in.Validate(false); err != nil {
		return Camera{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.findLocked(*in.CameraID); ok {
		return Camera{}, ErrDuplicateCameraID
	}
	c := newCamera(in)
	c.ID = r.nextID
	r.nextID++
	r.cams[c.ID] = c
	return clone(c), nil
}

func (r *MemoryRegistry) Update(ctx context.Context, id int64, in Input) (Camera, error) {
	if err := in.Validate(true); err != nil {
		return Camera{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cams[id]
	if !ok {
		return Camera{}, ErrNotFound
	}
	if in.CameraID != nil && *in.CameraID != c.CameraID {
		if _, taken := r.findLocked(*in.CameraID); taken {
			return Camera{}, ErrDuplicateCameraID
		}
	}
	apply(&c, in)
	r.cams[id] = c
	return clone(c), nil
}

func (r *MemoryRegistry) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cams[id]; !ok {
		return ErrNotFound
	}
	delete(r.cams, id)
	return nil
}

func (r *MemoryRegistry) RecordDetection(ctx context.Context, cameraID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.findLocked(cameraID)
	if !ok {
		return ErrNotFound
	}
	t := at.UTC()
	c.LastDetection = &t
	r.cams[c.ID] = c
	return nil
}

func (r *MemoryRegistry) findLocked(cameraID string) (Camera, bool) {
	for _, c := range r.cams {
		if c.CameraID == cameraID {
			return c, true
		}
	}
	return Camera{}, false
}

func clone(c Camera) Camera {
	if c.LastDetection != nil {
		t := *c.LastDetection
		c.LastDetection = &t
	}
	return c
}
