package camera

import (
	"context"
	"time"
)

// Registry stores camera records.
type Registry interface {
	List(ctx context.Context) ([]Camera, error)
	Get(ctx context.Context, id int64) (Camera, error)
	GetByCameraID(ctx context.Context, cameraID string) (Camera, error)
	Create(ctx context.Context, in Input) (Camera, error)
	Update(ctx context.Context, id int64, in Input) (Camera, error)
	Delete(ctx context.Context, id int64) error
	RecordDetection(ctx context.Context, cameraID string, at time.Time) error
}

// Seed creates every input in order and returns the stored records.
func Seed(ctx context.Context, r Registry, inputs []Input) ([]Camera, error) {
	out := make([]Camera, 0, len(inputs))
	for _, in := range inputs {
		c, err := r.Create(ctx, in)
		if err != nil {
			name := "<unnamed>"
			if in.CameraID != nil {
				name = *in.CameraID
			}
			return out, &SeedError{CameraID: name, Err: err}
		}
		out = append(out, c)
	}
	return out, nil
}

// SeedError reports which fixture camera failed to load.
type SeedError struct {
	CameraID string
	Err      error
}

func (e *SeedError) Error() string { return "seed camera " + e.CameraID + ": " + e.Err.Error() }

func (e *SeedError) Unwrap() error { return e.Err }
