package alert

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"heimdall/internal/geo"
)

// Input is a new alert as reported by a detector or operator.
type Input struct {
	DetectedAt          *time.Time        `json:"detectedAt,omitempty" yaml:"detected_at"`
	CameraID            string            `json:"cameraId" yaml:"camera_id" validate:"required,max=64"`
	Latitude            float64           `json:"latitude" yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude           float64           `json:"longitude" yaml:"longitude" validate:"gte=-180,lte=180"`
	Altitude            float64           `json:"altitude" yaml:"altitude" validate:"gte=0,lte=10000"`
	Confidence          float64           `json:"confidence" yaml:"confidence" validate:"gte=0,lte=100"`
	Speed               float64           `json:"speed" yaml:"speed" validate:"gte=0,lte=1000"`
	Heading             float64           `json:"heading" yaml:"heading" validate:"gte=0,lte=360"`
	DroneType           DroneType         `json:"droneType" yaml:"drone_type" validate:"omitempty,oneof=Unknown Commercial Military Racing"`
	ThreatLevel         ThreatLevel       `json:"threatLevel" yaml:"threat_level" validate:"required,oneof=Low Medium High Critical"`
	Status              Status            `json:"status" yaml:"status" validate:"omitempty,oneof=active tracking lost neutralized"`
	EstimatedTrajectory []TrajectoryPoint `json:"estimatedTrajectory,omitempty" yaml:"estimated_trajectory" validate:"omitempty,dive"`
	Notes               string            `json:"notes,omitempty" yaml:"notes" validate:"max=2000"`
}

// Update changes the mutable parts of an alert. Event and Status are
// exclusive; both go through the lifecycle rules.
type Update struct {
	Event       *Event       `json:"event,omitempty" validate:"omitempty,oneof=contact lose reacquire neutralize"`
	Status      *Status      `json:"status,omitempty" validate:"omitempty,oneof=active tracking lost neutralized"`
	ThreatLevel *ThreatLevel `json:"threatLevel,omitempty" validate:"omitempty,oneof=Low Medium High Critical"`
	Notes       *string      `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every problem found in an alert input.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return "invalid drone alert: " + strings.Join(parts, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

func check(v any) error {
	err := inputValidator().Struct(v)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate drone alert: %w", err)
	}
	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		msg := "is invalid"
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "gte":
			msg = "must be at least " + fe.Param()
		case "lte", "max":
			msg = "must be at most " + fe.Param()
		case "oneof":
			msg = "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
		}
		verr.Fields = append(verr.Fields, FieldError{Field: fe.Field(), Message: msg})
	}
	return verr
}

// Validate checks ranges and enums of a new alert.
func (in Input) Validate() error { return check(in) }

type entry struct {
	alert Alert
	rev   uint64
}

// Store keeps the alert feed in memory. Every create or update bumps a
// revision counter so consumers can pick up changes incrementally.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	rev     uint64
	now     func() time.Time
	newID   func() string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*entry),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// Create validates in and stores a new alert. A missing trajectory is
// projected from position, heading and speed.
func (s *Store) Create(in Input) (Alert, error) {
	if err := in.Validate(); err != nil {
		return Alert{}, err
	}
	a := Alert{
		CameraID:            in.CameraID,
		Latitude:            in.Latitude,
		Longitude:           in.Longitude,
		Altitude:            in.Altitude,
		Confidence:          in.Confidence,
		Speed:               in.Speed,
		Heading:             geo.NormalizeDegrees(in.Heading),
		DroneType:           in.DroneType,
		ThreatLevel:         in.ThreatLevel,
		Status:              in.Status,
		EstimatedTrajectory: append([]TrajectoryPoint(nil), in.EstimatedTrajectory...),
		Notes:               in.Notes,
	}
	if a.DroneType == "" {
		a.DroneType = DroneUnknown
	}
	if a.Status == "" {
		a.Status = StatusActive
	}
	if len(a.EstimatedTrajectory) == 0 {
		a.EstimatedTrajectory = ProjectTrajectory(a.Position(), a.Heading, a.Speed, a.Confidence, DefaultHorizon)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.newID()
	if in.DetectedAt != nil {
		a.DetectedAt = in.DetectedAt.UTC()
	} else {
		a.DetectedAt = s.now().UTC()
	}
	s.rev++
	s.entries[a.ID] = &entry{alert: a, rev: s.rev}
	return cloneAlert(a), nil
}

// Get returns the alert with the given id.
func (s *Store) Get(id string) (Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return Alert{}, ErrNotFound
	}
	return cloneAlert(e.alert), nil
}

// List returns the alerts matching f, newest first.
func (s *Store) List(f Filter) []Alert {
	s.mu.RLock()
	all := make([]Alert, 0, len(s.entries))
	for _, e := range s.entries {
		all = append(all, cloneAlert(e.alert))
	}
	s.mu.RUnlock()
	sortNewestFirst(all)
	return Apply(all, f)
}

// Update applies u to the alert with the given id.
func (s *Store) Update(id string, u Update) (Alert, error) {
	if err := check(u); err != nil {
		return Alert{}, err
	}
	if u.Event != nil && u.Status != nil {
		return Alert{}, &ValidationError{Fields: []FieldError{{Field: "status", Message: "cannot be combined with event"}}}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return Alert{}, ErrNotFound
	}
	a := e.alert
	switch {
	case u.Event != nil:
		next, err := Transition(a.Status, *u.Event)
		if err != nil {
			return Alert{}, err
		}
		a.Status = next
	case u.Status != nil:
		if !CanTransition(a.Status, *u.Status) {
			return Alert{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, a.Status, *u.Status)
		}
		a.Status = *u.Status
	}
	if u.ThreatLevel != nil {
		a.ThreatLevel = *u.ThreatLevel
	}
	if u.Notes != nil {
		a.Notes = *u.Notes
	}
	s.rev++
	e.alert = a
	e.rev = s.rev
	return cloneAlert(a), nil
}

// Changes returns alerts created or updated after revision since, oldest
// change first, together with the latest revision.
func (s *Store) Changes(since uint64) ([]Alert, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type change struct {
		alert Alert
		rev   uint64
	}
	var changed []change
	for _, e := range s.entries {
		if e.rev > since {
			changed = append(changed, change{cloneAlert(e.alert), e.rev})
		}
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i].rev < changed[j].rev })
	out := make([]Alert, len(changed))
	for i, c := range changed {
		out[i] = c.alert
	}
	return out, s.rev
}

// Len returns the number of stored alerts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func sortNewestFirst(alerts []Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].DetectedAt.Equal(alerts[j].DetectedAt) {
			return alerts[i].ID < alerts[j].ID
		}
		return alerts[i].DetectedAt.After(alerts[j].DetectedAt)
	})
}

func cloneAlert(a Alert) Alert {
	a.EstimatedTrajectory = append([]TrajectoryPoint(nil), a.EstimatedTrajectory...)
	return a
}
