package camera

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"heimdall/internal/geo"
)

// Input is a create or partial-update request. Nil fields are left unset.
// Yaw and Direction are accepted as aliases for Heading.
type Input struct {
	CameraID     *string  `json:"cameraId,omitempty" yaml:"camera_id" validate:"omitempty,min=1,max=64"`
	Latitude     *float64 `json:"latitude,omitempty" yaml:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude,omitempty" yaml:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Altitude     *float64 `json:"altitude,omitempty" yaml:"altitude" validate:"omitempty,gte=0,lte=10000"`
	Range        *float64 `json:"range,omitempty" yaml:"range" validate:"omitempty,gte=100,lte=2000"`
	FOV          *float64 `json:"fov,omitempty" yaml:"fov" validate:"omitempty,gte=30,lte=180"`
	Heading      *float64 `json:"heading,omitempty" yaml:"heading" validate:"omitempty,gte=0,lte=360"`
	Yaw          *float64 `json:"yaw,omitempty" yaml:"yaw" validate:"omitempty,gte=0,lte=360"`
	Direction    *float64 `json:"direction,omitempty" yaml:"direction" validate:"omitempty,gte=0,lte=360"`
	Pitch        *float64 `json:"pitch,omitempty" yaml:"pitch" validate:"omitempty,gte=-90,lte=90"`
	Roll         *float64 `json:"roll,omitempty" yaml:"roll" validate:"omitempty,gte=-180,lte=180"`
	Status       *Status  `json:"status,omitempty" yaml:"status" validate:"omitempty,oneof=active maintenance offline"`
	CameraType   *Type    `json:"cameraType,omitempty" yaml:"camera_type"`
	FeedURL      *string  `json:"feedUrl,omitempty" yaml:"feed_url" validate:"omitempty,url"`
	FeedUsername *string  `json:"feedUsername,omitempty" yaml:"feed_username" validate:"omitempty,max=128"`
	FeedPassword *string  `json:"feedPassword,omitempty" yaml:"feed_password" validate:"omitempty,max=128"`
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every problem found in an Input.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return "invalid camera: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
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

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte", "min":
		return "must be at least " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "url":
		return "must be a valid URL"
	}
	return "is invalid"
}

// Validate checks ranges and enums. Unless partial is set the identity,
// position and optics fields are required.
func (in Input) Validate(partial bool) error {
	verr := &ValidationError{}

	check := in
	if check.FeedURL != nil && *check.FeedURL == "" {
		check.FeedURL = nil
	}
	if err := inputValidator().Struct(check); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("validate camera input: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.add(fe.Field(), describe(fe))
		}
	}
	if in.CameraType != nil && !in.CameraType.Valid() {
		verr.add("cameraType", fmt.Sprintf("must be one of %q, %q, %q, %q", TypeStandard, TypeThermal, TypeNightVision, TypeHighResolution))
	}
	if _, err := in.heading(); err != nil {
		verr.add("heading", err.Error())
	}

	if !partial {
		if in.CameraID == nil {
			verr.add("cameraId", "is required")
		}
		if in.Latitude == nil {
			verr.add("latitude", "is required")
		}
		if in.Longitude == nil {
			verr.add("longitude", "is required")
		}
		if in.Range == nil {
			verr.add("range", "is required")
		}
		if in.FOV == nil {
			verr.add("fov", "is required")
		}
		if in.Heading == nil && in.Yaw == nil && in.Direction == nil {
			verr.add("heading", "is required")
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// heading resolves the canonical heading from the provided aliases.
func (in Input) heading() (*float64, error) {
	var out *float64
	for _, v := range []*float64{in.Heading, in.Yaw, in.Direction} {
		if v == nil {
			continue
		}
		if out != nil && geo.NormalizeDegrees(*out) != geo.NormalizeDegrees(*v) {
			return nil, fmt.Errorf("conflicting values %v and %v across heading, yaw and direction", *out, *v)
		}
		if out == nil {
			out = v
		}
	}
	if out == nil {
		return nil, nil
	}
	h := geo.NormalizeDegrees(*out)
	return &h, nil
}

// newCamera builds a record from a validated create request.
func newCamera(in Input) Camera {
	c := Camera{Status: StatusActive, CameraType: TypeStandard}
	apply(&c, in)
	return c
}

// apply copies every set field of a validated Input onto c.
func apply(c *Camera, in Input) {
	if in.CameraID != nil {
		c.CameraID = *in.CameraID
	}
	if in.Latitude != nil {
		c.Latitude = quantize(*in.Latitude)
	}
	if in.Longitude != nil {
		c.Longitude = quantize(*in.Longitude)
	}
	if in.Altitude != nil {
		c.Altitude = *in.Altitude
	}
	if in.Range != nil {
		c.Range = *in.Range
	}
	if in.FOV != nil {
		c.FOV = *in.FOV
	}
	if h, _ := in.heading(); h != nil {
		c.Heading = *h
	}
	if in.Pitch != nil {
		c.Pitch = *in.Pitch
	}
	if in.Roll != nil {
		c.Roll = *in.Roll
	}
	if in.Status != nil {
		c.Status = *in.Status
	}
	if in.CameraType != nil {
		c.CameraType = *in.CameraType
	}
	if in.FeedURL != nil {
		c.FeedURL = *in.FeedURL
	}
	if in.FeedUsername != nil {
		c.FeedUsername = *in.FeedUsername
	}
	if in.FeedPassword != nil {
		c.FeedPassword = *in.FeedPassword
	}
}
