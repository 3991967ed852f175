package camera

import (
	"errors"
	"math"
	"testing"
)

func f(v float64) *float64 { return &v }
func s(v string) *string    { return &v }

func validInput(id string) Input {
	return Input{
		CameraID:  s(id),
		Latitude:  f(60.7520),
		Longitude: f(24.7729),
		Altitude:  f(125),
		Range:     f(800),
		FOV:       f(90),
		Heading:   f(180),
		Pitch:     f(-15),
	}
}

func fieldNames(err error) []string {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	var out []string
	for _, fe := range verr.Fields {
		out = append(out, fe.Field)
	}
	return out
}

func hasField(err error, name string) bool {
	for _, f := range fieldNames(err) {
		if f == name {
			return true
		}
	}
	return false
}

func TestInputValidateAccepts(t *testing.T) {
	in := validInput("HEIMDALL-N1")
	in.FeedURL = s("rtsp://north1.heimdall.tactical/live")
	st := StatusMaintenance
	in.Status = &st
	tp := TypeHighResolution
	in.CameraType = &tp
	if err := in.Validate(false); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestInputValidateRanges(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*Input)
		field string
	}{
		{"range low", func(in *Input) { in.Range = f(99) }, "range"},
		{"range high", func(in *Input) { in.Range = f(2001) }, "range"},
		{"fov low", func(in *Input) { in.FOV = f(29) }, "fov"},
		{"fov high", func(in *Input) { in.FOV = f(181) }, "fov"},
		{"latitude", func(in *Input) { in.Latitude = f(91) }, "latitude"},
		{"longitude nan", func(in *Input) { in.Longitude = f(math.NaN()) }, "longitude"},
		{"altitude", func(in *Input) { in.Altitude = f(-1) }, "altitude"},
		{"pitch", func(in *Input) { in.Pitch = f(-91) }, "pitch"},
		{"roll", func(in *Input) { in.Roll = f(181) }, "roll"},
		{"heading", func(in *Input) { in.Heading = f(361) }, "heading"},
		{"status", func(in *Input) { st := Status("broken"); in.Status = &st }, "status"},
		{"type", func(in *Input) { tp := Type("Laser"); in.CameraType = &tp }, "cameraType"},
		{"feed url", func(in *Input) { in.FeedURL = s("not a url") }, "feedUrl"},
		{"empty id", func(in *Input) { in.CameraID = s("") }, "cameraId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput("CAM")
			tc.mut(&in)
			err := in.Validate(false)
			if !hasField(err, tc.field) {
				t.Fatalf("expected %s error, got %v", tc.field, err)
			}
		})
	}
}

func TestInputValidateRequired(t *testing.T) {
	err := Input{}.Validate(false)
	for _, name := range []string{"cameraId", "latitude", "longitude", "range", "fov", "heading"} {
		if !hasField(err, name) {
			t.Errorf("missing required error for %s: %v", name, err)
		}
	}
	if err := (Input{}).Validate(true); err != nil {
		t.Fatalf("empty partial update should be valid: %v", err)
	}
}

func TestInputHeadingAliases(t *testing.T) {
	in := validInput("CAM")
	in.Heading = nil
	in.Yaw = f(270)
	if err := in.Validate(false); err != nil {
		t.Fatalf("yaw alias rejected: %v", err)
	}
	if c := newCamera(in); c.Heading != 270 {
		t.Fatalf("heading = %v, want 270", c.Heading)
	}

	in.Direction = f(90)
	if !hasField(in.Validate(false), "heading") {
		t.Fatalf("conflicting aliases should be rejected")
	}

	in.Direction = f(270)
	if err := in.Validate(false); err != nil {
		t.Fatalf("agreeing aliases rejected: %v", err)
	}

	full := validInput("CAM")
	full.Heading = f(360)
	if c := newCamera(full); c.Heading != 0 {
		t.Fatalf("heading 360 should normalize to 0, got %v", c.Heading)
	}
}

func TestInputEmptyFeedURLClears(t *testing.T) {
	c := newCamera(validInput("CAM"))
	c.FeedURL = "rtsp://x.example/live"
	patch := Input{FeedURL: s("")}
	if err := patch.Validate(true); err != nil {
		t.Fatalf("empty feedUrl should be accepted: %v", err)
	}
	apply(&c, patch)
	if c.FeedURL != "" {
		t.Fatalf("feed url = %q, want cleared", c.FeedURL)
	}
}

func TestNewCameraDefaults(t *testing.T) {
	c := newCamera(validInput("CAM"))
	if c.Status != StatusActive || c.CameraType != TypeStandard {
		t.Fatalf("defaults = %s/%s", c.Status, c.CameraType)
	}
	if !c.Operational() || !c.Sensor().Operational {
		t.Fatalf("active camera must be operational")
	}
}

func TestMicrodegrees(t *testing.T) {
	if got := ToMicrodegrees(60.7520); got != 60752000 {
		t.Fatalf("ToMicrodegrees = %d", got)
	}
	if got := FromMicrodegrees(-24772900); got != -24.7729 {
		t.Fatalf("FromMicrodegrees = %v", got)
	}
	if got := quantize(24.77290049); got != 24.7729 {
		t.Fatalf("quantize = %v", got)
	}
}
