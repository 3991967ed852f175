package feed

import (
	"errors"
	"testing"
	"time"
)

func TestNext(t *testing.T) {
	cases := []struct {
		from State
		cmd  Command
		want State
	}{
		{StatePlaying, CommandPause, StatePaused},
		{StatePaused, CommandPlay, StatePlaying},
		{StatePlaying, CommandPlay, StatePlaying},
		{StatePaused, CommandPause, StatePaused},
		{StatePlaying, CommandToggle, StatePaused},
		{StatePaused, CommandToggle, StatePlaying},
		{StatePaused, CommandReconnect, StateReconnecting},
		{StatePlaying, CommandReconnect, StateReconnecting},
		{StateReconnecting, CommandPlay, StateReconnecting},
		{StateReconnecting, CommandToggle, StateReconnecting},
		{StateReconnecting, CommandConnected, StatePlaying},
		{StatePaused, CommandConnected, StatePaused},
	}
	for _, tc := range cases {
		got, err := Next(tc.from, tc.cmd)
		if err != nil || got != tc.want {
			t.Errorf("Next(%s, %s) = %s, %v; want %s", tc.from, tc.cmd, got, err, tc.want)
		}
	}
	if _, err := Next(StatePlaying, "rewind"); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("err = %v, want ErrUnknownCommand", err)
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	src := Source{CameraID: "HEIMDALL-N1", URL: "rtsp://north1.heimdall.tactical/live", Username: "operator", Protected: true}
	snap, err := m.Get(src)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if snap.State != StatePlaying || snap.Auth != "Protected" || !snap.ChangedAt.Equal(clock) {
		t.Fatalf("initial snapshot = %+v", snap)
	}

	clock = clock.Add(time.Second)
	if snap, _ = m.Apply(src, CommandReconnect); snap.State != StateReconnecting || !snap.ChangedAt.Equal(clock) {
		t.Fatalf("after reconnect = %+v", snap)
	}
	if snap, _ = m.Apply(src, CommandConnected); snap.State != StatePlaying {
		t.Fatalf("after connected = %+v", snap)
	}

	m.Apply(src, CommandPause)
	src.URL = "rtsp://north1.heimdall.tactical/thermal"
	if snap, _ = m.Get(src); snap.State != StatePlaying || snap.URL != src.URL {
		t.Fatalf("changing the feed url should restart playback: %+v", snap)
	}

	m.Forget(src.CameraID)
	m.Apply(src, CommandPause)
	m.Forget(src.CameraID)
	if snap, _ = m.Get(src); snap.State != StatePlaying {
		t.Fatalf("forgotten viewer should start fresh: %+v", snap)
	}
}

func TestManagerNoFeed(t *testing.T) {
	m := NewManager()
	if _, err := m.Apply(Source{CameraID: "HEIMDALL-E1"}, CommandPlay); !errors.Is(err, ErrNoFeed) {
		t.Fatalf("err = %v, want ErrNoFeed", err)
	}
	snap, err := m.Get(Source{CameraID: "X", URL: "rtsp://x/live"})
	if err != nil || snap.Auth != "Open" {
		t.Fatalf("open feed snapshot = %+v, %v", snap, err)
	}
}
