package main

import (
	"testing"
	"time"

	"github.com/spf13/cobra"

	"heimdall/internal/config"
)

func TestApplyServeFlags(t *testing.T) {
	cases := []struct {
		name     string
		flags    map[string]string
		wantTick time.Duration
		wantWork int
		wantErr  bool
	}{
		{name: "unset", wantTick: 5 * time.Second, wantWork: 4},
		{name: "override", flags: map[string]string{"tick": "1s", "workers": "2"}, wantTick: time.Second, wantWork: 2},
		{name: "zero tick", flags: map[string]string{"tick": "0"}, wantErr: true},
		{name: "negative tick", flags: map[string]string{"tick": "-2s"}, wantErr: true},
		{name: "zero workers", flags: map[string]string{"workers": "0"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "serve"}
			cmd.Flags().DurationVar(&serveTick, "tick", 5*time.Second, "")
			cmd.Flags().IntVar(&serveWorkers, "workers", 1, "")
			for k, v := range tc.flags {
				if err := cmd.Flags().Set(k, v); err != nil {
					t.Fatalf("set %s: %v", k, err)
				}
			}
			cfg := &config.Deployment{Monitor: config.Monitor{TickInterval: 5 * time.Second, Workers: 4}}
			err := applyServeFlags(cmd, cfg)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("applyServeFlags: %v", err)
			}
			if cfg.Monitor.TickInterval != tc.wantTick || cfg.Monitor.Workers != tc.wantWork {
				t.Fatalf("monitor = %+v", cfg.Monitor)
			}
		})
	}
}
