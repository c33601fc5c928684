package main

import (
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/phayes/freeport"

	"github.com/stackscope/stackscope/internal/aggregate"
	"github.com/stackscope/stackscope/internal/sampler"
	"github.com/stackscope/stackscope/internal/snapshot"
	"github.com/stackscope/stackscope/internal/timeutil"
)

func TestReportServer(t *testing.T) {
	agg := aggregate.New(snapshot.NewRuntime(), 0)
	env := &environment{
		config:     ServiceConfig{Strategy: "loop", MaxStacks: aggregate.DefaultMaxStacks},
		aggregator: agg,
		sampler:    sampler.NewLoop(agg, timeutil.DefaultInterval),
	}
	if err := env.sampler.Start(); err != nil {
		t.Fatal(err)
	}
	defer env.sampler.Stop()

	router, err := env.newRouter()
	if err != nil {
		t.Fatal(err)
	}
	port, err := freeport.GetFreePort()
	if err != nil {
		t.Fatalf("no free port found: %v", err)
	}
	server := http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: router,
	}
	go server.ListenAndServe() //nolint:errcheck
	defer server.Close()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	waitForServer(t, base+"/health")

	// Let a few sampling passes land before reading the views.
	time.Sleep(300 * time.Millisecond)

	resp, err := http.Get(base + "/data")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var data struct {
		SampleCount uint64 `json:"sample_count"`
	}
	if err := gojson.NewDecoder(resp.Body).Decode(&data); err != nil {
		t.Fatal(err)
	}
	if data.SampleCount == 0 {
		t.Fatal("no sampling passes recorded")
	}

	resp, err = http.Get(base + "/hotspots")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var hotspots []aggregate.Hotspot
	if err := gojson.NewDecoder(resp.Body).Decode(&hotspots); err != nil {
		t.Fatal(err)
	}
	if len(hotspots) == 0 {
		t.Fatal("hotspots are empty")
	}

	resp, err = http.Get(base + "/rooted/lines")
	if err != nil {
		t.Fatal(err)
	}
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing file parameter: got %d, want 400", resp.StatusCode)
	}

	resp, err = http.Get(base + "/flamegraph")
	if err != nil {
		t.Fatal(err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || len(body) == 0 {
		t.Fatalf("flamegraph: status %d, %d bytes", resp.StatusCode, len(body))
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()
	for i := 0; i < 100; i++ {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server never became reachable")
}
