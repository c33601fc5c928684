package main

import (
	"net/http"

	"github.com/stackscope/stackscope/internal/flamegraph"
	"github.com/stackscope/stackscope/internal/httputil"
)

func (e *environment) getHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (e *environment) getData(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, e.aggregator.LiveDataCopy())
}

func (e *environment) getHotspots(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, e.aggregator.Hotspots())
}

func (e *environment) getRootedFiles(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, e.aggregator.RootedSamplesByFile())
}

func (e *environment) getRootedLines(w http.ResponseWriter, r *http.Request) {
	file, ok := httputil.RequiredQueryParameter(w, r, "file")
	if !ok {
		return
	}
	httputil.WriteJSON(w, e.aggregator.RootedSamplesByLine(file))
}

func (e *environment) getFlamegraph(w http.ResponseWriter, _ *http.Request) {
	folded := flamegraph.FlameMap(e.aggregator.LiveDataCopy())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(flamegraph.Folded(folded))
}
