package metrics

import "time"

// RenderOutcome labels the result of composing one page.
type RenderOutcome string

const (
	RenderOK       RenderOutcome = "ok"
	RenderNotFound RenderOutcome = "not_found"
	RenderError    RenderOutcome = "error"
)

// Recorder defines observability hooks for the server, the exporter and the
// watcher. Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveHTTPRequest(route, method string, status int, d time.Duration)
	ObservePageRender(d time.Duration, outcome RenderOutcome)
	IncAssetResult(status int)
	SetInventory(projects, pages, assets int)
	IncContentChange()
	SetLiveReloadClients(n int)
	IncLiveReloadBroadcast()
}

// NoopRecorder is a Recorder that does nothing (default when metrics are disabled).
type NoopRecorder struct{}

func (NoopRecorder) ObserveHTTPRequest(string, string, int, time.Duration) {}
func (NoopRecorder) ObservePageRender(time.Duration, RenderOutcome)        {}
func (NoopRecorder) IncAssetResult(int)                                    {}
func (NoopRecorder) SetInventory(int, int, int)                            {}
func (NoopRecorder) IncContentChange()                                     {}
func (NoopRecorder) SetLiveReloadClients(int)                              {}
func (NoopRecorder) IncLiveReloadBroadcast()                               {}

// OrNoop returns r, or NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
