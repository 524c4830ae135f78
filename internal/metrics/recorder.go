package metrics

// ResultLabel enumerates send outcomes for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
	ResultRetried ResultLabel = "retried"
)

// Recorder defines observability hooks for the engine. Implementations may
// forward to Prometheus or record calls for tests.
type Recorder interface {
	IncInbound(kind string)
	IncDecodeFailure(reason string)
	IncDropped(kind string) // message referenced an unknown id
	IncOutbound(kind string, result ResultLabel)
	AddEvictions(n int)
	IncVibration(kind string) // pattern|pulse
	IncScreenClose(reason string)
	SetFreeBudget(n int)
	SetStoredRecords(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are disabled).
type NoopRecorder struct{}

func (NoopRecorder) IncInbound(string)               {}
func (NoopRecorder) IncDecodeFailure(string)         {}
func (NoopRecorder) IncDropped(string)               {}
func (NoopRecorder) IncOutbound(string, ResultLabel) {}
func (NoopRecorder) AddEvictions(int)                {}
func (NoopRecorder) IncVibration(string)             {}
func (NoopRecorder) IncScreenClose(string)           {}
func (NoopRecorder) SetFreeBudget(int)               {}
func (NoopRecorder) SetStoredRecords(int)            {}
