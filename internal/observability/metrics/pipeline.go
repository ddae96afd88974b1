// Package metrics emits the pipeline and drop-folder StatsD metrics.
package metrics

import (
	"maps"
	"time"

	obserrors "github.com/target/report-relay/internal/observability/errors"
	"github.com/target/report-relay/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultSkipped = "skipped"
	ResultNoop    = "noop"
)

// RunMetric captures the end of a pipeline run.
type RunMetric struct {
	Job      string
	Outcome  string
	Items    int
	Failed   int
	Duration time.Duration
	Err      error
}

// EmitRun emits pipeline.run and pipeline.duration.
func EmitRun(sink statsd.Sink, in RunMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"job":     in.Job,
		"outcome": in.Outcome,
	}
	if class := obserrors.Classify(in.Err); class != "" {
		tags["error_class"] = class
	}

	sink.Count("pipeline.run", 1, tags)
	if in.Items > 0 {
		sink.Gauge("pipeline.items", float64(in.Items), CloneTags(tags))
	}
	if in.Failed > 0 {
		sink.Count("pipeline.items_failed", int64(in.Failed), CloneTags(tags))
	}
	if in.Duration > 0 {
		sink.Timing("pipeline.duration", in.Duration, CloneTags(tags))
	}
}

// StageMetric captures one pipeline stage.
type StageMetric struct {
	Job      string
	Stage    string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitStage emits pipeline.stage and pipeline.stage_duration.
func EmitStage(sink statsd.Sink, in StageMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"job":    in.Job,
		"stage":  in.Stage,
		"result": in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("pipeline.stage", 1, tags)
	if in.Duration > 0 {
		sink.Timing("pipeline.stage_duration", in.Duration, CloneTags(tags))
	}
}

// EmitUpload emits dropfolder.upload for one drop-folder job pass. A negative
// remaining means the queue depth is unknown and no gauge is sent.
func EmitUpload(sink statsd.Sink, job, result string, remaining int) {
	if sink == nil {
		return
	}
	tags := map[string]string{"job": job, "result": result}
	sink.Count("dropfolder.upload", 1, tags)
	if remaining >= 0 {
		sink.Gauge("dropfolder.queue_depth", float64(remaining), CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	return maps.Clone(src)
}
