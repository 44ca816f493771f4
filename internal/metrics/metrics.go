// Package metrics exposes transport counters for the printer link.
//
// There is no HTTP listener; counters are written to a node-exporter
// textfile when a path is configured.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dzprint"

// Config selects where counters are exported.
type Config struct {
	File string `help:"Write Prometheus text-format metrics to this file on exit" env:"DZPRINT_METRICS_FILE"`
}

var (
	registerOnce sync.Once

	packetsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "packets_written_total",
			Help:      "USB packets written to the printer.",
		},
		[]string{"result"},
	)
	bytesWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "payload_bytes_written_total",
			Help:      "Payload bytes carried by successfully written packets.",
		},
	)
	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "submissions_total",
			Help:      "Payloads submitted to the transport.",
		},
		[]string{"reply"},
	)
	framesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "frames_received_total",
			Help:      "Device frames parsed from the input endpoint.",
		},
		[]string{"command"},
	)
	discarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "discarded_total",
			Help:      "Inbound data dropped as noise or rejected frames.",
		},
		[]string{"reason"},
	)
	statusPolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "printer",
			Name:      "status_polls_total",
			Help:      "Status polls issued at print breakpoints.",
		},
		[]string{"outcome"},
	)
)

// Registry is the registry written by WriteTextfile.
var Registry = prometheus.NewRegistry()

func RegisterMetrics() {
	registerOnce.Do(func() {
		Registry.MustRegister(packetsWritten, bytesWritten, submissions, framesReceived, discarded, statusPolls)
	})
}

func RecordPacketWritten(payloadBytes int, err error) {
	RegisterMetrics()
	if err != nil {
		packetsWritten.WithLabelValues("error").Inc()
		return
	}
	packetsWritten.WithLabelValues("ok").Inc()
	bytesWritten.Add(float64(payloadBytes))
}

func RecordSubmission(withReply bool) {
	RegisterMetrics()
	label := "no"
	if withReply {
		label = "yes"
	}
	submissions.WithLabelValues(label).Inc()
}

func RecordFrame(command string) {
	RegisterMetrics()
	framesReceived.WithLabelValues(command).Inc()
}

func RecordDiscard(reason string) {
	RegisterMetrics()
	discarded.WithLabelValues(reason).Inc()
}

func RecordStatusPoll(outcome string) {
	RegisterMetrics()
	statusPolls.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes all counters to path in the Prometheus text format.
// An empty path is a no-op.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	RegisterMetrics()
	return prometheus.WriteToTextfile(path, Registry)
}
