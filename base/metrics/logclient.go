package metrics

import (
	"github.com/x-xyz/escrow/base/log"
)

// LogClient stands in for statsd when no agent is configured, every point
// is written as a debug line
type LogClient struct{}

func (lc *LogClient) emit(kind, name string, value interface{}, tags []string) {
	log.Log().WithFields(log.Fields{"key": name, "val": value, "tags": tags}).Debug("metric " + kind)
}

func (lc *LogClient) Gauge(name string, value float64, tags []string, rate float64) error {
	lc.emit("gauge", name, value, tags)
	return nil
}

func (lc *LogClient) Count(name string, value int64, tags []string, rate float64) error {
	lc.emit("count", name, value, tags)
	return nil
}

func (lc *LogClient) Histogram(name string, value float64, tags []string, rate float64) error {
	lc.emit("histogram", name, value, tags)
	return nil
}

func (lc *LogClient) TimeInMilliseconds(name string, value float64, tags []string, rate float64) error {
	lc.emit("time", name, value, tags)
	return nil
}
