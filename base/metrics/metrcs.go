/*
Package metrics wraps datadog-go to faciliate metric recording
Following are naming convention of metric:
- Internal process time: *.time
- Error: *.err
- Outcome counters: *.ok, *.fail
*/
package metrics

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/x-xyz/escrow/base/log"
)

// Ender provides interface for BumpTime
type Ender interface {
	End()
}

// Service provides interface for metrics
type Service interface {
	BumpAvg(key string, val float64, tags ...string)
	BumpSum(key string, val float64, tags ...string)
	BumpHistogram(key string, val float64, tags ...string)

	BumpTime(key string, tags ...string) Ender
}

// New creates a client whose keys are prefixed with pkgName. Without a
// configured `datadog_host` every bump is written to the debug log instead.
func New(pkgName string) Service {
	return &Metrics{
		pkgName: pkgName,
		tags: []string{
			// using host removes all tags associated with host
			"host:",
			"env:" + viper.GetString("env_name"),
			"app:" + viper.GetString("app_name"),
		},
		cli: client(),
	}
}

// Metrics prefixes keys with the package name and never lets a failing
// bump escape to the caller
type Metrics struct {
	pkgName string
	tags    []string
	cli     statsCli
}

func (mt *Metrics) key(key string) string {
	return mt.pkgName + `.` + key
}

func (mt *Metrics) allTags(tags []string) []string {
	res := make([]string, 0, len(mt.tags)+len(tags)/2)
	res = append(res, mt.tags...)
	return append(res, parseTag(tags)...)
}

func (mt *Metrics) recoverBump(key string, tags []string) {
	if err := recover(); err != nil {
		log.Log().WithFields(log.Fields{
			"key":  mt.key(key),
			"tags": strings.Join(tags, "#"),
			"err":  err,
		}).Error("bump panic")
	}
}

func (mt *Metrics) report(fn, key string, val float64, err error) {
	if err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key, "val": val, "func": fn}).Error("Bump fail")
	}
}

// BumpAvg bumps the average for the given key.
func (mt *Metrics) BumpAvg(key string, val float64, tags ...string) {
	defer mt.recoverBump(key, tags)
	// datadog has no average type, a gauge is the closest
	mt.report("BumpAvg", key, val, mt.cli.Gauge(mt.key(key), val, mt.allTags(tags), ddRate))
}

// BumpSum bumps the sum for the given key.
func (mt *Metrics) BumpSum(key string, val float64, tags ...string) {
	defer mt.recoverBump(key, tags)
	mt.report("BumpSum", key, val, mt.cli.Count(mt.key(key), int64(val), mt.allTags(tags), ddRate))
}

// BumpHistogram bumps the histogram for the given key.
func (mt *Metrics) BumpHistogram(key string, val float64, tags ...string) {
	defer mt.recoverBump(key, tags)
	mt.report("BumpHistogram", key, val, mt.cli.Histogram(mt.key(key), val, mt.allTags(tags), ddRate))
}

// BumpTime starts a timer, End records the elapsed milliseconds:
//
//	defer s.BumpTime("my.function").End()
func (mt *Metrics) BumpTime(key string, tags ...string) Ender {
	return &timeTracker{
		mt:    mt,
		key:   key,
		tags:  tags,
		start: time.Now(),
	}
}

type timeTracker struct {
	mt    *Metrics
	key   string
	tags  []string
	start time.Time
}

func (t *timeTracker) End() {
	defer t.mt.recoverBump(t.key, t.tags)
	dur := float64(time.Since(t.start)) / float64(time.Millisecond)
	t.mt.report("BumpTime", t.key, dur, t.mt.cli.TimeInMilliseconds(t.mt.key(t.key), dur, t.mt.allTags(t.tags), ddRate))
}

func parseTag(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	if len(tags)%2 != 0 {
		log.Log().WithField("tags", tags).Panic("tag length needs to be multiple of 2")
	}
	arr := make([]string, len(tags)/2)
	for i := 0; i < len(tags); i += 2 {
		arr[i/2] = tags[i] + ":" + tags[i+1]
	}
	return arr
}
