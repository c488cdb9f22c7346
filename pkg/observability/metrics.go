package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/strtab/pkg/heap"
)

const (
	metricLookups       = "strtab.lookups.total"
	metricInserts       = "strtab.inserts.total"
	metricRemovals      = "strtab.removals.total"
	metricResizes       = "strtab.resizes.total"
	metricCollections   = "strtab.collections.total"
	metricSwept         = "strtab.swept.total"
	metricAllocFailures = "strtab.alloc.failures.total"
	metricStrings       = "strtab.strings"
	metricBuckets       = "strtab.buckets"
	metricBytesInUse    = "strtab.heap.bytes"
	metricLongestChain  = "strtab.chain.longest"
	metricBatchDuration = "strtab.intern.batch.duration.seconds"

	attrResult = "result"

	resultHit  = "hit"
	resultMiss = "miss"
)

// batchBucketBoundaries covers 10µs to 10s intern batches.
var batchBucketBoundaries = []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 0.5, 1, 2.5, 10}

// TableMetrics exports heap string-table statistics as OTel instruments.
// Counters are fed with the difference between consecutive snapshots, so
// RecordStats can be called at any cadence. A nil *TableMetrics is a no-op.
type TableMetrics struct {
	lookups       metric.Int64Counter
	inserts       metric.Int64Counter
	removals      metric.Int64Counter
	resizes       metric.Int64Counter
	collections   metric.Int64Counter
	swept         metric.Int64Counter
	allocFailures metric.Int64Counter
	strings       metric.Int64Gauge
	buckets       metric.Int64Gauge
	bytesInUse    metric.Int64Gauge
	longestChain  metric.Int64Gauge
	batchDuration metric.Float64Histogram

	last heap.Stats
}

// NewTableMetrics creates the string-table instruments from mt.
func NewTableMetrics(mt metric.Meter) (*TableMetrics, error) {
	b := newMetricBuilder(mt)

	tm := &TableMetrics{
		lookups:       b.counter(metricLookups, "String table lookups by result", "{lookup}"),
		inserts:       b.counter(metricInserts, "Strings created and linked", "{string}"),
		removals:      b.counter(metricRemovals, "Strings unlinked from the table", "{string}"),
		resizes:       b.counter(metricResizes, "Bucket array rehashes", "{resize}"),
		collections:   b.counter(metricCollections, "Collector cycles", "{cycle}"),
		swept:         b.counter(metricSwept, "Strings freed by the collector", "{string}"),
		allocFailures: b.counter(metricAllocFailures, "Failed heap allocations", "{allocation}"),
		strings:       b.gauge(metricStrings, "Live interned strings", "{string}"),
		buckets:       b.gauge(metricBuckets, "Bucket array size", "{bucket}"),
		bytesInUse:    b.gauge(metricBytesInUse, "Accounted heap bytes", "By"),
		longestChain:  b.gauge(metricLongestChain, "Longest bucket chain", "{string}"),
		batchDuration: b.histogram(metricBatchDuration, "Duration of an intern batch", "s", batchBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return tm, nil
}

// RecordStats records a heap snapshot.
func (tm *TableMetrics) RecordStats(ctx context.Context, st heap.Stats) {
	if tm == nil {
		return
	}

	prev := tm.last
	tm.last = st

	tm.lookups.Add(ctx, st.Hits-prev.Hits, metric.WithAttributes(attribute.String(attrResult, resultHit)))
	tm.lookups.Add(ctx, st.Misses-prev.Misses, metric.WithAttributes(attribute.String(attrResult, resultMiss)))
	tm.inserts.Add(ctx, st.Inserts-prev.Inserts)
	tm.removals.Add(ctx, st.Removals-prev.Removals)
	tm.resizes.Add(ctx, st.Resizes-prev.Resizes)
	tm.collections.Add(ctx, st.Collections-prev.Collections)
	tm.swept.Add(ctx, st.Swept-prev.Swept)
	tm.allocFailures.Add(ctx, st.AllocFailures-prev.AllocFailures)

	tm.strings.Record(ctx, int64(st.Strings))
	tm.buckets.Record(ctx, int64(st.Buckets))
	tm.bytesInUse.Record(ctx, st.BytesInUse)
	tm.longestChain.Record(ctx, int64(st.LongestChain))
}

// RecordBatch records the wall time of one intern batch.
func (tm *TableMetrics) RecordBatch(ctx context.Context, d time.Duration) {
	if tm == nil {
		return
	}

	tm.batchDuration.Record(ctx, d.Seconds())
}
