package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingQueryRecorder struct {
	calls     int
	durations []float64
}

func (r *recordingQueryRecorder) RecordDBQuery(duration float64) {
	r.calls++
	r.durations = append(r.durations, duration)
}

func TestGormLoggerTraceRecordsMetrics(t *testing.T) {
	recorder := &recordingQueryRecorder{}
	l := NewGormLogger(true, time.Second, recorder)

	l.Trace(context.Background(), time.Now().Add(-10*time.Millisecond), func() (string, int64) {
		return "SELECT * FROM products", 1
	}, nil)

	assert.Equal(t, 1, recorder.calls)
	assert.Greater(t, recorder.durations[0], 0.0)
}

func TestGormLoggerTraceRecordsMetricsWhenLoggingDisabled(t *testing.T) {
	recorder := &recordingQueryRecorder{}
	l := NewGormLogger(false, time.Second, recorder)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)

	// SQL 日志关闭不影响指标上报
	assert.Equal(t, 1, recorder.calls)
}

func TestGormLoggerTraceWithoutRecorder(t *testing.T) {
	l := NewGormLogger(false, time.Second, nil)

	assert.NotPanics(t, func() {
		l.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "SELECT 1", 1
		}, nil)
	})
}
