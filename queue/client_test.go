package queue

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cerno-sec/cerno/finding"
)

// setupTestClient creates a miniredis instance and a connected RedisClient.
func setupTestClient(t *testing.T) *RedisClient {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(RedisOptions{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client
}

func testFindings() []*finding.Finding {
	return []*finding.Finding{
		finding.New("scan-1", 10001, "Wide Exposure", finding.SeverityHigh,
			[]string{"10.0.0.1:80", "10.0.0.1:443"}),
		finding.New("scan-1", 10002, "Narrow Exposure", finding.SeverityMedium,
			[]string{"10.0.0.1:80"}),
	}
}

func TestNewRedisClientInvalidURL(t *testing.T) {
	_, err := NewRedisClient(RedisOptions{URL: "not a url"})
	assert.Error(t, err)
}

func TestJobValidation(t *testing.T) {
	tests := []struct {
		name    string
		job     Job
		wantErr bool
	}{
		{
			name: "valid",
			job:  NewJob("scan-1", testFindings()),
		},
		{
			name:    "missing id",
			job:     Job{ScanID: "scan-1", Findings: testFindings()},
			wantErr: true,
		},
		{
			name:    "missing scan id",
			job:     Job{ID: "j-1", Findings: testFindings()},
			wantErr: true,
		},
		{
			name:    "no findings",
			job:     Job{ID: "j-1", ScanID: "scan-1"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.job.IsValid()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()

	job := NewJob("scan-1", testFindings())
	require.NoError(t, client.PushJob(ctx, job))

	popped, err := client.PopJob(ctx)
	require.NoError(t, err)
	require.NotNil(t, popped)
	assert.Equal(t, job.ID, popped.ID)
	assert.Equal(t, job.ScanID, popped.ScanID)
	require.Len(t, popped.Findings, 2)
	assert.Equal(t, 10001, popped.Findings[0].PluginID)
}

func TestPushRejectsInvalidJob(t *testing.T) {
	client := setupTestClient(t)

	err := client.PushJob(context.Background(), Job{ID: "j-1"})
	assert.Error(t, err)
}

func TestPopOrderIsFIFO(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()

	first := NewJob("scan-1", testFindings())
	second := NewJob("scan-2", testFindings())
	require.NoError(t, client.PushJob(ctx, first))
	require.NoError(t, client.PushJob(ctx, second))

	popped, err := client.PopJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, popped.ID)

	popped, err = client.PopJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, popped.ID)
}

func TestPublishSubscribeResults(t *testing.T) {
	client := setupTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := client.SubscribeResults(ctx, "job-1")
	require.NoError(t, err)

	want := JobResult{
		JobID:    "job-1",
		ScanID:   "scan-1",
		WorkerID: "worker-1",
		Error:    "empty input",
	}
	require.NoError(t, client.PublishResult(ctx, want))

	select {
	case got := <-results:
		assert.Equal(t, want.JobID, got.JobID)
		assert.False(t, got.Succeeded())
	case <-ctx.Done():
		t.Fatal("timed out waiting for result")
	}
}

func TestWorkerProcessesJob(t *testing.T) {
	client := setupTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	worker := NewWorker(client, WithWorkerLogger(slog.New(slog.DiscardHandler)))

	job := NewJob("scan-1", testFindings())
	results, err := client.SubscribeResults(ctx, job.ID)
	require.NoError(t, err)
	require.NoError(t, client.PushJob(ctx, job))

	workerCtx, stopWorker := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- worker.Run(workerCtx)
	}()

	select {
	case res := <-results:
		require.True(t, res.Succeeded(), "worker error: %s", res.Error)
		assert.Equal(t, worker.ID(), res.WorkerID)
		require.NotNil(t, res.Analysis)
		// The narrow finding's pairs are a strict subset of the wide one's.
		require.Len(t, res.Analysis.Edges, 1)
		assert.Equal(t, res.Analysis.Edges[0].SupersetID, job.Findings[0].ID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for worker result")
	}

	stopWorker()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}
