package worker

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type countingJob struct {
	id      string
	counter *atomic.Int32
	block   chan struct{}
	err     error
}

func (j *countingJob) ID() string { return j.id }

func (j *countingJob) Execute() error {
	if j.block != nil {
		<-j.block
	}
	j.counter.Add(1)
	return j.err
}

func TestDispatcher_ExecutesSubmittedJobs(t *testing.T) {
	d := NewDispatcher(3, 32, quietLogger())
	d.Run()
	defer d.Stop()

	var counter atomic.Int32
	for i := 0; i < 20; i++ {
		require.NoError(t, d.Submit(&countingJob{id: "job", counter: &counter}))
	}

	require.Eventually(t, func() bool {
		return counter.Load() == 20
	}, 2*time.Second, 10*time.Millisecond, "All submitted jobs should run")
}

func TestDispatcher_SubmitFailsWhenQueueFull(t *testing.T) {
	d := NewDispatcher(1, 1, quietLogger())
	// The dispatcher is intentionally not running, so nothing drains the queue.
	var counter atomic.Int32

	require.NoError(t, d.Submit(&countingJob{id: "a", counter: &counter}))
	err := d.Submit(&countingJob{id: "b", counter: &counter})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestDispatcher_JobErrorDoesNotStopWorkers(t *testing.T) {
	d := NewDispatcher(2, 16, quietLogger())
	d.Run()
	defer d.Stop()

	var counter atomic.Int32
	require.NoError(t, d.Submit(&countingJob{id: "bad", counter: &counter, err: errors.New("boom")}))
	require.NoError(t, d.Submit(&countingJob{id: "good", counter: &counter}))

	require.Eventually(t, func() bool {
		return counter.Load() == 2
	}, 2*time.Second, 10*time.Millisecond, "A failing job must not take a worker down")
}

func TestDispatcher_StopWaitsForInFlightJobs(t *testing.T) {
	d := NewDispatcher(1, 4, quietLogger())
	d.Run()

	var counter atomic.Int32
	block := make(chan struct{})
	require.NoError(t, d.Submit(&countingJob{id: "slow", counter: &counter, block: block}))

	// Give the worker time to pick the job up, then release it while Stop
	// is waiting.
	time.Sleep(50 * time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.Stop()
	}()

	close(block)
	wg.Wait()
	assert.Equal(t, int32(1), counter.Load(), "Stop must wait for the in-flight job to finish")
}
