package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima-render/engine/containers"
	"github.com/spaghettifunk/anima-render/engine/core"
)

// The max number of job results that can wait for Update at once.
const MaxJobResults int = 512

/** @brief Runs on a worker goroutine. Must not touch the device. */
type JobStart func() (interface{}, error)

/** @brief Receives the result of a successful job on the goroutine calling Update. */
type JobOnComplete func(result interface{})

type JobOnFailure func(err error)

/**
 * @brief Describes a job to be run. CPU work happens in OnStart, device
 * uploads belong in OnComplete, which runs on the thread owning the factory.
 */
type JobTask struct {
	Name       string
	OnStart    JobStart
	OnComplete JobOnComplete
	OnFailure  JobOnFailure
}

type jobResult struct {
	task   JobTask
	result interface{}
	err    error
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	mutex   sync.Mutex
	cond    *sync.Cond
	results *containers.RingQueue[jobResult]
	pending int
	stopped bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemStopped = fmt.Errorf("job system is shut down")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
		results:    containers.NewRingQueue[jobResult](MaxJobResults),
	}
	js.cond = sync.NewCond(&js.mutex)

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				result, err := job.OnStart()
				if err != nil {
					core.LogError("job %s failed: %s", job.Name, err)
				}

				js.mutex.Lock()
				for js.results.IsFull() {
					js.cond.Wait()
				}
				_ = js.results.Enqueue(jobResult{task: job, result: result, err: err})
				js.cond.Broadcast()
				js.mutex.Unlock()
			}
		}()
	}
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue is full. Must be called from the same goroutine as Update.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	if jt.OnStart == nil {
		return fmt.Errorf("job %s has no start function", jt.Name)
	}
	js.mutex.Lock()
	if js.stopped {
		js.mutex.Unlock()
		return ErrJobSystemStopped
	}
	js.pending++
	js.mutex.Unlock()

	js.jobQueue <- jt
	return nil
}

/**
 * @brief Runs the callbacks of every finished job. Should happen once an
 * update cycle.
 */
func (js *JobSystem) Update() {
	for _, r := range js.drain() {
		switch {
		case r.err != nil && r.task.OnFailure != nil:
			r.task.OnFailure(r.err)
		case r.err == nil && r.task.OnComplete != nil:
			r.task.OnComplete(r.result)
		}
	}
}

func (js *JobSystem) drain() []jobResult {
	js.mutex.Lock()
	defer js.mutex.Unlock()
	var out []jobResult
	for !js.results.IsEmpty() {
		r, _ := js.results.Dequeue()
		out = append(out, r)
	}
	js.pending -= len(out)
	js.cond.Broadcast()
	return out
}

// Pending counts the submitted jobs whose callbacks have not run yet.
func (js *JobSystem) Pending() int {
	js.mutex.Lock()
	defer js.mutex.Unlock()
	return js.pending
}

/** @brief Blocks until every submitted job finished and its callbacks ran. */
func (js *JobSystem) Flush() {
	for {
		js.Update()
		js.mutex.Lock()
		for js.pending > 0 && js.results.IsEmpty() {
			js.cond.Wait()
		}
		done := js.pending == 0
		js.mutex.Unlock()
		if done {
			return
		}
	}
}

/**
 * @brief Shuts the job system down. Jobs already submitted still run and
 * their callbacks are invoked before it returns.
 */
func (js *JobSystem) Shutdown() error {
	js.mutex.Lock()
	if js.stopped {
		js.mutex.Unlock()
		return nil
	}
	js.stopped = true
	js.mutex.Unlock()

	close(js.jobQueue)
	js.Flush()
	js.wg.Wait()
	return nil
}
