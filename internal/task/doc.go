// Package task runs image-to-song tasks in the background.
//
// An Orchestrator accepts an image, records a pending domain.Task in a
// TaskStore, and hands a PipelineJob to the TaskRunner. The runner's worker
// pool executes the job (analyze, submit, poll, finalize) under a supervisory
// timeout, so HTTP handlers never block on the external services. Every
// failure, including panics and cancellation, ends up on the task record.
package task
