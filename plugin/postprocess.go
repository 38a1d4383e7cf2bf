package plugin

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// JobInput selects what a post-processing job is fed.
type JobInput int

const (
	// InputFilename feeds the job the generated report path.
	InputFilename JobInput = iota
	// InputURL feeds the job the normalized target URL.
	InputURL
)

// Job is one external post-processing step.
type Job struct {
	Name    string
	Command string
	Args    []string
	Input   JobInput
}

// JobRunner executes a job with its single argument and returns its stdout.
type JobRunner interface {
	Run(ctx context.Context, job Job, arg string) (string, error)
}

// ExecRunner runs jobs as subprocesses.
type ExecRunner struct{}

// Run executes job.Command with job.Args followed by arg.
func (ExecRunner) Run(ctx context.Context, job Job, arg string) (string, error) {
	args := append(append([]string{}, job.Args...), arg)
	cmd := exec.CommandContext(ctx, job.Command, args...)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), &PostProcessingError{
			Job:    job.Name,
			Arg:    arg,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return stdout.String(), nil
}

// DefaultJobs builds the conversion, markup validation, accessibility and
// domain lookup jobs. Jobs without a script are left out.
func DefaultJobs(interpreter, conversion, validation, accessibility, whois string) []Job {
	specs := []struct {
		name   string
		script string
		input  JobInput
	}{
		{"conversion", conversion, InputFilename},
		{"markup-validation", validation, InputURL},
		{"accessibility", accessibility, InputURL},
		{"whois", whois, InputURL},
	}

	var jobs []Job
	for _, s := range specs {
		if s.script == "" {
			logrus.WithField("Job", s.name).Debug("No script configured, skipping post-processing job")
			continue
		}
		jobs = append(jobs, Job{Name: s.name, Command: interpreter, Args: []string{s.script}, Input: s.input})
	}
	return jobs
}

// Orchestrator launches post-processing jobs without blocking the caller.
// Failures are logged and never returned.
type Orchestrator struct {
	runner  JobRunner
	jobs    []Job
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewOrchestrator returns an orchestrator running jobs through runner. A
// zero timeout leaves jobs unbounded.
func NewOrchestrator(runner JobRunner, jobs []Job, timeout time.Duration) *Orchestrator {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Orchestrator{runner: runner, jobs: jobs, timeout: timeout}
}

// Launch starts every job for a written report and returns immediately.
func (o *Orchestrator) Launch(filename, targetURL string) {
	for _, job := range o.jobs {
		arg := filename
		if job.Input == InputURL {
			arg = targetURL
		}
		if arg == "" {
			logrus.WithField("Job", job.Name).Debug("No input for post-processing job, skipping")
			continue
		}

		logrus.WithField("Job", job.Name).Infof("Calling post-processing job with %s", arg)
		o.wg.Add(1)
		go func(job Job, arg string) {
			defer o.wg.Done()
			o.run(job, arg)
		}(job, arg)
	}
}

func (o *Orchestrator) run(job Job, arg string) {
	ctx := context.Background()
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	out, err := o.runner.Run(ctx, job, arg)
	logger := logrus.WithField("Job", job.Name).WithField("Input", arg)
	if err != nil {
		logger.WithError(err).Warn("Post-processing job failed")
	}
	if out = strings.TrimSpace(out); out != "" {
		logger.Info(out)
	}
}

// Wait blocks until every launched job has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}
