package plugin

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type jobCall struct {
	Job string
	Arg string
}

// fakeRunner records calls and fails the jobs named in fail.
type fakeRunner struct {
	mu    sync.Mutex
	calls []jobCall
	fail  map[string]bool
}

func (f *fakeRunner) Run(_ context.Context, job Job, arg string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, jobCall{Job: job.Name, Arg: arg})
	f.mu.Unlock()

	if f.fail[job.Name] {
		return "", &PostProcessingError{Job: job.Name, Arg: arg, Err: errors.New("exit status 1")}
	}
	return job.Name + " done\n", nil
}

func (f *fakeRunner) sortedCalls() []jobCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := append([]jobCall(nil), f.calls...)
	sort.Slice(calls, func(i, j int) bool { return calls[i].Job < calls[j].Job })
	return calls
}

func TestDefaultJobs(t *testing.T) {
	jobs := DefaultJobs("php", "conversion_script.php", "", "wave-accessibility.php", "whois-report.php")

	want := []Job{
		{Name: "conversion", Command: "php", Args: []string{"conversion_script.php"}, Input: InputFilename},
		{Name: "accessibility", Command: "php", Args: []string{"wave-accessibility.php"}, Input: InputURL},
		{Name: "whois", Command: "php", Args: []string{"whois-report.php"}, Input: InputURL},
	}
	if diff := cmp.Diff(want, jobs); diff != "" {
		t.Errorf("DefaultJobs() mismatch (-want +got):\n%s", diff)
	}
}

func TestOrchestratorLaunch(t *testing.T) {
	defer goleak.VerifyNone(t)
	hook := test.NewGlobal()
	defer hook.Reset()

	runner := &fakeRunner{fail: map[string]bool{"markup-validation": true}}
	o := NewOrchestrator(runner, DefaultJobs("php", "c.php", "v.php", "a.php", "w.php"), time.Minute)

	o.Launch("out/mod1.xml", "https://example.com/")
	o.Wait()

	want := []jobCall{
		{Job: "accessibility", Arg: "https://example.com/"},
		{Job: "conversion", Arg: "out/mod1.xml"},
		{Job: "markup-validation", Arg: "https://example.com/"},
		{Job: "whois", Arg: "https://example.com/"},
	}
	if diff := cmp.Diff(want, runner.sortedCalls()); diff != "" {
		t.Errorf("Launch() calls mismatch (-want +got):\n%s", diff)
	}

	var failed []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "Post-processing job failed" {
			failed = append(failed, e)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, "markup-validation", failed[0].Data["Job"])
	var ppErr *PostProcessingError
	assert.ErrorAs(t, failed[0].Data[logrus.ErrorKey].(error), &ppErr)
}

func TestOrchestratorSkipsEmptyURL(t *testing.T) {
	runner := &fakeRunner{}
	o := NewOrchestrator(runner, DefaultJobs("php", "c.php", "v.php", "a.php", "w.php"), 0)

	o.Launch("out/mod1.xml", "")
	o.Wait()

	if diff := cmp.Diff([]jobCall{{Job: "conversion", Arg: "out/mod1.xml"}}, runner.sortedCalls()); diff != "" {
		t.Errorf("Launch() calls mismatch (-want +got):\n%s", diff)
	}
}

func TestExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	tests := []struct {
		name    string
		job     Job
		timeout time.Duration
		out     string
		stderr  string
		wantErr bool
	}{
		{
			name: "EchoesArgument",
			job:  Job{Name: "echo", Command: "sh", Args: []string{"-c", `echo "converted $0"`}},
			out:  "converted report.xml\n",
		},
		{
			name:    "NonZeroExit",
			job:     Job{Name: "fail", Command: "sh", Args: []string{"-c", "echo oops >&2; exit 3"}},
			stderr:  "oops",
			wantErr: true,
		},
		{
			name:    "MissingProgram",
			job:     Job{Name: "missing", Command: "definitely-not-a-real-program"},
			wantErr: true,
		},
		{
			name:    "Timeout",
			job:     Job{Name: "slow", Command: "sh", Args: []string{"-c", "exec sleep 5"}},
			timeout: 50 * time.Millisecond,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			if tc.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, tc.timeout)
				defer cancel()
			}

			out, err := ExecRunner{}.Run(ctx, tc.job, "report.xml")
			if !tc.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tc.out, out)
				return
			}

			var ppErr *PostProcessingError
			require.ErrorAs(t, err, &ppErr)
			assert.Equal(t, tc.job.Name, ppErr.Job)
			assert.Equal(t, "report.xml", ppErr.Arg)
			assert.Equal(t, tc.stderr, ppErr.Stderr)
		})
	}
}
