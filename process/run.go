package process

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kbukum/edlflash/decode"
	"github.com/kbukum/edlflash/errors"
	"github.com/kbukum/edlflash/logger"
)

// chunkSize is the per-read buffer of a drain goroutine.
const chunkSize = 4096

var newPipe = os.Pipe

// Execute runs argv in dir (current directory if empty) and returns the
// tool's standard output. On failure the returned error carries the tool's
// diagnostic text; see Diagnostic.
func Execute(ctx context.Context, argv []string, dir string) (string, error) {
	result, err := Run(ctx, Command{Argv: argv, Dir: dir})
	if err != nil {
		return "", err
	}
	return result.Stdout, nil
}

// Run executes a tool and waits for it to complete while both of its output
// streams are drained concurrently.
//
// If the context is canceled, SIGTERM is sent to the tool's process group
// first, then SIGKILL after GracePeriod.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if len(cmd.Argv) == 0 || cmd.Argv[0] == "" {
		return nil, errors.InvalidCommand("command is empty")
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = DefaultGracePeriod
	}
	dec := cmd.Decoder
	if dec == nil {
		dec = decode.Default
	}
	dir := cmd.Dir
	if dir == "" {
		dir = "."
	}

	runID := uuid.NewString()
	log := logger.Get("process").WithFields(logger.Fields(logger.FieldRunID, runID))

	// Pipes are acquired before spawning so a failure never leaves a tool
	// running unobserved.
	stdoutR, stdoutW, err := newPipe()
	if err != nil {
		return nil, errors.PipeFailed("stdout", err).WithDetail(logger.FieldRunID, runID)
	}
	stderrR, stderrW, err := newPipe()
	if err != nil {
		closeAll(stdoutR, stdoutW)
		return nil, errors.PipeFailed("stderr", err).WithDetail(logger.FieldRunID, runID)
	}

	c := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...) //nolint:gosec // running vendor tools is the purpose of this package
	c.Dir = dir
	c.Env = mergeEnv(cmd.Env)
	c.Stdout = stdoutW
	c.Stderr = stderrW
	configureProcess(c)
	c.WaitDelay = gracePeriod

	log.Debug("spawning tool", logger.Fields(logger.FieldCommand, strings.Join(cmd.Argv, " "), "dir", dir))

	start := time.Now()
	if err := c.Start(); err != nil {
		closeAll(stdoutR, stdoutW, stderrR, stderrW)
		return nil, errors.SpawnFailed(cmd.Argv[0], err).WithDetail(logger.FieldRunID, runID)
	}
	// The child owns its copies now; ours must go or EOF never arrives.
	closeAll(stdoutW, stderrW)

	var stdout, stderr Output
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		drain(stdoutR, &stdout, dec, cmd.OnStdout, log, "stdout")
	}()
	go func() {
		defer wg.Done()
		drain(stderrR, &stderr, dec, cmd.OnStderr, log, "stderr")
	}()

	waitErr := c.Wait()
	join(ctx, c, &wg, gracePeriod, stdoutR, stderrR)
	closeAll(stdoutR, stderrR)

	result := &Result{
		RunID:    runID,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if waitErr == nil {
		log.Debug("tool exited", logger.DurationFields("run", result.Duration))
		return result, nil
	}

	diagnostic := result.Diagnostic()
	appErr := errors.ProcessFailed(diagnostic).WithDetail(logger.FieldRunID, runID)
	// Context cancellation is the expected way to stop a tool
	if ctx.Err() != nil {
		if diagnostic == "" {
			appErr.Message = "tool stopped: " + ctx.Err().Error()
		}
		appErr.WithCause(ctx.Err())
	} else {
		appErr.WithCause(waitErr)
	}
	log.Debug("tool failed", logger.Fields(logger.FieldError, waitErr.Error(), logger.FieldDuration, result.Duration.Milliseconds()))
	return result, appErr
}

// drain reads one output stream until it is closed, appending each decoded
// chunk to out in read order.
func drain(r io.Reader, out *Output, dec decode.Decoder, onChunk func(string), log *logger.Logger, stream string) {
	debug := log.Enabled(zerolog.DebugLevel)
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			text := dec.Decode(buf[:n])
			out.AppendChunk(text)
			if onChunk != nil {
				onChunk(text)
			}
			if debug {
				log.Debug(strings.ToUpper(stream)+": "+text, logger.Fields(logger.FieldStream, stream))
			}
		}
		if err != nil {
			// io.EOF once every writer has closed the pipe; os.ErrClosed
			// when join gave up on an orphaned writer.
			return
		}
	}
}

// join waits for both drain goroutines after the tool has exited. A
// background child of the tool can keep a pipe open past the tool's exit;
// once ctx is done such leftovers are killed and, failing that, the read
// ends are closed after the grace period so the run always completes.
func join(ctx context.Context, c *exec.Cmd, wg *sync.WaitGroup, gracePeriod time.Duration, readers ...*os.File) {
	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return
	case <-ctx.Done():
	}

	killGroup(c)
	timer := time.NewTimer(gracePeriod)
	defer timer.Stop()
	select {
	case <-drained:
	case <-timer.C:
		closeAll(readers...)
		<-drained
	}
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}

// mergeEnv merges additional env vars with the current environment.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	env := os.Environ()
	return append(env, extra...)
}
