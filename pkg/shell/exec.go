package shell

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/anchore/go-logger"
	"github.com/anchore/go-logger/adapter/discard"
	"github.com/charmbracelet/x/ansi"
)

type ExecOpts struct {
	BinaryPath string
	Logger     logger.Logger
	Args       []string
	Env        []string
	Dir        string
	Stdout     io.Writer
	Stderr     io.Writer
}

func Exec(opts ExecOpts) error {
	if opts.BinaryPath == "" {
		return fmt.Errorf("binary path is required")
	}
	if opts.Logger == nil {
		opts.Logger = discard.New()
	}

	var stderrBuffer bytes.Buffer

	cmd := exec.Command(opts.BinaryPath, opts.Args...)
	cmd.Env = append(cmd.Environ(), opts.Env...)
	cmd.Dir = opts.Dir
	cmd.Stderr = &stderrBuffer
	if opts.Stdout != nil {
		cmd.Stdout = opts.Stdout
	} else {
		cmd.Stdout = os.Stdout
	}

	opts.Logger.WithFields("binary", opts.BinaryPath, "args", opts.Args).Debug("Executing command")
	runErr := cmd.Run()

	// write the stderr output before handling the error
	// to make sure we don't lose it before returning
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	var outputErrLogHandler sync.Once
	for _, line := range strings.Split(stderrBuffer.String(), "\n") {
		line := ansi.Strip(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		_, err := stderr.Write([]byte(line + "\n"))
		if err != nil {
			outputErrLogHandler.Do(func() { // once is enough, don't spam the log
				opts.Logger.Warnf("failed to write stderr of %s: %s", opts.BinaryPath, err)
			})
		}
	}

	if runErr != nil {
		return fmt.Errorf("failed to execute %q: %w", opts.BinaryPath, runErr)
	}

	return nil
}
