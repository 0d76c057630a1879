package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DotRenderer turns Graphviz DOT source into SVG bytes.
type DotRenderer interface {
	RenderSVG(ctx context.Context, dot []byte) ([]byte, error)
}

// ExecRenderer shells out to the Graphviz binary, falling back to a
// wrapper script when the primary binary is missing or fails. Each
// invocation is bounded by Timeout so a wedged renderer cannot hold a
// request open; the caller treats a timeout as recoverable.
type ExecRenderer struct {
	Bin     string // e.g. "dot"
	Wrapper string // optional wrapper script tried after Bin
	Timeout time.Duration
}

func NewExecRenderer(bin, wrapper string, timeout time.Duration) *ExecRenderer {
	if bin == "" {
		bin = "dot"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &ExecRenderer{Bin: bin, Wrapper: wrapper, Timeout: timeout}
}

func (r *ExecRenderer) RenderSVG(ctx context.Context, dot []byte) ([]byte, error) {
	out, err := r.run(ctx, r.Bin, dot)
	if err == nil {
		return out, nil
	}
	if r.Wrapper == "" {
		return nil, err
	}
	out, werr := r.run(ctx, r.Wrapper, dot)
	if werr != nil {
		return nil, fmt.Errorf("renderer failed (primary: %v): %w", err, werr)
	}
	return out, nil
}

func (r *ExecRenderer) run(ctx context.Context, bin string, dot []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, "-Tsvg")
	cmd.Stdin = bytes.NewReader(dot)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%s timed out after %s", bin, r.Timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s: %s: %w", bin, msg, err)
		}
		return nil, fmt.Errorf("%s: %w", bin, err)
	}
	svg := stdout.Bytes()
	if !bytes.Contains(svg, []byte("<svg")) {
		return nil, errors.New(bin + ": output is not SVG")
	}
	return svg, nil
}
