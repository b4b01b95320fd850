package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulntor/ipsniffer/pkg/scanexec"
	"github.com/vulntor/ipsniffer/pkg/scanner"
)

// stubDialer accepts connections on the ports in open and refuses the rest.
type stubDialer struct {
	open map[uint16]bool
}

func (d *stubDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}
	port, _ := strconv.Atoi(portStr)
	if d.open[uint16(port)] {
		client, server := net.Pipe()
		_ = server.Close()
		return client, nil
	}
	return nil, &net.OpError{Op: "dial", Net: network, Err: syscall.ECONNREFUSED}
}

// withDialer routes sweeps started by the command through d.
func withDialer(t *testing.T, d scanner.Dialer) {
	t.Helper()
	prev := newService
	newService = func() *scanexec.Service { return scanexec.NewService().WithDialer(d) }
	t.Cleanup(func() { newService = prev })
}

// isolatedListener returns a listening port p whose neighbours p-1 and
// p+1 refuse connections.
func isolatedListener(t *testing.T) int {
	t.Helper()
	refused := func(port int) bool {
		conn, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), time.Second)
		if err != nil {
			return true
		}
		_ = conn.Close()
		return false
	}
	for attempt := 0; attempt < 10; attempt++ {
		port := listen(t)
		if port > 1 && port < 65535 && refused(port-1) && refused(port+1) {
			return port
		}
	}
	t.Skip("no listening port with free neighbours")
	return 0
}

func listen(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	return ln.Addr().(*net.TCPAddr).Port
}

// closedPort returns a port that was just released by a listener.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func run(t *testing.T, ctx context.Context, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(ctx, args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func rangeArgs(start, end int) []string {
	return []string{"-a", "127.0.0.1", "-s", strconv.Itoa(start), "-e", strconv.Itoa(end)}
}

func TestRootCommandReportsOpenPort(t *testing.T) {
	port := listen(t)

	code, stdout, stderr := run(t, context.Background(), rangeArgs(port, port+1)...)

	assert.Equal(t, scanexec.ExitOK, code, stderr)
	assert.Equal(t, ".\n"+strconv.Itoa(port)+" is open\n", stdout)
}

func TestRootCommandMiddlePortOfThree(t *testing.T) {
	port := isolatedListener(t)

	code, stdout, stderr := run(t, context.Background(), rangeArgs(port-1, port+2)...)

	assert.Equal(t, scanexec.ExitOK, code, stderr)
	assert.Equal(t, ".\n"+strconv.Itoa(port)+" is open\n", stdout)
}

func TestRootCommandSweepListings(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		open   []uint16
		stdout string
	}{
		{
			name:   "one open in three",
			args:   rangeArgs(8000, 8003),
			open:   []uint16{8001},
			stdout: ".\n8001 is open\n",
		},
		{
			name:   "none open",
			args:   rangeArgs(9000, 9005),
			stdout: "\n",
		},
		{
			name:   "listing sorted",
			args:   append(rangeArgs(1, 1025), "-n", "32"),
			open:   []uint16{443, 22, 80},
			stdout: "...\n22 is open\n80 is open\n443 is open\n",
		},
		{
			name:   "ipv6 address",
			args:   []string{"-a", "::1", "-s", "20", "-e", "25"},
			open:   []uint16{22},
			stdout: ".\n22 is open\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open := make(map[uint16]bool, len(tt.open))
			for _, p := range tt.open {
				open[p] = true
			}
			withDialer(t, &stubDialer{open: open})

			code, stdout, stderr := run(t, context.Background(), tt.args...)

			assert.Equal(t, scanexec.ExitOK, code, stderr)
			assert.Equal(t, tt.stdout, stdout)
			assert.Empty(t, stderr)
		})
	}
}

func TestRootCommandClosedPort(t *testing.T) {
	port := closedPort(t)

	code, stdout, _ := run(t, context.Background(), rangeArgs(port, port+1)...)

	assert.Equal(t, scanexec.ExitOK, code)
	assert.Equal(t, "\n", stdout)
}

func TestRootCommandBoundedConcurrency(t *testing.T) {
	port := listen(t)

	args := append(rangeArgs(port, port+1), "-n", "1", "-t", "500ms")
	code, stdout, stderr := run(t, context.Background(), args...)

	assert.Equal(t, scanexec.ExitOK, code, stderr)
	assert.Equal(t, ".\n"+strconv.Itoa(port)+" is open\n", stdout)
}

func TestRootCommandEmptyRange(t *testing.T) {
	for _, args := range [][]string{rangeArgs(100, 100), rangeArgs(200, 100)} {
		code, stdout, _ := run(t, context.Background(), args...)
		assert.Equal(t, scanexec.ExitOK, code, "args %v", args)
		assert.Equal(t, "\n", stdout, "args %v", args)
	}
}

func TestRootCommandJSONOutput(t *testing.T) {
	port := listen(t)

	args := append(rangeArgs(port, port+1), "-o", "json")
	code, stdout, stderr := run(t, context.Background(), args...)
	require.Equal(t, scanexec.ExitOK, code, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"event":"port_open","port":`+strconv.Itoa(port)+`}`, lines[0])

	var done map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &done))
	assert.Equal(t, "sweep_complete", done["event"])
	assert.Equal(t, []any{float64(port)}, done["open"])
	assert.EqualValues(t, 1, done["attempted"])
}

func TestRootCommandInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad address flag", []string{"-a", "not-an-ip"}},
		{"start out of range", []string{"-s", "0"}},
		{"end too large", []string{"-e", "70000"}},
		{"unknown output", []string{"-o", "xml"}},
		{"unknown log level", []string{"--log-level", "loud"}},
		{"unitless timeout", []string{"-c", unitlessTimeoutConfig(t)}},
		{"negative concurrency", []string{"--concurrency=-1"}},
		{"unknown flag", []string{"--bogus"}},
		{"positional argument", []string{"10.0.0.1"}},
		{"missing config file", []string{"-c", filepath.Join(t.TempDir(), "missing.yaml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := run(t, context.Background(), tt.args...)
			assert.Equal(t, scanexec.ExitUsage, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "✗ Failed to scan")
			assert.Contains(t, stderr, "Usage:")
		})
	}
}

func unitlessTimeoutConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ipsniffer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: 5\n"), 0o600))
	return path
}

func TestRootCommandInvalidAddressFromEnv(t *testing.T) {
	t.Setenv("IPSNIFFER_ADDRESS", "example.com")

	code, stdout, stderr := run(t, context.Background())

	assert.Equal(t, scanexec.ExitUsage, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "address")
}

func TestRootCommandConfigFile(t *testing.T) {
	port := listen(t)
	path := filepath.Join(t.TempDir(), "ipsniffer.yaml")
	content := "address: 127.0.0.1\nstart: " + strconv.Itoa(port) + "\nend: " + strconv.Itoa(port+1) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	code, stdout, stderr := run(t, context.Background(), "-c", path)

	assert.Equal(t, scanexec.ExitOK, code, stderr)
	assert.Equal(t, ".\n"+strconv.Itoa(port)+" is open\n", stdout)
}

func TestRootCommandInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code, stdout, stderr := run(t, ctx, rangeArgs(1, 1025)...)

	assert.Equal(t, scanexec.ExitInterrupted, code)
	assert.Equal(t, "\n", stdout)
	assert.Contains(t, stderr, "Error: scan interrupted")
	assert.NotContains(t, stderr, "Usage:")
}

func TestRootCommandVerboseDiagnostics(t *testing.T) {
	port := closedPort(t)

	args := append(rangeArgs(port, port+1), "-v")
	code, stdout, stderr := run(t, context.Background(), args...)

	assert.Equal(t, scanexec.ExitOK, code)
	assert.Equal(t, "\n", stdout)
	assert.Contains(t, stderr, "[VERBOSE]")
	assert.Contains(t, stderr, "Sweep started: 127.0.0.1")
	assert.Contains(t, stderr, "Sweep finished: 0/1 ports open")
}

func TestRootCommandRunsVersion(t *testing.T) {
	code, stdout, _ := run(t, context.Background(), "version", "--short")

	assert.Equal(t, scanexec.ExitOK, code)
	assert.True(t, strings.HasPrefix(stdout, "ipsniffer version: "), stdout)
}
