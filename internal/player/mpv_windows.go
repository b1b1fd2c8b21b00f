//go:build windows

package player

import (
	"context"
	"net"
	"os/exec"
	"syscall"
	"time"

	"gopkg.in/natefinch/npipe.v2"
)

const ipcDialTimeout = 2 * time.Second

// detachFromTerminal starts mpv in a new process group so console control events are not shared with the TUI
func detachFromTerminal(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

// Named pipes vanish with their server, so there is never a file to wait for or clean up
func socketReady(string) bool { return true }

func removeStaleSocket(string) error { return nil }

func dialIPC(ctx context.Context, path string) (net.Conn, error) {
	timeout := ipcDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	return npipe.DialTimeout(path, timeout)
}
