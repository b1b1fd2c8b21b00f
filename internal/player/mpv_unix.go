//go:build !windows

package player

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"os/exec"
	"syscall"
	"time"
)

const ipcDialTimeout = 2 * time.Second

// detachFromTerminal gives mpv its own process group.  Ctrl-C in the TUI then only reaches shuchu, which shuts mpv down itself.
func detachFromTerminal(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// socketReady reports whether mpv has created its IPC socket yet
func socketReady(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&fs.ModeSocket != 0
}

// removeStaleSocket unlinks a socket left behind by a crashed mpv.  Anything at path that is not a socket is left alone.
func removeStaleSocket(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("refusing to remove %s: not a socket", path)
	}
	return os.Remove(path)
}

func dialIPC(ctx context.Context, path string) (net.Conn, error) {
	d := net.Dialer{Timeout: ipcDialTimeout}
	return d.DialContext(ctx, "unix", path)
}
