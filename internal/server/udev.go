package server

import "os/exec"

// execPkexec runs script through pkexec bash -c, the same privilege
// escalation path the original app used for writing the udev rule file.
func execPkexec(script string) error {
	return exec.Command("pkexec", "bash", "-c", script).Run()
}
