//go:build darwin

package config

import (
	"fmt"
	"os/exec"
)

func keychainGet(service, account string) ([]byte, error) {
	return exec.Command(
		"security", "find-generic-password",
		"-s", service,
		"-a", account,
		"-w",
	).Output()
}

func keychainSet(service, account, value string) error {
	if err := exec.Command(
		"security", "add-generic-password",
		"-s", service,
		"-a", account,
		"-w", value,
		"-U",
	).Run(); err != nil {
		return fmt.Errorf("writing keychain item: %w", err)
	}
	return nil
}
