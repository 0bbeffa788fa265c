package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/docker/docker/api/types/registry"
	"github.com/moby/term"

	"github.com/dockrun/dockrun/internal/ui"
)

// promptAuthenticator asks the user for registry credentials when an
// anonymous pull fails. It refuses to prompt without a terminal so scripts
// fail cleanly instead of hanging.
func promptAuthenticator(registryHost string) (registry.AuthConfig, error) {
	if !term.IsTerminal(os.Stdin.Fd()) {
		return registry.AuthConfig{}, fmt.Errorf("registry %s requires login but stdin is not a terminal", registryHost)
	}

	ui.Info("Login required for registry %s", registryHost)
	reader := bufio.NewReader(os.Stdin)

	fmt.Fprint(os.Stderr, "Username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		return registry.AuthConfig{}, fmt.Errorf("reading username: %w", err)
	}

	fmt.Fprint(os.Stderr, "Password: ")
	password, err := readHidden(reader)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return registry.AuthConfig{}, fmt.Errorf("reading password: %w", err)
	}

	return registry.AuthConfig{
		Username:      strings.TrimSpace(username),
		Password:      password,
		ServerAddress: registryHost,
	}, nil
}

// readHidden reads one line with terminal echo disabled.
func readHidden(reader *bufio.Reader) (string, error) {
	fd := os.Stdin.Fd()
	state, err := term.SaveState(fd)
	if err != nil {
		return "", err
	}
	if err := term.DisableEcho(fd, state); err != nil {
		return "", err
	}
	defer term.RestoreTerminal(fd, state)

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
