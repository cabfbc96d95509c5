package adb

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/quietroot/droid-mcp/droid/definitions"
)

const (
	defaultPath = "adb"

	listTimeout = 5 * time.Second
	execTimeout = 30 * time.Second
)

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Bridge invokes the adb binary as a subprocess. Each call is independent;
// the bridge keeps no connection state of its own.
type Bridge struct {
	path string
	look func(file string) (string, error)
	run  runFunc
}

func New(path string) *Bridge {
	if path == "" {
		path = defaultPath
	}
	return &Bridge{
		path: path,
		look: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
	}
}

func (b *Bridge) Available() error {
	if _, err := b.look(b.path); err != nil {
		return fmt.Errorf("adb not available in PATH: %w", err)
	}
	return nil
}

// Version returns the first line of "adb version".
func (b *Bridge) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	output, err := b.run(ctx, b.path, "version")
	if err != nil {
		return "", fmt.Errorf("adb version failed: %w", err)
	}
	line, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(line), nil
}

func (b *Bridge) Devices(ctx context.Context) ([]definitions.DeviceInfo, error) {
	if err := b.Available(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	log.Debug().Str("cmd", b.path+" devices -l").Msg("[Devices] run cmd")
	output, err := b.run(ctx, b.path, "devices", "-l")
	if err != nil {
		log.Error().Err(err).Msg("[Devices] run cmd failed")
		return nil, fmt.Errorf("adb devices failed: %w", err)
	}

	var devices []definitions.DeviceInfo
	scanner := bufio.NewScanner(strings.NewReader(string(output)))

	// Skip the first line (header)
	scanner.Scan()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}

		serial := parts[0]
		status := parts[1]

		connType := definitions.USB
		if strings.Contains(serial, ":") {
			connType = definitions.Remote
		}

		var model string
		for _, part := range parts[2:] {
			if strings.HasPrefix(part, "model:") {
				model = strings.SplitN(part, ":", 2)[1]
				break
			}
		}

		devices = append(devices, definitions.DeviceInfo{
			Serial:         serial,
			Status:         status,
			ConnectionType: connType,
			Model:          model,
		})
	}

	return devices, nil
}

func (b *Bridge) ReadyDevices(ctx context.Context) ([]string, error) {
	devices, err := b.Devices(ctx)
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(devices, func(d definitions.DeviceInfo, _ int) (string, bool) {
		return d.Serial, d.Ready()
	}), nil
}

// Exec runs one adb command, prefixed with "-s <serial>" when a serial is
// given, and returns the combined output.
func (b *Bridge) Exec(ctx context.Context, serial string, args ...string) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, execTimeout)
		defer cancel()
	}

	cmdArgs := args
	if serial != "" {
		cmdArgs = append([]string{"-s", serial}, args...)
	}

	log.Debug().Str("cmd", fmt.Sprintf("%s %s", b.path, strings.Join(cmdArgs, " "))).Msg("[Exec] run cmd")

	output, err := b.run(ctx, b.path, cmdArgs...)
	if err != nil {
		log.Error().Err(err).Str("output", string(output)).Msg("[Exec] run cmd failed")
		return string(output), fmt.Errorf("adb %s failed: %w", strings.Join(args, " "), err)
	}
	return string(output), nil
}
