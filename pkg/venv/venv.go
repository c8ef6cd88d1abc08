package venv

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/langflow-tools/wxflow/pkg/validation"
)

// Minimum Python version Langflow supports.
const (
	MinPythonMajor = 3
	MinPythonMinor = 10
)

type Config struct {
	// Dir is the virtual environment directory, e.g. ".venv".
	Dir string
	// Python is the interpreter used to create the venv, e.g. "python3".
	Python string
	// Package is the pip package to install into the venv, e.g. "langflow".
	Package string
}

func (c Config) Validate() error {
	if c.Dir == "" {
		return errors.New("venv dir must not be empty")
	}
	if c.Python == "" {
		return errors.New("python interpreter must not be empty")
	}
	if c.Package == "" {
		return errors.New("package must not be empty")
	}
	return nil
}

// Manager creates and populates the Python virtual environment that the
// Langflow host runs in.
type Manager struct {
	conf   Config
	runner Runner
	logger zerolog.Logger
}

func New(conf Config, runner Runner, logger zerolog.Logger) (*Manager, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return &Manager{
		conf:   conf,
		runner: runner,
		logger: logger.With().Str("component", "venv").Logger(),
	}, nil
}

// Exists reports whether the configured directory already holds a virtual
// environment.
func (m *Manager) Exists() bool {
	return validation.ValidateVenv(m.conf.Dir) == nil
}

// Python returns the path of the venv's own interpreter.
func (m *Manager) Python() string {
	return m.Executable("python")
}

// Executable returns the path of a binary inside the venv.
func (m *Manager) Executable(name string) string {
	return filepath.Join(m.conf.Dir, "bin", name)
}

// Ensure creates the virtual environment if it does not exist yet. It
// returns true if the venv was created in this call. A second Ensure on the
// same directory is a no-op.
func (m *Manager) Ensure(ctx context.Context) (bool, error) {
	if m.Exists() {
		m.logger.Info().Str("dir", m.conf.Dir).Msg("Virtual environment already exists, skipping creation")
		return false, nil
	}

	if err := m.checkInterpreter(ctx); err != nil {
		return false, err
	}

	m.logger.Info().Str("dir", m.conf.Dir).Str("python", m.conf.Python).Msg("Creating virtual environment")

	if err := m.runner.Run(ctx, m.conf.Python, "-m", "venv", m.conf.Dir); err != nil {
		return false, errors.Wrap(err, "failed to create virtual environment")
	}

	if !m.Exists() {
		return false, errors.Errorf("virtual environment creation left no usable venv at %s", m.conf.Dir)
	}

	return true, nil
}

// InstallHost installs (or upgrades) the host package into the venv using
// the venv's own interpreter, so the system Python is never touched.
func (m *Manager) InstallHost(ctx context.Context) error {
	if !m.Exists() {
		return errors.Wrapf(validation.ErrVenvMissing, "%s", m.conf.Dir)
	}

	python := m.Python()

	m.logger.Info().Msg("Upgrading pip")
	if err := m.runner.Run(ctx, python, "-m", "pip", "install", "--upgrade", "pip"); err != nil {
		return errors.Wrap(err, "failed to upgrade pip")
	}

	m.logger.Info().Str("package", m.conf.Package).Msg("Installing host package")
	if err := m.runner.Run(ctx, python, "-m", "pip", "install", "--upgrade", m.conf.Package); err != nil {
		return errors.Wrapf(err, "failed to install %s", m.conf.Package)
	}

	return nil
}

func (m *Manager) checkInterpreter(ctx context.Context) error {
	version, err := m.Version(ctx, m.conf.Python)
	if err != nil {
		return err
	}

	major, minor, err := ParseVersion(version)
	if err != nil {
		return err
	}

	if major < MinPythonMajor || (major == MinPythonMajor && minor < MinPythonMinor) {
		return errors.Errorf("python %s is too old, need at least %d.%d",
			version, MinPythonMajor, MinPythonMinor)
	}

	m.logger.Debug().Str("version", version).Msg("Python interpreter is usable")

	return nil
}

// Version returns the version string of the given interpreter, e.g. "3.12.4".
func (m *Manager) Version(ctx context.Context, python string) (string, error) {
	out, err := m.runner.Output(ctx, python, "--version")
	if err != nil {
		return "", errors.Wrapf(err, "failed to get version of %s", python)
	}

	// "Python 3.12.4" -> "3.12.4"
	version := strings.TrimSpace(strings.TrimPrefix(out, "Python"))
	if version == "" {
		return "", fmt.Errorf("unexpected python version output: %q", out)
	}

	return version, nil
}

// ParseVersion splits a "major.minor[.patch]" version string.
func ParseVersion(version string) (major, minor int, err error) {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("invalid version: %q", version)
	}

	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid major version: %q", version)
	}

	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minor version: %q", version)
	}

	return major, minor, nil
}
