package host

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/langflow-tools/wxflow/pkg/component"
	"github.com/langflow-tools/wxflow/pkg/validation"
)

type Config struct {
	// VenvDir is the virtual environment holding the langflow executable.
	VenvDir string
	// ComponentDir is the local component source directory.
	ComponentDir string
	// APIKeyEnv and ProjectIDEnv name the credential environment variables
	// the deployed components read at runtime.
	APIKeyEnv    string
	ProjectIDEnv string
	// Args are passed to the langflow executable after "run".
	Args []string
}

func (c Config) Validate() error {
	if c.VenvDir == "" {
		return errors.New("venv dir must not be empty")
	}
	if c.ComponentDir == "" {
		return errors.New("component dir must not be empty")
	}
	return nil
}

// Launcher checks preconditions and runs the Langflow host attached to the
// terminal.
type Launcher struct {
	conf   Config
	logger zerolog.Logger
}

func New(conf Config, logger zerolog.Logger) (*Launcher, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return &Launcher{
		conf:   conf,
		logger: logger.With().Str("component", "host").Logger(),
	}, nil
}

// Executable is the langflow binary inside the venv.
func (l *Launcher) Executable() string {
	return filepath.Join(l.conf.VenvDir, "bin", "langflow")
}

// CheckPreconditions verifies, in order: the virtual environment exists,
// the langflow executable is installed in it, and every required component
// source file is present. The first failure aborts, so a missing venv is
// reported before anything touches the component tree.
func (l *Launcher) CheckPreconditions() error {
	if err := validation.ValidateVenv(l.conf.VenvDir); err != nil {
		return err
	}

	if err := validation.ValidateExecutable(l.Executable()); err != nil {
		return err
	}

	for _, kind := range component.Kinds {
		for _, name := range component.Required[kind] {
			path := filepath.Join(l.conf.ComponentDir, string(kind), name)
			if err := validation.ValidateComponentSource(path); err != nil {
				return err
			}
		}
	}

	return nil
}

// CredentialReminder warns about unset credential environment variables.
// The host still starts without them: the components ask for credentials in
// the Langflow UI as well.
func (l *Launcher) CredentialReminder() {
	for _, env := range []string{l.conf.APIKeyEnv, l.conf.ProjectIDEnv} {
		if env == "" {
			continue
		}
		if os.Getenv(env) == "" {
			l.logger.Warn().Str("variable", env).
				Msg("Credential environment variable is not set, you will need to enter it in the Langflow UI")
		}
	}
}

// Run starts the Langflow host attached to the current terminal and blocks
// until it exits or ctx is cancelled. Interrupts go to the child first, as
// it shares the terminal's process group.
func (l *Launcher) Run(ctx context.Context) error {
	args := append([]string{"run"}, l.conf.Args...)

	l.logger.Info().Str("executable", l.Executable()).Msg("Starting Langflow")

	cmd := exec.CommandContext(ctx, l.Executable(), args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()

	if err := cmd.Run(); err != nil {
		return errors.Wrap(err, "langflow exited with an error")
	}

	return nil
}
