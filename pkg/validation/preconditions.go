package validation

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

var (
	ErrVenvMissing            = errors.New("virtual environment not found, run `wxflow install` first")
	ErrHostNotInstalled       = errors.New("langflow executable not found in the virtual environment, run `wxflow install` first")
	ErrComponentSourceMissing = errors.New("component source file not found")
	ErrDestinationFileExists  = errors.New("destination file already exists, use --force to overwrite")
	ErrUnsupportedFileType    = errors.New("only regular files are supported as components")
	ErrNoComponents           = errors.New("no component files found in the source directory")
)

// ValidateVenv checks that dir looks like a usable Python virtual
// environment: pyvenv.cfg at the root and a bin/ directory with a python
// executable.
func ValidateVenv(dir string) error {
	stat, err := os.Stat(dir)
	if err != nil || !stat.IsDir() {
		return errors.Wrapf(ErrVenvMissing, "%s", dir)
	}

	if _, err := os.Stat(filepath.Join(dir, "pyvenv.cfg")); err != nil {
		return errors.Wrapf(ErrVenvMissing, "%s has no pyvenv.cfg", dir)
	}

	if _, err := os.Stat(filepath.Join(dir, "bin", "python")); err != nil {
		return errors.Wrapf(ErrVenvMissing, "%s has no bin/python", dir)
	}

	return nil
}

// ValidateExecutable checks that path exists and is an executable regular file.
func ValidateExecutable(path string) error {
	stat, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(ErrHostNotInstalled, "%s", path)
	}

	if !stat.Mode().IsRegular() || stat.Mode().Perm()&0111 == 0 {
		return errors.Wrapf(ErrHostNotInstalled, "%s is not executable", path)
	}

	return nil
}

// ValidateComponentSource checks that path exists and is a regular file.
// Components are single plugin files, symlinks and directories are rejected
// so the host never loads something that can change from under it.
func ValidateComponentSource(path string) error {
	stat, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrComponentSourceMissing, "%s", path)
		}
		return errors.Wrapf(err, "failed to stat component source %s", path)
	}

	if !stat.Mode().IsRegular() {
		return errors.Wrapf(ErrUnsupportedFileType, "%s (%s)", path, stat.Mode())
	}

	return nil
}
