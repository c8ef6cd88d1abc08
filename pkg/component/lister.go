package component

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/langflow-tools/wxflow/pkg/utils/size"
	"github.com/langflow-tools/wxflow/pkg/validation"
)

type Config struct {
	// SourceDir is the local component source directory.
	SourceDir string
	// DestRoot is <langflow_home>/components.
	DestRoot string

	Force bool
	// DoNotCreateDirs skips destination directory creation. Used by
	// verify, which must not touch the destination.
	DoNotCreateDirs bool
}

// Validate checks that every required component source exists. It runs
// before anything is copied, so a missing source aborts the whole
// operation up front.
func (c Config) Validate() error {
	if c.SourceDir == "" {
		return errors.New("source directory must not be empty")
	}
	if c.DestRoot == "" {
		return errors.New("destination root must not be empty")
	}

	for _, kind := range Kinds {
		for _, name := range Required[kind] {
			if err := validation.ValidateComponentSource(filepath.Join(c.SourceDir, string(kind), name)); err != nil {
				return err
			}
		}
	}

	return nil
}

// Lister discovers component files in the source directory and sends them
// to the provided channel, so the deployer can pick them up and copy them.
//
// Note that lister also creates the destination kind directories as soon as
// it starts, so the deployer can copy files into them.
type Lister struct {
	conf   Config
	logger zerolog.Logger
}

func New(config Config, logger zerolog.Logger) *Lister {
	if err := config.Validate(); err != nil {
		panic(err)
	}

	return &Lister{
		conf:   config,
		logger: logger.With().Str("component", "lister").Logger(),
	}
}

func (l *Lister) Start(ctx context.Context, listed chan<- Component) error {
	foundAny := false

	for _, kind := range Kinds {
		found, err := l.listKind(ctx, listed, kind)
		if err != nil {
			return err
		}
		foundAny = foundAny || found
	}

	if !foundAny {
		return errors.Wrapf(validation.ErrNoComponents, "%s", l.conf.SourceDir)
	}

	return nil
}

func (l *Lister) listKind(ctx context.Context, listed chan<- Component, kind Kind) (bool, error) {
	srcDir := filepath.Join(l.conf.SourceDir, string(kind))
	dstDir := filepath.Join(l.conf.DestRoot, string(kind))

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		if os.IsNotExist(err) && len(Required[kind]) == 0 {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to read component source directory %s", srcDir)
	}

	if !l.conf.DoNotCreateDirs {
		if err := l.createDestDir(dstDir); err != nil {
			return false, err
		}
	}

	found := false
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return found, ctx.Err()
		default:
		}

		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".py") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return found, errors.Wrapf(err, "failed to get component file info for %s", entry.Name())
		}

		if !info.Mode().IsRegular() {
			l.logger.Warn().Str("path", filepath.Join(srcDir, entry.Name())).
				Str("type", info.Mode().String()).Msg("Ignoring unsupported file type")
			continue
		}

		job := Component{
			Kind:            kind,
			Name:            entry.Name(),
			SourcePath:      filepath.Join(srcDir, entry.Name()),
			DestinationPath: filepath.Join(dstDir, entry.Name()),
			FileInfo:        info,
		}

		select {
		case <-ctx.Done():
			return found, ctx.Err()
		case listed <- job:
			found = true
			l.logger.Trace().Str("source", job.SourcePath).Str("destination", job.DestinationPath).
				Int64("size", info.Size()).Str("sizeHuman", size.FormatBytes(info.Size())).
				Msg("Discovered component")
		}
	}

	return found, nil
}

func (l *Lister) createDestDir(dst string) error {
	l.logger.Debug().Str("path", dst).Msg("Creating destination directory")

	// The destination must exist before the deployer opens any file in it.
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create destination directory %s", dst)
	}

	return nil
}
