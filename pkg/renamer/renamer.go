package renamer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Renamer numbers the files of a single folder: every entry whose name ends
// with the extension becomes <prefix><n><extension>.
type Renamer struct {
	fs        afero.Fs
	logger    *logrus.Logger
	out       io.Writer
	order     Order
	preflight bool
	tracer    trace.Tracer
}

// Option configures a Renamer.
type Option func(*Renamer)

// WithFs replaces the filesystem, afero.NewOsFs() by default.
func WithFs(fs afero.Fs) Option { return func(r *Renamer) { r.fs = fs } }

// WithOutput sets where the per-file notices are printed, os.Stdout by default.
func WithOutput(w io.Writer) Option { return func(r *Renamer) { r.out = w } }

// WithOrder sets the numbering order.
func WithOrder(o Order) Option { return func(r *Renamer) { r.order = o } }

// WithPreflight toggles the conflict check run before the first rename.
func WithPreflight(v bool) Option { return func(r *Renamer) { r.preflight = v } }

// New creates a renamer. Without options it uses
// listing order, the real filesystem, notices on stdout and the preflight check.
func New(logger *logrus.Logger, opts ...Option) *Renamer {
	r := &Renamer{
		fs:        afero.NewOsFs(),
		logger:    logger,
		out:       os.Stdout,
		order:     OrderListing,
		preflight: true,
		tracer:    otel.Tracer("audio-renamer"),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Result lists the steps that were applied, in order.
type Result struct {
	Folder  string
	Applied []Step
}

// Rename applies the numbering scheme to folder. On error the returned result
// still lists the renames applied before the failure; they are not rolled back.
func (r *Renamer) Rename(ctx context.Context, folder, extension, prefix string) (*Result, error) {
	ctx, span := r.tracer.Start(ctx, "rename")
	defer span.End()

	span.SetAttributes(
		attribute.String("folder", folder),
		attribute.String("extension", extension),
		attribute.String("prefix", prefix),
	)

	result := &Result{Folder: folder}

	plan, err := r.BuildPlan(ctx, folder, extension, prefix)
	if err != nil {
		span.RecordError(err)
		return result, err
	}

	if r.preflight {
		if conflicts := plan.Conflicts(); len(conflicts) > 0 {
			err := &ConflictError{Folder: folder, Conflicts: conflicts}
			span.RecordError(err)
			return result, err
		}
	}

	r.logger.WithFields(logrus.Fields{
		"folder": folder,
		"count":  plan.Len(),
	}).Debug("Starting rename")

	for _, step := range plan.Steps {
		if err := r.apply(ctx, folder, step); err != nil {
			span.RecordError(err)
			return result, err
		}
		result.Applied = append(result.Applied, step)
	}

	span.SetAttributes(attribute.Int("renamed", len(result.Applied)))
	return result, nil
}

// BuildPlan scans folder and computes the rename mapping without touching anything.
func (r *Renamer) BuildPlan(ctx context.Context, folder, extension, prefix string) (*Plan, error) {
	_, span := r.tracer.Start(ctx, "build_plan")
	defer span.End()

	if err := validate(folder, extension, prefix); err != nil {
		span.RecordError(err)
		return nil, err
	}

	entries, err := r.scan(folder)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	plan := newPlan(folder, extension, prefix, entries, r.order)
	span.SetAttributes(
		attribute.Int("entries", len(entries)),
		attribute.Int("matched", plan.Len()),
	)
	return plan, nil
}

// scan reads the folder once, keeping whatever order the filesystem yields.
func (r *Renamer) scan(folder string) ([]Entry, error) {
	info, err := r.fs.Stat(folder)
	if err != nil {
		return nil, classify("stat", folder, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, folder)
	}

	dir, err := r.fs.Open(folder)
	if err != nil {
		return nil, classify("open", folder, err)
	}
	defer func() {
		if closeErr := dir.Close(); closeErr != nil {
			r.logger.Warnf("Failed to close directory %s: %v", folder, closeErr)
		}
	}()

	infos, err := dir.Readdir(-1)
	if err != nil {
		return nil, classify("read", folder, err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		entries = append(entries, Entry{Name: fi.Name(), IsDir: fi.IsDir()})
	}
	return entries, nil
}

// apply performs one step. It never overwrites: an occupied target fails
// with ErrRenameConflict even on platforms where rename would replace it.
func (r *Renamer) apply(ctx context.Context, folder string, step Step) error {
	_, span := r.tracer.Start(ctx, "rename_file")
	defer span.End()

	src := filepath.Join(folder, step.From)
	dst := filepath.Join(folder, step.To)
	span.SetAttributes(
		attribute.String("from", step.From),
		attribute.String("to", step.To),
		attribute.Int("index", step.Index),
	)

	// A file already carrying its target name is left in place.
	if src != dst {
		occupied, err := r.occupied(src, dst)
		if err != nil {
			span.RecordError(err)
			return classify("stat", dst, err)
		}
		if occupied {
			err := classify("rename", src, &os.LinkError{Op: "rename", Old: src, New: dst, Err: fs.ErrExist})
			span.RecordError(err)
			return err
		}

		if err := r.fs.Rename(src, dst); err != nil {
			err = classify("rename", src, err)
			span.RecordError(err)
			return err
		}
	}

	fmt.Fprintf(r.out, "Renamed '%s' to '%s'\n", step.From, step.To)
	r.logger.WithFields(logrus.Fields{
		"index": step.Index,
		"from":  step.From,
		"to":    step.To,
	}).Debug("Renamed file")
	return nil
}

// occupied reports whether dst names an entry other than src. On a
// case-insensitive filesystem a case-only rename resolves dst to src itself.
func (r *Renamer) occupied(src, dst string) (bool, error) {
	dstInfo, err := r.lstat(dst)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	}

	if strings.EqualFold(src, dst) {
		if srcInfo, err := r.lstat(src); err == nil && os.SameFile(srcInfo, dstInfo) {
			return false, nil
		}
	}
	return true, nil
}

func (r *Renamer) lstat(path string) (os.FileInfo, error) {
	if lstater, ok := r.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(path)
		return info, err
	}
	return r.fs.Stat(path)
}

// validate rejects names that would escape the folder or match everything.
func validate(folder, extension, prefix string) error {
	if folder == "" {
		return fmt.Errorf("%w: folder path is empty", ErrInvalidArgument)
	}
	if extension == "" {
		return fmt.Errorf("%w: extension filter is empty", ErrInvalidArgument)
	}
	if strings.ContainsAny(extension, `/\`) {
		return fmt.Errorf("%w: extension must not contain path separators: %q", ErrInvalidArgument, extension)
	}
	if strings.ContainsAny(prefix, `/\`) {
		return fmt.Errorf("%w: prefix must not contain path separators: %q", ErrInvalidArgument, prefix)
	}
	return nil
}
