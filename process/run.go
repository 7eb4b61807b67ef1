// Package process implements program commands.
package process

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"fxcss/archive"
	"fxcss/common"
	"fxcss/config"
	"fxcss/dump"
	"fxcss/loader"
	"fxcss/state"
)

// Options are "parse" command settings merged from configuration and
// command line.
type Options struct {
	Dump   dump.Options
	Strict bool
	// Destination is a directory for results, empty means out.
	Destination string
	Overwrite   bool
}

// OptionsFromCommand merges command line flags over configuration.
func OptionsFromCommand(cmd *cli.Command, cfg *config.Config, log *zap.Logger) Options {
	opts := Options{
		Dump: dump.Options{
			Format:   cfg.Output.Format,
			Indent:   cfg.Output.Indent,
			Template: cfg.Output.Template,
			Sort:     cfg.Output.Sort,
		},
		Strict:      cfg.Parser.Strict,
		Destination: cmd.String("dest"),
		Overwrite:   cmd.Bool("overwrite"),
	}
	if cmd.IsSet("to") {
		if f, err := common.ParseOutputFmt(cmd.String("to")); err != nil {
			log.Warn("Unknown output format requested, using configured one", zap.Stringer("format", opts.Dump.Format), zap.Error(err))
		} else {
			opts.Dump.Format = f
		}
	}
	if cmd.IsSet("template") {
		opts.Dump.Template = cmd.String("template")
		if !cmd.IsSet("to") {
			opts.Dump.Format = common.OutputFmtTemplate
		}
	}
	if cmd.IsSet("sort") {
		opts.Dump.Sort = cmd.Bool("sort")
	}
	if cmd.IsSet("strict") {
		opts.Strict = cmd.Bool("strict")
	}
	return opts
}

// Run implements "parse" command.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("parse")

	if cmd.Args().Len() == 0 {
		return errors.New("no input source has been specified")
	}
	opts := OptionsFromCommand(cmd, env.Cfg, log)

	pr, err := newProcessor(env, log, opts, os.Stdout)
	if err != nil {
		return err
	}

	log.Info("Processing starting", zap.Strings("sources", cmd.Args().Slice()), zap.Stringer("format", opts.Dump.Format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)),
			zap.Int("stylesheets", pr.parsed), zap.Int("errors", pr.recovered))
	}(time.Now())

	for _, src := range cmd.Args().Slice() {
		if err := pr.process(ctx, src); err != nil {
			return err
		}
	}
	return pr.result()
}

type processor struct {
	env  *state.LocalEnv
	log  *zap.Logger
	ldr  *loader.Loader
	opts Options
	out  io.Writer

	parsed    int
	recovered int
	// failed collects recovered parse errors, broken everything which
	// prevented producing a result
	failed error
	broken error
}

func newProcessor(env *state.LocalEnv, log *zap.Logger, opts Options, out io.Writer) (*processor, error) {
	ldr, err := env.NewLoader()
	if err != nil {
		return nil, fmt.Errorf("unable to prepare loader: %w", err)
	}
	if opts.Destination != "" {
		if opts.Destination, err = filepath.Abs(opts.Destination); err != nil {
			return nil, err
		}
	}
	return &processor{env: env, log: log, ldr: ldr, opts: opts, out: out}, nil
}

// result combines errors of all processed stylesheets, recovered parse
// errors count only in strict mode.
func (pr *processor) result() error {
	err := pr.broken
	if pr.opts.Strict && pr.failed != nil {
		err = multierr.Append(err, fmt.Errorf("%d parse error(s) in strict mode: %w", pr.recovered, pr.failed))
	}
	return err
}

// process determines what src is: stylesheet file, directory or path into
// zip archive.
func (pr *processor) process(ctx context.Context, src string) error {
	src, err := filepath.Abs(src)
	if err != nil {
		return err
	}

	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}
		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exist - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			return pr.processDir(ctx, head)
		}
		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := archive.IsArchive(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			pathIn := filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
			if err := pr.processArchive(ctx, head, pathIn, ""); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			return nil
		}
		if len(tail) != 0 {
			return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}
		pr.processStylesheet(ctx, head, filepath.Base(head))
		return nil
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

func isStylesheet(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".css")
}

// processDir walks directory tree looking for stylesheets and archives.
func (pr *processor) processDir(ctx context.Context, dir string) error {
	count := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			pr.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		isArchive, err := archive.IsArchive(path)
		if err != nil {
			pr.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if isArchive {
			if err := pr.processArchive(ctx, path, "", filepath.Dir(rel)); err != nil {
				pr.log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			return nil
		}
		if !isStylesheet(path) {
			pr.log.Debug("Skipping file, not a stylesheet or archive", zap.String("file", path))
			return nil
		}
		count++
		pr.processStylesheet(ctx, path, rel)
		return nil
	})
	if err == nil && count == 0 {
		pr.log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return err
}

// processArchive handles stylesheets inside archive under pathIn.
func (pr *processor) processArchive(ctx context.Context, path, pathIn, pathOut string) error {
	count := 0
	err := archive.Walk(path, pathIn, pr.ldr.ArchiveNames(), func(arc, name string, _ *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !isStylesheet(name) {
			pr.log.Debug("Skipping file in archive, not a stylesheet", zap.String("archive", arc), zap.String("file", name))
			return nil
		}
		count++
		pr.processStylesheet(ctx, filepath.Join(arc, filepath.FromSlash(name)), filepath.Join(pathOut, filepath.FromSlash(name)))
		return nil
	})
	if err == nil && count == 0 {
		pr.log.Debug("Nothing to process", zap.String("archive", path), zap.String("path", pathIn))
	}
	return err
}

// processStylesheet parses a single stylesheet at location and writes
// result. rel is location relative to processed source, it names output.
// Problems are logged, so processing of other sources continues.
func (pr *processor) processStylesheet(ctx context.Context, location, rel string) {
	log := pr.log.With(zap.String("source", location))
	log.Debug("Parsing starting")

	p, err := pr.env.NewParser(pr.ldr)
	if err != nil {
		log.Error("Unable to prepare parser", zap.Error(err))
		return
	}
	sheet, err := p.ParseURL(ctx, location)
	if err != nil {
		log.Error("Unable to parse stylesheet", zap.Error(err))
		pr.broken = multierr.Append(pr.broken, err)
		return
	}
	pr.parsed++

	errs := p.Errors()
	if errs.Len() > 0 {
		pr.recovered += errs.Len()
		pr.failed = multierr.Append(pr.failed, errs.Err())
		lines := make([]string, 0, errs.Len())
		for _, e := range errs.Errors() {
			lines = append(lines, e.Error())
		}
		pr.env.StoreText(fmt.Sprintf("errors-%03d.txt", pr.parsed), strings.Join(lines, "\n")+"\n")
		log.Warn("Stylesheet has errors", zap.Int("count", errs.Len()))
	}

	if err := pr.write(rel, func(w io.Writer) error {
		return dump.Write(w, filepath.ToSlash(rel), sheet, errs.Errors(), pr.opts.Dump)
	}); err != nil {
		log.Error("Unable to write result", zap.Error(err))
		pr.broken = multierr.Append(pr.broken, err)
	}
}

// write sends result either to out or to a file under destination
// directory keeping relative path of the source.
func (pr *processor) write(rel string, fn func(io.Writer) error) error {
	if pr.opts.Destination == "" {
		return fn(pr.out)
	}

	dir, base := filepath.Split(rel)
	base = config.SafeFileName(strings.TrimSuffix(base, filepath.Ext(base)))
	name := filepath.Join(pr.opts.Destination, dir, base+pr.opts.Dump.Format.Ext())

	if _, err := os.Stat(name); err == nil {
		if !pr.opts.Overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		pr.log.Warn("Overwriting existing file", zap.String("file", name))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	pr.log.Debug("Result written", zap.String("file", name))
	return f.Close()
}
