package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"figuremark/archive"
	"figuremark/config"
	"figuremark/document"
	"figuremark/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Format, err = config.ParseOutputFmt(cmd.String("to"))
	if err != nil {
		log.Warn("Unknown output format requested, switching to markdown", zap.Error(err))
		env.Format = config.OutputFmtMarkdown
	}
	env.NoDirs, env.Overwrite, env.Collate = cmd.Bool("nodirs"), cmd.Bool("overwrite"), cmd.Bool("collate")

	log.Info("Processing starting",
		zap.Stringer("run_id", env.RunID), zap.String("source", src), zap.String("destination", dst),
		zap.Stringer("format", env.Format), zap.Bool("collate", env.Collate))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// process handles the core conversion logic independently of CLI framework.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found: %w", err)
	}

	switch {
	case fi.Mode().IsDir():
		files, err := collectFiles(ctx, src, env.Cfg.Document.Extensions, log)
		if err != nil {
			return fmt.Errorf("unable to process directory: %w", err)
		}
		if len(files) == 0 {
			log.Info("Nothing to process", zap.String("dir", src))
			return nil
		}
		if env.Collate {
			return processCollated(ctx, src, files, dst, log)
		}
		return processFiles(ctx, src, files, dst, log)

	case fi.Mode().IsRegular():
		arc, err := isArchiveFile(src)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if arc {
			return processArchive(ctx, src, dst, log)
		}
		if env.Collate {
			log.Warn("Collation requested for single file, ignoring")
		}
		// explicitly named file is accepted with any extension
		doc, err := isDocumentFile(src, nil)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if !doc {
			return fmt.Errorf("input was not recognized as text document (%s)", src)
		}
		return processFile(ctx, src, filepath.Base(src), dst, log)

	default:
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}
}

// collectFiles walks directory tree and returns documents found there,
// relative to dir, in natural order.
func collectFiles(ctx context.Context, dir string, extensions []string, log *zap.Logger) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		doc, err := isDocumentFile(path, extensions)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !doc {
			log.Debug("Skipping file, not recognized as document", zap.String("file", path))
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Sort(natural.StringSlice(files))
	return files, nil
}

// processFiles converts every file separately. Failure of one file does
// not stop others, all errors are reported together.
func processFiles(ctx context.Context, dir string, files []string, dst string, log *zap.Logger) (err error) {
	for _, rel := range files {
		if cerr := ctx.Err(); cerr != nil {
			return multierr.Append(err, cerr)
		}
		if ferr := processFile(ctx, filepath.Join(dir, rel), rel, dst, log); ferr != nil {
			log.Error("Unable to process file", zap.String("file", rel), zap.Error(ferr))
			err = multierr.Append(err, fmt.Errorf("%s: %w", rel, ferr))
		}
	}
	if n := len(multierr.Errors(err)); n > 0 {
		log.Warn("Some files were not processed", zap.Int("failed", n), zap.Int("total", len(files)))
	}
	return err
}

// processCollated joins all files into single master document named after
// directory, so figure numbering continues from file to file.
func processCollated(ctx context.Context, dir string, files []string, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	docs := make([]*document.Document, 0, len(files))
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := loadDocument(filepath.Join(dir, rel), rel, env)
		if err != nil {
			return err
		}
		log.Debug("Document collated", zap.String("file", rel), zap.Strings("globals", doc.Globals))
		docs = append(docs, doc)
	}

	name := filepath.Base(dir) + config.OutputFmtMarkdown.Ext()
	return processDocument(ctx, document.Collate(name, docs...), name, dst, log)
}

// processArchive converts documents found in zip archive, either
// separately or collated into one named after archive.
func processArchive(ctx context.Context, path, dst string, log *zap.Logger) (err error) {
	env := state.EnvFromContext(ctx)
	env.Rpt.Store("source/"+filepath.Base(path), path)

	match := func(name string) bool {
		return hasExtension(name, env.Cfg.Document.Extensions)
	}

	var docs []*document.Document
	werr := archive.Walk(path, match, func(name string, r io.Reader) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, lerr := document.Load(r, name, env.Cfg.Document.FrontMatterKey)
		if lerr == nil && !env.Collate {
			lerr = processDocument(ctx, doc, filepath.FromSlash(name), dst, log)
		}
		if lerr != nil {
			if env.Collate {
				// single broken document spoils numbering of the whole book
				return lerr
			}
			log.Error("Unable to process file in archive", zap.String("archive", path), zap.String("file", name), zap.Error(lerr))
			err = multierr.Append(err, fmt.Errorf("%s: %w", name, lerr))
			return nil
		}
		if env.Collate {
			log.Debug("Document collated", zap.String("file", name), zap.Strings("globals", doc.Globals))
			docs = append(docs, doc)
		}
		return nil
	})
	if werr != nil {
		return multierr.Append(err, fmt.Errorf("unable to process archive: %w", werr))
	}

	if env.Collate {
		if len(docs) == 0 {
			log.Info("Nothing to process", zap.String("archive", path))
			return nil
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + config.OutputFmtMarkdown.Ext()
		return processDocument(ctx, document.Collate(name, docs...), name, dst, log)
	}
	return err
}

func processFile(ctx context.Context, path, src, dst string, log *zap.Logger) error {
	doc, err := loadDocument(path, src, state.EnvFromContext(ctx))
	if err != nil {
		return err
	}
	return processDocument(ctx, doc, src, dst, log)
}

func loadDocument(path, name string, env *state.LocalEnv) (*document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := env.Rpt.StoreCopy("source/"+filepath.ToSlash(name), path); err != nil {
		env.Log.Debug("Unable to store source in report", zap.String("file", path), zap.Error(err))
	}
	return document.Load(f, name, env.Cfg.Document.FrontMatterKey)
}

// processDocument converts single document. "src" is source path relative
// to processed directory (or base file name) used to build output name.
func processDocument(ctx context.Context, doc *document.Document, src, dst string, log *zap.Logger) (rerr error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Conversion starting", zap.String("from", src))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else if rerr == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	res := env.Converter(doc.Globals...).Convert(doc.Text)
	if res.Figures == 0 {
		log.Info("No FigureMark blocks found", zap.String("document", doc.Name))
	} else {
		log.Info(fmt.Sprintf("Processed %d FigureMark blocks", res.Figures),
			zap.String("document", doc.Name), zap.Int("foreign", res.Foreign))
	}

	storeFigureIndex(env.Rpt, doc.Name, res)

	data := []byte(res.Text)
	if env.Format == config.OutputFmtHtml {
		var err error
		if data, err = renderHTML(newMarkdown(&env.Cfg.Document.HTML), doc.Name, res.Text); err != nil {
			return err
		}
	}

	outputName = buildOutputPath(src, dst, res.Figures, env)
	if err := prepareOutput(outputName, env.Overwrite, log); err != nil {
		return err
	}
	if err := os.WriteFile(outputName, data, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	if rel, err := filepath.Rel(dst, outputName); err == nil {
		env.Rpt.Store("result/"+filepath.ToSlash(rel), outputName)
	}
	return nil
}

// prepareOutput makes sure output file could be written.
func prepareOutput(outputName string, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(outputName); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}
