// Command tabulagen generates the entity methods of structs marked with a
// //tabula:entity comment.
//
//	tabulagen ./internal/movies/...
//	tabulagen --watch --tags integration ./...
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/syssam/tabula/compiler/gen"
	"github.com/syssam/tabula/compiler/load"
)

// Version is set at build time.
var Version = "dev"

type options struct {
	dir     string
	tags    []string
	header  string
	file    string
	workers int
	watch   bool
	verbose bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "tabulagen [flags] <packages>",
		Short: "Generate tabula entity methods",
		Long: `tabulagen loads the named Go packages, finds struct types marked with a
//tabula:entity comment and writes their Schema, Values and Pointers methods
to a generated file in each package.`,
		Version:       Version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), o.logger(cmd), args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.dir, "dir", "C", "", "directory the package patterns are resolved in")
	f.StringSliceVar(&o.tags, "tags", nil, "build tags used to load packages")
	f.StringVar(&o.header, "header", gen.DefaultHeader, "header comment of generated files")
	f.StringVar(&o.file, "file", load.DefaultGenerated, "name of the generated file")
	f.IntVar(&o.workers, "workers", 0, "packages generated in parallel (default GOMAXPROCS)")
	f.BoolVarP(&o.watch, "watch", "w", false, "regenerate when entity packages change")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "log every generated file")
	return cmd
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (o *options) run(ctx context.Context, log *slog.Logger, patterns []string) error {
	dirs, err := o.generate(ctx, log, patterns)
	if err != nil || !o.watch {
		return err
	}
	log.Info("watching for changes", "packages", len(dirs))
	return watch(ctx, log, dirs, o.file, func(ctx context.Context) ([]string, error) {
		return o.generate(ctx, log, patterns)
	})
}

// generate loads the patterns and writes the generated files. It returns the
// directories of the entity packages.
func (o *options) generate(ctx context.Context, log *slog.Logger, patterns []string) ([]string, error) {
	opts := []gen.Option{gen.WithHeader(o.header), gen.WithFileName(o.file)}
	if o.workers > 0 {
		opts = append(opts, gen.WithWorkers(o.workers))
	}
	cfg, err := gen.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	lc := &load.Config{Dir: o.dir, Generated: o.file}
	if len(o.tags) > 0 {
		lc.BuildFlags = []string{"-tags=" + strings.Join(o.tags, ",")}
	}
	pkgs, err := lc.Load(patterns...)
	if err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		log.Warn("no entities found", "patterns", patterns)
		return nil, nil
	}
	results, err := cfg.Generate(ctx, pkgs)
	if err != nil {
		return nil, err
	}
	dirs := make([]string, len(pkgs))
	for i, r := range results {
		dirs[i] = pkgs[i].Dir
		if r.Changed {
			log.Info("generated", "package", r.Package, "file", r.Path, "entities", len(pkgs[i].Entities))
		} else {
			log.Debug("unchanged", "package", r.Package, "file", r.Path)
		}
	}
	return dirs, nil
}
