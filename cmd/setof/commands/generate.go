package commands

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(configPath *string) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Introspect the database and write the schema, models and gqlgen bindings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := generate(ctx, cmd, *configPath); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchConfig(ctx, *configPath, func() error {
				// A failed regeneration is reported and watching goes on.
				if err := generate(ctx, cmd, *configPath); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "generate:", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "regenerate when the configuration file changes")
	return cmd
}

func generate(ctx context.Context, cmd *cobra.Command, configPath string) error {
	s, err := openSession(configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()
	_, reg, err := s.run(ctx, true)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "generated %d types\n", len(reg.Objects()))
	return nil
}

// watchConfig calls fn whenever the file at path is written or replaced,
// until ctx is done. The parent directory is watched so that editors that
// replace the file on save are followed.
func watchConfig(ctx context.Context, path string, fn func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := fn(); err != nil {
				return err
			}
		}
	}
}
