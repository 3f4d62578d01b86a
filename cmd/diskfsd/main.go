// Command diskfsd exposes the disk filesystem provider as a small CLI, the
// way k6's cmd package wires flags and config into a library core rather
// than leaving it embeddable-only.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	vfsdisk "github.com/worldiety/vfsdisk"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		root       string
		logLevel   string
		configFile string
	)

	rootCmd := &cobra.Command{
		Use:   "diskfsd",
		Short: "Serve a local directory through the disk filesystem provider",
	}
	rootCmd.PersistentFlags().StringVar(&root, "root", ".", "directory the provider is rooted at")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "trace|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML/JSON config file")

	rootCmd.AddCommand(newStatCmd(&root))
	rootCmd.AddCommand(newWatchCmd(&root, &logLevel, &configFile))
	return rootCmd
}

func loadConfig(configFile string) vfsdisk.Config {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
		_ = v.ReadInConfig()
	}
	return vfsdisk.LoadConfig(v)
}

// newLogger builds the logrus-backed Logger at the requested level.
// --log-level is only read at startup: bumping it at runtime would need the
// concrete *logrusLogger's SetLevel, which the Logger interface the provider
// depends on deliberately doesn't expose.
func newLogger(level string) vfsdisk.Logger {
	backend := logrus.New()
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	backend.SetLevel(parsed)
	return vfsdisk.NewLogrusLogger(backend)
}

func newStatCmd(root *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stat [path]",
		Short: "Print metadata for a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := vfsdisk.NewProvider(*root, vfsdisk.DefaultConfig(), nil)
			defer p.Dispose()

			stat, err := p.Stat(vfsdisk.Path(args[0]))
			if err != nil {
				return err
			}
			fmt.Printf("type=%s size=%d mtime=%d ctime=%d\n", stat.Type, stat.Size, stat.Mtime, stat.Ctime)
			return nil
		},
	}
}

func newWatchCmd(root, logLevel, configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [path]",
		Short: "Watch a resource recursively and print change events until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(*configFile)
			logger := newLogger(*logLevel)

			p := vfsdisk.NewProvider(*root, cfg, logger)
			defer p.Dispose()

			unsubChange := p.OnDidChangeFile(func(change vfsdisk.FileChange) {
				fmt.Printf("%s %s\n", changeLabel(change.Type), change.Path)
			})
			defer unsubChange()

			unsubErr := p.OnDidErrorOccur(func(msg string) {
				fmt.Fprintln(os.Stderr, "watch error:", msg)
			})
			defer unsubErr()

			disposable := p.WatchRecursive(vfsdisk.Path(args[0]), vfsdisk.WatchOptions{})
			defer disposable.Dispose()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}
}

func changeLabel(t vfsdisk.FileChangeType) string {
	switch t {
	case vfsdisk.FileChangeAdded:
		return "added"
	case vfsdisk.FileChangeDeleted:
		return "deleted"
	default:
		return "updated"
	}
}
