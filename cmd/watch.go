package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/crytic/solbuild/cmd/exitcodes"
	"github.com/crytic/solbuild/compilation/project"
	"github.com/crytic/solbuild/compilation/types"
	"github.com/crytic/solbuild/logging"
	"github.com/crytic/solbuild/utils"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// debounceInterval is the quiet period after the last source change before a rebuild starts.
const debounceInterval = 300 * time.Millisecond

// watchCmd represents the command provider for watch
var watchCmd = &cobra.Command{
	Use:               "watch",
	Short:             "Rebuilds a project whenever its sources change",
	Long:              `Compiles a project, then watches its source and library directories and recompiles it whenever a source file changes`,
	Args:              cmdValidateNoArgs("watch"),
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunWatch,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// The watch command compiles like the build command, so it accepts the same flags
	err := addCompilationFlags(watchCmd)
	if err != nil {
		cmdLogger.Panic("Failed to initialize the watch command", err)
	}

	// Add the watch command and its associated flags to the root command
	rootCmd.AddCommand(watchCmd)
}

// cmdRunWatch executes the CLI watch command
func cmdRunWatch(cmd *cobra.Command, args []string) error {
	projectConfig, err := loadProjectConfig(cmd, updateProjectConfigWithBuildFlags)
	if err != nil {
		cmdLogger.Error("Failed to run the watch command", err)
		return err
	}

	closeLogger, err := setupGlobalLogger(projectConfig.Logging)
	if err != nil {
		cmdLogger.Error("Failed to run the watch command", err)
		return err
	}
	defer closeLogger()

	// Stop watching on keyboard interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	proj, err := newProject(ctx, projectConfig)
	if err != nil {
		logging.GlobalLogger.Error("Failed to run the watch command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	err = watchAndRebuild(ctx, proj, watchedDirectories(proj))
	if err != nil {
		logging.GlobalLogger.Error("Failed to run the watch command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	return nil
}

// watchedDirectories returns the absolute source and library directories of a project.
func watchedDirectories(proj *project.Project) []string {
	root := proj.Paths().Root
	pathsConfig := proj.Config().Paths

	directories := make([]string, 0, len(pathsConfig.Sources)+len(pathsConfig.Libraries))
	for _, directory := range append(append([]string{}, pathsConfig.Sources...), pathsConfig.Libraries...) {
		if !filepath.IsAbs(directory) {
			directory = filepath.Join(root, directory)
		}
		directories = append(directories, directory)
	}
	return utils.SliceUnique(directories)
}

// watchAndRebuild compiles the project, then recompiles it every time a source file in the watched directories
// changes, until the context is cancelled. Compilations run on the calling goroutine, so changes made during one
// are picked up by the next.
func watchAndRebuild(ctx context.Context, proj *project.Project, directories []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	for _, directory := range directories {
		if !utils.IsDirectory(directory) {
			continue
		}
		if err := addWatchDirs(watcher, directory); err != nil {
			return errors.Wrap(err, "failed to watch directories")
		}
	}

	rebuild := func() {
		// Compilation failures are reported by compileProject and must not stop the watcher
		_, _ = compileProject(ctx, proj)
		if ctx.Err() == nil {
			logging.GlobalLogger.Info("Watching for changes in ", directories)
		}
	}
	rebuild()

	var debounceTimer *time.Timer
	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				addIfDirectory(watcher, event.Name)
			}
			if !isRelevantChange(event) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(debounceInterval)
			debounce = debounceTimer.C

		case <-debounce:
			debounceTimer, debounce = nil, nil
			rebuild()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.GlobalLogger.Warn("File watcher error", err)
		}
	}
}

// isRelevantChange reports whether a file system event modifies a source file.
func isRelevantChange(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	_, ok := types.LanguageFromPath(event.Name)
	return ok
}

// addWatchDirs adds root and every directory below it to the watcher, skipping hidden directories.
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// addIfDirectory starts watching path if it is a newly created directory.
func addIfDirectory(watcher *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	_ = addWatchDirs(watcher, path)
}
