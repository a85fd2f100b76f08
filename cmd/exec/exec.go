package exec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/zcf0508/sudo-prompt/internal"
	"github.com/zcf0508/sudo-prompt/internal/config"
	"github.com/zcf0508/sudo-prompt/internal/logutil"
	"github.com/zcf0508/sudo-prompt/pkg/sudoprompt"
	"mvdan.cc/sh/v3/syntax"
)

type options struct {
	configFile string
	env        []string
}

func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "exec [flags] -- COMMAND [ARG...]",
		Short: "run a command as administrator after an OS authorization prompt",
		Long: `Run a shell command with administrator rights. The operating system's own
prompt asks the user for permission: pkexec or kdesudo on Linux, an applet on
macOS and UAC on Windows.

A single argument is run as a shell command line. Several arguments are quoted
and joined into one.

Settings are read from flags, SUDO_PROMPT_* environment variables and an
optional config file, in that order of precedence.

Exit codes:
  0   - the command succeeded
  1   - permission was denied or the command could not be run
  N   - the command itself exited with N`,
		Example: `  # List a protected directory
  sudo-prompt exec --name "Disk Tool" -- ls /root

  ## Pass environment variables
  sudo-prompt exec --name "Installer" --env MODE=full --env-file .env -- ./install.sh

  ## Bound the wait on Windows
  sudo-prompt exec --name "Setup" --timeout 5m -- "net stop spooler"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "config", "", "Path of a config file (yaml, toml or json)")
	cmd.Flags().StringArrayVarP(&opts.env, "env", "e", nil, "Set an environment variable for the command (KEY=VALUE, repeatable)")
	cmd.Flags().StringP("name", "n", "", "Name shown in the prompt (letters, digits and spaces)")
	cmd.Flags().String("icns", "", "Icon shown in the macOS prompt")
	cmd.Flags().String("env-file", "", "Read environment variables from a dotenv file")
	cmd.Flags().String("applet", "", "Path of the zipped macOS applet bundle")
	cmd.Flags().String("launcher", config.LauncherPowerShell, "Windows elevation launcher: powershell or shellexecute")
	cmd.Flags().Duration("timeout", 0, "Give up waiting for the command on Windows after this long (default 30m)")
	cmd.Flags().Duration("poll-interval", 0, "Delay between two checks for the command's completion on Windows (default 1s)")
	cmd.Flags().String("temp-dir", "", "Directory holding the per-call workspaces")
	cmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, args []string, opts *options) error {
	cfg, err := config.Load(config.LoadOptions{File: opts.configFile, Flags: cmd.Flags()})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logutil.New(cmd.ErrOrStderr(), cfg.Verbose)

	env, err := loadEnv(cfg.EnvFile, opts.env)
	if err != nil {
		return err
	}
	command, err := commandLine(args)
	if err != nil {
		return err
	}

	if sudoprompt.IsElevated() {
		logger.Debug("already running elevated, prompting anyway")
	}

	prompter, err := sudoprompt.New(sudoprompt.Config{
		Logger:       logger,
		TempDir:      cfg.TempDir,
		Applet:       cfg.Applet,
		ShellExecute: cfg.Launcher == config.LauncherShellExecute,
		PollInterval: cfg.PollInterval,
		Timeout:      cfg.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to set up prompt: %w", err)
	}

	start := time.Now()
	logger.WithField("command", command).Debug("requesting elevation")
	stdout, stderr, err := prompter.Exec(ctx, command, sudoprompt.Options{
		Name: cfg.Name,
		Icns: cfg.Icns,
		Env:  env,
	})
	logutil.LogDuration(logger, start, "elevated execution")

	var failed *sudoprompt.CommandFailedError
	if errors.As(err, &failed) {
		stdout, stderr = failed.Stdout, failed.Stderr
	}
	if werr := forward(cmd.OutOrStdout(), cmd.ErrOrStderr(), stdout, stderr); werr != nil {
		logger.WithError(werr).Warn("failed to forward command output")
	}

	switch {
	case err == nil:
		return nil
	case failed != nil:
		logger.WithField("code", failed.ExitCode).Debug("command failed")
		return &internal.ExitError{Code: failed.ExitCode, Err: internal.ErrSilence}
	case errors.Is(err, sudoprompt.ErrPermissionDenied):
		logger.WithError(err).Error("permission denied")
		return internal.ErrSilence
	default:
		return err
	}
}

func forward(stdout, stderr io.Writer, out, errOut string) error {
	if _, err := io.WriteString(stdout, out); err != nil {
		return err
	}
	_, err := io.WriteString(stderr, errOut)
	return err
}

// commandLine turns the trailing arguments into the shell line to run. A
// single argument is taken verbatim so that pipes and redirections survive.
func commandLine(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	quoted := make([]string, 0, len(args))
	for _, arg := range args {
		q, err := syntax.Quote(arg, syntax.LangPOSIX)
		if err != nil {
			return "", fmt.Errorf("cannot quote argument %q: %w", arg, err)
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, " "), nil
}

// loadEnv merges the dotenv file with the KEY=VALUE pairs given on the
// command line, the latter winning. It returns nil when neither is set.
func loadEnv(file string, pairs []string) (map[string]string, error) {
	env := map[string]string{}
	if file != "" {
		vars, err := godotenv.Read(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file: %w", err)
		}
		maps.Copy(env, vars)
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --env %q: want KEY=VALUE", pair)
		}
		env[key] = value
	}
	if len(env) == 0 {
		return nil, nil
	}
	return env, nil
}
