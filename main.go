package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	goversion "github.com/caarlos0/go-version"
	"github.com/caarlos0/log"
	"github.com/spf13/cobra"
	execCmd "github.com/zcf0508/sudo-prompt/cmd/exec"
	versionCmd "github.com/zcf0508/sudo-prompt/cmd/version"
	"github.com/zcf0508/sudo-prompt/internal"
)

const website = "https://github.com/zcf0508/sudo-prompt"

var (
	version = ""
	builtBy = ""
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "sudo-prompt",
		Short:         "run commands as administrator through the native OS prompt",
		Long:          `sudo-prompt runs a shell command with administrator rights after the user approved it in the operating system's own authorization dialog.`,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(execCmd.NewCommand())
	rootCmd.AddCommand(versionCmd.NewCommand(buildVersion(version, builtBy)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if !errors.Is(err, internal.ErrSilence) {
		log.WithError(err).Error("command failed")
	}
	var exitErr *internal.ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}
	return 1
}

func buildVersion(version, builtBy string) goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails("sudo-prompt", "Run commands as administrator through the native OS prompt.", website),
		func(i *goversion.Info) {
			if version != "" {
				i.GitVersion = version
			}
			if builtBy != "" {
				i.BuiltBy = builtBy
			}
		},
	)
}
