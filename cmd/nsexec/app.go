package main

import (
	"context"

	nsexec "github.com/YLonely/nsexec"
	"github.com/YLonely/nsexec/api/types"
	"github.com/YLonely/nsexec/log"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

type runFunc func(context.Context, nsexec.Request) (int, error)

var namespaceFlags = []struct {
	name  string
	short string
	t     types.NamespaceType
}{
	{"mount", "m", types.NamespaceMNT},
	{"pid", "p", types.NamespacePID},
	{"uts", "u", types.NamespaceUTS},
	{"net", "n", types.NamespaceNET},
	{"ipc", "i", types.NamespaceIPC},
}

func newApp(run runFunc) *cli.App {
	app := cli.NewApp()
	app.Name = nsexec.ProcessName
	app.Usage = "run a command inside the namespaces of another process"
	app.UsageText = "nsexec -t PID [-s] [-m] [-p] [-u] [-n] [-i] COMMAND [ARG...]"
	app.Version = "v0.0.1"
	// the command may be named like a subcommand, e.g. "help"
	app.HideHelp = true
	app.UseShortOptionHandling = true
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "target, t",
			Usage: "the process whose namespaces are entered",
		},
		cli.BoolFlag{
			Name:  "stop, s",
			Usage: "wait for SIGCONT before entering any namespace",
		},
		cli.StringSliceFlag{
			Name:  "namespace",
			Usage: "enter the namespace of the given type, proc or runtime-spec names are accepted",
		},
		cli.BoolFlag{
			Name:   "debug",
			Usage:  "enable debug output in logs",
			EnvVar: "NSEXEC_DEBUG",
		},
		cli.StringFlag{
			Name:   "log-format",
			Usage:  "log format, text or json",
			Value:  log.FormatText,
			EnvVar: "NSEXEC_LOG_FORMAT",
		},
	}
	for _, nf := range namespaceFlags {
		app.Flags = append(app.Flags, cli.BoolFlag{
			Name:  nf.name + ", " + nf.short,
			Usage: "enter the " + string(nf.t) + " namespace",
		})
	}
	app.Before = func(c *cli.Context) error {
		return log.Setup(c.Bool("debug"), c.String("log-format"))
	}
	app.Action = func(c *cli.Context) error {
		req, err := requestFromContext(c)
		if err != nil {
			log.Logger(nsexec.MainComponent, "").WithError(err).Error("invalid arguments")
			return cli.NewExitError("", nsexec.ExitFailure)
		}
		code, err := run(context.Background(), req)
		if err != nil {
			log.Logger(nsexec.MainComponent, "").WithError(err).Error("nsexec failed")
			if code == nsexec.ExitSuccess {
				code = nsexec.ExitCode(err)
			}
		}
		if code != nsexec.ExitSuccess {
			return cli.NewExitError("", code)
		}
		return nil
	}
	return app
}

func requestFromContext(c *cli.Context) (nsexec.Request, error) {
	req := nsexec.Request{
		Target: c.Int("target"),
		Pause:  c.Bool("stop"),
		Args:   []string(c.Args()),
	}
	var nss []types.NamespaceType
	for _, nf := range namespaceFlags {
		if c.Bool(nf.name) {
			nss = append(nss, nf.t)
		}
	}
	for _, name := range c.StringSlice("namespace") {
		t, err := types.ParseNamespaceType(name)
		if err != nil {
			return req, err
		}
		nss = append(nss, t)
	}
	req.Namespaces = types.SortNamespaceTypes(nss)
	if err := req.Validate(); err != nil {
		return req, errors.Wrap(err, "invalid request")
	}
	return req, nil
}
