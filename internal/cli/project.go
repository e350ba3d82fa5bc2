package cli

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"

	"flame/cli/internal/apperr"
	"flame/cli/internal/config"
)

func newInitCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a .flame.json config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.initialize(cmd.Context())
		},
	}
}

func (a *App) initialize(ctx context.Context) error {
	log := a.Logger()
	log.Info("Initializing flame...")

	l, err := a.Config()
	if err == nil && l.Path != "" {
		log.Info("Flame config file already exists at " + l.Path)
		return nil
	}
	if err == nil {
		dir, ok := config.FirebaseDir(a.Dir)
		if !ok {
			dir = a.Dir
		}
		p, err := config.Write(dir, l.Config)
		if err != nil {
			return err
		}
		a.loaded = &config.Loaded{Config: l.Config, Path: p}
		log.Info("Config inferred from firebase project")
		log.Info("Flame config file successfully created " + p)
		return nil
	}

	log.Warn("Could not infer config. Make sure a firebase project exists in a parent directory!")
	log.Warn("Will create config file at " + a.Dir)

	cfg, err := a.askConfig(ctx)
	if err != nil {
		log.Error("Failed to parse inputted config: " + err.Error())
		return nil
	}
	p, err := config.Write(a.Dir, cfg)
	if err != nil {
		log.Error("Failed to parse inputted config: " + err.Error())
		return nil
	}
	log.Info("Flame config file successfully created " + p)
	return nil
}

func (a *App) askConfig(ctx context.Context) (config.FlameConfig, error) {
	p := a.prompter()
	def := config.Defaults()

	useEmulator, err := p.Confirm(ctx, "Default to firestore emulator?")
	if err != nil {
		return config.FlameConfig{}, err
	}
	project, err := p.Ask(ctx, "Firebase project ID:", "")
	if err != nil {
		return config.FlameConfig{}, err
	}
	if project == "" {
		return config.FlameConfig{}, fmt.Errorf("%w: no project name specified", apperr.ErrValidation)
	}
	host, err := p.Ask(ctx, "Firestore emulator host:", def.EmulatorHost)
	if err != nil {
		return config.FlameConfig{}, err
	}
	portStr, err := p.Ask(ctx, "Firestore emulator port:", strconv.Itoa(def.EmulatorPort))
	if err != nil {
		return config.FlameConfig{}, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return config.FlameConfig{}, fmt.Errorf("%w: invalid port %q", apperr.ErrValidation, portStr)
	}
	return config.FlameConfig{
		UseEmulator:  useEmulator,
		Project:      project,
		EmulatorHost: host,
		EmulatorPort: port,
	}, nil
}

func newStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active project and target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.status()
			return nil
		},
	}
}

func (a *App) status() {
	fmt.Fprintf(a.Out, "FLAME v%s\n\n", Version)
	fmt.Fprintf(a.Out, "Go version: %s\n", runtime.Version())

	l, err := a.Config()
	if err != nil {
		a.Logger().Warn("No flame config file found. Run flame init to create one.")
		return
	}
	useEmulator := "No"
	if l.Config.UseEmulator {
		useEmulator = "Yes"
	}
	path := l.Path
	if path == "" {
		path = "unknown"
	}
	fmt.Fprintf(a.Out, "Firebase project: %s\n", l.Config.Project)
	fmt.Fprintf(a.Out, "Using emulator? %s\n", useEmulator)
	fmt.Fprintf(a.Out, "Emulator host & port: %s\n", l.Config.EmulatorAddr())
	fmt.Fprintf(a.Out, "Active config path: %s\n", path)
}

func newUseCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "use <remote|emulator>",
		Short:     "Switch between the remote project and the emulator",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(config.TargetRemote), string(config.TargetEmulator)},
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := config.ParseTarget(args[0])
			if err != nil {
				return err
			}
			return app.use(t)
		},
	}
}

func (a *App) use(t config.Target) error {
	l, err := a.Config()
	if err != nil {
		return err
	}
	updated, err := config.SwitchTarget(l, t)
	if err != nil {
		return err
	}
	a.loaded = &updated
	if t == config.TargetEmulator {
		a.Logger().Info("Switched to emulator at " + updated.Config.EmulatorAddr())
	} else {
		a.Logger().Info("Switched to remote Firestore for project: " + updated.Config.Project)
	}
	return nil
}

func newCollectionsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List root collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.collections(cmd.Context())
		},
	}
}

func (a *App) collections(ctx context.Context) error {
	st, err := a.Store()
	if err != nil {
		return err
	}
	cols, err := st.ListCollections(ctx)
	if err != nil {
		return a.report("list collections", err)
	}
	for _, c := range cols {
		fmt.Fprintln(a.Out, c)
	}
	return nil
}
