package cli

import (
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"flame/cli/internal/config"
	"flame/cli/internal/firebase"
	"flame/cli/internal/logger"
	"flame/cli/internal/output"
	"flame/cli/internal/store"
)

// App carries everything a command needs. The config, logger, Firebase
// holder and store are created on first use and then reused.
type App struct {
	Dir    string
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	Prompt Prompter

	Verbose bool
	// Log overrides the logger built from the environment.
	Log *zap.Logger
	// NewStore overrides the Firestore-backed store.
	NewStore func(cfg config.FlameConfig) (store.Store, error)
	// Storage overrides the Cloud Storage client source for gs:// output.
	Storage output.StorageProvider
	// Signer overrides the IAM client source for signed export URLs.
	Signer output.SignerProvider

	loaded  *config.Loaded
	loadErr error
	holder  *firebase.Holder
	store   store.Store
	log     *zap.Logger
}

func NewApp() *App {
	dir, _ := os.Getwd()
	return &App{
		Dir: dir,
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
	}
}

func (a *App) prompter() Prompter {
	if a.Prompt == nil {
		a.Prompt = NewLinePrompter(a.In, a.Err)
	}
	return a.Prompt
}

// Config loads the config once per process.
func (a *App) Config() (config.Loaded, error) {
	if a.loaded == nil && a.loadErr == nil {
		l, err := config.Load(a.Dir)
		if err != nil {
			a.loadErr = err
		} else {
			a.loaded = &l
		}
	}
	if a.loadErr != nil {
		return config.Loaded{}, a.loadErr
	}
	return *a.loaded, nil
}

// Logger is named after the active target, or unnamed without a config.
func (a *App) Logger() *zap.Logger {
	if a.log != nil {
		return a.log
	}
	base := a.Log
	if base == nil {
		base = logger.FromEnv(a.Verbose)
	}
	if l, err := a.Config(); err == nil {
		if l.Config.UseEmulator {
			base = base.Named("emulator")
		} else {
			base = base.Named("remote")
		}
	}
	a.log = base
	return a.log
}

func (a *App) Store() (store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	l, err := a.Config()
	if err != nil {
		return nil, err
	}
	if a.NewStore != nil {
		s, err := a.NewStore(l.Config)
		if err != nil {
			return nil, err
		}
		a.store = s
		return s, nil
	}
	if a.holder == nil {
		a.holder = firebase.NewHolder(l.Config)
	}
	a.store = store.NewFirestore(a.holder)
	return a.store, nil
}

func (a *App) firebaseHolder() *firebase.Holder {
	if a.holder == nil {
		if l, err := a.Config(); err == nil {
			a.holder = firebase.NewHolder(l.Config)
		}
	}
	return a.holder
}

func (a *App) storage() output.StorageProvider {
	if a.Storage != nil {
		return a.Storage
	}
	if h := a.firebaseHolder(); h != nil {
		return h
	}
	return nil
}

func (a *App) signer() output.SignerProvider {
	if a.Signer != nil {
		return a.Signer
	}
	if h := a.firebaseHolder(); h != nil {
		return h
	}
	return nil
}

func (a *App) Close() {
	if a.holder != nil {
		a.holder.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

var printer = message.NewPrinter(language.English)
