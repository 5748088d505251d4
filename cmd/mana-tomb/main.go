// Command mana-tomb is a terminal client for the mana-tomb card reference
// and deck building service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/quehorrifico/mana-tomb-cli/internal/cardlookup"
	"github.com/quehorrifico/mana-tomb-cli/internal/config"
	"github.com/quehorrifico/mana-tomb-cli/internal/deckdraft"
	"github.com/quehorrifico/mana-tomb-cli/internal/events"
	"github.com/quehorrifico/mana-tomb-cli/internal/manatomb"
	"github.com/quehorrifico/mana-tomb-cli/internal/resolver"
	"github.com/quehorrifico/mana-tomb-cli/internal/session"
	"github.com/quehorrifico/mana-tomb-cli/internal/storage"
	"github.com/quehorrifico/mana-tomb-cli/internal/version"
)

// sessionKeyEnv names the environment variable holding the passphrase for
// the encrypted cookie file.
const sessionKeyEnv = "MANA_TOMB_SESSION_KEY"

// app wires the client components together for the CLI commands.
type app struct {
	cfg        *config.Config
	client     *manatomb.Client
	sessions   *session.Store
	resolver   *resolver.Resolver
	drafts     *deckdraft.Manager
	lookup     *cardlookup.Service
	cache      *storage.DB
	dispatcher *events.Dispatcher

	baseURL     *url.URL
	cookiePath  string
	sessionKey  string
	logLevel    *slog.LevelVar
	stopWatcher context.CancelFunc
}

func logLevelFor(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logLevel := &slog.LevelVar{}
	logLevel.Set(logLevelFor(cfg.App.DebugMode))
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	baseURL, err := url.Parse(cfg.Server.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.Server.BaseURL, err)
	}

	timeout, _ := cfg.GetServerTimeout()
	rateLimit, _ := cfg.GetRateLimit()

	clientConfig := manatomb.DefaultClientConfig(cfg.Server.BaseURL)
	clientConfig.Timeout = timeout
	clientConfig.MaxRetries = cfg.Server.MaxRetries
	clientConfig.RateLimitDelay = rateLimit

	client, err := manatomb.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create backend client: %w", err)
	}

	cookiePath, err := cfg.CookieFilePath()
	if err != nil {
		return nil, err
	}
	sessionKey := ""
	if cfg.Session.Encrypt {
		sessionKey = os.Getenv(sessionKeyEnv)
		if sessionKey == "" {
			return nil, fmt.Errorf("session.encrypt is on but %s is not set", sessionKeyEnv)
		}
	}
	if err := session.LoadCookies(client.Jar(), baseURL, cookiePath, sessionKey); err != nil {
		slog.Warn("could not restore saved session, starting anonymous", "error", err)
	}

	dispatcher := events.NewDispatcher()
	if cfg.App.DebugMode {
		dispatcher.Register(events.NewLogObserver(nil))
	}

	var cache *storage.DB
	if cfg.Cache.Enabled {
		cachePath, err := cfg.CachePath()
		if err != nil {
			return nil, err
		}
		cache, err = storage.Open(storage.DefaultConfig(cachePath))
		if err != nil {
			slog.Warn("card cache unavailable, lookups will always hit the backend", "error", err)
			cache = nil
		}
	}

	cardResolver := resolver.New(client)
	sessions := session.NewStore(client, dispatcher)
	drafts := deckdraft.NewManager(client, cardResolver, sessions, dispatcher)

	ttl, _ := cfg.GetCacheTTL()
	lookupOpts := cardlookup.Options{StaleThreshold: ttl}

	// An explicit nil keeps the service's store interface nil when the
	// cache is disabled or failed to open.
	var lookup *cardlookup.Service
	if cache != nil {
		lookup = cardlookup.NewService(cache, cardResolver, lookupOpts)
	} else {
		lookup = cardlookup.NewService(nil, cardResolver, lookupOpts)
	}

	if removed, err := lookup.PurgeStale(context.Background()); err != nil {
		slog.Warn("could not purge stale cache entries", "error", err)
	} else if removed > 0 {
		slog.Debug("purged stale cache entries", "removed", removed)
	}

	// Commands can stay alive for a while on retries and interactive
	// prompts; reflect config edits in the log level while they run.
	watchCtx, stopWatcher := context.WithCancel(context.Background())
	if configPath, err := config.Path(); err == nil {
		go func() {
			if err := config.Watch(watchCtx, configPath, func(next *config.Config) {
				logLevel.Set(logLevelFor(next.App.DebugMode))
			}); err != nil {
				slog.Debug("config watcher unavailable", "error", err)
			}
		}()
	}

	return &app{
		cfg:         cfg,
		client:      client,
		sessions:    sessions,
		resolver:    cardResolver,
		drafts:      drafts,
		lookup:      lookup,
		cache:       cache,
		dispatcher:  dispatcher,
		baseURL:     baseURL,
		cookiePath:  cookiePath,
		sessionKey:  sessionKey,
		logLevel:    logLevel,
		stopWatcher: stopWatcher,
	}, nil
}

// close releases held resources.
func (a *app) close() {
	if a.stopWatcher != nil {
		a.stopWatcher()
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
}

// saveSession persists the cookie jar so the session survives the process.
func (a *app) saveSession() {
	if err := session.SaveCookies(a.client.Jar(), a.baseURL, a.cookiePath, a.sessionKey); err != nil {
		slog.Warn("could not persist session cookie", "error", err)
	}
}

// requireAuth settles the session and fails unless it is authenticated.
func (a *app) requireAuth(cmd *cobra.Command) (session.Session, error) {
	sess := a.sessions.Initialize(cmd.Context())
	if sess.Status != session.StatusAuthenticated {
		return sess, fmt.Errorf("not logged in; run 'mana-tomb login' first")
	}
	return sess, nil
}

func main() {
	root := &cobra.Command{
		Use:           "mana-tomb",
		Short:         "Card reference and commander deck building from the terminal",
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var a *app
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		a, err = newApp()
		return err
	}
	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a != nil {
			a.close()
		}
	}

	root.AddCommand(
		newLoginCommand(&a),
		newLogoutCommand(&a),
		newWhoamiCommand(&a),
		newRegisterCommand(&a),
		newCardCommand(&a),
		newRandomCommand(&a),
		newDecksCommand(&a),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
