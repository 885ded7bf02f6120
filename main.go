package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/czerwonk/pinggraph/config"
	"github.com/czerwonk/pinggraph/render"
	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const version string = "0.1.0"

const (
	uiWindow = "window"
	uiPlain  = "plain"
)

var (
	showVersion   = kingpin.Flag("version", "Print version information").Default().Bool()
	configFile    = kingpin.Flag("config.path", "Path to config file, YAML for .yml/.yaml and JSON otherwise").Default(defaultConfigPath()).String()
	logLevel      = kingpin.Flag("log.level", "Only log messages with the given severity or above. Valid levels: [debug, info, warn, error, fatal]").Default("info").String()
	logFile       = kingpin.Flag("log.file", "Append log messages to this file; without it they are discarded since the graph owns the terminal").Default("").String()
	uiMode        = kingpin.Flag("ui", "Renderer to use. Valid choices: [window, plain]").Default(uiWindow).Enum(uiWindow, uiPlain)
	listenAddress = kingpin.Flag("web.listen-address", "Address on which to expose metrics and web interface (disabled if empty)").Default("").String()
	metricsPath   = kingpin.Flag("web.telemetry-path", "Path under which to expose metrics").Default("/metrics").String()
	rttMode       = kingpin.Flag("metrics.rttunit", "Export ping results as either millis (default), or seconds, or both. Valid choices: [ms, s, both]").Default("ms").String()
	tailnet       = kingpin.Flag("tailscale.tailnet", "Add the devices of this tailnet as servers (requires TS_API_KEY)").Default("").String()
)

var rttMetricsScale = rttInMills

// renderer draws the graph until ctx is done or the user quits.
type renderer interface {
	Run(ctx context.Context) error
}

func main() {
	kingpin.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if rttMetricsScale = rttUnitFromString(*rttMode); rttMetricsScale == rttInvalid {
		kingpin.FatalUsage("metrics.rttunit must be `ms` for millis, or `s` for seconds, or `both`")
	}

	if mpath := *metricsPath; mpath == "" {
		mpath = "/metrics"
		metricsPath = &mpath
	} else if mpath[0] != '/' {
		mpath = "/" + mpath
		metricsPath = &mpath
	}

	os.Exit(start(*configFile, newRenderer))
}

// start runs the graph until the user quits and returns the exit code. All
// cleanup is done when it returns.
func start(path string, newUI func(*config.Config, render.Source) (renderer, error)) int {
	closeLog, err := setupLogging(*logLevel, *logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open log.file: %v\n", err)
		return 2
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, notices := loadConfig(ctx, path)

	a, err := newApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Errorln(err)
		return 2
	}
	defer a.Close()

	if len(notices) > 0 {
		a.source.setNotice(notices[0], startupNoticeTTL)
	}

	ui, err := newUI(cfg, a.source)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := run(ctx, path, a, ui); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Errorln(err)
		return 1
	}
	return 0
}

// newRenderer creates the renderer selected by --ui.
func newRenderer(cfg *config.Config, source render.Source) (renderer, error) {
	if *uiMode == uiPlain {
		return render.NewPlain(render.NewTerminal(), cfg, source), nil
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("cannot create window: %w", err)
	}
	return render.NewWindow(screen, cfg, source), nil
}

func printVersion() {
	fmt.Println("pinggraph")
	fmt.Printf("Version: %s\n", version)
	fmt.Println("Live ping latency graph")
}

// defaultConfigPath returns config.json next to the executable.
func defaultConfigPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(exe), "config.json")
}

// loadConfig loads and normalizes the config file and adds discovered
// servers. It never fails: problems are logged and returned as notices for
// the user, in order of importance.
func loadConfig(ctx context.Context, path string) (*config.Config, []string) {
	var notices []string

	cfg, status, err := config.Load(path)
	switch status {
	case config.Created:
		log.Infof("Created config file %s with defaults", path)
	case config.Replaced:
		notices = append(notices, fmt.Sprintf("invalid config replaced with defaults, backup in %s", path+config.BackupSuffix))
	case config.Fallback:
		notices = append(notices, "cannot read config, using defaults")
	default:
		log.Infof("Loaded config file %s", path)
	}
	if err != nil {
		log.Warnln(err)
	}

	if *tailnet != "" {
		cfg.Probe.Tailnet = *tailnet
	}
	if cfg.Probe.Tailnet != "" {
		dctx, cancel := context.WithTimeout(ctx, discoveryTimeout)
		cfg.Servers = tsDiscover(dctx, cfg.Probe.Tailnet, cfg.Servers)
		cancel()
	}

	for _, w := range cfg.Normalize() {
		log.Warnln(w)
		notices = append(notices, w)
	}

	return cfg, notices
}

// run starts prober, renderer, config watcher and the optional web server.
// The first one to return stops the others.
func run(ctx context.Context, path string, a *app, ui renderer) error {
	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.Go(func() error {
		defer cancel()
		return ui.Run(ctx)
	})
	g.Go(func() error {
		defer cancel()
		return a.scheduler.Run(ctx)
	})
	g.Go(func() error {
		if err := config.Watch(ctx, path, a.source.configChanged); err != nil {
			log.Warnln(err)
		}
		return nil
	})
	if *listenAddress != "" {
		g.Go(func() error {
			return startServer(ctx, a)
		})
	}

	return g.Wait()
}

func startServer(ctx context.Context, a *app) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, indexHTML, *metricsPath)
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(newPingCollector(a, rttMetricsScale))

	l := log.New()
	l.Level = log.ErrorLevel

	h := promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorLog:      l,
		ErrorHandling: promhttp.ContinueOnError,
	})
	mux.Handle(*metricsPath, h)

	srv := &http.Server{
		Addr:              *listenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(sctx)
	}()

	log.Infof("Listening for %s on %s", *metricsPath, *listenAddress)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("cannot start web server: %w", err)
	}
	return nil
}

const indexHTML = `<!doctype html>
<html>
<head>
	<meta charset="UTF-8">
	<title>pinggraph (Version ` + version + `)</title>
</head>
<body>
	<h1>pinggraph</h1>
	<p><a href="%s">Metrics</a></p>
</body>
</html>
`
