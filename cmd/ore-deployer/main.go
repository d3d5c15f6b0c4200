package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scotchthepilgrim/ore-ev-program/internal/api"
	"github.com/scotchthepilgrim/ore-ev-program/internal/deploy"
	"github.com/scotchthepilgrim/ore-ev-program/internal/feed"
	"github.com/scotchthepilgrim/ore-ev-program/internal/monitoring"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/bus"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/lifecycle"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/logger"
)

func main() {
	var (
		cfgPath     string
		apiAddr     string
		monAddr     string
		feedURL     string
		submitURL   string
		journalPath string
		historyPath string
	)
	flag.StringVar(&cfgPath, "config", "", "Optional YAML config file")
	flag.StringVar(&apiAddr, "api", "", "Deploy API listen address")
	flag.StringVar(&monAddr, "monitoring", "", "Monitoring listen address")
	flag.StringVar(&feedURL, "feed.url", "", "Round-state websocket URL")
	flag.StringVar(&submitURL, "submit.url", "", "Settlement commit endpoint URL")
	flag.StringVar(&journalPath, "journal", "", "Plan journal path (JSON lines)")
	flag.StringVar(&historyPath, "history", "", "Deployment history sqlite path")
	flag.Parse()

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	// Explicit flags override the config file.
	if apiAddr != "" {
		cfg.APIAddr = apiAddr
	}
	if monAddr != "" {
		cfg.MonAddr = monAddr
	}
	if feedURL != "" {
		cfg.FeedURL = feedURL
	}
	if submitURL != "" {
		cfg.SubmitURL = submitURL
	}
	if journalPath != "" {
		cfg.JournalPath = journalPath
	}
	if historyPath != "" {
		cfg.HistoryPath = historyPath
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	b := bus.New(256)

	d := deploy.NewWithSub(b.Subscribe())
	if cfg.SubmitURL != "" {
		d.SetSubmitter(deploy.WebhookSubmitter{URL: cfg.SubmitURL, Timeout: 2 * time.Second})
	}
	if cfg.JournalPath != "" {
		d.SetJournal(deploy.NewJournal(cfg.JournalPath))
	}
	if cfg.HistoryPath != "" {
		h, err := deploy.OpenHistory(cfg.HistoryPath)
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		d.SetHistory(h)
	}

	m := lifecycle.New()
	m.Add(d)
	m.Add(feed.New(cfg.FeedURL, b))
	m.Add(api.New(cfg.APIAddr, d))
	m.Add(monitoring.New(cfg.MonAddr))

	if err := m.StartAll(ctx); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	<-ctx.Done()
	_ = m.StopAll(context.Background())
}
