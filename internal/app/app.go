// Package app wires configuration into the stores, clients and services
// shared by the auctions CLI and the auctionsd daemon.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/joseph-ayodele/auction-tracker/internal/common"
	"github.com/joseph-ayodele/auction-tracker/internal/core"
	"github.com/joseph-ayodele/auction-tracker/internal/core/async"
	"github.com/joseph-ayodele/auction-tracker/internal/core/auction"
	"github.com/joseph-ayodele/auction-tracker/internal/core/pdftext"
	"github.com/joseph-ayodele/auction-tracker/internal/core/vin"
	"github.com/joseph-ayodele/auction-tracker/internal/export"
	"github.com/joseph-ayodele/auction-tracker/internal/repository"
	"github.com/joseph-ayodele/auction-tracker/internal/services/enrich"
	"github.com/joseph-ayodele/auction-tracker/internal/services/scrape"
	"github.com/joseph-ayodele/auction-tracker/internal/source"
)

type App struct {
	Config *common.Config
	Logger *slog.Logger

	CSV *repository.CSVStore
	SQL *repository.SQLStore // nil when no database is configured

	Documents repository.Fanout
	VINs      repository.VINFanout

	HTTP      *resty.Client
	Parser    *auction.Parser
	Processor *core.Processor

	Scrape *scrape.Service
	Enrich *enrich.Service
	Export *export.Service
}

// New opens the stores and builds every service. Close releases them.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	csvStore, err := repository.NewCSVStore(cfg.Output.Dir, logger)
	if err != nil {
		return nil, err
	}
	a.CSV = csvStore

	// the transactional store goes first: the CSV files cannot take a
	// document back once appended
	if cfg.Database.Driver != "" {
		sqlStore, err := repository.Open(ctx, DatabaseConfig(cfg), logger)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.SQL = sqlStore
		a.Documents = append(a.Documents, sqlStore)
		a.VINs = append(a.VINs, sqlStore)
	}
	a.Documents = append(a.Documents, csvStore)
	a.VINs = append(a.VINs, csvStore)

	a.HTTP = source.NewHTTPClient(source.ClientConfig{
		UserAgent:  cfg.Source.UserAgent,
		Timeout:    cfg.Source.Timeout.Std(),
		RetryCount: cfg.Source.RetryCount,
		RetryWait:  cfg.Source.RetryWait.Std(),
	}, logger)

	extractor := pdftext.NewExtractor(pdftext.Config{
		Mode:     pdftext.ParseMode(cfg.PDF.TextMode),
		MaxPages: cfg.PDF.MaxPages,
	}, logger)
	a.Parser = auction.NewParser(extractor, logger)
	a.Processor = core.NewProcessor(logger, a.Parser, source.NewDownloader(a.HTTP, logger), a.Documents)

	discoverer, err := source.NewDiscoverer(a.HTTP, cfg.Source.IndexURL, cfg.Source.BaseURL, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Scrape = scrape.NewService(discoverer, a.Processor, logger, a.QueueOptions()...)

	vinClient := source.NewHTTPClient(source.ClientConfig{
		UserAgent:  cfg.Source.UserAgent,
		Timeout:    cfg.VIN.Timeout.Std(),
		RetryCount: cfg.VIN.RetryCount,
		RetryWait:  cfg.Source.RetryWait.Std(),
	}, logger)
	decoder, err := vin.NewDecoder(vinClient, vin.Config{
		APIURL:      cfg.VIN.APIURL,
		Concurrency: cfg.VIN.Concurrency,
		Timeout:     cfg.VIN.Timeout.Std(),
	}, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Enrich = enrich.NewService(csvStore, decoder, a.VINs, logger)
	a.Export = export.NewService(csvStore, logger)
	return a, nil
}

// DatabaseConfig converts the database section for repository.Open.
func DatabaseConfig(cfg *common.Config) repository.Config {
	return repository.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime.Std(),
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime.Std(),
		DialTimeout:     cfg.Database.DialTimeout.Std(),
	}
}

// QueueOptions sizes a processor queue from the worker section.
func (a *App) QueueOptions() []async.Option {
	return []async.Option{
		async.WithWorkers(a.Config.Worker.Workers),
		async.WithQueueSize(a.Config.Worker.QueueSize),
		async.WithProcessTimeout(a.Config.Worker.ProcessTimeout.Std()),
	}
}

// NewQueue starts a processor queue for local documents.
func (a *App) NewQueue(opts ...async.Option) *async.ProcessorQueue {
	return async.NewProcessorQueue(a.Processor, a.Logger, append(a.QueueOptions(), opts...)...)
}

// Run scrapes the published notices and then decodes the VINs found.
// A failed scrape stops the run before decoding.
func (a *App) Run(ctx context.Context) (scrape.Summary, enrich.Summary, error) {
	start := time.Now()
	a.Logger.Info("Running scrape to collect auction PDFs")
	ss, err := a.Scrape.Run(ctx)
	if err != nil {
		return ss, enrich.Summary{}, fmt.Errorf("scrape: %w", err)
	}
	a.Logger.Info("Auction data collection complete, running VIN decoding")
	es, err := a.Enrich.Run(ctx)
	if errors.Is(err, common.ErrNotFound) {
		a.Logger.Info("no auction data yet, skipping VIN decoding", "file", a.CSV.DataPath())
		return ss, es, nil
	}
	if err != nil {
		return ss, es, fmt.Errorf("decode: %w", err)
	}
	a.Logger.Info("Process finished", "elapsed_ms", time.Since(start).Milliseconds())
	return ss, es, nil
}

func (a *App) Close() {
	if a.SQL != nil {
		a.SQL.Close()
	}
}
