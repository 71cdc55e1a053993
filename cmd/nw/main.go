package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/0raclide/nihontowatch-sub000/pkg/config"
	"github.com/0raclide/nihontowatch-sub000/pkg/export"
	"github.com/0raclide/nihontowatch-sub000/pkg/loader"
	"github.com/0raclide/nihontowatch-sub000/pkg/query"
	"github.com/0raclide/nihontowatch-sub000/pkg/session"
	"github.com/0raclide/nihontowatch-sub000/pkg/stats"
	"github.com/0raclide/nihontowatch-sub000/pkg/ui"
	"github.com/0raclide/nihontowatch-sub000/pkg/updater"
	"github.com/0raclide/nihontowatch-sub000/pkg/version"
	"github.com/0raclide/nihontowatch-sub000/pkg/watcher"
)

// snapshotSampleSize bounds the listings a headless snapshot summarizes.
const snapshotSampleSize = 500

func main() {
	help := flag.Bool("help", false, "Show help")
	showVersion := flag.Bool("version", false, "Show version")
	configPath := flag.String("config", "", "Config file (default $XDG_CONFIG_HOME/nihontowatch/config.yaml)")
	catalogPath := flag.String("catalog", "", "Catalog file, JSONL or sqlite snapshot")
	endpoint := flag.String("endpoint", "", "Remote listing service base URL")
	openLink := flag.String("open", "", "Deep link URL to open on startup")
	snapshotPath := flag.String("export-snapshot", "", "Write a market snapshot card (svg or png) and exit")
	savePath := flag.String("save-snapshot", "", "Convert the catalog to a sqlite snapshot and exit")
	previewDir := flag.String("preview", "", "Serve exported cards from a directory in the browser")
	flag.Parse()

	if *help {
		fmt.Println("Usage: nw [options]")
		fmt.Println("\nA TUI browser for the Japanese sword market.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *showVersion {
		fmt.Println("nw " + version.Version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("Warning: %v", err)
	}
	if *catalogPath != "" {
		cfg.CatalogPath = *catalogPath
	}
	// Endpoint precedence: flag, then environment, then config file.
	if env := os.Getenv("NW_ENDPOINT"); env != "" {
		cfg.Endpoint = env
	}
	if *endpoint != "" {
		cfg.Endpoint = *endpoint
	}

	if *previewDir != "" {
		if err := export.StartPreview(*previewDir); err != nil {
			fmt.Printf("Error running preview: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if *savePath != "" {
		catalog, err := loader.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			fmt.Printf("Error loading catalog: %v\n", err)
			os.Exit(1)
		}
		if err := loader.SaveSnapshot(*savePath, catalog); err != nil {
			fmt.Printf("Error saving snapshot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d listings to %s\n", len(catalog), *savePath)
		os.Exit(0)
	}

	svc, local, err := buildService(cfg)
	if err != nil {
		fmt.Printf("Error loading catalog: %v\n", err)
		fmt.Println("Point --catalog at a catalog.jsonl or sqlite snapshot, or --endpoint at a listing service.")
		os.Exit(1)
	}

	if *snapshotPath != "" {
		if err := exportSnapshot(svc, cfg, *snapshotPath); err != nil {
			fmt.Printf("Error exporting snapshot: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Wrote " + *snapshotPath)
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "nw is interactive and needs a terminal; use --export-snapshot for scripted output")
		os.Exit(1)
	}

	if cfg.Debug || os.Getenv("NW_DEBUG") != "" {
		f, err := tea.LogToFile("nw-debug.log", "nw")
		if err != nil {
			fmt.Printf("Error opening debug log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	}

	m := ui.NewBrowse(ui.Options{
		Service:   svc,
		Store:     session.NewMemStore(),
		ShareBase: cfg.ShareBaseURL,
		PageSize:  cfg.PageSize,
		OpenOnly:  cfg.OpenOnly,
		DeepLink:  *openLink,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	m.SetSender(p.Send)

	// The catalog is an append log; reload it in place when the scraper
	// writes. Remote mode has no file to watch.
	if local != nil {
		w := watcher.NewCatalogWatcher(cfg.CatalogPath, func() {
			fresh, err := loader.LoadCatalog(cfg.CatalogPath)
			if err != nil {
				log.Printf("Warning: catalog reload failed: %v", err)
				return
			}
			local.SetCatalog(fresh)
			p.Send(ui.CatalogReloadedMsg{Count: len(fresh)})
		})
		if err := w.Start(); err != nil {
			log.Printf("Warning: catalog watching disabled: %v", err)
		} else {
			defer w.Close()
		}
	}

	go func() {
		tag, url, err := updater.CheckForUpdates()
		if err != nil || tag == "" {
			return
		}
		p.Send(ui.UpdateAvailableMsg{Tag: tag, URL: url})
	}()

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running nihontowatch: %v\n", err)
		os.Exit(1)
	}
}

// buildService picks the listing source: a remote client when an
// endpoint is configured, otherwise the local engine over the on-disk
// catalog. local is non-nil only in the latter case.
func buildService(cfg config.Config) (query.Service, *query.Local, error) {
	if cfg.Endpoint != "" {
		return query.NewClient(cfg.Endpoint), nil, nil
	}
	catalog, err := loader.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, nil, err
	}
	local := query.NewLocal(catalog)
	return local, local, nil
}

// exportSnapshot runs one search and writes the market card without
// starting the TUI.
func exportSnapshot(svc query.Service, cfg config.Config, path string) error {
	res := svc.Search(context.Background(), query.SearchOptions{
		Filters: query.Filters{OpenOnly: cfg.OpenOnly},
		Limit:   snapshotSampleSize,
		Sort:    query.SortUpdatedDesc,
	})
	if res.Meta.Error != "" {
		return fmt.Errorf("search failed: %s", res.Meta.Error)
	}
	if len(res.Listings) == 0 {
		return fmt.Errorf("no listings to summarize")
	}
	return export.SaveSnapshotCard(export.SnapshotOptions{
		Path:      path,
		Summary:   stats.Summarize(res.Listings),
		Histogram: res.PriceHistogram,
	})
}
