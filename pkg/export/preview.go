package export

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"
)

// Preview server port range.
const (
	PreviewPortRangeStart = 9000
	PreviewPortRangeEnd   = 9100
)

// PreviewServer serves a directory of exported cards locally so they
// can be checked in a browser before sharing.
type PreviewServer struct {
	dir    string
	port   int
	server *http.Server
}

// NewPreviewServer creates a preview server for the given card directory.
func NewPreviewServer(dir string, port int) *PreviewServer {
	return &PreviewServer{dir: dir, port: port}
}

// Start serves the card directory and blocks until the server stops.
func (p *PreviewServer) Start() error {
	info, err := os.Stat(p.dir)
	if err != nil {
		return fmt.Errorf("card directory not readable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", p.dir)
	}

	mux := http.NewServeMux()
	files := http.StripPrefix("/cards/", http.FileServer(http.Dir(p.dir)))
	mux.Handle("/cards/", noCacheMiddleware(files))
	mux.HandleFunc("/__preview__/status", p.statusHandler)
	mux.HandleFunc("/", p.indexHandler)

	p.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", p.port),
		Handler: mux,
	}
	return p.server.ListenAndServe()
}

// Stop shuts the server down, letting in-flight responses finish.
func (p *PreviewServer) Stop() error {
	if p.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.server.Shutdown(ctx)
}

// Port returns the port the server listens on.
func (p *PreviewServer) Port() int {
	return p.port
}

// URL returns the root URL of the preview server.
func (p *PreviewServer) URL() string {
	return fmt.Sprintf("http://localhost:%d", p.port)
}

// cardFiles lists the exported card images in the directory, sorted.
func (p *PreviewServer) cardFiles() []string {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil
	}
	var cards []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".svg", ".png":
			cards = append(cards, e.Name())
		}
	}
	sort.Strings(cards)
	return cards
}

func (p *PreviewServer) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	fmt.Fprint(w, "<!DOCTYPE html><html><head><title>nihontowatch cards</title></head>")
	fmt.Fprintf(w, `<body style="background:%s;color:%s;font-family:sans-serif;padding:2em">`, cardBG, cardFG)
	cards := p.cardFiles()
	if len(cards) == 0 {
		fmt.Fprint(w, "<p>No cards exported yet.</p>")
	}
	for _, name := range cards {
		fmt.Fprintf(w, `<figure><img src="/cards/%s" alt="%s" style="max-width:100%%"><figcaption>%s</figcaption></figure>`, name, name, name)
	}
	fmt.Fprint(w, "</body></html>")
}

func (p *PreviewServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprintf(w, `{"status":"running","port":%d,"dir":%q,"cards":%d}`,
		p.port, p.dir, len(p.cardFiles()))
}

// noCacheMiddleware keeps browsers from caching cards between exports.
func noCacheMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// FindAvailablePort finds a free port in the given inclusive range.
func FindAvailablePort(start, end int) (int, error) {
	for port := start; port <= end; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in range %d-%d", start, end)
}

// StartPreview serves dir on the first free port, opens a browser, and
// blocks until interrupted.
func StartPreview(dir string) error {
	port, err := FindAvailablePort(PreviewPortRangeStart, PreviewPortRangeEnd)
	if err != nil {
		return fmt.Errorf("could not find available port: %w", err)
	}
	srv := NewPreviewServer(dir, port)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	errChan := make(chan error, 1)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()
	go func() {
		time.Sleep(300 * time.Millisecond)
		if err := OpenInBrowser(srv.URL()); err != nil {
			fmt.Printf("Could not open browser: %v\n", err)
			fmt.Printf("Open %s yourself\n", srv.URL())
		}
	}()

	fmt.Printf("Preview running at %s (Ctrl+C to stop)\n", srv.URL())
	select {
	case <-stop:
		fmt.Println("\nShutting down preview server...")
		return srv.Stop()
	case err := <-errChan:
		return err
	}
}
