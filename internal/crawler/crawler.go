package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"

	"github.com/alvmarrod/news-weaver/internal/config"
	"github.com/alvmarrod/news-weaver/internal/telemetry"
)

// Engine runs a breadth-first crawl of one site with a fixed pool of workers.
// Each worker owns a synchronous collector and a callback handler, so all
// telemetry of a worker is recorded on that worker's goroutine.
type Engine struct {
	cfg        *config.Config
	base       *colly.Collector
	queue      *Queue
	limiter    *PolitenessLimiter
	classifier *Classifier
	progress   ProgressCallback
	newHandler func(workerID int) PageCallbackHandler
}

// NewEngine creates a crawl engine from configuration. progress may be nil.
func NewEngine(cfg *config.Config, progress ProgressCallback) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	seed, err := url.Parse(cfg.SeedURL)
	if err != nil || seed.Host == "" || (seed.Scheme != "http" && seed.Scheme != "https") {
		return nil, fmt.Errorf("invalid seed URL %q", cfg.SeedURL)
	}

	e := &Engine{
		cfg:        cfg,
		queue:      NewQueue(cfg.MaxPages),
		limiter:    NewPolitenessLimiter(cfg.PolitenessDelay()),
		classifier: NewClassifier(cfg.TargetDomain, cfg.BlockedExtensions, cfg.StrictDomain),
		progress:   progress,
	}
	e.newHandler = func(workerID int) PageCallbackHandler {
		return NewHandler(workerID, e.classifier, e.progress)
	}
	e.setupColly()
	return e, nil
}

// setupColly configures the base collector every worker clones
func (e *Engine) setupColly() {
	e.base = colly.NewCollector(
		colly.UserAgent(e.cfg.UserAgent),
		colly.MaxDepth(0), // Managed manually via queue depth
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	e.base.IgnoreRobotsTxt = !e.cfg.RespectRobots

	e.base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   e.cfg.ConcurrentWorkers * 2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: e.cfg.RequestTimeout(),
		ForceAttemptHTTP2:     true,
	})
	e.base.SetRequestTimeout(e.cfg.RequestTimeout())

	// Redirects are reported as fetches and their targets go through the frontier
	e.base.SetRedirectHandler(func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	})
}

// Run crawls from the seed URL until the frontier drains or ctx is cancelled.
// It returns one telemetry buffer per worker, ordered by worker id.
// On cancellation the buffers collected so far are returned along with ctx.Err().
func (e *Engine) Run(ctx context.Context) ([]*telemetry.Buffer, error) {
	workers := e.cfg.ConcurrentWorkers
	logrus.Infof("Starting crawl of %s with %d workers (max depth %d, max pages %d)",
		e.cfg.SeedURL, workers, e.cfg.MaxDepth, e.cfg.MaxPages)

	e.queue.Push(QueueEntry{URL: e.cfg.SeedURL, Depth: 0})

	finished := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			logrus.Info("Crawl cancelled, stopping queue...")
			e.queue.Stop()
		case <-finished:
		}
	}()

	buffers := make([]*telemetry.Buffer, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		w := e.newWorker(i + 1)
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			buffers[slot] = w.run(ctx)
		}(i)
	}
	wg.Wait()
	close(finished)

	logrus.Infof("Crawl finished: %d URLs admitted to the frontier", e.queue.Admitted())
	return buffers, ctx.Err()
}

type worker struct {
	id        int
	engine    *Engine
	collector *colly.Collector
	handler   PageCallbackHandler
	current   QueueEntry
}

func (e *Engine) newWorker(id int) *worker {
	w := &worker{
		id:        id,
		engine:    e,
		collector: e.base.Clone(),
		handler:   e.newHandler(id),
	}
	w.collector.OnResponse(w.onResponse)
	w.collector.OnError(w.onError)
	return w
}

// run processes queue entries until the frontier is drained or stopped
func (w *worker) run(ctx context.Context) *telemetry.Buffer {
	logrus.Debugf("Worker %d started", w.id)

	for {
		entry, ok := w.engine.queue.Pop()
		if !ok {
			logrus.Debugf("Worker %d: queue drained or stopped, exiting", w.id)
			break
		}
		w.process(ctx, entry)
		w.engine.queue.Done()
	}

	return w.handler.OnCrawlEnd()
}

func (w *worker) process(ctx context.Context, entry QueueEntry) {
	host, _ := ExtractDomain(entry.URL)
	if err := w.engine.limiter.Wait(ctx, host); err != nil {
		return
	}

	w.current = entry
	logrus.Debugf("Worker %d: fetching %s (depth=%d)", w.id, entry.URL, entry.Depth)

	if err := w.collector.Visit(entry.URL); err != nil {
		// Transport failures were already recorded by onError
		if errors.Is(err, colly.ErrRobotsTxtBlocked) {
			logrus.Debugf("Worker %d: %s disallowed by robots.txt", w.id, entry.URL)
		} else {
			logrus.Debugf("Worker %d: visit failed for %s: %v", w.id, entry.URL, err)
		}
	}
}

func (w *worker) onResponse(r *colly.Response) {
	entry := w.current
	w.handler.OnStatusReceived(entry.URL, r.StatusCode, http.StatusText(r.StatusCode))

	contentType := ""
	if r.Headers != nil {
		contentType = r.Headers.Get("Content-Type")
	}
	page := &Page{
		URL:         entry.URL,
		StatusCode:  r.StatusCode,
		ContentType: contentType,
		Body:        r.Body,
		Depth:       entry.Depth,
	}

	switch {
	case r.StatusCode >= 300 && r.StatusCode < 400:
		if r.Headers == nil {
			return
		}
		if location := r.Headers.Get("Location"); location != "" {
			if target := r.Request.AbsoluteURL(location); isHTTPURL(target) {
				// The redirect target keeps the depth of the URL that redirected
				w.offer(page, target, page.Depth)
			}
		}
	case r.StatusCode >= 200 && r.StatusCode < 300:
		if strings.Contains(strings.ToLower(contentType), "html") {
			page.Links = extractLinks(r)
		}
		w.handler.OnPageVisited(page)
		if page.Depth >= w.engine.cfg.MaxDepth {
			return
		}
		for _, link := range page.Links {
			w.offer(page, link, page.Depth+1)
		}
	}
}

func (w *worker) onError(r *colly.Response, err error) {
	target := w.current.URL
	if r != nil && r.StatusCode != 0 {
		w.handler.OnStatusReceived(target, r.StatusCode, http.StatusText(r.StatusCode))
		return
	}

	reason := "transport error"
	if err != nil {
		reason = err.Error()
	}
	logrus.Warnf("Worker %d: fetch failed for %s: %s", w.id, target, reason)
	w.handler.OnStatusReceived(target, 0, reason)
}

// offer classifies a discovered link and schedules it at depth when eligible
func (w *worker) offer(from *Page, link string, depth int) {
	if w.engine.queue.Seen(link) {
		return
	}
	if !w.handler.ShouldVisit(from, link) {
		return
	}
	w.engine.queue.Push(QueueEntry{URL: link, Depth: depth})
}

// linkSelector matches every element whose target counts as an outgoing URL
const linkSelector = "a[href], area[href], link[href], img[src], script[src], iframe[src], frame[src], embed[src]"

// extractLinks returns the distinct absolute http(s) outgoing URLs of an HTML page
// (anchors and embedded resources) in document order.
// It returns nil when the body cannot be parsed.
func extractLinks(r *colly.Response) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	if err != nil {
		logrus.Debugf("Failed to parse %s: %v", r.Request.URL, err)
		return nil
	}

	links := make([]string, 0)
	seen := make(map[string]bool)
	doc.Find(linkSelector).Each(func(_ int, s *goquery.Selection) {
		target, ok := s.Attr("href")
		if !ok {
			target, _ = s.Attr("src")
		}
		abs := r.Request.AbsoluteURL(strings.TrimSpace(target))
		if !isHTTPURL(abs) || seen[abs] {
			return
		}
		seen[abs] = true
		links = append(links, abs)
	})
	return links
}

func isHTTPURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
