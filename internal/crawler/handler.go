package crawler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/alvmarrod/news-weaver/internal/telemetry"
)

// PageCallbackHandler is the contract between a crawl engine and the
// telemetry core. The engine calls it from a single worker goroutine.
type PageCallbackHandler interface {
	// OnStatusReceived is called once per fetch attempt, failed ones included
	OnStatusReceived(url string, statusCode int, statusText string)
	// ShouldVisit classifies a discovered link and reports whether to enqueue it
	ShouldVisit(referringPage *Page, candidateURL string) bool
	// OnPageVisited is called once per page whose body reached the parser
	OnPageVisited(page *Page)
	// OnCrawlEnd hands the worker's telemetry back to the engine
	OnCrawlEnd() *telemetry.Buffer
}

// ProgressCallback receives increments as telemetry is recorded
type ProgressCallback func(fetches, visits, within, outside int)

// Handler records telemetry for one worker
type Handler struct {
	workerID   int
	classifier *Classifier
	buffer     *telemetry.Buffer
	progress   ProgressCallback
	log        *logrus.Entry
}

// NewHandler creates the callback handler for a worker. progress may be nil.
func NewHandler(workerID int, classifier *Classifier, progress ProgressCallback) *Handler {
	return &Handler{
		workerID:   workerID,
		classifier: classifier,
		buffer:     telemetry.NewBuffer(workerID),
		progress:   progress,
		log:        logrus.WithField("worker", workerID),
	}
}

// OnStatusReceived records a fetch outcome
func (h *Handler) OnStatusReceived(url string, statusCode int, statusText string) {
	h.buffer.RecordFetch(url, statusCode)
	if statusText == "" {
		statusText = http.StatusText(statusCode)
	}
	h.log.Debugf("Fetched %s (status=%d %s)", url, statusCode, statusText)
	h.notify(1, 0, 0, 0)
}

// ShouldVisit runs the classifier, records the decision and returns eligibility
func (h *Handler) ShouldVisit(referringPage *Page, candidateURL string) bool {
	eligible, within := h.classifier.Classify(candidateURL)
	h.buffer.RecordDecision(candidateURL, within)

	if within {
		h.notify(0, 0, 1, 0)
	} else {
		h.notify(0, 0, 0, 1)
	}

	if !eligible && referringPage != nil {
		h.log.Tracef("Rejected %s (from %s, within=%t)", candidateURL, referringPage.URL, within)
	}
	return eligible
}

// OnPageVisited records size, outgoing link count and content type of a page
func (h *Handler) OnPageVisited(page *Page) {
	if page == nil {
		return
	}
	h.buffer.RecordVisit(page.URL, len(page.Body), len(page.Links), NormalizeContentType(page.ContentType))
	h.notify(0, 1, 0, 0)
}

// OnCrawlEnd returns the worker's telemetry buffer
func (h *Handler) OnCrawlEnd() *telemetry.Buffer {
	fetches, visits, decisions := h.buffer.Len()
	h.log.Infof("Worker finished: %d fetches, %d visits, %d url decisions", fetches, visits, decisions)
	return h.buffer
}

func (h *Handler) notify(fetches, visits, within, outside int) {
	if h.progress != nil {
		h.progress(fetches, visits, within, outside)
	}
}
