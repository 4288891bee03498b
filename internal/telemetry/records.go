package telemetry

// Indicator labels used in the URL decision export
const (
	IndicatorWithin  = "OK"
	IndicatorOutside = "N_OK"
)

// FetchRecord is the outcome of a single fetch attempt
type FetchRecord struct {
	URL        string
	StatusCode int
}

// VisitRecord describes a page whose body reached the parser
type VisitRecord struct {
	URL         string
	Size        int
	Outlinks    int
	ContentType string
}

// URLDecision is the classifier verdict for a candidate URL
type URLDecision struct {
	URL          string
	WithinDomain bool
}

// Indicator returns the export label for the decision
func (d URLDecision) Indicator() string {
	if d.WithinDomain {
		return IndicatorWithin
	}
	return IndicatorOutside
}
