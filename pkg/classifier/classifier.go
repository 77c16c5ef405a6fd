package classifier

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sm-moshi/cursor-stats/pkg/models"
)

// midMonthMarker identifies invoice lines that are mid-month payment
// credits rather than billable usage.
const midMonthMarker = "mid-month usage paid"

// Kind discriminates classification outcomes.
type Kind int

const (
	// Skip means the line produced no usage record.
	Skip Kind = iota
	// LineItem means the line parsed into a billable usage record.
	LineItem
	// MidMonthCredit means the line is a payment credit contributing to the
	// month's running total.
	MidMonthCredit
)

// Result is the outcome of classifying one invoice line.
type Result struct {
	Kind Kind

	// LineItem fields.
	RequestCount int
	Cents        int64
	ModelName    string
	IsDiscounted bool

	// MidMonthCredit fields: the absolute credit amount in cents.
	CreditCents int64
}

// Classifier turns raw invoice line descriptions into typed usage records.
// Parsing failures are never fatal: a line that cannot be understood is
// skipped and logged, not propagated.
type Classifier struct {
	log       *logrus.Logger
	tracker   *Tracker
	blocklist map[string]struct{}
	labels    []labelMatcher
}

// New creates a Classifier. Unmappable model terms are forwarded to tracker;
// extraBlocklist extends the built-in generic-keyword blocklist.
func New(tracker *Tracker, extraBlocklist []string, log *logrus.Logger) *Classifier {
	if log == nil {
		log = logrus.New()
	}
	block := make(map[string]struct{}, len(defaultBlocklist)+len(extraBlocklist))
	for _, t := range defaultBlocklist {
		block[strings.ToLower(t)] = struct{}{}
	}
	for _, t := range extraBlocklist {
		block[strings.ToLower(t)] = struct{}{}
	}

	c := &Classifier{
		log:       log,
		tracker:   tracker,
		blocklist: block,
	}
	c.labels = labelMatchers(c.resolveUnknown)
	return c
}

// Classify applies the classification rules to one raw invoice line.
func (c *Classifier) Classify(item models.InvoiceItem) Result {
	if item.Cents == nil {
		return Result{Kind: Skip}
	}
	cents := *item.Cents

	if strings.Contains(strings.ToLower(item.Description), midMonthMarker) {
		credit := cents
		if credit < 0 {
			credit = -credit
		}
		return Result{Kind: MidMonthCredit, CreditCents: credit}
	}

	match, ok := c.extractCount(item.Description)
	if !ok {
		c.log.WithField("description", item.Description).Debug("unparsable invoice line, skipping")
		return Result{Kind: Skip}
	}
	if match.count == 0 {
		c.log.WithField("description", item.Description).Debug("zero request count, skipping")
		return Result{Kind: Skip}
	}

	label := match.phrase
	if !match.verbatim {
		label = c.resolveLabel(match.phrase)
	}

	return Result{
		Kind:         LineItem,
		RequestCount: match.count,
		Cents:        cents,
		ModelName:    label,
		IsDiscounted: strings.Contains(strings.ToLower(item.Description), "discounted"),
	}
}

func (c *Classifier) extractCount(desc string) (countMatch, bool) {
	for _, m := range countMatchers {
		if match, ok := m.extract(desc); ok {
			return match, true
		}
	}
	return countMatch{}, false
}

func (c *Classifier) resolveLabel(phrase string) string {
	for _, m := range c.labels {
		if label, ok := m.resolve(phrase); ok {
			return label
		}
	}
	return models.UnknownModelName
}

// resolveUnknown is the terminal label matcher: it always claims the phrase,
// reporting a cleaned term to the tracker when it looks like a genuine model
// name rather than generic invoice wording.
func (c *Classifier) resolveUnknown(phrase string) (string, bool) {
	term := cleanTerm(phrase)
	if len(term) < 2 {
		return models.UnknownModelName, true
	}
	if _, blocked := c.blocklist[strings.ToLower(term)]; blocked {
		return models.UnknownModelName, true
	}
	if c.tracker != nil {
		c.tracker.Observe(term)
	}
	return models.UnknownModelName, true
}
