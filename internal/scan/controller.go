// Package scan implements the query controller: it turns a user trigger into
// one GET /scan request and resolves the response into exactly one display
// outcome.
package scan

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"newsquant/internal/view"
	"newsquant/pkg/newsquant"
)

// Display texts owned by the controller.
const (
	BusyText  = "Scanning..."
	EmptyText = "No articles found in this timeframe."
)

// DefaultAllIndustries is the industry selector value meaning "no filter".
const DefaultAllIndustries = "all"

var (
	// ErrMissingHandle is returned by New when a required UI handle is nil.
	ErrMissingHandle = errors.New("missing UI handle")

	// ErrUnknownPeriod is returned when the period is not an allowed value.
	ErrUnknownPeriod = errors.New("unknown period")

	// ErrUnknownIndustry is returned when the industry is not an allowed value.
	ErrUnknownIndustry = errors.New("unknown industry")
)

// Outcome is the resolved result of one scan cycle.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeEmpty
	OutcomePopulated
	OutcomeRequestFailed
	OutcomeTransportFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmpty:
		return "empty"
	case OutcomePopulated:
		return "populated"
	case OutcomeRequestFailed:
		return "request_failed"
	case OutcomeTransportFailed:
		return "transport_failed"
	default:
		return "none"
	}
}

// Scanner issues the scan request. *newsquant.Client satisfies it.
type Scanner interface {
	Scan(ctx context.Context, q newsquant.Query) ([]newsquant.Item, error)
}

// Selector is a UI input whose current value is read on every trigger.
type Selector interface {
	Value() string
}

// Handles are the UI elements the controller binds to once at start-up.
// Industry is optional.
type Handles struct {
	Period   Selector
	Industry Selector
	Display  view.Region
}

// Controller runs scan cycles against a bound display region.
type Controller struct {
	scanner  Scanner
	period   Selector
	industry Selector
	display  view.Region
	renderer *view.Renderer
	log      logrus.FieldLogger

	periods     map[string]bool
	industries  map[string]bool
	allIndustry string
}

// Option customises a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for scan cycle records.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithPeriods restricts the accepted period values. Without it any non-empty
// period is accepted.
func WithPeriods(values ...string) Option {
	return func(c *Controller) {
		c.periods = toSet(values)
	}
}

// WithIndustries restricts the accepted industry values. The "all" sentinel
// and the empty value are always accepted.
func WithIndustries(values ...string) Option {
	return func(c *Controller) {
		c.industries = toSet(values)
	}
}

// WithAllIndustries sets the selector value that means "no industry filter".
func WithAllIndustries(sentinel string) Option {
	return func(c *Controller) {
		c.allIndustry = sentinel
	}
}

// New binds a controller to its UI handles and fails fast if the scanner,
// the period selector or the display region is missing.
func New(scanner Scanner, h Handles, opts ...Option) (*Controller, error) {
	switch {
	case scanner == nil:
		return nil, fmt.Errorf("scanner: %w", ErrMissingHandle)
	case h.Period == nil:
		return nil, fmt.Errorf("period selector: %w", ErrMissingHandle)
	case h.Display == nil:
		return nil, fmt.Errorf("display region: %w", ErrMissingHandle)
	}

	silent := logrus.New()
	silent.SetLevel(logrus.PanicLevel)

	c := &Controller{
		scanner:     scanner,
		period:      h.Period,
		industry:    h.Industry,
		display:     h.Display,
		renderer:    view.NewRenderer(h.Display),
		log:         silent,
		allIndustry: DefaultAllIndustries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Trigger reads the bound selectors and runs one scan cycle.
func (c *Controller) Trigger(ctx context.Context) error {
	industry := ""
	if c.industry != nil {
		industry = c.industry.Value()
	}
	return c.RunScan(ctx, c.period.Value(), industry)
}

// RunScan shows the busy text, issues a single request and replaces the
// display region with the outcome. It returns *newsquant.RequestFailedError
// or *newsquant.TransportFailedError on failure; an empty result is not an
// error. Nothing is retried.
func (c *Controller) RunScan(ctx context.Context, period, industry string) error {
	q, err := c.Begin(period, industry)
	if err != nil {
		return err
	}
	items, err := c.scanner.Scan(ctx, q)
	_, err = c.Complete(q, items, err)
	return err
}

// Begin validates the selection, shows the busy text and returns the query to
// send. An invalid selection leaves the display untouched.
func (c *Controller) Begin(period, industry string) (newsquant.Query, error) {
	q, err := c.query(period, industry)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"period":   period,
			"industry": industry,
		}).Warn("scan rejected")
		return newsquant.Query{}, err
	}
	c.display.SetText(BusyText)
	return q, nil
}

// Complete resolves the response of the request started by Begin and writes
// the outcome to the display region. Whichever call completes last owns the
// display.
func (c *Controller) Complete(q newsquant.Query, items []newsquant.Item, scanErr error) (Outcome, error) {
	log := c.log.WithFields(logrus.Fields{
		"cycle":    uuid.NewString(),
		"period":   q.Period,
		"industry": q.Industry,
	})

	if scanErr != nil {
		var rf *newsquant.RequestFailedError
		var tf *newsquant.TransportFailedError
		switch {
		case errors.As(scanErr, &rf):
			c.display.SetText(rf.Error())
			log.WithField("status", rf.StatusCode).Warn("scan request failed")
			return OutcomeRequestFailed, scanErr
		case errors.As(scanErr, &tf):
			c.display.SetText(tf.Error())
			log.WithError(scanErr).Warn("scan transport failed")
			return OutcomeTransportFailed, scanErr
		default:
			tf = &newsquant.TransportFailedError{Err: scanErr}
			c.display.SetText(tf.Error())
			log.WithError(scanErr).Warn("scan transport failed")
			return OutcomeTransportFailed, tf
		}
	}

	if len(items) == 0 {
		c.display.SetText(EmptyText)
		log.Info("scan returned no items")
		return OutcomeEmpty, nil
	}

	c.renderer.Render(items)
	log.WithField("items", len(items)).Info("scan rendered")
	return OutcomePopulated, nil
}

// ParseQuery checks a selection against the same options a Controller would
// be built with and returns the query to send.
func ParseQuery(period, industry string, opts ...Option) (newsquant.Query, error) {
	c := &Controller{allIndustry: DefaultAllIndustries}
	for _, opt := range opts {
		opt(c)
	}
	return c.query(period, industry)
}

func (c *Controller) query(period, industry string) (newsquant.Query, error) {
	if period == "" || (c.periods != nil && !c.periods[period]) {
		return newsquant.Query{}, fmt.Errorf("%q: %w", period, ErrUnknownPeriod)
	}
	if industry == c.allIndustry {
		industry = ""
	}
	if industry != "" && c.industries != nil && !c.industries[industry] {
		return newsquant.Query{}, fmt.Errorf("%q: %w", industry, ErrUnknownIndustry)
	}
	return newsquant.Query{Period: period, Industry: industry}, nil
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
