package notifier

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"sjsage522/jobworker/internal/search"
)

// Notification is one message for the sinks
type Notification struct {
	Key     string          `json:"key"`
	Text    string          `json:"text"`
	Listing *search.Listing `json:"listing,omitempty"`
}

// Notifier represents a notification sink
type Notifier interface {
	// Notify delivers one notification. Delivery is best effort.
	Notify(ctx context.Context, n Notification) error

	// Close releases the sink's connections
	Close() error
}

// Trimmer is implemented by sinks that need housekeeping after a batch
type Trimmer interface {
	TrimStreams(ctx context.Context) error
}

// ForListing builds the notification for a newly seen listing
func ForListing(l search.Listing) Notification {
	listing := l
	return Notification{
		Key:     l.ID,
		Text:    FormatListing(l),
		Listing: &listing,
	}
}

// ForStatus builds a plain status notification
func ForStatus(text string) Notification {
	return Notification{Key: "status", Text: text}
}

// FormatListing renders the message text for a listing
func FormatListing(l search.Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💼 %s\n", l.Title)
	if place := l.Place(); place != "" {
		fmt.Fprintf(&b, "📍 %s\n", place)
	}
	fmt.Fprintf(&b, "💰 Pay: %s\n", formatPay(l))
	if len(l.Tags) > 0 {
		fmt.Fprintf(&b, "🏷 %s\n", strings.Join(l.Tags, ", "))
	}
	fmt.Fprintf(&b, "🔗 %s", l.Link)
	return b.String()
}

func formatPay(l search.Listing) string {
	if l.PayRateText != "" {
		return l.PayRateText + "/hr"
	}
	return "£" + strconv.FormatFloat(l.PayRate, 'f', -1, 64) + "/hr"
}

// Multi fans a notification out to every sink
type Multi struct {
	sinks []Notifier
}

// NewMulti creates a fan-out notifier
func NewMulti(sinks ...Notifier) *Multi {
	return &Multi{sinks: sinks}
}

// Notify delivers to all sinks; a failing sink does not stop the others
func (m *Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// TrimStreams runs housekeeping on the sinks that support it
func (m *Multi) TrimStreams(ctx context.Context) error {
	var errs []error
	for _, s := range m.sinks {
		if t, ok := s.(Trimmer); ok {
			if err := t.TrimStreams(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return stderrors.Join(errs...)
}

// Close closes every sink
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
