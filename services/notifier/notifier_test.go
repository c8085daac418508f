package notifier

import (
	"context"
	"errors"
	"testing"

	"sjsage522/jobworker/config"
	"sjsage522/jobworker/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	sent    []Notification
	err     error
	trimmed int
	closed  bool
}

func (r *recordingNotifier) Notify(ctx context.Context, n Notification) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) TrimStreams(ctx context.Context) error {
	r.trimmed++
	return nil
}

func (r *recordingNotifier) Close() error {
	r.closed = true
	return nil
}

func TestFormatListing(t *testing.T) {
	l := search.Listing{
		ID:      "12345",
		Title:   "Warehouse Operative",
		City:    "Sheffield",
		PayRate: 16.5,
		Link:    search.DeepLink("https://www.jobsatamazon.co.uk/app#/jobDetail/", "12345"),
	}

	text := FormatListing(l)
	assert.Contains(t, text, "Warehouse Operative")
	assert.Contains(t, text, "Sheffield")
	assert.Contains(t, text, "16.5")
	assert.Contains(t, text, "https://www.jobsatamazon.co.uk/app#/jobDetail/12345")
}

func TestFormatListingPrefersLocalizedPay(t *testing.T) {
	text := FormatListing(search.Listing{
		Title:       "Picker",
		City:        "Doncaster",
		Location:    "Doncaster DN4",
		PayRate:     13.2,
		PayRateText: "£13.20",
		Tags:        []string{"Full Time", "Flexible"},
		Link:        "https://example.com/1",
	})
	assert.Contains(t, text, "£13.20/hr")
	assert.Contains(t, text, "Doncaster")
	assert.Contains(t, text, "Full Time, Flexible")
}

func TestForListing(t *testing.T) {
	l := search.Listing{ID: "A", Title: "T"}
	n := ForListing(l)
	assert.Equal(t, "A", n.Key)
	require.NotNil(t, n.Listing)
	assert.Equal(t, "T", n.Listing.Title)

	// The notification holds its own copy
	l.Title = "changed"
	assert.Equal(t, "T", n.Listing.Title)
}

func TestMultiContinuesAfterFailure(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("unreachable")}
	ok := &recordingNotifier{}
	m := NewMulti(failing, ok)

	err := m.Notify(context.Background(), ForStatus("hello"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
	assert.Len(t, ok.sent, 1)

	assert.NoError(t, m.TrimStreams(context.Background()))
	assert.Equal(t, 1, failing.trimmed)
	assert.Equal(t, 1, ok.trimmed)

	assert.NoError(t, m.Close())
	assert.True(t, failing.closed)
	assert.True(t, ok.closed)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.LoadConfig()
	cfg.NotifySinks = []string{config.SinkTelegram}
	cfg.TelegramBotToken = "1:abc"
	cfg.TelegramChatID = "42"

	m, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, m.sinks, 1)

	cfg.NotifySinks = []string{"pager"}
	_, err = New(context.Background(), cfg)
	assert.Error(t, err)

	cfg.NotifySinks = nil
	_, err = New(context.Background(), cfg)
	assert.Error(t, err)
}
