package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sjsage522/jobworker/config"
	"sjsage522/jobworker/helpers"
	"sjsage522/jobworker/internal/token"
	"sjsage522/jobworker/logger"
	"sjsage522/jobworker/pkg/errors"
	"sjsage522/jobworker/services/cache"

	"github.com/go-resty/resty/v2"
)

const component = "search"

// Options configures a search Client
type Options struct {
	URL                 string
	Operation           string
	Keywords            string
	Locale              string
	Country             string
	PageSize            int
	PrivateSchedule     []string
	ConsolidateSchedule bool
	DetailURL           string
	Origin              string
	Timeout             time.Duration
	BlockTime           time.Duration
}

// OptionsFromConfig maps the application configuration onto client options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		URL:                 cfg.SearchAPIURL,
		Operation:           cfg.SearchOperation,
		Keywords:            cfg.SearchKeywords,
		Locale:              cfg.SearchLocale,
		Country:             cfg.SearchCountry,
		PageSize:            cfg.SearchPageSize,
		PrivateSchedule:     cfg.PrivateSchedule,
		ConsolidateSchedule: cfg.ConsolidateSchedule,
		DetailURL:           cfg.JobDetailURL,
		Origin:              helpers.Origin(cfg.TokenPageURL),
		Timeout:             cfg.RequestTimeout,
		BlockTime:           cfg.RateLimitTime,
	}
}

// Client calls the GraphQL job search endpoint
type Client struct {
	opts     Options
	http     *resty.Client
	cacheSvc cache.CacheService
	cacheKey string
	log      *logger.Logger
}

// NewClient creates a search client. cacheSvc may be nil, which disables
// rate-limit blocking.
func NewClient(opts Options, cacheSvc cache.CacheService) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.PageSize <= 0 || opts.PageSize > config.MaxPageSize {
		opts.PageSize = config.MaxPageSize
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)

	return &Client{
		opts:     opts,
		http:     client,
		cacheSvc: cacheSvc,
		cacheKey: "search_rate_limited",
		log:      logger.ForSearch(),
	}
}

// Search issues one search request and returns the listings it found
func (c *Client) Search(ctx context.Context, cred token.Credential) ([]Listing, error) {
	if cred.IsZero() {
		return nil, errors.NewValidation(component, "empty credential")
	}

	if c.isBlocked() {
		return nil, errors.NewRateLimit(component, c.opts.BlockTime)
	}

	origin := c.opts.Origin
	referer := ""
	if origin != "" {
		referer = origin + "/"
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(helpers.BrowserHeaders(origin, referer)).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", cred.String()).
		SetBody(c.requestBody()).
		Post(c.opts.URL)
	if err != nil {
		return nil, errors.NewFetch(component, "request failed", err)
	}

	if helpers.IsRateLimited(resp.StatusCode()) {
		c.block()
		return nil, errors.NewRateLimit(component, c.opts.BlockTime)
	}

	if !resp.IsSuccess() {
		return nil, errors.NewFetch(component,
			fmt.Sprintf("unexpected status code: %d: %s", resp.StatusCode(), helpers.Truncate(string(resp.Body()), 200)), nil)
	}

	return c.parse(resp.Body())
}

func (c *Client) requestBody() requestBody {
	req := JobRequest{
		Locale:         c.opts.Locale,
		Country:        c.opts.Country,
		KeyWords:       c.opts.Keywords,
		EqualFilters:   []Filter{},
		ContainFilters: []Filter{},
		RangeFilters:   []Filter{},
		OrFilters:      []Filter{},
		DateFilters:    []Filter{},
		Sorters: []Sorter{
			{FieldName: "totalPayRateMax", Ascending: "false"},
		},
		PageSize:            c.opts.PageSize,
		ConsolidateSchedule: c.opts.ConsolidateSchedule,
	}
	if len(c.opts.PrivateSchedule) > 0 {
		req.ContainFilters = append(req.ContainFilters, Filter{Key: "isPrivateSchedule", Val: c.opts.PrivateSchedule})
	}

	return requestBody{
		OperationName: c.opts.Operation,
		Variables:     map[string]JobRequest{"searchJobRequest": req},
		Query:         searchQuery,
	}
}

func (c *Client) parse(body []byte) ([]Listing, error) {
	var envelope responseEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.NewParsing(component, "malformed response body", err)
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		return nil, errors.NewFetch(component, "api returned errors: "+strings.Join(messages, "; "), nil)
	}

	if envelope.Data == nil || envelope.Data.SearchJobCardsByLocation == nil {
		return nil, errors.NewParsing(component, "response has no searchJobCardsByLocation", nil)
	}

	cards := envelope.Data.SearchJobCardsByLocation.JobCards
	listings := make([]Listing, 0, len(cards))
	for _, card := range cards {
		if card.JobID == "" {
			c.log.Debug().Str("title", card.JobTitle).Msg("Skipping job card without id")
			continue
		}
		listings = append(listings, c.toListing(card))
	}

	c.log.Debug().Int("count", len(listings)).Msg("Parsed job cards")
	return listings, nil
}

func (c *Client) toListing(card jobCard) Listing {
	var tags []string
	for _, t := range append([]string{card.EmploymentType, card.ScheduleType, card.JobType}, card.Tags...) {
		if t != "" {
			tags = append(tags, t)
		}
	}

	return Listing{
		ID:             card.JobID,
		Title:          strings.TrimSpace(card.JobTitle),
		City:           strings.TrimSpace(card.City),
		Location:       strings.TrimSpace(card.LocationName),
		PayRate:        card.TotalPayRateMax,
		PayRateText:    card.TotalPayRateMaxL10N,
		EmploymentType: card.EmploymentType,
		Tags:           tags,
		Link:           DeepLink(c.opts.DetailURL, card.JobID),
	}
}

// DeepLink builds the job detail link for a listing id
func DeepLink(base, id string) string {
	return base + url.PathEscape(id)
}

func (c *Client) isBlocked() bool {
	if c.cacheSvc == nil || c.opts.BlockTime <= 0 {
		return false
	}
	_, err := c.cacheSvc.Get(c.cacheKey)
	return err == nil
}

func (c *Client) block() {
	if c.cacheSvc == nil || c.opts.BlockTime <= 0 {
		return
	}
	seconds := strconv.Itoa(int(c.opts.BlockTime / time.Second))
	if err := c.cacheSvc.Set(c.cacheKey, []byte(seconds), c.opts.BlockTime); err != nil {
		c.log.Warn().Err(err).Msg("Failed to record rate limit block")
		return
	}
	c.log.Warn().Dur("block", c.opts.BlockTime).Msg("Search API rate limited, blocking further requests")
}
