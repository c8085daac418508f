package search

import (
	"context"
	"strings"

	"sjsage522/jobworker/internal/token"
)

// Listing is one job posting returned by the search API
type Listing struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	City           string   `json:"city,omitempty"`
	Location       string   `json:"location,omitempty"`
	PayRate        float64  `json:"pay_rate"`
	PayRateText    string   `json:"pay_rate_text,omitempty"`
	EmploymentType string   `json:"employment_type,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Link           string   `json:"link"`
}

// Place returns the most specific location known for the listing
func (l Listing) Place() string {
	switch {
	case l.City != "" && l.Location != "" && !strings.EqualFold(l.Location, l.City):
		return l.City + " (" + l.Location + ")"
	case l.City != "":
		return l.City
	default:
		return l.Location
	}
}

// Searcher fetches the current listings using a credential
type Searcher interface {
	Search(ctx context.Context, cred token.Credential) ([]Listing, error)
}

// Filter is a key with accepted values, as used by containFilters
type Filter struct {
	Key string   `json:"key"`
	Val []string `json:"val"`
}

// Sorter orders results by a field
type Sorter struct {
	FieldName string `json:"fieldName"`
	Ascending string `json:"ascending"`
}

// JobRequest is the filter object sent as searchJobRequest
type JobRequest struct {
	Locale              string   `json:"locale"`
	Country             string   `json:"country"`
	KeyWords            string   `json:"keyWords"`
	EqualFilters        []Filter `json:"equalFilters"`
	ContainFilters      []Filter `json:"containFilters"`
	RangeFilters        []Filter `json:"rangeFilters"`
	OrFilters           []Filter `json:"orFilters"`
	DateFilters         []Filter `json:"dateFilters"`
	Sorters             []Sorter `json:"sorters"`
	PageSize            int      `json:"pageSize"`
	ConsolidateSchedule bool     `json:"consolidateSchedule"`
}

type requestBody struct {
	OperationName string                `json:"operationName"`
	Variables     map[string]JobRequest `json:"variables"`
	Query         string                `json:"query"`
}

type jobCard struct {
	JobID               string   `json:"jobId"`
	JobTitle            string   `json:"jobTitle"`
	City                string   `json:"city"`
	LocationName        string   `json:"locationName"`
	TotalPayRateMax     float64  `json:"totalPayRateMax"`
	TotalPayRateMaxL10N string   `json:"totalPayRateMaxL10N"`
	EmploymentType      string   `json:"employmentType"`
	ScheduleType        string   `json:"scheduleType"`
	JobType             string   `json:"jobType"`
	Tags                []string `json:"tags"`
}

type graphQLError struct {
	Message   string `json:"message"`
	ErrorType string `json:"errorType"`
}

type responseEnvelope struct {
	Data *struct {
		SearchJobCardsByLocation *struct {
			JobCards []jobCard `json:"jobCards"`
		} `json:"searchJobCardsByLocation"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

const searchQuery = `query searchJobCardsByLocation($searchJobRequest: SearchJobRequest!) {
  searchJobCardsByLocation(searchJobRequest: $searchJobRequest) {
    jobCards {
      jobId
      jobTitle
      city
      locationName
      totalPayRateMax
      totalPayRateMaxL10N
      employmentType
      scheduleType
      jobType
    }
  }
}`
