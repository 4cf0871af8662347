// Package clash reads an uploaded Clash proxy configuration and turns
// its proxy-provider keys into a subscription expiry dashboard.
package clash

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNotFound means no configuration has been uploaded yet.
var ErrNotFound = errors.New("clash config not found")

// subscriptionKey matches provider keys of the form name-YYYY-MM-DD.
var subscriptionKey = regexp.MustCompile(`^(.+)-(\d{4})-(\d{2})-(\d{2})$`)

// Subscription statuses, ordered by urgency.
const (
	StatusExpired  = "expired"
	StatusExpiring = "expiring"
	StatusActive   = "active"
	StatusUnknown  = "unknown"
)

// expiringDays is the warning window before expiry.
const expiringDays = 7

type Subscription struct {
	Key           string `json:"key"`
	Name          string `json:"name"`
	ExpireDate    string `json:"expireDate,omitempty"`
	DaysRemaining *int   `json:"daysRemaining,omitempty"`
	Status        string `json:"status"`
	URL           string `json:"url,omitempty"`
}

type Summary struct {
	Total         int            `json:"total"`
	Expired       int            `json:"expired"`
	Expiring      int            `json:"expiring"`
	Active        int            `json:"active"`
	Unknown       int            `json:"unknown"`
	Subscriptions []Subscription `json:"subscriptions"`
}

// Parser reads and writes the uploaded configuration file.
type Parser struct {
	path string
}

func NewParser(path string) *Parser {
	return &Parser{path: path}
}

func (p *Parser) Exists() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

func (p *Parser) ReadConfig() (string, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}

// WriteConfig replaces the stored document, creating the parent
// directory on first upload.
func (p *Parser) WriteConfig(content string) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, []byte(content), 0o600)
}

// ParseKey splits a provider key into its name and expiry date.
// Keys without a valid trailing date come back with a zero date.
func ParseKey(key string) (string, time.Time) {
	m := subscriptionKey.FindStringSubmatch(key)
	if m == nil {
		return key, time.Time{}
	}
	expire, err := time.Parse("2006-01-02", m[2]+"-"+m[3]+"-"+m[4])
	if err != nil {
		return key, time.Time{}
	}
	return m[1], expire
}

// Classify returns the days remaining and status for an expiry date.
// today is truncated to a date before comparing.
func Classify(expire time.Time, today time.Time) (*int, string) {
	if expire.IsZero() {
		return nil, StatusUnknown
	}
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	days := int(expire.Sub(today).Hours() / 24)
	switch {
	case days < 0:
		return &days, StatusExpired
	case days <= expiringDays:
		return &days, StatusExpiring
	default:
		return &days, StatusActive
	}
}

// Subscriptions parses the stored document and classifies every
// proxy-provider entry, most urgent first.
func (p *Parser) Subscriptions(today time.Time) ([]Subscription, error) {
	content, err := p.ReadConfig()
	if err != nil {
		return nil, err
	}

	var doc struct {
		Providers map[string]struct {
			URL string `yaml:"url"`
		} `yaml:"proxy-providers"`
	}
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, err
	}

	subs := make([]Subscription, 0, len(doc.Providers))
	for key, value := range doc.Providers {
		name, expire := ParseKey(key)
		days, status := Classify(expire, today)

		sub := Subscription{Key: key, Name: name, DaysRemaining: days, Status: status, URL: value.URL}
		if !expire.IsZero() {
			sub.ExpireDate = expire.Format("2006-01-02")
		}
		subs = append(subs, sub)
	}

	statusOrder := map[string]int{StatusExpired: 0, StatusExpiring: 1, StatusActive: 2, StatusUnknown: 3}
	sort.SliceStable(subs, func(i, j int) bool {
		if statusOrder[subs[i].Status] != statusOrder[subs[j].Status] {
			return statusOrder[subs[i].Status] < statusOrder[subs[j].Status]
		}
		return daysOrHigh(subs[i].DaysRemaining) < daysOrHigh(subs[j].DaysRemaining)
	})
	return subs, nil
}

// StatusSummary aggregates subscription counts by status. A missing
// config yields an empty summary, not an error.
func (p *Parser) StatusSummary(today time.Time) (Summary, error) {
	if !p.Exists() {
		return Summary{Subscriptions: []Subscription{}}, nil
	}

	subs, err := p.Subscriptions(today)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Total: len(subs), Subscriptions: subs}
	for _, s := range subs {
		switch s.Status {
		case StatusExpired:
			summary.Expired++
		case StatusExpiring:
			summary.Expiring++
		case StatusActive:
			summary.Active++
		default:
			summary.Unknown++
		}
	}
	return summary, nil
}

func daysOrHigh(days *int) int {
	if days == nil {
		return 999
	}
	return *days
}
