package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
	"github.com/r4nb1r/ProfilePulse/pkg/httpclient"
)

const upstreamName = "business-profile"

// Default listing API base URLs.
const (
	DefaultAccountsURL = "https://mybusinessaccountmanagement.googleapis.com/v1"
	DefaultInfoURL     = "https://mybusinessbusinessinformation.googleapis.com/v1"
)

// updateMask lists the location fields written by Optimize.
const updateMask = "phoneNumbers,websiteUri,regularHours,categories"

// TokenSourcer yields refreshing token sources for stored credentials.
type TokenSourcer interface {
	TokenSource(ctx context.Context, cred *domain.Credential) oauth2.TokenSource
}

// ClientConfig holds the listing API base URLs.
type ClientConfig struct {
	AccountsURL string
	InfoURL     string
}

// Client calls the business listing REST API.
type Client struct {
	cfg    ClientConfig
	http   *httpclient.CircuitBreakerClient
	tokens TokenSourcer
	logger *slog.Logger
}

// NewClient creates a listing API client. Empty URLs use the public defaults.
func NewClient(cfg ClientConfig, hc *httpclient.CircuitBreakerClient, tokens TokenSourcer, logger *slog.Logger) *Client {
	if cfg.AccountsURL == "" {
		cfg.AccountsURL = DefaultAccountsURL
	}
	if cfg.InfoURL == "" {
		cfg.InfoURL = DefaultInfoURL
	}
	cfg.AccountsURL = strings.TrimRight(cfg.AccountsURL, "/")
	cfg.InfoURL = strings.TrimRight(cfg.InfoURL, "/")

	return &Client{cfg: cfg, http: hc, tokens: tokens, logger: logger}
}

type account struct {
	Name string `json:"name"`
}

type listAccountsResponse struct {
	Accounts []account `json:"accounts"`
}

type category struct {
	Name string `json:"name"`
}

type categories struct {
	PrimaryCategory category `json:"primaryCategory"`
}

type postalAddress struct {
	AddressLines []string `json:"addressLines"`
}

type createLocationRequest struct {
	Title             string        `json:"title"`
	StorefrontAddress postalAddress `json:"storefrontAddress"`
	Categories        categories    `json:"categories"`
}

type location struct {
	Name string `json:"name"`
}

type timeOfDay struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

type timePeriod struct {
	OpenDay   string    `json:"openDay"`
	OpenTime  timeOfDay `json:"openTime"`
	CloseDay  string    `json:"closeDay"`
	CloseTime timeOfDay `json:"closeTime"`
}

type businessHours struct {
	Periods []timePeriod `json:"periods"`
}

type phoneNumbers struct {
	PrimaryPhone string `json:"primaryPhone,omitempty"`
}

type updateLocationRequest struct {
	PhoneNumbers phoneNumbers  `json:"phoneNumbers"`
	WebsiteURI   string        `json:"websiteUri,omitempty"`
	RegularHours businessHours `json:"regularHours"`
	Categories   categories    `json:"categories"`
}

// Claim creates a location under the first account the credential can manage.
func (c *Client) Claim(ctx context.Context, cred *domain.Credential, businessName, address string) (*ClaimResult, error) {
	header, err := c.authHeader(ctx, cred)
	if err != nil {
		return nil, err
	}

	var accounts listAccountsResponse
	if err := c.do(ctx, http.MethodGet, c.cfg.AccountsURL+"/accounts", nil, header, &accounts); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts.Accounts) == 0 || accounts.Accounts[0].Name == "" {
		return nil, fmt.Errorf("list accounts: no manageable accounts")
	}

	body := createLocationRequest{
		Title:             businessName,
		StorefrontAddress: postalAddress{AddressLines: []string{address}},
		Categories:        categories{PrimaryCategory: category{Name: CategoryName("")}},
	}

	var loc location
	target := c.cfg.InfoURL + "/" + accounts.Accounts[0].Name + "/locations"
	if err := c.do(ctx, http.MethodPost, target, body, header, &loc); err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	if loc.Name == "" {
		return nil, fmt.Errorf("create location: response has no location name")
	}

	return &ClaimResult{LocationID: loc.Name}, nil
}

// Optimize pushes phone, website, Monday/Tuesday hours and category onto the location.
func (c *Client) Optimize(ctx context.Context, cred *domain.Credential, locationID string, profile *domain.BusinessProfile) (*OptimizeResult, error) {
	header, err := c.authHeader(ctx, cred)
	if err != nil {
		return nil, err
	}

	body, err := buildUpdate(profile)
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "optimizing listing",
		slog.String("location_id", locationID),
		slog.String("monday", profile.MondayOpen+" - "+profile.MondayClose),
		slog.String("tuesday", profile.TuesdayOpen+" - "+profile.TuesdayClose),
		slog.String("category", body.Categories.PrimaryCategory.Name),
	)

	target := c.cfg.InfoURL + "/" + strings.TrimLeft(locationID, "/") + "?updateMask=" + url.QueryEscape(updateMask)
	if err := c.do(ctx, http.MethodPatch, target, body, header, nil); err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	return &OptimizeResult{Success: true}, nil
}

func (c *Client) authHeader(ctx context.Context, cred *domain.Credential) (http.Header, error) {
	if !cred.Usable() {
		return nil, ErrNoCredential
	}
	tok, err := c.tokens.TokenSource(ctx, cred).Token()
	if err != nil {
		return nil, fmt.Errorf("obtain access token: %w", err)
	}
	header := http.Header{}
	header.Set("Authorization", tok.Type()+" "+tok.AccessToken)
	header.Set("Accept", "application/json")
	return header, nil
}

func (c *Client) do(ctx context.Context, method, target string, in any, header http.Header, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := c.http.Send(ctx, method, target, payload, header)
	if err != nil {
		return err
	}
	if !httpclient.IsSuccess(resp.StatusCode) {
		return httpclient.ParseResponseError(resp, upstreamName)
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func buildUpdate(p *domain.BusinessProfile) (*updateLocationRequest, error) {
	var periods []timePeriod
	for _, d := range []struct {
		day   string
		hours domain.Hours
	}{
		{"MONDAY", p.Monday()},
		{"TUESDAY", p.Tuesday()},
	} {
		if d.hours.Open == "" || d.hours.Close == "" {
			continue
		}
		open, err := parseTimeOfDay(d.hours.Open)
		if err != nil {
			return nil, err
		}
		closing, err := parseTimeOfDay(d.hours.Close)
		if err != nil {
			return nil, err
		}
		periods = append(periods, timePeriod{OpenDay: d.day, OpenTime: open, CloseDay: d.day, CloseTime: closing})
	}

	return &updateLocationRequest{
		PhoneNumbers: phoneNumbers{PrimaryPhone: p.Phone},
		WebsiteURI:   p.Website,
		RegularHours: businessHours{Periods: periods},
		Categories:   categories{PrimaryCategory: category{Name: CategoryName(p.Category)}},
	}, nil
}

// CategoryName returns the listing category id for a profile category,
// adding the gcid: prefix when missing. Empty maps to the default category.
func CategoryName(c string) string {
	if c == "" {
		c = domain.DefaultCategory
	}
	if strings.HasPrefix(c, "gcid:") {
		return c
	}
	return "gcid:" + c
}

func parseTimeOfDay(s string) (timeOfDay, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return timeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 24 {
		return timeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 {
		return timeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	return timeOfDay{Hours: hours, Minutes: minutes}, nil
}
