package scraper

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"k8s.io/klog"
	"resty.dev/v3"

	"github.com/cleared-dev/cgdscraper/internal/cgd"
	"github.com/cleared-dev/cgdscraper/internal/config"
	"github.com/cleared-dev/cgdscraper/internal/model"
)

// PortalScraperName is the registry name of the online banking scraper.
const PortalScraperName = "cgd"

const (
	loginStartPath = "/loginStart.do"
	loginPath      = "/login.do"
	statementPath  = "/statement.do"
	logoutPath     = "/logout.do"
	loginFormName  = "loginForm"
)

var saltPattern = regexp.MustCompile(`doHash\(contractNumber\.value, accessCode\.value, '(\d*?)'`)

var errLoginRejected = errors.New("login rejected: portal returned the login form again")

// PortalScraper logs into the CGD portal and downloads the latest 100
// movements of an account as CSV.
type PortalScraper struct {
	contract   string
	accessCode string
	account    string
	charset    string
	portal     config.PortalConfig
	saveRawDir string
	now        func() time.Time
}

// NewPortalScraper expects "contract_number access_code account_number".
// Leading zeros of the contract number are dropped, as the portal expects.
func NewPortalScraper(args Args, opts Options) (Scraper, error) {
	contract, accessCode, account := args.At(0), args.At(1), args.At(2)
	if contract == "" || accessCode == "" || account == "" {
		return nil, fmt.Errorf("%w: pass contract number (without leading zeros, 012345 is entered as 12345), access code and account number as \"contract_number access_code account_number\"", ErrMissingArgs)
	}

	portal := opts.Portal
	if portal.BaseURL == "" {
		portal.BaseURL = config.DefaultPortalURL
	}
	if portal.UserAgent == "" {
		portal.UserAgent = config.MacSafariUserAgent
	}

	return &PortalScraper{
		contract:   trimContract(contract),
		accessCode: accessCode,
		account:    account,
		charset:    opts.Charset,
		portal:     portal,
		saveRawDir: opts.SaveRawDir,
		now:        opts.now,
	}, nil
}

// Name returns the scraper name.
func (s *PortalScraper) Name() string { return PortalScraperName }

// Fetch runs the login, download and logout sequence and returns the lines
// of the downloaded CSV.
func (s *PortalScraper) Fetch(ctx context.Context) ([]string, error) {
	client, err := s.newClient()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	salt, sessionKey, err := s.loginStart(ctx, client)
	if err != nil {
		return nil, err
	}

	// The session exists server side as soon as the login is posted.
	defer s.logout(context.WithoutCancel(ctx), client)
	if err := s.login(ctx, client, salt, sessionKey); err != nil {
		return nil, err
	}

	if err := sleep(ctx, s.portal.LoginSettle); err != nil {
		return nil, err
	}

	now := s.now()
	body, err := s.download(ctx, client, now)
	if err != nil {
		return nil, err
	}
	klog.Infof("Downloaded %d bytes of statement for account %s", len(body), s.account)

	if s.saveRawDir != "" {
		if err := s.saveRaw(now, body); err != nil {
			return nil, err
		}
	}

	return cgd.SplitLines([]byte(body), s.charset)
}

// Parse converts the downloaded CSV lines into a statement.
func (s *PortalScraper) Parse(lines []string) (*model.Statement, error) {
	return cgd.ParseLines(cgd.FormatCSV, s.account, lines)
}

func (s *PortalScraper) newClient() (*resty.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(s.portal.BaseURL, "/")).
		SetCookieJar(jar).
		SetHeader("User-Agent", s.portal.UserAgent)
	if s.portal.Timeout > 0 {
		client.SetTimeout(s.portal.Timeout)
	}
	return client, nil
}

// loginStart loads the login page and extracts the hashing salt and the
// session key of the login form.
func (s *PortalScraper) loginStart(ctx context.Context, client *resty.Client) (int, string, error) {
	res, err := client.R().SetContext(ctx).Get(loginStartPath)
	if err != nil {
		return 0, "", fmt.Errorf("loading login page: %w", err)
	}
	if res.IsError() {
		return 0, "", fmt.Errorf("loading login page: status %d", res.StatusCode())
	}
	body := res.String()

	m := saltPattern.FindStringSubmatch(body)
	if m == nil {
		return 0, "", errors.New("login page has no hash salt")
	}
	salt := 0
	if m[1] != "" {
		salt, err = strconv.Atoi(m[1])
		if err != nil {
			return 0, "", fmt.Errorf("parsing hash salt %q: %w", m[1], err)
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("parsing login page: %w", err)
	}
	sessionKey, ok := doc.Find(fmt.Sprintf("form[name=%s] input[name=credentialsSessionKey]", loginFormName)).Attr("value")
	if !ok {
		return 0, "", errors.New("login page has no credentialsSessionKey")
	}

	klog.V(2).Infof("Login page loaded, salt %d", salt)
	return salt, sessionKey, nil
}

func (s *PortalScraper) login(ctx context.Context, client *resty.Client, salt int, sessionKey string) error {
	form := map[string]string{
		"op":                    "",
		"requestDataSessionKey": "",
		"op_param":              "",
		"unauthId":              "",
		"credentialsSessionKey": sessionKey,
		"accessCode":            LoginHash(s.contract, s.accessCode, salt),
		"contractNumber":        s.contract,
	}

	res, err := client.R().SetContext(ctx).SetFormData(form).Post(loginPath)
	if err != nil {
		return fmt.Errorf("posting login: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("posting login: status %d", res.StatusCode())
	}
	if strings.Contains(res.String(), `name="`+loginFormName+`"`) {
		return errLoginRejected
	}
	klog.V(2).Infof("Logged in with contract %s", s.contract)
	return nil
}

func (s *PortalScraper) download(ctx context.Context, client *resty.Client, now time.Time) (string, error) {
	res, err := client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"download":      "statement.csv",
			"downloadTypeP": "csv",
		}).
		SetFormData(DownloadForm(s.account, now)).
		Post(statementPath)
	if err != nil {
		return "", fmt.Errorf("downloading statement: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("downloading statement: status %d", res.StatusCode())
	}
	return res.String(), nil
}

func (s *PortalScraper) logout(ctx context.Context, client *resty.Client) {
	res, err := client.R().SetContext(ctx).Get(logoutPath)
	if err != nil {
		klog.Warningf("Logout failed: %v", err)
		return
	}
	if res.IsError() {
		klog.Warningf("Logout failed: status %d", res.StatusCode())
		return
	}
	klog.V(2).Info("Logged out")
}

func (s *PortalScraper) saveRaw(now time.Time, body string) error {
	if err := os.MkdirAll(s.saveRawDir, 0o755); err != nil {
		return fmt.Errorf("creating raw download dir: %w", err)
	}
	path := filepath.Join(s.saveRawDir, RawFileName(now))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("saving raw download: %w", err)
	}
	klog.Infof("Saved raw download to %s", path)
	return nil
}

// LoginHash computes the accessCode the login form posts:
// base64(SHA-1(contract + salt + access code)) without padding.
func LoginHash(contract, accessCode string, salt int) string {
	sum := sha1.Sum([]byte(contract + strconv.Itoa(salt) + accessCode))
	return base64.RawStdEncoding.EncodeToString(sum[:])
}

// DownloadForm returns the statement download parameters. The date fields
// select movements up to now and are sent without zero padding.
func DownloadForm(account string, now time.Time) map[string]string {
	return map[string]string{
		"cIdParam":            "TTggc",
		"changeActiveAccount": "0",
		"accountIndex":        "0",
		"filter":              "0",
		"maxResults":          "100",
		"sortOrder":           "1",
		"typeFilter":          "-1",
		"uptoDate.wasChanged": "1",
		"uptoDate.day":        strconv.Itoa(now.Day()),
		"uptoDate.month":      strconv.Itoa(int(now.Month())),
		"uptoDate.year":       strconv.Itoa(now.Year()),
		"uptoDate.hour":       strconv.Itoa(now.Hour()),
		"uptoDate.minute":     strconv.Itoa(now.Minute()),
		"accountNumber":       account + " - Conta Extracto",
		"accountLabel":        account,
	}
}

// RawFileName names a saved download, e.g. CGD_2009524930.csv.
func RawFileName(now time.Time) string {
	return fmt.Sprintf("CGD_%d%d%d%d%d.csv", now.Year(), int(now.Month()), now.Day(), now.Hour(), now.Minute())
}

func trimContract(contract string) string {
	trimmed := strings.TrimLeft(contract, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
