package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	client       *http.Client
	response     *http.Response
	responseBody []byte
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.reset()
	})

	// Background steps
	sc.Step(`^the inscricao server is running$`, s.theServerIsRunning)

	// Login steps
	sc.Step(`^I am not logged in$`, s.iAmNotLoggedIn)
	sc.Step(`^I log in as wiki user "([^"]*)"$`, s.iLogInAsWikiUser)
	sc.Step(`^I log in anonymously$`, s.iLogInAnonymously)
	sc.Step(`^I log out$`, s.iLogOut)

	// Request steps
	sc.Step(`^I visit "([^"]*)"$`, s.iVisit)
	sc.Step(`^I submit "([^"]*)" with school (\d+)$`, s.iSubmitWithSchool)
	sc.Step(`^I submit "([^"]*)" with:$`, s.iSubmitWith)
	sc.Step(`^I look up the schools of city "([^"]*)"$`, s.iLookUpSchoolsOfCity)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^I should be redirected to "([^"]*)"$`, s.iShouldBeRedirectedTo)
	sc.Step(`^the page should contain "([^"]*)"$`, s.thePageShouldContain)
	sc.Step(`^the page should not contain "([^"]*)"$`, s.thePageShouldNotContain)
	sc.Step(`^the schools should be "([^"]*)"$`, s.theSchoolsShouldBe)

	// Registration steps
	sc.Step(`^"([^"]*)" is registered at school (\d+)$`, s.isRegisteredAtSchool)
	sc.Step(`^"([^"]*)" should be registered at school (\d+)$`, s.shouldBeRegisteredAtSchool)
	sc.Step(`^"([^"]*)" should not be registered$`, s.shouldNotBeRegistered)
}

func (s *StepsContext) reset() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	s.client = &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
		// Redirects are asserted step by step
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	s.response = nil
	s.responseBody = nil
	s.tc.Wiki.SetUser("")
	return s.tc.ResetRegistrations()
}

// Background steps

func (s *StepsContext) theServerIsRunning() error {
	// Server is already running via TestContext
	return nil
}

// Login steps

func (s *StepsContext) iAmNotLoggedIn() error {
	return nil
}

func (s *StepsContext) iLogInAsWikiUser(username string) error {
	s.tc.Wiki.SetUser(username)
	if err := s.login(); err != nil {
		return err
	}
	return s.iShouldBeRedirectedTo("/")
}

func (s *StepsContext) iLogInAnonymously() error {
	s.tc.Wiki.SetUser("")
	return s.login()
}

// login runs the handshake: /login hands the browser to the wiki, and the
// wiki sends it back to /oauth-callback with the verifier.
func (s *StepsContext) login() error {
	if err := s.do(http.MethodGet, "/login", nil); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusFound {
		return fmt.Errorf("/login answered %d, expected 302", s.response.StatusCode)
	}
	authorize, err := url.Parse(s.response.Header.Get("Location"))
	if err != nil {
		return err
	}
	if !strings.HasPrefix(authorize.String(), s.tc.Wiki.URL) {
		return fmt.Errorf("expected a redirect to the wiki, got %s", authorize)
	}

	token := authorize.Query().Get("oauth_token")
	return s.do(http.MethodGet, "/oauth-callback?oauth_token="+url.QueryEscape(token)+"&oauth_verifier=v", nil)
}

func (s *StepsContext) iLogOut() error {
	return s.do(http.MethodGet, "/logout", nil)
}

// Request steps

func (s *StepsContext) do(method, path string, form url.Values) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequest(method, s.tc.Server.ServerURL+path, body)
	if err != nil {
		return err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	s.response = resp
	s.responseBody, err = io.ReadAll(resp.Body)
	return err
}

func (s *StepsContext) iVisit(path string) error {
	return s.do(http.MethodGet, path, nil)
}

func (s *StepsContext) iSubmitWithSchool(path string, school int) error {
	return s.do(http.MethodPost, path, url.Values{"school": {fmt.Sprintf("%d", school)}})
}

func (s *StepsContext) iSubmitWith(path string, table *godog.Table) error {
	form := url.Values{}
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("expected field/value rows")
		}
		form.Add(row.Cells[0].Value, row.Cells[1].Value)
	}
	return s.do(http.MethodPost, path, form)
}

func (s *StepsContext) iLookUpSchoolsOfCity(city string) error {
	return s.do(http.MethodPost, "/pegar-escola", url.Values{"city": {city}})
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expected int) error {
	if s.response == nil {
		return fmt.Errorf("no response received")
	}
	if s.response.StatusCode != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) iShouldBeRedirectedTo(expected string) error {
	if err := s.theResponseStatusShouldBe(http.StatusFound); err != nil {
		return err
	}
	if location := s.response.Header.Get("Location"); location != expected {
		return fmt.Errorf("expected redirect to %q, got %q", expected, location)
	}
	return nil
}

func (s *StepsContext) thePageShouldContain(text string) error {
	if !strings.Contains(string(s.responseBody), text) {
		return fmt.Errorf("expected page to contain %q, got: %s", text, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) thePageShouldNotContain(text string) error {
	if strings.Contains(string(s.responseBody), text) {
		return fmt.Errorf("expected page not to contain %q", text)
	}
	return nil
}

func (s *StepsContext) theSchoolsShouldBe(expected string) error {
	if err := s.theResponseStatusShouldBe(http.StatusOK); err != nil {
		return err
	}

	var schools []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(s.responseBody, &schools); err != nil {
		return fmt.Errorf("failed to parse schools: %w", err)
	}

	names := make([]string, 0, len(schools))
	for _, school := range schools {
		names = append(names, school.Name)
	}
	if got := strings.Join(names, ", "); got != expected {
		return fmt.Errorf("expected schools %q, got %q", expected, got)
	}
	return nil
}

// Registration steps

func (s *StepsContext) isRegisteredAtSchool(username string, school int) error {
	return s.tc.Registrations.Create(context.Background(), &store.Registration{
		Name:        username,
		SchoolID:    int64(school),
		DateConsent: time.Now(),
	})
}

func (s *StepsContext) shouldBeRegisteredAtSchool(username string, school int) error {
	reg, err := s.tc.Registrations.FindByName(context.Background(), username)
	if err != nil {
		return fmt.Errorf("registration of %s: %w", username, err)
	}
	if reg.SchoolID != int64(school) {
		return fmt.Errorf("expected %s at school %d, got %d", username, school, reg.SchoolID)
	}
	return nil
}

func (s *StepsContext) shouldNotBeRegistered(username string) error {
	_, err := s.tc.Registrations.FindByName(context.Background(), username)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("expected %s not to be registered", username)
}
