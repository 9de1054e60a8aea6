package integration

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
	"github.com/tidwall/gjson"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte

	// objectIDs maps "kind/project/key@uid" to the row id the server returned
	objectIDs map[string]int64
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:        tc,
		objectIDs: make(map[string]int64),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.Reset()
	})

	// Background steps
	sc.Step(`^a metastore server is running$`, s.aMetastoreServerIsRunning)

	// Request steps
	sc.Step(`^I send a (GET|DELETE) request to "([^"]*)"$`, s.iSendARequestTo)
	sc.Step(`^I send a (POST|PUT|PATCH) request to "([^"]*)" with body:$`, s.iSendARequestWithBody)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response JSON "([^"]*)" should be "([^"]*)"$`, s.theResponseJSONShouldBe)
	sc.Step(`^the response JSON "([^"]*)" should have (\d+) items?$`, s.theResponseJSONShouldHaveItems)
	sc.Step(`^the response JSON "([^"]*)" should not exist$`, s.theResponseJSONShouldNotExist)

	s.registerTagSteps(sc)
}

// Background steps

func (s *StepsContext) aMetastoreServerIsRunning() error {
	// Server is already running via TestContext
	return nil
}

// Request steps

func (s *StepsContext) do(method, path string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, s.tc.ServerURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}

	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

func (s *StepsContext) iSendARequestTo(method, path string) error {
	return s.do(method, path, nil)
}

func (s *StepsContext) iSendARequestWithBody(method, path string, body *godog.DocString) error {
	return s.do(method, path, []byte(body.Content))
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

func (s *StepsContext) theResponseJSONShouldBe(path, expected string) error {
	result := gjson.GetBytes(s.responseBody, path)
	if !result.Exists() {
		return fmt.Errorf("%s not found in response: %s", path, string(s.responseBody))
	}
	if result.String() != expected {
		return fmt.Errorf("expected %s to be %q, got %q", path, expected, result.String())
	}
	return nil
}

func (s *StepsContext) theResponseJSONShouldHaveItems(path string, count int) error {
	result := gjson.GetBytes(s.responseBody, path)
	if !result.IsArray() {
		return fmt.Errorf("%s is not an array in response: %s", path, string(s.responseBody))
	}
	if n := len(result.Array()); n != count {
		return fmt.Errorf("expected %d items at %s, got %d", count, path, n)
	}
	return nil
}

func (s *StepsContext) theResponseJSONShouldNotExist(path string) error {
	if result := gjson.GetBytes(s.responseBody, path); result.Exists() {
		return fmt.Errorf("expected %s to be absent, got %s", path, result.Raw)
	}
	return nil
}

func objectKey(kind, project, key, uid string) string {
	return kind + "/" + project + "/" + key + "@" + uid
}

func splitList(list string) []string {
	var out []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
