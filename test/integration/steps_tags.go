package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/tidwall/gjson"

	"github.com/doodlesbykumbi/metastore/pkg/server/endpoints"
	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

func (s *StepsContext) registerTagSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I store (?:an? )?"([^"]*)" version "([^"]*)" of "([^"]*)" in project "([^"]*)" updated at "([^"]*)"$`, s.iStoreVersion)
	sc.Step(`^I store (?:an? )?"([^"]*)" version "([^"]*)" of "([^"]*)" in project "([^"]*)" updated at "([^"]*)" tagged "([^"]*)"$`, s.iStoreTaggedVersion)
	sc.Step(`^I tag "([^"]*)" versions "([^"]*)" of "([^"]*)" in project "([^"]*)" with "([^"]*)"$`, s.iTagVersions)
	sc.Step(`^I read the "([^"]*)" "([^"]*)" in project "([^"]*)"$`, s.iReadLatest)
	sc.Step(`^I read the "([^"]*)" "([^"]*)" in project "([^"]*)" by tag "([^"]*)"$`, s.iReadByTag)
	sc.Step(`^the response should be version "([^"]*)"$`, s.theResponseShouldBeVersion)
	sc.Step(`^the tagged objects should be "([^"]*)"$`, s.theTaggedObjectsShouldBe)
}

func (s *StepsContext) iStoreVersion(kind, uid, key, project, updated string) error {
	return s.iStoreTaggedVersion(kind, uid, key, project, updated, "")
}

func (s *StepsContext) iStoreTaggedVersion(kind, uid, key, project, updated, tag string) error {
	ts, err := time.Parse(time.RFC3339, updated)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", updated, err)
	}
	body, err := json.Marshal(endpoints.StoreVersionRequest{
		UID:     uid,
		Tag:     tag,
		Updated: &ts,
		Body:    map[string]any{"uid": uid},
	})
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/projects/%s/%s/%s", url.PathEscape(project), kind, url.PathEscape(key))
	if err := s.do(http.MethodPost, path, body); err != nil {
		return err
	}
	if err := s.theResponseStatusShouldBe(http.StatusCreated); err != nil {
		return err
	}

	var rec store.Record
	if err := json.Unmarshal(s.responseBody, &rec); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	s.objectIDs[objectKey(kind, project, key, uid)] = rec.ID
	return nil
}

func (s *StepsContext) iTagVersions(kind, uids, key, project, tag string) error {
	var refs []store.ObjectRef
	for _, uid := range splitList(uids) {
		id, ok := s.objectIDs[objectKey(kind, project, key, uid)]
		if !ok {
			return fmt.Errorf("version %s of %s was not stored in this scenario", uid, key)
		}
		refs = append(refs, store.ObjectRef{Kind: kind, ID: id})
	}
	body, err := json.Marshal(refs)
	if err != nil {
		return err
	}
	return s.do(http.MethodPut, fmt.Sprintf("/projects/%s/tags/%s", url.PathEscape(project), url.PathEscape(tag)), body)
}

func (s *StepsContext) iReadLatest(kind, key, project string) error {
	return s.do(http.MethodGet, fmt.Sprintf("/projects/%s/%s/%s", url.PathEscape(project), kind, url.PathEscape(key)), nil)
}

func (s *StepsContext) iReadByTag(kind, key, project, tag string) error {
	return s.do(http.MethodGet, fmt.Sprintf("/projects/%s/%s/%s?tag=%s",
		url.PathEscape(project), kind, url.PathEscape(key), url.QueryEscape(tag)), nil)
}

func (s *StepsContext) theResponseShouldBeVersion(uid string) error {
	if err := s.theResponseStatusShouldBe(http.StatusOK); err != nil {
		return err
	}
	return s.theResponseJSONShouldBe("uid", uid)
}

// theTaggedObjectsShouldBe compares the uids of a FindTagged response,
// in response order
func (s *StepsContext) theTaggedObjectsShouldBe(uids string) error {
	if err := s.theResponseStatusShouldBe(http.StatusOK); err != nil {
		return err
	}
	var got []string
	for _, obj := range gjson.GetBytes(s.responseBody, "objects").Array() {
		got = append(got, obj.Get("uid").String())
	}
	want := splitList(uids)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		return fmt.Errorf("expected tagged objects %v, got %v", want, got)
	}
	return nil
}
