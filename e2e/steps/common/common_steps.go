package common

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the main test context the generic steps use.
type TestContext interface {
	Reset()
	ActAs(role string)
	GET(path string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	Save(name, value string)
}

// RegisterSteps registers background, request and assertion steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		tc.Reset()
		return ctx, nil
	})
	ctx.Step(`^I am acting as "([^"]*)"$`, steps.actingAs)
	ctx.Step(`^I am not authenticated$`, steps.notAuthenticated)
	ctx.Step(`^I GET "([^"]*)"$`, tc.GET)
	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should have (\d+) items$`, steps.fieldShouldHaveItems)
	ctx.Step(`^the error should be "([^"]*)"$`, steps.errorShouldBe)
	ctx.Step(`^I save the response field "([^"]*)" as "([^"]*)"$`, steps.saveField)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) actingAs(role string) error {
	s.tc.ActAs(role)
	return nil
}

func (s *commonSteps) notAuthenticated() error {
	s.tc.ActAs("")
	return nil
}

func (s *commonSteps) statusShouldBe(expected int) error {
	if got := s.tc.GetLastResponseStatus(); got != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, got, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *commonSteps) fieldShouldBe(field, expected string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(v) != expected {
		return fmt.Errorf("expected %s to be %q, got %v", field, expected, v)
	}
	return nil
}

func (s *commonSteps) fieldShouldHaveItems(field string, n int) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	items, ok := v.([]any)
	if !ok {
		return fmt.Errorf("%s is not a list", field)
	}
	if len(items) != n {
		return fmt.Errorf("expected %d items in %s, got %d", n, field, len(items))
	}
	return nil
}

func (s *commonSteps) errorShouldBe(code string) error {
	return s.fieldShouldBe("error", code)
}

func (s *commonSteps) saveField(field, name string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	s.tc.Save(name, fmt.Sprint(v))
	return nil
}
