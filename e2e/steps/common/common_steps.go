package common

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	StatusCode() int
	ResponseField(path string) (any, error)
}

// RegisterSteps registers generic response assertions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.responseFieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should be (\d+)$`, steps.responseFieldShouldBeNumber)
	ctx.Step(`^the response field "([^"]*)" should be (true|false)$`, steps.responseFieldShouldBeBool)
	ctx.Step(`^the response should have field "([^"]*)"$`, steps.responseShouldHaveField)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, status int) error {
	if got := s.tc.StatusCode(); got != status {
		return fmt.Errorf("expected status %d, got %d", status, got)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldEqual(ctx context.Context, path, want string) error {
	got, err := s.tc.ResponseField(path)
	if err != nil {
		return err
	}
	if fmt.Sprint(got) != want {
		return fmt.Errorf("%s: expected %q, got %v", path, want, got)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldBeNumber(ctx context.Context, path string, want int) error {
	got, err := s.tc.ResponseField(path)
	if err != nil {
		return err
	}
	n, ok := got.(float64)
	if !ok || int(n) != want {
		return fmt.Errorf("%s: expected %d, got %v", path, want, got)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldBeBool(ctx context.Context, path, want string) error {
	got, err := s.tc.ResponseField(path)
	if err != nil {
		return err
	}
	wantBool, _ := strconv.ParseBool(want)
	if b, ok := got.(bool); !ok || b != wantBool {
		return fmt.Errorf("%s: expected %s, got %v", path, want, got)
	}
	return nil
}

func (s *commonSteps) responseShouldHaveField(ctx context.Context, path string) error {
	_, err := s.tc.ResponseField(path)
	return err
}
