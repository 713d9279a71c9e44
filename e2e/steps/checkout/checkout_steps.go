package checkout

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path string, body any) error
	StatusCode() int
	ResponseField(path string) (any, error)
	SessionID() string
	SetSessionID(id string)
}

// RegisterSteps registers checkout wizard step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &checkoutSteps{tc: tc}

	ctx.Step(`^I start a checkout$`, steps.startCheckout)
	ctx.Step(`^I fill in:$`, steps.fillIn)
	ctx.Step(`^I set "([^"]*)" to "([^"]*)"$`, steps.setField)
	ctx.Step(`^I fill in valid shipping details$`, steps.fillValidShipping)
	ctx.Step(`^I fill in valid payment details$`, steps.fillValidPayment)
	ctx.Step(`^I submit the step$`, steps.submit)
	ctx.Step(`^I go back$`, steps.previous)
	ctx.Step(`^I reset the checkout$`, steps.reset)
	ctx.Step(`^I abandon the checkout$`, steps.abandon)
	ctx.Step(`^I reload the checkout$`, steps.reload)
	ctx.Step(`^I am on the (shipping|payment|summary|confirmation) step$`, steps.shouldBeOnStep)
	ctx.Step(`^I should be on the (shipping|payment|summary|confirmation) step$`, steps.shouldBeOnStep)
	ctx.Step(`^the field errors should be "([^"]*)"$`, steps.fieldErrorsShouldBe)
	ctx.Step(`^the field error for "([^"]*)" should be "([^"]*)"$`, steps.fieldErrorShouldBe)
	ctx.Step(`^the order number should be between (\d+) and (\d+)$`, steps.orderNumberBetween)
}

type checkoutSteps struct {
	tc TestContext
}

var stepNumbers = map[string]int{
	"shipping":     1,
	"payment":      2,
	"summary":      3,
	"confirmation": 4,
}

func (s *checkoutSteps) sessionPath(suffix string) string {
	return "/checkout/sessions/" + s.tc.SessionID() + suffix
}

func (s *checkoutSteps) startCheckout(ctx context.Context) error {
	if err := s.tc.Do(http.MethodPost, "/checkout/sessions", nil); err != nil {
		return err
	}
	if s.tc.StatusCode() != http.StatusCreated {
		return fmt.Errorf("start checkout: status %d", s.tc.StatusCode())
	}
	id, err := s.tc.ResponseField("session_id")
	if err != nil {
		return err
	}
	s.tc.SetSessionID(fmt.Sprint(id))
	return nil
}

func (s *checkoutSteps) edit(fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	edits := make([]map[string]string, 0, len(keys))
	for _, k := range keys {
		edits = append(edits, map[string]string{"field": k, "value": fields[k]})
	}
	return s.tc.Do(http.MethodPatch, s.sessionPath("/fields"), map[string]any{"edits": edits})
}

func (s *checkoutSteps) fillIn(ctx context.Context, table *godog.Table) error {
	fields := map[string]string{}
	for i, row := range table.Rows {
		if i == 0 || len(row.Cells) < 2 {
			continue
		}
		fields[row.Cells[0].Value] = row.Cells[1].Value
	}
	return s.edit(fields)
}

func (s *checkoutSteps) setField(ctx context.Context, field, value string) error {
	return s.edit(map[string]string{field: value})
}

func (s *checkoutSteps) fillValidShipping(ctx context.Context) error {
	return s.edit(map[string]string{
		"country":           "USA",
		"category":          "Electronics",
		"price":             "100",
		"dimensions.length": "10",
		"dimensions.width":  "20",
		"dimensions.height": "30",
		"weight":            "5",
		"courier":           "fedex",
	})
}

func (s *checkoutSteps) fillValidPayment(ctx context.Context) error {
	return s.edit(map[string]string{
		"cardNumber": "4111111111111111",
		"cardName":   "Jane Doe",
		"expiry":     "1228",
		"cvv":        "123",
	})
}

func (s *checkoutSteps) submit(ctx context.Context) error {
	return s.tc.Do(http.MethodPost, s.sessionPath("/submit"), nil)
}

func (s *checkoutSteps) previous(ctx context.Context) error {
	return s.tc.Do(http.MethodPost, s.sessionPath("/previous"), nil)
}

func (s *checkoutSteps) reset(ctx context.Context) error {
	return s.tc.Do(http.MethodPost, s.sessionPath("/reset"), nil)
}

func (s *checkoutSteps) abandon(ctx context.Context) error {
	return s.tc.Do(http.MethodDelete, s.sessionPath(""), nil)
}

func (s *checkoutSteps) reload(ctx context.Context) error {
	return s.tc.Do(http.MethodGet, s.sessionPath(""), nil)
}

// shouldBeOnStep reloads the session so it holds after error responses too.
func (s *checkoutSteps) shouldBeOnStep(ctx context.Context, name string) error {
	if err := s.reload(ctx); err != nil {
		return err
	}
	got, err := s.tc.ResponseField("step")
	if err != nil {
		return err
	}
	if n, ok := got.(float64); !ok || int(n) != stepNumbers[name] {
		return fmt.Errorf("expected step %s (%d), got %v", name, stepNumbers[name], got)
	}
	return nil
}

func (s *checkoutSteps) fieldErrorsShouldBe(ctx context.Context, list string) error {
	got, err := s.tc.ResponseField("errors")
	if err != nil {
		return err
	}
	fields, ok := got.(map[string]any)
	if !ok {
		return fmt.Errorf("errors is not an object: %v", got)
	}
	have := make([]string, 0, len(fields))
	for k := range fields {
		have = append(have, k)
	}
	want := strings.Split(list, ",")
	for i := range want {
		want[i] = strings.TrimSpace(want[i])
	}
	sort.Strings(have)
	sort.Strings(want)
	if strings.Join(have, ",") != strings.Join(want, ",") {
		return fmt.Errorf("expected field errors %v, got %v", want, have)
	}
	return nil
}

func (s *checkoutSteps) fieldErrorShouldBe(ctx context.Context, field, message string) error {
	got, err := s.tc.ResponseField("errors")
	if err != nil {
		return err
	}
	fields, _ := got.(map[string]any)
	if fmt.Sprint(fields[field]) != message {
		return fmt.Errorf("%s: expected %q, got %v", field, message, fields[field])
	}
	return nil
}

func (s *checkoutSteps) orderNumberBetween(ctx context.Context, lo, hi int) error {
	got, err := s.tc.ResponseField("confirmation.order_number")
	if err != nil {
		return err
	}
	n, ok := got.(float64)
	if !ok || int(n) < lo || int(n) > hi {
		return fmt.Errorf("order number %v outside [%d, %d]", got, lo, hi)
	}
	return nil
}
