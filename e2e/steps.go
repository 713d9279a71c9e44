package e2e

import (
	"github.com/cucumber/godog"

	"checkout/e2e/steps/checkout"
	"checkout/e2e/steps/common"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (generic assertions on the last response)
	common.RegisterSteps(ctx, tc)

	// Register checkout wizard steps
	checkout.RegisterSteps(ctx, tc)
}
