package e2e

import (
	"context"
	"fmt"
	"os"

	"github.com/cucumber/godog"

	"coopreg/e2e/steps/common"
	"coopreg/e2e/steps/workflow"
)

// RegisterSteps wires the shared HTTP steps and the workflow steps into one
// scenario. A failing scenario dumps the last response so the cause is visible
// without rerunning against the server.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	workflow.RegisterSteps(ctx, tc)

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if err != nil && tc.GetLastResponseStatus() != 0 {
			fmt.Fprintf(os.Stderr, "scenario %q: last response %d %s\n",
				sc.Name, tc.GetLastResponseStatus(), tc.GetLastResponseBody())
		}
		return ctx, nil
	})
}
