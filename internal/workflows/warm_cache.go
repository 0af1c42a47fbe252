package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/seascope/internal/core/domain"
)

// WarmInput selects what to warm. With no prompts the catalog presets are used.
type WarmInput struct {
	Prompts []string
	Region  *domain.QueryRegion
}

// WarmResult summarizes a warm run.
type WarmResult struct {
	Warmed   int
	Features int
	Failed   []string
}

// WarmCacheWorkflow runs each prompt through the classifier so that the
// response cache is populated before users ask. Prompts are warmed in
// parallel; a failed prompt is recorded and does not fail the run.
func WarmCacheWorkflow(ctx workflow.Context, input WarmInput) (WarmResult, error) {
	logger := workflow.GetLogger(ctx)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 60 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	prompts := input.Prompts
	if len(prompts) == 0 {
		if err := workflow.ExecuteActivity(ctx, "ListPresets").Get(ctx, &prompts); err != nil {
			return WarmResult{}, err
		}
	}
	logger.Info("Starting cache warm", "prompts", len(prompts))

	futures := make([]workflow.Future, len(prompts))
	for i, p := range prompts {
		futures[i] = workflow.ExecuteActivity(ctx, "WarmPrompt", p, input.Region)
	}

	var res WarmResult
	for i, f := range futures {
		var features int
		if err := f.Get(ctx, &features); err != nil {
			logger.Warn("prompt warm failed", "prompt", prompts[i], "error", err)
			res.Failed = append(res.Failed, prompts[i])
			continue
		}
		res.Warmed++
		res.Features += features
	}

	logger.Info("Cache warm finished", "warmed", res.Warmed, "failed", len(res.Failed))
	return res, nil
}
