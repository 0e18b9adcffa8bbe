// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package hub

import (
	"context"
	"fmt"
	"time"

	"github.com/AleutianAI/hubfetch/pkg/logging"
)

// =============================================================================
// Retry Policy
// =============================================================================

// Policy bounds the retry loop around one task.
//
// Network hiccups and transient hub errors dominate download failures,
// so attempts are separated by a short fixed delay rather than full
// exponential backoff; the downloader resumes partial files itself.
type Policy struct {
	// MaxAttempts is the total invocation budget per task (not
	// "retries after the first attempt"). Values below 1 are treated
	// as 1.
	MaxAttempts int

	// Delay is the pause between attempts. Zero means immediate retry.
	Delay time.Duration
}

// DefaultPolicy returns the standard budget: 3 attempts, 2s apart.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Delay: 2 * time.Second}
}

// normalized clamps the policy to sane values.
func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	return p
}

// =============================================================================
// Orchestrator
// =============================================================================

// Orchestrator wraps an Invoker with the bounded retry loop.
//
// # State Machine
//
// Each task moves StatePending -> StateAttempting -> (StateSucceeded |
// StateAttempting | StateExhausted). The loop stops at the first
// success; a task never consumes more than Policy.MaxAttempts
// invocations.
//
// # Thread Safety
//
// Orchestrator is stateless between Run calls and safe for concurrent
// use, though the CLI drives tasks strictly one at a time.
type Orchestrator struct {
	invoker Invoker
	policy  Policy
	log     *logging.Logger
}

// NewOrchestrator creates an Orchestrator with the given retry policy.
func NewOrchestrator(invoker Invoker, policy Policy, log *logging.Logger) *Orchestrator {
	if log == nil {
		log = logging.Default()
	}
	return &Orchestrator{invoker: invoker, policy: policy.normalized(), log: log}
}

// Run drives one task to a terminal state.
//
// On exhaustion the result error wraps ErrExhausted and names the
// model's hub page so the operator can check for gated access or a
// renamed repository. Context cancellation ends the loop early with the
// context error recorded on the final attempt.
func (o *Orchestrator) Run(ctx context.Context, task Task, opts InvokeOptions) TaskResult {
	result := TaskResult{Task: task, State: StatePending}

	for attempt := 1; attempt <= o.policy.MaxAttempts; attempt++ {
		result.State = StateAttempting
		err := o.invoker.Invoke(ctx, task, opts)
		result.Attempts = append(result.Attempts, Attempt{Number: attempt, Err: err})

		if err == nil {
			result.State = StateSucceeded
			o.log.Info("download succeeded", "model", task.Model, "attempt", attempt)
			return result
		}

		o.log.Warn("download attempt failed",
			"model", task.Model,
			"attempt", attempt,
			"max_attempts", o.policy.MaxAttempts,
			"error", err.Error(),
		)

		if ctx.Err() != nil {
			break
		}
		if attempt < o.policy.MaxAttempts && o.policy.Delay > 0 {
			select {
			case <-time.After(o.policy.Delay):
			case <-ctx.Done():
			}
		}
	}

	result.State = StateExhausted
	last := result.Attempts[len(result.Attempts)-1].Err
	result.Err = fmt.Errorf("%w after %d attempt(s) for %s (see %s): %v",
		ErrExhausted, len(result.Attempts), task.Model, task.HubURL(), last)
	o.log.Error("download exhausted retries",
		"model", task.Model,
		"attempts", len(result.Attempts),
		"hub_url", task.HubURL(),
	)
	return result
}
