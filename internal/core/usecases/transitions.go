package usecases

import (
	"github.com/samirrijal/seascope/internal/core/domain"
)

// The functions below are the query lifecycle transitions. Each takes the
// current state and returns the next one without mutating its input.

func beginSubmit(s domain.State, prompt string, region *domain.QueryRegion, status domain.StatusMessage) domain.State {
	next := s
	next.Phase = domain.PhaseSubmitting
	next.Outcome = ""
	next.Token = s.Token + 1
	next.Prompt = prompt
	next.Region = region
	next.Transient = domain.ResultSet{}
	next.TransientNames = []string{}
	next.TotalFeatures = 0
	next.FitPending = false
	next.Status = status
	return next
}

func applySuccess(s domain.State, transient domain.ResultSet, names []string, total int, status domain.StatusMessage) domain.State {
	next := s
	next.Phase = domain.PhaseIdle
	next.Outcome = domain.OutcomeSuccess
	next.Transient = transient
	next.TransientNames = names
	next.TotalFeatures = total
	next.FitPending = true
	next.Status = status
	return next
}

// applyFailure leaves the transient state cleared; it never reverts to the
// previous query's results.
func applyFailure(s domain.State, outcome domain.QueryOutcome, status domain.StatusMessage) domain.State {
	next := s
	next.Phase = domain.PhaseIdle
	next.Outcome = outcome
	next.Status = status
	return next
}

func withStatus(s domain.State, status domain.StatusMessage) domain.State {
	next := s
	next.Status = status
	return next
}

func withViewport(s domain.State, v domain.Viewport) domain.State {
	next := s
	next.Viewport = &v
	return next
}

func withFit(s domain.State, fit domain.Bounds) domain.State {
	next := s
	next.Fit = fit
	next.FitPending = false
	return next
}

func clearTransient(s domain.State, status domain.StatusMessage) domain.State {
	next := s
	next.Transient = domain.ResultSet{}
	next.TransientNames = []string{}
	next.TotalFeatures = 0
	next.Status = status
	return next
}
