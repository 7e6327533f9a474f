package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentStatusCanTransition(t *testing.T) {
	allowed := map[DocumentStatus][]DocumentStatus{
		StatusUploaded:     {StatusProcessing},
		StatusProcessing:   {StatusProcessingAI, StatusCompleted, StatusFailed},
		StatusProcessingAI: {StatusCompleted, StatusValidationFailed, StatusFailed},
	}
	all := []DocumentStatus{
		StatusUploaded, StatusProcessing, StatusProcessingAI,
		StatusCompleted, StatusValidationFailed, StatusFailed,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestDocumentStatusTerminal(t *testing.T) {
	assert.False(t, StatusUploaded.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.False(t, StatusProcessingAI.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusValidationFailed.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestCanTransitionRejectsSkippingStages(t *testing.T) {
	assert.False(t, StatusUploaded.CanTransition(StatusCompleted))
	assert.False(t, StatusUploaded.CanTransition(StatusFailed))
	assert.False(t, StatusProcessing.CanTransition(StatusValidationFailed))
	assert.False(t, StatusCompleted.CanTransition(StatusProcessing))
}
