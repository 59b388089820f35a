package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngineQueues_CoverAllPublishTargets(t *testing.T) {
	// Every queue a publisher writes to must be declared at connection time.
	assert.Contains(t, engineQueues, QuoteEventsQueue)
	assert.Contains(t, engineQueues, ClaimEventsQueue)
	assert.Len(t, engineQueues, 2)
}
