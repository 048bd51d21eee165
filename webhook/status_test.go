package webhook_test

import (
	"testing"

	"github.com/com4-wkflws/shopify/webhook"
	"github.com/stretchr/testify/assert"
)

func TestState(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		assert.Equal(t, "received", webhook.Received.String())
		assert.Equal(t, "validated", webhook.Validated.String())
		assert.Equal(t, "dispatched", webhook.Dispatched.String())
		assert.Equal(t, "rejected", webhook.Rejected.String())
		assert.Equal(t, "failed", webhook.Failed.String())
		assert.Equal(t, "unknown", webhook.State(0).String())
	})

	t.Run("final states", func(t *testing.T) {
		assert.False(t, webhook.Received.IsFinal())
		assert.False(t, webhook.Validated.IsFinal())
		assert.True(t, webhook.Dispatched.IsFinal())
		assert.True(t, webhook.Rejected.IsFinal())
		assert.True(t, webhook.Failed.IsFinal())
	})

	t.Run("transitions", func(t *testing.T) {
		assert.True(t, webhook.Received.CanTransition(webhook.Validated))
		assert.True(t, webhook.Received.CanTransition(webhook.Rejected))
		assert.True(t, webhook.Received.CanTransition(webhook.Failed))
		assert.True(t, webhook.Validated.CanTransition(webhook.Dispatched))
		assert.False(t, webhook.Validated.CanTransition(webhook.Failed))
		assert.False(t, webhook.Validated.CanTransition(webhook.Rejected))
		assert.False(t, webhook.Received.CanTransition(webhook.State(99)))
		assert.False(t, webhook.Received.CanTransition(webhook.Dispatched))
		assert.False(t, webhook.Dispatched.CanTransition(webhook.Failed))
		assert.False(t, webhook.Rejected.CanTransition(webhook.Validated))
	})

	t.Run("validate", func(t *testing.T) {
		assert.NoError(t, webhook.Failed.Validate())
		assert.Error(t, webhook.State(99).Validate())
	})
}

func TestBusKind(t *testing.T) {
	assert.Equal(t, webhook.RedisBus, webhook.NewBusKind("redis"))
	assert.Equal(t, webhook.KafkaBus, webhook.NewBusKind("kafka"))
	assert.Equal(t, webhook.RedisBus, webhook.NewBusKind(""))
	assert.Equal(t, "kafka", webhook.KafkaBus.String())
	assert.NoError(t, webhook.KafkaBus.Validate())
	assert.Error(t, webhook.BusKind(7).Validate())
}
