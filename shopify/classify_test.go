package shopify_test

import (
	"testing"

	"github.com/com4-wkflws/shopify/shopify"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		status int
		want   shopify.Outcome
	}{
		{200, shopify.Success},
		{201, shopify.Success},
		{299, shopify.Success},
		{301, shopify.Redirect},
		{302, shopify.Redirect},
		{307, shopify.Redirect},
		{400, shopify.ClientError},
		{404, shopify.ClientError},
		{422, shopify.ClientError},
		{429, shopify.ServerError},
		{500, shopify.ServerError},
		{503, shopify.ServerError},
		{0, shopify.Unknown},
		{100, shopify.Unknown},
		{600, shopify.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, shopify.Classify(tt.status), "status %d", tt.status)
		})
	}
}

func TestOutcomeRetryable(t *testing.T) {
	assert.True(t, shopify.ServerError.Retryable())
	assert.True(t, shopify.Classify(429).Retryable())
	assert.False(t, shopify.ClientError.Retryable())
	assert.False(t, shopify.Success.Retryable())
	assert.False(t, shopify.Redirect.Retryable())
	assert.False(t, shopify.Unknown.Retryable())
}

func TestClassifyProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("every status in 200-599 has a known outcome", prop.ForAll(
		func(status int) bool {
			return shopify.Classify(status) != shopify.Unknown
		},
		gen.IntRange(200, 599),
	))

	properties.Property("outcome follows the status class", prop.ForAll(
		func(status int) bool {
			got := shopify.Classify(status)
			switch {
			case status == 429:
				return got == shopify.ServerError
			case status/100 == 2:
				return got == shopify.Success
			case status/100 == 3:
				return got == shopify.Redirect
			case status/100 == 4:
				return got == shopify.ClientError
			default:
				return got == shopify.ServerError
			}
		},
		gen.IntRange(200, 599),
	))

	properties.Property("backoff doubles", prop.ForAll(
		func(attempt int) bool {
			return shopify.Backoff(attempt+1) == 2*shopify.Backoff(attempt)
		},
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
