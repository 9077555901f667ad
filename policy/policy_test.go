package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_NormalFirst(t *testing.T) {
	testCases := []struct {
		description string
		policy      *Policy
		streak      int
		expected    bool
	}{
		{description: "nil is strict", policy: nil, streak: 100},
		{description: "strict", policy: &Policy{Priority: PriorityStrict}, streak: 100},
		{description: "alternate below burst", policy: &Policy{Priority: PriorityAlternate, VIPBurst: 2}, streak: 1},
		{description: "alternate at burst", policy: &Policy{Priority: PriorityAlternate, VIPBurst: 2}, streak: 2, expected: true},
		{description: "alternate default burst", policy: &Policy{Priority: PriorityAlternate}, streak: DefaultVIPBurst, expected: true},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.policy.NormalFirst(tc.streak))
		})
	}
}

func TestConfig(t *testing.T) {
	assert.NoError(t, (*Config)(nil).Validate())
	assert.Error(t, (&Config{Priority: "random"}).Validate())
	assert.Error(t, (&Config{VIPBurst: -1}).Validate())

	p := FromConfig(&Config{Priority: "ALTERNATE", VIPBurst: 4, HeadOfLine: true})
	assert.True(t, p.Alternate())
	assert.False(t, p.FirstFit())
	assert.Equal(t, &Config{Priority: PriorityAlternate, VIPBurst: 4, HeadOfLine: true}, ToConfig(p))
	assert.Nil(t, FromConfig(nil))
	assert.True(t, (*Policy)(nil).FirstFit())
}

func TestContext(t *testing.T) {
	p := &Policy{Priority: PriorityAlternate}
	ctx := WithPolicy(context.Background(), p)
	assert.Equal(t, p, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}
