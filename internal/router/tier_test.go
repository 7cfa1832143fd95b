package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"curebird/internal/providers"
)

func TestSelectTier(t *testing.T) {
	cases := []struct {
		msg  string
		want providers.Tier
	}{
		{"hi there", providers.TierSmall},
		{"Good morning!", providers.TierSmall},
		{"I have had a fever since yesterday", providers.TierLarge},
		{"fever", providers.TierLarge},
		{"what about tomorrow?", providers.TierSmall},
		{"can you explain what the results on my latest lab panel mean", providers.TierLarge},
		{"   ", providers.TierSmall},
		{"my rashes itch", providers.TierLarge},
		{"diagnosed last week", providers.TierLarge},
		{"allergic?", providers.TierLarge},
		{"back from Spain", providers.TierSmall},
		{"car crash ok", providers.TierSmall},
		{"wet paint now", providers.TierSmall},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SelectTier(tc.msg), tc.msg)
	}
}
