package mixer

import (
	"math"

	"github.com/dtnitsch/localfeed/models"
)

// AllocateQuotas turns percentage weights into item counts for a target size n.
//
// Each tier gets round(n*weight/total). Rounding drift is settled on the
// coarsest tier so the quotas sum to n. A tier with fewer available items than
// its quota passes the deficit on to the next coarser tier. Any deficit left
// after the coarsest tier is dropped; callers top up from leftover items.
func AllocateQuotas(n int, tiers []models.Tier, weights models.MixConfig, available map[models.Tier]int) map[models.Tier]int {
	quotas := make(map[models.Tier]int, len(tiers))
	if n <= 0 || len(tiers) == 0 {
		return quotas
	}

	total := 0
	for _, t := range tiers {
		if w := weights[t]; w > 0 {
			total += w
		}
	}

	last := tiers[len(tiers)-1]
	if total == 0 {
		quotas[last] = n
	} else {
		assigned := 0
		for _, t := range tiers {
			w := weights[t]
			if w <= 0 {
				continue
			}
			q := int(math.Round(float64(n) * float64(w) / float64(total)))
			quotas[t] = q
			assigned += q
		}
		settleDrift(quotas, tiers, n-assigned)
	}

	carry := 0
	for _, t := range tiers {
		q := quotas[t] + carry
		if avail := available[t]; q > avail {
			carry = q - avail
			q = avail
		} else {
			carry = 0
		}
		quotas[t] = q
	}

	return quotas
}

// settleDrift adds diff to the coarsest tiers, never taking a quota below zero.
func settleDrift(quotas map[models.Tier]int, tiers []models.Tier, diff int) {
	for i := len(tiers) - 1; i >= 0 && diff != 0; i-- {
		t := tiers[i]
		if diff > 0 {
			quotas[t] += diff
			return
		}
		take := min(quotas[t], -diff)
		quotas[t] -= take
		diff += take
	}
}
