// internal/learning/catalog.go
package learning

import (
	"fmt"
	"sort"
)

// ModelSpec describes one generation backend by what it is good at.
type ModelSpec struct {
	ID           string   `json:"id"`
	Capabilities []string `json:"capabilities"`
	CostPerRun   float64  `json:"costPerRun"`
	Notes        string   `json:"notes,omitempty"`
}

// DefaultCatalog lists the generation backends the pipeline knows about.
func DefaultCatalog() []ModelSpec {
	return []ModelSpec{
		{
			ID:           "ideogram-v2",
			Capabilities: []string{"text-rendering", "typography", "marketing"},
			CostPerRun:   0.08,
			Notes:        "best in class for legible rendered text",
		},
		{
			ID:           "recraft-v3",
			Capabilities: []string{"text-rendering", "design", "vector"},
			CostPerRun:   0.06,
		},
		{
			ID:           "flux-1.1-pro",
			Capabilities: []string{"photorealistic", "faces", "marketing"},
			CostPerRun:   0.05,
			Notes:        "strongest for headshots and lifestyle photos",
		},
		{
			ID:           "sdxl",
			Capabilities: []string{"general", "design", "fast"},
			CostPerRun:   0.01,
		},
		{
			ID:           "deterministic-compositor",
			Capabilities: []string{"deterministic", "text-rendering", "fallback"},
			CostPerRun:   0.0,
			Notes:        "non-generative template compositing, exact text guaranteed",
		},
	}
}

// Recommendation is a ranked model choice for a needed capability.
type Recommendation struct {
	Primary      string   `json:"primary"`
	Alternatives []string `json:"alternatives"`
	Reason       string   `json:"reason"`
}

// Recommend ranks catalog models for a capability: domain fit first, then
// historical average quality from the performance records.
func (s *MemoryStore) Recommend(capability string) *Recommendation {
	type candidate struct {
		id      string
		quality float64
		tried   bool
	}

	var matches []candidate
	for _, spec := range s.catalog {
		if !hasCapability(spec, capability) {
			continue
		}
		c := candidate{id: spec.ID}
		if record, ok := s.ModelPerformance(spec.ID); ok {
			c.quality = record.AvgQuality
			c.tried = true
		}
		matches = append(matches, c)
	}

	if len(matches) == 0 {
		// Nothing tagged for this need: fall back to the general models.
		for _, spec := range s.catalog {
			if hasCapability(spec, "general") {
				matches = append(matches, candidate{id: spec.ID})
			}
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		// Untried models rank below anything with a track record.
		if matches[i].tried != matches[j].tried {
			return matches[i].tried
		}
		return matches[i].quality > matches[j].quality
	})

	rec := &Recommendation{Primary: matches[0].id}
	for _, m := range matches[1:] {
		rec.Alternatives = append(rec.Alternatives, m.id)
		if len(rec.Alternatives) == 2 {
			break
		}
	}

	if matches[0].tried {
		rec.Reason = fmt.Sprintf("capability %q with best historical quality %.2f", capability, matches[0].quality)
	} else {
		rec.Reason = fmt.Sprintf("capability %q by catalog fit, no history yet", capability)
	}
	return rec
}

func hasCapability(spec ModelSpec, capability string) bool {
	for _, c := range spec.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}
