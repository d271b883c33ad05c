package assessment

import (
	"fmt"
	"math/rand"
	"time"
)

const (
	idSuffixLength = 9
	base36         = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// IDGenerator issues question ids of the form
// {category}_{difficulty}_{unixMillis}_{suffix}, unique within one generator.
type IDGenerator struct {
	rng    *rand.Rand
	now    func() time.Time
	issued map[string]struct{}
}

func NewIDGenerator(rng *rand.Rand, now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{rng: rng, now: now, issued: make(map[string]struct{})}
}

func (g *IDGenerator) Next(category CategoryID, d Difficulty) string {
	for {
		id := fmt.Sprintf("%s_%s_%d_%s", category, d, g.now().UnixMilli(), g.suffix())
		if _, dup := g.issued[id]; !dup {
			g.issued[id] = struct{}{}
			return id
		}
	}
}

// Variant issues an id for a fallback repeat, folding the variation seed in.
func (g *IDGenerator) Variant(category CategoryID, d Difficulty, seed int) string {
	for {
		id := fmt.Sprintf("%s_%s_%d_%s_v%d", category, d, g.now().UnixMilli(), g.suffix(), seed)
		if _, dup := g.issued[id]; !dup {
			g.issued[id] = struct{}{}
			return id
		}
	}
}

func (g *IDGenerator) suffix() string {
	b := make([]byte, idSuffixLength)
	for i := range b {
		b[i] = base36[g.rng.Intn(len(base36))]
	}
	return string(b)
}

// Selection is the result of drawing questions from one pool.
type Selection struct {
	Questions []GeneratedQuestion
	// Exhausted counts questions produced by the repeat fallback.
	Exhausted int
}

// RenderFunc renders a pool template; Select assigns the id afterwards.
type RenderFunc func(Template) GeneratedQuestion

// Select draws count questions from pool. Templates are visited in a random
// order, preferred tier first, skipping any whose rendered content is already
// in tracker. When the pool runs out, remaining slots repeat templates in the
// same order with a variation seed in the id, so exactly count questions are
// returned for any non-empty pool.
func Select(pool Pool, count int, tracker *Tracker, rng *rand.Rand, ids *IDGenerator, render RenderFunc) Selection {
	var sel Selection
	if count <= 0 || pool.Len() == 0 {
		return sel
	}

	perm := permutation(pool, rng)
	used := make(map[int]struct{}, len(perm))

	for _, idx := range perm {
		if len(sel.Questions) == count {
			break
		}
		if _, ok := used[idx]; ok {
			continue
		}
		q := render(pool.Templates[idx])
		if !tracker.Add(ContentKey(q.Question, pool.Category)) {
			continue
		}
		used[idx] = struct{}{}
		q.ID = ids.Next(pool.Category, pool.Difficulty)
		sel.Questions = append(sel.Questions, q)
	}

	for i := len(sel.Questions); i < count; i++ {
		idx := perm[i%len(perm)]
		q := render(pool.Templates[idx])
		q.ID = ids.Variant(pool.Category, pool.Difficulty, i+1)
		sel.Questions = append(sel.Questions, q)
		sel.Exhausted++
	}

	return sel
}

// permutation shuffles the preferred tier and the remainder separately and
// concatenates them.
func permutation(pool Pool, rng *rand.Rand) []int {
	perm := make([]int, 0, pool.Len())
	perm = append(perm, rng.Perm(pool.Preferred)...)
	for _, i := range rng.Perm(pool.Len() - pool.Preferred) {
		perm = append(perm, pool.Preferred+i)
	}
	return perm
}
