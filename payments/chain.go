package payments

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Govind-619/JewelSphere/models"
)

// Retry chain integrity violations reported by VerifyChain.
var (
	ErrChainNoRoot        = errors.New("retry chain has no root attempt")
	ErrChainMultipleRoots = errors.New("retry chain has more than one root attempt")
	ErrChainForeignParent = errors.New("retry references an attempt outside the order")
	ErrChainOutOfOrder    = errors.New("retry was not created after the attempt it supersedes")
	ErrChainBranched      = errors.New("attempt was retried more than once")
	ErrChainUnreachable   = errors.New("attempt is not reachable from the root attempt")
)

// Chain is an order's retry chain laid out root first.
type Chain struct {
	Attempts []models.Payment `json:"attempts"`
	// Branched is set when some attempt has more than one retry; the walk
	// then follows the most recent retry.
	Branched bool `json:"branched"`
}

// Tail returns the last attempt of the chain, or nil for an empty chain.
func (c Chain) Tail() *models.Payment {
	if len(c.Attempts) == 0 {
		return nil
	}
	tail := c.Attempts[len(c.Attempts)-1]
	return &tail
}

// BuildChain orders an order's attempts by following retry references from
// the root. Input order does not matter.
func BuildChain(attempts []models.Payment) Chain {
	var chain Chain
	root := findRoot(attempts)
	if root == nil {
		return chain
	}

	children := childrenByParent(attempts)
	visited := map[string]bool{}
	for cur := root; cur != nil && !visited[cur.ID]; {
		visited[cur.ID] = true
		chain.Attempts = append(chain.Attempts, *cur)

		next := children[cur.ID]
		if len(next) > 1 {
			chain.Branched = true
		}
		if len(next) == 0 {
			break
		}
		cur = &next[len(next)-1]
	}
	return chain
}

// LatestAttempt returns the attempt no other attempt supersedes. When the
// chain is branched several attempts qualify; the most recently created one
// is returned and ambiguous is set.
func LatestAttempt(attempts []models.Payment) (latest *models.Payment, ambiguous bool) {
	if len(attempts) == 0 {
		return nil, false
	}

	superseded := make(map[string]bool, len(attempts))
	for _, p := range attempts {
		if p.RetryOfPaymentID != nil {
			superseded[*p.RetryOfPaymentID] = true
		}
	}

	var tails []models.Payment
	for _, p := range attempts {
		if !superseded[p.ID] {
			tails = append(tails, p)
		}
	}
	if len(tails) == 0 {
		// every attempt is superseded, which only a cycle produces
		tails = append(tails, attempts...)
		ambiguous = true
	}
	sortByCreation(tails)
	tail := tails[len(tails)-1]
	return &tail, ambiguous || len(tails) > 1
}

// VerifyChain checks the retry chain invariants for one order: a single
// root, every retry pointing at an earlier attempt of the same order, no
// attempt retried twice and every attempt reachable from the root.
func VerifyChain(orderID string, attempts []models.Payment) error {
	if len(attempts) == 0 {
		return nil
	}

	byID := make(map[string]models.Payment, len(attempts))
	roots := 0
	for _, p := range attempts {
		if p.OrderID != orderID {
			return fmt.Errorf("%w: payment %s belongs to order %s", ErrChainForeignParent, p.ID, p.OrderID)
		}
		byID[p.ID] = p
		if !p.IsRetry() {
			roots++
		}
	}
	switch {
	case roots == 0:
		return ErrChainNoRoot
	case roots > 1:
		return fmt.Errorf("%w: %d roots", ErrChainMultipleRoots, roots)
	}

	retried := map[string]string{}
	for _, p := range attempts {
		if !p.IsRetry() {
			continue
		}
		parent, ok := byID[*p.RetryOfPaymentID]
		if !ok {
			return fmt.Errorf("%w: payment %s retries unknown payment %s", ErrChainForeignParent, p.ID, *p.RetryOfPaymentID)
		}
		if !parent.CreatedAt.Before(p.CreatedAt) {
			return fmt.Errorf("%w: payment %s", ErrChainOutOfOrder, p.ID)
		}
		if other, dup := retried[parent.ID]; dup {
			return fmt.Errorf("%w: payment %s retried by %s and %s", ErrChainBranched, parent.ID, other, p.ID)
		}
		retried[parent.ID] = p.ID
	}

	if chain := BuildChain(attempts); len(chain.Attempts) != len(attempts) {
		return fmt.Errorf("%w: %d of %d attempts reachable", ErrChainUnreachable, len(chain.Attempts), len(attempts))
	}
	return nil
}

func findRoot(attempts []models.Payment) *models.Payment {
	var roots []models.Payment
	for _, p := range attempts {
		if !p.IsRetry() {
			roots = append(roots, p)
		}
	}
	if len(roots) == 0 {
		return nil
	}
	sortByCreation(roots)
	return &roots[0]
}

func childrenByParent(attempts []models.Payment) map[string][]models.Payment {
	children := map[string][]models.Payment{}
	for _, p := range attempts {
		if p.IsRetry() {
			children[*p.RetryOfPaymentID] = append(children[*p.RetryOfPaymentID], p)
		}
	}
	for _, list := range children {
		sortByCreation(list)
	}
	return children
}

func sortByCreation(list []models.Payment) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}
