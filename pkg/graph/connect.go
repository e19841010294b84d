package graph

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/atlas/pkg/common"
	"github.com/OFFIS-RIT/atlas/pkg/logger"
)

// Connect records that two entities were observed together.
//
// Non-person pairs get a direct edge. As soon as a person is involved the
// link goes through that person's root: research outputs, organizations and
// other identifiers of the same person all meet at the root, never at a
// personal-identifier node. Two persons claimed identical are unified by
// sharing a root; conflicting root claims are resolved per identity mode.
func (c *Client) Connect(ctx context.Context, a, b common.Node) error {
	if a.IsZero() || b.IsZero() {
		return fmt.Errorf("both nodes are required: %w", common.ErrInvalidInput)
	}
	if a.Same(b) {
		return nil
	}

	switch {
	case a.IsPerson() && b.IsPerson():
		return c.connectPersons(ctx, a, b)
	case a.IsPerson():
		return c.connectPersonTo(ctx, a, b)
	case b.IsPerson():
		return c.connectPersonTo(ctx, b, a)
	default:
		return c.store.CreateEdgeIfAbsent(ctx, a.ID, b.ID)
	}
}

// connectPersonTo links a person to a non-person node (or directly to a
// person root) via the person's root.
func (c *Client) connectPersonTo(ctx context.Context, person, other common.Node) error {
	if other.IsPersonRoot() {
		return c.attachToRoot(ctx, person, other)
	}

	root, err := c.ensureRoot(ctx, person)
	if err != nil {
		return err
	}
	return c.store.CreateEdgeIfAbsent(ctx, other.ID, root.ID)
}

// connectPersons runs the root-consolidation state machine for a
// person-to-person identity claim.
func (c *Client) connectPersons(ctx context.Context, a, b common.Node) error {
	rootsA, err := c.rootsOf(ctx, a)
	if err != nil {
		return err
	}
	rootsB, err := c.rootsOf(ctx, b)
	if err != nil {
		return err
	}

	switch {
	case len(rootsA) == 0 && len(rootsB) == 0:
		root, err := c.createRoot(ctx)
		if err != nil {
			return err
		}
		if err := c.attachToRoot(ctx, a, root); err != nil {
			return err
		}
		return c.attachToRoot(ctx, b, root)

	case len(rootsA) == 0:
		return c.attachToRoot(ctx, a, rootsB[0])

	case len(rootsB) == 0:
		return c.attachToRoot(ctx, b, rootsA[0])

	case shareRoot(rootsA, rootsB):
		// Already unified.
		return nil

	default:
		return c.resolveDoubleRoot(ctx, a, b, rootsA, rootsB)
	}
}

func shareRoot(rootsA, rootsB []common.Node) bool {
	for _, ra := range rootsA {
		for _, rb := range rootsB {
			if ra.Same(rb) {
				return true
			}
		}
	}
	return false
}

// resolveDoubleRoot handles two persons claimed identical that already hang
// under different roots. Lenient mode cross-links both nodes to both roots
// so either root reaches the full identifier set; strict mode records the
// conflict and leaves resolution to an operator. Both modes write the audit
// line to both nodes — the ambiguity is never silently dropped.
func (c *Client) resolveDoubleRoot(ctx context.Context, a, b common.Node, rootsA, rootsB []common.Node) error {
	logger.Warn("[Roots] Ambiguous identity",
		"a", a.Key, "b", b.Key, "mode", c.mode)

	if c.mode == ModeLenient {
		for _, rb := range rootsB {
			if err := c.attachToRoot(ctx, a, rb); err != nil {
				return err
			}
		}
		for _, ra := range rootsA {
			if err := c.attachToRoot(ctx, b, ra); err != nil {
				return err
			}
		}
	}

	var line string
	if c.mode == ModeLenient {
		line = fmt.Sprintf(
			"Ambiguous identity: node %s already belongs to a different person root; cross-linked both roots. Possibly mislabeled in a source system.",
			b.Key)
	} else {
		line = fmt.Sprintf(
			"Ambiguous identity: node %s belongs to a different person root; not linked. Possibly mislabeled in a source system, resolve manually.",
			b.Key)
	}
	if err := c.appendHistory(ctx, a.ID, line); err != nil {
		return err
	}

	if c.mode == ModeLenient {
		line = fmt.Sprintf(
			"Ambiguous identity: node %s already belongs to a different person root; cross-linked both roots. Possibly mislabeled in a source system.",
			a.Key)
	} else {
		line = fmt.Sprintf(
			"Ambiguous identity: node %s belongs to a different person root; not linked. Possibly mislabeled in a source system, resolve manually.",
			a.Key)
	}
	return c.appendHistory(ctx, b.ID, line)
}
