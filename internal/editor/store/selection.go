package store

import (
	"mjcf-editor/internal/editor/models"
)

// ============================================================
// Selection Controller
// ============================================================

// selectOne focuses id alone. An empty id clears the selection.
func selectOne(id string) models.Selection {
	if id == "" {
		return models.Selection{Set: []string{}}
	}
	return models.Selection{Primary: id, Set: []string{id}, Anchor: id}
}

// selectToggle flips id in the set. id becomes primary and anchor in both
// directions, even when it was just removed from the set.
func selectToggle(sel models.Selection, id string) models.Selection {
	out := models.Selection{Primary: id, Anchor: id, Set: make([]string, 0, len(sel.Set)+1)}
	removed := false
	for _, v := range sel.Set {
		if v == id {
			removed = true
			continue
		}
		out.Set = append(out.Set, v)
	}
	if !removed {
		out.Set = append(out.Set, id)
	}
	return out
}

// selectRangeTo selects every node between the anchor and id in scene
// order, inclusive. Without a usable anchor it behaves like selectOne.
func selectRangeTo(sel models.Selection, nodes []models.BodyNode, id string) models.Selection {
	to := models.IndexOf(nodes, id)
	if to < 0 {
		return sel
	}
	from := -1
	if sel.Anchor != "" {
		from = models.IndexOf(nodes, sel.Anchor)
	}
	if from < 0 {
		return selectOne(id)
	}
	lo, hi := from, to
	if lo > hi {
		lo, hi = hi, lo
	}
	ids := make([]string, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		ids = append(ids, nodes[i].ID)
	}
	return models.Selection{Primary: id, Set: ids, Anchor: sel.Anchor}
}

// targets lists the ids a delete applies to: the set, or the primary alone.
func targets(sel models.Selection) []string {
	if len(sel.Set) > 0 {
		return sel.Set
	}
	if sel.Primary != "" {
		return []string{sel.Primary}
	}
	return nil
}
