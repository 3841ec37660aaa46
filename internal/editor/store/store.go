package store

import (
	"log"
	"strconv"
	"strings"
	"sync"

	"mjcf-editor/internal/editor/codec"
	"mjcf-editor/internal/editor/mjcf"
	"mjcf-editor/internal/editor/models"
	"mjcf-editor/internal/editor/primitives"
)

// ============================================================
// Scene Store
// ============================================================

type Options struct {
	HistoryLimit int
	Palette      *primitives.Palette
}

// Store owns one editing session's scene, selection and canonical XML.
// Every mutator is atomic: it records history, applies the whole change,
// regenerates the XML and publishes exactly one new State. Mutators never
// fail; unknown ids and empty selections make them no-ops. A mutator that
// reaches a target still records history when the values are unchanged.
type Store struct {
	mu        sync.Mutex
	nodes     []models.BodyNode
	selection models.Selection
	xml       string
	version   uint64
	counter   int

	history   *HistoryManager
	palette   *primitives.Palette
	listeners map[int]func(models.State)
	nextSub   int
}

func New(opts Options) *Store {
	palette := opts.Palette
	if palette == nil {
		palette = primitives.Default()
	}
	return &Store{
		nodes:     []models.BodyNode{},
		selection: models.Selection{Set: []string{}},
		xml:       mjcf.Build(nil),
		history:   NewHistoryManager(opts.HistoryLimit),
		palette:   palette,
		listeners: make(map[int]func(models.State)),
	}
}

// ============================================================
// Reads
// ============================================================

func (s *Store) Snapshot() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store) XML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.xml
}

func (s *Store) Node(id string) (models.BodyNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := models.IndexOf(s.nodes, id)
	if i < 0 {
		return models.BodyNode{}, false
	}
	return s.nodes[i].Clone(), true
}

func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// Subscribe registers fn to receive every published State. fn runs on the
// mutating goroutine while the store is locked, so it must not call back
// into the Store. The State passed in is shared by all listeners.
func (s *Store) Subscribe(fn func(models.State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// ============================================================
// Scene mutations
// ============================================================

// AddPrimitive places a new body of type t at the origin and selects it
// exclusively. It returns the new id.
func (s *Store) AddPrimitive(t models.GeomType) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextIDLocked()
	node := models.BodyNode{
		ID:   id,
		Name: id,
		Quat: codec.IdentityQuat,
		Geom: models.Geom{Shape: codec.SanitizeShape(s.palette.Shape(t))},
	}
	nodes := append(models.CloneNodes(s.nodes), node)
	s.commitLocked("add_primitive", nodes, selectOne(id))
	return id
}

// UpdateTransform replaces position and orientation of id after sanitizing both.
func (s *Store) UpdateTransform(id string, pos [3]float64, quat [4]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateNodeLocked("update_transform", id, func(n *models.BodyNode) {
		n.Pos = codec.SanitizePos(pos)
		n.Quat = codec.SanitizeQuat(quat)
	})
}

// UpdateEuler sets the orientation of id from roll, pitch, yaw in radians.
func (s *Store) UpdateEuler(id string, euler [3]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateNodeLocked("update_euler", id, func(n *models.BodyNode) {
		n.Quat = codec.EulerToQuat(euler)
	})
}

// SetEulerComponent changes one of roll, pitch, yaw of id and keeps the
// other two as currently derived from its quaternion.
func (s *Store) SetEulerComponent(id string, index int, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index > 2 {
		return
	}
	s.updateNodeLocked("update_euler", id, func(n *models.BodyNode) {
		e := codec.QuatToEuler(n.Quat)
		e[index] = value
		n.Quat = codec.EulerToQuat(e)
	})
}

// UpdateScale applies a per-axis multiplicative factor to the geom size.
func (s *Store) UpdateScale(id string, factor [3]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateNodeLocked("update_scale", id, func(n *models.BodyNode) {
		n.Geom.Shape = codec.ScaleShape(n.Geom.Shape, factor)
	})
}

// UpdateGeomSize sets one size component directly. An index outside the
// geom's size array is ignored.
func (s *Store) UpdateGeomSize(id string, index int, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := models.IndexOf(s.nodes, id)
	if i < 0 || index < 0 || index >= s.nodes[i].Geom.Type().Arity() {
		return
	}
	s.updateNodeLocked("update_geom_size", id, func(n *models.BodyNode) {
		n.Geom.Shape, _ = codec.SetSizeComponent(n.Geom.Shape, index, value)
	})
}

// RenameSelected renames the primary selection. Names are not made unique
// here; a blank name is ignored.
func (s *Store) RenameSelected(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection.Primary == "" || strings.TrimSpace(name) == "" {
		return
	}
	s.updateNodeLocked("rename", s.selection.Primary, func(n *models.BodyNode) {
		n.Name = name
	})
}

// DeleteSelected removes the selected bodies and clears the selection.
func (s *Store) DeleteSelected() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := targets(s.selection)
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	nodes := make([]models.BodyNode, 0, len(s.nodes))
	for _, n := range s.nodes {
		if !drop[n.ID] {
			nodes = append(nodes, n.Clone())
		}
	}
	s.commitLocked("delete", nodes, selectOne(""))
}

// SetXML replaces the scene with the parsed text. Text that does not parse
// is dropped without touching the store; callers that need to report the
// failure validate with mjcf.Validate first.
func (s *Store) SetXML(text string) {
	nodes, err := mjcf.Parse(text)
	if err != nil {
		rejectedXMLTotal.Inc()
		log.Printf("[STORE] xml edit dropped: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked("set_xml", nodes, selectOne(""))
}

// RebuildXML regenerates the canonical XML from the current scene. It does
// not record history.
func (s *Store) RebuildXML() {
	s.mu.Lock()
	defer s.mu.Unlock()
	xml := mjcf.Build(s.nodes)
	if xml == s.xml {
		return
	}
	s.xml = xml
	s.publishLocked()
}

// Reset empties the scene and the selection.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked("reset", []models.BodyNode{}, selectOne(""))
}

// ============================================================
// Selection
// ============================================================

// Select is SelectOne; an empty id clears the selection.
func (s *Store) Select(id string) {
	s.SelectOne(id)
}

func (s *Store) SelectOne(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" && models.IndexOf(s.nodes, id) < 0 {
		return
	}
	s.selectLocked(selectOne(id))
}

func (s *Store) SelectToggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if models.IndexOf(s.nodes, id) < 0 {
		return
	}
	s.selectLocked(selectToggle(s.selection, id))
}

func (s *Store) SelectRangeTo(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if models.IndexOf(s.nodes, id) < 0 {
		return
	}
	s.selectLocked(selectRangeTo(s.selection, s.nodes, id))
}

func (s *Store) selectLocked(sel models.Selection) {
	s.history.RecordBefore(s.entryLocked())
	s.selection = sel
	mutationsTotal.WithLabelValues("select").Inc()
	s.publishLocked()
}

// ============================================================
// History
// ============================================================

func (s *Store) Undo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.history.Undo(s.entryLocked())
	if !ok {
		return
	}
	undoTotal.Inc()
	s.restoreLocked(prev)
}

func (s *Store) Redo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.history.Redo(s.entryLocked())
	if !ok {
		return
	}
	redoTotal.Inc()
	s.restoreLocked(next)
}

func (s *Store) restoreLocked(e Entry) {
	s.nodes = e.Nodes
	s.selection = e.Selection
	s.xml = e.XML
	s.publishLocked()
}

// ============================================================
// Internals
// ============================================================

// updateNodeLocked applies fn to a copy of node id and commits the result
// unless id is unknown.
func (s *Store) updateNodeLocked(op, id string, fn func(*models.BodyNode)) {
	i := models.IndexOf(s.nodes, id)
	if i < 0 {
		return
	}
	nodes := models.CloneNodes(s.nodes)
	fn(&nodes[i])
	s.commitLocked(op, nodes, s.selection.Clone())
}

// commitLocked is the single state-replacement step shared by all scene mutators.
func (s *Store) commitLocked(op string, nodes []models.BodyNode, sel models.Selection) {
	s.history.RecordBefore(s.entryLocked())
	s.nodes = nodes
	s.selection = sel
	s.xml = mjcf.Build(nodes)
	mutationsTotal.WithLabelValues(op).Inc()
	s.publishLocked()
}

func (s *Store) publishLocked() {
	s.version++
	if len(s.listeners) == 0 {
		return
	}
	state := s.stateLocked()
	for _, fn := range s.listeners {
		fn(state)
	}
}

func (s *Store) entryLocked() Entry {
	return Entry{Nodes: s.nodes, Selection: s.selection, XML: s.xml}
}

func (s *Store) stateLocked() models.State {
	return models.State{
		Version:   s.version,
		Nodes:     models.CloneNodes(s.nodes),
		Selection: s.selection.Clone(),
		XML:       s.xml,
	}
}

// nextIDLocked returns a fresh body id that is not used by any current node.
func (s *Store) nextIDLocked() string {
	for {
		s.counter++
		id := "body_" + strconv.Itoa(s.counter)
		if models.IndexOf(s.nodes, id) < 0 {
			return id
		}
	}
}
