package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"mjcf-editor/internal/editor/models"
	"mjcf-editor/internal/editor/session"
	"mjcf-editor/internal/editor/store"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Editor Handler
// ============================================================

type EditorHandler struct {
	sessions *session.Manager
	filesURL string
	client   *http.Client
}

func NewEditorHandler(sessions *session.Manager, filesURL string) *EditorHandler {
	return &EditorHandler{
		sessions: sessions,
		filesURL: filesURL,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Register mounts every editor route on r.
func (h *EditorHandler) Register(r fiber.Router) {
	r.Post("/sessions", h.OpenSession)
	r.Delete("/sessions/:sid", h.CloseSession)

	s := r.Group("/sessions/:sid")
	s.Get("/scene", h.GetScene)
	s.Post("/primitives", h.AddPrimitive)

	s.Put("/bodies/:id/transform", h.UpdateTransform)
	s.Get("/bodies/:id/euler", h.GetEuler)
	s.Put("/bodies/:id/euler", h.UpdateEuler)
	s.Put("/bodies/:id/scale", h.UpdateScale)
	s.Put("/bodies/:id/drag-scale", h.DragScale)
	s.Put("/bodies/:id/size", h.UpdateSize)

	s.Post("/select", h.Select)
	s.Post("/rename", h.Rename)
	s.Post("/delete", h.DeleteSelected)

	s.Get("/xml", h.GetXML)
	s.Put("/xml", h.PutXML)
	s.Get("/export", h.Export)
	s.Post("/import", h.Import)

	s.Post("/undo", h.Undo)
	s.Post("/redo", h.Redo)
	s.Post("/reset", h.Reset)
	s.Post("/rebuild", h.Rebuild)
}

type sessionResponse struct {
	ID    string       `json:"id"`
	State models.State `json:"state"`
}

type addPrimitiveRequest struct {
	Type string `json:"type"`
}

type addPrimitiveResponse struct {
	ID    string       `json:"id"`
	State models.State `json:"state"`
}

type selectRequest struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

type renameRequest struct {
	Name string `json:"name"`
}

// OpenSession starts a new editing session with an empty scene.
func (h *EditorHandler) OpenSession(c fiber.Ctx) error {
	id, st := h.sessions.Open()
	log.Printf("[EDITOR] Session opened: %s", id)
	return c.Status(http.StatusCreated).JSON(sessionResponse{ID: id, State: st.Snapshot()})
}

// CloseSession drops the session and its history.
func (h *EditorHandler) CloseSession(c fiber.Ctx) error {
	sid := c.Params("sid")
	if err := h.sessions.Close(sid); err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	}
	log.Printf("[EDITOR] Session closed: %s", sid)
	return c.SendStatus(http.StatusNoContent)
}

func (h *EditorHandler) GetScene(c fiber.Ctx) error {
	st, err := h.resolve(c)
	if err != nil {
		return err
	}
	return c.JSON(st.Snapshot())
}

// AddPrimitive appends a body of the requested geom type and selects it.
func (h *EditorHandler) AddPrimitive(c fiber.Ctx) error {
	st, err := h.resolve(c)
	if err != nil {
		return err
	}

	var req addPrimitiveRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	t, ok := models.ParseGeomType(req.Type)
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "unknown primitive type"})
	}

	id := st.AddPrimitive(t)
	return c.Status(http.StatusCreated).JSON(addPrimitiveResponse{ID: id, State: st.Snapshot()})
}

// Select applies one of the click gestures: plain, ctrl (toggle) or shift (range).
func (h *EditorHandler) Select(c fiber.Ctx) error {
	st, err := h.resolve(c)
	if err != nil {
		return err
	}

	var req selectRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	switch req.Mode {
	case "", "one":
		st.SelectOne(req.ID)
	case "toggle":
		st.SelectToggle(req.ID)
	case "range":
		st.SelectRangeTo(req.ID)
	default:
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "mode must be one, toggle or range"})
	}
	return c.JSON(st.Snapshot())
}

func (h *EditorHandler) Rename(c fiber.Ctx) error {
	st, err := h.resolve(c)
	if err != nil {
		return err
	}

	var req renameRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	st.RenameSelected(req.Name)
	return c.JSON(st.Snapshot())
}

func (h *EditorHandler) DeleteSelected(c fiber.Ctx) error {
	return h.apply(c, (*store.Store).DeleteSelected)
}

func (h *EditorHandler) Undo(c fiber.Ctx) error {
	return h.apply(c, (*store.Store).Undo)
}

func (h *EditorHandler) Redo(c fiber.Ctx) error {
	return h.apply(c, (*store.Store).Redo)
}

func (h *EditorHandler) Reset(c fiber.Ctx) error {
	return h.apply(c, (*store.Store).Reset)
}

func (h *EditorHandler) Rebuild(c fiber.Ctx) error {
	return h.apply(c, (*store.Store).RebuildXML)
}

// ============================================================
// Helpers
// ============================================================

func (h *EditorHandler) apply(c fiber.Ctx, op func(*store.Store)) error {
	st, err := h.resolve(c)
	if err != nil {
		return err
	}
	op(st)
	return c.JSON(st.Snapshot())
}

// resolve looks up the :sid store; unknown sessions become a 404.
func (h *EditorHandler) resolve(c fiber.Ctx) (*store.Store, error) {
	st, err := h.sessions.Resolve(c.Params("sid"))
	if errors.Is(err, session.ErrUnknownSession) {
		return nil, fiber.NewError(http.StatusNotFound, "session not found")
	}
	return st, err
}

func decodeBody(c fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return fiber.NewError(http.StatusBadRequest, "empty body")
	}
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid json")
	}
	return nil
}
