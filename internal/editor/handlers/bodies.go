package handlers

import (
	"net/http"

	"mjcf-editor/internal/editor/codec"
	"mjcf-editor/internal/editor/store"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Body Handlers
// ============================================================

type transformRequest struct {
	Pos  [3]float64 `json:"pos"`
	Quat [4]float64 `json:"quat"`
}

// eulerRequest sets all three angles, or just one with index and value.
type eulerRequest struct {
	Euler *[3]float64 `json:"euler"`
	Index *int        `json:"index"`
	Value float64     `json:"value"`
}

type eulerResponse struct {
	Euler [3]float64 `json:"euler"`
}

type scaleRequest struct {
	Factor [3]float64 `json:"factor"`
}

type dragScaleRequest struct {
	Initial [3]float64 `json:"initial"`
	Current [3]float64 `json:"current"`
}

type sizeRequest struct {
	Index *int    `json:"index"`
	Value float64 `json:"value"`
}

// UpdateTransform is the gizmo translate/rotate commit.
func (h *EditorHandler) UpdateTransform(c fiber.Ctx) error {
	var req transformRequest
	return h.body(c, &req, func(st *store.Store, id string) error {
		st.UpdateTransform(id, req.Pos, req.Quat)
		return nil
	})
}

// GetEuler reads the body's orientation as roll, pitch, yaw in radians.
func (h *EditorHandler) GetEuler(c fiber.Ctx) error {
	st, err := h.resolve(c)
	if err != nil {
		return err
	}
	n, ok := st.Node(c.Params("id"))
	if !ok {
		return fiber.NewError(http.StatusNotFound, "body not found")
	}
	return c.JSON(eulerResponse{Euler: codec.QuatToEuler(n.Quat)})
}

// UpdateEuler sets the orientation from inspector roll/pitch/yaw fields.
func (h *EditorHandler) UpdateEuler(c fiber.Ctx) error {
	var req eulerRequest
	return h.body(c, &req, func(st *store.Store, id string) error {
		switch {
		case req.Euler != nil:
			st.UpdateEuler(id, *req.Euler)
		case req.Index != nil:
			if *req.Index < 0 || *req.Index > 2 {
				return fiber.NewError(http.StatusBadRequest, "euler index out of range")
			}
			st.SetEulerComponent(id, *req.Index, req.Value)
		default:
			return fiber.NewError(http.StatusBadRequest, "euler or index required")
		}
		return nil
	})
}

func (h *EditorHandler) UpdateScale(c fiber.Ctx) error {
	var req scaleRequest
	return h.body(c, &req, func(st *store.Store, id string) error {
		st.UpdateScale(id, req.Factor)
		return nil
	})
}

// DragScale converts a scale-gizmo drag into a factor and applies it.
func (h *EditorHandler) DragScale(c fiber.Ctx) error {
	var req dragScaleRequest
	return h.body(c, &req, func(st *store.Store, id string) error {
		st.UpdateScale(id, codec.DragFactor(req.Initial, req.Current))
		return nil
	})
}

func (h *EditorHandler) UpdateSize(c fiber.Ctx) error {
	var req sizeRequest
	return h.body(c, &req, func(st *store.Store, id string) error {
		if req.Index == nil {
			return fiber.NewError(http.StatusBadRequest, "index required")
		}
		n, _ := st.Node(id)
		if *req.Index < 0 || *req.Index >= n.Geom.Type().Arity() {
			return fiber.NewError(http.StatusBadRequest, "size index out of range")
		}
		st.UpdateGeomSize(id, *req.Index, req.Value)
		return nil
	})
}

// body resolves the session and the :id body, decodes req and runs op.
func (h *EditorHandler) body(c fiber.Ctx, req any, op func(st *store.Store, id string) error) error {
	st, err := h.resolve(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if _, ok := st.Node(id); !ok {
		return fiber.NewError(http.StatusNotFound, "body not found")
	}
	if err := decodeBody(c, req); err != nil {
		return err
	}
	if err := op(st, id); err != nil {
		return err
	}
	return c.JSON(st.Snapshot())
}
