package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"mjcf-editor/internal/editor/mjcf"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// XML Handlers
// ============================================================

const (
	exportFilename  = "simulation_scene.xml"
	invalidXMLError = "XML is not valid. Fix the errors and try again."
)

type importRequest struct {
	FileID string `json:"file_id"`
}

func (h *EditorHandler) GetXML(c fiber.Ctx) error {
	st, err := h.resolve(c)
	if err != nil {
		return err
	}
	c.Type("xml")
	return c.SendString(st.XML())
}

// PutXML replaces the scene with the bodies of the posted document.
// Malformed XML is answered with 422 and leaves the scene untouched.
func (h *EditorHandler) PutXML(c fiber.Ctx) error {
	st, err := h.resolve(c)
	if err != nil {
		return err
	}

	text := string(c.Body())
	if err := mjcf.Validate(text); err != nil {
		log.Printf("[EDITOR] Rejected XML edit: %v", err)
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": invalidXMLError})
	}
	st.SetXML(text)
	return c.JSON(st.Snapshot())
}

// Export downloads the canonical XML.
func (h *EditorHandler) Export(c fiber.Ctx) error {
	st, err := h.resolve(c)
	if err != nil {
		return err
	}
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename))
	c.Type("xml")
	return c.SendString(st.XML())
}

// Import loads a stored file from the file store and applies it as an XML edit.
func (h *EditorHandler) Import(c fiber.Ctx) error {
	st, err := h.resolve(c)
	if err != nil {
		return err
	}

	var req importRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	if req.FileID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "file_id required"})
	}

	text, status, err := h.fetchFile(req.FileID)
	if err != nil {
		log.Printf("[EDITOR] Import %s failed: %v", req.FileID, err)
		if status == http.StatusNotFound {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "file not found"})
		}
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "failed to reach file store"})
	}

	if err := mjcf.Validate(text); err != nil {
		log.Printf("[EDITOR] Rejected imported XML %s: %v", req.FileID, err)
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": invalidXMLError})
	}

	st.SetXML(text)
	log.Printf("[EDITOR] Imported file %s", req.FileID)
	return c.JSON(st.Snapshot())
}

func (h *EditorHandler) fetchFile(id string) (string, int, error) {
	target := fmt.Sprintf("%s/files/%s/download", h.filesURL, url.PathEscape(id))
	resp, err := h.client.Get(target)
	if err != nil {
		return "", 0, fmt.Errorf("request file store: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, fmt.Errorf("file store status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("read file: %w", err)
	}
	return string(data), resp.StatusCode, nil
}
