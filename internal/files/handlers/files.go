package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"mjcf-editor/internal/files/models"
	"mjcf-editor/internal/files/repository"
	"mjcf-editor/internal/files/service"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// ============================================================
// Files Handler
// ============================================================

// timeLayout sorts lexicographically in upload order.
const timeLayout = "2006-01-02T15:04:05.000Z"

type FilesHandler struct {
	repo     *repository.Repository
	storage  *service.FileStorage
	maxBytes int64
	now      func() time.Time
}

func NewFilesHandler(repo *repository.Repository, storage *service.FileStorage, maxUploadMB int) *FilesHandler {
	return &FilesHandler{
		repo:     repo,
		storage:  storage,
		maxBytes: int64(maxUploadMB) * 1024 * 1024,
		now:      time.Now,
	}
}

type filePayload struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	Mimetype     string `json:"mimetype"`
	UploadedAt   string `json:"uploaded_at"`
}

type listResponse struct {
	Files []filePayload `json:"files"`
}

// Upload stores one .xml, .stl or .urdf file from the multipart field "file".
func (h *FilesHandler) Upload(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "No file uploaded"})
	}

	log.Printf("[FILES] File received: %s, size: %d", fileHeader.Filename, fileHeader.Size)

	if !service.Allowed(fileHeader.Filename) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("File type %s is not supported. Allowed types: xml, stl, urdf", filepath.Ext(fileHeader.Filename)),
		})
	}
	if fileHeader.Size > h.maxBytes {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large. Maximum size is %dMB.", h.maxBytes/(1024*1024)),
		})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read file"})
	}

	now := h.now().UTC()
	record := &models.File{
		ID:           uuid.NewString(),
		Filename:     service.StoredName(fileHeader.Filename, now),
		OriginalName: filepath.Base(fileHeader.Filename),
		Size:         int64(len(data)),
		Mimetype:     mimetypeOf(fileHeader.Header.Get("Content-Type"), fileHeader.Filename),
		UploadedAt:   now.Format(timeLayout),
	}

	if err := h.storage.Save(record.Filename, data); err != nil {
		log.Printf("[FILES] save error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Upload failed"})
	}
	if err := h.repo.Create(context.Background(), record); err != nil {
		log.Printf("[FILES] insert error: %v", err)
		_ = h.storage.Remove(record.Filename)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Upload failed"})
	}

	log.Printf("[FILES] Stored %s as %s", record.OriginalName, record.Filename)
	return c.Status(http.StatusCreated).JSON(mapFile(record))
}

// List returns the uploaded files, newest first.
func (h *FilesHandler) List(c fiber.Ctx) error {
	files, err := h.repo.List(context.Background())
	if err != nil {
		log.Printf("[FILES] list error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read files"})
	}

	payload := []filePayload{}
	if err := copier.Copy(&payload, &files); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read files"})
	}
	return c.JSON(listResponse{Files: payload})
}

func (h *FilesHandler) Get(c fiber.Ctx) error {
	record, err := h.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(mapFile(record))
}

// Download sends the stored bytes as an attachment named after the original upload.
func (h *FilesHandler) Download(c fiber.Ctx) error {
	record, err := h.lookup(c)
	if err != nil {
		return err
	}

	data, err := h.storage.Read(record.Filename)
	if err != nil {
		log.Printf("[FILES] read error: %v", err)
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "File not found"})
	}

	c.Attachment(record.OriginalName)
	c.Set("Content-Type", record.Mimetype)
	return c.Send(data)
}

func (h *FilesHandler) Delete(c fiber.Ctx) error {
	record, err := h.lookup(c)
	if err != nil {
		return err
	}

	if err := h.repo.Delete(context.Background(), record.ID); err != nil {
		log.Printf("[FILES] delete error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Delete failed"})
	}
	if err := h.storage.Remove(record.Filename); err != nil {
		log.Printf("[FILES] remove error: %v", err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ============================================================
// Helpers
// ============================================================

// lookup loads the :id row.
func (h *FilesHandler) lookup(c fiber.Ctx) (*models.File, error) {
	record, err := h.repo.GetByID(context.Background(), c.Params("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fiber.NewError(http.StatusNotFound, "File not found")
	}
	if err != nil {
		log.Printf("[FILES] lookup error: %v", err)
		return nil, fiber.NewError(http.StatusInternalServerError, "storage error")
	}
	return record, nil
}

func mapFile(f *models.File) filePayload {
	var p filePayload
	_ = copier.Copy(&p, f)
	return p
}

func mimetypeOf(header, name string) string {
	if header != "" {
		return header
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
