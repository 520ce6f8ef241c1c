package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/majewskibartosz/railway-support-lab/internal/storage"
	apperrors "github.com/majewskibartosz/railway-support-lab/pkg/util"
)

// StorageHandler passes blobs through to the object storage gateway.
type StorageHandler struct {
	store  storage.ObjectStore
	logger *zap.Logger
}

// NewStorageHandler constructs handler.
func NewStorageHandler(store storage.ObjectStore, logger *zap.Logger) *StorageHandler {
	return &StorageHandler{store: store, logger: logger}
}

// GetObject GET /api/storage/:key.
func (h *StorageHandler) GetObject(c *fiber.Ctx) error {
	data, err := h.store.Get(c.UserContext(), c.Params("key"))
	if err != nil {
		return h.mapStorageError("get object", err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	return c.Send(data)
}

// PutObject PUT /api/storage/:key.
func (h *StorageHandler) PutObject(c *fiber.Ctx) error {
	key := c.Params("key")
	if err := h.store.Put(c.UserContext(), key, c.Body()); err != nil {
		return h.mapStorageError("put object", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"key":  key,
		"size": len(c.Body()),
	})
}

// DeleteObject DELETE /api/storage/:key.
func (h *StorageHandler) DeleteObject(c *fiber.Ctx) error {
	key := c.Params("key")
	if err := h.store.Delete(c.UserContext(), key); err != nil {
		return h.mapStorageError("delete object", err)
	}
	return c.JSON(fiber.Map{"key": key, "deleted": true})
}

// ListObjects GET /api/storage?prefix=&max_keys=.
func (h *StorageHandler) ListObjects(c *fiber.Ctx) error {
	maxKeys := parseInt(c.Query("max_keys"), 100)
	keys, err := h.store.List(c.UserContext(), c.Query("prefix"), maxKeys)
	if err != nil {
		return h.mapStorageError("list objects", err)
	}
	return c.JSON(fiber.Map{"count": len(keys), "keys": keys})
}

func (h *StorageHandler) mapStorageError(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrUnavailable):
		return apperrors.NewUnavailable("object storage not configured")
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.NewNotFound("object", nil)
	default:
		h.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return apperrors.NewInternalError(err)
	}
}
