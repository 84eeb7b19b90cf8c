package handler

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"clubapi/internal/auth"
	"clubapi/internal/model"
	"clubapi/internal/service"
)

// ListCategories godoc
// @Summary List inventory categories
// @Tags inventory
// @Security BearerAuth
// @Router /api/inventory/categories [get]
func ListCategories(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats, err := svc.ListCategories(c.UserContext(), auth.ClaimsFrom(c))
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, cats)
	}
}

// CreateCategory godoc
// @Summary Create an inventory category
// @Tags inventory
// @Security BearerAuth
// @Router /api/inventory/categories [post]
func CreateCategory(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CategoryInput
		if err := decodeBody(c, &in); err != nil {
			return respondError(c, err)
		}
		cat, err := svc.CreateCategory(c.UserContext(), auth.ClaimsFrom(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusCreated, cat)
	}
}

// UpdateCategory godoc
// @Summary Update an inventory category
// @Tags inventory
// @Security BearerAuth
// @Router /api/inventory/categories/{id} [put]
func UpdateCategory(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		var in service.CategoryInput
		if err := decodeBody(c, &in); err != nil {
			return respondError(c, err)
		}
		cat, err := svc.UpdateCategory(c.UserContext(), auth.ClaimsFrom(c), id, in)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, cat)
	}
}

// DeleteCategory godoc
// @Summary Delete an unused inventory category
// @Tags inventory
// @Security BearerAuth
// @Router /api/inventory/categories/{id} [delete]
func DeleteCategory(svc service.InventoryService) fiber.Handler {
	return deleteByID(svc.DeleteCategory)
}

// ListContainers godoc
// @Summary List inventory containers
// @Tags inventory
// @Security BearerAuth
// @Router /api/inventory/containers [get]
func ListContainers(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := svc.ListContainers(c.UserContext(), auth.ClaimsFrom(c))
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, out)
	}
}

// CreateContainer godoc
// @Summary Create an inventory container
// @Tags inventory
// @Security BearerAuth
// @Router /api/inventory/containers [post]
func CreateContainer(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ContainerInput
		if err := decodeBody(c, &in); err != nil {
			return respondError(c, err)
		}
		out, err := svc.CreateContainer(c.UserContext(), auth.ClaimsFrom(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusCreated, out)
	}
}

// UpdateContainer godoc
// @Summary Update an inventory container
// @Tags inventory
// @Security BearerAuth
// @Router /api/inventory/containers/{id} [put]
func UpdateContainer(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		var in service.ContainerInput
		if err := decodeBody(c, &in); err != nil {
			return respondError(c, err)
		}
		out, err := svc.UpdateContainer(c.UserContext(), auth.ClaimsFrom(c), id, in)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, out)
	}
}

// DeleteContainer godoc
// @Summary Delete an empty inventory container
// @Tags inventory
// @Security BearerAuth
// @Router /api/inventory/containers/{id} [delete]
func DeleteContainer(svc service.InventoryService) fiber.Handler {
	return deleteByID(svc.DeleteContainer)
}

// ListItems godoc
// @Summary List inventory items
// @Tags inventory
// @Security BearerAuth
// @Param category_id query string false "category filter"
// @Param container_id query string false "container filter"
// @Param q query string false "name search"
// @Param low_stock query bool false "only items at or below their minimum"
// @Param limit query int false "page size (max 100)"
// @Param offset query int false "page offset"
// @Router /api/inventory/items [get]
func ListItems(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pagination(c)
		if err != nil {
			return respondError(c, err)
		}
		f := model.ItemFilter{
			CategoryID:  c.Query("category_id"),
			ContainerID: c.Query("container_id"),
			Query:       c.Query("q"),
		}
		if raw := c.Query("low_stock"); raw != "" {
			if f.LowStock, err = strconv.ParseBool(raw); err != nil {
				return respondError(c, badRequest("INVALID_LOW_STOCK", "low_stock must be a boolean"))
			}
		}
		res, err := svc.ListItems(c.UserContext(), auth.ClaimsFrom(c), f, limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, res)
	}
}

// GetItem godoc
// @Summary Get an inventory item
// @Tags inventory
// @Security BearerAuth
// @Router /api/inventory/items/{id} [get]
func GetItem(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		it, err := svc.GetItem(c.UserContext(), auth.ClaimsFrom(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, it)
	}
}

// CreateItem godoc
// @Summary Create an inventory item
// @Tags inventory
// @Security BearerAuth
// @Router /api/inventory/items [post]
func CreateItem(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ItemInput
		if err := decodeBody(c, &in); err != nil {
			return respondError(c, err)
		}
		it, err := svc.CreateItem(c.UserContext(), auth.ClaimsFrom(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusCreated, it)
	}
}

// UpdateItem godoc
// @Summary Update an inventory item
// @Tags inventory
// @Security BearerAuth
// @Router /api/inventory/items/{id} [patch]
func UpdateItem(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		var patch model.ItemPatch
		if err := decodeBody(c, &patch); err != nil {
			return respondError(c, err)
		}
		it, err := svc.UpdateItem(c.UserContext(), auth.ClaimsFrom(c), id, patch)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, it)
	}
}

// DeleteItem godoc
// @Summary Delete an inventory item
// @Tags inventory
// @Security BearerAuth
// @Router /api/inventory/items/{id} [delete]
func DeleteItem(svc service.InventoryService) fiber.Handler {
	return deleteByID(svc.DeleteItem)
}

// AdjustItem godoc
// @Summary Change an item quantity by delta
// @Tags inventory
// @Security BearerAuth
// @Router /api/inventory/items/{id}/adjustments [post]
func AdjustItem(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		var in service.AdjustInput
		if err := decodeBody(c, &in); err != nil {
			return respondError(c, err)
		}
		res, err := svc.Adjust(c.UserContext(), auth.ClaimsFrom(c), id, in)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusCreated, res)
	}
}

// ListAdjustments godoc
// @Summary List the quantity changes of an item
// @Tags inventory
// @Security BearerAuth
// @Router /api/inventory/items/{id}/adjustments [get]
func ListAdjustments(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		out, err := svc.ListAdjustments(c.UserContext(), auth.ClaimsFrom(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, out)
	}
}

// UploadItemPhoto godoc
// @Summary Upload an item photo (multipart/form-data, field name: file)
// @Tags inventory
// @Security BearerAuth
// @Accept mpfd
// @Router /api/inventory/items/{id}/photo [put]
func UploadItemPhoto(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		it, err := svc.UploadPhoto(c.UserContext(), auth.ClaimsFrom(c), id, f, fh.Filename, ct, fh.Size)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, it)
	}
}

// ItemPhotoURL godoc
// @Summary Get a short-lived download URL for an item photo
// @Tags inventory
// @Security BearerAuth
// @Router /api/inventory/items/{id}/photo [get]
func ItemPhotoURL(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		url, err := svc.PhotoURL(c.UserContext(), auth.ClaimsFrom(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, fiber.Map{"url": url})
	}
}

func deleteByID(del func(ctx context.Context, claims model.Claims, id string) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		if err := del(c.UserContext(), auth.ClaimsFrom(c), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
