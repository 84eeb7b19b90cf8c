package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clubapi/internal/model"
	"clubapi/internal/repository"
	"clubapi/internal/storage"
	"clubapi/internal/validator"
)

const photoURLExpiry = 15 * time.Minute

var ErrReaderNil = errors.New("reader is nil")

type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

type ContainerInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Location    string `json:"location" validate:"max=200"`
	Description string `json:"description" validate:"max=1000"`
}

type ItemInput struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	CategoryID  *string `json:"category_id" validate:"omitempty,uuid"`
	ContainerID *string `json:"container_id" validate:"omitempty,uuid"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	MinQuantity int     `json:"min_quantity" validate:"gte=0"`
}

// itemFields re-validates an item after a patch was applied.
type itemFields struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	CategoryID  string `json:"category_id" validate:"omitempty,uuid"`
	ContainerID string `json:"container_id" validate:"omitempty,uuid"`
	MinQuantity int    `json:"min_quantity" validate:"gte=0"`
}

type AdjustInput struct {
	Delta int    `json:"delta" validate:"required,ne=0"`
	Note  string `json:"note" validate:"max=500"`
}

type AdjustResult struct {
	Item       *model.Item       `json:"item"`
	Adjustment *model.Adjustment `json:"adjustment"`
}

// InventoryService defines the inventory use cases.
type InventoryService interface {
	ListCategories(ctx context.Context, claims model.Claims) ([]model.Category, error)
	CreateCategory(ctx context.Context, claims model.Claims, in CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, claims model.Claims, id string, in CategoryInput) (*model.Category, error)
	// DeleteCategory fails with ErrConflict while items still reference the category.
	DeleteCategory(ctx context.Context, claims model.Claims, id string) error

	ListContainers(ctx context.Context, claims model.Claims) ([]model.Container, error)
	CreateContainer(ctx context.Context, claims model.Claims, in ContainerInput) (*model.Container, error)
	UpdateContainer(ctx context.Context, claims model.Claims, id string, in ContainerInput) (*model.Container, error)
	DeleteContainer(ctx context.Context, claims model.Claims, id string) error

	ListItems(ctx context.Context, claims model.Claims, f model.ItemFilter, limit, offset int) (*ListResult[model.Item], error)
	GetItem(ctx context.Context, claims model.Claims, id string) (*model.Item, error)
	CreateItem(ctx context.Context, claims model.Claims, in ItemInput) (*model.Item, error)
	UpdateItem(ctx context.Context, claims model.Claims, id string, patch model.ItemPatch) (*model.Item, error)
	DeleteItem(ctx context.Context, claims model.Claims, id string) error

	// Adjust changes the quantity by delta and records the change. Quantity never drops below zero.
	Adjust(ctx context.Context, claims model.Claims, itemID string, in AdjustInput) (*AdjustResult, error)
	ListAdjustments(ctx context.Context, claims model.Claims, itemID string) ([]model.Adjustment, error)

	// UploadPhoto stores the photo in object storage and saves its key on the item.
	// The new object is removed again when the database update fails.
	UploadPhoto(ctx context.Context, claims model.Claims, itemID string, r io.Reader, filename, contentType string, size int64) (*model.Item, error)
	// PhotoURL returns a short-lived download URL for the item photo.
	PhotoURL(ctx context.Context, claims model.Claims, itemID string) (string, error)
}

type inventoryService struct {
	Deps
	store storage.Storage
}

// NewInventoryService constructs a new InventoryService.
func NewInventoryService(deps Deps, store storage.Storage) InventoryService {
	if store == nil {
		store = storage.Disabled{}
	}
	return &inventoryService{Deps: deps.withDefaults(), store: store}
}

func (s *inventoryService) ListCategories(ctx context.Context, claims model.Claims) ([]model.Category, error) {
	if err := requireRole(claims, model.RoleMember); err != nil {
		return nil, err
	}
	var out []model.Category
	err := s.Tx.InReadScope(ctx, claims, func(st repository.Store) error {
		var err error
		out, err = st.Inventory().ListCategories(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (s *inventoryService) CreateCategory(ctx context.Context, claims model.Claims, in CategoryInput) (*model.Category, error) {
	return s.saveCategory(ctx, claims, "", in)
}

func (s *inventoryService) UpdateCategory(ctx context.Context, claims model.Claims, id string, in CategoryInput) (*model.Category, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return s.saveCategory(ctx, claims, id, in)
}

func (s *inventoryService) saveCategory(ctx context.Context, claims model.Claims, id string, in CategoryInput) (*model.Category, error) {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return nil, err
	}
	if err := validator.Validate(ctx, in); err != nil {
		return nil, err
	}
	c := &model.Category{ID: id, Name: strings.TrimSpace(in.Name), Description: in.Description}

	var out *model.Category
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		var err error
		if id == "" {
			c.ID = uuid.NewString()
			out, err = st.Inventory().CreateCategory(ctx, c)
			return err
		}
		out, err = st.Inventory().UpdateCategory(ctx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *inventoryService) DeleteCategory(ctx context.Context, claims model.Claims, id string) error {
	return s.deleteByID(ctx, claims, id, func(st repository.Store) error {
		return st.Inventory().DeleteCategory(ctx, id)
	})
}

func (s *inventoryService) ListContainers(ctx context.Context, claims model.Claims) ([]model.Container, error) {
	if err := requireRole(claims, model.RoleMember); err != nil {
		return nil, err
	}
	var out []model.Container
	err := s.Tx.InReadScope(ctx, claims, func(st repository.Store) error {
		var err error
		out, err = st.Inventory().ListContainers(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (s *inventoryService) CreateContainer(ctx context.Context, claims model.Claims, in ContainerInput) (*model.Container, error) {
	return s.saveContainer(ctx, claims, "", in)
}

func (s *inventoryService) UpdateContainer(ctx context.Context, claims model.Claims, id string, in ContainerInput) (*model.Container, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return s.saveContainer(ctx, claims, id, in)
}

func (s *inventoryService) saveContainer(ctx context.Context, claims model.Claims, id string, in ContainerInput) (*model.Container, error) {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return nil, err
	}
	if err := validator.Validate(ctx, in); err != nil {
		return nil, err
	}
	c := &model.Container{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Location:    strings.TrimSpace(in.Location),
		Description: in.Description,
	}

	var out *model.Container
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		var err error
		if id == "" {
			c.ID = uuid.NewString()
			out, err = st.Inventory().CreateContainer(ctx, c)
			return err
		}
		out, err = st.Inventory().UpdateContainer(ctx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *inventoryService) DeleteContainer(ctx context.Context, claims model.Claims, id string) error {
	return s.deleteByID(ctx, claims, id, func(st repository.Store) error {
		return st.Inventory().DeleteContainer(ctx, id)
	})
}

func (s *inventoryService) deleteByID(ctx context.Context, claims model.Claims, id string, del func(repository.Store) error) error {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return err
	}
	if err := requireID("id", id); err != nil {
		return err
	}
	return s.Tx.InScope(ctx, claims, del)
}

func (s *inventoryService) ListItems(ctx context.Context, claims model.Claims, f model.ItemFilter, limit, offset int) (*ListResult[model.Item], error) {
	if err := requireRole(claims, model.RoleMember); err != nil {
		return nil, err
	}
	if f.CategoryID != "" {
		if err := requireID("category_id", f.CategoryID); err != nil {
			return nil, err
		}
	}
	if f.ContainerID != "" {
		if err := requireID("container_id", f.ContainerID); err != nil {
			return nil, err
		}
	}
	f.Query = strings.TrimSpace(f.Query)

	var res *repository.PageResult[model.Item]
	err := s.Tx.InReadScope(ctx, claims, func(st repository.Store) error {
		var err error
		res, err = st.Inventory().ListItems(ctx, f, normalizePage(limit, offset))
		return err
	})
	if err != nil {
		return nil, err
	}
	return listResult(res), nil
}

func (s *inventoryService) GetItem(ctx context.Context, claims model.Claims, id string) (*model.Item, error) {
	if err := requireRole(claims, model.RoleMember); err != nil {
		return nil, err
	}
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	var it *model.Item
	err := s.Tx.InReadScope(ctx, claims, func(st repository.Store) error {
		var err error
		it, err = st.Inventory().FindItem(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (s *inventoryService) CreateItem(ctx context.Context, claims model.Claims, in ItemInput) (*model.Item, error) {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return nil, err
	}
	if err := validator.Validate(ctx, in); err != nil {
		return nil, err
	}
	now := s.now()
	it := &model.Item{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		CategoryID:  in.CategoryID,
		ContainerID: in.ContainerID,
		Quantity:    in.Quantity,
		MinQuantity: in.MinQuantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var out *model.Item
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		var err error
		out, err = st.Inventory().CreateItem(ctx, it)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *inventoryService) UpdateItem(ctx context.Context, claims model.Claims, id string, patch model.ItemPatch) (*model.Item, error) {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return nil, err
	}
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	var out *model.Item
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		it, err := st.Inventory().FindItemForUpdate(ctx, id)
		if err != nil {
			return err
		}
		patch.Apply(it)
		if err := validator.Validate(ctx, itemFields{
			Name:        it.Name,
			Description: it.Description,
			CategoryID:  deref(it.CategoryID),
			ContainerID: deref(it.ContainerID),
			MinQuantity: it.MinQuantity,
		}); err != nil {
			return err
		}
		it.UpdatedAt = s.now()
		out, err = st.Inventory().UpdateItem(ctx, it)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *inventoryService) DeleteItem(ctx context.Context, claims model.Claims, id string) error {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return err
	}
	if err := requireID("id", id); err != nil {
		return err
	}
	var photoKey string
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		it, err := st.Inventory().FindItemForUpdate(ctx, id)
		if err != nil {
			return err
		}
		photoKey = it.PhotoKey
		return st.Inventory().DeleteItem(ctx, id)
	})
	if err != nil {
		return err
	}
	s.removeObject(ctx, photoKey)
	return nil
}

func (s *inventoryService) Adjust(ctx context.Context, claims model.Claims, itemID string, in AdjustInput) (*AdjustResult, error) {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return nil, err
	}
	if err := requireID("item_id", itemID); err != nil {
		return nil, err
	}
	if err := validator.Validate(ctx, in); err != nil {
		return nil, err
	}
	now := s.now()

	res := &AdjustResult{}
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		it, err := st.Inventory().FindItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		next := it.Quantity + in.Delta
		if next < 0 {
			return fmt.Errorf("%w: only %d in stock", ErrConflict, it.Quantity)
		}
		it.Quantity = next
		it.UpdatedAt = now
		if res.Item, err = st.Inventory().UpdateItem(ctx, it); err != nil {
			return err
		}
		res.Adjustment, err = st.Inventory().CreateAdjustment(ctx, &model.Adjustment{
			ID:        uuid.NewString(),
			ItemID:    itemID,
			Delta:     in.Delta,
			Note:      strings.TrimSpace(in.Note),
			UserID:    claims.Subject,
			CreatedAt: now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.StockAdjusted()
	if res.Item.LowStock() {
		zerolog.Ctx(ctx).Info().
			Str("item_id", itemID).
			Int("quantity", res.Item.Quantity).
			Int("min_quantity", res.Item.MinQuantity).
			Msg("item is low on stock")
	}
	return res, nil
}

func (s *inventoryService) ListAdjustments(ctx context.Context, claims model.Claims, itemID string) ([]model.Adjustment, error) {
	if err := requireRole(claims, model.RoleMember); err != nil {
		return nil, err
	}
	if err := requireID("item_id", itemID); err != nil {
		return nil, err
	}
	var out []model.Adjustment
	err := s.Tx.InReadScope(ctx, claims, func(st repository.Store) error {
		if _, err := st.Inventory().FindItem(ctx, itemID); err != nil {
			return err
		}
		var err error
		out, err = st.Inventory().ListAdjustments(ctx, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (s *inventoryService) UploadPhoto(ctx context.Context, claims model.Claims, itemID string, r io.Reader, filename, contentType string, size int64) (*model.Item, error) {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return nil, err
	}
	if err := requireID("item_id", itemID); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrReaderNil
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: photo must be an image", ErrInvalidInput)
	}

	// Fail before uploading when the item is missing or hidden from the caller.
	if err := s.Tx.InReadScope(ctx, claims, func(st repository.Store) error {
		_, err := st.Inventory().FindItem(ctx, itemID)
		return err
	}); err != nil {
		return nil, err
	}

	key := storage.ObjectKey("inventory", itemID, filename)
	obj, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata:    map[string]string{"original-filename": filename},
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	var (
		out      *model.Item
		previous string
	)
	err = s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		it, err := st.Inventory().FindItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		previous = it.PhotoKey
		it.PhotoKey = obj.Key
		it.UpdatedAt = s.now()
		out, err = st.Inventory().UpdateItem(ctx, it)
		return err
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, obj.Key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	if previous != "" && previous != obj.Key {
		s.removeObject(ctx, previous)
	}
	return out, nil
}

func (s *inventoryService) PhotoURL(ctx context.Context, claims model.Claims, itemID string) (string, error) {
	it, err := s.GetItem(ctx, claims, itemID)
	if err != nil {
		return "", err
	}
	if it.PhotoKey == "" {
		return "", fmt.Errorf("%w: item has no photo", ErrNotFound)
	}
	url, err := s.store.PresignGet(ctx, it.PhotoKey, photoURLExpiry)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", fmt.Errorf("presign photo: %w", err)
	}
	return url, nil
}

// removeObject deletes an object that is no longer referenced. Failures only leave an orphan behind.
func (s *inventoryService) removeObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("delete orphaned photo")
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
