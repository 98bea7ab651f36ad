package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/internal/dto"
	"github.com/prperemyshlev/wms-server/internal/repository"
)

// inventoryService implements InventoryService interface
type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	audit         AuditService
}

// NewInventoryService creates a new inventory service
func NewInventoryService(inventoryRepo repository.InventoryRepository, audit AuditService) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		audit:         audit,
	}
}

func (s *inventoryService) Create(ctx context.Context, req *dto.CreateInventoryRequest, actor domain.Actor) (*domain.InventoryItem, error) {
	itemCode := strings.TrimSpace(req.ItemCode)

	exists, err := s.inventoryRepo.ExistsByItemCode(ctx, itemCode)
	if err != nil {
		return nil, translate(err, "failed to check item code")
	}
	if exists {
		return nil, fmt.Errorf("item %s: %w", itemCode, ErrDuplicateItemCode)
	}

	if req.Quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative: %w", ErrBadRequest)
	}

	item := &domain.InventoryItem{
		ItemName:  strings.TrimSpace(req.ItemName),
		ItemCode:  itemCode,
		Quantity:  req.Quantity,
		Location:  req.Location,
		QRCode:    req.QRCode,
		CreatedBy: actor.Name,
		UpdatedBy: actor.Name,
	}

	if err := s.inventoryRepo.Create(ctx, item); err != nil {
		return nil, translate(err, "failed to create inventory item")
	}

	s.audit.Record(ctx, actor, domain.ActionCreate, domain.EntityInventory, &item.ID,
		fmt.Sprintf("created %s (%s) with quantity %d", item.ItemName, item.ItemCode, item.Quantity))

	return item, nil
}

func (s *inventoryService) Get(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	item, err := s.inventoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to get inventory item")
	}
	return item, nil
}

func (s *inventoryService) GetByItemCode(ctx context.Context, itemCode string) (*domain.InventoryItem, error) {
	item, err := s.inventoryRepo.GetByItemCode(ctx, itemCode)
	if err != nil {
		return nil, translate(err, "failed to get inventory item")
	}
	return item, nil
}

func (s *inventoryService) FindByQRCode(ctx context.Context, qrCode string) (*domain.InventoryItem, error) {
	item, err := s.inventoryRepo.GetByQRCode(ctx, qrCode)
	if err != nil {
		return nil, translate(err, "failed to get inventory item")
	}
	return item, nil
}

func (s *inventoryService) List(ctx context.Context) ([]*domain.InventoryItem, error) {
	items, err := s.inventoryRepo.ListActive(ctx)
	if err != nil {
		return nil, translate(err, "failed to list inventory")
	}
	return items, nil
}

func (s *inventoryService) SearchByLocation(ctx context.Context, location string) ([]*domain.InventoryItem, error) {
	items, err := s.inventoryRepo.SearchByLocation(ctx, strings.TrimSpace(location))
	if err != nil {
		return nil, translate(err, "failed to search inventory")
	}
	return items, nil
}

func (s *inventoryService) SearchByName(ctx context.Context, name string) ([]*domain.InventoryItem, error) {
	items, err := s.inventoryRepo.SearchByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, translate(err, "failed to search inventory")
	}
	return items, nil
}

// LowStock lists items at or below threshold
func (s *inventoryService) LowStock(ctx context.Context, threshold int) ([]*domain.InventoryItem, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("threshold must not be negative: %w", ErrBadRequest)
	}

	items, err := s.inventoryRepo.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, translate(err, "failed to list low stock")
	}
	return items, nil
}

func (s *inventoryService) Count(ctx context.Context) (int64, error) {
	n, err := s.inventoryRepo.CountActive(ctx)
	if err != nil {
		return 0, translate(err, "failed to count inventory")
	}
	return n, nil
}

// Update applies the non-nil fields of req, re-checking item code uniqueness when it changes
func (s *inventoryService) Update(ctx context.Context, id int64, req *dto.UpdateInventoryRequest, actor domain.Actor) (*domain.InventoryItem, error) {
	item, err := s.inventoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to get inventory item")
	}

	if req.ItemCode != nil {
		itemCode := strings.TrimSpace(*req.ItemCode)
		if itemCode != item.ItemCode {
			exists, err := s.inventoryRepo.ExistsByItemCode(ctx, itemCode)
			if err != nil {
				return nil, translate(err, "failed to check item code")
			}
			if exists {
				return nil, fmt.Errorf("item %s: %w", itemCode, ErrDuplicateItemCode)
			}
			item.ItemCode = itemCode
		}
	}
	if req.ItemName != nil {
		item.ItemName = strings.TrimSpace(*req.ItemName)
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, fmt.Errorf("quantity must not be negative: %w", ErrBadRequest)
		}
		item.Quantity = *req.Quantity
	}
	if req.Location != nil {
		item.Location = req.Location
	}
	if req.QRCode != nil {
		item.QRCode = req.QRCode
	}

	item.UpdatedBy = actor.Name
	if err := s.inventoryRepo.Update(ctx, item); err != nil {
		return nil, translate(err, "failed to update inventory item")
	}

	s.audit.Record(ctx, actor, domain.ActionUpdate, domain.EntityInventory, &item.ID, "updated "+item.ItemCode)

	return item, nil
}

// SetQuantity replaces an item's quantity
func (s *inventoryService) SetQuantity(ctx context.Context, id int64, quantity int, actor domain.Actor) (*domain.InventoryItem, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative: %w", ErrBadRequest)
	}

	item, err := s.inventoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to get inventory item")
	}

	previous := item.Quantity
	item.Quantity = quantity
	item.UpdatedBy = actor.Name
	if err := s.inventoryRepo.Update(ctx, item); err != nil {
		return nil, translate(err, "failed to update quantity")
	}

	s.audit.Record(ctx, actor, domain.ActionUpdate, domain.EntityInventory, &item.ID,
		fmt.Sprintf("quantity %d -> %d", previous, quantity))

	return item, nil
}

// AdjustQuantity adds delta to an item's quantity, refusing to go below zero
func (s *inventoryService) AdjustQuantity(ctx context.Context, id int64, delta int, actor domain.Actor) (*domain.InventoryItem, error) {
	if delta == 0 {
		return nil, fmt.Errorf("adjustment must not be zero: %w", ErrBadRequest)
	}

	item, err := s.inventoryRepo.AdjustQuantity(ctx, id, delta, actor.Name)
	if err != nil {
		return nil, translate(err, "failed to adjust quantity")
	}

	s.audit.Record(ctx, actor, domain.ActionAdjustQuantity, domain.EntityInventory, &item.ID,
		fmt.Sprintf("adjusted by %+d to %d", delta, item.Quantity))

	return item, nil
}

// Delete soft-deletes an item
func (s *inventoryService) Delete(ctx context.Context, id int64, actor domain.Actor) error {
	item, err := s.inventoryRepo.GetByID(ctx, id)
	if err != nil {
		return translate(err, "failed to get inventory item")
	}

	item.Deleted = true
	item.UpdatedBy = actor.Name
	if err := s.inventoryRepo.Update(ctx, item); err != nil {
		return translate(err, "failed to delete inventory item")
	}

	s.audit.Record(ctx, actor, domain.ActionDelete, domain.EntityInventory, &item.ID, "deleted "+item.ItemCode)

	return nil
}
