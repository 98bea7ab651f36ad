// Package mapper converts domain entities into wire DTOs.
package mapper

import (
	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/internal/dto"
)

func ToUserResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Nickname:  u.Nickname,
		Name:      u.Name,
		Role:      string(u.Role),
		Provider:  u.Provider,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		CreatedBy: u.CreatedBy,
		UpdatedBy: u.UpdatedBy,
		Deleted:   u.Deleted,
	}
}

func ToUserResponses(users []*domain.User) []dto.UserResponse {
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out
}

func ToInventoryResponse(i *domain.InventoryItem) dto.InventoryResponse {
	return dto.InventoryResponse{
		ID:        i.ID,
		ItemName:  i.ItemName,
		ItemCode:  i.ItemCode,
		Quantity:  i.Quantity,
		Location:  i.Location,
		QRCode:    i.QRCode,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
		CreatedBy: i.CreatedBy,
		UpdatedBy: i.UpdatedBy,
	}
}

func ToInventoryResponses(items []*domain.InventoryItem) []dto.InventoryResponse {
	out := make([]dto.InventoryResponse, 0, len(items))
	for _, i := range items {
		out = append(out, ToInventoryResponse(i))
	}
	return out
}

// ToOrderResponse places PartyID under supplierId or customerId depending on the order kind
func ToOrderResponse(o *domain.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:            o.ID,
		Kind:          string(o.Kind),
		OrderNumber:   o.OrderNumber,
		Status:        string(o.Status),
		TotalQuantity: o.TotalQuantity,
		UserID:        o.UserID,
		ProcessedAt:   o.ProcessedAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		CreatedBy:     o.CreatedBy,
		UpdatedBy:     o.UpdatedBy,
	}

	party := o.PartyID
	if o.Kind == domain.OrderInbound {
		resp.SupplierID = &party
	} else {
		resp.CustomerID = &party
	}

	return resp
}

func ToOrderResponses(orders []*domain.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToOrderResponse(o))
	}
	return out
}

func ToAuditLogResponse(l *domain.AuditLog) dto.AuditLogResponse {
	return dto.AuditLogResponse{
		ID:         l.ID,
		Action:     l.Action,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		UserID:     l.UserID,
		Details:    l.Details,
		Timestamp:  l.Timestamp,
		CreatedBy:  l.CreatedBy,
	}
}

func ToAuditLogResponses(entries []*domain.AuditLog) []dto.AuditLogResponse {
	out := make([]dto.AuditLogResponse, 0, len(entries))
	for _, l := range entries {
		out = append(out, ToAuditLogResponse(l))
	}
	return out
}
