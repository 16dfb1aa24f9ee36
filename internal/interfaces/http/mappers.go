package http

import (
	"github.com/tu-usuario/farmacore-api/internal/application/dto"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
)

func toMovementRequestResponse(req *entity.MovementRequest) dto.MovementRequestResponse {
	items := make([]dto.MovementRequestItemResponse, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, dto.MovementRequestItemResponse{
			ID:                   it.ID,
			ProductID:            it.ProductID,
			PresentationID:       it.PresentationID,
			PresentationQuantity: it.PresentationQuantity,
			RequestedQuantity:    it.RequestedQuantity,
			RemainingQuantity:    it.RemainingQuantity,
		})
	}
	return dto.MovementRequestResponse{
		ID:                 req.ID,
		WarehouseID:        req.WarehouseID,
		LocationID:         req.LocationID,
		RequestedCity:      req.RequestedCity,
		RequestedByName:    req.RequestedByName,
		Status:             req.Status,
		ConfirmationStatus: req.ConfirmationStatus,
		CreatedAt:          req.CreatedAt,
		FulfilledAt:        req.FulfilledAt,
		Items:              items,
	}
}

func toStockMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:              m.ID,
		ProductID:       m.ProductID,
		BatchID:         m.BatchID,
		FromLocationID:  m.FromLocationID,
		ToLocationID:    m.ToLocationID,
		Quantity:        m.Quantity,
		PendingQuantity: m.PendingQuantity,
		ReferenceType:   m.ReferenceType,
		ReferenceID:     m.ReferenceID,
		CreatedAt:       m.CreatedAt,
		CreatedBy:       m.CreatedBy,
	}
}

func toStockMovementResponses(movements []*entity.StockMovement) []dto.StockMovementResponse {
	out := make([]dto.StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toStockMovementResponse(m))
	}
	return out
}

func toBalanceResponse(b *entity.Balance) dto.BalanceResponse {
	return dto.BalanceResponse{
		ProductID:         b.ProductID,
		BatchID:           b.BatchID,
		LocationID:        b.LocationID,
		Quantity:          b.Quantity,
		ReservedQuantity:  b.ReservedQuantity,
		AvailableQuantity: b.AvailableQuantity(),
	}
}

func toStockReturnResponse(ret *entity.StockReturn) dto.StockReturnResponse {
	items := make([]dto.StockReturnItemResponse, 0, len(ret.Items))
	for _, it := range ret.Items {
		items = append(items, dto.StockReturnItemResponse{
			ID:            it.ID,
			ProductID:     it.ProductID,
			BatchID:       it.BatchID,
			OutMovementID: it.OutMovementID,
			Quantity:      it.Quantity,
		})
	}
	return dto.StockReturnResponse{
		ID:           ret.ID,
		RequestID:    ret.RequestID,
		ToLocationID: ret.ToLocationID,
		Reason:       ret.Reason,
		EvidenceURL:  ret.EvidenceURL,
		CreatedAt:    ret.CreatedAt,
		Items:        items,
	}
}
