package http

import (
	"fmt"

	"github.com/jhoicas/erp-inventario/internal/application/documents"
	"github.com/jhoicas/erp-inventario/internal/application/dto"
	"github.com/jhoicas/erp-inventario/internal/domain"
	"github.com/jhoicas/erp-inventario/internal/domain/entity"
)

func toItemInputs(in []dto.DocumentItemRequest) ([]documents.ItemInput, error) {
	out := make([]documents.ItemInput, 0, len(in))
	for i, it := range in {
		exp, err := dto.ParseDate(it.ExpirationDate)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %v: %w", i+1, err, domain.ErrInvalidInput)
		}
		out = append(out, documents.ItemInput{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			SerialNumbers:  it.SerialNumbers,
			LotCode:        it.LotCode,
			ExpirationDate: exp,
		})
	}
	return out, nil
}

func toCreateInput(req dto.CreateDocumentRequest) (documents.CreateInput, error) {
	items, err := toItemInputs(req.Items)
	if err != nil {
		return documents.CreateInput{}, err
	}
	in := documents.CreateInput{
		WarehouseID:   req.WarehouseID,
		PartnerID:     req.PartnerID,
		Currency:      req.Currency,
		PaymentType:   req.PaymentType,
		InvoiceNumber: req.InvoiceNumber,
		Comment:       req.Comment,
		Items:         items,
	}
	date, err := dto.ParseDate(req.DocumentDate)
	if err != nil {
		return documents.CreateInput{}, fmt.Errorf("document_date: %v: %w", err, domain.ErrInvalidInput)
	}
	if date != nil {
		in.DocumentDate = *date
	}
	return in, nil
}

func toUpdateInput(req dto.UpdateDocumentRequest) (documents.UpdateInput, error) {
	in := documents.UpdateInput{
		WarehouseID:   req.WarehouseID,
		PartnerID:     req.PartnerID,
		Currency:      req.Currency,
		PaymentType:   req.PaymentType,
		InvoiceNumber: req.InvoiceNumber,
		Comment:       req.Comment,
	}
	if req.DocumentDate != nil {
		date, err := dto.ParseDate(*req.DocumentDate)
		if err != nil || date == nil {
			return documents.UpdateInput{}, fmt.Errorf("document_date inválida: %w", domain.ErrInvalidInput)
		}
		in.DocumentDate = date
	}
	if req.Items != nil {
		items, err := toItemInputs(*req.Items)
		if err != nil {
			return documents.UpdateInput{}, err
		}
		in.Items = &items
	}
	return in, nil
}

func toAllocationDTOs(in []entity.Allocation) []dto.AllocationDTO {
	out := make([]dto.AllocationDTO, 0, len(in))
	for _, a := range in {
		out = append(out, dto.AllocationDTO{
			Kind:     string(a.Discriminator.Kind),
			Value:    a.Discriminator.Value,
			Quantity: a.Quantity,
		})
	}
	return out
}

func toDocumentResponse(doc *entity.Document) dto.DocumentResponse {
	items := make([]dto.DocumentItemResponse, 0, len(doc.Items))
	for _, it := range doc.Items {
		r := dto.DocumentItemResponse{
			ID:             it.ID,
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			LineTotal:      it.LineTotal,
			SerialNumbers:  it.SerialNumbers,
			LotCode:        it.LotCode,
			ExpirationDate: dto.FormatDate(it.ExpirationDate),
		}
		if len(it.Allocations) > 0 {
			r.Allocations = toAllocationDTOs(it.Allocations)
		}
		items = append(items, r)
	}
	return dto.DocumentResponse{
		ID:                 doc.ID,
		Kind:               string(doc.Kind),
		Status:             string(doc.Status),
		WarehouseID:        doc.WarehouseID,
		PartnerID:          doc.PartnerID,
		DocumentDate:       doc.DocumentDate,
		Currency:           doc.Currency,
		PaymentType:        doc.PaymentType,
		InvoiceNumber:      doc.InvoiceNumber,
		Comment:            doc.Comment,
		Items:              items,
		TotalAmount:        doc.TotalAmount,
		TotalQuantity:      doc.TotalQuantity,
		CreatedBy:          doc.CreatedBy,
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
		ConfirmedBy:        doc.ConfirmedBy,
		ConfirmedAt:        doc.ConfirmedAt,
		CancelledBy:        doc.CancelledBy,
		CancelledAt:        doc.CancelledAt,
		CancellationReason: doc.CancellationReason,
	}
}

func toStockRecordDTOs(in []*entity.StockRecord) []dto.StockRecordDTO {
	out := make([]dto.StockRecordDTO, 0, len(in))
	for _, r := range in {
		out = append(out, dto.StockRecordDTO{
			ID:                 r.ID,
			ProductID:          r.ProductID,
			WarehouseID:        r.WarehouseID,
			DiscriminatorKind:  string(r.Discriminator.Kind),
			DiscriminatorValue: r.Discriminator.Value,
			Quantity:           r.Quantity,
			UpdatedAt:          r.UpdatedAt,
		})
	}
	return out
}
