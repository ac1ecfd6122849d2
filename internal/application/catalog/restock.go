package catalog

import (
	"context"

	"github.com/xiebiao/storefront/internal/domain/stock"
	"github.com/xiebiao/storefront/internal/domain/tx"
	"github.com/xiebiao/storefront/internal/domain/user"
	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// RestockUseCase 补货用例
// 补货也走库存台账: 锁行、加量、记restock流水, 保证审计完整
type RestockUseCase struct {
	ledger    *stock.Ledger
	txManager tx.Manager
}

// NewRestockUseCase 创建补货用例
func NewRestockUseCase(ledger *stock.Ledger, txManager tx.Manager) *RestockUseCase {
	return &RestockUseCase{
		ledger:    ledger,
		txManager: txManager,
	}
}

// RestockRequest 补货请求DTO
type RestockRequest struct {
	VariantID uint
	Quantity  int
	ActorID   uint
	ActorRole user.Role
}

// RestockResponse 补货响应DTO
type RestockResponse struct {
	VariantID    uint `json:"variant_id"`
	AvailableQty int  `json:"available_qty"`
}

// Execute 执行补货
func (uc *RestockUseCase) Execute(ctx context.Context, req RestockRequest) (*RestockResponse, error) {
	if !req.ActorRole.CanManageCatalog() {
		return nil, apperrors.ErrForbidden
	}

	var availableQty int
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		v, err := uc.ledger.Restock(txCtx, req.VariantID, req.Quantity, req.ActorID)
		if err != nil {
			return err
		}
		availableQty = v.AvailableQty
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &RestockResponse{
		VariantID:    req.VariantID,
		AvailableQty: availableQty,
	}, nil
}
