package service

import (
	"context"
	"errors"

	"github.com/UP220404/cielito-home-compras/internal/apierror"
	"github.com/UP220404/cielito-home-compras/internal/model"
	"github.com/UP220404/cielito-home-compras/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierDTO struct {
	Name          string `json:"name" binding:"required"`
	RFC           string `json:"rfc" binding:"required,min=12,max=13"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email" binding:"omitempty,email"`
	Address       string `json:"address"`
	PaymentTerms  string `json:"payment_terms"`
}

type SupplierService interface {
	Create(ctx context.Context, actor Actor, req SupplierDTO) (*model.Supplier, error)
	Update(ctx context.Context, actor Actor, id string, req SupplierDTO) (*model.Supplier, error)
	Deactivate(ctx context.Context, actor Actor, id string) error
	GetByID(ctx context.Context, id string) (*model.Supplier, error)
	List(ctx context.Context, activeOnly bool, page, limit int) ([]model.Supplier, int64, error)
}

type supplierService struct {
	repo repository.SupplierRepository
}

func NewSupplierService(repo repository.SupplierRepository) SupplierService {
	return &supplierService{repo: repo}
}

func requirePurchaser(actor Actor) error {
	if actor.Role != model.RoleComprador && actor.Role != model.RoleAdmin {
		return apierror.Authorization("solo un comprador o administrador puede gestionar proveedores")
	}
	return nil
}

func (s *supplierService) Create(ctx context.Context, actor Actor, req SupplierDTO) (*model.Supplier, error) {
	if err := requirePurchaser(actor); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByRFC(ctx, req.RFC); err == nil {
		return nil, apierror.Conflict("ya existe un proveedor con el RFC %s", req.RFC)
	}

	supplier := &model.Supplier{
		Name:          req.Name,
		RFC:           req.RFC,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		PaymentTerms:  req.PaymentTerms,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, supplier); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("ya existe un proveedor con el RFC %s", req.RFC)
		}
		return nil, err
	}
	return supplier, nil
}

func (s *supplierService) Update(ctx context.Context, actor Actor, id string, req SupplierDTO) (*model.Supplier, error) {
	if err := requirePurchaser(actor); err != nil {
		return nil, err
	}
	supplierID, err := uuid.Parse(id)
	if err != nil {
		return nil, apierror.Validation("id de proveedor inválido")
	}

	supplier, err := s.repo.GetByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("proveedor no encontrado")
		}
		return nil, err
	}

	if req.RFC != supplier.RFC {
		if _, err := s.repo.GetByRFC(ctx, req.RFC); err == nil {
			return nil, apierror.Conflict("ya existe un proveedor con el RFC %s", req.RFC)
		}
	}

	supplier.Name = req.Name
	supplier.RFC = req.RFC
	supplier.ContactPerson = req.ContactPerson
	supplier.Phone = req.Phone
	supplier.Email = req.Email
	supplier.Address = req.Address
	supplier.PaymentTerms = req.PaymentTerms

	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// Deactivate retires a supplier from new quotations without touching its
// existing quotations or orders.
func (s *supplierService) Deactivate(ctx context.Context, actor Actor, id string) error {
	if err := requirePurchaser(actor); err != nil {
		return err
	}
	supplierID, err := uuid.Parse(id)
	if err != nil {
		return apierror.Validation("id de proveedor inválido")
	}
	if _, err := s.repo.GetByID(ctx, supplierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("proveedor no encontrado")
		}
		return err
	}
	return s.repo.Deactivate(ctx, supplierID)
}

func (s *supplierService) GetByID(ctx context.Context, id string) (*model.Supplier, error) {
	supplierID, err := uuid.Parse(id)
	if err != nil {
		return nil, apierror.Validation("id de proveedor inválido")
	}
	supplier, err := s.repo.GetByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("proveedor no encontrado")
		}
		return nil, err
	}
	return supplier, nil
}

func (s *supplierService) List(ctx context.Context, activeOnly bool, page, limit int) ([]model.Supplier, int64, error) {
	return s.repo.List(ctx, activeOnly, page, limit)
}
