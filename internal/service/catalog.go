package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/avelin/stitchmart/internal/logging"
	"github.com/avelin/stitchmart/internal/models"
	"github.com/avelin/stitchmart/internal/repo"
)

// ProductIndex mirrors catalog writes into the search engine. A nil index
// disables mirroring.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
}

type CatalogService struct {
	Repo  *repo.GormRepo
	Index ProductIndex
}

// StockStatus derives display status from the per-size sum; the legacy
// aggregate counter is gone.
func StockStatus(p *models.Product) string {
	var total uint
	for _, s := range p.Sizes {
		total += s.Quantity
	}
	switch {
	case total == 0:
		return "out_of_stock"
	case total <= 5:
		return "low_stock"
	default:
		return "in_stock"
	}
}

type ProductInput struct {
	Name        string
	Description string
	Price       float64
	CategoryID  uint
	Images      []models.ProductImage
	Sizes       []models.ProductSize
}

func (in *ProductInput) validate() error {
	if in.Name == "" || in.Price <= 0 || in.CategoryID == 0 {
		return fmt.Errorf("%w: name, positive price and category required", ErrValidation)
	}
	seen := map[string]bool{}
	for _, s := range in.Sizes {
		if !models.ValidSize(s.Size) {
			return fmt.Errorf("%w: unknown size %q", ErrValidation, s.Size)
		}
		if seen[s.Size] {
			return fmt.Errorf("%w: duplicate size %q", ErrValidation, s.Size)
		}
		seen[s.Size] = true
	}
	return nil
}

func (s *CatalogService) mirror(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Error("product index failed", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.Repo.GetCategory(ctx, in.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %d", ErrNotFound, in.CategoryID)
		}
		return nil, err
	}

	product := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		Images:      in.Images,
		Sizes:       in.Sizes,
	}
	if err := s.Repo.CreateProduct(ctx, &product); err != nil {
		return nil, err
	}
	s.mirror(ctx, &product)
	return &product, nil
}

// UpdateProduct replaces the full image and size sets rather than diffing.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product", ErrNotFound)
		}
		return nil, err
	}

	product.Name = in.Name
	product.Description = in.Description
	product.Price = in.Price
	product.CategoryID = in.CategoryID
	product.Category = nil

	if err := s.Repo.ReplaceProduct(ctx, product, in.Images, in.Sizes); err != nil {
		return nil, err
	}
	s.mirror(ctx, product)
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product", ErrNotFound)
		}
		return err
	}
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Error("product unindex failed", "product_id", id, "error", err)
		}
	}
	return nil
}

// ToggleArchive flips the archive flag; archived products disappear from
// public listings but stay referenced by historical orders.
func (s *CatalogService) ToggleArchive(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.Repo.ToggleArchive(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product", ErrNotFound)
		}
		return nil, err
	}
	s.mirror(ctx, product)
	return product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product", ErrNotFound)
		}
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, f)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}
