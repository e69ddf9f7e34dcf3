package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/avelin/stitchmart/internal/models"
)

type ProductFilter struct {
	Name            string
	CategoryID      uint
	MinPrice        *float64
	MaxPrice        *float64
	StockStatus     string
	IncludeArchived bool
	Offset          int
	Limit           int
}

const sizeSumSubquery = "(SELECT COALESCE(SUM(quantity), 0) FROM product_sizes WHERE product_sizes.product_id = products.id)"

func (r *GormRepo) productQuery(ctx context.Context, f ProductFilter) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if !f.IncludeArchived {
		q = q.Where("is_archived = ?", false)
	}
	if f.Name != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+f.Name+"%")
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	switch f.StockStatus {
	case "in_stock":
		q = q.Where(sizeSumSubquery + " > 0")
	case "low_stock":
		q = q.Where(sizeSumSubquery+" > 0 AND "+sizeSumSubquery+" <= ?", 5)
	case "out_of_stock":
		q = q.Where(sizeSumSubquery + " = 0")
	}
	return q
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) (int64, []models.Product, error) {
	var total int64
	if err := r.productQuery(ctx, f).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := r.productQuery(ctx, f).
		Preload("Category").Preload("Images").Preload("Sizes").
		Order("id ASC").Offset(f.Offset).Limit(f.Limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).
		Preload("Category").Preload("Images").Preload("Sizes").
		First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

// ReplaceProduct saves the product fields and swaps the complete image and
// size sets in one transaction. Update is replace-all, not a diff.
func (r *GormRepo) ReplaceProduct(ctx context.Context, p *models.Product, images []models.ProductImage, sizes []models.ProductSize) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Images", "Sizes").Save(p).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&models.ProductSize{}).Error; err != nil {
			return err
		}
		for i := range images {
			images[i].ID = 0
			images[i].ProductID = p.ID
		}
		for i := range sizes {
			sizes[i].ID = 0
			sizes[i].ProductID = p.ID
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}
		if len(sizes) > 0 {
			if err := tx.Create(&sizes).Error; err != nil {
				return err
			}
		}
		p.Images = images
		p.Sizes = sizes
		return nil
	})
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ToggleArchive(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	product.IsArchived = !product.IsArchived
	if err := r.DB.WithContext(ctx).Model(&product).
		Update("is_archived", product.IsArchived).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *GormRepo) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.DB.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *GormRepo) GetProductSize(ctx context.Context, productID uint, size string) (*models.ProductSize, error) {
	var row models.ProductSize
	if err := r.DB.WithContext(ctx).
		Where("product_id = ? AND size = ?", productID, size).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
