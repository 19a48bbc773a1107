package repository

import (
	"context"

	"github.com/feraben/crm-api/internal/models"
	"gorm.io/gorm"
)

// ClientRepository defines the interface for client data access
type ClientRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Client, error)
	Create(ctx context.Context, client *models.Client) error
	List(ctx context.Context, query *ListQuery) ([]models.Client, int64, error)
	FindByVendor(ctx context.Context, vendorID uint) ([]models.Client, error)
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) FindByID(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).Preload("Vendor").First(&client, id).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepository) List(ctx context.Context, query *ListQuery) ([]models.Client, int64, error) {
	var clients []models.Client
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Client{}).Where("active = ?", true)

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("business_name LIKE ? OR trade_name LIKE ? OR rut LIKE ?", search, search, search)
	}

	if vendor := query.Filters["vendor_id"]; vendor != "" {
		db = db.Where("vendor_id = ?", vendor)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query.normalize()
	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Order("business_name ASC").Find(&clients).Error
	return clients, total, err
}

func (r *clientRepository) FindByVendor(ctx context.Context, vendorID uint) ([]models.Client, error) {
	var clients []models.Client
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND active = ?", vendorID, true).
		Order("business_name ASC").
		Find(&clients).Error
	return clients, err
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

func (q *ListQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
}
