// Package catalog manages the products users can buy.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/repositories/cache"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrProductNotFound = repositories.ErrProductNotFound
	ErrInvalidProduct  = errors.New("name, price and description are required")
)

// ListCacheTTL bounds how long a cached product list may be served.
const ListCacheTTL = 5 * time.Minute

var listKey = cache.GenerateKey("catalog", "list", "all")

// Cache is the subset of the redis cache used for the product list.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Service interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id uint) (*models.Product, error)
	Add(ctx context.Context, name string, price decimal.Decimal, description string) (*models.Product, error)
}

type service struct {
	repo  repositories.ProductRepository
	cache Cache
	log   *zap.Logger
}

// NewService creates a catalog service. The cache is optional.
func NewService(repo repositories.ProductRepository, c Cache, log *zap.Logger) Service {
	if repo == nil {
		panic("repo is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		repo:  repo,
		cache: c,
		log:   log,
	}
}

func (s *service) List(ctx context.Context) ([]models.Product, error) {
	if s.cache != nil {
		var products []models.Product
		found, err := s.cache.Get(ctx, listKey, &products)
		if err != nil {
			s.log.Warn("catalog cache read failed", zap.Error(err))
		}
		if found {
			return products, nil
		}
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, listKey, products, ListCacheTTL); err != nil {
			s.log.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return products, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Add(ctx context.Context, name string, price decimal.Decimal, description string) (*models.Product, error) {
	product := &models.Product{
		Name:        strings.TrimSpace(name),
		Price:       price,
		Description: strings.TrimSpace(description),
	}
	if err := Validate(product); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, listKey); err != nil {
			s.log.Warn("catalog cache invalidation failed", zap.Error(err))
		}
	}
	return product, nil
}

// Validate checks the fields of a new product.
func Validate(p *models.Product) error {
	if p.Name == "" || p.Description == "" {
		return ErrInvalidProduct
	}
	if len(p.Name) > 100 || len(p.Description) > 255 {
		return fmt.Errorf("%w: name or description too long", ErrInvalidProduct)
	}
	if !p.Price.IsPositive() || !p.Price.Equal(p.Price.Round(2)) {
		return fmt.Errorf("%w: price must be positive with at most two decimals", ErrInvalidProduct)
	}
	return nil
}

// LoadProducts reads a JSON array of products from path.
func LoadProducts(path string) ([]models.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse products: %w", err)
	}
	for i := range products {
		if err := Validate(&products[i]); err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
	}
	return products, nil
}
