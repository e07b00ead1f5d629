package services

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/cache"
	"ecobazaar/internal/carbon"
	"ecobazaar/internal/models"
	"ecobazaar/internal/repositories"

	"github.com/google/uuid"
)

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// NewProductInput describes a product to list, with its eco inputs.
type NewProductInput struct {
	Product   models.Product
	EcoInputs carbon.EcoInputs
}

// CatalogService handles product listing and cached lookups.
type CatalogService struct {
	repo   repositories.ProductRepository
	engine *carbon.Engine
	cache  cache.Cache
	ttl    time.Duration
}

// NewCatalogService creates a new CatalogService. c may be nil to disable
// caching.
func NewCatalogService(repo repositories.ProductRepository, engine *carbon.Engine, c cache.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{
		repo:   repo,
		engine: engine,
		cache:  c,
		ttl:    ttl,
	}
}

// Slugify lowercases name and joins its words with dashes.
func Slugify(name string) string {
	return strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// CreateProduct lists a product for the calling seller, deriving its
// footprint and per-item savings from the eco inputs.
func (s *CatalogService) CreateProduct(ctx context.Context, who models.Identity, in NewProductInput) (*models.Product, error) {
	if !who.Role.Can(models.CapManageCatalog) {
		return nil, apperrors.Unauthorized("role %s cannot manage the catalog", who.Role)
	}
	if in.Product.Price.Sign() <= 0 {
		return nil, apperrors.Validation("price must be positive")
	}

	product := in.Product
	product.ID = uuid.New().String()
	product.SellerID = who.UserID
	product.CarbonFootprintPerUnit = s.engine.Footprint(in.EcoInputs)
	product.CarbonSavedPerItem = s.engine.SavedPerItem(product.CategoryName, product.CarbonFootprintPerUnit)
	product.Slug = Slugify(product.Name) + "-" + product.ID[:8]

	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProduct returns a product by ID, read through the cache.
func (s *CatalogService) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.cached(ctx, "product:id:"+id, func() (*models.Product, error) {
		return s.repo.GetByID(ctx, id)
	})
}

// FindProductBySlug returns a product by slug, read through the cache.
func (s *CatalogService) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.cached(ctx, "product:slug:"+slug, func() (*models.Product, error) {
		return s.repo.GetBySlug(ctx, slug)
	})
}

func (s *CatalogService) cached(ctx context.Context, key string, load func() (*models.Product, error)) (*models.Product, error) {
	if s.cache != nil {
		var product models.Product
		err := cache.GetJSON(ctx, s.cache, key, &product)
		if err == nil {
			return &product, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			log.Printf("Error reading cache key %s: %v", key, err)
		}
	}

	product, err := load()
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, product, s.ttl); err != nil {
			log.Printf("Error writing cache key %s: %v", key, err)
		}
	}
	return product, nil
}
