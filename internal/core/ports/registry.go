package ports

import (
	"context"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
)

// DzongkhagRepository persists dzongkhags.
type DzongkhagRepository interface {
	Create(ctx context.Context, d *domain.Dzongkhag) (*domain.Dzongkhag, error)
	FindByID(ctx context.Context, id string) (*domain.Dzongkhag, error)
	FindAll(ctx context.Context) ([]*domain.Dzongkhag, error)
	UpdateByID(ctx context.Context, id string, patch domain.DzongkhagPatch) (*domain.Dzongkhag, error)
	DeleteByID(ctx context.Context, id string) error
}

// GewogRepository persists gewogs. Reads populate the parent dzongkhag.
type GewogRepository interface {
	Create(ctx context.Context, g *domain.Gewog) (*domain.Gewog, error)
	FindByID(ctx context.Context, id string) (*domain.Gewog, error)
	// FindAll lists gewogs, restricted to one dzongkhag when dzongkhagID is
	// non-empty.
	FindAll(ctx context.Context, dzongkhagID string) ([]*domain.Gewog, error)
	UpdateByID(ctx context.Context, id string, patch domain.GewogPatch) (*domain.Gewog, error)
	DeleteByID(ctx context.Context, id string) error
	CountByDzongkhag(ctx context.Context, dzongkhagID string) (int64, error)
}

// ConsumerFilter carries the list query. The service normalises paging and
// sorting before it reaches the repository.
type ConsumerFilter struct {
	GewogID        string
	Status         string
	TariffCategory string
	Search         string // case-insensitive match on household head name or cid
	SortBy         string
	Ascending      bool
	Page           int
	Limit          int
}

// ConsumerRepository persists consumers. Reads populate household head and
// gewog.
type ConsumerRepository interface {
	Create(ctx context.Context, c *domain.Consumer) (*domain.Consumer, error)
	FindByID(ctx context.Context, id string) (*domain.Consumer, error)
	List(ctx context.Context, filter ConsumerFilter) ([]*domain.Consumer, int64, error)
	UpdateByID(ctx context.Context, id string, patch domain.ConsumerPatch) (*domain.Consumer, error)
	DeleteByID(ctx context.Context, id string) error
	CountByGewog(ctx context.Context, gewogID string) (int64, error)
}

// ListConsumersInput is the raw list query from the transport layer.
type ListConsumersInput struct {
	GewogID        string
	Status         string
	TariffCategory string
	Search         string
	SortBy         string
	Order          string
	Page           int
	Limit          int
}

// ListConsumersResult is one page of consumers.
type ListConsumersResult struct {
	Items      []*domain.Consumer
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// DzongkhagService is the dzongkhag use-case boundary.
type DzongkhagService interface {
	Create(ctx context.Context, d *domain.Dzongkhag) (*domain.Dzongkhag, error)
	Get(ctx context.Context, id string) (*domain.Dzongkhag, error)
	List(ctx context.Context) ([]*domain.Dzongkhag, error)
	Update(ctx context.Context, id string, patch domain.DzongkhagPatch) (*domain.Dzongkhag, error)
	Delete(ctx context.Context, id string) error
}

// GewogService is the gewog use-case boundary.
type GewogService interface {
	Create(ctx context.Context, g *domain.Gewog) (*domain.Gewog, error)
	Get(ctx context.Context, id string) (*domain.Gewog, error)
	List(ctx context.Context, dzongkhagID string) ([]*domain.Gewog, error)
	Update(ctx context.Context, id string, patch domain.GewogPatch) (*domain.Gewog, error)
	Delete(ctx context.Context, id string) error
}

// ConsumerService is the consumer use-case boundary.
type ConsumerService interface {
	Create(ctx context.Context, c *domain.Consumer) (*domain.Consumer, error)
	Get(ctx context.Context, id string) (*domain.Consumer, error)
	List(ctx context.Context, input ListConsumersInput) (*ListConsumersResult, error)
	Update(ctx context.Context, id string, patch domain.ConsumerPatch) (*domain.Consumer, error)
	Delete(ctx context.Context, id string) error
}
