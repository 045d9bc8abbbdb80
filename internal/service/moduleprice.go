package service

import (
	"context"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/domain/moduleprice"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

// ModulePriceService manages the read-mostly module catalog. Listings are
// cached; any write flushes the catalog cache for the tenant.
type ModulePriceService interface {
	CreateModulePrice(ctx context.Context, req *dto.CreateModulePriceRequest) (*dto.ModulePriceResponse, error)
	GetModulePrice(ctx context.Context, id string) (*dto.ModulePriceResponse, error)
	UpdateModulePrice(ctx context.Context, id string, req *dto.UpdateModulePriceRequest) (*dto.ModulePriceResponse, error)
	DeleteModulePrice(ctx context.Context, id string) error
	ListModulePrices(ctx context.Context, filter *types.ModulePriceFilter) (*dto.ListModulePricesResponse, error)
	UploadLogo(ctx context.Context, id string, contentType string, data []byte) (*dto.ModulePriceResponse, error)
}

type modulePriceService struct {
	ServiceParams
}

func NewModulePriceService(params ServiceParams) ModulePriceService {
	return &modulePriceService{
		ServiceParams: params,
	}
}

func (s *modulePriceService) CreateModulePrice(ctx context.Context, req *dto.CreateModulePriceRequest) (*dto.ModulePriceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m := req.ToModulePrice(ctx)
	if err := s.ModulePriceRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	s.flushCatalogCache(ctx)
	return &dto.ModulePriceResponse{ModulePrice: m}, nil
}

func (s *modulePriceService) GetModulePrice(ctx context.Context, id string) (*dto.ModulePriceResponse, error) {
	m, err := s.ModulePriceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, m)
}

func (s *modulePriceService) UpdateModulePrice(ctx context.Context, id string, req *dto.UpdateModulePriceRequest) (*dto.ModulePriceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m, err := s.ModulePriceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.PriceMonth != nil {
		m.PriceMonth = *req.PriceMonth
	}
	if req.PriceYear != nil {
		m.PriceYear = *req.PriceYear
	}

	if err := s.ModulePriceRepo.Update(ctx, m); err != nil {
		return nil, err
	}

	s.flushCatalogCache(ctx)
	return s.toResponse(ctx, m)
}

func (s *modulePriceService) DeleteModulePrice(ctx context.Context, id string) error {
	if _, err := s.ModulePriceRepo.Get(ctx, id); err != nil {
		return err
	}
	if err := s.ModulePriceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.flushCatalogCache(ctx)
	return nil
}

// moduleCatalogPage is the cached form of a catalog listing. It holds raw
// rows only; presigned logo URLs are minted per read so a cached page never
// serves a URL past its signature expiry.
type moduleCatalogPage struct {
	Modules []*moduleprice.ModulePrice
	Total   int
}

func (s *modulePriceService) ListModulePrices(ctx context.Context, filter *types.ModulePriceFilter) (*dto.ListModulePricesResponse, error) {
	if filter == nil {
		filter = &types.ModulePriceFilter{QueryFilter: types.NewDefaultQueryFilter()}
	}

	cacheKey := cache.GenerateKey(cache.PrefixModulePrice,
		types.GetTenantID(ctx), filter.GetLimit(), filter.GetOffset())

	var page *moduleCatalogPage
	if filter.Name == nil {
		if cached, ok := s.Cache.Get(ctx, cacheKey); ok {
			if p, ok := cached.(*moduleCatalogPage); ok {
				page = p
			}
		}
	}

	if page == nil {
		modules, err := s.ModulePriceRepo.List(ctx, filter)
		if err != nil {
			return nil, err
		}

		total, err := s.ModulePriceRepo.Count(ctx, filter)
		if err != nil {
			return nil, err
		}

		page = &moduleCatalogPage{Modules: modules, Total: total}
		if filter.Name == nil {
			s.Cache.Set(ctx, cacheKey, page, cache.DefaultExpiration)
		}
	}

	items := make([]*dto.ModulePriceResponse, len(page.Modules))
	for i, m := range page.Modules {
		item, err := s.toResponse(ctx, m)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}

	resp := types.NewListResponse(items, page.Total, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

// UploadLogo stores the logo data and saves the object key on the catalog
// entry.
func (s *modulePriceService) UploadLogo(ctx context.Context, id string, contentType string, data []byte) (*dto.ModulePriceResponse, error) {
	if s.Storage == nil {
		return nil, ierr.NewError("file storage is not configured").
			WithHint("Logo uploads require file storage to be enabled").
			Mark(ierr.ErrInvalidOperation)
	}
	if len(data) == 0 {
		return nil, ierr.NewError("logo data is empty").
			WithHint("Please provide the logo file content").
			Mark(ierr.ErrValidation)
	}

	m, err := s.ModulePriceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	key, err := s.Storage.UploadLogo(ctx, m.ID, contentType, data)
	if err != nil {
		return nil, err
	}

	m.Logo = &key
	if err := s.ModulePriceRepo.Update(ctx, m); err != nil {
		return nil, err
	}

	s.flushCatalogCache(ctx)
	return s.toResponse(ctx, m)
}

// toResponse attaches a presigned logo URL when a logo is stored and
// storage is configured.
func (s *modulePriceService) toResponse(ctx context.Context, m *moduleprice.ModulePrice) (*dto.ModulePriceResponse, error) {
	resp := &dto.ModulePriceResponse{ModulePrice: m}
	if m.Logo != nil && s.Storage != nil {
		url, err := s.Storage.GetPresignedURL(ctx, *m.Logo)
		if err != nil {
			s.Logger.Warnw("failed to presign logo url", "error", err, "module_id", m.ID)
			return resp, nil
		}
		resp.LogoURL = &url
	}
	return resp, nil
}

func (s *modulePriceService) flushCatalogCache(ctx context.Context) {
	s.Cache.DeleteByPrefix(ctx, cache.GenerateKey(cache.PrefixModulePrice, types.GetTenantID(ctx)))
}
