package minds

import (
	"context"
	"encoding/json"

	"github.com/mindsdb/minds-go/pkg/apperrors"
	"github.com/mindsdb/minds-go/pkg/httpclient"
	"github.com/rs/zerolog"
)

// DatasourcesService manages datasources.
type DatasourcesService struct {
	http   httpclient.HTTPClientInterface
	logger zerolog.Logger
}

// Create creates a datasource and returns it. The service does not echo every field, so
// the result is cfg as sent.
func (s *DatasourcesService) Create(ctx context.Context, cfg DatabaseConfig) (*Datasource, error) {
	if err := ValidateDatabaseConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Tables == nil {
		cfg.Tables = []string{}
	}
	body, err := json.Marshal(cfg)
	if err != nil {
		return nil, apperrors.ErrValidation.MsgErr("unable to encode datasource", err)
	}
	if _, err := s.http.Post(ctx, datasourcesPath(), body); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("datasource", cfg.Name).Msg("datasource created")
	return &Datasource{DatabaseConfig: cfg}, nil
}

// CreateOrReplace deletes the datasource named cfg.Name if it exists, then creates it.
func (s *DatasourcesService) CreateOrReplace(ctx context.Context, cfg DatabaseConfig) (*Datasource, error) {
	if err := ValidateDatabaseConfig(cfg); err != nil {
		return nil, err
	}
	if err := s.Delete(ctx, cfg.Name); err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}
	return s.Create(ctx, cfg)
}

// List returns every datasource. It never returns a nil slice on success.
func (s *DatasourcesService) List(ctx context.Context) ([]Datasource, error) {
	rsp, err := s.http.Get(ctx, datasourcesPath())
	if err != nil {
		return nil, err
	}
	return decodeDatasources(rsp.Body)
}

// Get returns the named datasource. A missing datasource is reported as
// apperrors.ErrNotFound.
func (s *DatasourcesService) Get(ctx context.Context, name string) (*Datasource, error) {
	if err := ValidateName("name", name); err != nil {
		return nil, err
	}
	rsp, err := s.http.Get(ctx, datasourcePath(name))
	if err != nil {
		return nil, err
	}
	return decodeDatasource(rsp.Body)
}

// Update changes the mutable fields of the named datasource.
func (s *DatasourcesService) Update(ctx context.Context, name string, update DatasourceUpdate) error {
	if err := ValidateName("name", name); err != nil {
		return err
	}
	body, err := update.body()
	if err != nil {
		return apperrors.ErrValidation.MsgErr("unable to encode datasource update", err)
	}
	if _, err := s.http.Patch(ctx, datasourcePath(name), body); err != nil {
		return err
	}
	s.logger.Debug().Str("datasource", name).Msg("datasource updated")
	return nil
}

// Delete removes the named datasource.
func (s *DatasourcesService) Delete(ctx context.Context, name string) error {
	if err := ValidateName("name", name); err != nil {
		return err
	}
	if _, err := s.http.Delete(ctx, datasourcePath(name)); err != nil {
		return err
	}
	s.logger.Debug().Str("datasource", name).Msg("datasource deleted")
	return nil
}
