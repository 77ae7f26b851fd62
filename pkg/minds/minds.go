package minds

import (
	"context"

	"github.com/mindsdb/minds-go/pkg/apperrors"
	"github.com/mindsdb/minds-go/pkg/httpclient"
	"github.com/rs/zerolog"
	"github.com/tidwall/sjson"
)

// MindsService manages the minds of one project.
type MindsService struct {
	http        httpclient.HTTPClientInterface
	project     string
	completions *completer
	logger      zerolog.Logger
}

// Project returns the project the service operates on.
func (s *MindsService) Project() string {
	return s.project
}

// Create creates a mind and returns it as stored by the service.
func (s *MindsService) Create(ctx context.Context, req CreateMindRequest) (*Mind, error) {
	if err := validateMindRequest(req); err != nil {
		return nil, err
	}
	body, err := req.body()
	if err != nil {
		return nil, apperrors.ErrValidation.MsgErr("unable to encode mind", err)
	}
	if _, err := s.http.Post(ctx, mindsPath(s.project), body); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("mind", req.Name).Msg("mind created")
	return s.Get(ctx, req.Name)
}

// List returns every mind in the project. It never returns a nil slice on success.
func (s *MindsService) List(ctx context.Context) ([]Mind, error) {
	rsp, err := s.http.Get(ctx, mindsPath(s.project))
	if err != nil {
		return nil, err
	}
	return decodeMinds(rsp.Body)
}

// Get returns the named mind. A missing mind is reported as apperrors.ErrNotFound.
func (s *MindsService) Get(ctx context.Context, name string) (*Mind, error) {
	if err := ValidateName("name", name); err != nil {
		return nil, err
	}
	rsp, err := s.http.Get(ctx, mindPath(s.project, name))
	if err != nil {
		return nil, err
	}
	return decodeMind(rsp.Body)
}

// Update changes the named mind. Only the non-zero fields of req are sent.
func (s *MindsService) Update(ctx context.Context, name string, req UpdateMindRequest) error {
	if err := ValidateName("name", name); err != nil {
		return err
	}
	body, err := req.body()
	if err != nil {
		return apperrors.ErrValidation.MsgErr("unable to encode mind update", err)
	}
	if _, err := s.http.Patch(ctx, mindPath(s.project, name), body); err != nil {
		return err
	}
	s.logger.Debug().Str("mind", name).Msg("mind updated")
	return nil
}

// Delete removes the named mind.
func (s *MindsService) Delete(ctx context.Context, name string) error {
	if err := ValidateName("name", name); err != nil {
		return err
	}
	if _, err := s.http.Delete(ctx, mindPath(s.project, name)); err != nil {
		return err
	}
	s.logger.Debug().Str("mind", name).Msg("mind deleted")
	return nil
}

// AddDatasource attaches an existing datasource to a mind. With checkConnection the
// service verifies the datasource is reachable first.
func (s *MindsService) AddDatasource(ctx context.Context, mindName, datasourceName string, checkConnection bool) error {
	if err := ValidateName("mind", mindName); err != nil {
		return err
	}
	if err := ValidateName("datasource", datasourceName); err != nil {
		return err
	}
	body, err := sjson.SetBytes([]byte(`{}`), "name", datasourceName)
	if err == nil {
		body, err = sjson.SetBytes(body, checkConnectionKey, checkConnection)
	}
	if err != nil {
		return apperrors.ErrValidation.MsgErr("unable to encode datasource reference", err)
	}
	if _, err := s.http.Post(ctx, mindDatasourcesPath(s.project, mindName), body); err != nil {
		return err
	}
	s.logger.Debug().Str("mind", mindName).Str("datasource", datasourceName).Msg("datasource added")
	return nil
}

// DropDatasource detaches a datasource from a mind. The datasource itself is kept.
func (s *MindsService) DropDatasource(ctx context.Context, mindName, datasourceName string) error {
	if err := ValidateName("mind", mindName); err != nil {
		return err
	}
	if err := ValidateName("datasource", datasourceName); err != nil {
		return err
	}
	if _, err := s.http.Delete(ctx, mindDatasourcePath(s.project, mindName, datasourceName)); err != nil {
		return err
	}
	s.logger.Debug().Str("mind", mindName).Str("datasource", datasourceName).Msg("datasource dropped")
	return nil
}
