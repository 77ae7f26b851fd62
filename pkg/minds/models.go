package minds

import (
	"encoding/json"
	"fmt"

	"github.com/mindsdb/minds-go/pkg/apperrors"
	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"sigs.k8s.io/yaml"
)

// DatabaseConfig describes a datasource to create. ConnectionData is passed to the
// service verbatim.
type DatabaseConfig struct {
	Name           string         `json:"name" validate:"required"`
	Engine         string         `json:"engine" validate:"required"`
	Description    string         `json:"description" validate:"required"`
	ConnectionData map[string]any `json:"connection_data" validate:"required,min=1"`
	Tables         []string       `json:"tables"`
}

// Datasource is a datasource as known to the service.
type Datasource struct {
	DatabaseConfig
}

// Update returns the mutable part of c as a DatasourceUpdate.
func (c DatabaseConfig) Update() DatasourceUpdate {
	tables := c.Tables
	if tables == nil {
		tables = []string{}
	}
	return DatasourceUpdate{
		Description:    c.Description,
		ConnectionData: c.ConnectionData,
		Tables:         tables,
	}
}

// DatasourceUpdate is a partial datasource update. Zero fields are left unchanged on the
// server, except Tables where a non-nil empty slice clears the list. Name and engine
// cannot be changed.
type DatasourceUpdate struct {
	Description    string
	ConnectionData map[string]any
	Tables         []string
}

func (u DatasourceUpdate) body() ([]byte, error) {
	body := []byte(`{}`)
	var err error
	if u.Description != "" {
		if body, err = sjson.SetBytes(body, "description", u.Description); err != nil {
			return nil, err
		}
	}
	if u.ConnectionData != nil {
		if body, err = sjson.SetBytes(body, "connection_data", u.ConnectionData); err != nil {
			return nil, err
		}
	}
	if u.Tables != nil {
		if body, err = sjson.SetBytes(body, "tables", u.Tables); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// Mind is a named model configuration bound to one or more datasources.
// CreatedAt and UpdatedAt are set by the service and are opaque.
type Mind struct {
	Name           string         `json:"name"`
	Datasources    []string       `json:"datasources"`
	CreatedAt      string         `json:"created_at,omitempty"`
	UpdatedAt      string         `json:"updated_at,omitempty"`
	ModelName      string         `json:"model_name,omitempty"`
	Parameters     map[string]any `json:"parameters,omitempty"`
	Provider       string         `json:"provider,omitempty"`
	PromptTemplate string         `json:"prompt_template,omitempty"`
}

// DecodeParameters decodes the mind's parameters into out, which must be a pointer to a
// struct or map. Struct fields are matched by their json tag.
func (m *Mind) DecodeParameters(out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return apperrors.ErrParse.MsgErr("unable to decode mind parameters", err)
	}
	if err := decoder.Decode(m.Parameters); err != nil {
		return apperrors.ErrParse.MsgErr("unable to decode mind parameters", err)
	}
	return nil
}

// CreateMindRequest describes a mind to create. Name and at least one datasource are
// required. When PromptTemplate is empty and Parameters has no prompt_template,
// DefaultPromptTemplate is used.
type CreateMindRequest struct {
	Name           string
	Datasources    []string
	ModelName      string
	Provider       string
	Parameters     map[string]any
	PromptTemplate string
}

// UpdateMindRequest is a partial mind update. Zero fields are left unchanged.
// The name of a mind cannot be changed.
type UpdateMindRequest struct {
	Datasources    []string
	ModelName      string
	Provider       string
	Parameters     map[string]any
	PromptTemplate string
}

// mindBody is the wire shape of a mind sent to the service.
type mindBody struct {
	Name           string         `json:"name,omitempty"`
	Datasources    []string       `json:"datasources,omitempty"`
	ModelName      string         `json:"model_name,omitempty"`
	Parameters     map[string]any `json:"parameters,omitempty"`
	Provider       string         `json:"provider,omitempty"`
	PromptTemplate string         `json:"prompt_template,omitempty"`
}

func (r CreateMindRequest) body() ([]byte, error) {
	body, err := json.Marshal(mindBody{
		Name:           r.Name,
		Datasources:    r.Datasources,
		ModelName:      r.ModelName,
		Parameters:     r.Parameters,
		Provider:       r.Provider,
		PromptTemplate: r.PromptTemplate,
	})
	if err != nil {
		return nil, err
	}
	template := r.PromptTemplate
	if template == "" {
		template = DefaultPromptTemplate
	}
	return foldPromptTemplate(body, template)
}

func (r UpdateMindRequest) body() ([]byte, error) {
	body, err := json.Marshal(mindBody{
		Datasources:    r.Datasources,
		ModelName:      r.ModelName,
		Parameters:     r.Parameters,
		Provider:       r.Provider,
		PromptTemplate: r.PromptTemplate,
	})
	if err != nil {
		return nil, err
	}
	if r.PromptTemplate == "" {
		return body, nil
	}
	return foldPromptTemplate(body, r.PromptTemplate)
}

// foldPromptTemplate sets parameters.prompt_template to template unless the body already
// carries one.
func foldPromptTemplate(body []byte, template string) ([]byte, error) {
	path := parametersKey + "." + promptTemplateKey
	if gjson.GetBytes(body, path).Exists() {
		return body, nil
	}
	return sjson.SetBytes(body, path, template)
}

// decodeMind decodes a single mind. A template kept only inside parameters is surfaced as
// PromptTemplate. Anything but an object with a name is a parse error.
func decodeMind(data []byte) (*Mind, error) {
	raw := gjson.ParseBytes(data)
	if !raw.IsObject() {
		return nil, apperrors.ErrParse.Msg("mind is not a JSON object").WithBody(string(data))
	}
	var m Mind
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, apperrors.ErrParse.MsgErr("unable to decode mind", err).WithBody(string(data))
	}
	if m.Name == "" {
		return nil, apperrors.ErrParse.Msg("mind has no name").WithBody(string(data))
	}
	normalizeMind(&m, raw)
	return &m, nil
}

func decodeMinds(data []byte) ([]Mind, error) {
	var list []Mind
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, apperrors.ErrParse.MsgErr("unable to decode minds", err).WithBody(string(data))
	}
	if list == nil {
		return []Mind{}, nil
	}
	raw := gjson.ParseBytes(data).Array()
	for i := range list {
		normalizeMind(&list[i], raw[i])
	}
	return list, nil
}

func normalizeMind(m *Mind, raw gjson.Result) {
	if m.Datasources == nil {
		m.Datasources = []string{}
	}
	if m.PromptTemplate == "" {
		m.PromptTemplate = raw.Get(parametersKey + "." + promptTemplateKey).String()
	}
}

func decodeDatasource(data []byte) (*Datasource, error) {
	if !gjson.ParseBytes(data).IsObject() {
		return nil, apperrors.ErrParse.Msg("datasource is not a JSON object").WithBody(string(data))
	}
	var ds Datasource
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, apperrors.ErrParse.MsgErr("unable to decode datasource", err).WithBody(string(data))
	}
	if ds.Name == "" {
		return nil, apperrors.ErrParse.Msg("datasource has no name").WithBody(string(data))
	}
	if ds.Tables == nil {
		ds.Tables = []string{}
	}
	return &ds, nil
}

func decodeDatasources(data []byte) ([]Datasource, error) {
	var list []Datasource
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, apperrors.ErrParse.MsgErr("unable to decode datasources", err).WithBody(string(data))
	}
	if list == nil {
		return []Datasource{}, nil
	}
	for i := range list {
		if list[i].Tables == nil {
			list[i].Tables = []string{}
		}
	}
	return list, nil
}

// ParseDatabaseConfig reads a datasource definition written in YAML or JSON, using the
// same field names as the API:
//
//	name: sales_db
//	engine: postgres
//	description: sales data
//	connection_data:
//	  host: db.internal
//	  port: 5432
//	tables: [orders]
//
// The result is validated with ValidateDatabaseConfig.
func ParseDatabaseConfig(data []byte) (*DatabaseConfig, error) {
	var cfg DatabaseConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, apperrors.ErrParse.MsgErr(fmt.Sprintf("invalid datasource definition: %v", err), err)
	}
	if err := ValidateDatabaseConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Tables == nil {
		cfg.Tables = []string{}
	}
	return &cfg, nil
}
