package fakeserver

import (
	"encoding/json"
	"net/http"
	"slices"
	"sort"
)

var datasourceFields = []string{"name", "engine", "description", "connection_data", "tables"}

// PutDatasource stores ds as is, replacing any datasource of the same name.
func (s *Server) PutDatasource(ds map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, _ := ds["name"].(string)
	s.datasources[name] = clone(ds)
}

// Datasource returns a copy of the stored datasource.
func (s *Server) Datasource(name string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.datasources[name]
	if !ok {
		return nil, false
	}
	return clone(ds), true
}

// PutMind stores mind under project as is, replacing any mind of the same name.
func (s *Server) PutMind(project string, mind map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, _ := mind["name"].(string)
	s.projectMinds(project)[name] = clone(mind)
}

// Mind returns a copy of the stored mind.
func (s *Server) Mind(project, name string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.projectMinds(project)[name]
	if !ok {
		return nil, false
	}
	return clone(m), true
}

func (s *Server) projectMinds(project string) map[string]map[string]any {
	minds, ok := s.minds[project]
	if !ok {
		minds = make(map[string]map[string]any)
		s.minds[project] = minds
	}
	return minds
}

func (s *Server) listDatasources(r *http.Request) (*response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &response{StatusCode: http.StatusOK, Body: sortedValues(s.datasources)}, nil
}

func (s *Server) createDatasource(r *http.Request) (*response, error) {
	obj, err := readObject(r)
	if err != nil {
		return nil, err
	}
	name, _ := obj["name"].(string)
	if name == "" {
		return nil, errBadRequest("name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.datasources[name]; exists {
		return nil, errConflict("datasource " + name)
	}
	ds := make(map[string]any)
	for _, f := range datasourceFields {
		if v, ok := obj[f]; ok {
			ds[f] = v
		}
	}
	if _, ok := ds["tables"]; !ok {
		ds["tables"] = []any{}
	}
	s.datasources[name] = ds
	return &response{StatusCode: http.StatusOK, Body: clone(ds)}, nil
}

func (s *Server) getDatasource(r *http.Request) (*response, error) {
	name := urlParam(r, "name")
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.datasources[name]
	if !ok {
		return nil, errNotFound("datasource " + name)
	}
	return &response{StatusCode: http.StatusOK, Body: clone(ds)}, nil
}

func (s *Server) updateDatasource(r *http.Request) (*response, error) {
	name := urlParam(r, "name")
	obj, err := readObject(r)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.datasources[name]
	if !ok {
		return nil, errNotFound("datasource " + name)
	}
	for k, v := range obj {
		if k == "name" || k == "engine" {
			continue
		}
		ds[k] = v
	}
	return &response{StatusCode: http.StatusOK, Body: clone(ds)}, nil
}

func (s *Server) deleteDatasource(r *http.Request) (*response, error) {
	name := urlParam(r, "name")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasources[name]; !ok {
		return nil, errNotFound("datasource " + name)
	}
	delete(s.datasources, name)
	return &response{StatusCode: http.StatusOK, Body: map[string]any{}}, nil
}

func (s *Server) listMinds(r *http.Request) (*response, error) {
	project := urlParam(r, "project")
	s.mu.Lock()
	defer s.mu.Unlock()
	return &response{StatusCode: http.StatusOK, Body: sortedValues(s.projectMinds(project))}, nil
}

func (s *Server) createMind(r *http.Request) (*response, error) {
	project := urlParam(r, "project")
	obj, err := readObject(r)
	if err != nil {
		return nil, err
	}
	name, _ := obj["name"].(string)
	if name == "" {
		return nil, errBadRequest("name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	minds := s.projectMinds(project)
	if _, exists := minds[name]; exists {
		return nil, errConflict("mind " + name)
	}
	if _, ok := obj["datasources"]; !ok {
		obj["datasources"] = []any{}
	}
	now := s.clock()
	obj["created_at"] = now
	obj["updated_at"] = now
	minds[name] = obj
	return &response{StatusCode: http.StatusOK, Body: clone(obj)}, nil
}

func (s *Server) getMind(r *http.Request) (*response, error) {
	project, name := urlParam(r, "project"), urlParam(r, "name")
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.projectMinds(project)[name]
	if !ok {
		return nil, errNotFound("mind " + name)
	}
	return &response{StatusCode: http.StatusOK, Body: clone(m)}, nil
}

func (s *Server) updateMind(r *http.Request) (*response, error) {
	project, name := urlParam(r, "project"), urlParam(r, "name")
	obj, err := readObject(r)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.projectMinds(project)[name]
	if !ok {
		return nil, errNotFound("mind " + name)
	}
	for k, v := range obj {
		switch k {
		case "name", "created_at", "updated_at":
			continue
		}
		m[k] = v
	}
	m["updated_at"] = s.clock()
	return &response{StatusCode: http.StatusOK, Body: clone(m)}, nil
}

func (s *Server) deleteMind(r *http.Request) (*response, error) {
	project, name := urlParam(r, "project"), urlParam(r, "name")
	s.mu.Lock()
	defer s.mu.Unlock()
	minds := s.projectMinds(project)
	if _, ok := minds[name]; !ok {
		return nil, errNotFound("mind " + name)
	}
	delete(minds, name)
	return &response{StatusCode: http.StatusOK, Body: map[string]any{}}, nil
}

func (s *Server) addMindDatasource(r *http.Request) (*response, error) {
	project, name := urlParam(r, "project"), urlParam(r, "name")
	obj, err := readObject(r)
	if err != nil {
		return nil, err
	}
	dsName, _ := obj["name"].(string)
	if dsName == "" {
		return nil, errBadRequest("name is required")
	}
	check, _ := obj["check_connection"].(bool)

	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.projectMinds(project)[name]
	if !ok {
		return nil, errNotFound("mind " + name)
	}
	if _, known := s.datasources[dsName]; check && !known {
		return nil, errNotFound("datasource " + dsName)
	}
	current := stringList(m["datasources"])
	if !slices.Contains(current, dsName) {
		current = append(current, dsName)
	}
	m["datasources"] = current
	m["updated_at"] = s.clock()
	return &response{StatusCode: http.StatusOK, Body: map[string]any{}}, nil
}

func (s *Server) dropMindDatasource(r *http.Request) (*response, error) {
	project, name, dsName := urlParam(r, "project"), urlParam(r, "name"), urlParam(r, "dsName")
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.projectMinds(project)[name]
	if !ok {
		return nil, errNotFound("mind " + name)
	}
	current := stringList(m["datasources"])
	idx := slices.Index(current, dsName)
	if idx < 0 {
		return nil, errNotFound("datasource " + dsName + " in mind " + name)
	}
	m["datasources"] = slices.Delete(current, idx, idx+1)
	m["updated_at"] = s.clock()
	return &response{StatusCode: http.StatusOK, Body: map[string]any{}}, nil
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return slices.Clone(list)
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

func sortedValues(m map[string]map[string]any) []map[string]any {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]map[string]any, 0, len(names))
	for _, name := range names {
		out = append(out, clone(m[name]))
	}
	return out
}

// clone deep copies a JSON object.
func clone(obj map[string]any) map[string]any {
	data, err := json.Marshal(obj)
	if err != nil {
		return map[string]any{}
	}
	out := make(map[string]any)
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}
	return out
}
