package minds

import "net/url"

// Endpoint builders. Every path parameter is escaped.

func datasourcesPath() string {
	return "/datasources"
}

func datasourcePath(name string) string {
	return datasourcesPath() + "/" + url.PathEscape(name)
}

func mindsPath(project string) string {
	return "/projects/" + url.PathEscape(project) + "/minds"
}

func mindPath(project, name string) string {
	return mindsPath(project) + "/" + url.PathEscape(name)
}

func mindDatasourcesPath(project, mind string) string {
	return mindPath(project, mind) + "/datasources"
}

func mindDatasourcePath(project, mind, datasource string) string {
	return mindDatasourcesPath(project, mind) + "/" + url.PathEscape(datasource)
}
