// Package api holds the HTTP request and response types generated from openapi.yaml.
package api

//go:generate go tool oapi-codegen -config cfg.yaml openapi.yaml
