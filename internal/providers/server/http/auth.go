package http

import (
	"net/http"
	"strings"

	"github.com/crmarques/cloudstore/config"
)

const (
	apiKeyScheme = "APIKey"
	bearerScheme = "Bearer"
)

func applyAuth(cfg config.Config, request *http.Request) {
	switch {
	case strings.TrimSpace(cfg.APIKey) != "":
		request.Header.Set("Authorization", apiKeyScheme+" "+strings.TrimSpace(cfg.APIKey))
	case strings.TrimSpace(cfg.BearerToken) != "":
		request.Header.Set("Authorization", bearerScheme+" "+strings.TrimSpace(cfg.BearerToken))
	}
}
