package handler

import (
	"scrumpoker/internal/app/poker"
	"scrumpoker/internal/configs"
)

// AppDeps bundles the dependencies the HTTP layer needs.
type AppDeps struct {
	Registry *poker.Registry
	Config   *configs.AppConfig
}
