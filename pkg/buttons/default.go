package buttons

import (
	"sync/atomic"

	"github.com/tinyland-inc/picobuttons/pkg/host"
	"github.com/tinyland-inc/picobuttons/pkg/logger"
	"github.com/tinyland-inc/picobuttons/pkg/registry"
)

var defaultAPI atomic.Pointer[API]

// SetDefault installs the API used by the package-level AddButton helpers.
func SetDefault(a *API) {
	defaultAPI.Store(a)
}

func Default() *API {
	return defaultAPI.Load()
}

// AddButton adds a button through the default API.
func AddButton(msg *host.Message, label string, style host.ButtonStyle, onPress registry.Callback) {
	AddButtonData(msg, ButtonData{Label: label, Style: style, OnPress: onPress})
}

func AddButtonData(msg *host.Message, data ButtonData) {
	a := defaultAPI.Load()
	if a == nil {
		logger.ErrorCF("buttons", "Failed to create button component", map[string]any{
			"label": data.Label,
			"error": "no default API installed",
		})
		return
	}
	a.AddButtonData(msg, data)
}
