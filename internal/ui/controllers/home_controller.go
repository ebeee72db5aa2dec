package uicontrollers

import (
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/toolstream/agentdeck/internal/domain/entities"
	"github.com/toolstream/agentdeck/internal/store"
	"go.uber.org/zap"
)

type HomeController struct {
	logger    *zap.Logger
	tmpl      *template.Template
	store     *store.Store
	endpoints []*entities.Endpoint
}

func NewHomeController(logger *zap.Logger, tmpl *template.Template, st *store.Store, endpoints []*entities.Endpoint) *HomeController {
	return &HomeController{
		logger:    logger,
		tmpl:      tmpl,
		store:     st,
		endpoints: endpoints,
	}
}

func (c *HomeController) RegisterRoutes(e *echo.Echo) {
	e.GET("/", c.HomeHandler)
}

func (c *HomeController) HomeHandler(eCtx echo.Context) error {
	data := map[string]interface{}{
		"Title":            "AgentDeck",
		"ContentTemplate":  "chat_content",
		"Endpoints":        c.endpoints,
		"SelectedEndpoint": c.store.SelectedEndpoint(),
		"Messages":         c.store.Messages(),
		"PanelOpen":        c.store.ToolCallPanelOpen(),
	}

	eCtx.Response().Header().Set("Content-Type", "text/html")
	if err := c.tmpl.ExecuteTemplate(eCtx.Response().Writer, "layout", data); err != nil {
		c.logger.Error("Failed to render template", zap.Error(err))
		return eCtx.String(http.StatusInternalServerError, "Internal server error")
	}
	return nil
}
