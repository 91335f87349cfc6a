// Package ui provides the main entry point for the UI.
package ui

import (
	"github.com/ivanwe2/battleships/internal/game/session"
	"github.com/ivanwe2/battleships/internal/ui/input"
	"github.com/ivanwe2/battleships/internal/ui/model"
	"github.com/ivanwe2/battleships/internal/ui/view"
)

// NewOnlineModel creates the terminal model for s, connecting through conn
// on start.
func NewOnlineModel(s *session.Session, conn model.Connector) *model.OnlineModel {
	m := model.NewOnlineModel(s, conn)
	m.SetViewRenderer(view.CreateViewRenderer())
	m.SetKeyHandler(input.HandleKeyPress)
	return m
}
