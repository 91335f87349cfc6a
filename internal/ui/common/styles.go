// Package common provides shared styles and utilities for the UI.
package common

import (
	"github.com/charmbracelet/lipgloss"
)

// Cell glyphs
const (
	GlyphWater  = "·"
	GlyphShip   = "■"
	GlyphHit    = "✕"
	GlyphMiss   = "○"
	GlyphCursor = "◆"
)

var (
	DocStyle    = lipgloss.NewStyle().Margin(1, 2)
	TitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	BoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	PromptStyle = lipgloss.NewStyle().MarginTop(1)
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	InfoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	TurnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	WaitStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	WaterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	ShipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true)
	HitStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	MissStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	CursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	LabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)
