package tui

import (
	"github.com/abdul-hamid-achik/dashai/internal/agent"
	"github.com/charmbracelet/lipgloss"
)

// palette (256-colour codes)
var (
	accent    = lipgloss.Color("39")
	green     = lipgloss.Color("82")
	amber     = lipgloss.Color("214")
	red       = lipgloss.Color("196")
	grey      = lipgloss.Color("240")
	white     = lipgloss.Color("255")
	lightGrey = lipgloss.Color("252")
	barGrey   = lipgloss.Color("236")
)

var (
	barStyle         = lipgloss.NewStyle().Foreground(white).Background(barGrey).Padding(0, 1)
	headerStyle      = barStyle.Bold(true)
	footerStyle      = barStyle
	headerTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle         = lipgloss.NewStyle().Foreground(grey)
	infoStyle        = lipgloss.NewStyle().Foreground(accent)
	promptStyle      = lipgloss.NewStyle().Foreground(green).Bold(true)
	userStyle        = lipgloss.NewStyle().Foreground(white).Bold(true)
	assistantStyle   = lipgloss.NewStyle().Foreground(lightGrey)
	toastStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

const promptIcon = ">"

// levelLook is how a notification level is drawn
type levelLook struct {
	color lipgloss.Color
	icon  string
}

var levelLooks = map[agent.NotifyLevel]levelLook{
	agent.NotifyInfo:    {accent, "ℹ"},
	agent.NotifySuccess: {green, "✓"},
	agent.NotifyWarning: {amber, "⚠"},
	agent.NotifyError:   {red, "✗"},
}

func lookFor(level agent.NotifyLevel) levelLook {
	if look, ok := levelLooks[level]; ok {
		return look
	}
	return levelLooks[agent.NotifyInfo]
}

// badge renders the level icon in the level colour
func (l levelLook) badge() string {
	return lipgloss.NewStyle().Foreground(l.color).Bold(true).Render(l.icon)
}
