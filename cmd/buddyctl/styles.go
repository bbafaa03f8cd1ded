package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/vkngwrapper/buddy/memutils/metadata"
)

var (
	// Color palette
	primaryColor   = lipgloss.Color("#7D56F4")
	secondaryColor = lipgloss.Color("#00D7FF")
	successColor   = lipgloss.Color("#04B575")
	warningColor   = lipgloss.Color("#FFA500")
	errorColor     = lipgloss.Color("#FF4B4B")
	mutedColor     = lipgloss.Color("#666666")
)

// styles holds every style used by the text renderer. The plain set renders text unchanged.
type styles struct {
	header    lipgloss.Style
	connector lipgloss.Style
	address   lipgloss.Style
	free      lipgloss.Style
	split     lipgloss.Style
	allocated lipgloss.Style
	label     lipgloss.Style
	success   lipgloss.Style
	event     lipgloss.Style
	err       lipgloss.Style
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			header:    plain,
			connector: plain,
			address:   plain,
			free:      plain,
			split:     plain,
			allocated: plain,
			label:     plain,
			success:   plain,
			event:     plain,
			err:       plain,
		}
	}

	return styles{
		header:    lipgloss.NewStyle().Bold(true).Foreground(primaryColor),
		connector: lipgloss.NewStyle().Foreground(mutedColor),
		address:   lipgloss.NewStyle().Foreground(secondaryColor),
		free:      lipgloss.NewStyle().Foreground(successColor),
		split:     lipgloss.NewStyle().Foreground(mutedColor).Italic(true),
		allocated: lipgloss.NewStyle().Foreground(warningColor).Bold(true),
		label:     lipgloss.NewStyle().Foreground(primaryColor).Italic(true),
		success:   lipgloss.NewStyle().Foreground(successColor),
		event:     lipgloss.NewStyle().Foreground(mutedColor),
		err:       lipgloss.NewStyle().Foreground(errorColor).Bold(true),
	}
}

func (s styles) status(status metadata.BlockStatus) lipgloss.Style {
	switch status {
	case metadata.BlockAllocated:
		return s.allocated
	case metadata.BlockSplit:
		return s.split
	default:
		return s.free
	}
}
