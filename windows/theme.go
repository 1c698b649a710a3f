package windows

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// GridTheme is a compact theme tuned for dense tables
type GridTheme struct{}

var _ fyne.Theme = (*GridTheme)(nil)

var (
	accentLight = color.NRGBA{R: 0x00, G: 0x79, B: 0x6b, A: 0xff} // Teal
	accentDark  = color.NRGBA{R: 0x4d, G: 0xb6, B: 0xac, A: 0xff}
)

func (m GridTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if variant == theme.VariantLight {
		switch name {
		case theme.ColorNameBackground:
			return color.NRGBA{R: 0xfa, G: 0xfa, B: 0xfa, A: 0xff}
		case theme.ColorNamePrimary, theme.ColorNameFocus:
			return accentLight
		case theme.ColorNameHover:
			return color.NRGBA{R: 0xb2, G: 0xdf, B: 0xdb, A: 0xff}
		case theme.ColorNameHeaderBackground:
			return color.NRGBA{R: 0xe0, G: 0xf2, B: 0xf1, A: 0xff} // Grid headers
		case theme.ColorNameSeparator:
			return color.NRGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
		case theme.ColorNameSelection:
			return color.NRGBA{R: 0xb2, G: 0xdf, B: 0xdb, A: 0xff}
		}
	} else {
		switch name {
		case theme.ColorNameBackground:
			return color.NRGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff}
		case theme.ColorNamePrimary, theme.ColorNameFocus:
			return accentDark
		case theme.ColorNameHover:
			return color.NRGBA{R: 0x26, G: 0x4d, B: 0x4a, A: 0xff}
		case theme.ColorNameHeaderBackground:
			return color.NRGBA{R: 0x2a, G: 0x33, B: 0x32, A: 0xff}
		case theme.ColorNameSeparator:
			return color.NRGBA{R: 0x3a, G: 0x3a, B: 0x3a, A: 0xff}
		case theme.ColorNameSelection:
			return color.NRGBA{R: 0x00, G: 0x69, B: 0x5c, A: 0xff}
		}
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (m GridTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (m GridTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (m GridTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 4
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameScrollBar:
		return 12
	case theme.SizeNameSeparatorThickness:
		return 1
	}
	return theme.DefaultTheme().Size(name)
}
