package viewer

// Theme names the viewer color palette.
type Theme string

const (
	ThemeDefault      Theme = "default"
	ThemeHighContrast Theme = "high-contrast"
)

// Palette holds the ANSI-256 color tokens one theme uses.
type Palette struct {
	Foreground string
	Muted      string
	Accent     string
	Own        string
	Other      string
	Separator  string
	Error      string
}

func themePalette(theme Theme) Palette {
	switch theme {
	case ThemeHighContrast:
		return Palette{
			Foreground: "15",
			Muted:      "250",
			Accent:     "226",
			Own:        "51",
			Other:      "15",
			Separator:  "250",
			Error:      "196",
		}
	default:
		return Palette{
			Foreground: "252",
			Muted:      "243",
			Accent:     "110",
			Own:        "72",
			Other:      "252",
			Separator:  "240",
			Error:      "167",
		}
	}
}
