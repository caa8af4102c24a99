package board

// DefaultPalette is the set of colors assigned to categories created without one.
func DefaultPalette() []string {
	return []string{"#3b82f6", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6", "#ec4899", "#14b8a6", "#64748b"}
}

func paletteColor(palette []string, n int) string {
	if len(palette) == 0 {
		palette = DefaultPalette()
	}
	return palette[n%len(palette)]
}
