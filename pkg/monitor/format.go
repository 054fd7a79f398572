package monitor

import "fmt"

func formatPercent(v float64) string { return fmt.Sprintf("%.1f%%", v) }

func formatDollars(v float64) string { return fmt.Sprintf("$%.4f", v) }

func formatSeconds(v float64) string { return fmt.Sprintf("%.2fs", v) }
