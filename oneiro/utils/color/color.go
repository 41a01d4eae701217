// oneiro/utils/color.go
package color

import (
	"github.com/fatih/color"
)

var (
	promptColor  = color.New(color.FgCyan, color.Bold)
	summaryColor = color.New(color.FgHiYellow, color.Bold)
	symbolColor  = color.New(color.FgGreen)
	insightColor = color.New(color.FgHiWhite)
	toneColor    = color.New(color.FgMagenta, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
)

func ColorPrompt(s string) string {
	return promptColor.Sprint(s)
}

func ColorSummary(s string) string {
	return summaryColor.Sprint(s)
}

func ColorSymbol(s string) string {
	return symbolColor.Sprint(s)
}

func ColorInsight(s string) string {
	return insightColor.Sprint(s)
}

func ColorTone(s string) string {
	return toneColor.Sprint(s)
}

func ColorError(s string) string {
	return errorColor.Sprint(s)
}
