package colour

import (
	"fmt"
	"strings"
)

// ANSI escape codes for terminal colours.
const (
	ansiReset    = "\033[0m"
	ansiFgPrefix = "\033[38;2;"
	ansiBgPrefix = "\033[48;2;"
	ansiSuffix   = "m"
	defaultWidth = 6
)

// DisableColourOutput turns every preview helper into plain text.
// The CLI sets it when stdout is not a terminal.
var DisableColourOutput = false

// ColourPreview returns an ANSI-coloured preview string for a colour.
// Width specifies how many characters wide the colour block should be.
func ColourPreview(c RGB, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	block := strings.Repeat(" ", width)
	if DisableColourOutput {
		return block
	}

	bgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
	return bgColour + block + ansiReset
}

// ContrastSample renders text in fg on a block of bg, centred within width.
func ContrastSample(fg, bg RGB, text string, width int) string {
	displayText := centre(text, width)
	if DisableColourOutput {
		return displayText
	}

	bgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, bg.R, bg.G, bg.B, ansiSuffix)
	fgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiFgPrefix, fg.R, fg.G, fg.B, ansiSuffix)
	return bgColour + fgColour + displayText + ansiReset
}

// SampleHex is ContrastSample for hex strings. Unparseable input yields the
// plain centred text.
func SampleHex(fg, bg, text string, width int) string {
	f, errF := parseRGB(fg)
	b, errB := parseRGB(bg)
	if errF != nil || errB != nil {
		return centre(text, width)
	}
	return ContrastSample(f, b, text, width)
}

func centre(text string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	switch {
	case len(text) > width:
		return text[:width]
	case len(text) < width:
		padding := (width - len(text)) / 2
		return strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-len(text)-padding)
	}
	return text
}

// Swatch formats a palette value with its preview block. Values that are not
// hex colours (such as rgba strings) are returned unchanged.
func Swatch(value string, width int) string {
	rgb, err := parseRGB(value)
	if err != nil {
		return value
	}
	return fmt.Sprintf("%s %s", ColourPreview(rgb, width), rgb.Hex())
}

// StripANSI removes SGR escape sequences, for width calculations.
func StripANSI(s string) string {
	if !strings.Contains(s, "\033[") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			i = j
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
