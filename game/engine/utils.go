package engine

import (
	"fmt"
	"strings"
)

// Colors returns the fixed color set in display order
func Colors() []Color {
	out := make([]Color, len(colorSet))
	copy(out, colorSet[:])
	return out
}

// IsValidColor reports whether c belongs to the color set
func IsValidColor(c Color) bool {
	for _, known := range colorSet {
		if c == known {
			return true
		}
	}
	return false
}

// ParseColor converts a label to a Color, ignoring case and surrounding spaces
func ParseColor(label string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(label)))
	if !IsValidColor(c) {
		return "", fmt.Errorf("unknown color %q (expected one of %s)", label, ColorNames())
	}
	return c, nil
}

// ColorNames returns the labels joined for messages
func ColorNames() string {
	names := make([]string, len(colorSet))
	for i, c := range colorSet {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// ColorIndex returns the position of c in the color set, or -1
func ColorIndex(c Color) int {
	for i, known := range colorSet {
		if c == known {
			return i
		}
	}
	return -1
}

// TimerAtLevel returns the countdown a round starts with right after reaching
// the given level, following the one-directional clamp.
func TimerAtLevel(config *GameConfig, level int) int {
	if level <= 1 {
		return config.StartTimer
	}
	return clampMin(config.StartTimer-config.TimerPenalty, config.MinTimer)
}

func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}

// hasSingleIntVerb reports whether format has exactly one verb and it is a
// plain %d. "%%" is a literal percent sign.
func hasSingleIntVerb(format string) bool {
	verbs := 0
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 < len(format) && format[i+1] == '%' {
			i++
			continue
		}
		verbs++
		if verbs > 1 || i+1 >= len(format) || format[i+1] != 'd' {
			return false
		}
		i++
	}
	return verbs == 1
}

func formatMessage(format string, v int) string {
	if !hasSingleIntVerb(format) {
		return format
	}
	return fmt.Sprintf(format, v)
}
