// Package terminal renders Color Match in a terminal and reads the player's keys.
//
// The screen shows the instructions until the player presses Enter, then the
// score, high score, level, countdown, a box filled with the target color and
// four labelled color buttons. A correct answer briefly dims the box and
// plays a short tone.
//
// Keys:
//   - 1-4 or r/b/g/y: pick a color
//   - Enter or Space: start
//   - x: reset the round
//   - Esc, q or Ctrl-C: quit
package terminal
