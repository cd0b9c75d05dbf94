package recognition

import (
	"cmp"
	"slices"
	"strings"

	"plate-stabilizer/internal/domain/plate"
)

// Assemble turns one region's character detections into plate text: word
// tokens left to right, a space, then digits left to right. It reports false
// when there are fewer than minLength detections or the result is blank.
func Assemble(chars []plate.CharDetection, minLength int) (string, bool) {
	if len(chars) < minLength {
		return "", false
	}

	words := make([]plate.CharDetection, 0, len(chars))
	digits := make([]plate.CharDetection, 0, len(chars))
	for _, c := range chars {
		if IsDigitClass(c.ClassID) {
			digits = append(digits, c)
		} else {
			words = append(words, c)
		}
	}

	byX := func(a, b plate.CharDetection) int {
		return cmp.Compare(a.CenterX, b.CenterX)
	}
	slices.SortStableFunc(words, byX)
	slices.SortStableFunc(digits, byX)

	var sb strings.Builder
	for _, c := range words {
		sb.WriteString(Token(c.ClassID))
	}
	sb.WriteByte(' ')
	for _, c := range digits {
		sb.WriteString(Token(c.ClassID))
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", false
	}
	return text, true
}

// AssembleRegions assembles every region of a frame, keeping the boxes for
// display. Regions that yield nothing are left out.
func AssembleRegions(regions []plate.Region, minLength int) []plate.RegionText {
	var out []plate.RegionText
	for _, r := range regions {
		text, ok := Assemble(r.Chars, minLength)
		if !ok {
			continue
		}
		out = append(out, plate.RegionText{Box: r.Box, Text: text})
	}
	return out
}
