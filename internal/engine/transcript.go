package engine

import "Hollow-Pines/server/internal/story"

// Transcript collects every scripted line from steps 0..upToStep-1 of the
// scene, in delivery order, formatted "speaker: text". Pure function of the
// scene and an index; it is grounding text for generation, not a record of
// what was actually sent.
func Transcript(sc *story.Scene, upToStep int) []string {
	if upToStep > len(sc.Steps) {
		upToStep = len(sc.Steps)
	}

	var lines []string
	for i := 0; i < upToStep; i++ {
		for _, line := range sc.Steps[i].Lines {
			lines = append(lines, line.Speaker+": "+line.Text)
		}
	}
	return lines
}
