package history

import (
	"bufio"
	"regexp"
	"strings"
)

// speakerLineRegex matches transcript lines of the form "Name: text" or
// "0:11 : Name : text". Group 1 is the speaker, group 2 the spoken text.
// The name may carry pronouns in parentheses.
var speakerLineRegex = regexp.MustCompile(`^(?:\d+:\d{2}\s*:\s*)?([A-Z][A-Za-z .'()/-]{0,48}?)\s*:\s*(\S.*)$`)

// ExtractParticipants scans a transcript for speaker-prefixed lines and
// returns the unique speaker names in order of first appearance.
func ExtractParticipants(transcript string) []string {
	seen := make(map[string]bool)
	var participants []string

	scanner := bufio.NewScanner(strings.NewReader(transcript))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		m := speakerLineRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		participants = append(participants, name)
	}
	return participants
}

// DeriveTitle builds a meeting title from the transcript's first non-empty
// line, with any speaker prefix dropped and truncated to a sane length.
func DeriveTitle(transcript string) string {
	scanner := bufio.NewScanner(strings.NewReader(transcript))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if m := speakerLineRegex.FindStringSubmatch(line); m != nil {
			line = strings.TrimSpace(m[2])
		}
		if len(line) > 60 {
			line = line[:57] + "..."
		}
		return line
	}
	return "Untitled meeting"
}
