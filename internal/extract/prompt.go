package extract

import (
	"fmt"
	"strings"
)

const fewShotExamples = `Example 1:
Transcript: "San Diego Tower, United 123, ready for departure runway 27. United 123, cleared for takeoff runway 27, wind 270 at 10. United 123, rolling. United 123, contact departure on 124.5. United 123, switching to departure."

Output:
[
  {"role": "pilot", "message": "San Diego Tower, United 123, ready for departure runway 27.", "annotations": [{"text": "United 123", "type": "who"}, {"text": "ready for departure runway 27", "type": "what"}]},
  {"role": "atc", "message": "United 123, cleared for takeoff runway 27, wind 270 at 10.", "annotations": [{"text": "United 123", "type": "who"}, {"text": "cleared for takeoff runway 27", "type": "what"}]},
  {"role": "pilot", "message": "United 123, rolling.", "annotations": [{"text": "United 123", "type": "who"}, {"text": "rolling", "type": "what"}]},
  {"role": "atc", "message": "United 123, contact departure on 124.5.", "annotations": [{"text": "United 123", "type": "who"}, {"text": "contact departure on 124.5", "type": "what"}]},
  {"role": "pilot", "message": "United 123, switching to departure.", "annotations": [{"text": "United 123", "type": "who"}, {"text": "switching to departure", "type": "what"}]}
]

Example 2:
Transcript: "Ground, American 456, request taxi to runway 18. American 456, taxi via Alpha, Bravo, hold short of runway 18. American 456, taxiing via Alpha, Bravo, hold short runway 18. American 456, runway 18, cleared for takeoff. American 456, cleared for takeoff runway 18."

Output:
[
  {"role": "pilot", "message": "Ground, American 456, request taxi to runway 18.", "annotations": [{"text": "American 456", "type": "who"}, {"text": "request taxi to runway 18", "type": "what"}]},
  {"role": "atc", "message": "American 456, taxi via Alpha, Bravo, hold short of runway 18.", "annotations": [{"text": "American 456", "type": "who"}, {"text": "taxi via Alpha, Bravo, hold short of runway 18", "type": "what"}]},
  {"role": "pilot", "message": "American 456, taxiing via Alpha, Bravo, hold short runway 18.", "annotations": [{"text": "American 456", "type": "who"}, {"text": "taxiing via Alpha, Bravo, hold short runway 18", "type": "what"}]},
  {"role": "atc", "message": "American 456, runway 18, cleared for takeoff.", "annotations": [{"text": "American 456", "type": "who"}, {"text": "cleared for takeoff", "type": "what"}]},
  {"role": "pilot", "message": "American 456, cleared for takeoff runway 18.", "annotations": [{"text": "American 456", "type": "who"}, {"text": "cleared for takeoff runway 18", "type": "what"}]}
]

Example 3:
Transcript: "Tower, Delta 789, ready for departure. Delta 789, line up and wait runway 27. Delta 789, lining up runway 27. Tower, Southwest 321, ready for departure runway 27. Southwest 321, hold position. Delta 789, cleared for takeoff runway 27. Delta 789, taking off."

Output:
[
  {"role": "pilot", "message": "Tower, Delta 789, ready for departure.", "annotations": [{"text": "Delta 789", "type": "who"}, {"text": "ready for departure", "type": "what"}]},
  {"role": "atc", "message": "Delta 789, line up and wait runway 27.", "annotations": [{"text": "Delta 789", "type": "who"}, {"text": "line up and wait runway 27", "type": "what"}]},
  {"role": "pilot", "message": "Delta 789, lining up runway 27.", "annotations": [{"text": "Delta 789", "type": "who"}, {"text": "lining up runway 27", "type": "what"}]},
  {"role": "pilot", "message": "Tower, Southwest 321, ready for departure runway 27.", "annotations": [{"text": "Southwest 321", "type": "who"}, {"text": "ready for departure runway 27", "type": "what"}]},
  {"role": "atc", "message": "Southwest 321, hold position.", "annotations": [{"text": "Southwest 321", "type": "who"}, {"text": "hold position", "type": "what"}]},
  {"role": "atc", "message": "Delta 789, cleared for takeoff runway 27.", "annotations": [{"text": "Delta 789", "type": "who"}, {"text": "cleared for takeoff runway 27", "type": "what"}]},
  {"role": "pilot", "message": "Delta 789, taking off.", "annotations": [{"text": "Delta 789", "type": "who"}, {"text": "taking off", "type": "what"}]}
]`

const promptHeader = `You are an expert at parsing Air Traffic Control (ATC) radio communications transcripts. Your task is to identify the speaker role (ATC or pilot), break the transcript into individual messages, and annotate each message.

Guidelines:
- ATC messages typically contain clearances, instructions, frequencies, and control commands
- Pilot messages typically contain readbacks, acknowledgments, requests, and position reports
- When multiple pilots are present, they are identified by their callsigns (e.g., "United 123", "Delta 789")
- Break messages at natural conversation boundaries
- Each message should be a complete thought or exchange
- Annotate each message with "who" (the callsign or station being addressed or speaking) and "what" (the instruction, request, or report); annotation text must be copied verbatim from the message
- Output ONLY valid JSON array format, no additional text`

// BuildPrompt assembles the extraction prompt for a transcript. When
// listenerIdentity is non-empty the model is additionally asked to flag
// turns addressed to that identity via highlight_for_user. Pure function
// of its inputs.
func BuildPrompt(transcript, listenerIdentity string) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	if identity := strings.TrimSpace(listenerIdentity); identity != "" {
		fmt.Fprintf(&b, "\n- The listener identifies as %q. For each message, set \"highlight_for_user\": true when the message is spoken by or addressed to that callsign (compare callsign tokens against the message text), otherwise omit the field or set it to false", identity)
	}
	b.WriteString("\n\nFew-shot examples:\n")
	b.WriteString(fewShotExamples)
	b.WriteString("\n\nNow parse this transcript:\n\nTranscript: ")
	b.WriteString(strings.TrimSpace(transcript))
	b.WriteString("\n\nOutput JSON array:")
	return b.String()
}
