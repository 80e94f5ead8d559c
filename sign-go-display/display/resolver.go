package display

import (
	"sort"
	"strings"

	"sign-tools/sign-go-display/config"
	"sign-tools/sign-go-display/template"
	"sign-tools/sign-go-display/words"
)

// ActiveMessage is one bit configuration whose PLC bit is set, together
// with its rendered display text.
type ActiveMessage struct {
	Config *config.BitConfig
	Text   string
}

// Resolve evaluates every enabled bit configuration against the snapshot
// and returns the active messages sorted by priority, highest first. Equal
// priorities keep the authoring order of bits, so the ranking is stable
// across ticks. The display shows only the head of the list.
func Resolve(snap words.Snapshot, bits []*config.BitConfig) []ActiveMessage {
	var active []ActiveMessage
	for _, bc := range bits {
		if !bc.Enabled {
			continue
		}
		raw, ok := snap.Word(bc.WordIndex)
		if !ok || !words.ExtractBit(raw, bc.BitIndex) {
			continue
		}
		text := bc.Message
		if bc.UseTemplate && strings.TrimSpace(bc.MessageTemplate) != "" {
			text = template.Render(bc.MessageTemplate, snap)
		}
		// A bit can be on at the PLC while intentionally showing nothing.
		if strings.TrimSpace(text) == "" {
			continue
		}
		active = append(active, ActiveMessage{Config: bc, Text: text})
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Config.Priority > active[j].Config.Priority
	})
	return active
}
