// Package cardtag reads and writes the markers older deployments embedded in
// entry descriptions because their schema had no column for them.
package cardtag

import (
	"fmt"
	"regexp"
	"strings"
)

// TransferMarker prefixes the credit side of an internal transfer.
const TransferMarker = "[TRANSFERÊNCIA]"

var (
	cardPattern     = regexp.MustCompile(`(?i)\[CARD:([\w-]+)\]`)
	cardStrip       = regexp.MustCompile(`(?i)\[CARD:.*?\]\s*`)
	transferStrip   = regexp.MustCompile(`\[TRANSFERÊNCIA\]\s*`)
	whitespaceSpans = regexp.MustCompile(`\s{2,}`)
)

// Tag prefixes description with a recoverable card reference.
func Tag(cardID, description string) string {
	if cardID == "" {
		return description
	}
	if description == "" {
		return fmt.Sprintf("[CARD:%s]", cardID)
	}
	return fmt.Sprintf("[CARD:%s] %s", cardID, description)
}

// Extract returns the card id embedded in description, if any.
func Extract(description string) (string, bool) {
	m := cardPattern.FindStringSubmatch(description)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// MarkTransfer prefixes description with the transfer marker.
func MarkTransfer(description string) string {
	if description == "" {
		return TransferMarker
	}
	return TransferMarker + " " + description
}

// Strip removes every marker and collapses the whitespace they leave behind.
func Strip(description string) string {
	s := cardStrip.ReplaceAllString(description, "")
	s = transferStrip.ReplaceAllString(s, "")
	s = whitespaceSpans.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
