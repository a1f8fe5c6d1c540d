package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	emptyConversationPreview = "No messages yet"
	groupAvatar              = "GR"
	unknownParticipantName   = "Unknown User"
	defaultGroupTitle        = "Group Chat"
)

// conversationDisplayName picks the stored title for groups and the other
// participant's full name for direct conversations.
func conversationDisplayName(title *string, isGroup bool, otherNames []string) string {
	if isGroup {
		if title != nil && *title != "" {
			return *title
		}
		return defaultGroupTitle
	}
	if len(otherNames) > 0 && otherNames[0] != "" {
		return otherNames[0]
	}
	return unknownParticipantName
}

// avatarInitials derives a two-letter badge from a full name.
func avatarInitials(fullName string) string {
	words := strings.Fields(fullName)
	if len(words) == 0 {
		return "U"
	}
	initials := firstRune(words[0])
	if len(words) > 1 {
		initials += firstRune(words[len(words)-1])
	}
	return strings.ToUpper(initials)
}

func firstRune(word string) string {
	r, _ := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return ""
	}
	return string(r)
}

// relativeAge renders the coarse age labels the conversation list shows:
// minutes under an hour, hours under a day, days otherwise.
func relativeAge(ts, now time.Time) string {
	diff := now.Sub(ts)
	if diff < 0 {
		diff = 0
	}
	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}

// messageTimeLabel is the short hour:minute stamp shown next to each bubble.
func messageTimeLabel(ts time.Time) string {
	return ts.Local().Format("15:04")
}
