package models

// Action is the outcome a moderation check recommends or resolves to.
// Actions are totally ordered by severity: allow < flag < block < delete.
type Action string

const (
	ActionAllow  Action = "allow"
	ActionFlag   Action = "flag"
	ActionBlock  Action = "block"
	ActionDelete Action = "delete"
)

var actionSeverity = map[Action]int{
	ActionAllow:  0,
	ActionFlag:   1,
	ActionBlock:  2,
	ActionDelete: 3,
}

// Severity returns the position of the action in the severity order.
// Unknown actions rank lowest, same as allow.
func (a Action) Severity() int {
	return actionSeverity[a]
}

// Exceeds reports whether a is strictly more severe than other.
func (a Action) Exceeds(other Action) bool {
	return a.Severity() > other.Severity()
}

// Valid reports whether a is one of the four known actions.
func (a Action) Valid() bool {
	_, ok := actionSeverity[a]
	return ok
}

// ContentType identifies what kind of content is being moderated.
type ContentType string

const (
	ContentTypeMessage     ContentType = "message"
	ContentTypeFile        ContentType = "file"
	ContentTypeProfile     ContentType = "profile"
	ContentTypeChannelName ContentType = "channel_name"
	ContentTypeUsername    ContentType = "username"
)

// Valid reports whether ct is a known content type.
func (ct ContentType) Valid() bool {
	switch ct {
	case ContentTypeMessage, ContentTypeFile, ContentTypeProfile, ContentTypeChannelName, ContentTypeUsername:
		return true
	}
	return false
}

// Rule types. RuleTypeML is declared for forward compatibility but is not
// evaluated by the matcher.
const (
	RuleTypeKeyword = "keyword"
	RuleTypeRegex   = "regex"
	RuleTypeML      = "ml"
)
