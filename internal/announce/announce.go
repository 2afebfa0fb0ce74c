// Package announce words lottery outcomes in the configured language.
package announce

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/draft"
)

const (
	keyWon         = "lottery.won"
	keyLost        = "lottery.lost"
	keyConfirmed   = "lottery.confirmed"
	keyUnavailable = "lottery.unavailable"
)

var messages = map[language.Tag]map[string]string{
	language.English: {
		keyWon:         "[WON] %[1]s wins the negotiating rights to %[2]s!",
		keyLost:        "[LOST] %[1]s lost the lottery for %[2]s.",
		keyConfirmed:   "[CONFIRMED] %[1]s takes %[2]s as the sole bidder!",
		keyUnavailable: "[TAKEN] %[2]s is already signed; %[1]s must bid again.",
	},
	language.Japanese: {
		keyWon:         "【当選】%[1]sが%[2]sの交渉権獲得！",
		keyLost:        "【外れ】%[1]sは%[2]sの抽選に外れました。",
		keyConfirmed:   "【確定】%[1]sが%[2]sを単独指名！",
		keyUnavailable: "【指名済】%[2]sは既に指名されています。%[1]sは再指名となります。",
	},
}

var (
	builtin = mustBuild()
	matcher = language.NewMatcher([]language.Tag{language.English, language.Japanese})
)

func mustBuild() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range messages {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(fmt.Sprintf("announce: register %s/%s: %v", tag, key, err))
			}
		}
	}
	return b
}

// Names resolves display names for ids. Unknown ids should come back as-is.
type Names interface {
	TeamName(draft.TeamID) string
	PlayerName(draft.PlayerID) string
}

// MapNames is a Names backed by plain maps
type MapNames struct {
	Teams   map[draft.TeamID]string
	Players map[draft.PlayerID]string
}

func (m MapNames) TeamName(id draft.TeamID) string {
	if n, ok := m.Teams[id]; ok {
		return n
	}
	return string(id)
}

func (m MapNames) PlayerName(id draft.PlayerID) string {
	if n, ok := m.Players[id]; ok {
		return n
	}
	return string(id)
}

// Announcer implements draft.Announcer with localized templates.
type Announcer struct {
	printer *message.Printer
	names   Names
}

// ParseLang resolves a language setting like "ja" or "en-US" to a supported tag.
func ParseLang(lang string) language.Tag {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return language.English
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	_, idx, _ := matcher.Match(tag)
	return []language.Tag{language.English, language.Japanese}[idx]
}

// New builds an Announcer for lang. A nil names leaves ids untouched.
func New(lang string, names Names) *Announcer {
	if names == nil {
		names = MapNames{}
	}
	return &Announcer{
		printer: message.NewPrinter(ParseLang(lang), message.Catalog(builtin)),
		names:   names,
	}
}

// Announce renders one outcome
func (a *Announcer) Announce(o draft.Outcome) string {
	team := a.names.TeamName(o.Team)
	player := a.names.PlayerName(o.Player)

	var key string
	switch o.Kind {
	case draft.OutcomeWon:
		key = keyWon
	case draft.OutcomeLost:
		key = keyLost
	case draft.OutcomeConfirmed:
		key = keyConfirmed
	default:
		key = keyUnavailable
	}
	return a.printer.Sprintf(key, team, player)
}

var _ draft.Announcer = (*Announcer)(nil)
