package announce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/draft"
)

var names = MapNames{
	Teams:   map[draft.TeamID]string{"t1": "Giants", "t2": "Tigers"},
	Players: map[draft.PlayerID]string{"p1": "Sasaki"},
}

func TestAnnouncer_Japanese(t *testing.T) {
	a := New("ja", names)

	assert.Equal(t, "【当選】GiantsがSasakiの交渉権獲得！",
		a.Announce(draft.Outcome{Kind: draft.OutcomeWon, Team: "t1", Player: "p1"}))
	assert.Equal(t, "【外れ】TigersはSasakiの抽選に外れました。",
		a.Announce(draft.Outcome{Kind: draft.OutcomeLost, Team: "t2", Player: "p1"}))
	assert.Equal(t, "【確定】GiantsがSasakiを単独指名！",
		a.Announce(draft.Outcome{Kind: draft.OutcomeConfirmed, Team: "t1", Player: "p1"}))
}

func TestAnnouncer_English(t *testing.T) {
	a := New("en", names)

	assert.Equal(t, "[WON] Giants wins the negotiating rights to Sasaki!",
		a.Announce(draft.Outcome{Kind: draft.OutcomeWon, Team: "t1", Player: "p1"}))
	assert.Equal(t, "[TAKEN] Sasaki is already signed; Tigers must bid again.",
		a.Announce(draft.Outcome{Kind: draft.OutcomeUnavailable, Team: "t2", Player: "p1"}))
}

func TestAnnouncer_UnknownIDsFallBackToRaw(t *testing.T) {
	a := New("en", nil)

	assert.Equal(t, "[CONFIRMED] t9 takes p9 as the sole bidder!",
		a.Announce(draft.Outcome{Kind: draft.OutcomeConfirmed, Team: "t9", Player: "p9"}))
}

func TestParseLang(t *testing.T) {
	assert.Equal(t, language.Japanese, ParseLang("ja"))
	assert.Equal(t, language.Japanese, ParseLang("ja-JP"))
	assert.Equal(t, language.English, ParseLang("en-US"))
	assert.Equal(t, language.English, ParseLang(""))
	assert.Equal(t, language.English, ParseLang("!!"))
}
