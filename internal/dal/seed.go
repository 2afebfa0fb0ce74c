package dal

import (
	"github.com/google/uuid"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/models"
)

// seedNamespace keeps seed ids stable across stores and restarts
var seedNamespace = uuid.MustParse("6f1c2a4e-9b7d-4f3a-8e21-5d0c7b9a1e33")

func seedID(kind, name string) string {
	return uuid.NewSHA1(seedNamespace, []byte(kind+":"+name)).String()
}

func newID() string {
	return uuid.NewString()
}

func getDefaultTeams() []models.Team {
	raw := []struct {
		name, first, second string
		order               int
	}{
		{"読売ジャイアンツ", "#F97709", "#000000", 1},
		{"阪神タイガース", "#FFE100", "#000000", 2},
		{"横浜DeNAベイスターズ", "#0055A5", "#FFFFFF", 3},
		{"広島東洋カープ", "#E60012", "#FFFFFF", 4},
		{"東京ヤクルトスワローズ", "#00AB5C", "#E60012", 5},
		{"中日ドラゴンズ", "#002569", "#FFFFFF", 6},
		{"福岡ソフトバンクホークス", "#F5C700", "#000000", 7},
		{"北海道日本ハムファイターズ", "#006298", "#B08E4C", 8},
		{"千葉ロッテマリーンズ", "#000000", "#FFFFFF", 9},
		{"東北楽天ゴールデンイーグルス", "#860010", "#FFB81C", 10},
		{"オリックス・バファローズ", "#000019", "#B08E4C", 11},
		{"埼玉西武ライオンズ", "#1F366A", "#FFFFFF", 12},
	}
	teams := make([]models.Team, len(raw))
	for i, r := range raw {
		teams[i] = models.Team{
			ID:          seedID("team", r.name),
			Name:        r.name,
			Order:       r.order,
			FirstColor:  r.first,
			SecondColor: r.second,
		}
	}
	return teams
}

func getDefaultPlayers() []models.Player {
	hs, univ, ind := models.CategoryHighSchool, models.CategoryUniversity, models.CategoryIndependent
	p, c, inf, of := models.PositionPitcher, models.PositionCatcher, models.PositionInfield, models.PositionOutfield

	raw := []struct {
		name     string
		category models.Category
		position models.Position
		team     string
		bt       string
		height   int
		weight   int
		intro    string
	}{
		{"石川 大翔", hs, p, "大阪桐蔭高", "右投右打", 188, 86, "最速154キロの本格派右腕"},
		{"中村 蒼真", hs, p, "仙台育英高", "左投左打", 182, 78, "変化球の精度が高いサウスポー"},
		{"佐藤 陽向", hs, c, "横浜高", "右投右打", 178, 82, "二塁送球1.8秒台の強肩捕手"},
		{"高橋 湊", hs, inf, "智辯和歌山高", "右投左打", 180, 75, "広角に打ち分ける遊撃手"},
		{"渡辺 颯", hs, of, "東海大相模高", "左投左打", 176, 72, "50m5秒9の俊足外野手"},
		{"小林 悠真", univ, p, "明治大", "右投右打", 185, 88, "リーグ戦通算20勝の即戦力"},
		{"加藤 蓮", univ, p, "青山学院大", "右投右打", 190, 92, "最速157キロのリリーフ候補"},
		{"吉田 樹", univ, c, "早稲田大", "右投右打", 180, 85, "配球に定評のある司令塔"},
		{"山本 大和", univ, inf, "亜細亜大", "右投右打", 183, 90, "通算15本塁打の長距離砲"},
		{"松本 律", univ, inf, "東洋大", "右投左打", 172, 70, "守備範囲の広い二塁手"},
		{"井上 海斗", univ, of, "法政大", "左投左打", 179, 80, "三拍子そろった中堅手"},
		{"木村 隼", ind, p, "徳島インディゴソックス", "左投左打", 184, 84, "独立リーグ奪三振王"},
		{"林 拓海", ind, inf, "高知ファイティングドッグス", "右投右打", 181, 88, "勝負強い三塁手"},
		{"清水 晴", ind, of, "信濃グランセローズ", "右投右打", 186, 91, "パワーが魅力の右翼手"},
	}
	players := make([]models.Player, len(raw))
	for i, r := range raw {
		players[i] = models.Player{
			ID:           seedID("player", r.name),
			Name:         r.name,
			Category:     r.category,
			Position:     r.position,
			Team:         r.team,
			BatsThrows:   r.bt,
			Height:       r.height,
			Weight:       r.weight,
			Introduction: r.intro,
		}
	}
	return players
}
