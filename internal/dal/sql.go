package dal

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/draft"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/models"
)

// sqlStore holds the queries shared by the SQLite and Postgres stores.
// Queries are written with ? placeholders and rebound for the driver.
type sqlStore struct {
	db      *sql.DB
	dollars bool
}

func (s *sqlStore) q(query string) string {
	if !s.dollars {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) Ping() error {
	return s.db.Ping()
}

// Close releases the underlying connection pool
func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) seedIfEmpty() error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM teams").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.seedData()
}

func (s *sqlStore) seedData() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range getDefaultTeams() {
		if _, err := tx.Exec(s.q(`
			INSERT INTO teams (id, name, standing, first_color, second_color)
			VALUES (?, ?, ?, ?, ?)
		`), t.ID, t.Name, t.Order, t.FirstColor, t.SecondColor); err != nil {
			return fmt.Errorf("seed team %s: %w", t.Name, err)
		}
	}
	for _, p := range getDefaultPlayers() {
		if _, err := tx.Exec(s.q(insertPlayerSQL), playerArgs(&p)...); err != nil {
			return fmt.Errorf("seed player %s: %w", p.Name, err)
		}
	}
	return tx.Commit()
}

func (s *sqlStore) Reset() error {
	for _, table := range []string{"runs", "comments", "players", "teams"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return s.seedData()
}

func (s *sqlStore) ListTeams() ([]models.Team, error) {
	rows, err := s.db.Query(`
		SELECT id, name, standing, first_color, second_color
		FROM teams ORDER BY standing ASC, name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := []models.Team{}
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Order, &t.FirstColor, &t.SecondColor); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *sqlStore) AddTeam(team *models.Team) (*models.Team, error) {
	if team.ID == "" {
		team.ID = newID()
	}
	if team.Order == 0 {
		if err := s.db.QueryRow("SELECT COUNT(*) + 1 FROM teams").Scan(&team.Order); err != nil {
			return nil, err
		}
	}
	_, err := s.db.Exec(s.q(`
		INSERT INTO teams (id, name, standing, first_color, second_color)
		VALUES (?, ?, ?, ?, ?)
	`), team.ID, team.Name, team.Order, team.FirstColor, team.SecondColor)
	if err != nil {
		return nil, fmt.Errorf("insert team %s: %w", team.ID, err)
	}
	return team, nil
}

const playerColumns = `id, name, category, position, team, bats_throws, height, weight, introduction, scout_comment`

const insertPlayerSQL = `
	INSERT INTO players (` + playerColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func playerArgs(p *models.Player) []any {
	return []any{p.ID, p.Name, p.Category, p.Position, p.Team, p.BatsThrows, p.Height, p.Weight, p.Introduction, p.ScoutComment}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row scanner) (models.Player, error) {
	var p models.Player
	var category, position string
	err := row.Scan(&p.ID, &p.Name, &category, &position, &p.Team, &p.BatsThrows,
		&p.Height, &p.Weight, &p.Introduction, &p.ScoutComment)
	p.Category = models.Category(category)
	p.Position = models.Position(position)
	return p, err
}

func (s *sqlStore) ListPlayers() ([]models.Player, error) {
	rows, err := s.db.Query(`SELECT ` + playerColumns + ` FROM players ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []models.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *sqlStore) GetPlayer(id string) (*models.Player, error) {
	p, err := scanPlayer(s.db.QueryRow(s.q(`SELECT `+playerColumns+` FROM players WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *sqlStore) AddPlayer(player *models.Player) (*models.Player, error) {
	if player.ID == "" {
		player.ID = newID()
	}
	if _, err := s.db.Exec(s.q(insertPlayerSQL), playerArgs(player)...); err != nil {
		return nil, fmt.Errorf("insert player %s: %w", player.ID, err)
	}
	return player, nil
}

const commentColumns = `id, player_id, text, rank, velocity, command, breaking_ball, mechanics,
	bat_control, power, speed, defense, potential, created_at`

func scanComment(row scanner) (models.Comment, error) {
	var c models.Comment
	var rank string
	var ratings [9]sql.NullFloat64
	err := row.Scan(&c.ID, &c.PlayerID, &c.Text, &rank,
		&ratings[0], &ratings[1], &ratings[2], &ratings[3],
		&ratings[4], &ratings[5], &ratings[6], &ratings[7], &ratings[8],
		&c.CreatedAt)
	if err != nil {
		return c, err
	}
	c.Rank = models.Rank(rank)
	targets := []**float64{
		&c.Ratings.Velocity, &c.Ratings.Command, &c.Ratings.BreakingBall, &c.Ratings.Mechanics,
		&c.Ratings.BatControl, &c.Ratings.Power, &c.Ratings.Speed, &c.Ratings.Defense, &c.Ratings.Potential,
	}
	for i, r := range ratings {
		if r.Valid {
			v := r.Float64
			*targets[i] = &v
		}
	}
	return c, nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func (s *sqlStore) queryComments(query string, args ...any) ([]models.Comment, error) {
	rows, err := s.db.Query(s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *sqlStore) ListComments(playerID string) ([]models.Comment, error) {
	return s.queryComments(`SELECT `+commentColumns+` FROM comments WHERE player_id = ? ORDER BY created_at ASC`, playerID)
}

func (s *sqlStore) AllComments() (map[string][]models.Comment, error) {
	comments, err := s.queryComments(`SELECT ` + commentColumns + ` FROM comments ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]models.Comment)
	for _, c := range comments {
		out[c.PlayerID] = append(out[c.PlayerID], c)
	}
	return out, nil
}

func (s *sqlStore) AddComment(comment *models.Comment) (*models.Comment, error) {
	if _, err := s.GetPlayer(comment.PlayerID); err != nil {
		return nil, err
	}
	if comment.ID == "" {
		comment.ID = newID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	r := comment.Ratings
	_, err := s.db.Exec(s.q(`
		INSERT INTO comments (`+commentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), comment.ID, comment.PlayerID, comment.Text, string(comment.Rank),
		nullable(r.Velocity), nullable(r.Command), nullable(r.BreakingBall), nullable(r.Mechanics),
		nullable(r.BatControl), nullable(r.Power), nullable(r.Speed), nullable(r.Defense), nullable(r.Potential),
		comment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return comment, nil
}

func (s *sqlStore) CreateRun(id string, state *draft.State) error {
	data, err := encodeState(id, state)
	if err != nil {
		return err
	}
	var exists int
	if err := s.db.QueryRow(s.q(`SELECT COUNT(*) FROM runs WHERE id = ?`), id).Scan(&exists); err != nil {
		return err
	}
	if exists > 0 {
		return fmt.Errorf("run %s: %w", id, ErrConflict)
	}
	now := time.Now().UTC()
	_, err = s.db.Exec(s.q(`INSERT INTO runs (id, state, created_at, updated_at) VALUES (?, ?, ?, ?)`),
		id, data, now, now)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", id, err)
	}
	return nil
}

func (s *sqlStore) GetRun(id string) (*draft.State, error) {
	var data []byte
	err := s.db.QueryRow(s.q(`SELECT state FROM runs WHERE id = ?`), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decodeState(id, data)
}

func (s *sqlStore) SaveRun(id string, state *draft.State) error {
	data, err := encodeState(id, state)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(s.q(`UPDATE runs SET state = ?, updated_at = ? WHERE id = ?`), data, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *sqlStore) DeleteRun(id string) error {
	res, err := s.db.Exec(s.q(`DELETE FROM runs WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}
