package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/floatpack/rideathon/internal/eventconfig"
	"github.com/floatpack/rideathon/internal/rideathon"
)

// Fixed width so that timestamps sort lexically in SQL.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore implements Store over the relational schema in
// internal/migrations.
type SQLiteStore struct {
	db         *sql.DB
	locks      *keyedMutex
	now        func() time.Time
	bcryptCost int
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		db:         db,
		locks:      newKeyedMutex(),
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func newToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

// parseTime accepts any fraction width. The driver may hand stored values
// back with trailing zeros trimmed.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Teams

const teamColumns = `id, name, secret_hash, members, color, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeam(row rowScanner) (rideathon.Team, error) {
	var t rideathon.Team
	var members, createdAt string
	if err := row.Scan(&t.ID, &t.Name, &t.SecretHash, &members, &t.Color, &createdAt); err != nil {
		return t, err
	}
	if err := json.Unmarshal([]byte(members), &t.Members); err != nil {
		return t, fmt.Errorf("decoding members of team %s: %w", t.ID, err)
	}
	var err error
	t.CreatedAt, err = parseTime(createdAt)
	return t, err
}

func (s *SQLiteStore) teamWhere(ctx context.Context, q querier, where string, arg any) (rideathon.Team, error) {
	t, err := scanTeam(q.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return t, fmt.Errorf("team: %w", rideathon.ErrNotFound)
	}
	return t, err
}

func (s *SQLiteStore) TeamByName(ctx context.Context, name string) (rideathon.Team, error) {
	return s.teamWhere(ctx, s.db, `name = ? COLLATE NOCASE`, name)
}

func (s *SQLiteStore) Team(ctx context.Context, id string) (rideathon.Team, error) {
	return s.teamWhere(ctx, s.db, `id = ?`, id)
}

func (s *SQLiteStore) ListTeams(ctx context.Context) ([]rideathon.Team, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []rideathon.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *SQLiteStore) CreateTeamSession(ctx context.Context, teamID string) (string, error) {
	token := newToken()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO team_sessions (id, team_id, created_at) VALUES (?, ?, ?)`,
		token, teamID, formatTime(s.now()),
	)
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	return token, nil
}

func (s *SQLiteStore) TeamFromSession(ctx context.Context, token string) (rideathon.Team, error) {
	t, err := scanTeam(s.db.QueryRowContext(ctx, `
		SELECT t.id, t.name, t.secret_hash, t.members, t.color, t.created_at
		FROM team_sessions s
		JOIN teams t ON t.id = s.team_id
		WHERE s.id = ?
	`, token))
	if errors.Is(err, sql.ErrNoRows) {
		return t, errNoSession
	}
	return t, err
}

// Challenges

const challengeColumns = `id, name, description, pauses_distance, lat, lng, status, started_at, ended_at, team_id, created_at`

func scanChallenge(row rowScanner) (rideathon.Challenge, error) {
	var c rideathon.Challenge
	var status, createdAt string
	var startedAt, endedAt, teamID sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.PausesDistance, &c.Lat, &c.Lng,
		&status, &startedAt, &endedAt, &teamID, &createdAt)
	if err != nil {
		return c, err
	}
	c.Status = rideathon.Status(status)
	if !c.Status.Valid() {
		return c, fmt.Errorf("challenge %s has unknown status %q", c.ID, status)
	}
	c.TeamID = teamID.String
	if c.StartedAt, err = parseNullTime(startedAt); err != nil {
		return c, err
	}
	if c.EndedAt, err = parseNullTime(endedAt); err != nil {
		return c, err
	}
	c.CreatedAt, err = parseTime(createdAt)
	return c, err
}

func (s *SQLiteStore) ListChallenges(ctx context.Context, teamID string) ([]rideathon.Challenge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+challengeColumns+` FROM challenges
		 WHERE team_id = ? OR team_id IS NULL
		 ORDER BY name, id`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var challenges []rideathon.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}

// Modifiers and offsets

const modifierColumns = `id, multiplier, creator_id, receiver_id, challenge_id, created_at, starts_at, ends_at`

func scanModifier(row rowScanner) (rideathon.Modifier, error) {
	var m rideathon.Modifier
	var challengeID, startsAt, endsAt sql.NullString
	var createdAt string
	err := row.Scan(&m.ID, &m.Multiplier, &m.CreatorID, &m.ReceiverID, &challengeID, &createdAt, &startsAt, &endsAt)
	if err != nil {
		return m, err
	}
	m.ChallengeID = challengeID.String
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return m, err
	}
	if m.StartsAt, err = parseNullTime(startsAt); err != nil {
		return m, err
	}
	m.EndsAt, err = parseNullTime(endsAt)
	return m, err
}

func queryModifiers(ctx context.Context, q querier, where string, args ...any) ([]rideathon.Modifier, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+modifierColumns+` FROM modifiers WHERE `+where+` ORDER BY created_at, rowid`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mods []rideathon.Modifier
	for rows.Next() {
		m, err := scanModifier(rows)
		if err != nil {
			return nil, err
		}
		mods = append(mods, m)
	}
	return mods, rows.Err()
}

const offsetColumns = `id, distance, creator_id, receiver_id, challenge_id, created_at`

func queryOffsets(ctx context.Context, q querier, where string, args ...any) ([]rideathon.Offset, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+offsetColumns+` FROM offsets WHERE `+where+` ORDER BY created_at, rowid`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offsets []rideathon.Offset
	for rows.Next() {
		var o rideathon.Offset
		var challengeID sql.NullString
		var createdAt string
		if err := rows.Scan(&o.ID, &o.Distance, &o.CreatorID, &o.ReceiverID, &challengeID, &createdAt); err != nil {
			return nil, err
		}
		o.ChallengeID = challengeID.String
		if o.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		offsets = append(offsets, o)
	}
	return offsets, rows.Err()
}

func insertModifier(ctx context.Context, q querier, m *rideathon.Modifier) error {
	m.ID = uuid.NewString()
	_, err := q.ExecContext(ctx,
		`INSERT INTO modifiers (`+modifierColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Multiplier, m.CreatorID, m.ReceiverID, nullString(m.ChallengeID),
		formatTime(m.CreatedAt), nullTime(m.StartsAt), nullTime(m.EndsAt),
	)
	if err != nil {
		return fmt.Errorf("inserting modifier: %w", err)
	}
	return nil
}

func insertOffset(ctx context.Context, q querier, o *rideathon.Offset) error {
	o.ID = uuid.NewString()
	_, err := q.ExecContext(ctx,
		`INSERT INTO offsets (`+offsetColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		o.ID, o.Distance, o.CreatorID, o.ReceiverID, nullString(o.ChallengeID), formatTime(o.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting offset: %w", err)
	}
	return nil
}

// Attempts

func loadAttempt(ctx context.Context, q querier, challengeID string) (rideathon.Attempt, error) {
	var a rideathon.Attempt
	c, err := scanChallenge(q.QueryRowContext(ctx,
		`SELECT `+challengeColumns+` FROM challenges WHERE id = ?`, challengeID))
	if errors.Is(err, sql.ErrNoRows) {
		return a, fmt.Errorf("challenge %s: %w", challengeID, rideathon.ErrNotFound)
	}
	if err != nil {
		return a, err
	}
	a.Challenge = c

	if a.Modifiers, err = queryModifiers(ctx, q, `challenge_id = ?`, challengeID); err != nil {
		return a, err
	}
	if a.Offsets, err = queryOffsets(ctx, q, `challenge_id = ?`, challengeID); err != nil {
		return a, err
	}
	return a, nil
}

func (s *SQLiteStore) Attempt(ctx context.Context, challengeID string) (rideathon.Attempt, error) {
	return loadAttempt(ctx, s.db, challengeID)
}

// modifyChallenge loads an attempt, applies fn, and saves every change it
// made in a transaction. Calls for the same challenge are serialised.
func (s *SQLiteStore) modifyChallenge(ctx context.Context, challengeID string, fn func(*rideathon.Attempt) error) (rideathon.Attempt, error) {
	unlock := s.locks.Lock(challengeID)
	defer unlock()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return rideathon.Attempt{}, err
	}
	defer tx.Rollback()

	a, err := loadAttempt(ctx, tx, challengeID)
	if err != nil {
		return a, err
	}
	from := a.Challenge.Status

	if err := fn(&a); err != nil {
		return a, err
	}
	if err := checkTeams(ctx, tx, newRecordTeams(a)...); err != nil {
		return a, err
	}

	c := a.Challenge
	res, err := tx.ExecContext(ctx, `
		UPDATE challenges SET status = ?, started_at = ?, ended_at = ?, team_id = ?
		WHERE id = ? AND status = ?`,
		string(c.Status), nullTime(c.StartedAt), nullTime(c.EndedAt), nullString(c.TeamID),
		c.ID, string(from),
	)
	if err != nil {
		return a, fmt.Errorf("updating challenge: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return a, fmt.Errorf("challenge %s changed concurrently: %w", c.ID, ErrConflict)
	}

	for i := range a.Modifiers {
		m := &a.Modifiers[i]
		if m.ID == "" {
			if err := insertModifier(ctx, tx, m); err != nil {
				return a, err
			}
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE modifiers SET ends_at = ? WHERE id = ?`, nullTime(m.EndsAt), m.ID,
		); err != nil {
			return a, fmt.Errorf("updating modifier: %w", err)
		}
	}
	for i := range a.Offsets {
		if a.Offsets[i].ID != "" {
			continue
		}
		if err := insertOffset(ctx, tx, &a.Offsets[i]); err != nil {
			return a, err
		}
	}

	return a, tx.Commit()
}

// newRecordTeams lists the teams referenced by records a transition appended.
func newRecordTeams(a rideathon.Attempt) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, m := range a.Modifiers {
		if m.ID == "" {
			add(m.CreatorID)
			add(m.ReceiverID)
		}
	}
	for _, o := range a.Offsets {
		if o.ID == "" {
			add(o.CreatorID)
			add(o.ReceiverID)
		}
	}
	return ids
}

func (s *SQLiteStore) StartChallenge(ctx context.Context, challengeID, teamID string) (rideathon.Attempt, error) {
	return s.modifyChallenge(ctx, challengeID, func(a *rideathon.Attempt) error {
		return a.Start(teamID, s.now())
	})
}

func (s *SQLiteStore) CompleteChallenge(ctx context.Context, challengeID, teamID string) (rideathon.Attempt, error) {
	return s.modifyChallenge(ctx, challengeID, func(a *rideathon.Attempt) error {
		if teamID != "" && a.Challenge.Status == rideathon.StatusActive && a.Challenge.TeamID != teamID {
			return fmt.Errorf("challenge %s: %w", challengeID, rideathon.ErrTeamMismatch)
		}
		return a.Complete(s.now())
	})
}

func (s *SQLiteStore) ForfeitChallenge(ctx context.Context, challengeID, teamID string, opts ...rideathon.ForfeitOption) (rideathon.Attempt, error) {
	return s.modifyChallenge(ctx, challengeID, func(a *rideathon.Attempt) error {
		if teamID == "" {
			teamID = a.Challenge.TeamID
		}
		return a.Forfeit(teamID, s.now(), opts...)
	})
}

// checkTeams returns ErrNotFound unless every id names a team.
func checkTeams(ctx context.Context, q querier, ids ...string) error {
	for _, id := range ids {
		var n int
		err := q.QueryRowContext(ctx, `SELECT 1 FROM teams WHERE id = ?`, id).Scan(&n)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("team %s: %w", id, rideathon.ErrNotFound)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) GrantModifier(ctx context.Context, m rideathon.Modifier) (rideathon.Modifier, error) {
	if err := checkTeams(ctx, s.db, m.CreatorID, m.ReceiverID); err != nil {
		return m, err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	m.ChallengeID = ""
	err := insertModifier(ctx, s.db, &m)
	return m, err
}

func (s *SQLiteStore) GrantOffset(ctx context.Context, o rideathon.Offset) (rideathon.Offset, error) {
	if err := checkTeams(ctx, s.db, o.CreatorID, o.ReceiverID); err != nil {
		return o, err
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	o.ChallengeID = ""
	err := insertOffset(ctx, s.db, &o)
	return o, err
}

// RecordDistance stores sample, stamping it with the store clock when At is
// zero, and returns what was stored.
func (s *SQLiteStore) RecordDistance(ctx context.Context, sample rideathon.DistanceSample) (rideathon.DistanceSample, error) {
	if sample.At.IsZero() {
		sample.At = s.now()
	}
	sample.At = sample.At.UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO distance_samples (team_id, recorded_at, distance) VALUES (?, ?, ?)`,
		sample.TeamID, formatTime(sample.At), sample.Distance,
	)
	if err != nil {
		return sample, fmt.Errorf("recording distance: %w", err)
	}
	return sample, nil
}

// Scorecards

func (s *SQLiteStore) ScoreInputs(ctx context.Context, teamID string) (rideathon.ScoreInputs, error) {
	in := rideathon.ScoreInputs{TeamID: teamID}
	if err := checkTeams(ctx, s.db, teamID); err != nil {
		return in, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT recorded_at, distance FROM distance_samples WHERE team_id = ? ORDER BY recorded_at, id`, teamID)
	if err != nil {
		return in, err
	}
	for rows.Next() {
		sample := rideathon.DistanceSample{TeamID: teamID}
		var at string
		if err := rows.Scan(&at, &sample.Distance); err != nil {
			rows.Close()
			return in, err
		}
		if sample.At, err = parseTime(at); err != nil {
			rows.Close()
			return in, err
		}
		in.Samples = append(in.Samples, sample)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return in, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT `+challengeColumns+` FROM challenges WHERE team_id = ?`, teamID)
	if err != nil {
		return in, err
	}
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			rows.Close()
			return in, err
		}
		in.Challenges = append(in.Challenges, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return in, err
	}

	if in.Modifiers, err = queryModifiers(ctx, s.db, `receiver_id = ?`, teamID); err != nil {
		return in, err
	}
	if in.Offsets, err = queryOffsets(ctx, s.db, `receiver_id = ? OR creator_id = ?`, teamID, teamID); err != nil {
		return in, err
	}
	return in, nil
}

func (s *SQLiteStore) AppendScorecard(ctx context.Context, sc rideathon.Scorecard) (rideathon.Scorecard, error) {
	sc.ID = uuid.NewString()
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scorecards (id, team_id, challenges_completed, distance_traveled, distance_earned, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.TeamID, sc.ChallengesCompleted, sc.DistanceTraveled, sc.DistanceEarned, formatTime(sc.CreatedAt),
	)
	if err != nil {
		return sc, fmt.Errorf("appending scorecard: %w", err)
	}
	return sc, nil
}

func (s *SQLiteStore) Standings(ctx context.Context) ([]rideathon.Standing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.secret_hash, t.members, t.color, t.created_at,
			sc.id, sc.challenges_completed, sc.distance_traveled, sc.distance_earned, sc.created_at
		FROM teams t
		LEFT JOIN scorecards sc ON sc.id = (
			SELECT id FROM scorecards WHERE team_id = t.id
			ORDER BY created_at DESC, rowid DESC LIMIT 1
		)
		ORDER BY t.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var standings []rideathon.Standing
	for rows.Next() {
		var st rideathon.Standing
		var members, teamCreated string
		var scID, scCreated sql.NullString
		var completed sql.NullInt64
		var traveled, earned sql.NullFloat64
		err := rows.Scan(&st.Team.ID, &st.Team.Name, &st.Team.SecretHash, &members, &st.Team.Color, &teamCreated,
			&scID, &completed, &traveled, &earned, &scCreated)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(members), &st.Team.Members); err != nil {
			return nil, fmt.Errorf("decoding members of team %s: %w", st.Team.ID, err)
		}
		if st.Team.CreatedAt, err = parseTime(teamCreated); err != nil {
			return nil, err
		}
		if scID.Valid {
			created, err := parseTime(scCreated.String)
			if err != nil {
				return nil, err
			}
			st.Scorecard = &rideathon.Scorecard{
				ID:                  scID.String,
				TeamID:              st.Team.ID,
				ChallengesCompleted: int(completed.Int64),
				DistanceTraveled:    traveled.Float64,
				DistanceEarned:      earned.Float64,
				CreatedAt:           created,
			}
		}
		standings = append(standings, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rideathon.RankStandings(standings)
	return standings, nil
}

func (s *SQLiteStore) ScorecardHistory(ctx context.Context, teamID string, limit int) ([]rideathon.Scorecard, error) {
	if err := checkTeams(ctx, s.db, teamID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, team_id, challenges_completed, distance_traveled, distance_earned, created_at
		FROM scorecards WHERE team_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, teamID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []rideathon.Scorecard
	for rows.Next() {
		var sc rideathon.Scorecard
		var created string
		if err := rows.Scan(&sc.ID, &sc.TeamID, &sc.ChallengesCompleted, &sc.DistanceTraveled, &sc.DistanceEarned, &created); err != nil {
			return nil, err
		}
		if sc.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		history = append(history, sc)
	}
	return history, rows.Err()
}

// Admin

// Populate creates every team in ev and one challenge row per team and
// challenge template, so each team progresses independently.
func (s *SQLiteStore) Populate(ctx context.Context, ev eventconfig.Event) (PopulateResult, error) {
	var res PopulateResult

	// Hash outside the transaction; bcrypt is deliberately slow.
	hashes := make([]string, len(ev.Teams))
	for i, t := range ev.Teams {
		h, err := bcrypt.GenerateFromPassword([]byte(t.SecretCode), s.bcryptCost)
		if err != nil {
			return res, fmt.Errorf("hashing secret of team %q: %w", t.Name, err)
		}
		hashes[i] = string(h)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return res, err
	}
	defer tx.Rollback()

	now := formatTime(s.now())
	for i, t := range ev.Teams {
		if _, err := s.teamWhere(ctx, tx, `name = ? COLLATE NOCASE`, t.Name); err == nil {
			return res, fmt.Errorf("team %q already exists: %w", t.Name, ErrConflict)
		} else if !errors.Is(err, rideathon.ErrNotFound) {
			return res, err
		}

		members := t.Members
		if members == nil {
			members = []string{}
		}
		membersJSON, err := json.Marshal(members)
		if err != nil {
			return res, err
		}

		teamID := uuid.NewString()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO teams (`+teamColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
			teamID, t.Name, hashes[i], string(membersJSON), t.Color, now,
		); err != nil {
			return res, fmt.Errorf("inserting team %q: %w", t.Name, err)
		}
		res.Teams++

		for _, c := range ev.Challenges {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO challenges (id, name, description, pauses_distance, lat, lng, status, team_id, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				uuid.NewString(), c.Name, c.Description, boolInt(c.PausesDistance()), c.Latitude, c.Longitude,
				string(rideathon.StatusAvailable), teamID, now,
			); err != nil {
				return res, fmt.Errorf("inserting challenge %q: %w", c.Name, err)
			}
			res.Challenges++
		}
	}

	return res, tx.Commit()
}

// Clear removes all event data. Modifiers and offsets go before the
// challenges and teams they reference.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{
		"offsets", "modifiers", "scorecards", "distance_samples", "team_sessions", "challenges", "teams",
	} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	targets := []struct {
		table string
		dest  *int
	}{
		{"teams", &c.Teams},
		{"challenges", &c.Challenges},
		{"modifiers", &c.Modifiers},
		{"offsets", &c.Offsets},
		{"scorecards", &c.Scorecards},
	}
	for _, t := range targets {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t.table).Scan(t.dest); err != nil {
			return c, fmt.Errorf("counting %s: %w", t.table, err)
		}
	}
	return c, nil
}

// IsEmpty reports whether no team has been created yet.
func (s *SQLiteStore) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

// Ensure SQLiteStore implements Store at compile time.
var _ Store = (*SQLiteStore)(nil)
