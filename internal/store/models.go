package store

import (
	"database/sql"
	"time"
)

// Player represents one roster entry together with its latest season snapshot
type Player struct {
	ID           int64          `json:"id" db:"id"`
	Name         string         `json:"name" db:"name"`
	Team         string         `json:"team" db:"team"`
	Position     sql.NullString `json:"position,omitempty" db:"position"`
	Height       sql.NullString `json:"height,omitempty" db:"height"`
	Weight       float64        `json:"weight" db:"weight"`
	BirthDate    sql.NullString `json:"birth_date,omitempty" db:"birth_date"`
	BirthCountry sql.NullString `json:"birth_country,omitempty" db:"birth_country"`
	Experience   sql.NullString `json:"experience,omitempty" db:"experience"`
	College      sql.NullString `json:"college,omitempty" db:"college"`
	URL          sql.NullString `json:"url,omitempty" db:"url"`
	SeasonStats
}

// SeasonStats is the per-game stat line of a player's most recent regular season.
// Every numeric column defaults to zero.
type SeasonStats struct {
	Season                sql.NullString `json:"season,omitempty" db:"season"`
	Games                 float64        `json:"games" db:"games"`
	GamesStarted          float64        `json:"games_started" db:"games_started"`
	MinutesPerGame        float64        `json:"minutes_per_game" db:"minutes_per_game"`
	FieldGoals            float64        `json:"field_goals" db:"field_goals"`
	FieldGoalAttempts     float64        `json:"field_goal_attempts" db:"field_goal_attempts"`
	FieldGoalPercentage   float64        `json:"field_goal_percentage" db:"field_goal_percentage"`
	ThreePointers         float64        `json:"three_pointers" db:"three_pointers"`
	ThreePointAttempts    float64        `json:"three_point_attempts" db:"three_point_attempts"`
	ThreePointPercentage  float64        `json:"three_point_percentage" db:"three_point_percentage"`
	TwoPointers           float64        `json:"two_pointers" db:"two_pointers"`
	TwoPointAttempts      float64        `json:"two_point_attempts" db:"two_point_attempts"`
	TwoPointPercentage    float64        `json:"two_point_percentage" db:"two_point_percentage"`
	EffectiveFGPercentage float64        `json:"effective_fg_percentage" db:"effective_fg_percentage"`
	FreeThrows            float64        `json:"free_throws" db:"free_throws"`
	FreeThrowAttempts     float64        `json:"free_throw_attempts" db:"free_throw_attempts"`
	FreeThrowPercentage   float64        `json:"free_throw_percentage" db:"free_throw_percentage"`
	OffensiveRebounds     float64        `json:"offensive_rebounds" db:"offensive_rebounds"`
	DefensiveRebounds     float64        `json:"defensive_rebounds" db:"defensive_rebounds"`
	TotalRebounds         float64        `json:"total_rebounds" db:"total_rebounds"`
	Assists               float64        `json:"assists" db:"assists"`
	Steals                float64        `json:"steals" db:"steals"`
	Blocks                float64        `json:"blocks" db:"blocks"`
	Turnovers             float64        `json:"turnovers" db:"turnovers"`
	PersonalFouls         float64        `json:"personal_fouls" db:"personal_fouls"`
	PointsPerGame         float64        `json:"points_per_game" db:"points_per_game"`
}

// GameLog represents one scheduled game from a monthly schedule page
type GameLog struct {
	ID           int64          `json:"id" db:"id"`
	SeasonYear   int            `json:"season_year" db:"season_year"`
	Month        string         `json:"month" db:"month"`
	GameDate     string         `json:"game_date" db:"game_date"`
	StartET      sql.NullString `json:"start_et,omitempty" db:"start_et"`
	VisitorTeam  string         `json:"visitor_team" db:"visitor_team"`
	VisitorPts   int            `json:"visitor_pts" db:"visitor_pts"`
	HomeTeam     string         `json:"home_team" db:"home_team"`
	HomePts      int            `json:"home_pts" db:"home_pts"`
	BoxScoreLink sql.NullString `json:"box_score_link,omitempty" db:"box_score_link"`
	Overtime     sql.NullString `json:"overtime,omitempty" db:"overtime"`
	Attendance   sql.NullString `json:"attendance,omitempty" db:"attendance"`
	Notes        sql.NullString `json:"notes,omitempty" db:"notes"`
}

// BoxScoreLine is a player's basic stat line for one game
type BoxScoreLine struct {
	ID           int64          `json:"id" db:"id"`
	BoxScoreLink string         `json:"box_score_link" db:"box_score_link"`
	Team         string         `json:"team" db:"team"`
	PlayerName   string         `json:"player_name" db:"player_name"`
	Starter      bool           `json:"starter" db:"starter"`
	MP           sql.NullString `json:"mp,omitempty" db:"mp"`
	FG           int            `json:"fg" db:"fg"`
	FGA          int            `json:"fga" db:"fga"`
	FGPct        float64        `json:"fg_pct" db:"fg_pct"`
	ThreeP       int            `json:"threep" db:"threep"`
	ThreePA      int            `json:"threepa" db:"threepa"`
	ThreePPct    float64        `json:"threep_pct" db:"threep_pct"`
	FT           int            `json:"ft" db:"ft"`
	FTA          int            `json:"fta" db:"fta"`
	FTPct        float64        `json:"ft_pct" db:"ft_pct"`
	ORB          int            `json:"orb" db:"orb"`
	DRB          int            `json:"drb" db:"drb"`
	TRB          int            `json:"trb" db:"trb"`
	AST          int            `json:"ast" db:"ast"`
	STL          int            `json:"stl" db:"stl"`
	BLK          int            `json:"blk" db:"blk"`
	TOV          int            `json:"tov" db:"tov"`
	PF           int            `json:"pf" db:"pf"`
	PTS          int            `json:"pts" db:"pts"`
	PlusMinus    int            `json:"plus_minus" db:"plus_minus"`
}

// AdvancedBoxScoreLine is a player's efficiency line for one game
type AdvancedBoxScoreLine struct {
	ID           int64          `json:"id" db:"id"`
	BoxScoreLink string         `json:"box_score_link" db:"box_score_link"`
	Team         string         `json:"team" db:"team"`
	PlayerName   string         `json:"player_name" db:"player_name"`
	Starter      bool           `json:"starter" db:"starter"`
	MP           sql.NullString `json:"mp,omitempty" db:"mp"`
	TSPct        float64        `json:"ts_pct" db:"ts_pct"`
	EFGPct       float64        `json:"efg_pct" db:"efg_pct"`
	ThreePAr     float64        `json:"threepar" db:"threepar"`
	FTr          float64        `json:"ftr" db:"ftr"`
	ORBPct       float64        `json:"orb_pct" db:"orb_pct"`
	DRBPct       float64        `json:"drb_pct" db:"drb_pct"`
	TRBPct       float64        `json:"trb_pct" db:"trb_pct"`
	ASTPct       float64        `json:"ast_pct" db:"ast_pct"`
	STLPct       float64        `json:"stl_pct" db:"stl_pct"`
	BLKPct       float64        `json:"blk_pct" db:"blk_pct"`
	TOVPct       float64        `json:"tov_pct" db:"tov_pct"`
	USGPct       float64        `json:"usg_pct" db:"usg_pct"`
	ORtg         int            `json:"ortg" db:"ortg"`
	DRtg         int            `json:"drtg" db:"drtg"`
	BPM          float64        `json:"bpm" db:"bpm"`
}

// IngestRun records one execution of a pipeline job
type IngestRun struct {
	ID            string         `json:"id" db:"id"`
	Job           string         `json:"job" db:"job"`
	Status        string         `json:"status" db:"status"`
	ItemsTotal    int            `json:"items_total" db:"items_total"`
	Ingested      int            `json:"ingested" db:"ingested"`
	Skipped       int            `json:"skipped" db:"skipped"`
	RowsInserted  int            `json:"rows_inserted" db:"rows_inserted"`
	RowsDuplicate int            `json:"rows_duplicate" db:"rows_duplicate"`
	RowsRejected  int            `json:"rows_rejected" db:"rows_rejected"`
	LastError     sql.NullString `json:"last_error,omitempty" db:"last_error"`
	StartedAt     time.Time      `json:"started_at" db:"started_at"`
	FinishedAt    sql.NullTime   `json:"finished_at,omitempty" db:"finished_at"`
}
