package bbref

import "github.com/fortuna/bbref/internal/scrape"

func text(name string, keys []string, labels ...string) scrape.Field {
	return scrape.Field{Name: name, Keys: keys, Labels: labels, Kind: scrape.Text}
}

func integer(name string, keys []string, labels ...string) scrape.Field {
	return scrape.Field{Name: name, Keys: keys, Labels: labels, Kind: scrape.Int}
}

func float(name string, keys []string, labels ...string) scrape.Field {
	return scrape.Field{Name: name, Keys: keys, Labels: labels, Kind: scrape.Float}
}

func keys(k ...string) []string { return k }

// RosterTable is the team roster on a team season page.
var RosterTable = &scrape.TableSpec{
	Name:     "roster",
	Match:    scrape.Exact("roster"),
	Identity: "name",
	Fields: []scrape.Field{
		text("name", keys("player"), "Player"),
		text("position", keys("pos"), "Pos"),
		text("height", keys("height"), "Ht"),
		float("weight", keys("weight"), "Wt"),
		text("birth_date", keys("birth_date"), "Birth Date"),
		text("birth_country", keys("birth_country", "flag"), "Birth"),
		text("experience", keys("years_experience"), "Exp"),
		text("college", keys("college"), "College"),
	},
}

// PerGameTable is the per-game averages table on a player profile page.
// Older and newer page layouts use different data-stat keys.
var PerGameTable = &scrape.TableSpec{
	Name:     "per_game_stats",
	Match:    scrape.Exact("per_game_stats"),
	Identity: "season",
	Fields: []scrape.Field{
		text("season", keys("year_id", "season"), "Season"),
		float("games", keys("games", "g"), "G"),
		float("games_started", keys("games_started", "gs"), "GS"),
		float("minutes_per_game", keys("mp_per_g"), "MP"),
		float("field_goals", keys("fg_per_g"), "FG"),
		float("field_goal_attempts", keys("fga_per_g"), "FGA"),
		float("field_goal_percentage", keys("fg_pct"), "FG%"),
		float("three_pointers", keys("fg3_per_g"), "3P"),
		float("three_point_attempts", keys("fg3a_per_g"), "3PA"),
		float("three_point_percentage", keys("fg3_pct"), "3P%"),
		float("two_pointers", keys("fg2_per_g"), "2P"),
		float("two_point_attempts", keys("fg2a_per_g"), "2PA"),
		float("two_point_percentage", keys("fg2_pct"), "2P%"),
		float("effective_fg_percentage", keys("efg_pct"), "eFG%"),
		float("free_throws", keys("ft_per_g"), "FT"),
		float("free_throw_attempts", keys("fta_per_g"), "FTA"),
		float("free_throw_percentage", keys("ft_pct"), "FT%"),
		float("offensive_rebounds", keys("orb_per_g"), "ORB"),
		float("defensive_rebounds", keys("drb_per_g"), "DRB"),
		float("total_rebounds", keys("trb_per_g"), "TRB"),
		float("assists", keys("ast_per_g"), "AST"),
		float("steals", keys("stl_per_g"), "STL"),
		float("blocks", keys("blk_per_g"), "BLK"),
		float("turnovers", keys("tov_per_g"), "TOV"),
		float("personal_fouls", keys("pf_per_g"), "PF"),
		float("points_per_game", keys("pts_per_g"), "PTS"),
	},
}

// ScheduleTable is the monthly schedule of a season.
var ScheduleTable = &scrape.TableSpec{
	Name:     "schedule",
	Match:    scrape.Exact("schedule"),
	Identity: "game_date",
	Fields: []scrape.Field{
		text("game_date", keys("date_game"), "Date"),
		text("start_et", keys("game_start_time"), "Start (ET)"),
		text("visitor_team", keys("visitor_team_name"), "Visitor/Neutral"),
		integer("visitor_pts", keys("visitor_pts")),
		text("home_team", keys("home_team_name"), "Home/Neutral"),
		integer("home_pts", keys("home_pts")),
		{Name: "box_score_link", Keys: keys("box_score_text"), Kind: scrape.Link},
		text("overtime", keys("overtimes")),
		text("attendance", keys("attendance", "attend"), "Attend."),
		text("notes", keys("game_remarks", "remarks"), "Notes"),
	},
}

// BasicBoxTable matches the full-game basic box score of either team.
var BasicBoxTable = &scrape.TableSpec{
	Name:          "box-game-basic",
	Match:         scrape.Pattern("box-", "-game-basic"),
	Identity:      "player",
	CaptionSuffix: " Basic and Advanced Stats",
	StarterClass:  "starter",
	Fields: []scrape.Field{
		text("player", keys("player")),
		text("mp", keys("mp")),
		integer("fg", keys("fg")),
		integer("fga", keys("fga")),
		float("fg_pct", keys("fg_pct")),
		integer("fg3", keys("fg3")),
		integer("fg3a", keys("fg3a")),
		float("fg3_pct", keys("fg3_pct")),
		integer("ft", keys("ft")),
		integer("fta", keys("fta")),
		float("ft_pct", keys("ft_pct")),
		integer("orb", keys("orb")),
		integer("drb", keys("drb")),
		integer("trb", keys("trb")),
		integer("ast", keys("ast")),
		integer("stl", keys("stl")),
		integer("blk", keys("blk")),
		integer("tov", keys("tov")),
		integer("pf", keys("pf")),
		integer("pts", keys("pts")),
		integer("plus_minus", keys("plus_minus")),
	},
}

// AdvancedBoxTable matches the advanced box score of either team.
var AdvancedBoxTable = &scrape.TableSpec{
	Name:          "box-game-advanced",
	Match:         scrape.Pattern("box-", "-game-advanced"),
	Identity:      "player",
	CaptionSuffix: " Advanced Stats",
	StarterClass:  "starter",
	Fields: []scrape.Field{
		text("player", keys("player")),
		text("mp", keys("mp")),
		float("ts_pct", keys("ts_pct")),
		float("efg_pct", keys("efg_pct")),
		float("fg3a_per_fga_pct", keys("fg3a_per_fga_pct")),
		float("fta_per_fga_pct", keys("fta_per_fga_pct")),
		float("orb_pct", keys("orb_pct")),
		float("drb_pct", keys("drb_pct")),
		float("trb_pct", keys("trb_pct")),
		float("ast_pct", keys("ast_pct")),
		float("stl_pct", keys("stl_pct")),
		float("blk_pct", keys("blk_pct")),
		float("tov_pct", keys("tov_pct")),
		float("usg_pct", keys("usg_pct")),
		integer("off_rtg", keys("off_rtg")),
		integer("def_rtg", keys("def_rtg")),
		float("bpm", keys("bpm")),
	},
}
