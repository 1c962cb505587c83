package riot

// Wire types for the subset of the Riot API this crawler consumes. Only the
// fields the engine reads are declared; the decoder drops the rest.

// LeagueEntry is one ranked player's listing on a ladder page.
type LeagueEntry struct {
	SummonerName string `json:"summonerName"`
	SummonerID   string `json:"summonerId"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// Summoner is the account record resolved from a display name.
type Summoner struct {
	ID     string `json:"id"`
	PUUID  string `json:"puuid"`
	Name   string `json:"name"`
	Level  int    `json:"summonerLevel"`
	Region string `json:"-"`
}

// Match is a full match-v5 summary document.
type Match struct {
	Info MatchInfo `json:"info"`
}

// MatchInfo carries the match fields the transformer reads.
type MatchInfo struct {
	GameDuration int64         `json:"gameDuration"`
	GameVersion  string        `json:"gameVersion"`
	Teams        []MatchTeam   `json:"teams"`
	Participants []Participant `json:"participants"`
}

// MatchTeam is one side of a match, with its ban list and outcome.
type MatchTeam struct {
	TeamID int   `json:"teamId"`
	Win    bool  `json:"win"`
	Bans   []Ban `json:"bans"`
}

// Ban is a single champion ban.
type Ban struct {
	ChampionID int `json:"championId"`
	PickTurn   int `json:"pickTurn"`
}

// Participant is one player within a match summary.
type Participant struct {
	ParticipantID int    `json:"participantId"`
	TeamID        int    `json:"teamId"`
	ChampionID    int    `json:"championId"`
	PUUID         string `json:"puuid"`
	Summoner1ID   int    `json:"summoner1Id"`
	Summoner2ID   int    `json:"summoner2Id"`
}

// Timeline is a match-v5 timeline document.
type Timeline struct {
	Info TimelineInfo `json:"info"`
}

// TimelineInfo holds the per-minute frame snapshots.
type TimelineInfo struct {
	Frames []Frame `json:"frames"`
}

// Frame is one timeline snapshot; participant frames are keyed by the
// participant id rendered as a string.
type Frame struct {
	ParticipantFrames map[string]ParticipantFrame `json:"participantFrames"`
}

// ParticipantFrame is one player's state within a frame.
type ParticipantFrame struct {
	Position      Position `json:"position"`
	MinionsKilled int      `json:"minionsKilled"`
}

// Position is a map coordinate on the 0..~15000 Summoner's Rift grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}
