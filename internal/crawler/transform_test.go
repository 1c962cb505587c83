package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TheBoringBakery/MoonCaker/internal/riot"
)

// testMatch builds a structurally valid 5v5 match with the conventional
// participant layout used across these tests: ids 1-5 on team 100, 6-10 on
// team 200, roles top/jungle/mid/adc/support in that order per team.
func testMatch() riot.Match {
	participant := func(id, teamID, champion int, smite bool) riot.Participant {
		p := riot.Participant{
			ParticipantID: id,
			TeamID:        teamID,
			ChampionID:    champion,
			PUUID:         "puuid-" + string(rune('0'+id%10)),
			Summoner1ID:   4,
			Summoner2ID:   14,
		}
		if smite {
			p.Summoner2ID = 11
		}
		return p
	}
	return riot.Match{Info: riot.MatchInfo{
		GameDuration: 1845,
		GameVersion:  "13.24.545.2387",
		Teams: []riot.MatchTeam{
			{TeamID: 100, Win: true, Bans: []riot.Ban{{ChampionID: 1}, {ChampionID: 2}}},
			{TeamID: 200, Win: false, Bans: []riot.Ban{{ChampionID: 3}, {ChampionID: 4}}},
		},
		Participants: []riot.Participant{
			participant(1, 100, 101, false), // top
			participant(2, 100, 102, true),  // jungle
			participant(3, 100, 103, false), // mid
			participant(4, 100, 104, false), // adc
			participant(5, 100, 105, false), // support
			participant(6, 200, 201, false),
			participant(7, 200, 202, true),
			participant(8, 200, 203, false),
			participant(9, 200, 204, false),
			participant(10, 200, 205, false),
		},
	}}
}

// testTimeline positions the conventional layout: participants 1/6 top lane,
// 3/8 mid, 4/5/9/10 bot; junglers 2/7 sit mid-map but are marked by Smite.
// Final-frame farm makes 4/9 the carries and 5/10 the supports.
func testTimeline() riot.Timeline {
	early := map[string]riot.ParticipantFrame{
		"1":  {Position: riot.Position{X: 2000, Y: 12000}},
		"2":  {Position: riot.Position{X: 7000, Y: 7000}},
		"3":  {Position: riot.Position{X: 7500, Y: 7500}},
		"4":  {Position: riot.Position{X: 12000, Y: 2000}},
		"5":  {Position: riot.Position{X: 11500, Y: 1500}},
		"6":  {Position: riot.Position{X: 1500, Y: 11500}},
		"7":  {Position: riot.Position{X: 8000, Y: 8000}},
		"8":  {Position: riot.Position{X: 7200, Y: 7300}},
		"9":  {Position: riot.Position{X: 13000, Y: 2500}},
		"10": {Position: riot.Position{X: 12500, Y: 1000}},
	}
	last := map[string]riot.ParticipantFrame{
		"1": {MinionsKilled: 180}, "2": {MinionsKilled: 150},
		"3": {MinionsKilled: 190}, "4": {MinionsKilled: 77}, "5": {MinionsKilled: 42},
		"6": {MinionsKilled: 170}, "7": {MinionsKilled: 140},
		"8": {MinionsKilled: 185}, "9": {MinionsKilled: 210}, "10": {MinionsKilled: 30},
	}
	return riot.Timeline{Info: riot.TimelineInfo{Frames: []riot.Frame{
		{}, {}, {ParticipantFrames: early}, {ParticipantFrames: last},
	}}}
}

func TestBuildDocument(t *testing.T) {
	t.Parallel()

	doc, err := buildDocument("EUW1_1", "euw1", testMatch(), testTimeline())
	require.NoError(t, err)

	require.Equal(t, "EUW1_1", doc.ID)
	require.Equal(t, "euw1", doc.Region)
	require.Equal(t, int64(1845), doc.DurationSeconds)
	require.Equal(t, "13.24", doc.Patch)
	require.Equal(t, 100, doc.WinningTeamID)

	require.Equal(t, []int{1, 2}, doc.Team1.Bans)
	require.Equal(t, []int{3, 4}, doc.Team2.Bans)

	require.Equal(t, 101, doc.Team1.Top.ChampionID)
	require.Equal(t, 102, doc.Team1.Jungle.ChampionID)
	require.Equal(t, 103, doc.Team1.Mid.ChampionID)
	// Bot-lane farm was [77, 42]: the lower-farm player is the support.
	require.Equal(t, 104, doc.Team1.ADC.ChampionID)
	require.Equal(t, 105, doc.Team1.Support.ChampionID)

	require.Equal(t, 204, doc.Team2.ADC.ChampionID)
	require.Equal(t, 205, doc.Team2.Support.ChampionID)
}

func TestBuildDocumentBotFarmTieGoesToFirst(t *testing.T) {
	t.Parallel()

	timeline := testTimeline()
	last := timeline.Info.Frames[3].ParticipantFrames
	last["4"] = riot.ParticipantFrame{MinionsKilled: 50}
	last["5"] = riot.ParticipantFrame{MinionsKilled: 50}

	doc, err := buildDocument("EUW1_1", "euw1", testMatch(), timeline)
	require.NoError(t, err)
	// Participant 4 arrives first in the pair and ties, so it is the support.
	require.Equal(t, 104, doc.Team1.Support.ChampionID)
	require.Equal(t, 105, doc.Team1.ADC.ChampionID)
}

func TestBuildDocumentSmiteOverridesPosition(t *testing.T) {
	t.Parallel()

	timeline := testTimeline()
	// Park the jungler deep in the bot lane; Smite must still win.
	early := timeline.Info.Frames[2].ParticipantFrames
	early["2"] = riot.ParticipantFrame{Position: riot.Position{X: 12500, Y: 1200}}

	doc, err := buildDocument("EUW1_1", "euw1", testMatch(), timeline)
	require.NoError(t, err)
	require.Equal(t, 102, doc.Team1.Jungle.ChampionID)
}

func TestBuildDocumentRejectsThreeBotPlayers(t *testing.T) {
	t.Parallel()

	timeline := testTimeline()
	// Move the mid laner into the bot band: three bot players, no mid.
	timeline.Info.Frames[2].ParticipantFrames["3"] = riot.ParticipantFrame{
		Position: riot.Position{X: 12000, Y: 2200},
	}

	_, err := buildDocument("EUW1_1", "euw1", testMatch(), timeline)
	require.Error(t, err)
}

func TestBuildDocumentRejectsRoleCollision(t *testing.T) {
	t.Parallel()

	timeline := testTimeline()
	// A second top laner on team 100 collides with participant 1.
	timeline.Info.Frames[2].ParticipantFrames["3"] = riot.ParticipantFrame{
		Position: riot.Position{X: 1800, Y: 12500},
	}

	_, err := buildDocument("EUW1_1", "euw1", testMatch(), timeline)
	require.Error(t, err)
}

func TestBuildDocumentRejectsShortTimeline(t *testing.T) {
	t.Parallel()

	timeline := riot.Timeline{Info: riot.TimelineInfo{Frames: []riot.Frame{{}, {}}}}
	_, err := buildDocument("EUW1_1", "euw1", testMatch(), timeline)
	require.Error(t, err)
}

func TestBuildDocumentRejectsBadGameVersion(t *testing.T) {
	t.Parallel()

	match := testMatch()
	match.Info.GameVersion = "weekly-build"
	_, err := buildDocument("EUW1_1", "euw1", match, testTimeline())
	require.Error(t, err)
}

func TestDeriveRole(t *testing.T) {
	t.Parallel()

	noSmite := riot.Participant{Summoner1ID: 4, Summoner2ID: 14}
	smite := riot.Participant{Summoner1ID: 11, Summoner2ID: 4}

	tests := []struct {
		name string
		pos  riot.Position
		p    riot.Participant
		want role
	}{
		{"smite wins regardless of position", riot.Position{X: 2000, Y: 12000}, smite, roleJungle},
		{"bot near base corner", riot.Position{X: 4000, Y: 3000}, noSmite, roleBot},
		{"bot deep lane", riot.Position{X: 12000, Y: 10000}, noSmite, roleBot},
		{"top near base corner", riot.Position{X: 3000, Y: 4000}, noSmite, roleTop},
		{"top deep lane", riot.Position{X: 10000, Y: 12000}, noSmite, roleTop},
		{"mid river", riot.Position{X: 7500, Y: 7500}, noSmite, roleMid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, deriveRole(tc.pos, tc.p))
		})
	}
}
